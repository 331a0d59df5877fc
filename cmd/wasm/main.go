//go:build js && wasm

package main

import (
	"encoding/json"
	"syscall/js"

	"github.com/inamate/vecedit/internal/dispatch"
	"github.com/inamate/vecedit/internal/document"
	"github.com/inamate/vecedit/internal/engine"
	"gonum.org/v1/gonum/spatial/r2"
)

var (
	eng *engine.Engine
	doc *document.InDocument
)

func main() {
	eng = engine.NewEngine(engine.Options{})
	doc = document.NewEmptyDocument("proj_local", "Untitled")

	// Create the engine API object
	vecedit := js.Global().Get("Object").New()

	// --- Commands (frontend → engine) ---
	vecedit.Set("loadDocument", js.FuncOf(loadDocument))
	vecedit.Set("loadSampleDocument", js.FuncOf(loadSampleDocument))
	vecedit.Set("command", js.FuncOf(command))
	vecedit.Set("addShape", js.FuncOf(addShape))
	vecedit.Set("removeShape", js.FuncOf(removeShape))
	vecedit.Set("moveShape", js.FuncOf(moveShape))
	vecedit.Set("undo", js.FuncOf(undo))
	vecedit.Set("redo", js.FuncOf(redo))
	vecedit.Set("setSelection", js.FuncOf(setSelection))
	vecedit.Set("clickAt", js.FuncOf(clickAt))
	vecedit.Set("setDragOverlay", js.FuncOf(setDragOverlay))
	vecedit.Set("updateDragOverlay", js.FuncOf(updateDragOverlay))
	vecedit.Set("commitDragOverlay", js.FuncOf(commitDragOverlay))
	vecedit.Set("clearDragOverlay", js.FuncOf(clearDragOverlay))
	vecedit.Set("setZoom", js.FuncOf(setZoom))
	vecedit.Set("setPan", js.FuncOf(setPan))

	// --- Queries (frontend ← engine) ---
	vecedit.Set("render", js.FuncOf(render))
	vecedit.Set("hitTest", js.FuncOf(hitTest))
	vecedit.Set("screenToWorld", js.FuncOf(screenToWorld))
	vecedit.Set("snap", js.FuncOf(snapPoint))
	vecedit.Set("getSelectionBounds", js.FuncOf(getSelectionBounds))
	vecedit.Set("getSelection", js.FuncOf(getSelection))
	vecedit.Set("getDocument", js.FuncOf(getDocument))

	// Register on global scope
	js.Global().Set("veceditEngine", vecedit)

	// Signal that WASM is ready
	js.Global().Set("veceditWasmReady", js.ValueOf(true))

	// Keep Go runtime alive
	select {}
}

func errorValue(err error) js.Value {
	return js.ValueOf(map[string]interface{}{"error": err.Error()})
}

func okValue() js.Value {
	return js.ValueOf(map[string]interface{}{"ok": true})
}

func pointArgs(args []js.Value, i int) (r2.Vec, bool) {
	if len(args) < i+2 {
		return r2.Vec{}, false
	}
	return r2.Vec{X: args[i].Float(), Y: args[i+1].Float()}, true
}

// --- Command Handlers ---

func loadDocument(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return js.ValueOf(map[string]interface{}{"error": "missing document JSON"})
	}

	parsed, err := document.Parse([]byte(args[0].String()))
	if err != nil {
		return errorValue(err)
	}
	if err := eng.Load(parsed.Shapes); err != nil {
		return errorValue(err)
	}
	doc = parsed

	return okValue()
}

func loadSampleDocument(this js.Value, args []js.Value) interface{} {
	projectID := "proj_sample"
	if len(args) > 0 && args[0].Type() == js.TypeString {
		projectID = args[0].String()
	}

	sample := document.NewSampleDocument(projectID)
	if err := eng.Load(sample.Shapes); err != nil {
		return errorValue(err)
	}
	doc = sample
	return okValue()
}

// command runs any dispatch operation: command(op, argsJSON) returns the
// result as JSON.
func command(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return js.ValueOf(map[string]interface{}{"error": "missing operation"})
	}
	var raw json.RawMessage
	if len(args) > 1 && args[1].Type() == js.TypeString {
		raw = json.RawMessage(args[1].String())
	}
	res, _, err := dispatch.Run(eng, args[0].String(), raw)
	if err != nil {
		return errorValue(err)
	}
	out, err := json.Marshal(res)
	if err != nil {
		return errorValue(err)
	}
	return js.ValueOf(string(out))
}

func addShape(this js.Value, args []js.Value) interface{} {
	var data engine.ShapeData
	if len(args) > 0 && args[0].Type() == js.TypeString {
		if err := json.Unmarshal([]byte(args[0].String()), &data); err != nil {
			return errorValue(err)
		}
	}
	pos, _ := pointArgs(args, 1)

	s, err := eng.AddShape(data, pos)
	if err != nil {
		return errorValue(err)
	}
	return js.ValueOf(s.ID())
}

func removeShape(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.RemoveShape())
}

func moveShape(this js.Value, args []js.Value) interface{} {
	first, ok := pointArgs(args, 0)
	last, ok2 := pointArgs(args, 2)
	if !ok || !ok2 {
		return js.ValueOf(false)
	}
	return js.ValueOf(eng.MoveShape(first, last))
}

func undo(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.Undo())
}

func redo(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.Redo())
}

func setSelection(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 || args[0].Type() != js.TypeObject {
		eng.ClearSelection()
		return nil
	}

	arr := args[0]
	length := arr.Length()
	ids := make([]int64, length)
	for i := 0; i < length; i++ {
		ids[i] = int64(arr.Index(i).Int())
	}
	eng.SelectIDs(ids)
	return nil
}

func clickAt(this js.Value, args []js.Value) interface{} {
	p, ok := pointArgs(args, 0)
	if !ok {
		return js.ValueOf(0)
	}
	multi := len(args) > 2 && args[2].Truthy()
	if s := eng.ClickAt(p, multi); s != nil {
		return js.ValueOf(s.ID())
	}
	return js.ValueOf(0)
}

func gestureValue(p r2.Vec, active bool) js.Value {
	return js.ValueOf(map[string]interface{}{"x": p.X, "y": p.Y, "active": active})
}

func setDragOverlay(this js.Value, args []js.Value) interface{} {
	p, ok := pointArgs(args, 0)
	if !ok {
		return nil
	}
	return gestureValue(eng.BeginMove(p))
}

func updateDragOverlay(this js.Value, args []js.Value) interface{} {
	p, ok := pointArgs(args, 0)
	if !ok {
		return nil
	}
	return gestureValue(eng.UpdateMove(p))
}

func commitDragOverlay(this js.Value, args []js.Value) interface{} {
	p, ok := pointArgs(args, 0)
	if !ok {
		eng.CancelMove()
		return js.ValueOf(false)
	}
	return js.ValueOf(eng.CommitMove(p))
}

func clearDragOverlay(this js.Value, args []js.Value) interface{} {
	eng.CancelMove()
	return nil
}

func setZoom(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return nil
	}
	eng.SetZoom(args[0].Float())
	return nil
}

func setPan(this js.Value, args []js.Value) interface{} {
	p, ok := pointArgs(args, 0)
	if !ok {
		return nil
	}
	eng.SetPan(p)
	return nil
}

// --- Query Handlers ---

func render(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.Render())
}

func hitTest(this js.Value, args []js.Value) interface{} {
	p, ok := pointArgs(args, 0)
	if !ok {
		return js.ValueOf(0)
	}
	if s := eng.HitTest(p); s != nil {
		return js.ValueOf(s.ID())
	}
	return js.ValueOf(0)
}

// screenToWorld converts canvas pixel coordinates using the current zoom
// and pan.
func screenToWorld(this js.Value, args []js.Value) interface{} {
	p, ok := pointArgs(args, 0)
	if !ok {
		return nil
	}
	w := eng.ScreenToWorld(p)
	return js.ValueOf(map[string]interface{}{"x": w.X, "y": w.Y})
}

func snapPoint(this js.Value, args []js.Value) interface{} {
	p, ok := pointArgs(args, 0)
	if !ok {
		return nil
	}
	f, found := eng.SnapPoint(p, len(args) > 2 && args[2].Truthy())
	if !found {
		return nil
	}
	return js.ValueOf(map[string]interface{}{
		"type":    string(f.Type),
		"x":       f.Point.X,
		"y":       f.Point.Y,
		"shapeId": f.ShapeID,
	})
}

func getSelectionBounds(this js.Value, args []js.Value) interface{} {
	b, ok := eng.SelectionBounds()
	if !ok {
		return js.ValueOf("null")
	}
	return js.ValueOf(engine.RectToJSON(b))
}

func getSelection(this js.Value, args []js.Value) interface{} {
	ids := eng.SelectedIDs()
	out := make([]interface{}, len(ids))
	for i, id := range ids {
		out[i] = id
	}
	return js.ValueOf(out)
}

func getDocument(this js.Value, args []js.Value) interface{} {
	current := *doc
	current.Shapes = eng.Snapshot()
	current.Touch()
	data, err := current.Marshal()
	if err != nil {
		return errorValue(err)
	}
	return js.ValueOf(string(data))
}
