package engine

// History keeps executed commands on an undo stack and undone ones on a
// redo stack. Any fresh Execute clears the redo stack.
type History struct {
	undo  []Command
	redo  []Command
	limit int
}

// NewHistory creates a history keeping at most limit undo entries. A limit
// of zero or less keeps everything.
func NewHistory(limit int) *History {
	return &History{limit: limit}
}

// Execute runs cmd and records it. It panics on a nil command.
func (h *History) Execute(cmd Command) {
	if cmd == nil {
		panic("engine: History.Execute with nil command")
	}
	cmd.Execute()
	h.undo = append(h.undo, cmd)
	h.redo = nil
	if h.limit > 0 && len(h.undo) > h.limit {
		drop := len(h.undo) - h.limit
		clear(h.undo[:drop])
		h.undo = h.undo[drop:]
	}
}

// Undo reverts the most recent command. It reports false when there is
// nothing to undo.
func (h *History) Undo() bool {
	if len(h.undo) == 0 {
		return false
	}
	cmd := h.undo[len(h.undo)-1]
	h.undo = h.undo[:len(h.undo)-1]
	cmd.Undo()
	h.redo = append(h.redo, cmd)
	return true
}

// Redo re-executes the most recently undone command.
func (h *History) Redo() bool {
	if len(h.redo) == 0 {
		return false
	}
	cmd := h.redo[len(h.redo)-1]
	h.redo = h.redo[:len(h.redo)-1]
	cmd.Execute()
	h.undo = append(h.undo, cmd)
	return true
}

func (h *History) CanUndo() bool { return len(h.undo) > 0 }
func (h *History) CanRedo() bool { return len(h.redo) > 0 }

func (h *History) UndoLen() int { return len(h.undo) }
func (h *History) RedoLen() int { return len(h.redo) }

// Clear drops both stacks.
func (h *History) Clear() {
	h.undo = nil
	h.redo = nil
}
