package session

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/gorilla/mux"

	"github.com/inamate/vecedit/internal/auth"
	"github.com/inamate/vecedit/internal/dispatch"
	"github.com/inamate/vecedit/internal/engine"
	"github.com/inamate/vecedit/internal/project"
	"github.com/inamate/vecedit/internal/store"
	"github.com/inamate/vecedit/internal/typeid"
)

const squareArgs = `{"commands":[
	{"type":"moveTo","x":0,"y":0},
	{"type":"lineTo","x":10,"y":0},
	{"type":"lineTo","x":10,"y":10},
	{"type":"lineTo","x":0,"y":10},
	{"type":"close"}
], "position":[10,0]}`

func newTestHub(t *testing.T) (*Hub, *project.Service, string) {
	t.Helper()
	svc := project.NewService(store.NewMemory())
	p, err := svc.Create(context.Background(), "test", false)
	if err != nil {
		t.Fatalf("create project: %v", err)
	}
	hub := NewHub(svc, engine.Options{}, 0)
	go hub.Run()
	t.Cleanup(hub.Stop)
	return hub, svc, p.ID
}

func TestHubDoAndFlush(t *testing.T) {
	hub, svc, projectID := newTestHub(t)
	ctx := context.Background()

	res, err := hub.Do(ctx, projectID, "alice", OpRequest{Op: "addShape", Args: json.RawMessage(squareArgs)})
	if err != nil {
		t.Fatalf("addShape: %v", err)
	}
	if id := res.(map[string]int64)["id"]; id != 1 {
		t.Fatalf("id = %d, want 1", id)
	}

	if err := hub.Flush(ctx); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	doc, err := svc.LoadDocument(ctx, projectID)
	if err != nil {
		t.Fatalf("LoadDocument: %v", err)
	}
	if len(doc.Shapes) != 1 || doc.Shapes[0].Position != [2]float64{10, 0} {
		t.Errorf("saved shapes = %+v", doc.Shapes)
	}
}

func TestHubProjectErrors(t *testing.T) {
	hub, _, _ := newTestHub(t)
	ctx := context.Background()

	if _, err := hub.Do(ctx, typeid.NewProjectID(), "alice", OpRequest{Op: "draw"}); !errors.Is(err, project.ErrNotFound) {
		t.Errorf("missing project: err = %v", err)
	}
	if _, err := hub.Do(ctx, "nope", "alice", OpRequest{Op: "draw"}); !errors.Is(err, project.ErrInvalidID) {
		t.Errorf("bad id: err = %v", err)
	}
}

func TestHubStopSavesDirtySessions(t *testing.T) {
	hub, svc, projectID := newTestHub(t)
	ctx := context.Background()

	if _, err := hub.Do(ctx, projectID, "alice", OpRequest{Op: "addShape"}); err != nil {
		t.Fatalf("addShape: %v", err)
	}
	hub.Stop()

	doc, err := svc.LoadDocument(ctx, projectID)
	if err != nil {
		t.Fatalf("LoadDocument: %v", err)
	}
	if len(doc.Shapes) != 1 {
		t.Errorf("saved %d shapes, want 1", len(doc.Shapes))
	}

	if _, err := hub.Do(ctx, projectID, "alice", OpRequest{Op: "draw"}); !errors.Is(err, ErrHubStopped) {
		t.Errorf("after stop: err = %v", err)
	}
}

func TestHubReopensSavedDocument(t *testing.T) {
	hub, svc, projectID := newTestHub(t)
	ctx := context.Background()

	for _, op := range []OpRequest{
		{Op: "addShape", Args: json.RawMessage(squareArgs)},
		{Op: "addShape", Args: json.RawMessage(`{"profile":{"kind":"plate"},"position":[50,50]}`)},
	} {
		if _, err := hub.Do(ctx, projectID, "alice", op); err != nil {
			t.Fatalf("%s: %v", op.Op, err)
		}
	}
	hub.Stop()

	reopened := NewHub(svc, engine.Options{}, 0)
	go reopened.Run()
	defer reopened.Stop()

	res, err := reopened.Do(ctx, projectID, "alice", OpRequest{Op: "draw"})
	if err != nil {
		t.Fatalf("draw: %v", err)
	}
	draw := res.(dispatch.DrawResult)
	if len(draw.Commands) != 2 {
		t.Fatalf("draw has %d shapes, want 2", len(draw.Commands))
	}
	if draw.Commands[0].ObjectID != 1 || draw.Commands[1].ObjectID != 2 {
		t.Errorf("ids = %d,%d", draw.Commands[0].ObjectID, draw.Commands[1].ObjectID)
	}
	if draw.CanUndo {
		t.Error("reopened session should start with empty history")
	}
}

func TestHTTPCommands(t *testing.T) {
	hub, _, projectID := newTestHub(t)
	h := NewHandler(hub, nil)
	r := mux.NewRouter()
	r.HandleFunc("/api/projects/{projectId}/draw", h.Draw).Methods("GET")
	r.HandleFunc("/api/projects/{projectId}/commands", h.Command).Methods("POST")

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
	}{
		{"add", "POST", "/api/projects/" + projectID + "/commands", `{"op":"addShape"}`, http.StatusOK},
		{"unknown op", "POST", "/api/projects/" + projectID + "/commands", `{"op":"explode"}`, http.StatusBadRequest},
		{"missing op", "POST", "/api/projects/" + projectID + "/commands", `{}`, http.StatusBadRequest},
		{"draw", "GET", "/api/projects/" + projectID + "/draw", "", http.StatusOK},
		{"missing project", "GET", "/api/projects/" + typeid.NewProjectID() + "/draw", "", http.StatusNotFound},
		{"bad id", "GET", "/api/projects/nope/draw", "", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)
			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d (%s)", rec.Code, tt.status, rec.Body.String())
			}
		})
	}
}

func readMessage(t *testing.T, ctx context.Context, conn *websocket.Conn) Message {
	t.Helper()
	_, data, err := conn.Read(ctx)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("decode %s: %v", data, err)
	}
	return msg
}

// asEditor stands in for the auth middleware, taking the editor name from
// the query string.
func asEditor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), auth.UserIDKey, r.URL.Query().Get("editor"))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func TestWebSocketSession(t *testing.T) {
	hub, _, projectID := newTestHub(t)
	h := NewHandler(hub, nil)
	r := mux.NewRouter()
	r.Use(asEditor)
	r.HandleFunc("/ws/project/{projectId}", h.ServeWS)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/project/" + projectID + "?editor="

	dial := func(editor string) *websocket.Conn {
		conn, _, err := websocket.Dial(ctx, url+editor, nil)
		if err != nil {
			t.Fatalf("dial: %v", err)
		}
		t.Cleanup(func() { conn.Close(websocket.StatusNormalClosure, "") })
		if msg := readMessage(t, ctx, conn); msg.Type != TypeWelcome {
			t.Fatalf("first message = %s, want welcome", msg.Type)
		}
		return conn
	}
	// Two tabs of the same editor share the session.
	editor := dial("alice")
	viewer := dial("alice")

	submit, _ := json.Marshal(OpRequest{RequestID: "r1", Op: "addShape", Args: json.RawMessage(squareArgs)})
	out, _ := json.Marshal(Message{Type: TypeOpSubmit, Payload: submit})
	if err := editor.Write(ctx, websocket.MessageText, out); err != nil {
		t.Fatalf("write: %v", err)
	}

	ack := readMessage(t, ctx, editor)
	if ack.Type != TypeOpAck {
		t.Fatalf("editor got %s, want ack", ack.Type)
	}
	var ackPayload OpAckPayload
	if err := json.Unmarshal(ack.Payload, &ackPayload); err != nil {
		t.Fatalf("decode ack: %v", err)
	}
	if ackPayload.RequestID != "r1" || ackPayload.ServerSeq != ack.Seq {
		t.Errorf("ack = %+v", ackPayload)
	}

	sync := readMessage(t, ctx, viewer)
	if sync.Type != TypeDocSync {
		t.Fatalf("viewer got %s, want doc.sync", sync.Type)
	}
	var syncPayload DocSyncPayload
	if err := json.Unmarshal(sync.Payload, &syncPayload); err != nil {
		t.Fatalf("decode sync: %v", err)
	}
	if len(syncPayload.Draw.Commands) != 1 {
		t.Errorf("viewer sees %d shapes, want 1", len(syncPayload.Draw.Commands))
	}

	bad, _ := json.Marshal(OpRequest{RequestID: "r2", Op: "explode"})
	out, _ = json.Marshal(Message{Type: TypeOpSubmit, Payload: bad})
	if err := editor.Write(ctx, websocket.MessageText, out); err != nil {
		t.Fatalf("write: %v", err)
	}
	if nack := readMessage(t, ctx, editor); nack.Type != TypeOpNack {
		t.Errorf("editor got %s, want nack", nack.Type)
	}
}

func TestSessionBelongsToOneEditor(t *testing.T) {
	hub, _, projectID := newTestHub(t)
	h := NewHandler(hub, nil)
	r := mux.NewRouter()
	r.Use(asEditor)
	r.HandleFunc("/ws/project/{projectId}", h.ServeWS)
	r.HandleFunc("/api/projects/{projectId}/commands", h.Command).Methods("POST")
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/project/" + projectID + "?editor="

	alice, _, err := websocket.Dial(ctx, url+"alice", nil)
	if err != nil {
		t.Fatalf("dial alice: %v", err)
	}
	t.Cleanup(func() { alice.Close(websocket.StatusNormalClosure, "") })
	if msg := readMessage(t, ctx, alice); msg.Type != TypeWelcome {
		t.Fatalf("alice got %s, want welcome", msg.Type)
	}

	_, resp, err := websocket.Dial(ctx, url+"bob", nil)
	if err == nil {
		t.Fatal("second editor should be refused")
	}
	if resp == nil || resp.StatusCode != http.StatusConflict {
		t.Errorf("response = %v, want 409", resp)
	}

	if _, err := hub.Do(ctx, projectID, "bob", OpRequest{Op: "clickAt", Args: json.RawMessage(`{"point":[500,500]}`)}); !errors.Is(err, ErrSessionBusy) {
		t.Errorf("bob Do: err = %v, want ErrSessionBusy", err)
	}
	if _, err := hub.Do(ctx, projectID, "alice", OpRequest{Op: "draw"}); err != nil {
		t.Errorf("alice Do: %v", err)
	}

	req := httptest.NewRequest("POST", "/api/projects/"+projectID+"/commands?editor=bob", strings.NewReader(`{"op":"addShape"}`))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusConflict {
		t.Errorf("bob command status = %d, want 409", rec.Code)
	}
}

func TestWebSocketUnknownProject(t *testing.T) {
	hub, _, _ := newTestHub(t)
	h := NewHandler(hub, nil)
	r := mux.NewRouter()
	r.HandleFunc("/ws/project/{projectId}", h.ServeWS)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/project/" + typeid.NewProjectID()
	_, resp, err := websocket.Dial(context.Background(), url, nil)
	if err == nil {
		t.Fatal("dial should fail")
	}
	if resp == nil || resp.StatusCode != http.StatusNotFound {
		t.Errorf("response = %v, want 404", resp)
	}
}
