package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/inamate/vecedit/internal/dispatch"
	"github.com/inamate/vecedit/internal/document"
	"github.com/inamate/vecedit/internal/engine"
	"github.com/inamate/vecedit/internal/typeid"
)

var (
	ErrHubStopped  = errors.New("session hub stopped")
	ErrSessionBusy = errors.New("project is open by another editor")
)

const saveTimeout = 10 * time.Second

// DocumentStore loads and saves project documents.
type DocumentStore interface {
	LoadDocument(ctx context.Context, projectID string) (*document.InDocument, error)
	SaveDocument(ctx context.Context, doc *document.InDocument) (int, error)
}

// Room is one open project: its editing engine and connected clients. The
// engine holds a single selection, so a room belongs to one editor at a
// time: the editor of its connected clients.
type Room struct {
	projectID string
	sessionID string
	doc       *document.InDocument
	engine    *engine.Engine
	owner     string             // editor of the connected clients
	clients   map[string]*Client // clientID -> client
	serverSeq int64
	dirty     bool
}

type request struct {
	ctx       context.Context
	projectID string
	editor    string
	client    *Client
	op        OpRequest
	reply     chan reply
}

type reply struct {
	result any
	seq    int64
	err    error
}

// Hub owns every open Room. All engine access happens on the Run goroutine,
// so an engine is never touched concurrently.
type Hub struct {
	store    DocumentStore
	opts     engine.Options
	autosave time.Duration

	rooms      map[string]*Room // projectID -> room
	register   chan *Client
	unregister chan *Client
	requests   chan *request
	flush      chan chan error
	stop       chan struct{}
	done       chan struct{}
}

// NewHub creates a hub. A non-positive autosave interval disables periodic
// saving; dirty rooms are still saved when the last client leaves and on
// Stop.
func NewHub(store DocumentStore, opts engine.Options, autosave time.Duration) *Hub {
	return &Hub{
		store:      store,
		opts:       opts,
		autosave:   autosave,
		rooms:      make(map[string]*Room),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		requests:   make(chan *request),
		flush:      make(chan chan error),
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
	}
}

func (h *Hub) Run() {
	defer close(h.done)

	var tick <-chan time.Time
	if h.autosave > 0 {
		ticker := time.NewTicker(h.autosave)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		case req := <-h.requests:
			h.handleRequest(req)
		case <-tick:
			h.saveDirty()
			h.evictIdle()
		case ch := <-h.flush:
			ch <- h.saveDirty()
		case <-h.stop:
			h.shutdown()
			return
		}
	}
}

// Stop saves every dirty room and ends Run.
func (h *Hub) Stop() {
	select {
	case <-h.stop:
	default:
		close(h.stop)
	}
	<-h.done
}

func (h *Hub) Register(client *Client) error {
	select {
	case h.register <- client:
		return nil
	case <-h.done:
		return ErrHubStopped
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Do runs op on behalf of editor against the project's session and waits
// for the result. It fails with ErrSessionBusy while another editor is
// connected to the project.
func (h *Hub) Do(ctx context.Context, projectID, editor string, op OpRequest) (any, error) {
	req := &request{ctx: ctx, projectID: projectID, editor: editor, op: op, reply: make(chan reply, 1)}
	select {
	case h.requests <- req:
	case <-h.done:
		return nil, ErrHubStopped
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	select {
	case r := <-req.reply:
		return r.result, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Flush saves every dirty room now.
func (h *Hub) Flush(ctx context.Context) error {
	ch := make(chan error, 1)
	select {
	case h.flush <- ch:
	case <-h.done:
		return ErrHubStopped
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-ch:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (h *Hub) submit(client *Client, op OpRequest) {
	req := &request{
		ctx:       context.Background(),
		projectID: client.ProjectID,
		editor:    client.Editor,
		client:    client,
		op:        op,
	}
	select {
	case h.requests <- req:
	case <-h.done:
	}
}

func (h *Hub) openRoom(ctx context.Context, projectID string) (*Room, error) {
	if room, ok := h.rooms[projectID]; ok {
		return room, nil
	}

	doc, err := h.store.LoadDocument(ctx, projectID)
	if err != nil {
		return nil, err
	}

	e := engine.NewEngine(h.opts)
	if err := e.Load(doc.Shapes); err != nil {
		return nil, fmt.Errorf("load project %s: %w", projectID, err)
	}

	room := &Room{
		projectID: projectID,
		sessionID: typeid.NewSessionID(),
		doc:       doc,
		engine:    e,
		clients:   make(map[string]*Client),
	}
	e.OnChange(func() { room.dirty = true })
	h.rooms[projectID] = room

	slog.Info("session opened", "project", projectID, "session", room.sessionID, "shapes", len(doc.Shapes))
	return room, nil
}

func (h *Hub) addClient(client *Client) {
	room, err := h.openRoom(context.Background(), client.ProjectID)
	if err != nil {
		slog.Warn("open session failed", "project", client.ProjectID, "error", err)
		client.Send(newMessage(TypeError, ErrorPayload{Message: "project unavailable"}))
		client.closeSend()
		return
	}
	if room.busyFor(client.Editor) {
		slog.Warn("session busy", "project", client.ProjectID, "editor", client.Editor, "owner", room.owner)
		client.Send(newMessage(TypeError, ErrorPayload{Message: ErrSessionBusy.Error()}))
		client.closeSend()
		return
	}
	room.owner = client.Editor
	room.clients[client.ClientID] = client

	client.Send(newMessage(TypeWelcome, WelcomePayload{
		ClientID:  client.ClientID,
		SessionID: room.sessionID,
		Editor:    client.Editor,
		ProjectID: room.projectID,
		Draw:      dispatch.Draw(room.engine),
	}))

	slog.Info("client joined", "editor", client.Editor, "project", client.ProjectID)
}

func (h *Hub) removeClient(client *Client) {
	room, ok := h.rooms[client.ProjectID]
	if !ok {
		return
	}
	if _, ok := room.clients[client.ClientID]; !ok {
		return
	}

	delete(room.clients, client.ClientID)
	client.closeSend()
	slog.Info("client left", "editor", client.Editor, "project", client.ProjectID)

	if len(room.clients) == 0 {
		room.owner = ""
		room.engine.CancelMove()
		if err := h.saveRoom(room); err != nil {
			slog.Error("save on leave failed", "project", room.projectID, "error", err)
			return
		}
		h.closeRoom(room)
	}
}

func (h *Hub) handleRequest(req *request) {
	if req.client != nil {
		if room, ok := h.rooms[req.projectID]; !ok || room.clients[req.client.ClientID] == nil {
			return
		}
	}

	room, err := h.openRoom(req.ctx, req.projectID)
	if err != nil {
		h.respond(req, nil, 0, err)
		return
	}
	if room.busyFor(req.editor) {
		h.respond(req, nil, 0, ErrSessionBusy)
		return
	}

	result, sync, err := dispatch.Run(room.engine, req.op.Op, req.op.Args)
	if err != nil {
		h.respond(req, nil, 0, err)
		return
	}

	room.serverSeq++
	h.respond(req, result, room.serverSeq, nil)

	if sync {
		exclude := ""
		if req.client != nil {
			exclude = req.client.ClientID
		}
		h.broadcastToRoom(room, newMessage(TypeDocSync, DocSyncPayload{
			ServerSeq: room.serverSeq,
			Draw:      dispatch.Draw(room.engine),
		}), exclude)
	}
}

// busyFor reports whether editor is locked out by another editor's
// connected clients.
func (r *Room) busyFor(editor string) bool {
	return len(r.clients) > 0 && r.owner != editor
}

func (h *Hub) respond(req *request, result any, seq int64, err error) {
	if req.reply != nil {
		req.reply <- reply{result: result, seq: seq, err: err}
		return
	}

	if err != nil {
		if !dispatch.IsRequestError(err) {
			slog.Error("operation failed", "op", req.op.Op, "project", req.projectID, "error", err)
		}
		req.client.Send(newMessage(TypeOpNack, OpNackPayload{
			RequestID: req.op.RequestID,
			Op:        req.op.Op,
			Reason:    err.Error(),
		}))
		return
	}

	msg := newMessage(TypeOpAck, OpAckPayload{
		RequestID: req.op.RequestID,
		Op:        req.op.Op,
		ServerSeq: seq,
		Result:    result,
	})
	msg.Seq = seq
	req.client.Send(msg)
}

func (h *Hub) broadcastToRoom(room *Room, msg *Message, excludeClientID string) {
	for id, c := range room.clients {
		if id != excludeClientID {
			c.Send(msg)
		}
	}
}

// saveRoom writes the engine contents back to the store if anything changed
// since the last save.
func (h *Hub) saveRoom(room *Room) error {
	if !room.dirty {
		return nil
	}

	doc := *room.doc
	doc.Shapes = room.engine.Snapshot()

	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()

	version, err := h.store.SaveDocument(ctx, &doc)
	if err != nil {
		return fmt.Errorf("save project %s: %w", room.projectID, err)
	}
	room.doc = &doc
	room.dirty = false

	slog.Info("session saved", "project", room.projectID, "version", version, "shapes", len(doc.Shapes))
	return nil
}

func (h *Hub) saveDirty() error {
	var errs []error
	for _, room := range h.rooms {
		if err := h.saveRoom(room); err != nil {
			slog.Error("autosave failed", "project", room.projectID, "error", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// evictIdle closes saved rooms nobody is connected to.
func (h *Hub) evictIdle() {
	for _, room := range h.rooms {
		if len(room.clients) == 0 && !room.dirty {
			h.closeRoom(room)
		}
	}
}

func (h *Hub) closeRoom(room *Room) {
	delete(h.rooms, room.projectID)
	slog.Info("session closed", "project", room.projectID, "session", room.sessionID)
}

func (h *Hub) shutdown() {
	h.saveDirty()
	for _, room := range h.rooms {
		for _, c := range room.clients {
			c.closeSend()
		}
		h.closeRoom(room)
	}
}
