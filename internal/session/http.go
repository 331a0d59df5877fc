package session

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/inamate/vecedit/internal/auth"
	"github.com/inamate/vecedit/internal/dispatch"
	"github.com/inamate/vecedit/internal/project"
)

// Handler exposes project sessions over REST and websockets.
type Handler struct {
	hub            *Hub
	originPatterns []string
}

func NewHandler(hub *Hub, originPatterns []string) *Handler {
	return &Handler{hub: hub, originPatterns: originPatterns}
}

// Draw handles GET /api/projects/{projectId}/draw.
func (h *Handler) Draw(w http.ResponseWriter, r *http.Request) {
	projectID := mux.Vars(r)["projectId"]
	editor := auth.UserIDFromContext(r.Context())

	res, err := h.hub.Do(r.Context(), projectID, editor, OpRequest{Op: "draw"})
	if err != nil {
		handleSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Command handles POST /api/projects/{projectId}/commands.
func (h *Handler) Command(w http.ResponseWriter, r *http.Request) {
	projectID := mux.Vars(r)["projectId"]

	var req OpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Op == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "op is required"})
		return
	}

	res, err := h.hub.Do(r.Context(), projectID, auth.UserIDFromContext(r.Context()), req)
	if err != nil {
		handleSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"op": req.Op, "result": res})
}

// Operations handles GET /api/operations.
func (h *Handler) Operations(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, dispatch.Operations())
}

// Save handles POST /api/sessions/save by flushing every dirty session.
func (h *Handler) Save(w http.ResponseWriter, r *http.Request) {
	if err := h.hub.Flush(r.Context()); err != nil {
		handleSessionError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ServeWS handles /ws/project/{projectId}. The route must sit behind the
// auth middleware.
func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request) {
	projectID := mux.Vars(r)["projectId"]
	editor := auth.UserIDFromContext(r.Context())

	// Fail before the upgrade so the caller gets a proper status code.
	if _, err := h.hub.Do(r.Context(), projectID, editor, OpRequest{Op: "draw"}); err != nil {
		handleSessionError(w, err)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: h.originPatterns,
	})
	if err != nil {
		slog.Error("websocket accept", "error", err)
		return
	}

	client := NewClient(h.hub, conn, editor, projectID, uuid.New().String())
	if err := h.hub.Register(client); err != nil {
		conn.Close(websocket.StatusGoingAway, "server shutting down")
		return
	}

	ctx := r.Context()
	go client.WritePump(ctx)
	client.ReadPump(ctx)
}

func handleSessionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, project.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	case errors.Is(err, project.ErrInvalidID):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid project id"})
	case errors.Is(err, ErrSessionBusy):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	case dispatch.IsRequestError(err):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, ErrHubStopped):
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "shutting down"})
	default:
		slog.Error("session error", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
