// HTTP handlers for the likes routes.
//
// All routes expect an x-user-id header forwarded by the Gateway.
//
// Routes:
//
//	GET  /likes/{kind}         → list user's likes of one kind
//	POST /likes/{kind}/toggle  → flip the like on an item
package likes

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
)

// Handler holds shared dependencies.
type Handler struct {
	svc *Service
}

// NewHandler returns a configured Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts the likes routes on mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/likes/", h.handleLikes)
}

// handleLikes dispatches /likes/{kind} and /likes/{kind}/toggle.
func (h *Handler) handleLikes(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get("x-user-id")
	if userID == "" {
		jsonError(w, "missing x-user-id header", http.StatusUnauthorized)
		return
	}

	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	if len(parts) < 2 || len(parts) > 3 {
		jsonError(w, "invalid path", http.StatusNotFound)
		return
	}

	kind, err := ParseKind(parts[1])
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	switch {
	case len(parts) == 2 && r.Method == http.MethodGet:
		h.list(w, r, userID, kind)
	case len(parts) == 3 && parts[2] == "toggle" && r.Method == http.MethodPost:
		h.toggle(w, r, userID, kind)
	default:
		jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request, userID string, kind Kind) {
	out, err := h.svc.List(r.Context(), userID, kind)
	if err != nil {
		log.Printf("[likes] list error: %v", err)
		jsonError(w, "database error", http.StatusInternalServerError)
		return
	}
	jsonOK(w, out)
}

func (h *Handler) toggle(w http.ResponseWriter, r *http.Request, userID string, kind Kind) {
	var body struct {
		ItemID string `json:"itemId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		jsonError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	liked, err := h.svc.Toggle(r.Context(), userID, kind, body.ItemID)
	if err != nil {
		var ve *ValidationError
		if errors.As(err, &ve) {
			jsonError(w, ve.Msg, http.StatusBadRequest)
			return
		}
		log.Printf("[likes] toggle error: %v", err)
		jsonError(w, "database error", http.StatusInternalServerError)
		return
	}
	jsonOK(w, map[string]bool{"liked": liked})
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

func jsonOK(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
