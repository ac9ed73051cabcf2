// Package httpapi exposes the search service over HTTP.
//
// The streaming routes re-emit search progress as server-sent events so the
// web client renders live status exactly as the upstream produces it. State
// persists between requests in the snapshot store, keyed per user, which is
// what makes load-more work across stateless requests.
//
// All routes expect an x-user-id header forwarded by the Gateway.
//
// Routes:
//
//	POST /search/jobs            → run a job search, stream progress (SSE)
//	GET  /search/jobs/state      → restore the cached job search state
//	POST /search/talents         → run a talent search, stream progress (SSE)
//	GET  /search/talents/state   → restore the cached talent search state
//	GET  /jobs/{id}              → full record for one external posting
//	GET  /health                 → liveness probe
package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"modoojob/search-service/internal/search"
	"modoojob/search-service/internal/snapshot"
)

// Handler holds shared dependencies. Controllers are built per request and
// hydrated from the snapshot store, so the handler itself carries no
// per-user state.
type Handler struct {
	client *search.Client
	store  snapshot.Store

	// DefaultRegion is attached to queries that name no region.
	DefaultRegion string
	// IdleTimeout bounds the gap between upstream stream reads.
	IdleTimeout time.Duration
	// SnapshotTTL is the store-side expiry for cached search state.
	SnapshotTTL time.Duration
	// TalentMaxAge rejects cached talent state older than this on restore.
	TalentMaxAge time.Duration
}

// NewHandler returns a configured Handler.
func NewHandler(client *search.Client, store snapshot.Store) *Handler {
	return &Handler{
		client:       client,
		store:        store,
		IdleTimeout:  search.DefaultIdleTimeout,
		SnapshotTTL:  search.DefaultSnapshotTTL,
		TalentMaxAge: search.DefaultSnapshotTTL,
	}
}

// RegisterRoutes mounts all search-service routes on mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/search/jobs", h.handleJobSearch)
	mux.HandleFunc("/search/jobs/state", h.handleJobState)
	mux.HandleFunc("/search/talents", h.handleTalentSearch)
	mux.HandleFunc("/search/talents/state", h.handleTalentState)
	mux.HandleFunc("/jobs/", h.handleJobDetail)
	mux.HandleFunc("/health", h.handleHealth)
}

// ─── Controller wiring ───────────────────────────────────────────────────────

func (h *Handler) jobController(userID string) *search.JobController {
	snap := search.NewSnapshotter(h.store, "jobSearchState:"+userID)
	snap.TTL = h.SnapshotTTL

	ctl := search.NewJobController(h.client, snap)
	ctl.DefaultRegion = h.DefaultRegion
	ctl.IdleTimeout = h.IdleTimeout
	return ctl
}

func (h *Handler) talentController(userID string) *search.TalentController {
	snap := search.NewSnapshotter(h.store, "talentSearchState:"+userID)
	snap.TTL = h.SnapshotTTL
	snap.MaxAge = h.TalentMaxAge

	ctl := search.NewTalentController(h.client, snap)
	ctl.DefaultRegion = h.DefaultRegion
	ctl.IdleTimeout = h.IdleTimeout
	return ctl
}

// ─── Streaming search routes ─────────────────────────────────────────────────

type searchBody struct {
	Query    string `json:"query"`
	LoadMore bool   `json:"loadMore"`
}

// handleJobSearch handles POST /search/jobs.
func (h *Handler) handleJobSearch(w http.ResponseWriter, r *http.Request) {
	userID, body, ok := h.decodeSearchRequest(w, r)
	if !ok {
		return
	}

	ctl := h.jobController(userID)
	if body.LoadMore {
		if restored, err := ctl.Restore(r.Context()); err != nil || !restored {
			jsonError(w, "이전 검색 결과가 없습니다", http.StatusConflict)
			return
		}
	}

	sink, err := newSSESink(w)
	if err != nil {
		jsonError(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}
	ctl.Listener = sink.statusListener()

	var runErr error
	if body.LoadMore {
		runErr = ctl.LoadMore(r.Context())
	} else {
		runErr = ctl.Search(r.Context(), body.Query, 1, false)
	}
	h.finishStream(sink, runErr, ctl.Err(), ctl.State())
}

// handleTalentSearch handles POST /search/talents.
func (h *Handler) handleTalentSearch(w http.ResponseWriter, r *http.Request) {
	userID, body, ok := h.decodeSearchRequest(w, r)
	if !ok {
		return
	}

	ctl := h.talentController(userID)
	if body.LoadMore {
		if restored, err := ctl.Restore(r.Context()); err != nil || !restored {
			jsonError(w, "이전 검색 결과가 없습니다", http.StatusConflict)
			return
		}
	}

	sink, err := newSSESink(w)
	if err != nil {
		jsonError(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}
	ctl.Listener = sink.statusListener()

	var runErr error
	if body.LoadMore {
		runErr = ctl.LoadMore(r.Context())
	} else {
		runErr = ctl.Search(r.Context(), body.Query, 1, false)
	}
	h.finishStream(sink, runErr, ctl.Err(), ctl.State())
}

// decodeSearchRequest validates method, auth header and body. Validation
// failures answer with plain JSON; the SSE stream only opens past this point.
func (h *Handler) decodeSearchRequest(w http.ResponseWriter, r *http.Request) (string, searchBody, bool) {
	if r.Method != http.MethodPost {
		jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
		return "", searchBody{}, false
	}
	userID := r.Header.Get("x-user-id")
	if userID == "" {
		jsonError(w, "missing x-user-id header", http.StatusUnauthorized)
		return "", searchBody{}, false
	}

	var body searchBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		jsonError(w, "invalid JSON body", http.StatusBadRequest)
		return "", searchBody{}, false
	}
	if !body.LoadMore && strings.TrimSpace(body.Query) == "" {
		jsonError(w, search.ErrEmptyQuery.Msg, http.StatusBadRequest)
		return "", searchBody{}, false
	}
	return userID, body, true
}

// finishStream emits the terminal SSE frame. Partial results survive errors,
// so the state rides along on both outcomes.
func (h *Handler) finishStream(sink *sseSink, runErr error, errMsg string, state any) {
	if runErr != nil {
		var ve *search.ValidationError
		if errors.As(runErr, &ve) {
			sink.event("error", map[string]any{"message": ve.Msg, "state": state})
			return
		}
		log.Printf("[search] stream run error: %v", runErr)
	}
	if errMsg != "" {
		sink.event("error", map[string]any{"message": errMsg, "state": state})
		return
	}
	sink.event("complete", map[string]any{"state": state})
}

// ─── State restore routes ────────────────────────────────────────────────────

// handleJobState handles GET /search/jobs/state.
func (h *Handler) handleJobState(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireGet(w, r)
	if !ok {
		return
	}

	ctl := h.jobController(userID)
	restored, err := ctl.Restore(r.Context())
	if err != nil {
		log.Printf("[search] job state restore error: %v", err)
		jsonError(w, "restore failed", http.StatusInternalServerError)
		return
	}
	jsonOK(w, map[string]any{"restored": restored, "state": ctl.State()})
}

// handleTalentState handles GET /search/talents/state.
func (h *Handler) handleTalentState(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireGet(w, r)
	if !ok {
		return
	}

	ctl := h.talentController(userID)
	restored, err := ctl.Restore(r.Context())
	if err != nil {
		log.Printf("[search] talent state restore error: %v", err)
		jsonError(w, "restore failed", http.StatusInternalServerError)
		return
	}
	jsonOK(w, map[string]any{"restored": restored, "state": ctl.State()})
}

func (h *Handler) requireGet(w http.ResponseWriter, r *http.Request) (string, bool) {
	if r.Method != http.MethodGet {
		jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
		return "", false
	}
	userID := r.Header.Get("x-user-id")
	if userID == "" {
		jsonError(w, "missing x-user-id header", http.StatusUnauthorized)
		return "", false
	}
	return userID, true
}

// ─── Detail route ────────────────────────────────────────────────────────────

// handleJobDetail handles GET /jobs/{id}.
func (h *Handler) handleJobDetail(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	jobID := strings.TrimPrefix(r.URL.Path, "/jobs/")
	if jobID == "" || strings.Contains(jobID, "/") {
		jsonError(w, "invalid path", http.StatusNotFound)
		return
	}
	// In-house postings render from search state; the upstream detail API
	// only knows external ids.
	if search.IsInternalID(jobID) {
		jsonError(w, "internal posting has no detail record", http.StatusNotFound)
		return
	}

	detail, err := h.client.JobDetail(r.Context(), jobID)
	if err != nil {
		var ue *search.UpstreamError
		if errors.As(err, &ue) {
			code := http.StatusBadGateway
			if ue.StatusCode == http.StatusNotFound {
				code = http.StatusNotFound
			}
			jsonError(w, ue.Error(), code)
			return
		}
		log.Printf("[search] job detail error for %s: %v", jobID, err)
		jsonError(w, "upstream error", http.StatusBadGateway)
		return
	}
	jsonOK(w, detail)
}

// handleHealth handles GET /health.
func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	jsonOK(w, map[string]string{"status": "ok"})
}

// ─── SSE helpers ─────────────────────────────────────────────────────────────

// sseSink writes server-sent events on a flushable response.
type sseSink struct {
	w http.ResponseWriter
	f http.Flusher
}

func newSSESink(w http.ResponseWriter) (*sseSink, error) {
	f, ok := w.(http.Flusher)
	if !ok {
		return nil, fmt.Errorf("response writer does not support flushing")
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	f.Flush()
	return &sseSink{w: w, f: f}, nil
}

func (s *sseSink) event(name string, v any) {
	payload, err := json.Marshal(v)
	if err != nil {
		log.Printf("[search] sse marshal error: %v", err)
		return
	}
	fmt.Fprintf(s.w, "event: %s\ndata: %s\n\n", name, payload)
	s.f.Flush()
}

// statusListener forwards controller progress as status events. Search runs
// on the request goroutine, so writes here never race.
func (s *sseSink) statusListener() search.StatusListener {
	return search.StatusFunc(func(stage, message string, progress int) {
		s.event("status", map[string]any{
			"stage":    stage,
			"message":  message,
			"progress": progress,
		})
	})
}

// ─── JSON helpers ────────────────────────────────────────────────────────────

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
