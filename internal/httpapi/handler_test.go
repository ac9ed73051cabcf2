package httpapi_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"modoojob/search-service/internal/httpapi"
	"modoojob/search-service/internal/search"
	"modoojob/search-service/internal/snapshot"
)

// ── Fixtures ───────────────────────────────────────────────────────────────

// newUpstream fakes the streaming search backend: one job batch, then the
// terminal frame.
func newUpstream(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/stream", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		frames := []string{
			`{"stage":"work24_search","status":"finished","jobs":[{"id":"W1","title":"백엔드 개발자","company":"모두잡"}],"count":1}`,
			`{"stage":"complete","status":"success","has_more":true}`,
		}
		for _, f := range frames {
			fmt.Fprintf(w, "data: %s\n\n", f)
		}
	})
	mux.HandleFunc("/detail/W1", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"job":{"title":"백엔드 개발자"},"company":{"name":"모두잡"}}`)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newHandler(t *testing.T) *httpapi.Handler {
	t.Helper()
	upstream := newUpstream(t)
	store := snapshot.NewMemoryStore()
	client := search.NewClient(upstream.URL, upstream.URL)
	return httpapi.NewHandler(client, store)
}

func serve(h *httpapi.Handler, req *http.Request) *httptest.ResponseRecorder {
	mux := http.NewServeMux()
	h.RegisterRoutes(mux)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

// sseEvents splits a text/event-stream body into event-name → payload pairs.
func sseEvents(t *testing.T, body string) []struct{ Name, Data string } {
	t.Helper()
	var out []struct{ Name, Data string }
	for _, block := range strings.Split(strings.TrimSpace(body), "\n\n") {
		var ev struct{ Name, Data string }
		for _, line := range strings.Split(block, "\n") {
			if v, ok := strings.CutPrefix(line, "event: "); ok {
				ev.Name = v
			}
			if v, ok := strings.CutPrefix(line, "data: "); ok {
				ev.Data = v
			}
		}
		if ev.Name != "" || ev.Data != "" {
			out = append(out, ev)
		}
	}
	return out
}

func searchRequest(path, query string, loadMore bool) *http.Request {
	body := fmt.Sprintf(`{"query":%q,"loadMore":%v}`, query, loadMore)
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("x-user-id", "u-1")
	return req
}

// ── Streaming search ───────────────────────────────────────────────────────

func TestJobSearch_StreamsStatusAndComplete(t *testing.T) {
	h := newHandler(t)

	rec := serve(h, searchRequest("/search/jobs", "개발자", false))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("Content-Type = %q", ct)
	}

	events := sseEvents(t, rec.Body.String())
	if len(events) < 2 {
		t.Fatalf("got %d events, want status frames plus a terminal frame", len(events))
	}
	if events[0].Name != "status" {
		t.Errorf("first event = %q, want status", events[0].Name)
	}

	last := events[len(events)-1]
	if last.Name != "complete" {
		t.Fatalf("terminal event = %q (%s), want complete", last.Name, last.Data)
	}
	var payload struct {
		State struct {
			Work24Jobs []search.Job `json:"work24Jobs"`
			HasMore    bool         `json:"hasMore"`
		} `json:"state"`
	}
	if err := json.Unmarshal([]byte(last.Data), &payload); err != nil {
		t.Fatalf("decode complete payload: %v", err)
	}
	if len(payload.State.Work24Jobs) != 1 || payload.State.Work24Jobs[0].ID != "W1" {
		t.Errorf("Work24Jobs = %+v, want the one upstream job", payload.State.Work24Jobs)
	}
	if !payload.State.HasMore {
		t.Error("HasMore not carried into the terminal frame")
	}
}

func TestJobSearch_RequiresUserHeader(t *testing.T) {
	h := newHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/search/jobs", strings.NewReader(`{"query":"개발자"}`))
	rec := serve(h, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestJobSearch_EmptyQueryRejectedBeforeStreaming(t *testing.T) {
	h := newHandler(t)

	rec := serve(h, searchRequest("/search/jobs", "   ", false))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want plain JSON error", ct)
	}
}

func TestLoadMore_WithoutPriorStateConflicts(t *testing.T) {
	h := newHandler(t)

	rec := serve(h, searchRequest("/search/jobs", "", true))
	if rec.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", rec.Code)
	}
}

func TestLoadMore_ResumesFromSnapshot(t *testing.T) {
	h := newHandler(t)

	if rec := serve(h, searchRequest("/search/jobs", "개발자", false)); rec.Code != http.StatusOK {
		t.Fatalf("initial search status = %d", rec.Code)
	}

	rec := serve(h, searchRequest("/search/jobs", "", true))
	if rec.Code != http.StatusOK {
		t.Fatalf("loadMore status = %d, body %s", rec.Code, rec.Body)
	}
	events := sseEvents(t, rec.Body.String())
	last := events[len(events)-1]
	if last.Name != "complete" {
		t.Fatalf("terminal event = %q, want complete", last.Name)
	}
	var payload struct {
		State struct {
			CurrentPage int `json:"currentPage"`
		} `json:"state"`
	}
	if err := json.Unmarshal([]byte(last.Data), &payload); err != nil {
		t.Fatal(err)
	}
	if payload.State.CurrentPage != 2 {
		t.Errorf("CurrentPage = %d after loadMore, want 2", payload.State.CurrentPage)
	}
}

// ── State restore ──────────────────────────────────────────────────────────

func TestJobState_RestoredAcrossRequests(t *testing.T) {
	h := newHandler(t)

	if rec := serve(h, searchRequest("/search/jobs", "개발자", false)); rec.Code != http.StatusOK {
		t.Fatalf("search status = %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/search/jobs/state", nil)
	req.Header.Set("x-user-id", "u-1")
	rec := serve(h, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("state status = %d", rec.Code)
	}

	var payload struct {
		Restored bool `json:"restored"`
		State    struct {
			Query string `json:"query"`
		} `json:"state"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatal(err)
	}
	if !payload.Restored || payload.State.Query != "개발자" {
		t.Errorf("restore payload = %+v, want restored state for 개발자", payload)
	}
}

func TestJobState_ScopedPerUser(t *testing.T) {
	h := newHandler(t)

	if rec := serve(h, searchRequest("/search/jobs", "개발자", false)); rec.Code != http.StatusOK {
		t.Fatalf("search status = %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/search/jobs/state", nil)
	req.Header.Set("x-user-id", "someone-else")
	rec := serve(h, req)

	var payload struct {
		Restored bool `json:"restored"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatal(err)
	}
	if payload.Restored {
		t.Error("another user's snapshot leaked across slots")
	}
}

// ── Detail and health ──────────────────────────────────────────────────────

func TestJobDetail_Proxied(t *testing.T) {
	h := newHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/jobs/W1", nil)
	rec := serve(h, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}

	var detail search.JobDetail
	if err := json.Unmarshal(rec.Body.Bytes(), &detail); err != nil {
		t.Fatal(err)
	}
	if detail.Job.Title != "백엔드 개발자" || detail.Company.Name != "모두잡" {
		t.Errorf("detail = %+v", detail)
	}
}

func TestJobDetail_InternalIDNeverProxied(t *testing.T) {
	// In-house postings render from search state; the upstream detail API
	// must not be asked about them.
	upstreamHit := false
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		upstreamHit = true
		http.NotFound(w, r)
	})
	upstream := httptest.NewServer(mux)
	t.Cleanup(upstream.Close)
	h := httpapi.NewHandler(search.NewClient(upstream.URL, upstream.URL), snapshot.NewMemoryStore())

	req := httptest.NewRequest(http.MethodGet, "/jobs/firebase_abc123", nil)
	rec := serve(h, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
	if upstreamHit {
		t.Error("internal posting id was proxied upstream")
	}
}

func TestJobDetail_NotFoundPassedThrough(t *testing.T) {
	h := newHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/jobs/missing", nil)
	rec := serve(h, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestHealth(t *testing.T) {
	h := newHandler(t)

	rec := serve(h, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d", rec.Code)
	}
}
