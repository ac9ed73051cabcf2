package search

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"modoojob/search-service/internal/region"
	"modoojob/search-service/internal/stream"
)

// DefaultIdleTimeout bounds the gap between two stream reads. A stalled
// upstream used to hang the search surface until manual cancellation; now it
// terminates as a transport error. Zero disables the watchdog.
const DefaultIdleTimeout = 90 * time.Second

// ValidationError wraps a user-facing validation message.
type ValidationError struct{ Msg string }

func (e *ValidationError) Error() string { return e.Msg }

// ErrEmptyQuery rejects blank searches before any request is made.
var ErrEmptyQuery = &ValidationError{Msg: "검색어를 입력하세요."}

// errSuperseded means a newer search replaced this session; its frames are
// discarded and its outcome is never surfaced.
var errSuperseded = errors.New("search session superseded")

// errCancelled means the user (or shutdown) aborted this session.
var errCancelled = errors.New("search cancelled")

// errIdleTimeout means the stream watchdog fired between reads.
var errIdleTimeout = errors.New("스트림 응답 시간 초과")

// StatusListener consumes the human-readable progress feed: stage name,
// message, and a 0–100 progress percentage.
type StatusListener interface {
	Status(stage, message string, progress int)
}

// StatusFunc adapts a function to StatusListener.
type StatusFunc func(stage, message string, progress int)

func (f StatusFunc) Status(stage, message string, progress int) { f(stage, message, progress) }

// ─── Session ─────────────────────────────────────────────────────────────────

// session is the explicit "current search" value object: cancellation for the
// HTTP request, the stream decoder handle, and the idle watchdog. A controller
// holds at most one; installing a new one only happens after the old one's
// teardown completes, which makes at-most-one-in-flight structural.
type session struct {
	ctx    context.Context
	cancel context.CancelFunc
	page   int
	done   chan struct{}

	mu       sync.Mutex
	dec      *stream.Decoder
	idle     *time.Timer
	timedOut bool
}

func newSession(parent context.Context, page int) *session {
	ctx, cancel := context.WithCancel(parent)
	return &session{ctx: ctx, cancel: cancel, page: page, done: make(chan struct{})}
}

// install hands the opened stream to the session so abort can reach it.
func (s *session) install(dec *stream.Decoder) {
	s.mu.Lock()
	s.dec = dec
	s.mu.Unlock()
}

// abort cancels the request and the stream reader independently. Safe to call
// with nothing active, repeatedly, and concurrently with a pending read.
func (s *session) abort() {
	s.cancel()
	s.mu.Lock()
	dec := s.dec
	s.mu.Unlock()
	if dec != nil {
		dec.Close()
	}
}

// armIdle (re)starts the watchdog; it fires once if no frame arrives within d.
func (s *session) armIdle(d time.Duration) {
	if d <= 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.idle != nil {
		s.idle.Stop()
	}
	s.idle = time.AfterFunc(d, func() {
		s.mu.Lock()
		s.timedOut = true
		dec := s.dec
		s.mu.Unlock()
		if dec != nil {
			dec.Close()
		}
	})
}

// finish stops the watchdog, releases the decoder, and signals teardown done.
func (s *session) finish() {
	s.mu.Lock()
	if s.idle != nil {
		s.idle.Stop()
	}
	dec := s.dec
	s.mu.Unlock()
	if dec != nil {
		dec.Close()
	}
	close(s.done)
}

// classify maps a failed stream read to the session's real outcome.
func (s *session) classify(err error) error {
	if s.ctx.Err() != nil {
		return errCancelled
	}
	s.mu.Lock()
	timedOut := s.timedOut
	s.mu.Unlock()
	if timedOut {
		return errIdleTimeout
	}
	return err
}

// ─── Job controller ──────────────────────────────────────────────────────────

// JobController coordinates the job search surface: at most one in-flight
// stream, frame dispatch into JobState, pagination, and snapshots.
//
// Search blocks until its stream reaches a terminal outcome; Cancel and a
// concurrent Search supersede it from any goroutine.
type JobController struct {
	client *Client
	snap   *Snapshotter

	// DefaultRegion is attached to requests whose query names no region;
	// it comes from the caller's profile. Empty disables the defaulting.
	DefaultRegion string
	// Listener receives progress updates; nil discards them.
	Listener StatusListener
	// IdleTimeout bounds the gap between stream reads; 0 disables.
	IdleTimeout time.Duration

	mu          sync.Mutex
	state       JobState
	cur         *session
	loading     bool
	loadingMore bool
	errMsg      string
}

// NewJobController builds a controller. snap may be nil to disable the
// session cache.
func NewJobController(client *Client, snap *Snapshotter) *JobController {
	return &JobController{
		client:      client,
		snap:        snap,
		IdleTimeout: DefaultIdleTimeout,
	}
}

// SetSnapshotter binds (or replaces) the session-cache slot. Call before the
// first Search.
func (c *JobController) SetSnapshotter(snap *Snapshotter) { c.snap = snap }

// State returns a copy of the accumulated search state.
func (c *JobController) State() JobState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Err returns the surfaced error banner text, empty when none.
func (c *JobController) Err() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.errMsg
}

// InProgress reports whether a search or load-more is currently running.
func (c *JobController) InProgress() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading || c.loadingMore
}

// Search runs one job search to a terminal outcome. An empty query returns a
// *ValidationError without any request. A prior in-flight session is aborted
// and its teardown awaited before state is touched. isLoadMore false resets
// all accumulated state and erases the snapshot slot; true preserves and
// appends. Cancellation (user or supersession) returns nil.
func (c *JobController) Search(ctx context.Context, query string, page int, isLoadMore bool) error {
	query = strings.TrimSpace(query)
	if query == "" {
		return ErrEmptyQuery
	}
	if page < 1 {
		page = 1
	}

	sess := newSession(ctx, page)

	c.supersede(sess, func() {
		if isLoadMore {
			c.loadingMore = true
		} else {
			c.loading = true
			c.errMsg = ""
			c.state.reset(query)
		}
	})
	defer sess.finish()

	if !isLoadMore && c.snap != nil {
		// Erase before requesting so a failed search never shows stale data.
		c.snap.Clear(ctx)
	}

	c.status("started", "검색 시작...", 5)

	err := c.run(sess, query, isLoadMore)
	return c.settle(sess, err)
}

// supersede aborts and awaits any prior session, then installs sess and runs
// prepare under the state lock. No frame from the old stream can be applied
// after prepare runs.
func (c *JobController) supersede(sess *session, prepare func()) {
	c.mu.Lock()
	prev := c.cur
	c.cur = nil
	c.mu.Unlock()

	if prev != nil {
		prev.abort()
		<-prev.done
	}

	c.mu.Lock()
	c.cur = sess
	prepare()
	c.mu.Unlock()
}

func (c *JobController) run(sess *session, query string, isLoadMore bool) error {
	req := JobRequest{Query: query, Page: sess.page, PerPage: PerPage}
	if c.DefaultRegion != "" && !region.HasRegion(query) {
		req.Region = c.DefaultRegion
	}

	dec, err := c.client.OpenJobStream(sess.ctx, req)
	if err != nil {
		return sess.classify(err)
	}
	sess.install(dec)

	for {
		sess.armIdle(c.IdleTimeout)
		f, err := dec.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return sess.classify(err)
		}

		ev, err := decodeJobEvent(f.Data)
		if err != nil {
			var unknown *errUnknownFrame
			if errors.As(err, &unknown) {
				slog.Warn("job search: skipping frame", "err", err)
				continue
			}
			return err
		}

		if err := c.apply(sess, ev, isLoadMore); err != nil {
			return err
		}
	}
}

// apply dispatches one decoded event into state. It refuses to mutate if the
// session is no longer current.
func (c *JobController) apply(sess *session, ev JobEvent, isLoadMore bool) error {
	c.mu.Lock()
	if c.cur != sess {
		c.mu.Unlock()
		return errSuperseded
	}

	var (
		stage    string
		message  string
		progress int
		save     bool
	)

	switch ev := ev.(type) {
	case CacheHit:
		c.state.FromCache = true
		stage, message, progress = "cache", fallback(ev.Message, "💾 캐시된 결과"), fallbackInt(ev.Progress, 20)

	case StageStarted:
		stage, message, progress = ev.Stage, fallback(ev.Message, startedMessage(ev.Stage)), fallbackInt(ev.Progress, startedProgress(ev.Stage))

	case ParamsExtracted:
		c.state.Params = ev.Params
		stage, message, progress = "extract", fallback(ev.Message, "✅ 분석 완료"), fallbackInt(ev.Progress, 15)

	case SourceBatch:
		c.state.applyBatch(ev, isLoadMore)
		save = true
		if ev.Source == SourceExternal {
			stage, message, progress = "work24_search", fallback(ev.Message, fmt.Sprintf("🌐 외부 %d개", len(ev.Jobs))), fallbackInt(ev.Progress, 60)
		} else {
			stage, message, progress = "firebase_search", fallback(ev.Message, fmt.Sprintf("🔥 자사 %d개", len(ev.Jobs))), fallbackInt(ev.Progress, 35)
		}

	case SummaryChunk:
		if ev.Partial != "" {
			c.state.Summary = ev.Partial
		}
		stage, message, progress = "synthesis", "✨ AI 요약 중...", fallbackInt(ev.Progress, 80)

	case SummaryDone:
		stage, message, progress = "synthesis", "✅ 요약 완료", fallbackInt(ev.Progress, 95)

	case Completed:
		c.state.applyCompleted(ev, isLoadMore)
		if c.state.Page < sess.page {
			c.state.Page = sess.page
		}
		c.loading = false
		c.loadingMore = false
		save = true
		stage, message, progress = "complete", fallback(ev.Message, "✅ 완료"), 100

	case StreamFailed:
		c.mu.Unlock()
		return &streamError{msg: ev.Message}
	}
	c.mu.Unlock()

	c.status(stage, message, progress)
	if save {
		c.saveSnapshot(sess.ctx)
	}
	return nil
}

// settle resolves the session's terminal outcome: releases ownership, clears
// the in-progress indicator, and surfaces or suppresses the error.
func (c *JobController) settle(sess *session, err error) error {
	c.mu.Lock()
	owned := c.cur == sess
	if owned {
		c.cur = nil
		c.loading = false
		c.loadingMore = false
	}
	hasResults := c.state.HasResults()
	c.mu.Unlock()

	// A superseded or cancelled session ends silently; the newer search (or
	// the cancel action) owns whatever the UI shows next.
	if !owned || err == nil || errors.Is(err, errSuperseded) || errors.Is(err, errCancelled) {
		return nil
	}

	msg := surfaceMessage(err, hasResults)
	c.mu.Lock()
	c.errMsg = msg
	c.mu.Unlock()
	c.status("error", "오류 발생", 0)
	return errors.New(msg)
}

// Cancel aborts the in-flight search, if any. Idempotent: with nothing active
// it does nothing and leaves state untouched.
func (c *JobController) Cancel() {
	c.mu.Lock()
	sess := c.cur
	c.cur = nil
	if sess != nil {
		c.loading = false
		c.loadingMore = false
	}
	c.mu.Unlock()

	if sess == nil {
		return
	}
	sess.abort()
	c.status("idle", "검색 취소됨", 0)
}

// LoadMore fetches the next page. No-op unless the server reported more
// results and nothing is currently loading.
func (c *JobController) LoadMore(ctx context.Context) error {
	c.mu.Lock()
	ok := c.state.HasMore && !c.loading && !c.loadingMore
	query := c.state.Query
	next := c.state.Page + 1
	c.mu.Unlock()

	if !ok {
		return nil
	}
	return c.Search(ctx, query, next, true)
}

// Detail proxies the on-demand detail lookup for an external posting.
func (c *JobController) Detail(ctx context.Context, jobID string) (*JobDetail, error) {
	return c.client.JobDetail(ctx, jobID)
}

func (c *JobController) status(stage, message string, progress int) {
	if c.Listener != nil {
		c.Listener.Status(stage, message, progress)
	}
}

// ─── Helpers shared by both controllers ──────────────────────────────────────

// streamError is an error frame reported by the upstream inside the stream.
type streamError struct{ msg string }

func (e *streamError) Error() string { return e.msg }

// surfaceMessage reframes a terminal failure for the UI banner: partial when
// results already arrived, a connection error otherwise.
func surfaceMessage(err error, hasResults bool) string {
	if hasResults {
		return "일부 데이터 로드 실패: " + err.Error()
	}
	var se *streamError
	if errors.As(err, &se) {
		return se.msg
	}
	return "연결 오류: " + err.Error()
}

func fallback(s, def string) string {
	if s != "" {
		return s
	}
	return def
}

func fallbackInt(n, def int) int {
	if n != 0 {
		return n
	}
	return def
}

func startedMessage(stage string) string {
	switch stage {
	case "extract":
		return "🔍 조건 분석 중..."
	case "firebase_search":
		return "🔥 자사 검색 중..."
	case "work24_search":
		return "🌐 외부 검색 중..."
	case "synthesis":
		return "✨ AI 요약 생성 중..."
	}
	return "검색 중..."
}

func startedProgress(stage string) int {
	switch stage {
	case "extract":
		return 10
	case "firebase_search":
		return 20
	case "work24_search":
		return 40
	case "synthesis":
		return 70
	}
	return 5
}
