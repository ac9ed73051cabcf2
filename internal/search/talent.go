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
)

// TalentController coordinates the talent search surface. It mirrors
// JobController but speaks the event-tagged protocol: one frame per
// discovered candidate, cursor-based continuation instead of page numbers.
type TalentController struct {
	client *Client
	snap   *Snapshotter

	DefaultRegion string
	Listener      StatusListener
	IdleTimeout   time.Duration

	mu          sync.Mutex
	state       TalentState
	cur         *session
	loading     bool
	loadingMore bool
	errMsg      string
}

// NewTalentController builds a controller. snap may be nil to disable the
// session cache.
func NewTalentController(client *Client, snap *Snapshotter) *TalentController {
	return &TalentController{
		client:      client,
		snap:        snap,
		IdleTimeout: DefaultIdleTimeout,
	}
}

// SetSnapshotter binds (or replaces) the session-cache slot. Call before the
// first Search.
func (c *TalentController) SetSnapshotter(snap *Snapshotter) { c.snap = snap }

func (c *TalentController) State() TalentState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *TalentController) Err() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.errMsg
}

func (c *TalentController) InProgress() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading || c.loadingMore
}

// Search runs one talent search to a terminal outcome. Semantics match
// JobController.Search; continuation uses the stored cursor instead of a page
// number, so page is only tracked for display.
func (c *TalentController) Search(ctx context.Context, query string, page int, isLoadMore bool) error {
	query = strings.TrimSpace(query)
	if query == "" {
		return ErrEmptyQuery
	}
	if page < 1 {
		page = 1
	}

	sess := newSession(ctx, page)

	var cursor string
	c.supersede(sess, func() {
		if isLoadMore {
			c.loadingMore = true
			cursor = c.state.NextLastDocID
		} else {
			c.loading = true
			c.errMsg = ""
			c.state.reset(query)
		}
	})
	defer sess.finish()

	if !isLoadMore && c.snap != nil {
		c.snap.Clear(ctx)
	}

	c.status("started", "검색 시작...", 5)

	err := c.run(sess, query, cursor, isLoadMore)
	return c.settle(sess, err)
}

func (c *TalentController) supersede(sess *session, prepare func()) {
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

func (c *TalentController) run(sess *session, query, cursor string, isLoadMore bool) error {
	req := TalentRequest{Query: query, Limit: PerPage}
	if isLoadMore && cursor != "" {
		req.LastDocID = cursor
	}
	if c.DefaultRegion != "" && !region.HasRegion(query) {
		req.Region = c.DefaultRegion
	}

	dec, err := c.client.OpenTalentStream(sess.ctx, req)
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

		ev, err := decodeTalentEvent(f)
		if err != nil {
			var unknown *errUnknownFrame
			if errors.As(err, &unknown) {
				slog.Warn("talent search: skipping frame", "err", err)
				continue
			}
			return err
		}

		if err := c.apply(sess, ev); err != nil {
			return err
		}
	}
}

func (c *TalentController) apply(sess *session, ev TalentEvent) error {
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
	case TalentPhase:
		switch ev.Status {
		case "extracting_params":
			stage, message, progress = "extract", "🔍 조건 분석 중...", 10
		case "searching":
			stage, message, progress = "search", "🔥 인재 검색 중...", 30
		default:
			c.mu.Unlock()
			return nil
		}

	case TalentParamsExtracted:
		c.state.Params = ev.Params
		stage, message, progress = "extract", "✅ 분석 완료", 20

	case TalentFound:
		c.state.appendResume(ev.Resume)
		stage = "search"
		message = fmt.Sprintf("🔥 인재 %d명 발견...", ev.Index+1)
		progress = 50 + ev.Index*2
		if progress > 99 {
			progress = 99
		}

	case TalentCompleted:
		c.state.applyCompleted(ev)
		if c.state.Page < sess.page {
			c.state.Page = sess.page
		}
		c.loading = false
		c.loadingMore = false
		save = true
		stage, message, progress = "complete", "✅ 인재 검색 완료", 100

	case TalentFailed:
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

func (c *TalentController) settle(sess *session, err error) error {
	c.mu.Lock()
	owned := c.cur == sess
	if owned {
		c.cur = nil
		c.loading = false
		c.loadingMore = false
	}
	hasResults := c.state.HasResults()
	c.mu.Unlock()

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

// Cancel aborts the in-flight search, if any. Idempotent.
func (c *TalentController) Cancel() {
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

// LoadMore resumes from the stored cursor. No-op unless a cursor is present
// and nothing is loading.
func (c *TalentController) LoadMore(ctx context.Context) error {
	c.mu.Lock()
	ok := c.state.HasMore() && !c.loading && !c.loadingMore
	query := c.state.Query
	next := c.state.Page + 1
	c.mu.Unlock()

	if !ok {
		return nil
	}
	return c.Search(ctx, query, next, true)
}

func (c *TalentController) status(stage, message string, progress int) {
	if c.Listener != nil {
		c.Listener.Status(stage, message, progress)
	}
}
