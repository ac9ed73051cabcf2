package search

import (
	"encoding/json"
	"fmt"

	"modoojob/search-service/internal/stream"
)

// The job stream tags frames with a stage + status pair inside the JSON
// payload; the talent stream tags them with an SSE event name. Both are
// decoded here into closed event types so state application can dispatch
// exhaustively instead of string-matching ad hoc payload fields.

// ─── Job stream ──────────────────────────────────────────────────────────────

// jobEnvelope is the raw wire shape of one job-stream frame. Which fields are
// populated depends on (stage, status).
type jobEnvelope struct {
	Stage         string     `json:"stage"`
	Status        string     `json:"status"`
	Message       string     `json:"message"`
	Progress      int        `json:"progress"`
	Params        *JobParams `json:"params"`
	Jobs          []Job      `json:"jobs"`
	Count         int        `json:"count"`
	Total         *int       `json:"total"`
	PartialAnswer string     `json:"partial_answer"`
	Summary       string     `json:"summary"`
	FirebaseJobs  []Job      `json:"firebase_jobs"`
	Work24Jobs    []Job      `json:"work24_jobs"`
	FirebaseCount int        `json:"firebase_count"`
	Work24Count   int        `json:"work24_count"`
	Page          int        `json:"page"`
	HasMore       *bool      `json:"has_more"`
	FromCache     bool       `json:"from_cache"`
	Error         string     `json:"error"`
}

// JobEvent is one decoded job-stream frame.
type JobEvent interface{ jobEvent() }

// CacheHit announces the upstream served the whole search from its cache.
type CacheHit struct {
	Message  string
	Progress int
}

// StageStarted is the generic "stage began" progress tick (extract,
// firebase_search, work24_search, synthesis all emit one).
type StageStarted struct {
	Stage    string
	Message  string
	Progress int
}

// ParamsExtracted carries the structured filters parsed from the query.
type ParamsExtracted struct {
	Params   *JobParams
	Message  string
	Progress int
}

// SourceBatch is one source's finished result batch.
type SourceBatch struct {
	Source   Source
	Jobs     []Job
	Count    int  // server-reported; falls back to len(Jobs) when zero
	Total    *int // grand total across pagination, external source only
	Message  string
	Progress int
}

// SummaryChunk is an incremental piece of the AI summary.
type SummaryChunk struct {
	Partial  string
	Progress int
}

// SummaryDone marks the synthesis stage finished.
type SummaryDone struct {
	Progress int
}

// Completed is the terminal success frame; any field may also restate the
// final batches for clients that missed intermediate frames.
type Completed struct {
	Message       string
	Summary       string
	FirebaseJobs  []Job
	Work24Jobs    []Job
	FirebaseCount int
	Work24Count   int
	HasBatches    bool // whether the frame restated the result lists
	Page          int
	HasMore       *bool
	Params        *JobParams
	FromCache     bool
}

// StreamFailed is the terminal error frame.
type StreamFailed struct {
	Message string
}

func (CacheHit) jobEvent()        {}
func (StageStarted) jobEvent()    {}
func (ParamsExtracted) jobEvent() {}
func (SourceBatch) jobEvent()     {}
func (SummaryChunk) jobEvent()    {}
func (SummaryDone) jobEvent()     {}
func (Completed) jobEvent()       {}
func (StreamFailed) jobEvent()    {}

// errUnknownFrame marks frames this client cannot use — an unrecognized
// stage/status/event, or a payload whose fields do not fit the envelope.
// Callers log and skip rather than abort; one bad frame never ends a search.
type errUnknownFrame struct {
	stage, status, event string
	cause                error
}

func (e *errUnknownFrame) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("frame does not fit envelope: %v", e.cause)
	}
	if e.event != "" {
		return fmt.Sprintf("unknown stream event %q", e.event)
	}
	return fmt.Sprintf("unknown stream frame stage=%q status=%q", e.stage, e.status)
}

// decodeJobEvent converts one frame payload into a JobEvent.
func decodeJobEvent(data json.RawMessage) (JobEvent, error) {
	var env jobEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, &errUnknownFrame{cause: err}
	}

	// An error field terminates the search regardless of stage.
	if env.Error != "" || env.Stage == "error" {
		msg := env.Error
		if msg == "" {
			msg = "알 수 없는 오류"
		}
		return StreamFailed{Message: msg}, nil
	}

	switch env.Stage {
	case "cache":
		if env.Status == "hit" {
			return CacheHit{Message: env.Message, Progress: env.Progress}, nil
		}

	case "extract":
		switch env.Status {
		case "started":
			return StageStarted{Stage: env.Stage, Message: env.Message, Progress: env.Progress}, nil
		case "finished":
			return ParamsExtracted{Params: env.Params, Message: env.Message, Progress: env.Progress}, nil
		}

	case "firebase_search", "work24_search":
		src := SourceInternal
		if env.Stage == "work24_search" {
			src = SourceExternal
		}
		switch env.Status {
		case "started":
			return StageStarted{Stage: env.Stage, Message: env.Message, Progress: env.Progress}, nil
		case "finished":
			return SourceBatch{
				Source:   src,
				Jobs:     env.Jobs,
				Count:    env.Count,
				Total:    env.Total,
				Message:  env.Message,
				Progress: env.Progress,
			}, nil
		}

	case "synthesis":
		switch env.Status {
		case "started":
			return StageStarted{Stage: env.Stage, Message: env.Message, Progress: env.Progress}, nil
		case "streaming":
			return SummaryChunk{Partial: env.PartialAnswer, Progress: env.Progress}, nil
		case "finished":
			return SummaryDone{Progress: env.Progress}, nil
		}

	case "complete":
		if env.Status == "success" {
			return Completed{
				Message:       env.Message,
				Summary:       env.Summary,
				FirebaseJobs:  env.FirebaseJobs,
				Work24Jobs:    env.Work24Jobs,
				FirebaseCount: env.FirebaseCount,
				Work24Count:   env.Work24Count,
				HasBatches:    env.FirebaseJobs != nil || env.Work24Jobs != nil,
				Page:          env.Page,
				HasMore:       env.HasMore,
				Params:        env.Params,
				FromCache:     env.FromCache,
			}, nil
		}
	}

	return nil, &errUnknownFrame{stage: env.Stage, status: env.Status}
}

// ─── Talent stream ───────────────────────────────────────────────────────────

// talentEnvelope is the raw wire shape of one talent-stream data line.
type talentEnvelope struct {
	Status        string        `json:"status"`
	Params        *TalentParams `json:"params"`
	Resume        *Resume       `json:"resume"`
	Index         int           `json:"index"`
	Total         int           `json:"total"`
	NextLastDocID string        `json:"nextLastDocId"`
	Error         string        `json:"error"`
}

// TalentEvent is one decoded talent-stream frame.
type TalentEvent interface{ talentEvent() }

// TalentPhase reports upstream progress ("extracting_params", "searching").
type TalentPhase struct {
	Status string
}

// TalentParamsExtracted carries the structured filters for the talent search.
type TalentParamsExtracted struct {
	Params *TalentParams
}

// TalentFound is one discovered candidate; the stream emits one per match.
type TalentFound struct {
	Resume Resume
	Index  int
}

// TalentCompleted is the terminal success frame. An absent NextLastDocID
// means the result set is exhausted.
type TalentCompleted struct {
	Total         int
	NextLastDocID string
}

// TalentFailed is the terminal error frame.
type TalentFailed struct {
	Message string
}

func (TalentPhase) talentEvent()           {}
func (TalentParamsExtracted) talentEvent() {}
func (TalentFound) talentEvent()           {}
func (TalentCompleted) talentEvent()       {}
func (TalentFailed) talentEvent()          {}

// decodeTalentEvent converts one event-tagged frame into a TalentEvent.
func decodeTalentEvent(f stream.Frame) (TalentEvent, error) {
	var env talentEnvelope
	if err := json.Unmarshal(f.Data, &env); err != nil {
		return nil, &errUnknownFrame{cause: err}
	}

	switch f.Event {
	case "status":
		return TalentPhase{Status: env.Status}, nil
	case "params":
		return TalentParamsExtracted{Params: env.Params}, nil
	case "result":
		if env.Resume == nil {
			return nil, &errUnknownFrame{event: "result (no resume)"}
		}
		return TalentFound{Resume: *env.Resume, Index: env.Index}, nil
	case "complete":
		return TalentCompleted{Total: env.Total, NextLastDocID: env.NextLastDocID}, nil
	case "error":
		msg := env.Error
		if msg == "" {
			msg = "인재 검색 실패"
		}
		return TalentFailed{Message: msg}, nil
	}

	return nil, &errUnknownFrame{event: f.Event}
}
