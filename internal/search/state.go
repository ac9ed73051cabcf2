package search

// JobState is the full accumulated state of one job search. It is mutated
// frame-by-frame while a stream is in flight and frozen on completion. The
// two per-source lists are stored separately and only concatenated in
// Display, so per-source counts and filters stay correct in every view.
type JobState struct {
	Query         string     `json:"query"`
	FirebaseJobs  []Job      `json:"firebaseJobs"`
	Work24Jobs    []Job      `json:"work24Jobs"`
	FirebaseCount int        `json:"firebaseCount"`
	Work24Count   int        `json:"work24Count"`
	TotalCount    int        `json:"totalCount"`
	Summary       string     `json:"summaryAnswer"`
	Params        *JobParams `json:"params,omitempty"`
	FromCache     bool       `json:"fromCache"`
	Page          int        `json:"currentPage"`
	HasMore       bool       `json:"hasMore"`
}

// reset clears everything for a fresh (non-load-more) search.
func (s *JobState) reset(query string) {
	*s = JobState{Query: query, Page: 1}
}

// Display returns the view for the given source filter. The "all" view is
// internal-then-external, concatenated at read time.
func (s JobState) Display(filter SourceFilter) []Job {
	switch filter {
	case FilterInternal:
		return s.FirebaseJobs
	case FilterExternal:
		return s.Work24Jobs
	default:
		all := make([]Job, 0, len(s.FirebaseJobs)+len(s.Work24Jobs))
		all = append(all, s.FirebaseJobs...)
		all = append(all, s.Work24Jobs...)
		return all
	}
}

// HasResults reports whether either source has loaded at least one item.
func (s JobState) HasResults() bool {
	return len(s.FirebaseJobs) > 0 || len(s.Work24Jobs) > 0
}

// applyBatch installs one source's finished batch: replace on a fresh search,
// append on load-more. Appends drop items whose id is already present for
// that source, so a re-sent page never duplicates. The stored count comes
// from the server when reported, else the loaded list length.
func (s *JobState) applyBatch(b SourceBatch, isLoadMore bool) {
	switch b.Source {
	case SourceExternal:
		s.Work24Jobs = mergeJobs(s.Work24Jobs, b.Jobs, isLoadMore)
		s.Work24Count = countOr(b.Count, len(s.Work24Jobs))
		if b.Total != nil {
			s.TotalCount = *b.Total
		}
	default:
		s.FirebaseJobs = mergeJobs(s.FirebaseJobs, b.Jobs, isLoadMore)
		s.FirebaseCount = countOr(b.Count, len(s.FirebaseJobs))
	}
}

// applyCompleted finalizes counts, pagination and flags from the terminal
// success frame.
func (s *JobState) applyCompleted(c Completed, isLoadMore bool) {
	if c.Summary != "" {
		s.Summary = c.Summary
	}
	if c.HasBatches {
		s.applyBatch(SourceBatch{Source: SourceInternal, Jobs: c.FirebaseJobs, Count: c.FirebaseCount}, isLoadMore)
		s.applyBatch(SourceBatch{Source: SourceExternal, Jobs: c.Work24Jobs, Count: c.Work24Count}, isLoadMore)
	}
	if c.Page > 0 {
		s.Page = c.Page
	}
	if c.HasMore != nil {
		s.HasMore = *c.HasMore
	}
	if c.Params != nil {
		s.Params = c.Params
	}
	if c.FromCache {
		s.FromCache = true
	}
}

func mergeJobs(existing, batch []Job, isLoadMore bool) []Job {
	if !isLoadMore {
		return batch
	}
	seen := make(map[string]struct{}, len(existing))
	for _, j := range existing {
		seen[j.ID] = struct{}{}
	}
	for _, j := range batch {
		if _, dup := seen[j.ID]; dup {
			continue
		}
		existing = append(existing, j)
	}
	return existing
}

func countOr(reported, loaded int) int {
	if reported > 0 {
		return reported
	}
	return loaded
}

// TalentState is the accumulated state of one talent search. Results arrive
// one candidate per frame; pagination is cursor-based, and HasMore is derived
// from cursor presence rather than tracked independently.
type TalentState struct {
	Query         string        `json:"query"`
	Resumes       []Resume      `json:"firebaseResumes"`
	Count         int           `json:"firebaseResumesCount"`
	Summary       string        `json:"summaryAnswer"`
	Params        *TalentParams `json:"params,omitempty"`
	Page          int           `json:"currentPage"`
	NextLastDocID string        `json:"nextLastDocId,omitempty"`
}

func (s *TalentState) reset(query string) {
	*s = TalentState{Query: query, Page: 1}
}

// HasMore reports whether a continuation cursor is present.
func (s TalentState) HasMore() bool { return s.NextLastDocID != "" }

func (s TalentState) HasResults() bool { return len(s.Resumes) > 0 }

// appendResume adds one discovered candidate, dropping duplicates by id.
func (s *TalentState) appendResume(r Resume) {
	for _, have := range s.Resumes {
		if have.ID == r.ID {
			return
		}
	}
	s.Resumes = append(s.Resumes, r)
}

func (s *TalentState) applyCompleted(c TalentCompleted) {
	s.Count = countOr(c.Total, len(s.Resumes))
	s.NextLastDocID = c.NextLastDocID
}
