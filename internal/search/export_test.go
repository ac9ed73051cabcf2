package search

// ApplyBatch exposes the accumulator to the black-box state tests.
func (s *JobState) ApplyBatch(src Source, jobs []Job, count int, isLoadMore bool) {
	s.applyBatch(SourceBatch{Source: src, Jobs: jobs, Count: count}, isLoadMore)
}
