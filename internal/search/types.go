// Package search implements the incremental multi-source search aggregator:
// one cancellable streaming session per search surface (jobs or talents),
// frame dispatch into accumulated state, pagination tracking, and best-effort
// state snapshots for restoration after navigation.
package search

import "strings"

// Source discriminates the two result providers.
type Source string

const (
	// SourceInternal is the in-house posting store.
	SourceInternal Source = "firebase"
	// SourceExternal is the Work24 public job board API.
	SourceExternal Source = "work24"
)

// InternalIDPrefix marks internal-store ids on the wire; external ids never
// carry it.
const InternalIDPrefix = "firebase_"

// SourceFilter selects which per-source list a display view draws from.
type SourceFilter string

const (
	FilterAll      SourceFilter = "all"
	FilterInternal SourceFilter = "firebase"
	FilterExternal SourceFilter = "work24"
)

// Job is one posting from either source. Identity is the (source, id) pair.
type Job struct {
	ID             string `json:"id"`
	Source         Source `json:"source,omitempty"`
	Title          string `json:"title"`
	Company        string `json:"company"`
	Location       string `json:"location"`
	Salary         string `json:"salary,omitempty"`
	Education      string `json:"education,omitempty"`
	Experience     string `json:"experience,omitempty"`
	EmploymentType string `json:"employment_type,omitempty"`
	Deadline       string `json:"deadline,omitempty"`
	RegDate        string `json:"reg_date,omitempty"`
	URL            string `json:"url,omitempty"`
	Requirements   string `json:"requirements,omitempty"`
}

// IsInternalID reports whether a posting id belongs to the in-house store.
// Such postings render from search state; only external ids have an upstream
// detail record.
func IsInternalID(id string) bool {
	return strings.HasPrefix(id, InternalIDPrefix)
}

// Internal reports whether the posting came from the in-house store, by
// source tag or id prefix (older frames omit the source field).
func (j Job) Internal() bool {
	return j.Source == SourceInternal || IsInternalID(j.ID)
}

// Resume is one candidate profile from the talent surface.
type Resume struct {
	ID                 string   `json:"id"`
	Name               string   `json:"name"`
	ProfileImageURL    string   `json:"profileImageUrl,omitempty"`
	LatestUpdate       string   `json:"latest_update,omitempty"`
	WorkType           []string `json:"workType,omitempty"`
	RegionCodes        []string `json:"regionCodes,omitempty"`
	SelectedJobs       []string `json:"selectedJobs,omitempty"`
	TotalCareerMonths  int      `json:"totalCareerMonths,omitempty"`
	YearsOfExperience  int      `json:"yearsOfExperience,omitempty"`
	BirthYear          int      `json:"birthYear,omitempty"`
	LanguageNames      []string `json:"languageNames,omitempty"`
	CertificateNames   []string `json:"certificateNames,omitempty"`
	Skills             []string `json:"skills,omitempty"`
	CareerSummary      string   `json:"careerSummary,omitempty"`
	EducationLevelCode int      `json:"educationLevelCode,omitempty"`
	Disability         string   `json:"disability,omitempty"`
}

// JobParams are the structured filters the upstream extracts from the query.
type JobParams struct {
	Region     string   `json:"region,omitempty"`
	Occupation []string `json:"occupation,omitempty"`
	Career     string   `json:"career,omitempty"`
	EmpTp      []string `json:"empTp,omitempty"`
}

// TalentParams are the extracted filters for the talent surface.
type TalentParams struct {
	Region    string   `json:"region,omitempty"`
	Jobs      []string `json:"jobs,omitempty"`
	MinYears  int      `json:"minYears,omitempty"`
	Education string   `json:"education,omitempty"`
	Languages []string `json:"languages,omitempty"`
	Skills    []string `json:"skills,omitempty"`
}

// JobDetail is the full Work24 record returned by the on-demand detail
// lookup; it is not part of the streaming aggregation path.
type JobDetail struct {
	Job struct {
		Title     string `json:"title"`
		DetailURL string `json:"detail_url,omitempty"`
		Salary    string `json:"salary,omitempty"`
		Deadline  string `json:"deadline,omitempty"`
	} `json:"job"`
	Company struct {
		Name     string `json:"name"`
		Location string `json:"location,omitempty"`
	} `json:"company"`
}
