package job

import (
	"strings"
	"time"

	jobDatamodel "github.com/frahmantamala/recruitment/internal/core/datamodel/job"
)

type Job struct {
	ID          int64
	Title       string
	Description string
	CompanyName string
	Location    string
	Salary      float64
	Skills      []string
	Experience  int
	PostedBy    *int64
	CreatedAt   time.Time
}

// Match is how well one set of skills covers a job's requirements.
type Match struct {
	Score   float64
	Matched []string
	Missing []string
}

// NormalizeSkills lowercases, trims and dedupes skills, keeping the first
// occurrence order. Blank entries are dropped.
func NormalizeSkills(skills []string) []string {
	out := make([]string, 0, len(skills))
	seen := make(map[string]struct{}, len(skills))
	for _, s := range skills {
		s = strings.ToLower(strings.TrimSpace(s))
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

// Score returns the fraction of the job's skills present in have. A job
// without skills scores 0.
func (j *Job) Score(have []string) Match {
	want := NormalizeSkills(j.Skills)
	have = NormalizeSkills(have)

	wanted := make(map[string]struct{}, len(want))
	for _, s := range want {
		wanted[s] = struct{}{}
	}
	owned := make(map[string]struct{}, len(have))
	for _, s := range have {
		owned[s] = struct{}{}
	}

	m := Match{Matched: []string{}, Missing: []string{}}
	for _, s := range have {
		if _, ok := wanted[s]; ok {
			m.Matched = append(m.Matched, s)
		}
	}
	for _, s := range want {
		if _, ok := owned[s]; !ok {
			m.Missing = append(m.Missing, s)
		}
	}
	if len(want) > 0 {
		m.Score = float64(len(m.Matched)) / float64(len(want))
	}
	return m
}

func (j *Job) ToResponse(withDescription bool) JobResponse {
	resp := JobResponse{
		ID:          j.ID,
		Title:       j.Title,
		CompanyName: j.CompanyName,
		Location:    j.Location,
		Salary:      j.Salary,
		Skills:      j.Skills,
		Experience:  j.Experience,
		CreatedAt:   j.CreatedAt.UTC().Format(time.RFC3339),
	}
	if resp.Skills == nil {
		resp.Skills = []string{}
	}
	if withDescription {
		resp.Description = j.Description
	}
	return resp
}

func ToDataModel(j *Job) *jobDatamodel.Job {
	return &jobDatamodel.Job{
		ID:          j.ID,
		Title:       j.Title,
		Description: j.Description,
		CompanyName: j.CompanyName,
		Location:    j.Location,
		Salary:      j.Salary,
		Skills:      j.Skills,
		Experience:  j.Experience,
		PostedBy:    j.PostedBy,
		CreatedAt:   j.CreatedAt,
	}
}

func FromDataModel(j *jobDatamodel.Job) *Job {
	return &Job{
		ID:          j.ID,
		Title:       j.Title,
		Description: j.Description,
		CompanyName: j.CompanyName,
		Location:    j.Location,
		Salary:      j.Salary,
		Skills:      j.Skills,
		Experience:  j.Experience,
		PostedBy:    j.PostedBy,
		CreatedAt:   j.CreatedAt,
	}
}
