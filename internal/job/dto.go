package job

import "github.com/frahmantamala/recruitment/internal/core/common/validation"

type PostJobDTO struct {
	Title       string   `json:"title" validate:"required,max=255"`
	Description string   `json:"description" validate:"required"`
	CompanyName string   `json:"company_name" validate:"required,max=255"`
	Location    string   `json:"location" validate:"required,max=255"`
	Salary      float64  `json:"salary" validate:"gte=0"`
	Skills      []string `json:"skills" validate:"required,min=1,dive,required"`
	Experience  int      `json:"experience" validate:"gte=0"`
}

func (d PostJobDTO) Validate() error {
	return validation.Struct(d)
}

type MatchFilterDTO struct {
	MinMatchScore      float64 `json:"min_match_score" validate:"gte=0,lte=1"`
	Location           string  `json:"location"`
	IncludeDescription bool    `json:"include_description"`
}

func (d MatchFilterDTO) Validate() error {
	return validation.Struct(d)
}

type JobResponse struct {
	ID          int64    `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	CompanyName string   `json:"company_name"`
	Location    string   `json:"location"`
	Salary      float64  `json:"salary"`
	Skills      []string `json:"skills"`
	Experience  int      `json:"experience"`
	CreatedAt   string   `json:"created_at"`
}

type JobsResponse struct {
	Jobs []JobResponse `json:"jobs"`
}

type MatchResponse struct {
	JobID         int64    `json:"job_id"`
	Title         string   `json:"title"`
	CompanyName   string   `json:"company_name"`
	Location      string   `json:"location"`
	Salary        float64  `json:"salary"`
	MatchScore    float64  `json:"match_score"`
	MatchedSkills []string `json:"matched_skills"`
	MissingSkills []string `json:"missing_skills"`
	Description   string   `json:"description,omitempty"`
}

type MatchesResponse struct {
	Matches []MatchResponse `json:"matches"`
}

type CandidateResponse struct {
	UserID        int64    `json:"user_id"`
	Name          string   `json:"name"`
	Email         string   `json:"email"`
	MatchScore    float64  `json:"match_score"`
	MatchedSkills []string `json:"matched_skills"`
	MissingSkills []string `json:"missing_skills"`
}

type CandidatesResponse struct {
	JobID      int64               `json:"job_id"`
	Candidates []CandidateResponse `json:"candidates"`
}
