package job

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/frahmantamala/recruitment/internal"
	jobDatamodel "github.com/frahmantamala/recruitment/internal/core/datamodel/job"
)

// Candidate is a job seeker with the skills stored from their CV.
type Candidate struct {
	UserID int64
	Name   string
	Email  string
	Skills []string
}

type RepositoryAPI interface {
	List(ctx context.Context) ([]*jobDatamodel.Job, error)
	GetByID(ctx context.Context, id int64) (*jobDatamodel.Job, error)
	Create(ctx context.Context, j *jobDatamodel.Job) error
	Candidates(ctx context.Context) ([]Candidate, error)
}

// SkillsSource returns the skills extracted from a user's CV.
type SkillsSource interface {
	Skills(ctx context.Context, userID int64) ([]string, error)
}

type Service struct {
	repo   RepositoryAPI
	skills SkillsSource
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, skills SkillsSource, logger *slog.Logger) *Service {
	return &Service{repo: repo, skills: skills, logger: logger}
}

func (s *Service) List(ctx context.Context) ([]JobResponse, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, internal.NewStoreUnavailableError(err)
	}
	out := make([]JobResponse, 0, len(rows))
	for _, row := range rows {
		out = append(out, FromDataModel(row).ToResponse(false))
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*Job, error) {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, internal.NewStoreUnavailableError(err)
	}
	if row == nil {
		return nil, internal.ErrJobNotFound
	}
	return FromDataModel(row), nil
}

func (s *Service) Post(ctx context.Context, postedBy int64, dto PostJobDTO) (*JobResponse, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	j := &Job{
		Title:       dto.Title,
		Description: dto.Description,
		CompanyName: dto.CompanyName,
		Location:    dto.Location,
		Salary:      dto.Salary,
		Skills:      dto.Skills,
		Experience:  dto.Experience,
		PostedBy:    &postedBy,
		CreatedAt:   time.Now().UTC(),
	}
	row := ToDataModel(j)
	if err := s.repo.Create(ctx, row); err != nil {
		return nil, fmt.Errorf("create job: %w", err)
	}
	j.ID = row.ID

	s.logger.Info("job posted", "job_id", j.ID, "posted_by", postedBy)
	resp := j.ToResponse(true)
	return &resp, nil
}

// Match scores every job against the caller's CV skills, best first.
func (s *Service) Match(ctx context.Context, userID int64, filter MatchFilterDTO) ([]MatchResponse, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	have, err := s.skills.Skills(ctx, userID)
	if err != nil {
		return nil, err
	}

	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, internal.NewStoreUnavailableError(err)
	}

	location := strings.ToLower(strings.TrimSpace(filter.Location))
	out := make([]MatchResponse, 0, len(rows))
	for _, row := range rows {
		j := FromDataModel(row)
		m := j.Score(have)
		if m.Score < filter.MinMatchScore {
			continue
		}
		if location != "" && !strings.Contains(strings.ToLower(j.Location), location) {
			continue
		}

		resp := MatchResponse{
			JobID:         j.ID,
			Title:         j.Title,
			CompanyName:   j.CompanyName,
			Location:      j.Location,
			Salary:        j.Salary,
			MatchScore:    m.Score,
			MatchedSkills: m.Matched,
			MissingSkills: m.Missing,
		}
		if filter.IncludeDescription {
			resp.Description = j.Description
		}
		out = append(out, resp)
	}

	slices.SortStableFunc(out, func(a, b MatchResponse) int {
		return cmp.Compare(b.MatchScore, a.MatchScore)
	})
	return out, nil
}

// Candidates ranks the job seekers whose CV skills overlap the job.
func (s *Service) Candidates(ctx context.Context, jobID int64) ([]CandidateResponse, error) {
	j, err := s.Get(ctx, jobID)
	if err != nil {
		return nil, err
	}

	seekers, err := s.repo.Candidates(ctx)
	if err != nil {
		return nil, internal.NewStoreUnavailableError(err)
	}

	out := make([]CandidateResponse, 0)
	for _, c := range seekers {
		m := j.Score(c.Skills)
		if len(m.Matched) == 0 {
			continue
		}
		out = append(out, CandidateResponse{
			UserID:        c.UserID,
			Name:          c.Name,
			Email:         c.Email,
			MatchScore:    m.Score,
			MatchedSkills: m.Matched,
			MissingSkills: m.Missing,
		})
	}

	slices.SortStableFunc(out, func(a, b CandidateResponse) int {
		return cmp.Compare(b.MatchScore, a.MatchScore)
	})

	s.logger.Info("ranked candidates", "job_id", jobID, "count", len(out))
	return out, nil
}
