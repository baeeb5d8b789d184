package postgres

import (
	"context"
	"errors"

	jobDatamodel "github.com/frahmantamala/recruitment/internal/core/datamodel/job"
	userDatamodel "github.com/frahmantamala/recruitment/internal/core/datamodel/user"
	"github.com/frahmantamala/recruitment/internal/job"
	"gorm.io/gorm"
)

type JobRepository struct {
	db *gorm.DB
}

func NewJobRepository(db *gorm.DB) job.RepositoryAPI {
	return &JobRepository{db: db}
}

func (r *JobRepository) List(ctx context.Context) ([]*jobDatamodel.Job, error) {
	var jobs []*jobDatamodel.Job
	err := r.db.WithContext(ctx).Order("id ASC").Find(&jobs).Error
	return jobs, err
}

func (r *JobRepository) GetByID(ctx context.Context, id int64) (*jobDatamodel.Job, error) {
	var j jobDatamodel.Job
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&j).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &j, nil
}

func (r *JobRepository) Create(ctx context.Context, j *jobDatamodel.Job) error {
	return r.db.WithContext(ctx).Create(j).Error
}

// Candidates loads every user holding a CV together with its stored skills.
func (r *JobRepository) Candidates(ctx context.Context) ([]job.Candidate, error) {
	var cvs []userDatamodel.CV
	if err := r.db.WithContext(ctx).Select("user_id", "skills").Order("user_id ASC").Find(&cvs).Error; err != nil {
		return nil, err
	}
	if len(cvs) == 0 {
		return nil, nil
	}

	ids := make([]int64, 0, len(cvs))
	for _, cv := range cvs {
		ids = append(ids, cv.UserID)
	}
	var users []userDatamodel.User
	if err := r.db.WithContext(ctx).Select("id", "name", "email").Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, err
	}
	byID := make(map[int64]userDatamodel.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}

	out := make([]job.Candidate, 0, len(cvs))
	for _, cv := range cvs {
		u, ok := byID[cv.UserID]
		if !ok {
			continue
		}
		out = append(out, job.Candidate{UserID: u.ID, Name: u.Name, Email: u.Email, Skills: cv.Skills})
	}
	return out, nil
}
