package postgres

import (
	"context"
	"errors"

	userDatamodel "github.com/frahmantamala/recruitment/internal/core/datamodel/user"
	"github.com/frahmantamala/recruitment/internal/cv"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CVRepository struct {
	db *gorm.DB
}

func NewCVRepository(db *gorm.DB) cv.RepositoryAPI {
	return &CVRepository{db: db}
}

func (r *CVRepository) Get(ctx context.Context, userID int64) (*userDatamodel.CV, error) {
	var row userDatamodel.CV
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *CVRepository) Save(ctx context.Context, row *userDatamodel.CV) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		UpdateAll: true,
	}).Create(row).Error
}
