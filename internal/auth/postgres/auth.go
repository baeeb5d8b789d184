package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/frahmantamala/recruitment/internal/auth"
	userDatamodel "github.com/frahmantamala/recruitment/internal/core/datamodel/user"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

var _ auth.Repository = (*Repository)(nil)

func (r *Repository) GetSession(ctx context.Context, token string) (*userDatamodel.Session, error) {
	var sess userDatamodel.Session
	err := r.db.WithContext(ctx).Where("id = ?", token).First(&sess).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &sess, nil
}

func (r *Repository) GetUser(ctx context.Context, id int64) (*userDatamodel.User, error) {
	var u userDatamodel.User
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*userDatamodel.User, error) {
	var u userDatamodel.User
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

// UpsertSession relies on the unique sessions.user_id: concurrent logins
// for one user collapse into a single row and the first token wins.
func (r *Repository) UpsertSession(ctx context.Context, session *userDatamodel.Session) (string, error) {
	db := r.db.WithContext(ctx)

	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"expires"}),
	}).Create(session).Error
	if err != nil {
		return "", fmt.Errorf("upsert session: %w", err)
	}

	var live userDatamodel.Session
	if err := db.Where("user_id = ?", session.UserID).First(&live).Error; err != nil {
		return "", fmt.Errorf("read back session: %w", err)
	}
	return live.ID, nil
}

func (r *Repository) DeleteSession(ctx context.Context, token string) error {
	return r.db.WithContext(ctx).Where("id = ?", token).Delete(&userDatamodel.Session{}).Error
}

func (r *Repository) UpdatePassword(ctx context.Context, userID int64, hash string) error {
	res := r.db.WithContext(ctx).Model(&userDatamodel.User{}).
		Where("id = ?", userID).
		Update("password", hash)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("user %d not found", userID)
	}
	return nil
}

func (r *Repository) CreateResetToken(ctx context.Context, token *userDatamodel.ForgotPassword) error {
	return r.db.WithContext(ctx).Create(token).Error
}

func (r *Repository) GetResetToken(ctx context.Context, token string) (*userDatamodel.ForgotPassword, error) {
	var fp userDatamodel.ForgotPassword
	err := r.db.WithContext(ctx).Where("token = ?", token).Order("id DESC").First(&fp).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &fp, nil
}

func (r *Repository) DeleteResetToken(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&userDatamodel.ForgotPassword{}, id).Error
}
