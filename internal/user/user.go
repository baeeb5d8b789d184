package user

import (
	"math/rand/v2"
	"strconv"
	"strings"
	"time"

	userDatamodel "github.com/frahmantamala/recruitment/internal/core/datamodel/user"
)

const createdAtLayout = "2006-01-02 15:04:05"

type User struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	RoleID       *int64
	Username     string
	Contact      string
	CompanyName  string
	JobTitle     string
	Message      string
	CreatedAt    time.Time
}

type RoleView struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	Permissions []string `json:"permissions"`
}

// GenerateUsername joins the first two lowercased words of name with a
// random number below 10000.
func GenerateUsername(name string) string {
	parts := strings.Fields(strings.ToLower(name))
	base := ""
	switch {
	case len(parts) == 1:
		base = parts[0]
	case len(parts) > 1:
		base = parts[0] + parts[1]
	}
	return base + strconv.Itoa(rand.IntN(10000))
}

func (u *User) ToResponse(role *RoleView) UserResponse {
	return UserResponse{
		ID:          u.ID,
		Name:        u.Name,
		Email:       u.Email,
		Username:    u.Username,
		Contact:     u.Contact,
		CompanyName: u.CompanyName,
		JobTitle:    u.JobTitle,
		Role:        role,
		CreatedAt:   u.CreatedAt.UTC().Format(createdAtLayout),
	}
}

func ToDataModel(u *User) *userDatamodel.User {
	return &userDatamodel.User{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		RoleID:       u.RoleID,
		Username:     u.Username,
		Contact:      u.Contact,
		CompanyName:  u.CompanyName,
		JobTitle:     u.JobTitle,
		Message:      u.Message,
		CreatedAt:    u.CreatedAt,
	}
}

func FromDataModel(u *userDatamodel.User) *User {
	return &User{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		RoleID:       u.RoleID,
		Username:     u.Username,
		Contact:      u.Contact,
		CompanyName:  u.CompanyName,
		JobTitle:     u.JobTitle,
		Message:      u.Message,
		CreatedAt:    u.CreatedAt,
	}
}
