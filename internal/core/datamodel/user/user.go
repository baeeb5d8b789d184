package user

import "time"

type User struct {
	ID           int64     `gorm:"primaryKey"`
	Name         string    `gorm:"column:name;not null"`
	Email        string    `gorm:"column:email;uniqueIndex;not null"`
	PasswordHash string    `gorm:"column:password;not null"`
	RoleID       *int64    `gorm:"column:role_id"`
	Username     string    `gorm:"column:username"`
	Contact      string    `gorm:"column:contact"`
	CompanyName  string    `gorm:"column:company_name"`
	JobTitle     string    `gorm:"column:job_title"`
	Message      string    `gorm:"column:message"`
	Resume       string    `gorm:"column:resume"`
	CreatedAt    time.Time `gorm:"column:created_at"`
}

func (User) TableName() string {
	return "users"
}

// CV is the stored résumé of a job seeker. Blob is empty when the file
// lives in object storage under ObjectKey.
type CV struct {
	UserID     int64     `gorm:"primaryKey;autoIncrement:false;column:user_id"`
	Filename   string    `gorm:"column:filename"`
	Blob       []byte    `gorm:"column:blob"`
	ObjectKey  string    `gorm:"column:object_key"`
	Skills     []string  `gorm:"column:skills;type:text;serializer:json"`
	Info       string    `gorm:"column:info;type:text"`
	Summary    string    `gorm:"column:summary"`
	UploadedAt time.Time `gorm:"column:uploaded_at"`
}

func (CV) TableName() string {
	return "cvs"
}

// Session.ID is the opaque token. Expires is absolute, in epoch seconds.
type Session struct {
	ID      string  `gorm:"primaryKey"`
	UserID  int64   `gorm:"column:user_id;not null;uniqueIndex"`
	Expires float64 `gorm:"column:expires;not null"`
}

func (Session) TableName() string {
	return "sessions"
}

type ForgotPassword struct {
	ID      int64   `gorm:"primaryKey"`
	UserID  int64   `gorm:"column:user_id;not null"`
	Token   string  `gorm:"column:token;not null;index"`
	Expires float64 `gorm:"column:expires;not null"`
}

func (ForgotPassword) TableName() string {
	return "forgot_password"
}
