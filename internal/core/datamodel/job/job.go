package job

import "time"

type Job struct {
	ID          int64     `gorm:"primaryKey"`
	Title       string    `gorm:"column:title;not null"`
	Description string    `gorm:"column:description"`
	CompanyName string    `gorm:"column:company_name"`
	Location    string    `gorm:"column:location"`
	Salary      float64   `gorm:"column:salary"`
	Skills      []string  `gorm:"column:skills;type:text;serializer:json"`
	Experience  int       `gorm:"column:experience"`
	PostedBy    *int64    `gorm:"column:posted_by"`
	CreatedAt   time.Time `gorm:"column:created_at"`
}

func (Job) TableName() string {
	return "jobs"
}
