package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/frahmantamala/recruitment/internal/auth"
	userDatamodel "github.com/frahmantamala/recruitment/internal/core/datamodel/user"
	"github.com/frahmantamala/recruitment/internal/job"
	jobPostgres "github.com/frahmantamala/recruitment/internal/job/postgres"
	"github.com/frahmantamala/recruitment/internal/rbac"
	"github.com/frahmantamala/recruitment/pkg/logger"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

const (
	seedAdminEmail    = "dibbyoroy7@gmail.com"
	seedAdminName     = "Admin"
	seedAdminPassword = "1234"
)

var seedJobs = []job.PostJobDTO{
	{
		Title:       "Backend Engineer",
		Description: "Build and run the services behind our hiring products.",
		CompanyName: "Recruitment Inc",
		Location:    "Jakarta",
		Salary:      25000000,
		Skills:      []string{"go", "postgresql", "redis", "docker"},
		Experience:  3,
	},
	{
		Title:       "Data Scientist",
		Description: "Model candidate and job data to improve matching.",
		CompanyName: "Recruitment Inc",
		Location:    "Remote",
		Salary:      30000000,
		Skills:      []string{"python", "machine learning", "sql", "pandas"},
		Experience:  2,
	},
	{
		Title:       "Frontend Engineer",
		Description: "Own the job seeker web application.",
		CompanyName: "Recruitment Inc",
		Location:    "Bandung",
		Salary:      20000000,
		Skills:      []string{"javascript", "react", "typescript", "css"},
		Experience:  2,
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the admin account and a few sample jobs for development.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(configPath)
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}
		lg := logger.LoggerWrapper()

		sqlDB, db, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		defer sqlDB.Close()

		ctx := context.Background()

		if clearData {
			for _, table := range []string{"user_scopes", "cvs", "forgot_password", "sessions", "jobs", "users"} {
				if err := db.Exec(fmt.Sprintf("DELETE FROM %s", table)).Error; err != nil {
					log.Fatalf("failed to clear %s: %v", table, err)
				}
			}
			lg.Info("cleared existing data")
		}

		adminID, err := seedAdmin(ctx, db, cfg.Security.BCryptCost)
		if err != nil {
			log.Fatalf("failed to seed admin: %v", err)
		}
		lg.Info("admin ready", "email", seedAdminEmail, "user_id", adminID)

		var count int64
		if err := db.WithContext(ctx).Table("jobs").Count(&count).Error; err != nil {
			log.Fatalf("failed to count jobs: %v", err)
		}
		if count > 0 {
			lg.Info("jobs already seeded", "count", count)
			return
		}

		jobs := job.NewService(jobPostgres.NewJobRepository(db), nil, lg)
		for _, dto := range seedJobs {
			created, err := jobs.Post(ctx, adminID, dto)
			if err != nil {
				log.Fatalf("failed to seed job %s: %v", dto.Title, err)
			}
			lg.Info("seeded job", "job_id", created.ID, "title", created.Title)
		}
	},
}

func seedAdmin(ctx context.Context, db *gorm.DB, cost int) (int64, error) {
	var existing userDatamodel.User
	err := db.WithContext(ctx).Where("email = ?", seedAdminEmail).Limit(1).Find(&existing).Error
	if err != nil {
		return 0, err
	}
	if existing.ID != 0 {
		return existing.ID, nil
	}

	hash, err := auth.HashPassword(seedAdminPassword, cost)
	if err != nil {
		return 0, err
	}
	roleID := rbac.DefaultRoleID
	admin := &userDatamodel.User{
		Name:         seedAdminName,
		Email:        seedAdminEmail,
		Username:     "admin",
		PasswordHash: hash,
		RoleID:       &roleID,
	}
	if err := db.WithContext(ctx).Create(admin).Error; err != nil {
		return 0, err
	}
	return admin.ID, nil
}
