package rbac_test

import (
	"fmt"

	jobDatamodel "github.com/frahmantamala/recruitment/internal/core/datamodel/job"
	rbacDatamodel "github.com/frahmantamala/recruitment/internal/core/datamodel/rbac"
	userDatamodel "github.com/frahmantamala/recruitment/internal/core/datamodel/user"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// openTestStore opens a private in-memory sqlite database holding the rbac
// tables, with role 0 seeded as ADMIN.
func openTestStore() (*gorm.DB, *sqlx.DB) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	Expect(err).NotTo(HaveOccurred())

	sqlDB, err := db.DB()
	Expect(err).NotTo(HaveOccurred())
	sqlDB.SetMaxOpenConns(1)

	Expect(db.AutoMigrate(
		&rbacDatamodel.Role{},
		&rbacDatamodel.Permission{},
		&rbacDatamodel.RolePermission{},
		&rbacDatamodel.UserScope{},
		&userDatamodel.User{},
		&jobDatamodel.Job{},
	)).To(Succeed())
	Expect(db.Exec("INSERT INTO roles (id, name) VALUES (0, 'ADMIN')").Error).To(Succeed())

	return db, sqlx.NewDb(sqlDB, "sqlite3")
}
