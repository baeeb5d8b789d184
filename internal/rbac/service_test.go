package rbac_test

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/recruitment/internal"
	jobDatamodel "github.com/frahmantamala/recruitment/internal/core/datamodel/job"
	rbacDatamodel "github.com/frahmantamala/recruitment/internal/core/datamodel/rbac"
	userDatamodel "github.com/frahmantamala/recruitment/internal/core/datamodel/user"
	"github.com/frahmantamala/recruitment/internal/core/events"
	"github.com/frahmantamala/recruitment/internal/rbac"
	rbacPostgres "github.com/frahmantamala/recruitment/internal/rbac/postgres"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"
)

type failingPublisher struct{}

func (failingPublisher) Publish(context.Context, events.Event) error { return nil }
func (failingPublisher) PublishSync(context.Context, events.Event) error {
	return errors.New("redis: connection refused")
}

var _ = Describe("RBAC Service", func() {
	var (
		ctx      context.Context
		db       *gorm.DB
		resolver *rbac.PermissionResolver
		service  *rbac.Service
		logger   *slog.Logger
		repo     *rbacPostgres.Repository
		reader   *rbacPostgres.PermissionReader
	)

	seedPermission := func(name, category string) int64 {
		p := &rbacDatamodel.Permission{Name: name, Category: category}
		Expect(db.Create(p).Error).To(Succeed())
		return p.ID
	}

	BeforeEach(func() {
		ctx = context.Background()
		logger = quietLogger()

		gdb, sdb := openTestStore()
		db = gdb
		repo = rbacPostgres.NewRepository(db)
		reader = rbacPostgres.NewPermissionReader(sdb)

		bus := events.NewEventBus(logger)
		resolver = rbac.NewPermissionResolver(reader, rbac.NewMemoryCache(), logger)
		resolver.SubscribeInvalidation(bus)
		service = rbac.NewService(repo, reader, resolver, bus, logger)
	})

	Describe("roles", func() {
		It("creates a role and rejects a duplicate name", func() {
			role, err := service.CreateRole(ctx, rbac.RoleDTO{Name: "INTERVIEWER"})
			Expect(err).NotTo(HaveOccurred())
			Expect(role.ID).To(BeNumerically(">", 0))
			Expect(role.Permissions).To(BeEmpty())

			_, err = service.CreateRole(ctx, rbac.RoleDTO{Name: "INTERVIEWER"})
			Expect(errors.Is(err, internal.ErrRoleExists)).To(BeTrue())
		})

		It("validates the role name", func() {
			_, err := service.CreateRole(ctx, rbac.RoleDTO{})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeValidation))
		})

		It("renames a role", func() {
			role, err := service.CreateRole(ctx, rbac.RoleDTO{Name: "RECRUITER"})
			Expect(err).NotTo(HaveOccurred())

			renamed, err := service.UpdateRole(ctx, role.ID, rbac.RoleDTO{Name: "TALENT"})
			Expect(err).NotTo(HaveOccurred())
			Expect(renamed.Name).To(Equal("TALENT"))

			_, err = service.UpdateRole(ctx, role.ID, rbac.RoleDTO{Name: "ADMIN"})
			Expect(errors.Is(err, internal.ErrRoleExists)).To(BeTrue())

			_, err = service.UpdateRole(ctx, 999, rbac.RoleDTO{Name: "GHOST"})
			Expect(errors.Is(err, internal.ErrRoleNotFound)).To(BeTrue())
		})

		It("refuses to delete the default role", func() {
			err := service.DeleteRole(ctx, rbac.DefaultRoleID)
			Expect(errors.Is(err, internal.ErrDefaultRole)).To(BeTrue())
		})

		It("removes edges and moves users to the default role on delete", func() {
			role, err := service.CreateRole(ctx, rbac.RoleDTO{Name: "INTERVIEWER"})
			Expect(err).NotTo(HaveOccurred())
			pid := seedPermission(rbac.PermViewUser, "GET")
			_, err = service.AssignPermissions(ctx, role.ID, rbac.AssignPermissionsDTO{Permissions: []int64{pid}})
			Expect(err).NotTo(HaveOccurred())

			u := &userDatamodel.User{Name: "Ivy", Email: "ivy@example.com", PasswordHash: "x", RoleID: &role.ID}
			Expect(db.Create(u).Error).To(Succeed())

			Expect(service.DeleteRole(ctx, role.ID)).To(Succeed())

			var edges int64
			Expect(db.Model(&rbacDatamodel.RolePermission{}).Where("role_id = ?", role.ID).Count(&edges).Error).To(Succeed())
			Expect(edges).To(BeZero())

			var reloaded userDatamodel.User
			Expect(db.First(&reloaded, u.ID).Error).To(Succeed())
			Expect(reloaded.RoleID).NotTo(BeNil())
			Expect(*reloaded.RoleID).To(Equal(rbac.DefaultRoleID))

			perms, err := resolver.Resolve(ctx, role.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(perms).To(BeEmpty())
		})

		It("lists roles with their permission names", func() {
			pid := seedPermission(rbac.PermCreateUser, "POST")
			_, err := service.AssignPermissions(ctx, rbac.DefaultRoleID, rbac.AssignPermissionsDTO{Permissions: []int64{pid}})
			Expect(err).NotTo(HaveOccurred())

			roles, err := service.ListRoles(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(roles).To(HaveLen(1))
			Expect(roles[0].Name).To(Equal("ADMIN"))
			Expect(roles[0].Permissions).To(Equal([]string{rbac.PermCreateUser}))
		})
	})

	Describe("permissions", func() {
		It("rejects a duplicate permission", func() {
			_, err := service.CreatePermission(ctx, rbac.PermissionDTO{Name: "EXPORT", Category: "GET"})
			Expect(err).NotTo(HaveOccurred())

			_, err = service.CreatePermission(ctx, rbac.PermissionDTO{Name: "EXPORT", Category: "GET"})
			Expect(errors.Is(err, internal.ErrPermissionDup)).To(BeTrue())
		})

		It("groups permissions by category", func() {
			seedPermission(rbac.PermListAllUsers, "GET")
			seedPermission(rbac.PermCreateUser, "POST")
			seedPermission(rbac.PermCreateRole, "POST")

			groups, err := service.ListPermissions(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(groups).To(HaveLen(2))
			Expect(groups[0].Category).To(Equal("GET"))
			Expect(groups[1].Category).To(Equal("POST"))
			Expect(groups[1].Permissions).To(HaveLen(2))
			Expect(groups[1].Permissions[0].Name).To(Equal(rbac.PermCreateRole))
		})

		It("assigns permissions idempotently and invalidates the cache", func() {
			create := seedPermission(rbac.PermCreateUser, "POST")
			del := seedPermission(rbac.PermDeleteRole, "DELETE")

			_, err := service.AssignPermissions(ctx, rbac.DefaultRoleID, rbac.AssignPermissionsDTO{Permissions: []int64{create}})
			Expect(err).NotTo(HaveOccurred())

			before, err := resolver.Resolve(ctx, rbac.DefaultRoleID)
			Expect(err).NotTo(HaveOccurred())
			Expect(before).To(Equal([]string{rbac.PermCreateUser}))

			role, err := service.AssignPermissions(ctx, rbac.DefaultRoleID, rbac.AssignPermissionsDTO{Permissions: []int64{create, del, create}})
			Expect(err).NotTo(HaveOccurred())
			Expect(role.Permissions).To(Equal([]string{rbac.PermCreateUser, rbac.PermDeleteRole}))

			var edges int64
			Expect(db.Model(&rbacDatamodel.RolePermission{}).Count(&edges).Error).To(Succeed())
			Expect(edges).To(Equal(int64(2)))
		})

		It("rejects unknown permission ids", func() {
			known := seedPermission(rbac.PermCreateUser, "POST")

			_, err := service.AssignPermissions(ctx, rbac.DefaultRoleID, rbac.AssignPermissionsDTO{Permissions: []int64{known, 77}})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeUnknownPermission))

			var edges int64
			Expect(db.Model(&rbacDatamodel.RolePermission{}).Count(&edges).Error).To(Succeed())
			Expect(edges).To(BeZero())
		})

		It("revokes one edge", func() {
			pid := seedPermission(rbac.PermCreateUser, "POST")
			_, err := service.AssignPermissions(ctx, rbac.DefaultRoleID, rbac.AssignPermissionsDTO{Permissions: []int64{pid}})
			Expect(err).NotTo(HaveOccurred())
			_, err = resolver.Resolve(ctx, rbac.DefaultRoleID)
			Expect(err).NotTo(HaveOccurred())

			Expect(service.RevokePermission(ctx, rbac.DefaultRoleID, pid)).To(Succeed())

			perms, err := resolver.Resolve(ctx, rbac.DefaultRoleID)
			Expect(err).NotTo(HaveOccurred())
			Expect(perms).To(BeEmpty())
		})
	})

	Describe("scopes", func() {
		var userID int64

		BeforeEach(func() {
			u := &userDatamodel.User{Name: "Ivy", Email: "ivy@example.com", PasswordHash: "x"}
			Expect(db.Create(u).Error).To(Succeed())
			userID = u.ID

			for _, id := range []int64{1, 2, 3, 4} {
				Expect(db.Create(&jobDatamodel.Job{ID: id, Title: "Backend Engineer"}).Error).To(Succeed())
			}
		})

		It("replaces the assigned scope", func() {
			_, err := service.AssignScope(ctx, userID, rbac.AssignScopeDTO{JobIDs: []int64{1, 2, 3}})
			Expect(err).NotTo(HaveOccurred())

			ids, err := service.AssignScope(ctx, userID, rbac.AssignScopeDTO{JobIDs: []int64{3, 4, 4}})
			Expect(err).NotTo(HaveOccurred())
			Expect(ids).To(Equal([]int64{3, 4}))

			scope, err := service.GetScope(ctx, userID)
			Expect(err).NotTo(HaveOccurred())
			Expect(scope).To(Equal([]int64{3, 4}))
		})

		It("clears the scope with an empty list", func() {
			_, err := service.AssignScope(ctx, userID, rbac.AssignScopeDTO{JobIDs: []int64{1}})
			Expect(err).NotTo(HaveOccurred())
			_, err = service.AssignScope(ctx, userID, rbac.AssignScopeDTO{JobIDs: []int64{}})
			Expect(err).NotTo(HaveOccurred())

			scope, err := service.GetScope(ctx, userID)
			Expect(err).NotTo(HaveOccurred())
			Expect(scope).To(BeEmpty())
		})

		It("rejects an unknown user", func() {
			_, err := service.AssignScope(ctx, 999, rbac.AssignScopeDTO{JobIDs: []int64{1}})
			Expect(errors.Is(err, internal.ErrUserNotFound)).To(BeTrue())
		})

		It("rejects unknown job ids and keeps the current scope", func() {
			_, err := service.AssignScope(ctx, userID, rbac.AssignScopeDTO{JobIDs: []int64{1}})
			Expect(err).NotTo(HaveOccurred())

			_, err = service.AssignScope(ctx, userID, rbac.AssignScopeDTO{JobIDs: []int64{2, 99, 98}})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.StatusCode).To(Equal(http.StatusBadRequest))
			Expect(appErr.Code).To(Equal(internal.ErrCodeUnknownJob))
			Expect(appErr.Details).To(HaveKeyWithValue("job_ids", []int64{99, 98}))

			scope, err := service.GetScope(ctx, userID)
			Expect(err).NotTo(HaveOccurred())
			Expect(scope).To(Equal([]int64{1}))
		})
	})

	It("reports a failed invalidation as store unavailable", func() {
		svc := rbac.NewService(repo, reader, resolver, failingPublisher{}, logger)

		_, err := svc.CreateRole(ctx, rbac.RoleDTO{Name: "ORPHAN"})
		appErr, ok := internal.IsAppError(err)
		Expect(ok).To(BeTrue())
		Expect(appErr.Type).To(Equal(internal.ErrorTypeStoreUnavailable))
	})
})
