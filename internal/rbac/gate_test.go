package rbac_test

import (
	"context"
	"errors"

	"github.com/frahmantamala/recruitment/internal"
	"github.com/frahmantamala/recruitment/internal/core/identity"
	"github.com/frahmantamala/recruitment/internal/rbac"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type MockSessions struct {
	identities map[string]*identity.Identity
	calls      int
}

func (m *MockSessions) Resolve(_ context.Context, token string) (*identity.Identity, error) {
	m.calls++
	if token == "" {
		return nil, internal.ErrMissingSession
	}
	id, ok := m.identities[token]
	if !ok {
		return nil, internal.ErrInvalidSession
	}
	cp := *id
	return &cp, nil
}

type MockScopes struct {
	scopes     map[int64][]int64
	shouldFail bool
}

func (m *MockScopes) AssignedScope(_ context.Context, userID int64) ([]int64, error) {
	if m.shouldFail {
		return nil, errors.New("connection reset")
	}
	return m.scopes[userID], nil
}

func roleRef(id int64) *int64 { return &id }

var _ = Describe("Gate", func() {
	var (
		ctx      context.Context
		sessions *MockSessions
		reader   *MockPermissionReader
		scopes   *MockScopes
		gate     *rbac.Gate
	)

	BeforeEach(func() {
		ctx = context.Background()
		sessions = &MockSessions{identities: map[string]*identity.Identity{
			"tok-admin":      {UserID: 1, Name: "Admin", Email: "admin@example.com", RoleID: roleRef(0)},
			"tok-interview":  {UserID: 2, Name: "Interviewer", Email: "iv@example.com", RoleID: roleRef(1)},
			"tok-roleless":   {UserID: 3, Name: "Nobody", Email: "nobody@example.com"},
			"tok-unassigned": {UserID: 4, Name: "Fresh", Email: "fresh@example.com", RoleID: roleRef(1)},
		}}
		reader = NewMockPermissionReader()
		reader.grants[0] = []string{rbac.PermCreateUser, rbac.PermListAllUsers}
		reader.grants[1] = []string{rbac.PermViewUser}
		scopes = &MockScopes{scopes: map[int64][]int64{2: {1, 2, 3}}}

		resolver := rbac.NewPermissionResolver(reader, nil, quietLogger())
		gate = rbac.NewGate(sessions, resolver, scopes)
	})

	Describe("Authenticate", func() {
		It("returns the principal with its permissions", func() {
			p, err := gate.Authenticate(ctx, "tok-admin")
			Expect(err).NotTo(HaveOccurred())
			Expect(p.UserID).To(Equal(int64(1)))
			Expect(p.Permissions).To(Equal([]string{rbac.PermCreateUser, rbac.PermListAllUsers}))
		})

		It("propagates session failures verbatim", func() {
			_, err := gate.Authenticate(ctx, "")
			Expect(errors.Is(err, internal.ErrMissingSession)).To(BeTrue())

			_, err = gate.Authenticate(ctx, "bogus")
			Expect(errors.Is(err, internal.ErrInvalidSession)).To(BeTrue())
		})

		It("gives a user without a role no permissions", func() {
			p, err := gate.Authenticate(ctx, "tok-roleless")
			Expect(err).NotTo(HaveOccurred())
			Expect(p.Permissions).To(BeEmpty())
		})
	})

	Describe("Authorize", func() {
		DescribeTable("succeeds exactly when the permission is granted",
			func(token, permission string, allowed bool) {
				_, err := gate.Authorize(ctx, token, permission, nil)
				if allowed {
					Expect(err).NotTo(HaveOccurred())
					return
				}
				appErr, ok := internal.IsAppError(err)
				Expect(ok).To(BeTrue())
				Expect(appErr.Type).To(Equal(internal.ErrorTypeForbidden))
				Expect(appErr.Code).To(Equal(internal.ErrCodeInsufficientPermissions))
				Expect(appErr.Details).To(HaveKeyWithValue("permission", permission))
			},
			Entry("admin creates users", "tok-admin", rbac.PermCreateUser, true),
			Entry("admin lists users", "tok-admin", rbac.PermListAllUsers, true),
			Entry("admin cannot delete roles", "tok-admin", rbac.PermDeleteRole, false),
			Entry("interviewer views users", "tok-interview", rbac.PermViewUser, true),
			Entry("interviewer cannot create users", "tok-interview", rbac.PermCreateUser, false),
			Entry("roleless user gets nothing", "tok-roleless", rbac.PermViewUser, false),
		)

		It("does not look at the scope when none is requested", func() {
			scopes.shouldFail = true
			_, err := gate.Authorize(ctx, "tok-interview", rbac.PermViewUser, nil)
			Expect(err).NotTo(HaveOccurred())
		})

		It("allows a requested scope inside the assigned one", func() {
			p, err := gate.Authorize(ctx, "tok-interview", rbac.PermViewUser, []int64{2})
			Expect(err).NotTo(HaveOccurred())
			Expect(p.Scope).To(Equal([]int64{1, 2, 3}))
			Expect(p.InScope(3)).To(BeTrue())
		})

		It("names the first requested element outside the assigned scope", func() {
			_, err := gate.Authorize(ctx, "tok-interview", rbac.PermViewUser, []int64{2, 4})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeScopeNotPermitted))
			Expect(appErr.Details).To(HaveKeyWithValue("scope_element", int64(4)))
		})

		It("rejects a scoped request from a user with no scope", func() {
			_, err := gate.Authorize(ctx, "tok-unassigned", rbac.PermViewUser, []int64{1})
			Expect(errors.Is(err, internal.ErrNoScopeAssigned)).To(BeTrue())
		})

		It("checks the permission before the scope", func() {
			_, err := gate.Authorize(ctx, "tok-unassigned", rbac.PermPostJob, []int64{1})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeInsufficientPermissions))
		})

		It("reports a scope read failure as store unavailable", func() {
			scopes.shouldFail = true
			_, err := gate.Authorize(ctx, "tok-interview", rbac.PermViewUser, []int64{1})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeStoreUnavailable))
		})

		It("reports a permission read failure as store unavailable", func() {
			reader.SetShouldFail(true, errors.New("timeout"))
			_, err := gate.Authorize(ctx, "tok-admin", rbac.PermCreateUser, nil)
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeStoreUnavailable))
		})
	})
})
