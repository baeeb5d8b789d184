package rbac_test

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"github.com/frahmantamala/recruitment/internal"
	"github.com/frahmantamala/recruitment/internal/core/events"
	"github.com/frahmantamala/recruitment/internal/rbac"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// MockPermissionReader serves role→names rows from memory.
type MockPermissionReader struct {
	grants     map[int64][]string
	reads      int
	shouldFail bool
	failError  error
}

func NewMockPermissionReader() *MockPermissionReader {
	return &MockPermissionReader{grants: make(map[int64][]string)}
}

func (m *MockPermissionReader) RolePermissionNames(_ context.Context, roleID int64) ([]string, error) {
	m.reads++
	if m.shouldFail {
		return nil, m.failError
	}
	return append([]string(nil), m.grants[roleID]...), nil
}

func (m *MockPermissionReader) SetShouldFail(shouldFail bool, err error) {
	m.shouldFail = shouldFail
	m.failError = err
}

type brokenCache struct{}

func (brokenCache) Version(context.Context) (int64, error) { return 0, errors.New("cache down") }

func (brokenCache) Get(context.Context, int64, int64) ([]string, bool, error) {
	return nil, false, errors.New("cache down")
}

func (brokenCache) Set(context.Context, int64, int64, []string) error {
	return errors.New("cache down")
}

func (brokenCache) Invalidate(context.Context) error {
	return errors.New("cache down")
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

var _ = Describe("PermissionResolver", func() {
	var (
		ctx    context.Context
		reader *MockPermissionReader
		logger *slog.Logger
	)

	BeforeEach(func() {
		ctx = context.Background()
		reader = NewMockPermissionReader()
		logger = quietLogger()
	})

	Context("without a cache", func() {
		var resolver *rbac.PermissionResolver

		BeforeEach(func() {
			resolver = rbac.NewPermissionResolver(reader, nil, logger)
		})

		It("removes duplicate names and sorts the result", func() {
			reader.grants[0] = []string{"LIST_ALL_USERS", "CREATE_USER", "LIST_ALL_USERS", "CREATE_USER"}

			perms, err := resolver.Resolve(ctx, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(perms).To(Equal([]string{"CREATE_USER", "LIST_ALL_USERS"}))
		})

		It("resolves an unknown role to the empty set", func() {
			perms, err := resolver.Resolve(ctx, 42)
			Expect(err).NotTo(HaveOccurred())
			Expect(perms).NotTo(BeNil())
			Expect(perms).To(BeEmpty())
		})

		It("resolves a missing role reference to the empty set without reading", func() {
			perms, err := resolver.ResolveFor(ctx, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(perms).To(BeEmpty())
			Expect(reader.reads).To(Equal(0))
		})

		It("returns the same set on repeated calls", func() {
			reader.grants[1] = []string{"VIEW_USER"}

			first, err := resolver.Resolve(ctx, 1)
			Expect(err).NotTo(HaveOccurred())
			second, err := resolver.Resolve(ctx, 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(second).To(Equal(first))
			Expect(reader.reads).To(Equal(2))
		})

		It("reports a read failure as store unavailable", func() {
			reader.SetShouldFail(true, errors.New("connection refused"))

			_, err := resolver.Resolve(ctx, 0)
			Expect(err).To(HaveOccurred())
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeStoreUnavailable))
		})
	})

	Context("with a memory cache", func() {
		var (
			resolver *rbac.PermissionResolver
			bus      *events.EventBus
		)

		BeforeEach(func() {
			resolver = rbac.NewPermissionResolver(reader, rbac.NewMemoryCache(), logger)
			bus = events.NewEventBus(logger)
			resolver.SubscribeInvalidation(bus)
			reader.grants[0] = []string{"CREATE_USER"}
		})

		It("serves repeated calls from the cache", func() {
			_, err := resolver.Resolve(ctx, 0)
			Expect(err).NotTo(HaveOccurred())
			perms, err := resolver.Resolve(ctx, 0)
			Expect(err).NotTo(HaveOccurred())

			Expect(perms).To(Equal([]string{"CREATE_USER"}))
			Expect(reader.reads).To(Equal(1))
		})

		It("reads again after an rbac.changed event", func() {
			_, err := resolver.Resolve(ctx, 0)
			Expect(err).NotTo(HaveOccurred())

			reader.grants[0] = append(reader.grants[0], "DELETE_ROLE")
			Expect(bus.PublishSync(ctx, events.NewRBACChangedEvent("test", 0))).To(Succeed())

			perms, err := resolver.Resolve(ctx, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(perms).To(ConsistOf("CREATE_USER", "DELETE_ROLE"))
			Expect(reader.reads).To(Equal(2))
		})
	})

	Context("with a failing cache", func() {
		It("falls back to the store", func() {
			reader.grants[2] = []string{"POST_JOB"}
			resolver := rbac.NewPermissionResolver(reader, brokenCache{}, logger)

			perms, err := resolver.Resolve(ctx, 2)
			Expect(err).NotTo(HaveOccurred())
			Expect(perms).To(Equal([]string{"POST_JOB"}))
		})

		It("surfaces an invalidation failure", func() {
			resolver := rbac.NewPermissionResolver(reader, brokenCache{}, logger)
			Expect(resolver.Invalidate(ctx)).NotTo(Succeed())
		})
	})
})
