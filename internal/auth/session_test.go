package auth

import (
	"context"
	"errors"
	"time"

	"github.com/frahmantamala/recruitment/internal"
	userDatamodel "github.com/frahmantamala/recruitment/internal/core/datamodel/user"
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
)

var _ = ginkgo.Describe("SessionResolver", func() {
	var (
		ctx      context.Context
		mockRepo *mockRepository
		now      time.Time
		resolver *SessionResolver
	)

	ginkgo.BeforeEach(func() {
		ctx = context.Background()
		now = time.Date(2026, 1, 10, 8, 0, 0, 0, time.UTC)
		mockRepo = newMockRepository()
		mockRepo.sessions["tok-live"] = &userDatamodel.Session{ID: "tok-live", UserID: 1, Expires: EpochSeconds(now) + 3600}
		mockRepo.sessions["tok-old"] = &userDatamodel.Session{ID: "tok-old", UserID: 2, Expires: EpochSeconds(now) - 1}
		mockRepo.sessions["tok-orphan"] = &userDatamodel.Session{ID: "tok-orphan", UserID: 99, Expires: EpochSeconds(now) + 3600}
		mockRepo.sessions["tok-old-orphan"] = &userDatamodel.Session{ID: "tok-old-orphan", UserID: 98, Expires: EpochSeconds(now) - 1}
		resolver = NewSessionResolver(mockRepo, func() time.Time { return now })
	})

	ginkgo.It("should resolve a live session to its user", func() {
		id, err := resolver.Resolve(ctx, "tok-live")

		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		gomega.Expect(id.UserID).To(gomega.Equal(int64(1)))
		gomega.Expect(id.Email).To(gomega.Equal("admin@example.com"))
		gomega.Expect(*id.RoleID).To(gomega.Equal(int64(0)))
		gomega.Expect(id.Token).To(gomega.Equal("tok-live"))
	})

	ginkgo.DescribeTable("should reject unusable tokens",
		func(token string, want error) {
			_, err := resolver.Resolve(ctx, token)
			gomega.Expect(errors.Is(err, want)).To(gomega.BeTrue())

			appErr, ok := internal.IsAppError(err)
			gomega.Expect(ok).To(gomega.BeTrue())
			gomega.Expect(appErr.Type).To(gomega.Equal(internal.ErrorTypeUnauthorized))
		},
		ginkgo.Entry("empty token", "", internal.ErrMissingSession),
		ginkgo.Entry("unknown token", "tok-nope", internal.ErrInvalidSession),
		ginkgo.Entry("expired session", "tok-old", internal.ErrSessionExpired),
		ginkgo.Entry("expired session of a deleted user", "tok-old-orphan", internal.ErrSessionExpired),
		ginkgo.Entry("live session of a deleted user", "tok-orphan", internal.ErrOrphanedSession),
	)

	ginkgo.It("should accept a session expiring exactly now", func() {
		mockRepo.sessions["tok-edge"] = &userDatamodel.Session{ID: "tok-edge", UserID: 1, Expires: EpochSeconds(now)}
		_, err := resolver.Resolve(ctx, "tok-edge")
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
	})

	ginkgo.It("should not depend on the clock's time zone", func() {
		zone := time.FixedZone("UTC+7", 7*60*60)
		shifted := NewSessionResolver(mockRepo, func() time.Time { return now.In(zone) })

		_, err := shifted.Resolve(ctx, "tok-live")
		gomega.Expect(err).ToNot(gomega.HaveOccurred())

		_, err = shifted.Resolve(ctx, "tok-old")
		gomega.Expect(errors.Is(err, internal.ErrSessionExpired)).To(gomega.BeTrue())
	})

	ginkgo.It("should return identical output on repeated calls without writing", func() {
		before := *mockRepo.sessions["tok-live"]

		first, err := resolver.Resolve(ctx, "tok-live")
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		second, err := resolver.Resolve(ctx, "tok-live")
		gomega.Expect(err).ToNot(gomega.HaveOccurred())

		gomega.Expect(second).To(gomega.Equal(first))
		gomega.Expect(*mockRepo.sessions["tok-live"]).To(gomega.Equal(before))
	})

	ginkgo.It("should report a store failure as store unavailable", func() {
		mockRepo.setError(errors.New("i/o timeout"))

		_, err := resolver.Resolve(ctx, "tok-live")

		appErr, ok := internal.IsAppError(err)
		gomega.Expect(ok).To(gomega.BeTrue())
		gomega.Expect(appErr.Type).To(gomega.Equal(internal.ErrorTypeStoreUnavailable))
		gomega.Expect(errors.Unwrap(err)).To(gomega.MatchError("i/o timeout"))
	})
})
