package rbac_test

import (
	"context"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/frahmantamala/recruitment/internal/rbac"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/redis/go-redis/v9"
)

func describeCache(newCache func() rbac.Cache) {
	var (
		ctx   context.Context
		cache rbac.Cache
	)

	BeforeEach(func() {
		ctx = context.Background()
		cache = newCache()
	})

	It("misses before anything is stored", func() {
		v, err := cache.Version(ctx)
		Expect(err).NotTo(HaveOccurred())

		_, ok, err := cache.Get(ctx, v, 0)
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeFalse())
	})

	It("returns what was stored under the current version", func() {
		v, err := cache.Version(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(cache.Set(ctx, v, 0, []string{"CREATE_USER", "VIEW_USER"})).To(Succeed())

		perms, ok, err := cache.Get(ctx, v, 0)
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeTrue())
		Expect(perms).To(Equal([]string{"CREATE_USER", "VIEW_USER"}))
	})

	It("drops every role on invalidate", func() {
		v, _ := cache.Version(ctx)
		Expect(cache.Set(ctx, v, 0, []string{"CREATE_USER"})).To(Succeed())
		Expect(cache.Set(ctx, v, 1, []string{"VIEW_USER"})).To(Succeed())

		Expect(cache.Invalidate(ctx)).To(Succeed())

		next, err := cache.Version(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(next).NotTo(Equal(v))
		for _, role := range []int64{0, 1} {
			_, ok, err := cache.Get(ctx, next, role)
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeFalse())
		}
	})

	It("never serves a write made under a stale version", func() {
		stale, _ := cache.Version(ctx)
		Expect(cache.Invalidate(ctx)).To(Succeed())
		Expect(cache.Set(ctx, stale, 0, []string{"OLD"})).To(Succeed())

		current, _ := cache.Version(ctx)
		_, ok, err := cache.Get(ctx, current, 0)
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeFalse())
	})
}

var _ = Describe("MemoryCache", func() {
	describeCache(func() rbac.Cache { return rbac.NewMemoryCache() })
})

var _ = Describe("RedisCache", func() {
	var (
		mr     *miniredis.Miniredis
		client *redis.Client
	)

	BeforeEach(func() {
		mr = miniredis.RunT(GinkgoT())
		client = redis.NewClient(&redis.Options{Addr: mr.Addr()})
		DeferCleanup(client.Close)
	})

	describeCache(func() rbac.Cache { return rbac.NewRedisCache(client, time.Minute) })

	It("expires entries after the ttl", func() {
		ctx := context.Background()
		cache := rbac.NewRedisCache(client, time.Minute)
		Expect(cache.Set(ctx, 0, 0, []string{"CREATE_USER"})).To(Succeed())

		mr.FastForward(2 * time.Minute)

		_, ok, err := cache.Get(ctx, 0, 0)
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeFalse())
	})

	It("reports an unreachable server", func() {
		cache := rbac.NewRedisCache(client, time.Minute)
		mr.Close()

		_, err := cache.Version(context.Background())
		Expect(err).To(HaveOccurred())
	})
})
