package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/frahmantamala/recruitment/internal"
	"github.com/frahmantamala/recruitment/internal/core/identity"
	"github.com/frahmantamala/recruitment/internal/transport"
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"
)

var _ = ginkgo.Describe("Auth Handler", func() {
	var (
		handler  *Handler
		mockRepo *mockRepository
		now      time.Time
	)

	ginkgo.BeforeEach(func() {
		now = time.Date(2026, 5, 4, 9, 30, 0, 0, time.UTC)
		mockRepo = newMockRepository()
		svc := NewService(mockRepo, mockPermissions{0: {"CREATE_USER"}}, &recordingPublisher{}, discardLogger(), Options{
			BCryptCost: bcrypt.MinCost,
			Now:        func() time.Time { return now },
		})
		handler = NewHandler(transport.NewBaseHandler(discardLogger()), svc, CookieConfig{})
	})

	ginkgo.It("should set the session cookie on login", func() {
		req := httptest.NewRequest(http.MethodPost, "/auth/login",
			strings.NewReader(`{"email":"admin@example.com","password":"correct_password"}`))
		w := httptest.NewRecorder()

		handler.Login(w, req)

		gomega.Expect(w.Code).To(gomega.Equal(http.StatusOK))
		cookies := w.Result().Cookies()
		gomega.Expect(cookies).To(gomega.HaveLen(1))
		gomega.Expect(cookies[0].Name).To(gomega.Equal("SESSION"))
		gomega.Expect(cookies[0].HttpOnly).To(gomega.BeTrue())
		gomega.Expect(mockRepo.sessions).To(gomega.HaveKey(cookies[0].Value))

		var body ProfileResponse
		gomega.Expect(json.NewDecoder(w.Body).Decode(&body)).To(gomega.Succeed())
		gomega.Expect(body.Email).To(gomega.Equal("admin@example.com"))
		gomega.Expect(body.Role.Permissions).To(gomega.ConsistOf("CREATE_USER"))
	})

	ginkgo.It("should answer 401 with Invalid credentials", func() {
		req := httptest.NewRequest(http.MethodPost, "/auth/login",
			strings.NewReader(`{"email":"admin@example.com","password":"bad"}`))
		w := httptest.NewRecorder()

		handler.Login(w, req)

		gomega.Expect(w.Code).To(gomega.Equal(http.StatusUnauthorized))
		gomega.Expect(w.Body.String()).To(gomega.ContainSubstring("Invalid credentials"))
		gomega.Expect(w.Result().Cookies()).To(gomega.BeEmpty())
	})

	ginkgo.It("should answer 401 on /me without a principal", func() {
		w := httptest.NewRecorder()
		handler.Me(w, httptest.NewRequest(http.MethodGet, "/auth/me", nil))
		gomega.Expect(w.Code).To(gomega.Equal(http.StatusUnauthorized))
	})

	ginkgo.It("should return the principal on /me", func() {
		p := &identity.Principal{
			Identity:    identity.Identity{UserID: 1, Name: "Dibbyo", Email: "admin@example.com"},
			Permissions: []string{"CREATE_USER"},
		}
		req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
		req = req.WithContext(internal.ContextWithPrincipal(req.Context(), p))
		w := httptest.NewRecorder()

		handler.Me(w, req)

		gomega.Expect(w.Code).To(gomega.Equal(http.StatusOK))
		var body ProfileResponse
		gomega.Expect(json.NewDecoder(w.Body).Decode(&body)).To(gomega.Succeed())
		gomega.Expect(body.ID).To(gomega.Equal(int64(1)))
		gomega.Expect(body.ExpiresAt).To(gomega.BeNil())
	})

	ginkgo.It("should clear the cookie on logout", func() {
		p := &identity.Principal{Identity: identity.Identity{UserID: 1, Token: "tok-1"}}
		req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
		req = req.WithContext(internal.ContextWithPrincipal(req.Context(), p))
		w := httptest.NewRecorder()

		handler.Logout(w, req)

		gomega.Expect(w.Code).To(gomega.Equal(http.StatusOK))
		cookies := w.Result().Cookies()
		gomega.Expect(cookies).To(gomega.HaveLen(1))
		gomega.Expect(cookies[0].MaxAge).To(gomega.BeNumerically("<", 0))
	})

	ginkgo.It("should answer 400 for an unknown reset code", func() {
		req := httptest.NewRequest(http.MethodPost, "/auth/reset-password",
			strings.NewReader(`{"token":"1234","new_password":"brand-new"}`))
		w := httptest.NewRecorder()

		handler.ResetPassword(w, req)

		gomega.Expect(w.Code).To(gomega.Equal(http.StatusBadRequest))
		gomega.Expect(w.Body.String()).To(gomega.ContainSubstring("Invalid Otp"))
	})
})
