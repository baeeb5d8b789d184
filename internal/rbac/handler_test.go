package rbac_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/frahmantamala/recruitment/internal/core/events"
	"github.com/frahmantamala/recruitment/internal/rbac"
	rbacPostgres "github.com/frahmantamala/recruitment/internal/rbac/postgres"
	"github.com/frahmantamala/recruitment/internal/transport"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("RBAC Handler Integration", func() {
	var router chi.Router

	BeforeEach(func() {
		logger := quietLogger()
		db, sdb := openTestStore()
		reader := rbacPostgres.NewPermissionReader(sdb)
		resolver := rbac.NewPermissionResolver(reader, rbac.NewMemoryCache(), logger)
		bus := events.NewEventBus(logger)
		resolver.SubscribeInvalidation(bus)
		service := rbac.NewService(rbacPostgres.NewRepository(db), reader, resolver, bus, logger)
		handler := rbac.NewHandler(&transport.BaseHandler{Logger: logger}, service)

		router = chi.NewRouter()
		router.Get("/roles", handler.ListRoles)
		router.Post("/roles", handler.CreateRole)
		router.Put("/roles/{id}", handler.UpdateRole)
		router.Delete("/roles/{id}", handler.DeleteRole)
		router.Post("/permissions", handler.CreatePermission)
		router.Get("/permissions", handler.ListPermissions)
		router.Put("/roles/{id}/permissions", handler.AssignPermissions)
	})

	serve := func(method, path, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	It("should create a role with 201", func() {
		w := serve(http.MethodPost, "/roles", `{"name":"INTERVIEWER"}`)
		Expect(w.Code).To(Equal(http.StatusCreated))

		var role rbac.Role
		Expect(json.NewDecoder(w.Body).Decode(&role)).To(Succeed())
		Expect(role.Name).To(Equal("INTERVIEWER"))
	})

	It("should answer 409 for a duplicate role", func() {
		w := serve(http.MethodPost, "/roles", `{"name":"ADMIN"}`)
		Expect(w.Code).To(Equal(http.StatusConflict))
	})

	It("should answer 400 for a malformed body", func() {
		w := serve(http.MethodPost, "/roles", `{"name":`)
		Expect(w.Code).To(Equal(http.StatusBadRequest))
	})

	It("should answer 400 for a non numeric id", func() {
		w := serve(http.MethodPut, "/roles/abc", `{"name":"X"}`)
		Expect(w.Code).To(Equal(http.StatusBadRequest))
	})

	It("should answer 403 when deleting the default role", func() {
		w := serve(http.MethodDelete, "/roles/0", "")
		Expect(w.Code).To(Equal(http.StatusForbidden))
	})

	It("should answer 404 for an unknown role", func() {
		w := serve(http.MethodDelete, "/roles/55", "")
		Expect(w.Code).To(Equal(http.StatusNotFound))
	})

	It("should assign a permission and list it on the role", func() {
		w := serve(http.MethodPost, "/permissions", `{"name":"CREATE_USER","category":"POST"}`)
		Expect(w.Code).To(Equal(http.StatusCreated))
		var p rbac.Permission
		Expect(json.NewDecoder(w.Body).Decode(&p)).To(Succeed())

		body, _ := json.Marshal(rbac.AssignPermissionsDTO{Permissions: []int64{p.ID}})
		w = serve(http.MethodPut, "/roles/0/permissions", string(body))
		Expect(w.Code).To(Equal(http.StatusOK))

		w = serve(http.MethodGet, "/roles", "")
		Expect(w.Code).To(Equal(http.StatusOK))
		var resp rbac.RolesResponse
		Expect(json.NewDecoder(w.Body).Decode(&resp)).To(Succeed())
		Expect(resp.Roles).To(HaveLen(1))
		Expect(resp.Roles[0].Permissions).To(ConsistOf("CREATE_USER"))

		w = serve(http.MethodGet, "/permissions", "")
		Expect(w.Code).To(Equal(http.StatusOK))
		var groups rbac.PermissionsResponse
		Expect(json.NewDecoder(w.Body).Decode(&groups)).To(Succeed())
		Expect(groups.Categories).To(HaveLen(1))
		Expect(groups.Categories[0].Category).To(Equal("POST"))
	})
})
