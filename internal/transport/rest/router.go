package rest

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/frahmantamala/recruitment/internal/assessment"
	"github.com/frahmantamala/recruitment/internal/auth"
	"github.com/frahmantamala/recruitment/internal/cv"
	"github.com/frahmantamala/recruitment/internal/job"
	"github.com/frahmantamala/recruitment/internal/rbac"
	"github.com/frahmantamala/recruitment/internal/transport/middleware"
	"github.com/frahmantamala/recruitment/internal/transport/swagger"
	"github.com/frahmantamala/recruitment/internal/user"
	"github.com/go-chi/chi"
)

// Handlers groups every HTTP handler the API mounts. A nil Spec leaves
// /openapi.yml unrouted.
type Handlers struct {
	Auth       *auth.Handler
	RBAC       *rbac.Handler
	Users      *user.Handler
	Jobs       *job.Handler
	CV         *cv.Handler
	Assessment *assessment.Handler
	Health     *HealthHandler
	Spec       http.Handler
}

type Options struct {
	Origins    []string
	Production bool
	// LoginRateLimit caps login, forgot-password and reset-password
	// requests per IP per minute, shared across the three. Zero disables it.
	LoginRateLimit int
}

func NewRouter(h Handlers, guard *middleware.SessionAuth, opts Options, logger *slog.Logger) *chi.Mux {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.CORS(opts.Origins))
	router.Use(middleware.SecureHeaders(logger, opts.Production))
	router.Use(middleware.LoggingMiddleware(logger))

	if h.Spec != nil {
		router.Handle(swagger.SpecURL, h.Spec)
		router.Handle("/swagger/*", swagger.Handler())
	}

	limited := middleware.RateLimitByIP(opts.LoginRateLimit, time.Minute)
	require := guard.RequirePermission

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/ping", h.Health.Ping)
		r.Get("/health", h.Health.Health)

		r.Route("/auth", func(ar chi.Router) {
			ar.With(limited).Post("/login", h.Auth.Login)
			ar.With(limited).Post("/forgot-password", h.Auth.ForgotPassword)
			ar.With(limited).Post("/reset-password", h.Auth.ResetPassword)

			ar.Group(func(sr chi.Router) {
				sr.Use(guard.RequireSession)
				sr.Get("/me", h.Auth.Me)
				sr.Post("/logout", h.Auth.Logout)
				sr.Post("/change-password", h.Auth.ChangePassword)
			})
		})

		r.Route("/rbac", func(rr chi.Router) {
			rr.With(require(rbac.PermListAllRoles)).Get("/roles", h.RBAC.ListRoles)
			rr.With(require(rbac.PermCreateRole)).Post("/roles", h.RBAC.CreateRole)
			rr.With(require(rbac.PermUpdateRole)).Put("/roles/{id}", h.RBAC.UpdateRole)
			rr.With(require(rbac.PermDeleteRole)).Delete("/roles/{id}", h.RBAC.DeleteRole)
			rr.With(require(rbac.PermAssignRolePermission)).Put("/roles/{id}/permissions", h.RBAC.AssignPermissions)
			rr.With(require(rbac.PermAssignRolePermission)).Delete("/roles/{id}/permissions/{permissionId}", h.RBAC.RevokePermission)

			rr.With(require(rbac.PermListAllPermissions)).Get("/permissions", h.RBAC.ListPermissions)
			rr.With(require(rbac.PermCreatePermission)).Post("/permissions", h.RBAC.CreatePermission)

			rr.With(require(rbac.PermAssignScope)).Get("/users/{id}/scopes", h.RBAC.GetScope)
			rr.With(require(rbac.PermAssignScope)).Put("/users/{id}/scopes", h.RBAC.AssignScope)
		})

		r.Route("/users", func(ur chi.Router) {
			ur.With(require(rbac.PermListAllUsers)).Get("/", h.Users.ListUsers)
			ur.With(require(rbac.PermCreateUser)).Post("/", h.Users.CreateUser)
			ur.With(require(rbac.PermViewUser)).Get("/{id}", h.Users.GetUser)
			ur.With(require(rbac.PermUpdateUser)).Put("/{id}", h.Users.UpdateUser)
			ur.With(require(rbac.PermDeleteUser)).Delete("/{id}", h.Users.DeleteUser)
		})

		r.Route("/jobs", func(jr chi.Router) {
			jr.Get("/", h.Jobs.ListJobs)
			jr.With(guard.RequireSession).Get("/{id}", h.Jobs.GetJob)
			jr.With(require(rbac.PermPostJob)).Post("/", h.Jobs.PostJob)
			// recruiters only see candidates for the jobs in their scope
			jr.With(guard.RequirePermissionInScope(rbac.PermViewUser, middleware.ScopeFromURLParam("id"))).
				Get("/{id}/candidates", h.Jobs.ListCandidates)
		})

		r.Route("/jobseeker", func(sr chi.Router) {
			sr.Use(guard.RequireSession)

			sr.Post("/cv", h.CV.UploadCV)
			sr.Get("/cv", h.CV.GetCV)
			sr.Get("/cv/file", h.CV.DownloadCV)

			sr.Post("/matches", h.Jobs.MatchJobs)

			sr.Post("/assessments", h.Assessment.GenerateAssessment)
			sr.Post("/assessments/answers", h.Assessment.EvaluateAnswer)
			sr.Post("/assessments/evaluate", h.Assessment.EvaluateAssessment)
		})
	})

	return router
}
