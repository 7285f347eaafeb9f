package api

import (
	"net/http"
	"time"

	"codecamp/internal/api/handler"
	"codecamp/internal/api/middleware"
	"codecamp/internal/app/service"
	"codecamp/internal/common/security"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/jwtauth/v5"
)

// requestTimeout bounds every request; submissions poll the judge per test
// case, so it sits above the submission deadline.
const requestTimeout = 150 * time.Second

type Services struct {
	Auth         *service.AuthService
	User         *service.UserService
	Problem      *service.ProblemService
	Submission   *service.SubmissionService
	Notification *service.NotificationService
}

func NewRouter(svc Services) http.Handler {
	r := chi.NewRouter()

	// Base Middlewares
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(middleware.RequestLogger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(requestTimeout))

	// Verifies "Authorization: Bearer T" and puts claims in context; routes
	// decide whether a token is required.
	r.Use(jwtauth.Verifier(security.TokenAuth))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	r.Route("/api/v1", func(v1 chi.Router) {
		v1.Route("/auth", handler.NewAuthHandler(svc.Auth).RegisterRoutes)
		handler.NewUserHandler(svc.User).RegisterRoutes(v1)
		handler.NewSubmissionHandler(svc.Submission).RegisterRoutes(v1)

		v1.Route("/problems", handler.NewProblemHandler(svc.Problem).RegisterRoutes)

		notificationHandler := handler.NewNotificationHandler(svc.Notification)
		v1.Route("/notifications", notificationHandler.RegisterRoutes)
		v1.Route("/admin", func(admin chi.Router) {
			admin.Use(middleware.Authenticator)
			admin.Use(middleware.AdminOnly)
			notificationHandler.RegisterAdminRoutes(admin)
		})
	})

	return r
}
