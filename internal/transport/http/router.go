package http

import (
	"net/http"

	"github.com/go-auth-nosql/internal/application/account"
	"github.com/go-auth-nosql/internal/application/verification"
	"github.com/go-auth-nosql/internal/config"
	"github.com/go-auth-nosql/internal/transport/http/handler"
	appmiddleware "github.com/go-auth-nosql/internal/transport/http/middleware"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	accountSvc := account.NewService(account.ServiceDeps{
		AccountRepo: deps.AccountRepo,
		Hasher:      deps.Hasher,
		JWTProvider: deps.Tokens,
	})
	verificationSvc := verification.NewService(verification.ServiceDeps{
		Store:    deps.VerificationRepo,
		Notifier: deps.Notifier,
		CodeTTL:  cfg.VerificationCodeTTL,
	})

	healthH := handler.NewHealthHandler()
	accountH := handler.NewAccountHandler(accountSvc)
	verificationH := handler.NewVerificationHandler(verificationSvc)

	r.Get("/health-check/{action}", healthH.Ping)

	r.Route("/api/users", func(r chi.Router) {
		r.Post("/register", accountH.Register)
		r.Post("/login", accountH.Login)
		r.Post("/verify_email", verificationH.IssueCode)
		r.Post("/verify_code", verificationH.CheckCode)

		r.With(appmiddleware.Auth(deps.Tokens)).Get("/current", accountH.Current)
	})

	return r
}
