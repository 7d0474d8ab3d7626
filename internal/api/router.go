package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/baharkarakas/maverick-bank/internal/api/handlers"
	"github.com/baharkarakas/maverick-bank/internal/auth"
	"github.com/baharkarakas/maverick-bank/internal/config"
	"github.com/baharkarakas/maverick-bank/internal/metrics"
	"github.com/baharkarakas/maverick-bank/internal/middleware"
	"github.com/baharkarakas/maverick-bank/internal/models"
	"github.com/baharkarakas/maverick-bank/internal/services"
)

type RouterDeps struct {
	Cfg       config.Config
	Tokens    *auth.TokenManager
	Users     *services.UserService
	Customers *services.CustomerService
	Processor *services.TransactionProcessor
	Query     *services.TransactionQueryService
	Lookups   *services.LookupService
}

func NewRouter(d RouterDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.Recover, middleware.HTTPMetrics, middleware.RateLimit(d.Cfg.RateRPS))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: d.Cfg.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type", middleware.RequestIDHeader},
		ExposedHeaders: []string{middleware.RequestIDHeader},
	}))

	// health & metrics
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte("ok")) })
	r.Handle("/metrics", metrics.Handler())

	authH := handlers.NewAuthHandler(d.Users, d.Customers)
	txH := handlers.NewTransactionHandler(d.Processor, d.Query)
	custH := handlers.NewCustomerHandler(d.Customers)
	lookH := handlers.NewLookupHandler(d.Lookups)

	staff := middleware.RequireRole(models.RoleAdmin, models.RoleEmployee)
	anyone := middleware.RequireRole(models.RoleAdmin, models.RoleEmployee, models.RoleCustomer)
	admin := middleware.RequireRole(models.RoleAdmin)

	r.Route("/api/v1", func(r chi.Router) {
		// ---------- public ----------
		r.Post("/auth/register", authH.Register)
		r.Post("/auth/login", authH.Login)
		r.Post("/auth/refresh", authH.Refresh)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(d.Tokens))

			r.With(admin).Post("/users", authH.CreateUser)

			// ---------- transactions ----------
			r.With(anyone).Post("/transactions", txH.Create)
			r.With(staff).Get("/transactions", txH.List)
			r.With(anyone).Get("/transactions/{id}", txH.Get)
			r.With(anyone).Get("/transactions/customer/{customerId}", txH.ListByCustomer)
			r.With(anyone).Get("/transactions/customer/{customerId}/filter", txH.Filter)
			r.With(anyone).Get("/transactions/customer/{customerId}/recent", txH.Recent)

			// ---------- customers & accounts ----------
			r.With(anyone).Get("/customers/{id}", custH.Get)
			r.With(anyone).Get("/customers/{id}/accounts", custH.Accounts)
			r.With(admin).Delete("/customers/{id}", custH.Delete)
			r.With(anyone).Get("/accounts/{accountNumber}", custH.Account)

			// ---------- lookups ----------
			r.With(anyone).Get("/transaction-types", lookH.TransactionTypes)
			r.With(anyone).Get("/account-types", lookH.AccountTypes)
		})
	})

	return r
}
