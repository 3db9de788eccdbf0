package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/userstore/internal/api"
	apiMiddleware "github.com/phrazzld/userstore/internal/api/middleware"
	"github.com/phrazzld/userstore/internal/platform/metrics"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// setupRouter creates and configures the application router with all routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.NewTraceMiddleware(app.logger))
	r.Use(metrics.Middleware)

	userHandler := api.NewUserHandler(app.userStore, app.logger)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(app.config.Server.RequestTimeout))

		r.Get("/", userHandler.Root)
		r.Post("/users", userHandler.CreateUser)

		userPath := "/users/{" + api.UsernameParam + "}"
		r.Get(userPath, userHandler.GetUser)
		r.Patch(userPath, userHandler.UpdateUser)
		r.Put(userPath, userHandler.UpdateUser)
		r.Delete(userPath, userHandler.DeleteUser)

		r.Method(http.MethodGet, "/health", api.NewHealthHandler(app.userStore, app.logger))
	})

	r.Handle("/metrics", promhttp.Handler())

	return r
}
