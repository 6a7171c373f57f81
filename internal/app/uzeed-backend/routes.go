package uzeedbackend

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/uzeed/uzeed-backend/internal/http/handlers/auth/login"
	"github.com/uzeed/uzeed-backend/internal/http/handlers/auth/register"
	feeddashboard "github.com/uzeed/uzeed-backend/internal/http/handlers/feed/dashboard"
	feedview "github.com/uzeed/uzeed-backend/internal/http/handlers/feed/view"
	"github.com/uzeed/uzeed-backend/internal/http/handlers/health"
	messagelist "github.com/uzeed/uzeed-backend/internal/http/handlers/message/list"
	messagesend "github.com/uzeed/uzeed-backend/internal/http/handlers/message/send"
	"github.com/uzeed/uzeed-backend/internal/http/handlers/payment/paymentcreate"
	"github.com/uzeed/uzeed-backend/internal/http/handlers/payment/paymentget"
	"github.com/uzeed/uzeed-backend/internal/http/handlers/payment/paymentwebhook"
	postcreate "github.com/uzeed/uzeed-backend/internal/http/handlers/post/create"
	profilesubscribe "github.com/uzeed/uzeed-backend/internal/http/handlers/profile/subscribe"
	profileview "github.com/uzeed/uzeed-backend/internal/http/handlers/profile/view"
	"github.com/uzeed/uzeed-backend/internal/http/handlers/servicedir/createitem"
	"github.com/uzeed/uzeed-backend/internal/http/handlers/servicedir/items"
	servicelist "github.com/uzeed/uzeed-backend/internal/http/handlers/servicedir/list"
	"github.com/uzeed/uzeed-backend/internal/http/handlers/servicedir/rate"
	"github.com/uzeed/uzeed-backend/internal/http/middlewarectx"
	"github.com/uzeed/uzeed-backend/internal/lib/jwt"
	authservice "github.com/uzeed/uzeed-backend/internal/services/auth"
	directoryservice "github.com/uzeed/uzeed-backend/internal/services/directory"
	feedservice "github.com/uzeed/uzeed-backend/internal/services/feed"
	messageservice "github.com/uzeed/uzeed-backend/internal/services/message"
	paymentservice "github.com/uzeed/uzeed-backend/internal/services/payment"
	postservice "github.com/uzeed/uzeed-backend/internal/services/post"
	subscriptionservice "github.com/uzeed/uzeed-backend/internal/services/subscription"
	"github.com/uzeed/uzeed-backend/internal/storage/repository"
)

// RegisterRoutes registers every route of the service.
func RegisterRoutes(
	r chi.Router,
	logger *slog.Logger,
	maker jwt.Maker,
	db *repository.Storage,
	authSvc *authservice.Service,
	feedSvc *feedservice.Service,
	subscriptionSvc *subscriptionservice.Service,
	paymentSvc *paymentservice.Service,
	postSvc *postservice.Service,
	directorySvc *directoryservice.Service,
	messageSvc *messageservice.Service,
) {
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	r.Route("/api/v1", func(r chi.Router) {
		// Open endpoints
		r.Post("/register", register.New(logger, authSvc).ServeHTTP)
		r.Post("/login", login.New(logger, authSvc).ServeHTTP)
		r.Get("/services", servicelist.New(logger, directorySvc).ServeHTTP)
		r.Get("/services/{userID}/items", items.New(logger, directorySvc).ServeHTTP)

		// Public pages with personalized projections for logged-in viewers
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.OptionalJWTMiddleware(maker))
			r.Get("/feed", feedview.New(logger, feedSvc).ServeHTTP)
			r.Get("/profiles/{username}", profileview.New(logger, feedSvc).ServeHTTP)
		})

		// Authenticated endpoints
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(maker, logger))
			r.Use(middlewarectx.RateLimitMiddleware(logger))
			r.Get("/dashboard", feeddashboard.New(logger, feedSvc).ServeHTTP)
			r.Post("/posts", postcreate.New(logger, postSvc).ServeHTTP)
			r.Post("/profiles/{username}/subscribe", profilesubscribe.New(logger, subscriptionSvc).ServeHTTP)
			r.Post("/payments/create", paymentcreate.New(logger, paymentSvc, db).ServeHTTP)
			r.Get("/payments/{id}", paymentget.New(logger, paymentSvc).ServeHTTP)
			r.Post("/services/items", createitem.New(logger, directorySvc).ServeHTTP)
			r.Post("/services/{userID}/rating", rate.New(logger, directorySvc).ServeHTTP)
			r.Post("/messages/{userID}", messagesend.New(logger, messageSvc).ServeHTTP)
			r.Get("/messages/{userID}", messagelist.New(logger, messageSvc).ServeHTTP)
		})

		// Khipu calls this without auth; the service verifies the payload.
		r.Post("/webhooks/khipu", paymentwebhook.New(logger, paymentSvc).ServeHTTP)
	})

	r.Get("/health", health.New(logger, db).ServeHTTP)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
