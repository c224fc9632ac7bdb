package router

import (
	"net/http"
	"time"

	"github.com/skilllinkup/backend/internal/auth"
	"github.com/skilllinkup/backend/internal/catalog"
	"github.com/skilllinkup/backend/internal/content"
	"github.com/skilllinkup/backend/internal/geocode"
	"github.com/skilllinkup/backend/internal/messaging"
	"github.com/skilllinkup/backend/internal/middleware"
	"github.com/skilllinkup/backend/internal/models"
	"github.com/skilllinkup/backend/internal/onboarding"
	"github.com/skilllinkup/backend/internal/orders"
	"github.com/skilllinkup/backend/internal/payments"
	"github.com/skilllinkup/backend/internal/reviews"
	"github.com/skilllinkup/backend/internal/track"
)

// Handlers bundles everything the API router mounts.
type Handlers struct {
	Auth       *auth.Handler
	AuthSvc    middleware.TokenValidator
	Catalog    *catalog.Handler
	Manage     *catalog.ManageHandler
	Orders     *orders.Handler
	Payments   *payments.WebhookHandler
	Onboarding *onboarding.Handler
	Content    *content.Handler
	Reviews    *reviews.Handler
	Messaging  *messaging.Handler
	Geocode    *geocode.Handler
	Track      *track.Handler
}

// New returns the http.Handler serving the /api surface.
func New(h Handlers) http.Handler {
	mux := http.NewServeMux()
	authed := middleware.SessionAuth(h.AuthSvc)
	trackLimit := middleware.NewRateLimiter(30, time.Minute)

	// Auth
	mux.HandleFunc("POST /api/auth/signup", h.Auth.Signup)
	mux.HandleFunc("POST /api/auth/login", h.Auth.Login)
	mux.Handle("GET /api/auth/me", authed(http.HandlerFunc(h.Auth.Me)))

	// Catalog
	mux.HandleFunc("GET /api/categories", h.Catalog.ListCategories)
	mux.HandleFunc("GET /api/gigs", h.Catalog.ListGigs)
	mux.HandleFunc("GET /api/gigs/{slug}", h.Catalog.GetGig)
	mux.Handle("POST /api/gigs", authed(middleware.RequireRole(models.RoleFreelancer, h.Manage.CreateGig)))
	mux.Handle("PUT /api/gigs/{id}", authed(middleware.RequireRole(models.RoleFreelancer, h.Manage.UpdateGig)))
	mux.Handle("POST /api/admin/categories", authed(middleware.RequireRole(models.RoleAdmin, h.Manage.CreateCategory)))
	mux.Handle("PUT /api/admin/categories/{id}", authed(middleware.RequireRole(models.RoleAdmin, h.Manage.UpdateCategory)))
	mux.Handle("DELETE /api/admin/categories/{id}", authed(middleware.RequireRole(models.RoleAdmin, h.Manage.DeleteCategory)))

	// Checkout & orders
	mux.Handle("POST /api/checkout", authed(http.HandlerFunc(h.Orders.Checkout)))
	mux.Handle("GET /api/orders", authed(http.HandlerFunc(h.Orders.ListOrders)))
	mux.Handle("GET /api/orders/{id}", authed(http.HandlerFunc(h.Orders.GetOrder)))
	for _, action := range []string{"deliver", "accept", "cancel", "revision"} {
		mux.Handle("POST /api/orders/{id}/"+action, authed(h.Orders.Milestone(action)))
	}

	// Payment provider callbacks (authenticated by signature, not session)
	mux.HandleFunc("POST /api/payments/webhook", h.Payments.Receive)

	// Onboarding wizard
	mux.Handle("POST /api/onboarding/start", authed(http.HandlerFunc(h.Onboarding.Start)))
	mux.Handle("GET /api/onboarding", authed(http.HandlerFunc(h.Onboarding.Get)))
	mux.Handle("PATCH /api/onboarding/fields", authed(http.HandlerFunc(h.Onboarding.SetField)))
	mux.Handle("POST /api/onboarding/next", authed(http.HandlerFunc(h.Onboarding.Next)))
	mux.Handle("POST /api/onboarding/back", authed(http.HandlerFunc(h.Onboarding.Back)))
	mux.Handle("POST /api/onboarding/submit", authed(http.HandlerFunc(h.Onboarding.Submit)))
	mux.Handle("GET /api/me/profile", authed(http.HandlerFunc(h.Onboarding.Profile)))

	// Blog / CMS
	mux.HandleFunc("GET /api/posts", h.Content.ListPosts)
	mux.Handle("POST /api/admin/posts", authed(middleware.RequireRole(models.RoleAdmin, h.Content.CreatePost)))
	mux.HandleFunc("GET /api/posts/{slug}", h.Content.GetPost)
	mux.Handle("POST /api/posts/{slug}/comments", authed(http.HandlerFunc(h.Content.CreateComment)))
	mux.Handle("PATCH /api/comments/{id}", authed(http.HandlerFunc(h.Content.PatchComment)))

	// Platform reviews
	mux.HandleFunc("GET /api/reviews", h.Reviews.ListReviews)
	mux.Handle("POST /api/reviews", authed(http.HandlerFunc(h.Reviews.CreateReview)))

	// Messaging
	mux.Handle("POST /api/messages/start", authed(http.HandlerFunc(h.Messaging.Start)))
	mux.Handle("GET /api/conversations", authed(http.HandlerFunc(h.Messaging.ListConversations)))
	mux.Handle("GET /api/conversations/{id}/messages", authed(http.HandlerFunc(h.Messaging.ListMessages)))
	mux.Handle("POST /api/conversations/{id}/messages", authed(http.HandlerFunc(h.Messaging.SendMessage)))

	// Utilities
	mux.HandleFunc("GET /api/geocode", h.Geocode.Geocode)
	mux.HandleFunc("POST /api/track/affiliate-click", trackLimit.Wrap(h.Track.AffiliateClick))
	mux.Handle("GET /api/track/stats", authed(middleware.RequireRole(models.RoleAdmin, h.Track.Stats)))

	return mux
}
