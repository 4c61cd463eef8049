package routes

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/cors"
	"github.com/rs/zerolog"

	"github.com/dcode-github/rental_listing_platform/cache"
	"github.com/dcode-github/rental_listing_platform/controllers"
	"github.com/dcode-github/rental_listing_platform/media"
	"github.com/dcode-github/rental_listing_platform/middleware"
	"github.com/dcode-github/rental_listing_platform/observability"
	"github.com/dcode-github/rental_listing_platform/store"
)

// Deps is everything the route table hands to controllers.
type Deps struct {
	Stores   store.Stores
	Media    media.Store
	Listings *cache.Listings
	Tokens   controllers.Tokens
	Policy   controllers.UpdatePolicy
	Logger   zerolog.Logger
	Registry *prometheus.Registry

	CORSOrigins   []string
	UploadsPerMin int
}

// NewHandler builds the router and wraps it with CORS.
func NewHandler(d Deps) http.Handler {
	router := mux.NewRouter()
	Routes(router, d)

	return cors.New(cors.Options{
		AllowedOrigins:   d.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}).Handler(router)
}

func Routes(router *mux.Router, d Deps) {
	s := d.Stores
	auth := middleware.Auth(d.Tokens.Key)
	limiter := middleware.NewRateLimiter(d.UploadsPerMin)

	router.Use(middleware.Metrics, middleware.Logger(d.Logger))

	router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)
	if d.Registry != nil {
		router.Handle("/metrics", observability.MetricsHandler(d.Registry)).Methods(http.MethodGet)
	}

	api := router.PathPrefix("/api/v1").Subrouter()

	// Auth routes
	authRouter := api.PathPrefix("/auth").Subrouter()
	authRouter.HandleFunc("/register", controllers.RegisterUser(s.Users)).Methods(http.MethodPost)
	authRouter.HandleFunc("/login", controllers.LoginUser(s.Users, d.Tokens)).Methods(http.MethodPost)
	authRouter.HandleFunc("/logout", controllers.LogoutUser(d.Tokens)).Methods(http.MethodPost)

	// Property routes. Fixed segments are registered before /{id}.
	api.HandleFunc("/property", controllers.GetProperty(s.Properties, d.Listings)).Methods(http.MethodGet)
	property := api.PathPrefix("/property").Subrouter()
	property.Handle("/add-property", limiter.Middleware(auth(controllers.CreateProperty(s.Properties, d.Media, d.Listings)))).Methods(http.MethodPost)
	property.HandleFunc("/", controllers.GetProperty(s.Properties, d.Listings)).Methods(http.MethodGet)
	property.HandleFunc("/filter", controllers.GetFilteredProperties(s.Properties, d.Listings)).Methods(http.MethodGet)
	property.HandleFunc("/city/{city}", controllers.GetPropertyByCity(s.Properties, d.Listings)).Methods(http.MethodGet)
	property.HandleFunc("/location/{location}", controllers.GetPropertiesByLocation(s.Properties, d.Listings)).Methods(http.MethodGet)
	property.HandleFunc("/slug/{slug}", controllers.PropertyBySlug(s.Properties)).Methods(http.MethodGet)
	property.Handle("/review", auth(controllers.AddReview(s.Properties, s.Reviews, s.Users, d.Listings))).Methods(http.MethodPost)
	property.HandleFunc("/review/{id}", controllers.GetReview(s.Reviews)).Methods(http.MethodGet)
	property.Handle("/review/{id}", auth(controllers.DeleteReview(s.Properties, s.Reviews, d.Listings))).Methods(http.MethodDelete)
	property.HandleFunc("/{id}", controllers.GetPropertyByID(s.Properties)).Methods(http.MethodGet)
	property.Handle("/{id}", auth(controllers.UpdateProperty(s.Properties, s.Users, d.Listings, d.Policy))).Methods(http.MethodPut)
	property.Handle("/{id}", auth(controllers.DeleteProperty(s.Properties, s.Users, d.Listings))).Methods(http.MethodDelete)

	// User routes
	user := api.PathPrefix("/user").Subrouter()
	user.Use(auth)
	user.HandleFunc("/info", controllers.GetUserInfo(s.Users)).Methods(http.MethodGet)
	user.HandleFunc("/update", controllers.UpdateUser(s.Users)).Methods(http.MethodPut)
	user.Handle("/uploadProfilePicture", limiter.Middleware(controllers.UploadProfilePicture(s.Users, d.Media))).Methods(http.MethodPost)
	user.HandleFunc("/testToken", controllers.TestToken()).Methods(http.MethodGet)

	// Favorites and recommendations
	user.HandleFunc("/favorites", controllers.AddFavorite(s.Properties, s.Favorites)).Methods(http.MethodPost)
	user.HandleFunc("/favorites", controllers.GetFavorites(s.Favorites)).Methods(http.MethodGet)
	user.HandleFunc("/favorites/{propertyID}", controllers.DeleteFavorite(s.Favorites)).Methods(http.MethodDelete)
	user.HandleFunc("/recommend", controllers.RecommendProperty(s.Properties, s.Users, s.Recommendations)).Methods(http.MethodPost)
	user.HandleFunc("/recommendations", controllers.GetRecommendations(s.Recommendations)).Methods(http.MethodGet)

	// Contact routes
	api.HandleFunc("/contact", controllers.CreateContact(s.Contacts)).Methods(http.MethodPost)
	api.Handle("/contact", auth(controllers.GetContacts(s.Contacts))).Methods(http.MethodGet)

	// Blog routes
	api.HandleFunc("/blog", controllers.GetBlogs(s.Blogs)).Methods(http.MethodGet)
	api.Handle("/blog", auth(controllers.CreateBlog(s.Blogs))).Methods(http.MethodPost)
	api.HandleFunc("/blog/{slug}", controllers.GetBlogBySlug(s.Blogs)).Methods(http.MethodGet)
	api.Handle("/blog/{id}", auth(controllers.DeleteBlog(s.Blogs))).Methods(http.MethodDelete)

	api.HandleFunc("/media/{id}", controllers.ServeMedia(d.Media)).Methods(http.MethodGet)
}
