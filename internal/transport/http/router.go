package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/karen-colon/b3-backend-social-net/internal/handler"
	"github.com/karen-colon/b3-backend-social-net/internal/httputil"
	"github.com/karen-colon/b3-backend-social-net/internal/monitoring"
	authmw "github.com/karen-colon/b3-backend-social-net/internal/transport/http/middleware"
)

// RouterConfig holds the dependencies needed to create routes
type RouterConfig struct {
	UserHandler        *handler.UserHandler
	PublicationHandler *handler.PublicationHandler
	FollowHandler      *handler.FollowHandler
	ReplyHandler       *handler.ReplyHandler
	TokenVerifier      authmw.TokenVerifier
	AllowedOrigins     []string
}

// NewRouter creates and configures a new Chi router with all route groups
func NewRouter(cfg RouterConfig) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{"GET", "HEAD", "PUT", "PATCH", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type", "X-Requested-With", "Accept"},
		MaxAge:         300,
	}))
	r.Use(monitoring.InstrumentHandler)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", monitoring.Handler())

	auth := authmw.AuthMiddleware(cfg.TokenVerifier)

	r.Route("/api/user", func(r chi.Router) {
		// Public
		r.Post("/register", cfg.UserHandler.Register)
		r.Post("/login", cfg.UserHandler.Login)
		r.Get("/avatar/{id}", cfg.UserHandler.Avatar)

		r.Group(func(r chi.Router) {
			r.Use(auth)
			r.Get("/profile/{id}", cfg.UserHandler.Profile)
			r.Get("/list", cfg.UserHandler.List)
			r.Get("/list/{page}", cfg.UserHandler.List)
			r.Put("/update", cfg.UserHandler.Update)
			r.Post("/upload-avatar", cfg.UserHandler.UploadAvatar)
			r.Get("/counters", cfg.UserHandler.Counters)
			r.Get("/counters/{id}", cfg.UserHandler.Counters)
		})
	})

	r.Route("/api/publication", func(r chi.Router) {
		r.Get("/media/{id}", cfg.PublicationHandler.Media)

		r.Group(func(r chi.Router) {
			r.Use(auth)
			r.Post("/new-publication", cfg.PublicationHandler.Create)
			r.Get("/show-publication/{id}", cfg.PublicationHandler.Show)
			r.Delete("/delete-publication/{id}", cfg.PublicationHandler.Delete)
			r.Get("/publications-user/{id}", cfg.PublicationHandler.ListByUser)
			r.Get("/publications-user/{id}/{page}", cfg.PublicationHandler.ListByUser)
			r.Post("/upload-media/{id}", cfg.PublicationHandler.UploadMedia)
			r.Get("/feed", cfg.PublicationHandler.Feed)
			r.Get("/feed/{page}", cfg.PublicationHandler.Feed)
			r.Post("/add-reply", cfg.ReplyHandler.Add)
			r.Get("/replies/{id}", cfg.ReplyHandler.List)
			r.Get("/replies/{id}/{page}", cfg.ReplyHandler.List)
		})
	})

	r.Route("/api/follow", func(r chi.Router) {
		r.Use(auth)
		r.Post("/follow", cfg.FollowHandler.Follow)
		r.Delete("/unfollow/{id}", cfg.FollowHandler.Unfollow)
		r.Get("/following", cfg.FollowHandler.Following)
		r.Get("/following/{id}", cfg.FollowHandler.Following)
		r.Get("/following/{id}/{page}", cfg.FollowHandler.Following)
		r.Get("/followers", cfg.FollowHandler.Followers)
		r.Get("/followers/{id}", cfg.FollowHandler.Followers)
		r.Get("/followers/{id}/{page}", cfg.FollowHandler.Followers)
	})

	return r
}
