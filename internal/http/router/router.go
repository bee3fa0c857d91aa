package router

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/karkasai/karkasai-backend/internal/domain"
	"github.com/karkasai/karkasai-backend/internal/http/handler"
	"github.com/karkasai/karkasai-backend/internal/http/middleware"
	"github.com/karkasai/karkasai-backend/internal/http/response"
	"github.com/karkasai/karkasai-backend/internal/security"
)

type Dependencies struct {
	AuthHandler    *handler.AuthHandler
	GroupHandler   *handler.GroupHandler
	PostHandler    *handler.PostHandler
	CommentHandler *handler.CommentHandler
	TagHandler     *handler.TagHandler
	AdminHandler   *handler.AdminHandler
	Gateway        http.Handler

	TokenCodec  *security.TokenCodec
	Logger      *slog.Logger
	CORSOrigins []string

	APIRateLimitRPM  int
	AuthRateLimitRPM int
	EnableOTelHTTP   bool
}

func New(dep Dependencies) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.RequestLogger(dep.Logger))
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.CORS(dep.CORSOrigins))
	r.Use(middleware.BodyLimit(16 << 20))
	if dep.APIRateLimitRPM > 0 {
		r.Use(httprate.LimitByIP(dep.APIRateLimitRPM, time.Minute))
	}

	authLimiter := func(next http.Handler) http.Handler { return next }
	if dep.AuthRateLimitRPM > 0 {
		authLimiter = httprate.LimitByIP(dep.AuthRateLimitRPM, time.Minute)
	}
	authed := middleware.Authenticate(dep.TokenCodec)

	r.Get("/health/live", func(w http.ResponseWriter, r *http.Request) {
		response.JSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.With(authLimiter).Post("/accounts", dep.AuthHandler.Register)
		r.With(authLimiter).Post("/login", dep.AuthHandler.Login)
		r.With(authLimiter).Post("/accessToken", dep.AuthHandler.Refresh)
		r.Post("/logout", dep.AuthHandler.Logout)

		r.Get("/tags", dep.TagHandler.List)

		r.Group(func(r chi.Router) {
			r.Use(authed)

			r.Route("/groups", func(r chi.Router) {
				r.Get("/", dep.GroupHandler.List)
				r.Post("/", dep.GroupHandler.Create)
				r.Route("/{groupID}", func(r chi.Router) {
					r.Get("/", dep.GroupHandler.Get)
					r.Put("/", dep.GroupHandler.Update)
					r.Delete("/", dep.GroupHandler.Delete)
					r.Post("/join", dep.GroupHandler.Join)

					r.Route("/posts", func(r chi.Router) {
						r.Get("/", dep.PostHandler.List)
						r.Post("/", dep.PostHandler.Create)
						r.Route("/{postID}", func(r chi.Router) {
							r.Get("/", dep.PostHandler.Get)
							r.Put("/", dep.PostHandler.Update)
							r.Delete("/", dep.PostHandler.Delete)

							r.Route("/comments", func(r chi.Router) {
								r.Get("/", dep.CommentHandler.List)
								r.Post("/", dep.CommentHandler.Create)
								r.Put("/{commentID}", dep.CommentHandler.Update)
								r.Delete("/{commentID}", dep.CommentHandler.Delete)
							})
						})
					})
				})
			})

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(domain.RoleAdmin))
				r.Get("/all", dep.AdminHandler.Overview)
				r.Get("/tags/all", dep.TagHandler.ListAll)
				r.Post("/tags", dep.TagHandler.Create)
				r.Put("/tags/{tagID}", dep.TagHandler.Update)
				r.Delete("/tags/{tagID}", dep.TagHandler.Delete)
			})
		})
	})

	if dep.Gateway != nil {
		r.Handle("/ws", dep.Gateway)
	}

	var h http.Handler = r
	if dep.EnableOTelHTTP {
		h = otelhttp.NewHandler(r, "http.server")
	}
	return h
}
