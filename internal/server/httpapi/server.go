// Package httpapi exposes the StreamForge REST API over Fiber.
package httpapi

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	"github.com/Silas-Hakuzwimana/streamforge/internal/common"
	"github.com/Silas-Hakuzwimana/streamforge/internal/logging"
	"github.com/Silas-Hakuzwimana/streamforge/internal/server/config"
	"github.com/Silas-Hakuzwimana/streamforge/internal/server/services"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// BodyLimit bounds request bodies, uploads included.
const BodyLimit = 100 << 20

// Services are the business operations the API serves.
type Services struct {
	Auth    *services.AuthService
	Profile *services.ProfileService
	Media   *services.MediaService
}

type Server struct {
	app     *fiber.App
	auth    *services.AuthService
	profile *services.ProfileService
	media   *services.MediaService

	production bool
	sessionTTL time.Duration
	log        logging.Logger
}

type Option func(*options)

type options struct {
	accessLog io.Writer
}

// WithAccessLog sends the request log to w instead of stdout.
func WithAccessLog(w io.Writer) Option { return func(o *options) { o.accessLog = w } }

func New(svc Services, cfg *config.Config, log logging.Logger, opts ...Option) *Server {
	o := options{accessLog: os.Stdout}
	for _, fn := range opts {
		fn(&o)
	}

	s := &Server{
		auth:       svc.Auth,
		profile:    svc.Profile,
		media:      svc.Media,
		production: cfg.Production,
		sessionTTL: cfg.SessionTTL,
		log:        log.With("module", "http"),
	}

	s.app = fiber.New(fiber.Config{
		AppName:               "StreamForge",
		DisableStartupMessage: true,
		BodyLimit:             BodyLimit,
		ErrorHandler:          errorHandler(s.log),
	})

	s.app.Use(recover.New())
	s.app.Use(helmet.New())
	origin := strings.TrimRight(cfg.FrontendURL, "/")
	if origin == "" {
		origin = "http://localhost:5173"
	}
	s.app.Use(cors.New(cors.Config{
		AllowOrigins:     origin,
		AllowCredentials: true,
	}))
	s.app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${method} ${url} ${status} - ${latency}\n",
		TimeFormat: time.RFC3339,
		Output:     o.accessLog,
	}))

	s.routes()
	return s
}

func (s *Server) routes() {
	s.app.Get("/", s.health)

	authRoutes := s.app.Group("/api/auth")
	authRoutes.Post("/register", s.register)
	authRoutes.Post("/login", s.login)
	authRoutes.Post("/verify-otp", s.verifyOTP)
	authRoutes.Post("/logout", s.logout)
	authRoutes.Post("/forgot-password", s.forgotPassword)
	authRoutes.Post("/reset-password", s.resetPassword)

	requireUser := AuthMiddleware(s.auth)

	users := s.app.Group("/api/users", requireUser)
	users.Get("/me", s.getProfile)
	users.Put("/me", s.updateProfile)
	users.Put("/change-password", s.changePassword)
	users.Delete("/me", s.deleteAccount)

	media := s.app.Group("/media", requireUser)
	media.Post("/upload", s.uploadMedia)
	media.Get("/history", s.mediaHistory)
}

// App exposes the Fiber app, mainly for app.Test.
func (s *Server) App() *fiber.App { return s.app }

func (s *Server) Listen(addr string) error {
	s.log.Info(context.Background(), "http server listening", "addr", addr)
	return s.app.Listen(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

func (s *Server) setSessionCookie(c *fiber.Ctx, token string) {
	c.Cookie(&fiber.Cookie{
		Name:     common.SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(s.sessionTTL / time.Second),
		HTTPOnly: true,
		Secure:   s.production,
		SameSite: fiber.CookieSameSiteStrictMode,
	})
}

func (s *Server) clearSessionCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     common.SessionCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		HTTPOnly: true,
		Secure:   s.production,
		SameSite: fiber.CookieSameSiteStrictMode,
	})
}
