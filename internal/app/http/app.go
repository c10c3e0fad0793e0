package httpapp

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	appmiddleware "hondenweiden/internal/middleware"
	authsvc "hondenweiden/internal/services/auth_service"
	httprouters "hondenweiden/internal/transport/http"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type CustomValidator struct {
	validator *validator.Validate
}

func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

// TokenVerifier checks a bearer token and returns its subject.
type TokenVerifier interface {
	VerifyToken(tokenString string) (string, error)
}

type Server struct {
	log         *slog.Logger
	e           *echo.Echo
	routers     *httprouters.Routers
	verifier    TokenVerifier
	host        string
	port        string
	picturesDir string
}

func New(log *slog.Logger, sessionSecret string, verifier TokenVerifier, host, port, picturesDir string, routers *httprouters.Routers) *Server {
	e := echo.New()
	e.HideBanner = true

	validate := validator.New()
	e.Validator = &CustomValidator{validator: validate}

	e.Use(session.Middleware(sessions.NewCookieStore([]byte(sessionSecret))))

	e.Use(middleware.CORS())
	e.Use(middleware.Recover())
	e.Use(appmiddleware.PrometheusMetrics)

	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:      true,
		LogStatus:   true,
		LogRemoteIP: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			log.Info("request",
				slog.String("URI", v.URI),
				slog.Int("status", v.Status),
				slog.String("remote ip", v.RemoteIP),
			)

			return nil
		},
	}))

	return &Server{
		log:         log,
		e:           e,
		routers:     routers,
		verifier:    verifier,
		host:        host,
		port:        port,
		picturesDir: picturesDir,
	}
}

func (s *Server) MustRun() {
	const op = "http.Server.MustRun"

	s.log.Info(op, slog.String("Start", "server"))

	if err := s.Start(); err != nil {
		panic(err)
	}
}

func (s *Server) Start() error {
	const op = "http.Server.Start"

	if err := s.e.Start(fmt.Sprintf(":%s", s.port)); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("%s server stopped: %w", op, err)
	}

	return nil
}

func (s *Server) Stop() error {
	const op = "http.Server.Stop"

	optCtx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()

	s.log.Info("stopping", op, "http server")

	if err := s.e.Shutdown(optCtx); err != nil {
		return fmt.Errorf("%s could not shutdown server gracefuly: %w", op, err)
	}

	return nil
}

// adminOnlyMiddleware admits an established session or a valid bearer token.
func (s *Server) adminOnlyMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if sess, err := session.Get("session", c); err == nil {
			if subject, ok := sess.Values["subject"].(string); ok && subject == authsvc.AdminSubject {
				return next(c)
			}
		}

		auth := c.Request().Header.Get(echo.HeaderAuthorization)
		if token, found := strings.CutPrefix(auth, "Bearer "); found {
			subject, err := s.verifier.VerifyToken(token)
			if err == nil && subject == authsvc.AdminSubject {
				return next(c)
			}
		}

		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "authentication required"})
	}
}

func (s *Server) BuildRouters() {
	s.e.Static("/pictures", s.picturesDir)
	s.e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := s.e.Group("/api/v1")
	{
		api.GET("/pastures", s.routers.ListPastures)
		api.GET("/pastures/:id", s.routers.GetPasture)
		api.GET("/images", s.routers.ListImages)

		adminAuth := api.Group("/admin")
		{
			adminAuth.POST("/login", s.routers.Login)
			adminAuth.POST("/refresh", s.routers.Refresh)
		}

		adminGroup := api.Group("", s.adminOnlyMiddleware)
		{
			adminGroup.POST("/admin/logout", s.routers.Logout)
			adminGroup.POST("/pastures", s.routers.CreatePasture)
			adminGroup.POST("/pastures/import", s.routers.ImportPastures)
			adminGroup.PUT("/pastures/:id", s.routers.UpdatePasture)
			adminGroup.DELETE("/pastures/:id", s.routers.DeletePasture)
			adminGroup.POST("/images/upload", s.routers.UploadImage)
			adminGroup.DELETE("/images/:folder", s.routers.DeleteImageFolder)
		}
	}
}
