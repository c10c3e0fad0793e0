package app

import (
	"context"
	"log/slog"

	httpapp "hondenweiden/internal/app/http"
	"hondenweiden/internal/config"
	"hondenweiden/internal/lib/logger/sl"
	"hondenweiden/internal/repository"
	authservice "hondenweiden/internal/services/auth_service"
	imageservice "hondenweiden/internal/services/image_service"
	pastureservice "hondenweiden/internal/services/pasture_service"
	tokenservice "hondenweiden/internal/services/token_service"
	filestorage "hondenweiden/internal/storage/filestorage"
	redisapp "hondenweiden/internal/storage/redis"
	httprouters "hondenweiden/internal/transport/http"
)

type App struct {
	log        *slog.Logger
	HTTPServer *httpapp.Server
	repo       *repository.Repository
	redis      *redisapp.Client
}

func New(log *slog.Logger, cfg *config.Config) *App {
	repo, err := repository.NewRepository(context.Background(), cfg.DSN)
	if err != nil {
		panic(err)
	}

	redisClient := redisapp.NewClient(cfg.Redis.RedisAddr, cfg.Redis.RedisPassword, cfg.Redis.RedisDB)

	baseURL := cfg.FileStorage.BaseURL
	if baseURL == "" {
		baseURL = "/pictures"
	}

	imageStorage, err := filestorage.NewLocalImageStorage(cfg.FileStorage.BaseDir, baseURL)
	if err != nil {
		panic(err)
	}

	tokenRepo := repository.NewRedisTokenRepo(redisClient)
	tokenService := tokenservice.NewTokenService(tokenRepo, cfg.Admin.TokenSecret)
	authService := authservice.NewAuthService(log, tokenService, cfg.Admin.PasswordHash)
	pastureService := pastureservice.NewPastureService(log, repo.Pasture, imageStorage)
	imageService := imageservice.NewImageService(log, repo.Pasture, imageStorage, cfg.FileStorage.MaxSize)

	routers := httprouters.NewRouter(log, pastureService, imageService, authService)

	server := httpapp.New(
		log,
		cfg.Admin.SessionSecret,
		tokenService,
		cfg.HTTP.Host,
		cfg.HTTP.Port,
		imageStorage.GetBaseDir(),
		routers,
	)

	return &App{
		log:        log,
		HTTPServer: server,
		repo:       repo,
		redis:      redisClient,
	}
}

func (a *App) Stop() {
	if err := a.HTTPServer.Stop(); err != nil {
		a.log.Error("failed to stop http server", sl.Err(err))
	}

	a.repo.Close()

	if err := a.redis.Close(); err != nil {
		a.log.Error("failed to close redis client", sl.Err(err))
	}
}
