package app

import (
	"log/slog"

	"github.com/WadsonGarbes/formaplus-api/internal/config"
	"github.com/WadsonGarbes/formaplus-api/internal/cron"
	"github.com/WadsonGarbes/formaplus-api/internal/email"
	"github.com/WadsonGarbes/formaplus-api/internal/handlers"
	"github.com/WadsonGarbes/formaplus-api/internal/middleware"
	"github.com/WadsonGarbes/formaplus-api/internal/repo"
	"github.com/WadsonGarbes/formaplus-api/internal/routes"
	"github.com/WadsonGarbes/formaplus-api/internal/services"
	"github.com/WadsonGarbes/formaplus-api/internal/storage"
	"github.com/gin-gonic/gin"
)

func NewApp(cfg *config.Config) (*gin.Engine, error) {
	logger := slog.Default()

	database, err := storage.InitDB(cfg.DB)
	if err != nil {
		return nil, err
	}

	repository := repo.NewRepository(database)
	emailClient := email.NewSMTPClient(cfg.SMTP)

	authService := services.NewAuth(logger, repository, emailClient, services.AuthConfig{
		Secret:           cfg.Secret,
		AccessTokenTTL:   cfg.AccessTokenTTL,
		RefreshTokenTTL:  cfg.RefreshTokenTTL,
		ResetTokenTTL:    cfg.ResetTokenTTL,
		PasswordResetURL: cfg.PasswordResetURL,
	})
	userService := services.NewUsers(logger, repository)
	questionService := services.NewQuestions(logger, repository)

	tokenHandler := handlers.NewTokenHandler(authService, cfg)
	userHandler := handlers.NewUserHandler(userService, questionService)
	questionHandler := handlers.NewQuestionHandler(questionService)

	cron.StartCronJobs(logger, authService)

	if !cfg.Debug() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()
	r.Use(middleware.RequestID())

	api := r.Group("/")
	routes.RegisterRoutes(api, tokenHandler, userHandler, questionHandler, authService)

	return r, nil
}
