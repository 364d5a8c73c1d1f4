package routes

import (
	"github.com/WadsonGarbes/formaplus-api/internal/handlers"
	"github.com/WadsonGarbes/formaplus-api/internal/middleware"
	"github.com/WadsonGarbes/formaplus-api/internal/services"
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(rg *gin.RouterGroup,
	tokens *handlers.TokenHandler,
	users *handlers.UserHandler,
	questions *handlers.QuestionHandler,
	auth *services.Auth) {

	// public routes
	rg.POST("/users", users.Register)
	rg.POST("/tokens", middleware.BasicAuth(auth), tokens.New)
	rg.PUT("/tokens", tokens.Refresh)
	rg.DELETE("/tokens", tokens.Revoke)
	rg.POST("/tokens/reset", tokens.ResetRequest)
	rg.PUT("/tokens/reset", tokens.ResetPassword)

	// private routes
	protected := rg.Group("/")
	protected.Use(middleware.BearerAuth(auth))

	protected.GET("/users", users.List)
	protected.GET("/users/:id", users.Get)
	protected.GET("/users/:id/questions", users.Questions)
	protected.GET("/me", users.Me)
	protected.PUT("/me", users.UpdateMe)

	protected.POST("/questions", questions.Create)
	protected.GET("/questions", questions.List)
	protected.GET("/questions/:id", questions.Get)
	protected.PUT("/questions/:id", questions.Update)
	protected.DELETE("/questions/:id", questions.Delete)
}
