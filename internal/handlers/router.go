package handlers

import (
	"net/http"

	"quizgen/internal/config"
	"quizgen/internal/middleware"
	"quizgen/internal/observability"
	"quizgen/internal/services"
	"quizgen/internal/version"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/secure"
	"github.com/gin-gonic/gin"
)

// NewRouter builds the gin engine with all middleware and routes wired.
func NewRouter(
	cfg *config.Config,
	userService services.UserServiceInterface,
	quizService services.QuizServiceInterface,
	resultService services.ResultServiceInterface,
	feedbackService services.FeedbackServiceInterface,
	logger *observability.Logger,
) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	if cfg.Server.Debug {
		gin.SetMode(gin.DebugMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.RedirectTrailingSlash = false

	// Health check endpoint (defined before any middleware)
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "quizgen"})
	})

	router.Use(observability.GinMiddleware("quizgen"))
	router.Use(observability.GinErrorAttributes())

	corsConfig := cors.DefaultConfig()
	if len(cfg.Server.CORSOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.Server.CORSOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "X-Requested-With"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	secureConfig := secure.DefaultConfig()
	secureConfig.SSLRedirect = false
	router.Use(secure.New(secureConfig))

	authHandler := NewAuthHandler(userService, cfg, logger)
	quizHandler := NewQuizHandler(quizService, resultService, feedbackService, logger)

	v1 := router.Group("/v1")
	{
		v1.GET("/version", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"service":   "quizgen",
				"version":   version.Version,
				"commit":    version.Commit,
				"buildTime": version.BuildTime,
			})
		})

		auth := v1.Group("/auth")
		{
			auth.POST("/signup", authHandler.Signup)
			auth.POST("/login", authHandler.Login)
		}

		quiz := v1.Group("/quiz")
		quiz.Use(middleware.RequireAuth(&cfg.Auth, logger))
		{
			quiz.POST("/generate", quizHandler.GenerateQuiz)
			quiz.GET("/get/:quizId", quizHandler.GetQuiz)
			quiz.POST("/submit", quizHandler.SubmitQuiz)
			quiz.GET("/hint", quizHandler.GetHint)
			quiz.GET("/history", quizHandler.GetHistory)
		}
	}

	return router
}
