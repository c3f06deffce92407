package handler

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"roamstay/pkg/logger"
	"roamstay/pkg/metrics"
)

// SetupRoutes настраивает все маршруты приложения с использованием Gin
// Чтение объявлений публичное, любая мутация требует аутентификации
func SetupRoutes(
	authHandler *AuthHandler,
	listingHandler *ListingHandler,
	commentHandler *CommentHandler,
	reviewHandler *ReviewHandler,
	userHandler *UserHandler,
	authMiddleware *AuthMiddleware,
) *gin.Engine {
	router := gin.New()

	// Recovery middleware для обработки panic
	router.Use(gin.Recovery())

	// JSON logging middleware для HTTP-запросов (ELK Stack)
	router.Use(logger.GinLoggerMiddleware())

	// Prometheus metrics middleware
	router.Use(metrics.GinPrometheusMiddleware("listings-service"))

	// CORS настройки
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"https://*", "http://*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposeHeaders:    []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": "listings-service",
		})
	})

	// Prometheus metrics endpoint
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Публичные эндпоинты аутентификации
	auth := router.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.Refresh)
		auth.POST("/forgot", authHandler.ForgotPassword)
		auth.POST("/reset/:token", authHandler.ResetPassword)

		// Защищенные эндпоинты (требуют аутентификации)
		protected := auth.Group("")
		protected.Use(authMiddleware.Authenticate())
		{
			protected.POST("/logout", authHandler.Logout)
		}
	}

	listings := router.Group("/listings")
	{
		// Чтение доступно без аутентификации
		listings.GET("", listingHandler.ListListings)
		listings.GET("/:listing_id", listingHandler.GetListing)
		listings.GET("/:listing_id/reviews", reviewHandler.ListReviews)

		protected := listings.Group("")
		protected.Use(authMiddleware.Authenticate())
		{
			protected.POST("", listingHandler.CreateListing)
			protected.PUT("/:listing_id", listingHandler.UpdateListing)
			protected.DELETE("/:listing_id", listingHandler.DeleteListing)
			protected.POST("/:listing_id/like", listingHandler.ToggleLike)

			protected.POST("/:listing_id/comments", commentHandler.CreateComment)
			protected.POST("/:listing_id/reviews", reviewHandler.CreateReview)
		}
	}

	comments := router.Group("/comments")
	comments.Use(authMiddleware.Authenticate())
	{
		comments.PATCH("/:comment_id", commentHandler.UpdateComment)
		comments.DELETE("/:comment_id", commentHandler.DeleteComment)
	}

	reviews := router.Group("/reviews")
	reviews.Use(authMiddleware.Authenticate())
	{
		reviews.PATCH("/:review_id", reviewHandler.UpdateReview)
		reviews.DELETE("/:review_id", reviewHandler.DeleteReview)
	}

	users := router.Group("/users")
	{
		users.GET("/:user_id", userHandler.GetProfile)
	}

	return router
}
