package http

import (
	"context"
	"net/http"
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sujalbistaa/bookit/internal/models"
)

const limiterCleanupInterval = 10 * time.Minute

type Options struct {
	CORSOrigins    []string
	AuthRateLimit  int
	AuthRateWindow time.Duration
}

// corsConfig allows credentials only for an explicit origin list; browsers
// refuse a credentialed response that carries Access-Control-Allow-Origin: *.
func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", requestIDHeader},
		ExposeHeaders: []string{"Content-Length", requestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
		cfg.AllowCredentials = true
	}
	return cfg
}

// SetupRoutes configures all application routes and middleware. The rate
// limiter cleanup goroutine stops when ctx is done.
func SetupRoutes(ctx context.Context, router *gin.Engine, env *Env, opts Options) {
	useJSONFieldNames()

	router.Use(RecoveryMiddleware())
	router.Use(LoggingMiddleware(env.Log))
	router.Use(MetricsMiddleware())
	router.Use(SecurityHeadersMiddleware())
	router.Use(cors.New(corsConfig(opts.CORSOrigins)))

	limiter := NewIPRateLimiter(opts.AuthRateLimit, opts.AuthRateWindow)
	go limiter.RunCleanup(ctx, limiterCleanupInterval)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.NoRoute(func(c *gin.Context) {
		abortWith(c, http.StatusNotFound, "Route not found", nil)
	})

	authed := AuthMiddleware(env.Auth)
	viewer := OptionalAuthMiddleware(env.Auth)
	admin := AdminMiddleware()

	api := router.Group("/api")
	api.GET("/health", env.Health)

	authRoutes := api.Group("/auth")
	{
		authRoutes.POST("/register", RateLimitMiddleware(limiter), env.Register)
		authRoutes.POST("/login", RateLimitMiddleware(limiter), env.Login)
		authRoutes.GET("/me", authed, env.Me)
		authRoutes.POST("/logout", authed, env.Logout)
	}

	userRoutes := api.Group("/users")
	{
		userRoutes.GET("/me/saved", authed, env.SavedPosts)
		userRoutes.PUT("/me", authed, env.UpdateProfile)
		userRoutes.GET("/:id", viewer, env.GetProfile)
		userRoutes.GET("/:id/posts", env.UserPosts)
		userRoutes.GET("/:id/reviews", env.UserReviews)
		userRoutes.GET("/:id/products", env.UserProducts)
		userRoutes.POST("/:id/follow", authed, env.Follow)
		userRoutes.POST("/:id/unfollow", authed, env.Unfollow)
		userRoutes.POST("/:id/report", authed, env.fileReport(models.KindUser))
	}

	postRoutes := api.Group("/posts")
	{
		postRoutes.GET("", env.ListPosts)
		postRoutes.GET("/:id", viewer, env.GetPost)
		postRoutes.POST("", authed, env.CreatePost)
		postRoutes.PUT("/:id", authed, env.UpdatePost)
		postRoutes.DELETE("/:id", authed, env.DeletePost)
		postRoutes.POST("/:id/like", authed, env.like(models.KindPost, true))
		postRoutes.POST("/:id/unlike", authed, env.like(models.KindPost, false))
		postRoutes.POST("/:id/save", authed, env.SavePost)
		postRoutes.POST("/:id/unsave", authed, env.UnsavePost)
		postRoutes.POST("/:id/report", authed, env.fileReport(models.KindPost))
	}

	reviewRoutes := api.Group("/reviews")
	{
		reviewRoutes.GET("", env.ListReviews)
		reviewRoutes.GET("/:id", viewer, env.GetReview)
		reviewRoutes.POST("", authed, env.CreateReview)
		reviewRoutes.PUT("/:id", authed, env.UpdateReview)
		reviewRoutes.DELETE("/:id", authed, env.DeleteReview)
		reviewRoutes.POST("/:id/like", authed, env.like(models.KindReview, true))
		reviewRoutes.POST("/:id/unlike", authed, env.like(models.KindReview, false))
		reviewRoutes.POST("/:id/report", authed, env.fileReport(models.KindReview))
	}

	commentRoutes := api.Group("/comments")
	{
		commentRoutes.GET("", env.ListComments)
		commentRoutes.POST("", authed, env.CreateComment)
		commentRoutes.PUT("/:id", authed, env.UpdateComment)
		commentRoutes.DELETE("/:id", authed, env.DeleteComment)
		commentRoutes.POST("/:id/like", authed, env.like(models.KindComment, true))
		commentRoutes.POST("/:id/unlike", authed, env.like(models.KindComment, false))
		commentRoutes.POST("/:id/report", authed, env.fileReport(models.KindComment))
	}

	productRoutes := api.Group("/products")
	{
		productRoutes.GET("", env.ListProducts)
		productRoutes.GET("/:id", env.GetProduct)
		productRoutes.POST("", authed, env.CreateProduct)
		productRoutes.PUT("/:id", authed, env.UpdateProduct)
		productRoutes.DELETE("/:id", authed, env.DeleteProduct)
		productRoutes.POST("/:id/reviews", authed, env.ReviewProduct)
		productRoutes.POST("/:id/report", authed, env.fileReport(models.KindProduct))
	}

	orderRoutes := api.Group("/orders", authed)
	{
		orderRoutes.POST("", env.PlaceOrder)
		orderRoutes.GET("/my", env.MyOrders)
		orderRoutes.GET("/seller", env.SellerOrders)
		orderRoutes.PUT("/:id/status", env.UpdateOrderStatus)
	}

	reportRoutes := api.Group("/reports", authed, admin)
	{
		reportRoutes.GET("", env.ListReports)
		reportRoutes.PUT("/:id/resolve", env.ResolveReport)
	}

	adminRoutes := api.Group("/admin", authed, admin)
	{
		adminRoutes.GET("/users", env.ListUsers)
		adminRoutes.PUT("/users/:id/ban", env.ToggleBan)
		adminRoutes.GET("/analytics", env.AnalyticsDashboard)
		adminRoutes.DELETE("/posts/:id", env.DeletePost)
		adminRoutes.DELETE("/reviews/:id", env.DeleteReview)
		adminRoutes.DELETE("/comments/:id", env.PurgeComment)
		adminRoutes.DELETE("/products/:id", env.DeleteProduct)
	}
}
