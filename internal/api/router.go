package api

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	iauth "github.com/hindusthan/agriserve/internal/auth"
	"github.com/hindusthan/agriserve/internal/handlers"
	"github.com/hindusthan/agriserve/internal/middleware"
	"github.com/hindusthan/agriserve/internal/services"
)

// Services bundles the constructed service layer handed to the router.
type Services struct {
	Auth      *services.AuthService
	Users     *services.UserService
	Customers *services.CustomerService
}

// NewRouter builds the Gin engine, wires middleware and registers all routes.
func NewRouter(db *gorm.DB, jwt *iauth.JWTService, svcs Services) (*gin.Engine, error) {
	if db == nil {
		return nil, fmt.Errorf("database handle must be provided")
	}
	if jwt == nil {
		return nil, fmt.Errorf("jwt service must be provided")
	}
	if svcs.Auth == nil || svcs.Users == nil || svcs.Customers == nil {
		return nil, fmt.Errorf("all services must be provided")
	}

	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.Metrics())
	r.Use(middleware.CORS())

	// Health endpoint (public)
	r.GET("/health", handlers.Health(db))

	authHandler := handlers.NewAuthHandler(svcs.Auth)
	userHandler := handlers.NewUserHandler(svcs.Users)
	customerHandler := handlers.NewCustomerHandler(svcs.Customers)

	v1 := r.Group("/api/v1")

	// Public auth routes
	users := v1.Group("/users")
	{
		users.POST("/signup", authHandler.Signup)
		users.POST("/verify-otp", authHandler.VerifyOTP)
		users.POST("/resend-otp", authHandler.ResendOTP)
		users.POST("/login", authHandler.Login)
		users.POST("/login-with-google", authHandler.GoogleLogin)
	}

	// Protected routes
	requireAuth := middleware.Auth(jwt)

	usersAPI := v1.Group("/users", requireAuth)
	{
		usersAPI.GET("", userHandler.List)
		usersAPI.GET("/:id", userHandler.Get)
		usersAPI.PATCH("/:id", userHandler.Update)
		usersAPI.DELETE("/:id", userHandler.Delete)
	}

	customers := v1.Group("/customers", requireAuth)
	{
		customers.GET("", customerHandler.List)
		customers.GET("/:id", customerHandler.Get)
		customers.POST("", customerHandler.Create)
		customers.PATCH("/:id", customerHandler.Update)
		customers.DELETE("/:id", customerHandler.Delete)
	}

	// Metrics endpoint
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// NotFound fallback
	r.NoRoute(middleware.NotFoundHandler)

	return r, nil
}
