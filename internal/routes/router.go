package routes

import (
	"taskman/internal/controller"
	"taskman/internal/middleware"
	"taskman/internal/ratelimit"

	"github.com/gin-gonic/gin"
)

// Router wires the HTTP surface: public auth endpoints behind the strict
// login rate limiter, task CRUD behind the general API limiter and bearer
// auth.
func Router(tasks *controller.TaskController, auth *controller.AuthController, loginLimiter, apiLimiter ratelimit.Limiter) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	// Health for load balancers and K8s probes
	router.GET("/health", controller.Health)
	router.GET("/ready", controller.Ready)

	authGroup := router.Group("/auth")
	authGroup.Use(middleware.RateLimit(loginLimiter, "Too many login attempts. Please try again later."))
	{
		authGroup.POST("/register", auth.Register)
		authGroup.POST("/login", auth.Login)
	}

	api := router.Group("")
	api.Use(middleware.RateLimit(apiLimiter, "Too many requests. Please try again later."))
	api.Use(middleware.AuthMiddleware())
	{
		api.GET("/tasks", tasks.List)
		api.POST("/tasks", tasks.Create)
		api.PUT("/tasks/:id", tasks.Update)
		api.PATCH("/tasks/:id/complete", tasks.ToggleComplete)
		api.DELETE("/tasks/:id", tasks.Delete)
	}

	return router
}
