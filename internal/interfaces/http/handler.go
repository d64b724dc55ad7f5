package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const maxRequestBytes = 1 << 20

// SetupRoutes mounts the admin API and the dashboard on r.
func SetupRoutes(r *gin.Engine, admin *AdminHandler, dashboard *DashboardHandler, middleware *Middleware) error {
	tmpl, err := LoadTemplates()
	if err != nil {
		return err
	}
	r.SetHTMLTemplate(tmpl)

	r.Use(middleware.RequestLogger())
	r.Use(SecurityHeaders())
	r.Use(RequestSizeLimiter(maxRequestBytes))
	r.Use(middleware.CORSMiddleware())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusFound, "/login")
	})

	// Admin API
	api := r.Group("/")
	api.Use(middleware.RateLimitPerIP())
	{
		api.GET("/users", admin.GetUsers)
		api.POST("/broadcast", admin.Broadcast)
	}

	// Dashboard UI
	r.GET("/login", dashboard.Login)
	r.GET("/dashboard", dashboard.Dashboard)
	r.GET("/bot/qr", dashboard.BotQR)
	return nil
}
