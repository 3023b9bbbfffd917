package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/agrovex/campoflow/internal/domain/models"
	"github.com/agrovex/campoflow/internal/server/handlers"
	"github.com/agrovex/campoflow/internal/service/auth"
)

// Handlers bundles every HTTP handler the router mounts.
type Handlers struct {
	Auth       *handlers.AuthHandler
	Fumigation *handlers.FumigationHandler
	Stock      *handlers.StockHandler
	Field      *handlers.FieldHandler
	Warehouse  *handlers.WarehouseHandler
	User       *handlers.UserHandler
	Report     *handlers.ReportHandler
}

// New wires the Gin engine with required routes and middlewares.
func New(h Handlers, authSvc *auth.Service, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(zapLoggerMiddleware(logger))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	r.POST("/api/auth/login", h.Auth.Login)
	r.POST("/api/auth/register", h.Auth.Register)

	api := r.Group("/api", handlers.RequireSession(authSvc))

	api.POST("/auth/logout", h.Auth.Logout)
	api.POST("/users/:id/password", h.Auth.ChangePassword)

	fumigations := api.Group("/fumigations")
	fumigations.GET("", h.Fumigation.List)
	fumigations.GET("/upcoming", h.Fumigation.Upcoming)
	fumigations.GET("/statistics", h.Fumigation.Statistics)
	fumigations.GET("/:id", h.Fumigation.Get)
	fumigations.POST("", handlers.RequireCapability(models.CapManageFumigations), h.Fumigation.Create)
	fumigations.PATCH("/:id", handlers.RequireCapability(models.CapManageFumigations), h.Fumigation.Update)
	fumigations.DELETE("/:id", handlers.RequireCapability(models.CapManageFumigations), h.Fumigation.Delete)
	fumigations.POST("/:id/status", handlers.RequireCapability(models.CapApplyFumigations), h.Fumigation.ChangeStatus)

	stock := api.Group("/stock")
	stock.GET("", h.Stock.List)
	stock.GET("/summary", h.Stock.Summary)
	stock.GET("/:id", h.Stock.Get)
	stock.POST("", handlers.RequireCapability(models.CapManageStock), h.Stock.Create)
	stock.PATCH("/:id", handlers.RequireCapability(models.CapManageStock), h.Stock.Update)
	stock.DELETE("/:id", handlers.RequireCapability(models.CapManageStock), h.Stock.Delete)
	stock.POST("/:id/transfer", handlers.RequireCapability(models.CapManageStock), h.Stock.Transfer)

	fields := api.Group("/fields")
	fields.GET("", h.Field.List)
	fields.GET("/:id", h.Field.Get)
	fields.POST("", handlers.RequireCapability(models.CapManageFields), h.Field.Create)
	fields.PATCH("/:id", handlers.RequireCapability(models.CapManageFields), h.Field.Update)
	fields.DELETE("/:id", handlers.RequireCapability(models.CapManageFields), h.Field.Delete)

	warehouses := api.Group("/warehouses")
	warehouses.GET("", h.Warehouse.List)
	warehouses.GET("/:id", h.Warehouse.Get)
	warehouses.POST("", handlers.RequireCapability(models.CapManageWarehouses), h.Warehouse.Create)
	warehouses.PATCH("/:id", handlers.RequireCapability(models.CapManageWarehouses), h.Warehouse.Update)
	warehouses.DELETE("/:id", handlers.RequireCapability(models.CapManageWarehouses), h.Warehouse.Delete)

	users := api.Group("/users")
	users.GET("", h.User.List)
	users.GET("/:id", h.User.Get)
	users.POST("", handlers.RequireCapability(models.CapCreateUser), h.User.Create)
	users.PATCH("/:id", handlers.RequireCapability(models.CapManageUsers), h.User.Update)
	users.DELETE("/:id", handlers.RequireCapability(models.CapManageUsers), h.User.Delete)

	api.POST("/reports/export", handlers.RequireCapability(models.CapViewReports), h.Report.Export)

	if logger != nil {
		logger.Info("router initialized")
	}

	return r
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()))
	}
}
