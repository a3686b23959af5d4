package routes

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kassahq/terminal-api/internal/config"
	domainRepo "github.com/kassahq/terminal-api/internal/domain/repository"
	"github.com/kassahq/terminal-api/internal/presentation/http/handler"
	"github.com/kassahq/terminal-api/internal/presentation/http/middleware"
)

// Handlers holds all the HTTP handlers used for route registration.
type Handlers struct {
	Product  *handler.ProductHandler
	Cart     *handler.CartHandler
	Checkout *handler.CheckoutHandler
	Sales    *handler.SalesHandler
	Printer  *handler.PrinterHandler
}

// Deps holds shared dependencies needed by the routes.
type Deps struct {
	Cfg             *config.Config
	IdempotencyRepo domainRepo.IdempotencyRepository
}

// Setup creates the Gin router and registers all routes.
func Setup(h *Handlers, deps *Deps) *gin.Engine {
	router := gin.New()

	// Global middleware
	router.Use(gin.Recovery())
	router.Use(middleware.LoggerMiddleware())
	router.Use(middleware.CORSMiddleware(&deps.Cfg.CORS))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":   "ok",
			"service":  deps.Cfg.App.Name,
			"register": deps.Cfg.App.RegisterID,
		})
	})

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		rateLimiter := middleware.NewClientRateLimiter(middleware.RateLimiterConfig{
			RequestsPerSecond: float64(deps.Cfg.RateLimit.Requests) / float64(deps.Cfg.RateLimit.Duration),
			BurstSize:         deps.Cfg.RateLimit.Requests,
			CleanupInterval:   5 * time.Minute,
			EntryTTL:          10 * time.Minute,
		})
		v1.Use(rateLimiter.Middleware())

		registerProductRoutes(v1, h)
		registerCartRoutes(v1, h)
		registerCheckoutRoutes(v1, h, deps)
		registerSalesRoutes(v1, h)
		registerPrinterRoutes(v1, h)
	}

	return router
}

func registerProductRoutes(v1 *gin.RouterGroup, h *Handlers) {
	products := v1.Group("/products")
	{
		products.GET("", h.Product.List)
		products.POST("/refresh", h.Product.Refresh)
		products.GET("/code/:code", h.Product.GetByCode)
	}
}

func registerCartRoutes(v1 *gin.RouterGroup, h *Handlers) {
	cart := v1.Group("/cart")
	{
		cart.GET("", h.Cart.Get)
		cart.DELETE("", h.Cart.Clear)
		cart.POST("/items", h.Cart.AddItem)
		cart.PUT("/items/:product_id", h.Cart.SetQuantity)
		cart.DELETE("/items/:product_id", h.Cart.RemoveItem)
		cart.POST("/items/:product_id/negotiate", h.Cart.Negotiate)
		cart.DELETE("/items/:product_id/negotiate", h.Cart.ClearNegotiate)
		cart.POST("/return-mode", h.Cart.ToggleReturnMode)
		cart.POST("/customer", h.Cart.SetCustomer)
		cart.POST("/suspend", h.Cart.Suspend)
	}

	suspended := v1.Group("/suspended")
	{
		suspended.GET("", h.Cart.ListSuspended)
		suspended.POST("/:id/resume", h.Cart.Resume)
	}
}

func registerCheckoutRoutes(v1 *gin.RouterGroup, h *Handlers, deps *Deps) {
	// Checkout uses idempotency middleware so a UI retry cannot ring a sale
	// twice
	v1.POST("/checkout", middleware.IdempotencyRequired(middleware.IdempotencyConfig{
		Repo: deps.IdempotencyRepo,
	}), h.Checkout.Checkout)
}

func registerSalesRoutes(v1 *gin.RouterGroup, h *Handlers) {
	sales := v1.Group("/sales")
	{
		sales.GET("/pending", h.Sales.ListPending)
		sales.POST("/sync", h.Sales.Sync)
		sales.GET("/status", h.Sales.Status)
		sales.POST("/forced-offline", h.Sales.SetForcedOffline)
	}
}

func registerPrinterRoutes(v1 *gin.RouterGroup, h *Handlers) {
	printerGroup := v1.Group("/printer")
	{
		printerGroup.GET("/status", h.Printer.GetStatus)
		printerGroup.POST("/test", h.Printer.TestPrint)
	}
}
