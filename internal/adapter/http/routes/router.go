package routes

import (
	"log"
	"net/http"
	"strings"
	"time"

	_ "booking_reconciliation/docs"
	"booking_reconciliation/internal/adapter/http/handlers"
	"booking_reconciliation/internal/usecase"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

const (
	PathBookings = "/bookings"
	PathWebhooks = "/webhooks"
)

// Dependencies are the collaborators the HTTP surface needs.
type Dependencies struct {
	UseCase            usecase.IReconciliationUseCase
	Store              handlers.Pinger
	CORSAllowedOrigins []string
}

// NewRouter builds the gin engine with middlewares, swagger and the /v1 routes.
func NewRouter(deps Dependencies) *gin.Engine {
	router := gin.New()
	setMiddlewares(router, deps.CORSAllowedOrigins)

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	bookingHandler := handlers.NewBookingHandler(deps.UseCase)
	webhookHandler := handlers.NewWebhookHandler(deps.UseCase)
	healthHandler := handlers.NewHealthHandler(deps.Store)

	v1 := router.Group("/v1")
	addHealthRoutes(v1, healthHandler)
	addBookingRoutes(v1, bookingHandler)
	addWebhookRoutes(v1, webhookHandler)
	return router
}

func addHealthRoutes(rg *gin.RouterGroup, h *handlers.HealthHandler) {
	rg.GET("/ping", h.Ping)
	rg.GET("/health", h.Health)
}

func addBookingRoutes(rg *gin.RouterGroup, h *handlers.BookingHandler) {
	bookings := rg.Group(PathBookings)
	{
		// client redirect after checkout
		bookings.POST("/reconcile", h.Reconcile)
		bookings.GET("/:id", h.GetBooking)
	}
}

func addWebhookRoutes(rg *gin.RouterGroup, h *handlers.WebhookHandler) {
	webhooks := rg.Group(PathWebhooks)
	{
		webhooks.POST("/mercadopago", h.MercadoPago)
	}
}

func setMiddlewares(router *gin.Engine, origins []string) {
	router.Use(gin.Logger())
	router.Use(gin.CustomRecovery(func(c *gin.Context, recovered any) {
		log.Printf("[http][router] recovered from panic: %v", recovered)
		c.AbortWithStatus(http.StatusInternalServerError)
	}))
	router.Use(cors.New(corsConfig(origins)))
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization"},
		MaxAge:       12 * time.Hour,
	}
	var allowed []string
	for _, o := range origins {
		o = strings.TrimSpace(o)
		if o == "*" {
			cfg.AllowAllOrigins = true
			return cfg
		}
		if o != "" {
			allowed = append(allowed, o)
		}
	}
	if len(allowed) == 0 {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = allowed
	return cfg
}
