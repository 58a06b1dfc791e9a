package router

import (
	"net/http"

	"github.com/destocard/backend/internal/infrastructure/logger"
	"github.com/destocard/backend/internal/interfaces/http/dto"
	"github.com/destocard/backend/internal/interfaces/http/handler"
	"github.com/destocard/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Routes with a body limit of their own
const (
	MediaUploadRoute = "/api/products/:id/media"
	WebcamRoute      = "/api/media/webcam"
	StripeRoute      = "/webhooks/stripe"
)

// MetricsExporter records request metrics and serves them to Prometheus
type MetricsExporter interface {
	middleware.RequestRecorder
	Handler() http.Handler
}

// Handlers bundles the handlers mounted by the engine
type Handlers struct {
	System  *handler.SystemHandler
	Auth    *handler.AuthHandler
	User    *handler.UserHandler
	Product *handler.ProductHandler
	Media   *handler.MediaHandler
	Catalog *handler.CatalogHandler
	Cart    *handler.CartHandler
	Order   *handler.OrderHandler
	Address *handler.AddressHandler
	Message *handler.MessageHandler
	Billing *handler.BillingHandler
}

// Config holds the middleware settings of the engine
type Config struct {
	Logger        *zap.Logger
	Authenticator middleware.Authenticator
	// Metrics may be nil, which disables /metrics and request metrics
	Metrics     MetricsExporter
	Tracing     middleware.TracingConfig
	Profiling   bool
	CORS        middleware.CORSConfig
	Security    middleware.SecurityConfig
	BodyLimit   middleware.BodyLimitConfig
	RateLimiter *middleware.RateLimiter
	CartSession middleware.CartSessionConfig
	// UploadDir is served under /uploads when set
	UploadDir string
}

// NewEngine builds the gin engine with the full middleware chain and every
// API route.
func NewEngine(cfg Config, h Handlers) *gin.Engine {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	engine := gin.New()
	engine.HandleMethodNotAllowed = true

	engine.Use(middleware.RequestID())
	engine.Use(middleware.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Tracing(cfg.Tracing)...)
	if cfg.Metrics != nil {
		engine.Use(middleware.HTTPMetrics(cfg.Metrics))
	}
	if cfg.Profiling {
		engine.Use(middleware.Profiling())
	}
	engine.Use(middleware.SecureWithConfig(cfg.Security))
	engine.Use(middleware.CORSWithConfig(cfg.CORS))
	engine.Use(middleware.BodyLimitWithConfig(cfg.BodyLimit))
	if cfg.RateLimiter != nil {
		engine.Use(middleware.RateLimit(cfg.RateLimiter, "/health", "/metrics", StripeRoute))
	}
	engine.Use(middleware.CartSession(cfg.CartSession))
	engine.Use(middleware.OptionalJWT(cfg.Authenticator))

	engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, dto.NewErrorResponseWithRequestID(
			dto.ErrCodeNotFound, "Route introuvable", middleware.GetRequestID(c)))
	})
	engine.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, dto.NewErrorResponseWithRequestID(
			dto.ErrCodeBadRequest, "Méthode non autorisée", middleware.GetRequestID(c)))
	})

	engine.GET("/health", h.System.Health)
	if cfg.Metrics != nil {
		engine.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}
	if cfg.UploadDir != "" {
		engine.Static("/uploads", cfg.UploadDir)
	}

	r := NewRouter(engine)
	r.Register(apiRoutes(h)).
		Register(catalogRoutes(h)).
		Register(webhookRoutes(h))
	r.Setup()
	return engine
}

func apiRoutes(h Handlers) *DomainGroup {
	api := NewDomainGroup("api", "/api")

	api.Group("auth", "/auth").
		POST("/register", h.Auth.Register).
		POST("/login", h.Auth.Login).
		POST("/refresh", h.Auth.Refresh).
		POST("/logout", middleware.RequireAuth(), h.Auth.Logout)

	api.Group("products", "/products").
		GET("", h.Product.List).
		GET("/:id", h.Product.Get).
		GET("/:id/media", h.Product.ListMedia).
		POST("", middleware.RequireAuth(), h.Product.Create).
		PUT("/:id", middleware.RequireAuth(), h.Product.Update).
		DELETE("/:id", middleware.RequireAuth(), h.Product.Delete).
		POST("/:id/archive", middleware.RequireAuth(), h.Product.Archive).
		POST("/:id/like", middleware.RequireAuth(), h.Product.ToggleLike).
		POST("/:id/media", middleware.RequireAuth(), h.Product.UploadMedia)

	api.GET("/cards", h.Catalog.SearchCards).
		GET("/card", h.Catalog.GetCard)

	api.Group("cart", "/cart").
		GET("", h.Cart.Get).
		DELETE("", h.Cart.Clear).
		GET("/count", h.Cart.Count).
		POST("/items", h.Cart.AddItem).
		PUT("/items/:productId", h.Cart.UpdateItem).
		DELETE("/items/:productId", h.Cart.RemoveItem).
		POST("/checkout", middleware.RequireAuth(), h.Cart.Checkout)

	api.Group("users", "/users").
		Use(middleware.RequireAuth()).
		GET("/me", h.User.Me).
		PUT("/me", h.User.UpdateMe).
		PUT("/me/password", h.User.ChangePassword).
		GET("/me/likes", h.User.Likes)

	api.Group("media", "/media").
		Use(middleware.RequireAuth()).
		POST("/webcam", h.Media.Webcam).
		DELETE("/:id", h.Media.Delete)

	api.Group("orders", "/orders").
		Use(middleware.RequireAuth()).
		GET("", h.Order.List).
		GET("/:id", h.Order.Get).
		GET("/:id/invoice", h.Order.Invoice)

	api.Group("addresses", "/addresses").
		Use(middleware.RequireAuth()).
		GET("", h.Address.List).
		POST("", h.Address.Create).
		GET("/:id", h.Address.Get).
		PUT("/:id", h.Address.Update).
		DELETE("/:id", h.Address.Delete).
		POST("/:id/default", h.Address.SetDefault)

	api.Group("messages", "/messages").
		Use(middleware.RequireAuth()).
		GET("", h.Message.Inbox).
		POST("", h.Message.Send).
		GET("/unread", h.Message.Unread).
		GET("/conversations/:userId", h.Message.Conversation).
		POST("/:id/read", h.Message.MarkRead)

	api.Group("billing", "/billing").
		Use(middleware.RequireAuth()).
		GET("/subscription", h.Billing.GetSubscription).
		POST("/subscription", h.Billing.Subscribe).
		DELETE("/subscription", h.Billing.Cancel)

	admin := api.Group("admin", "/admin").
		Use(middleware.RequireAuth(), middleware.RequireAdmin())
	admin.POST("/series", h.Catalog.CreateSerie).
		PUT("/series/:id", h.Catalog.UpdateSerie).
		DELETE("/series/:id", h.Catalog.DeleteSerie).
		POST("/extensions", h.Catalog.CreateExtension).
		PUT("/extensions/:id", h.Catalog.UpdateExtension).
		DELETE("/extensions/:id", h.Catalog.DeleteExtension).
		POST("/cards", h.Catalog.CreateCard).
		PUT("/cards/:id", h.Catalog.UpdateCard).
		DELETE("/cards/:id", h.Catalog.DeleteCard)

	return api
}

func catalogRoutes(h Handlers) *DomainGroup {
	g := NewDomainGroup("pokemon-card", "/pokemon-card/api")
	g.GET("/series", h.Catalog.ListSeries).
		GET("/series/:id/extensions", h.Catalog.ListExtensions).
		GET("/extensions/:id/cards", h.Catalog.ListCards).
		POST("/import/:apiId", middleware.RequireAuth(), middleware.RequireAdmin(), h.Catalog.Import)
	return g
}

func webhookRoutes(h Handlers) *DomainGroup {
	g := NewDomainGroup("webhooks", "/webhooks")
	g.POST("/stripe", h.Billing.StripeWebhook)
	return g
}
