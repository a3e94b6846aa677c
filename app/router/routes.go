// Package router provides HTTP routing, middleware configuration, and server setup for the web application
package router

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"log"
	"time"

	"github.com/hanifmaulana/distrolink/app/dto"
	"github.com/hanifmaulana/distrolink/app/handlers"
	"github.com/hanifmaulana/distrolink/app/middleware"
	"github.com/hanifmaulana/distrolink/utils"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/compress"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/helmet"
	"github.com/gofiber/fiber/v3/middleware/limiter"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/gofiber/fiber/v3/middleware/requestid"
)

// Router interface for HTTP routing
type Router interface {
	SetupRoutes()
	Start(address string) error
	GetApp() *fiber.App
}

// FiberRouter implements Router using Fiber v3
type FiberRouter struct {
	app *fiber.App

	authHandler         handlers.AuthHandlerInterface
	profileHandler      handlers.ProfileHandlerInterface
	contactHandler      handlers.ContactHandlerInterface
	distributionHandler handlers.DistributionHandlerInterface
	researchHandler     handlers.ResearchHandlerInterface
	dashboardHandler    handlers.DashboardHandlerInterface
	deviceHandler       handlers.DeviceHandlerInterface
	pwaHandler          handlers.PwaHandlerInterface

	authMiddleware *middleware.AuthMiddleware
	allowedOrigins []string
}

// NewFiberRouter creates a new Fiber router
func NewFiberRouter(
	authHandler handlers.AuthHandlerInterface,
	profileHandler handlers.ProfileHandlerInterface,
	contactHandler handlers.ContactHandlerInterface,
	distributionHandler handlers.DistributionHandlerInterface,
	researchHandler handlers.ResearchHandlerInterface,
	dashboardHandler handlers.DashboardHandlerInterface,
	deviceHandler handlers.DeviceHandlerInterface,
	pwaHandler handlers.PwaHandlerInterface,
	authMiddleware *middleware.AuthMiddleware,
	allowedOrigins []string,
) Router {
	app := fiber.New(fiber.Config{
		AppName:      "DistroLink API",
		ServerHeader: "DistroLink",
		ErrorHandler: errorHandler,
		BodyLimit:    16 * 1024 * 1024, // research uploads
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
		JSONEncoder:  json.Marshal,
		JSONDecoder:  json.Unmarshal,
	})

	return &FiberRouter{
		app:                 app,
		authHandler:         authHandler,
		profileHandler:      profileHandler,
		contactHandler:      contactHandler,
		distributionHandler: distributionHandler,
		researchHandler:     researchHandler,
		dashboardHandler:    dashboardHandler,
		deviceHandler:       deviceHandler,
		pwaHandler:          pwaHandler,
		authMiddleware:      authMiddleware,
		allowedOrigins:      allowedOrigins,
	}
}

// SetupRoutes configures all application routes
func (r *FiberRouter) SetupRoutes() {
	log.Println("Setting up routes...")

	r.setupMiddleware()

	api := r.app.Group("/api/v1")

	// Health check route (no rate limiting)
	api.Get("/health", r.healthCheck)

	// General rate limiting for all API routes
	api.Use(limiter.New(limiter.Config{
		Max:        2000,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: rateLimitReached,
		Next: func(c fiber.Ctx) bool {
			return c.Path() == "/api/v1/health"
		},
	}))

	// Auth routes with stricter rate limiting
	auth := api.Group("/auth")
	auth.Use(limiter.New(limiter.Config{
		Max:        20,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: rateLimitReached,
	}))

	auth.Post("/register", r.authHandler.Register)
	auth.Post("/login", r.authHandler.Login)
	auth.Post("/logout", r.authMiddleware.Authenticate(), r.authHandler.Logout)

	// Profile
	api.Get("/profile", r.authMiddleware.Authenticate(), r.profileHandler.GetProfile)
	api.Put("/profile", r.authMiddleware.Authenticate(), r.profileHandler.UpdateProfile)

	// Contacts
	contacts := api.Group("/contacts", r.authMiddleware.Authenticate())
	contacts.Get("/", r.contactHandler.ListContacts)
	contacts.Post("/", r.contactHandler.CreateContact)
	contacts.Put("/:id", r.contactHandler.UpdateContact)
	contacts.Delete("/:id", r.contactHandler.DeleteContact)

	// Research import
	api.Post("/research/upload", r.authMiddleware.Authenticate(), r.researchHandler.Upload)

	// Distribution
	distribution := api.Group("/distribution", r.authMiddleware.Authenticate())
	distribution.Get("/state", r.distributionHandler.GetState)
	distribution.Post("/setup-batches", r.distributionHandler.ResizeBatches)
	distribution.Post("/distribute", r.distributionHandler.Distribute)
	distribution.Put("/batch/:id", r.distributionHandler.UpdateBatch)
	distribution.Get("/batch/:id/links", r.distributionHandler.ListBatchLinks)
	distribution.Post("/log-sent", r.distributionHandler.MarkSent)

	// Dashboard
	dashboard := api.Group("/dashboard", r.authMiddleware.Authenticate())
	dashboard.Get("/history", r.dashboardHandler.History)
	dashboard.Post("/force-restart", r.dashboardHandler.ForceRestart)

	// Device management (owner side)
	devices := api.Group("/devices", r.authMiddleware.Authenticate())
	devices.Post("/token", r.deviceHandler.MintRegistrationToken)
	devices.Get("/", r.deviceHandler.ListDevices)
	devices.Delete("/:id", r.deviceHandler.DeleteDevice)

	// PWA endpoints (device side)
	pwa := api.Group("/pwa")
	pwa.Post("/claim", r.pwaHandler.Claim)
	pwa.Get("/batches", r.authMiddleware.DeviceAuthenticate(), r.pwaHandler.Batches)
	pwa.Post("/links/status", r.authMiddleware.DeviceAuthenticate(), r.pwaHandler.UpdateLinkStatus)
	pwa.Post("/batches/complete", r.authMiddleware.DeviceAuthenticate(), r.pwaHandler.CompleteBatch)

	// Not found handler
	r.app.Use(r.notFoundHandler)

	log.Println("Routes configured successfully")
}

// setupMiddleware configures global middleware
func (r *FiberRouter) setupMiddleware() {
	// Request ID middleware - must be first
	r.app.Use(requestid.New(requestid.Config{
		Header: "X-Request-ID",
		Generator: func() string {
			return generateRequestID()
		},
	}))

	// Security headers
	r.app.Use(helmet.New(helmet.Config{
		XSSProtection:         "1; mode=block",
		ContentTypeNosniff:    "nosniff",
		XFrameOptions:         "DENY",
		HSTSMaxAge:            31536000,
		ReferrerPolicy:        "strict-origin-when-cross-origin",
		XDNSPrefetchControl:   "off",
		XDownloadOptions:      "noopen",
		XPermittedCrossDomain: "none",
	}))

	r.app.Use(cors.New(cors.Config{
		AllowOrigins: r.allowedOrigins,
		AllowMethods: []string{
			"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS",
		},
		AllowHeaders: []string{
			"Origin",
			"Content-Type",
			"Accept",
			"Authorization",
			"X-Requested-With",
			"X-Request-ID",
			"X-Device-Token",
			"Cache-Control",
		},
		ExposeHeaders: []string{
			"X-Request-ID",
		},
		AllowCredentials: true,
		MaxAge:           utils.CORSMaxAge,
	}))

	r.app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))

	// Prometheus metrics
	r.app.Use(middleware.Metrics())

	// JSON request logging
	r.app.Use(logger.New(logger.Config{
		Format:     `{"time":"${time}","pid":"${pid}","request_id":"${locals:requestid}","level":"info","method":"${method}","path":"${path}","protocol":"${protocol}","ip":"${ip}","user_agent":"${ua}","status":${status},"latency":"${latency}","bytes_in":${bytesReceived},"bytes_out":${bytesSent}}` + "\n",
		TimeFormat: time.RFC3339,
		TimeZone:   "UTC",
		Next: func(c fiber.Ctx) bool {
			return c.Path() == "/api/v1/health"
		},
	}))

	// Recovery middleware with structured panic logging
	r.app.Use(recover.New(recover.Config{
		EnableStackTrace: true,
		StackTraceHandler: func(c fiber.Ctx, e interface{}) {
			log.Printf(`{"time":"%s","level":"error","request_id":"%s","event":"panic","error":"%v","path":"%s","method":"%s","ip":"%s"}`,
				utils.UTCNow().Format(time.RFC3339),
				c.Locals("requestid"),
				e,
				c.Path(),
				c.Method(),
				c.IP(),
			)
		},
	}))
}

// Start starts the HTTP server
func (r *FiberRouter) Start(address string) error {
	log.Printf("Starting server on %s", address)
	return r.app.Listen(address)
}

// GetApp returns the Fiber app instance
func (r *FiberRouter) GetApp() *fiber.App {
	return r.app
}

// Health check endpoint
func (r *FiberRouter) healthCheck(c fiber.Ctx) error {
	return c.JSON(dto.APIResponse{
		Success: true,
		Message: "Service is healthy",
		Data: fiber.Map{
			"status":    "ok",
			"timestamp": utils.UTCNow().Unix(),
			"version":   "1.0.0",
			"service":   "distrolink-api",
		},
	})
}

// Not found handler
func (r *FiberRouter) notFoundHandler(c fiber.Ctx) error {
	requestID := c.Locals("requestid")

	return c.Status(fiber.StatusNotFound).JSON(dto.APIResponse{
		Success: false,
		Message: "The requested resource was not found",
		Error: dto.ErrorDetail{
			Code: "NOT_FOUND",
			Details: fiber.Map{
				"path":       c.Path(),
				"method":     c.Method(),
				"request_id": requestID,
			},
		},
	})
}

func rateLimitReached(c fiber.Ctx) error {
	return c.Status(fiber.StatusTooManyRequests).JSON(dto.APIResponse{
		Success: false,
		Message: "Too many requests. Please try again later.",
		Error: dto.ErrorDetail{
			Code: "RATE_LIMIT_EXCEEDED",
		},
	})
}

// Global error handler
func errorHandler(c fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	log.Printf("Error %d: %v", code, err)

	requestID := c.Locals("requestid")

	return c.Status(code).JSON(dto.APIResponse{
		Success: false,
		Message: "An internal server error occurred",
		Error: dto.ErrorDetail{
			Code: "INTERNAL_ERROR",
			Details: fiber.Map{
				"timestamp":  utils.UTCNow().Unix(),
				"request_id": requestID,
			},
		},
	})
}

// generateRequestID creates a unique request ID
func generateRequestID() string {
	bytes := make([]byte, 8)
	rand.Read(bytes)
	return hex.EncodeToString(bytes)
}
