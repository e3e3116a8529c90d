package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"harborline/internal/handler/api"
	reqdto "harborline/internal/handler/dto/request"
	"harborline/internal/handler/middleware"
	"harborline/internal/pkg/config"
	"harborline/internal/usecase/shared"
)

type route struct {
	Method  string
	Path    string
	Handler gin.HandlerFunc
}

func NewRouter(
	engine *gin.Engine,
	cfg config.Config,
	bookingHandler *api.BookingHandler,
	merchantHandler *api.MerchantHandler,
	crewHandler *api.CrewHandler,
	adminHandler *api.AdminHandler,
	authMiddleware *middleware.AuthMiddleware,
) {
	reqdto.RegisterCustomValidations()
	setupMiddleware(engine, cfg)
	setupRoutes(engine, bookingHandler, merchantHandler, crewHandler, adminHandler, authMiddleware)
}

func setupMiddleware(engine *gin.Engine, cfg config.Config) {
	// Recovery must be first (outermost) to catch panics from all other middleware
	engine.Use(middleware.CustomRecovery())
	engine.Use(middleware.NewCORSMiddleware(cfg.CORS))
	engine.Use(middleware.NewLogger(cfg.Log).LoggingMiddleware())
	engine.Use(middleware.ErrorHandler())
}

func setupRoutes(
	engine *gin.Engine,
	bookingHandler *api.BookingHandler,
	merchantHandler *api.MerchantHandler,
	crewHandler *api.CrewHandler,
	adminHandler *api.AdminHandler,
	authMiddleware *middleware.AuthMiddleware,
) {
	engine.GET("/health", healthCheck)

	if gin.Mode() == gin.DebugMode {
		engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	apiGroup := engine.Group("/api")
	{
		// Availability is a public probe; everything else requires auth.
		apiGroup.POST("/bookings/availability", bookingHandler.CheckAvailability)

		bookings := apiGroup.Group("/bookings")
		bookings.Use(authMiddleware.RequireAuth())
		{
			addRoutes(bookings, []route{
				{Method: http.MethodGet, Path: "/:id", Handler: bookingHandler.GetBooking},
			})

			userOnly := bookings.Group("")
			userOnly.Use(authMiddleware.RequireRole(shared.RoleUser))
			addRoutes(userOnly, []route{
				{Method: http.MethodPost, Path: "", Handler: bookingHandler.CreateBooking},
				{Method: http.MethodGet, Path: "", Handler: bookingHandler.ListMyBookings},
				{Method: http.MethodPost, Path: "/:id/cancel", Handler: bookingHandler.CancelBooking},
				{Method: http.MethodPost, Path: "/:id/rating", Handler: bookingHandler.RateBooking},
			})
		}

		merchant := apiGroup.Group("/merchant")
		merchant.Use(authMiddleware.RequireAuth(), authMiddleware.RequireRole(shared.RoleMerchant))
		{
			addRoutes(merchant, []route{
				{Method: http.MethodGet, Path: "/bookings", Handler: merchantHandler.ListBookings},
				{Method: http.MethodGet, Path: "/bookings/stats", Handler: merchantHandler.Stats},
				{Method: http.MethodPost, Path: "/bookings/:id/confirm", Handler: merchantHandler.ConfirmBooking},
				{Method: http.MethodPost, Path: "/bookings/:id/reject", Handler: merchantHandler.RejectBooking},
				{Method: http.MethodPost, Path: "/bookings/:id/complete", Handler: merchantHandler.CompleteBooking},
				{Method: http.MethodPost, Path: "/bookings/:id/assign-crew", Handler: merchantHandler.AssignCrew},
			})
		}

		crew := apiGroup.Group("/crew")
		crew.Use(authMiddleware.RequireAuth(), authMiddleware.RequireRole(shared.RoleCrew))
		{
			addRoutes(crew, []route{
				{Method: http.MethodPost, Path: "/bookings/:id/start", Handler: crewHandler.StartService},
				{Method: http.MethodPost, Path: "/bookings/:id/complete", Handler: crewHandler.CompleteService},
			})
		}

		admin := apiGroup.Group("/admin")
		admin.Use(authMiddleware.RequireAuth(), authMiddleware.RequireRole(shared.RoleAdmin))
		{
			addRoutes(admin, []route{
				{Method: http.MethodPost, Path: "/sweep", Handler: adminHandler.TriggerSweep},
			})
		}
	}
}

// @Summary Health check
// @Description Check if the service is healthy
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"message": "Service is healthy",
	})
}

func addRoutes(g *gin.RouterGroup, rs []route) {
	for _, r := range rs {
		switch r.Method {
		case http.MethodGet:
			g.GET(r.Path, r.Handler)
		case http.MethodPost:
			g.POST(r.Path, r.Handler)
		case http.MethodPut:
			g.PUT(r.Path, r.Handler)
		case http.MethodPatch:
			g.PATCH(r.Path, r.Handler)
		case http.MethodDelete:
			g.DELETE(r.Path, r.Handler)
		default:
			g.Any(r.Path, r.Handler)
		}
	}
}
