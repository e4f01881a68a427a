package http

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sm8ta/webike_workshop_service/internal/config"
	"github.com/sm8ta/webike_workshop_service/internal/core/domain"
	"github.com/sm8ta/webike_workshop_service/internal/core/ports"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type Router struct {
	router *gin.Engine
}

// Handlers groups the route handlers mounted by NewRouter.
type Handlers struct {
	Bike         *BikeHandler
	Workflow     *WorkflowHandler
	Inventory    *InventoryHandler
	Task         *TaskHandler
	Availability *AvailabilityHandler
	Profile      *ProfileHandler
	Report       *ReportHandler
	Settings     *SettingsHandler
	Events       *EventsHandler
}

func NewRouter(
	cfg *config.HTTP,
	tokenService ports.TokenService,
	h Handlers,
) (*Router, error) {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()

	// CORS
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.AllowedOrigins},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	// Swagger
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Metrics
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.POST("/auth/login", h.Profile.Login)

	api := router.Group("")
	api.Use(AuthMiddleware(tokenService))
	admin := RequireRole(domain.Admin)

	// Bikes routes
	bikes := api.Group("/bikes")
	{
		bikes.POST("", h.Bike.RegisterBike)
		bikes.GET("", h.Bike.ListBikes)
		bikes.DELETE("", admin, h.Bike.DeleteBikes)
		bikes.GET("/tables", h.Bike.ListByTable)
		bikes.GET("/frame/:frame", h.Bike.GetBikeByFrameNumber)
		bikes.GET("/:id", h.Bike.GetBike)
		bikes.PUT("/:id/table", h.Bike.AssignTable)
		bikes.POST("/:id/comments", h.Bike.AddComment)
		bikes.GET("/:id/comments", h.Bike.ListComments)
		bikes.POST("/:id/calls", h.Bike.RecordCall)
		bikes.GET("/:id/calls", h.Bike.ListCalls)
		bikes.GET("/:id/checklist", h.Bike.GetChecklist)
		bikes.PUT("/:id/checklist/:itemId", h.Bike.SetChecklistItem)

		bikes.POST("/:id/events", h.Workflow.FireEvent)
		bikes.PUT("/:id/status", h.Workflow.TransitionTo)
		bikes.POST("/:id/repairs", h.Workflow.AddRepairs)
		bikes.GET("/:id/repairs/pending", h.Workflow.PendingRepairs)
	}

	registrations := api.Group("/registrations")
	{
		registrations.POST("/:id/complete", h.Workflow.CompleteRegistration)
		registrations.DELETE("/:id", h.Workflow.DeletePendingRegistration)
	}

	api.GET("/call-statuses", h.Bike.ListCallStatuses)

	checklist := api.Group("/checklist-items")
	{
		checklist.GET("", h.Bike.ListChecklistItems)
		checklist.POST("", admin, h.Bike.CreateChecklistItem)
		checklist.PUT("/:id", admin, h.Bike.UpdateChecklistItem)
	}

	// Catalog and inventory routes
	api.GET("/repair-types", h.Inventory.ListRepairTypes)
	api.DELETE("/repair-types/:id", admin, h.Inventory.DeleteProduct)
	api.POST("/products", admin, h.Inventory.CreateProduct)

	inventory := api.Group("/inventory")
	{
		inventory.GET("", h.Inventory.StockOverview)
		inventory.GET("/groups", h.Inventory.ListGroups)
		inventory.POST("/groups", admin, h.Inventory.CreateGroup)
		inventory.GET("/:id", h.Inventory.ItemStatus)
		inventory.PUT("/:id", h.Inventory.UpdateItem)
		inventory.POST("/:id/adjust", h.Inventory.AdjustQuantity)
		inventory.PATCH("/:id/fields", h.Inventory.ScheduleEdit)
	}

	// Front-of-house tasks
	tasks := api.Group("/tasks")
	{
		tasks.POST("", h.Task.CreateTask)
		tasks.GET("/active", h.Task.ListActive)
		tasks.GET("/created", h.Task.ListCreated)
		tasks.GET("/:id", h.Task.GetTask)
		tasks.PUT("/:id/assign", h.Task.AssignTask)
		tasks.PUT("/:id/status", h.Task.TransitionTask)
		tasks.POST("/:id/reject", h.Task.RejectTask)
		tasks.DELETE("/:id", h.Task.DeleteTask)
	}

	availability := api.Group("/availability")
	{
		availability.POST("", h.Availability.Request)
		availability.GET("/mine", h.Availability.ListMine)
		availability.GET("/hours", h.Availability.ApprovedHours)
		availability.GET("/pending", admin, h.Availability.ListPending)
		availability.POST("/:id/review", admin, h.Availability.Review)
	}

	profiles := api.Group("/profiles")
	{
		profiles.GET("/me", h.Profile.Me)
		profiles.GET("", h.Profile.ListProfiles)
		profiles.POST("", admin, h.Profile.CreateProfile)
		profiles.PUT("/:id/active", admin, h.Profile.SetActive)
	}

	reports := api.Group("/reports", admin)
	{
		reports.GET("/warranty", h.Report.Warranty)
		reports.GET("/points", h.Report.Points)
	}

	api.GET("/settings", h.Settings.Get)
	api.PUT("/settings", h.Settings.Set)

	api.GET("/events", h.Events.Stream)

	return &Router{router: router}, nil
}

func (r *Router) Engine() *gin.Engine {
	return r.router
}
