package http

import (
	"html/template"

	"github.com/gin-gonic/gin"
)

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	// Session middleware; flash messages live in the session
	if cfg.SessionManager != nil {
		router.Use(cfg.SessionManager.SessionLoadSave())
	}

	// Load HTML templates
	if cfg.TemplatesPath != "" {
		tmpl := template.Must(template.New("").ParseGlob(cfg.TemplatesPath + "/*.html"))
		router.SetHTMLTemplate(tmpl)
	}

	// Serve static files
	if cfg.StaticPath != "" {
		router.Static("/static", cfg.StaticPath)
	}

	// Create controllers
	health := NewHealthController(cfg.Database, cfg.Version)
	uiController := NewUIController(cfg.Database, cfg.SessionManager)
	loansController := NewLoansController(cfg.Recorder, cfg.SessionManager)
	registryController := NewRegistryController(cfg.Registrar, cfg.SessionManager)

	// Health endpoints
	router.GET("/health", health.Status)
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	// UI routes
	router.GET("/", uiController.IndexPage)
	router.GET("/current_loans", uiController.CurrentLoansPage)

	// Loan log routes
	router.POST("/submit", loansController.Submit)
	router.GET("/do/:what", loansController.DoAction)
	router.POST("/do/:what", loansController.DoAction)

	// Registration routes
	router.POST("/add_book", registryController.AddBook)
	router.POST("/add_user", registryController.AddUser)

	// Task management endpoints
	if cfg.TaskClient != nil {
		tasksController := NewTasksController(cfg.TaskClient)
		router.POST("/api/metadata/refresh", tasksController.TriggerMetadataRefresh)
		router.GET("/api/tasks/:id", tasksController.GetTaskStatus)
	}

	return router
}
