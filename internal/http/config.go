package http

import (
	"github.com/mrlokans/kashidashi/internal/database"
	"github.com/mrlokans/kashidashi/internal/loans"
	"github.com/mrlokans/kashidashi/internal/tasks"
)

// RouterConfig contains all dependencies and configuration needed to create
// the HTTP router. This replaces a long parameter list in NewRouter.
type RouterConfig struct {
	// Core dependencies
	Database  *database.Database
	Recorder  *loans.Recorder
	Registrar *loans.Registrar

	// Session manager for flash messages
	SessionManager *SessionManager

	// Task queue client (optional)
	TaskClient *tasks.Client

	// UI paths
	TemplatesPath string
	StaticPath    string

	// Application info
	Version string
}
