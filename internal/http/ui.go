package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/kashidashi/internal/database"
)

// recentLogLimit is how many log entries the index page shows.
const recentLogLimit = 20

type UIController struct {
	db       *database.Database
	sessions *SessionManager
}

func NewUIController(db *database.Database, sessions *SessionManager) *UIController {
	return &UIController{db: db, sessions: sessions}
}

// IndexPage renders the main view: every user, book and action for the
// record form, plus the latest log entries.
func (controller *UIController) IndexPage(c *gin.Context) {
	users, err := controller.db.ListUsers()
	if err != nil {
		c.String(http.StatusInternalServerError, "Error loading users: %s", err.Error())
		return
	}
	books, err := controller.db.ListBooks()
	if err != nil {
		c.String(http.StatusInternalServerError, "Error loading books: %s", err.Error())
		return
	}
	actions, err := controller.db.ListActions()
	if err != nil {
		c.String(http.StatusInternalServerError, "Error loading actions: %s", err.Error())
		return
	}
	logs, err := controller.db.RecentLogs(recentLogLimit)
	if err != nil {
		c.String(http.StatusInternalServerError, "Error loading logs: %s", err.Error())
		return
	}

	c.HTML(http.StatusOK, "index", gin.H{
		"Users":   users,
		"Books":   books,
		"Actions": actions,
		"Logs":    logs,
		"Flashes": controller.sessions.PopFlashes(c),
	})
}

// CurrentLoansPage shows, for each book, its latest log entry, filtered to
// books whose most recent action is "loan".
func (controller *UIController) CurrentLoansPage(c *gin.Context) {
	rows, err := controller.db.CurrentLoans()
	if err != nil {
		c.String(http.StatusInternalServerError, "Error loading current loans: %s", err.Error())
		return
	}

	c.HTML(http.StatusOK, "current_loans", gin.H{
		"Rows":    rows,
		"Flashes": controller.sessions.PopFlashes(c),
	})
}
