package http

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// Flash levels.
const (
	flashSuccess = "success"
	flashError   = "error"
)

// responseFormat selects between the two response modes of every mutating
// endpoint: an HTML redirect back to the index with a flash message, or a
// machine-readable JSON acknowledgment.
type responseFormat int

const (
	formatHTML responseFormat = iota
	formatJSON
)

// resolveFormat decides the response format once, at the request boundary.
// JSON is chosen when the caller asks for it explicitly (redirect=0), sends
// the AJAX header, or accepts application/json.
func resolveFormat(c *gin.Context) responseFormat {
	if c.Request.FormValue("redirect") == "0" {
		return formatJSON
	}
	if c.GetHeader("X-Requested-With") == "XMLHttpRequest" {
		return formatJSON
	}
	if strings.Contains(c.GetHeader("Accept"), "application/json") {
		return formatJSON
	}
	return formatHTML
}

// failureResponse is the JSON body for every failed operation.
type failureResponse struct {
	OK      bool   `json:"ok"`
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func respondFailure(c *gin.Context, status int, code, message string) {
	c.JSON(status, failureResponse{OK: false, Error: code, Message: message})
}

// respondStorageError logs the full error server-side and returns only a
// generic indicator to the caller.
func respondStorageError(c *gin.Context, format responseFormat, sessions *SessionManager, context string, err error) {
	log.Printf("DB error while %s: %v", context, err)
	if format == formatJSON {
		respondFailure(c, http.StatusInternalServerError, "db_error", "a storage error occurred")
		return
	}
	sessions.Flash(c, flashError, "An error occurred while saving. Please try again.")
	c.Redirect(http.StatusFound, "/")
}

// redirectWithFlash queues a flash message and sends the browser back to
// the index page.
func redirectWithFlash(c *gin.Context, sessions *SessionManager, level, message string) {
	sessions.Flash(c, level, message)
	c.Redirect(http.StatusFound, "/")
}
