package http

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/kashidashi/internal/database"
	"github.com/mrlokans/kashidashi/internal/loans"
)

const msgReferenceNotFound = "Selected user/book/action does not exist."

type LoansController struct {
	recorder *loans.Recorder
	sessions *SessionManager
}

func NewLoansController(recorder *loans.Recorder, sessions *SessionManager) *LoansController {
	return &LoansController{recorder: recorder, sessions: sessions}
}

// Submit records an action from the index page form. This is the browser
// flow: the outcome always comes back as a redirect with a flash message.
func (controller *LoansController) Submit(c *gin.Context) {
	userID, err := strconv.ParseUint(c.PostForm("user_id"), 10, 32)
	if err != nil {
		redirectWithFlash(c, controller.sessions, flashError, msgReferenceNotFound)
		return
	}
	actionID, err := strconv.ParseUint(c.PostForm("action_id"), 10, 32)
	if err != nil {
		redirectWithFlash(c, controller.sessions, flashError, msgReferenceNotFound)
		return
	}
	isbn := c.PostForm("isbn")

	loggedAt, err := loans.ParseLoggedAt(c.PostForm("logged_at"))
	if err != nil {
		redirectWithFlash(c, controller.sessions, flashError, "Invalid timestamp.")
		return
	}

	err = controller.recorder.Record(uint(userID), isbn, uint(actionID), loggedAt)
	if errors.Is(err, database.ErrReferenceNotFound) {
		redirectWithFlash(c, controller.sessions, flashError, msgReferenceNotFound)
		return
	}
	if err != nil {
		respondStorageError(c, formatHTML, controller.sessions, "recording action", err)
		return
	}

	redirectWithFlash(c, controller.sessions, flashSuccess, "Record added.")
}

// DoAction records a loan or return addressed by URL, e.g.
// /do/loan?user_id=1&isbn=9784094078263. Supports the dual response mode:
// redirect-with-flash for browsers, JSON for machine callers.
func (controller *LoansController) DoAction(c *gin.Context) {
	what := c.Param("what")
	actionID, ok := controller.recorder.ResolveAction(what)
	if !ok {
		c.String(http.StatusNotFound, "Unknown action.")
		return
	}

	format := resolveFormat(c)

	userIDValue := c.Request.FormValue("user_id")
	isbn := c.Request.FormValue("isbn")
	if userIDValue == "" || isbn == "" {
		if format == formatJSON {
			respondFailure(c, http.StatusBadRequest, "missing_parameters", "user_id and isbn are required")
			return
		}
		redirectWithFlash(c, controller.sessions, flashError, "Please provide user_id and isbn.")
		return
	}

	userID, err := strconv.ParseUint(userIDValue, 10, 32)
	if err != nil {
		if format == formatJSON {
			respondFailure(c, http.StatusBadRequest, "missing_parameters", "user_id must be numeric")
			return
		}
		redirectWithFlash(c, controller.sessions, flashError, "user_id must be numeric.")
		return
	}

	loggedAt, err := loans.ParseLoggedAt(c.Request.FormValue("logged_at"))
	if err != nil {
		if format == formatJSON {
			respondFailure(c, http.StatusBadRequest, "invalid_timestamp", err.Error())
			return
		}
		redirectWithFlash(c, controller.sessions, flashError, "Invalid timestamp.")
		return
	}

	err = controller.recorder.Record(uint(userID), isbn, actionID, loggedAt)
	if errors.Is(err, database.ErrReferenceNotFound) {
		if format == formatJSON {
			respondFailure(c, http.StatusBadRequest, "does_not_exist", msgReferenceNotFound)
			return
		}
		redirectWithFlash(c, controller.sessions, flashError, msgReferenceNotFound)
		return
	}
	if err != nil {
		respondStorageError(c, format, controller.sessions, "recording action", err)
		return
	}

	if format == formatJSON {
		c.JSON(http.StatusOK, gin.H{
			"ok":      true,
			"action":  what,
			"user_id": userIDValue,
			"isbn":    isbn,
		})
		return
	}

	redirectWithFlash(c, controller.sessions, flashSuccess,
		fmt.Sprintf("Recorded action: %s (ISBN: %s)", what, isbn))
}
