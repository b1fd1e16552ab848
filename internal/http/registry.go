package http

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/kashidashi/internal/loans"
)

type RegistryController struct {
	registrar *loans.Registrar
	sessions  *SessionManager
}

func NewRegistryController(registrar *loans.Registrar, sessions *SessionManager) *RegistryController {
	return &RegistryController{registrar: registrar, sessions: sessions}
}

// AddBook registers a book by ISBN, pulling title, category and description
// from OpenBD. A failed lookup fails the request; the user may still enter
// a title manually through the form.
func (controller *RegistryController) AddBook(c *gin.Context) {
	format := resolveFormat(c)

	isbn := strings.TrimSpace(c.PostForm("isbn_new"))
	if isbn == "" {
		if format == formatJSON {
			respondFailure(c, http.StatusBadRequest, "missing_isbn", "isbn_new is required")
			return
		}
		redirectWithFlash(c, controller.sessions, flashError, "Please enter an ISBN.")
		return
	}

	registered, err := controller.registrar.RegisterBook(c.Request.Context(), isbn)
	if errors.Is(err, loans.ErrMetadataNotFound) {
		if format == formatJSON {
			respondFailure(c, http.StatusNotFound, "openbd_not_found", "no OpenBD record found for this ISBN")
			return
		}
		redirectWithFlash(c, controller.sessions, flashError,
			"No OpenBD record found. Please enter the title manually.")
		return
	}
	if err != nil {
		respondStorageError(c, format, controller.sessions, "adding book", err)
		return
	}

	if format == formatJSON {
		c.JSON(http.StatusOK, gin.H{
			"ok":            true,
			"isbn":          registered.Book.ISBN,
			"title":         registered.Book.Title,
			"text":          registered.Text,
			"category_id":   registered.Book.CategoryID,
			"category_name": registered.CategoryName,
		})
		return
	}

	redirectWithFlash(c, controller.sessions, flashSuccess,
		fmt.Sprintf("Registered book: %s", registered.Book.Title))
}

// AddUser registers a new user from the index page form.
func (controller *RegistryController) AddUser(c *gin.Context) {
	format := resolveFormat(c)

	name := c.PostForm("user_name_new")
	user, err := controller.registrar.RegisterUser(name)
	if errors.Is(err, loans.ErrMissingName) {
		if format == formatJSON {
			respondFailure(c, http.StatusBadRequest, "missing_name", "user_name_new is required")
			return
		}
		redirectWithFlash(c, controller.sessions, flashError, "Please enter a user name.")
		return
	}
	if err != nil {
		respondStorageError(c, format, controller.sessions, "adding user", err)
		return
	}

	if format == formatJSON {
		c.JSON(http.StatusOK, gin.H{
			"ok":      true,
			"user_id": user.ID,
			"name":    user.Name,
		})
		return
	}

	redirectWithFlash(c, controller.sessions, flashSuccess, "User added.")
}
