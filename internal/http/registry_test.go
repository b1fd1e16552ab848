package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubOpenBD serves a minimal OpenBD v1 payload: one known ISBN, null for
// everything else.
func stubOpenBD(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("isbn") == "9784101010014" {
			_, _ = w.Write([]byte(`[{
				"summary": {"title": "Kokoro", "description": "A novel."},
				"onix": {"DescriptiveDetail": {"Subject": [{"SubjectHeadingText": "Fiction"}]}}
			}]`))
			return
		}
		_, _ = w.Write([]byte(`[null]`))
	}))
}

func TestAddBook(t *testing.T) {
	t.Run("registers book from metadata", func(t *testing.T) {
		server := stubOpenBD(t)
		defer server.Close()

		db, router, cleanup := setupTestApp(t, server.URL)
		defer cleanup()

		w := postForm(router, "/add_book", url.Values{"isbn_new": {"9784101010014"}}, true)

		assert.Equal(t, http.StatusOK, w.Code)

		var response map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, true, response["ok"])
		assert.Equal(t, "Kokoro", response["title"])
		assert.Equal(t, "Fiction", response["category_name"])

		book, err := db.GetBookByISBN("9784101010014")
		require.NoError(t, err)
		assert.Equal(t, "Kokoro", book.Title)
		require.NotNil(t, book.Category)
		assert.Equal(t, "Fiction", book.Category.Name)

		detail, err := db.GetBookDetail("9784101010014")
		require.NoError(t, err)
		assert.Equal(t, "A novel.", detail.Text)
	})

	t.Run("registering the same ISBN twice keeps one book", func(t *testing.T) {
		server := stubOpenBD(t)
		defer server.Close()

		db, router, cleanup := setupTestApp(t, server.URL)
		defer cleanup()

		for i := 0; i < 2; i++ {
			w := postForm(router, "/add_book", url.Values{"isbn_new": {"9784101010014"}}, true)
			require.Equal(t, http.StatusOK, w.Code)
		}

		books, err := db.ListBooks()
		require.NoError(t, err)
		assert.Len(t, books, 1)
	})

	t.Run("unknown ISBN is 404", func(t *testing.T) {
		server := stubOpenBD(t)
		defer server.Close()

		_, router, cleanup := setupTestApp(t, server.URL)
		defer cleanup()

		w := postForm(router, "/add_book", url.Values{"isbn_new": {"9999999999999"}}, true)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, w.Body.String(), "openbd_not_found")
	})

	t.Run("missing ISBN is 400", func(t *testing.T) {
		_, router, cleanup := setupTestApp(t, "")
		defer cleanup()

		w := postForm(router, "/add_book", url.Values{"isbn_new": {"   "}}, true)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "missing_isbn")
	})

	t.Run("browser gets a redirect on failure", func(t *testing.T) {
		server := stubOpenBD(t)
		defer server.Close()

		_, router, cleanup := setupTestApp(t, server.URL)
		defer cleanup()

		w := postForm(router, "/add_book", url.Values{"isbn_new": {"9999999999999"}}, false)

		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "/", w.Header().Get("Location"))
	})
}

func TestAddUser(t *testing.T) {
	t.Run("creates user and returns identity", func(t *testing.T) {
		db, router, cleanup := setupTestApp(t, "")
		defer cleanup()

		w := postForm(router, "/add_user", url.Values{"user_name_new": {"  Akiko  "}}, true)

		assert.Equal(t, http.StatusOK, w.Code)

		var response map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, true, response["ok"])
		assert.Equal(t, "Akiko", response["name"])
		assert.Equal(t, float64(1), response["user_id"])

		users, err := db.ListUsers()
		require.NoError(t, err)
		require.Len(t, users, 1)
		assert.Equal(t, "Akiko", users[0].Name)
	})

	t.Run("blank name is 400", func(t *testing.T) {
		_, router, cleanup := setupTestApp(t, "")
		defer cleanup()

		w := postForm(router, "/add_user", url.Values{"user_name_new": {"   "}}, true)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "missing_name")
	})
}
