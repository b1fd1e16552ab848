package database

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/kashidashi/internal/entities"
)

func setupTestDB(t *testing.T) (*Database, func()) {
	t.Helper()

	dbPath := "./test_" + strings.ReplaceAll(t.Name(), "/", "_") + ".db"
	db, err := NewDatabase(dbPath)
	require.NoError(t, err)

	cleanup := func() {
		db.Close()
		os.Remove(dbPath)
	}
	return db, cleanup
}

func mustUser(t *testing.T, db *Database, name string) *entities.User {
	t.Helper()
	user, err := db.CreateUser(name)
	require.NoError(t, err)
	return user
}

func mustBook(t *testing.T, db *Database, isbn, title string) *entities.Book {
	t.Helper()
	book, err := db.SaveBookRecord(isbn, title, entities.UncategorizedName, "")
	require.NoError(t, err)
	return book
}

func TestSeededActions(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	actions, err := db.ListActions()
	require.NoError(t, err)
	require.Len(t, actions, 2)

	assert.Equal(t, entities.ActionLoan, actions[0].Name)
	assert.Equal(t, uint(1), actions[0].ID)
	assert.Equal(t, entities.ActionReturn, actions[1].Name)
	assert.Equal(t, uint(2), actions[1].ID)
}

func TestActionIDByName(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	assert.Equal(t, uint(1), db.ActionIDByName(entities.ActionLoan, 99))
	assert.Equal(t, uint(2), db.ActionIDByName(entities.ActionReturn, 99))
	assert.Equal(t, uint(99), db.ActionIDByName("donate", 99))
}

func TestSaveBookRecord(t *testing.T) {
	t.Run("creates book, category and detail", func(t *testing.T) {
		db, cleanup := setupTestDB(t)
		defer cleanup()

		book, err := db.SaveBookRecord("9784101010014", "Kokoro", "Fiction", "A novel.")
		require.NoError(t, err)
		assert.Equal(t, "Kokoro", book.Title)
		require.NotNil(t, book.Category)
		assert.Equal(t, "Fiction", book.Category.Name)

		detail, err := db.GetBookDetail("9784101010014")
		require.NoError(t, err)
		assert.Equal(t, "A novel.", detail.Text)
	})

	t.Run("registering twice does not duplicate", func(t *testing.T) {
		db, cleanup := setupTestDB(t)
		defer cleanup()

		_, err := db.SaveBookRecord("9784101010014", "Kokoro", "Fiction", "First text.")
		require.NoError(t, err)
		_, err = db.SaveBookRecord("9784101010014", "Kokoro (rev.)", "Fiction", "Second text.")
		require.NoError(t, err)

		books, err := db.ListBooks()
		require.NoError(t, err)
		require.Len(t, books, 1)
		assert.Equal(t, "Kokoro (rev.)", books[0].Title)

		detail, err := db.GetBookDetail("9784101010014")
		require.NoError(t, err)
		assert.Equal(t, "Second text.", detail.Text)

		var categoryCount int64
		require.NoError(t, db.DB.Model(&entities.Category{}).Where("name = ?", "Fiction").Count(&categoryCount).Error)
		assert.Equal(t, int64(1), categoryCount)
	})

	t.Run("blank text leaves no detail row", func(t *testing.T) {
		db, cleanup := setupTestDB(t)
		defer cleanup()

		_, err := db.SaveBookRecord("9784003101018", "Botchan", entities.UncategorizedName, "   ")
		require.NoError(t, err)

		_, err = db.GetBookDetail("9784003101018")
		assert.Error(t, err)
	})
}

func TestRecordLoan(t *testing.T) {
	t.Run("valid entry appears first in recent logs", func(t *testing.T) {
		db, cleanup := setupTestDB(t)
		defer cleanup()

		user := mustUser(t, db, "Akiko")
		mustBook(t, db, "9784101010014", "Kokoro")

		entry := &entities.LoanLog{
			UserID:   user.ID,
			ISBN:     "9784101010014",
			ActionID: 1,
		}
		require.NoError(t, db.RecordLoan(entry))
		assert.False(t, entry.LoggedAt.IsZero(), "zero logged_at should default to now")

		logs, err := db.RecentLogs(20)
		require.NoError(t, err)
		require.NotEmpty(t, logs)
		assert.Equal(t, "Akiko", logs[0].UserName)
		assert.Equal(t, "Kokoro", logs[0].BookTitle)
		assert.Equal(t, entities.ActionLoan, logs[0].ActionName)
	})

	t.Run("missing reference leaves log unchanged", func(t *testing.T) {
		db, cleanup := setupTestDB(t)
		defer cleanup()

		user := mustUser(t, db, "Akiko")
		mustBook(t, db, "9784101010014", "Kokoro")

		before, err := db.LogCount()
		require.NoError(t, err)

		cases := []*entities.LoanLog{
			{UserID: 999, ISBN: "9784101010014", ActionID: 1},
			{UserID: user.ID, ISBN: "0000000000000", ActionID: 1},
			{UserID: user.ID, ISBN: "9784101010014", ActionID: 42},
		}
		for _, entry := range cases {
			err := db.RecordLoan(entry)
			assert.ErrorIs(t, err, ErrReferenceNotFound)
		}

		after, err := db.LogCount()
		require.NoError(t, err)
		assert.Equal(t, before, after)
	})

	t.Run("double loan is allowed", func(t *testing.T) {
		db, cleanup := setupTestDB(t)
		defer cleanup()

		akiko := mustUser(t, db, "Akiko")
		hiroshi := mustUser(t, db, "Hiroshi")
		mustBook(t, db, "9784101010014", "Kokoro")

		require.NoError(t, db.RecordLoan(&entities.LoanLog{UserID: akiko.ID, ISBN: "9784101010014", ActionID: 1}))
		require.NoError(t, db.RecordLoan(&entities.LoanLog{UserID: hiroshi.ID, ISBN: "9784101010014", ActionID: 1}))

		count, err := db.LogCount()
		require.NoError(t, err)
		assert.Equal(t, int64(2), count)
	})
}

func TestRecentLogsOrderAndLimit(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	user := mustUser(t, db, "Akiko")
	mustBook(t, db, "9784101010014", "Kokoro")

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 25; i++ {
		entry := &entities.LoanLog{
			LoggedAt: base.Add(time.Duration(i) * time.Hour),
			UserID:   user.ID,
			ISBN:     "9784101010014",
			ActionID: uint(1 + i%2),
		}
		require.NoError(t, db.RecordLoan(entry))
	}

	logs, err := db.RecentLogs(20)
	require.NoError(t, err)
	require.Len(t, logs, 20)

	for i := 1; i < len(logs); i++ {
		assert.False(t, logs[i].LoggedAt.After(logs[i-1].LoggedAt), "logs must be newest first")
	}
}

func TestCurrentLoans(t *testing.T) {
	loan := func(userID uint, isbn string, at time.Time) *entities.LoanLog {
		return &entities.LoanLog{LoggedAt: at, UserID: userID, ISBN: isbn, ActionID: 1}
	}
	giveBack := func(userID uint, isbn string, at time.Time) *entities.LoanLog {
		return &entities.LoanLog{LoggedAt: at, UserID: userID, ISBN: isbn, ActionID: 2}
	}

	t.Run("loan then return then loan is on loan", func(t *testing.T) {
		db, cleanup := setupTestDB(t)
		defer cleanup()

		user := mustUser(t, db, "Akiko")
		mustBook(t, db, "9784101010014", "Kokoro")

		base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
		require.NoError(t, db.RecordLoan(loan(user.ID, "9784101010014", base)))
		require.NoError(t, db.RecordLoan(giveBack(user.ID, "9784101010014", base.Add(time.Hour))))
		require.NoError(t, db.RecordLoan(loan(user.ID, "9784101010014", base.Add(2*time.Hour))))

		rows, err := db.CurrentLoans()
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "9784101010014", rows[0].ISBN)
		assert.Equal(t, "Akiko", rows[0].UserName)
	})

	t.Run("loan then return is not on loan", func(t *testing.T) {
		db, cleanup := setupTestDB(t)
		defer cleanup()

		user := mustUser(t, db, "Akiko")
		mustBook(t, db, "9784101010014", "Kokoro")

		base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
		require.NoError(t, db.RecordLoan(loan(user.ID, "9784101010014", base)))
		require.NoError(t, db.RecordLoan(giveBack(user.ID, "9784101010014", base.Add(time.Hour))))

		rows, err := db.CurrentLoans()
		require.NoError(t, err)
		assert.Empty(t, rows)
	})

	t.Run("one row per book", func(t *testing.T) {
		db, cleanup := setupTestDB(t)
		defer cleanup()

		user := mustUser(t, db, "Akiko")
		mustBook(t, db, "9784101010014", "Kokoro")
		mustBook(t, db, "9784003101018", "Botchan")

		base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
		require.NoError(t, db.RecordLoan(loan(user.ID, "9784101010014", base)))
		require.NoError(t, db.RecordLoan(loan(user.ID, "9784003101018", base.Add(time.Hour))))

		rows, err := db.CurrentLoans()
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, "9784003101018", rows[0].ISBN, "newest loan first")
	})
}

func TestBooksMissingDetail(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	_, err := db.SaveBookRecord("9784101010014", "Kokoro", "Fiction", "Has text.")
	require.NoError(t, err)
	mustBook(t, db, "9784003101018", "Botchan")

	require.NoError(t, db.UpsertBookDetail("9784003101018", ""))
	mustBook(t, db, "9784101006062", "Snow Country")

	books, err := db.BooksMissingDetail()
	require.NoError(t, err)

	isbns := make([]string, 0, len(books))
	for _, b := range books {
		isbns = append(isbns, b.ISBN)
	}
	assert.ElementsMatch(t, []string{"9784003101018", "9784101006062"}, isbns)
}
