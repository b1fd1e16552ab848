package database

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/kashidashi/internal/entities"
)

// ErrReferenceNotFound is returned when a loan record references a user,
// book or action that does not exist. The three cases are deliberately not
// distinguished; callers report one combined condition.
var ErrReferenceNotFound = errors.New("referenced user, book or action does not exist")

// Seeded in this order so that "loan" gets id 1 and "return" id 2 on a
// fresh database; ActionIDByName falls back to those ids when lookup fails.
var defaultActions = []entities.Action{
	{Name: entities.ActionLoan, DisplayName: "Loan"},
	{Name: entities.ActionReturn, DisplayName: "Return"},
}

type Database struct {
	DB *gorm.DB
}

func NewDatabase(dbPath string) (*Database, error) {
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Auto-migrate all entities
	err = db.AutoMigrate(
		&entities.User{},
		&entities.Category{},
		&entities.Book{},
		&entities.BookDetail{},
		&entities.Action{},
		&entities.LoanLog{},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	database := &Database{DB: db}

	// Seed reference actions
	if err := database.seedActions(); err != nil {
		return nil, fmt.Errorf("failed to seed actions: %w", err)
	}

	log.Printf("Database initialized successfully at %s", dbPath)

	return database, nil
}

func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// SQLDB exposes the underlying connection pool for components that work
// with database/sql directly, such as the session store.
func (d *Database) SQLDB() (*sql.DB, error) {
	return d.DB.DB()
}

func (d *Database) Ping() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

func (d *Database) seedActions() error {
	for _, action := range defaultActions {
		var existing entities.Action
		result := d.DB.Where("name = ?", action.Name).First(&existing)
		if result.Error == gorm.ErrRecordNotFound {
			if err := d.DB.Create(&action).Error; err != nil {
				return fmt.Errorf("failed to create action %s: %w", action.Name, err)
			}
			log.Printf("Created action: %s", action.DisplayName)
		}
	}
	return nil
}

func (d *Database) ListUsers() ([]entities.User, error) {
	var users []entities.User
	err := d.DB.Order("name").Find(&users).Error
	return users, err
}

func (d *Database) ListBooks() ([]entities.Book, error) {
	var books []entities.Book
	err := d.DB.Preload("Category").Order("title").Find(&books).Error
	return books, err
}

func (d *Database) ListActions() ([]entities.Action, error) {
	var actions []entities.Action
	err := d.DB.Order("id").Find(&actions).Error
	return actions, err
}

func (d *Database) GetUserByID(id uint) (*entities.User, error) {
	var user entities.User
	err := d.DB.First(&user, id).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (d *Database) GetBookByISBN(isbn string) (*entities.Book, error) {
	var book entities.Book
	err := d.DB.Preload("Category").Where("isbn = ?", isbn).First(&book).Error
	if err != nil {
		return nil, err
	}
	return &book, nil
}

func (d *Database) GetBookDetail(isbn string) (*entities.BookDetail, error) {
	var detail entities.BookDetail
	err := d.DB.Where("isbn = ?", isbn).First(&detail).Error
	if err != nil {
		return nil, err
	}
	return &detail, nil
}

// ActionIDByName resolves an action id by its seeded name, returning the
// hard-coded fallback when the lookup fails for any reason.
func (d *Database) ActionIDByName(name string, fallback uint) uint {
	var action entities.Action
	if err := d.DB.Where("name = ?", name).First(&action).Error; err != nil {
		return fallback
	}
	return action.ID
}

func (d *Database) CreateUser(name string) (*entities.User, error) {
	user := &entities.User{Name: name}
	if err := d.DB.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

func (d *Database) GetOrCreateCategory(name string) (*entities.Category, error) {
	return getOrCreateCategory(d.DB, name)
}

func getOrCreateCategory(tx *gorm.DB, name string) (*entities.Category, error) {
	var category entities.Category
	err := tx.Where("name = ?", name).First(&category).Error
	if err == gorm.ErrRecordNotFound {
		category = entities.Category{Name: name}
		if err := tx.Create(&category).Error; err != nil {
			return nil, err
		}
		return &category, nil
	}
	if err != nil {
		return nil, err
	}
	return &category, nil
}

// UpsertBook inserts a book or overwrites its title and category when the
// ISBN is already registered. Idempotent on ISBN.
func (d *Database) UpsertBook(book *entities.Book) error {
	return upsertBook(d.DB, book)
}

func upsertBook(tx *gorm.DB, book *entities.Book) error {
	var existing entities.Book
	result := tx.Where("isbn = ?", book.ISBN).First(&existing)
	if result.Error == gorm.ErrRecordNotFound {
		return tx.Create(book).Error
	}
	if result.Error != nil {
		return result.Error
	}
	existing.Title = book.Title
	existing.CategoryID = book.CategoryID
	return tx.Save(&existing).Error
}

func upsertBookDetail(tx *gorm.DB, isbn, text string) error {
	var existing entities.BookDetail
	result := tx.Where("isbn = ?", isbn).First(&existing)
	if result.Error == gorm.ErrRecordNotFound {
		return tx.Create(&entities.BookDetail{ISBN: isbn, Text: text}).Error
	}
	if result.Error != nil {
		return result.Error
	}
	existing.Text = text
	return tx.Save(&existing).Error
}

func (d *Database) UpsertBookDetail(isbn, text string) error {
	return upsertBookDetail(d.DB, isbn, text)
}

// SaveBookRecord performs the whole book registration write path in one
// transaction: category upsert, book upsert and (when text is non-empty)
// detail upsert. Any failure rolls back every write.
func (d *Database) SaveBookRecord(isbn, title, categoryName, text string) (*entities.Book, error) {
	var saved *entities.Book
	err := d.DB.Transaction(func(tx *gorm.DB) error {
		category, err := getOrCreateCategory(tx, categoryName)
		if err != nil {
			return err
		}
		book := &entities.Book{
			ISBN:       isbn,
			Title:      title,
			CategoryID: &category.ID,
		}
		if err := upsertBook(tx, book); err != nil {
			return err
		}
		if strings.TrimSpace(text) != "" {
			if err := upsertBookDetail(tx, isbn, text); err != nil {
				return err
			}
		}
		book.Category = category
		saved = book
		return nil
	})
	if err != nil {
		return nil, err
	}
	return saved, nil
}

// RecordLoan validates that the referenced user, book and action all exist
// and appends one immutable log entry. The check and the insert share a
// transaction, so a storage failure leaves no partial entry behind.
//
// Nothing here prevents two consecutive "loan" entries for the same ISBN;
// the log records what was submitted, physically possible or not.
func (d *Database) RecordLoan(entry *entities.LoanLog) error {
	if entry.LoggedAt.IsZero() {
		entry.LoggedAt = time.Now()
	}
	return d.DB.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&entities.User{}).Where("id = ?", entry.UserID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrReferenceNotFound
		}
		if err := tx.Model(&entities.Book{}).Where("isbn = ?", entry.ISBN).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrReferenceNotFound
		}
		if err := tx.Model(&entities.Action{}).Where("id = ?", entry.ActionID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrReferenceNotFound
		}
		return tx.Create(entry).Error
	})
}

// LogEntry is a loan log row joined with its display names for rendering.
type LogEntry struct {
	LoanID     uint      `json:"loan_id"`
	LoggedAt   time.Time `json:"logged_at"`
	UserName   string    `json:"user_name"`
	BookTitle  string    `json:"book_title"`
	ISBN       string    `json:"isbn"`
	ActionName string    `json:"action_name"`
}

// RecentLogs returns the latest limit log entries, newest first. LEFT JOINs
// keep entries visible even if a referenced row has somehow gone missing.
func (d *Database) RecentLogs(limit int) ([]LogEntry, error) {
	var logs []LogEntry
	err := d.DB.
		Table("loan_logs AS l").
		Select("l.id AS loan_id, l.logged_at, u.name AS user_name, b.title AS book_title, l.isbn, a.name AS action_name").
		Joins("LEFT JOIN users u ON l.user_id = u.id").
		Joins("LEFT JOIN books b ON l.isbn = b.isbn").
		Joins("LEFT JOIN actions a ON l.action_id = a.id").
		Order("l.logged_at DESC").
		Limit(limit).
		Scan(&logs).Error
	return logs, err
}

// CurrentLoans returns, for each book, its single most recent log entry,
// filtered to books whose latest action is "loan". On-loan state is always
// recomputed from the log, never stored.
func (d *Database) CurrentLoans() ([]LogEntry, error) {
	var logs []LogEntry
	err := d.DB.
		Table("loan_logs AS l").
		Select("l.id AS loan_id, l.logged_at, u.name AS user_name, b.title AS book_title, l.isbn, a.name AS action_name").
		Joins("JOIN (SELECT isbn, MAX(logged_at) AS m FROM loan_logs GROUP BY isbn) latest ON l.isbn = latest.isbn AND l.logged_at = latest.m").
		Joins("LEFT JOIN actions a ON l.action_id = a.id").
		Joins("LEFT JOIN books b ON l.isbn = b.isbn").
		Joins("LEFT JOIN users u ON l.user_id = u.id").
		Where("a.name = ?", entities.ActionLoan).
		Order("l.logged_at DESC").
		Scan(&logs).Error
	return logs, err
}

// BooksMissingDetail lists books that have no stored descriptive text,
// candidates for the background metadata refresh.
func (d *Database) BooksMissingDetail() ([]entities.Book, error) {
	var books []entities.Book
	err := d.DB.
		Joins("LEFT JOIN book_details bd ON books.isbn = bd.isbn").
		Where("bd.isbn IS NULL OR bd.text = ''").
		Find(&books).Error
	return books, err
}

func (d *Database) LogCount() (int64, error) {
	var count int64
	err := d.DB.Model(&entities.LoanLog{}).Count(&count).Error
	return count, err
}
