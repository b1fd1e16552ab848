package entities

import (
	"time"
)

// Action names seeded into the reference table.
const (
	ActionLoan   = "loan"
	ActionReturn = "return"
)

// UncategorizedName is the sentinel category assigned to books whose
// metadata yields no subject.
const UncategorizedName = "uncategorized"

type User struct {
	ID        uint      `gorm:"primaryKey" json:"user_id"`
	Name      string    `gorm:"size:100" json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type Category struct {
	ID        uint      `gorm:"primaryKey" json:"category_id"`
	Name      string    `gorm:"uniqueIndex;size:100" json:"category_name"`
	CreatedAt time.Time `json:"created_at"`
}

// Book is keyed by its ISBN. The ISBN is treated as an opaque string:
// no checksum validation is performed anywhere.
type Book struct {
	ISBN       string    `gorm:"primaryKey;size:20" json:"isbn"`
	Title      string    `gorm:"index;size:512" json:"title"`
	CategoryID *uint     `gorm:"index" json:"category_id,omitempty"`
	Category   *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// BookDetail holds the optional long-form descriptive text for a book,
// one-to-one with Book via ISBN.
type BookDetail struct {
	ISBN      string    `gorm:"primaryKey;size:20" json:"isbn"`
	Text      string    `gorm:"type:text" json:"text"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Action is reference data ("loan", "return"), seeded at startup and not
// created by normal flows.
type Action struct {
	ID          uint   `gorm:"primaryKey" json:"action_id"`
	Name        string `gorm:"uniqueIndex;size:50" json:"name"`
	DisplayName string `gorm:"size:100" json:"display_name"`
}

// LoanLog is the append-only record of who did what with which book.
// All "current state" is derived from this table; no on-loan flag exists.
type LoanLog struct {
	ID       uint      `gorm:"primaryKey" json:"loan_id"`
	LoggedAt time.Time `gorm:"index" json:"logged_at"`
	UserID   uint      `gorm:"index" json:"user_id"`
	ISBN     string    `gorm:"index;size:20" json:"isbn"`
	ActionID uint      `gorm:"index" json:"action_id"`
	User     User      `gorm:"foreignKey:UserID" json:"-"`
	Book     Book      `gorm:"foreignKey:ISBN;references:ISBN" json:"-"`
	Action   Action    `gorm:"foreignKey:ActionID" json:"-"`
}

func (User) TableName() string {
	return "users"
}

func (Category) TableName() string {
	return "categories"
}

func (Book) TableName() string {
	return "books"
}

func (BookDetail) TableName() string {
	return "book_details"
}

func (Action) TableName() string {
	return "actions"
}

func (LoanLog) TableName() string {
	return "loan_logs"
}
