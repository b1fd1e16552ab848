// Command generate_demo creates a demo database with sample users, books and
// loan history.
// Usage: go run cmd/generate_demo/main.go [-db path/to/demo.db]
package main

import (
	"flag"
	"log"
	"os"
	"time"

	"github.com/mrlokans/kashidashi/internal/database"
	"github.com/mrlokans/kashidashi/internal/entities"
)

const defaultDemoDatabasePath = "./demo/demo.db"

func main() {
	dbPath := flag.String("db", defaultDemoDatabasePath, "path to the demo database file")
	flag.Parse()

	log.Printf("Generating demo database at %s...", *dbPath)

	// Delete existing demo database to start fresh
	if err := os.Remove(*dbPath); err != nil && !os.IsNotExist(err) {
		log.Fatalf("Failed to remove existing demo database: %v", err)
	}

	db, err := database.NewDatabase(*dbPath)
	if err != nil {
		log.Fatalf("Failed to create database: %v", err)
	}
	defer db.Close()

	users := createUsers(db)
	createBooks(db)
	recordHistory(db, users)

	log.Println("Demo database generated successfully!")
}

func createUsers(db *database.Database) map[string]entities.User {
	names := []string{
		"Akiko",
		"Hiroshi",
		"Mei",
		"Satoshi",
	}

	users := make(map[string]entities.User)
	for _, name := range names {
		user, err := db.CreateUser(name)
		if err != nil {
			log.Printf("Failed to create user %s: %v", name, err)
			continue
		}
		users[name] = *user
	}
	return users
}

// demoBook describes one book and the category it should land in.
type demoBook struct {
	ISBN     string
	Title    string
	Category string
	Text     string
}

func getDemoBooks() []demoBook {
	return []demoBook{
		{
			ISBN:     "9784101010014",
			Title:    "Kokoro",
			Category: "Fiction",
			Text:     "A novel of friendship, guilt and the gap between generations in Meiji-era Japan.",
		},
		{
			ISBN:     "9784101006062",
			Title:    "Snow Country",
			Category: "Fiction",
			Text:     "A love story set in a remote hot-spring town in the mountains of western Japan.",
		},
		{
			ISBN:     "9784003101018",
			Title:    "Botchan",
			Category: "Fiction",
			Text:     "A young Tokyo teacher collides with small-town school politics.",
		},
		{
			ISBN:     "9784062748681",
			Title:    "A Study of History Textbooks",
			Category: "History",
			Text:     "",
		},
		{
			ISBN:     "9784000801119",
			Title:    "Introduction to Linear Algebra",
			Category: "Mathematics",
			Text:     "",
		},
		{
			ISBN:     "9780000000000",
			Title:    "Unfiled Pamphlet",
			Category: entities.UncategorizedName,
			Text:     "",
		},
	}
}

func createBooks(db *database.Database) {
	for _, b := range getDemoBooks() {
		book, err := db.SaveBookRecord(b.ISBN, b.Title, b.Category, b.Text)
		if err != nil {
			log.Printf("Failed to save book %s: %v", b.Title, err)
			continue
		}
		log.Printf("Saved: %s (%s)", book.Title, book.ISBN)
	}
}

// recordHistory writes a plausible sequence of loans and returns spanning the
// last few weeks. Some books end up on loan, some returned.
func recordHistory(db *database.Database, users map[string]entities.User) {
	loanID := db.ActionIDByName(entities.ActionLoan, 1)
	returnID := db.ActionIDByName(entities.ActionReturn, 2)

	now := time.Now()

	type event struct {
		user   string
		isbn   string
		action uint
		ago    time.Duration
	}

	events := []event{
		{"Akiko", "9784101010014", loanID, 21 * 24 * time.Hour},
		{"Akiko", "9784101010014", returnID, 14 * 24 * time.Hour},
		{"Hiroshi", "9784101010014", loanID, 7 * 24 * time.Hour},
		{"Mei", "9784101006062", loanID, 10 * 24 * time.Hour},
		{"Mei", "9784101006062", returnID, 3 * 24 * time.Hour},
		{"Satoshi", "9784003101018", loanID, 5 * 24 * time.Hour},
		{"Akiko", "9784000801119", loanID, 2 * 24 * time.Hour},
		{"Hiroshi", "9784062748681", loanID, 36 * time.Hour},
		{"Hiroshi", "9784062748681", returnID, 12 * time.Hour},
	}

	for _, e := range events {
		user, ok := users[e.user]
		if !ok {
			continue
		}
		entry := &entities.LoanLog{
			LoggedAt: now.Add(-e.ago),
			UserID:   user.ID,
			ISBN:     e.isbn,
			ActionID: e.action,
		}
		if err := db.RecordLoan(entry); err != nil {
			log.Printf("Failed to record loan for %s: %v", e.isbn, err)
		}
	}

	count, _ := db.LogCount()
	log.Printf("Recorded %d loan log entries", count)
}
