package loans

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/mrlokans/kashidashi/internal/entities"
	"github.com/mrlokans/kashidashi/internal/metadata"
)

// ErrMetadataNotFound is the single outcome for every failed metadata
// lookup. "No such book" and "service unreachable" are deliberately not
// distinguished here, matching the long-observed behavior of the app; a
// transient network blip therefore blocks registration with no retry.
var ErrMetadataNotFound = errors.New("no OpenBD record found for ISBN")

// ErrMissingName is returned when a user registration has an empty name
// after trimming.
var ErrMissingName = errors.New("missing name")

// MetadataProvider fetches normalized bibliographic records.
type MetadataProvider interface {
	Lookup(ctx context.Context, isbn string) (*metadata.Record, error)
}

// RegistryStore is the storage surface book and user registration need.
type RegistryStore interface {
	SaveBookRecord(isbn, title, categoryName, text string) (*entities.Book, error)
	CreateUser(name string) (*entities.User, error)
}

// Registrar creates books (via metadata lookup) and users.
type Registrar struct {
	provider MetadataProvider
	store    RegistryStore
}

func NewRegistrar(provider MetadataProvider, store RegistryStore) *Registrar {
	return &Registrar{provider: provider, store: store}
}

// RegisteredBook is the outcome of a successful book registration.
type RegisteredBook struct {
	Book         *entities.Book
	Text         string
	CategoryName string
}

// RegisterBook looks the ISBN up on OpenBD and upserts the book, its
// category and its descriptive text in one transaction. The title falls
// back to the raw ISBN and the category to the uncategorized sentinel when
// the metadata carries neither.
func (r *Registrar) RegisterBook(ctx context.Context, isbn string) (*RegisteredBook, error) {
	record, err := r.provider.Lookup(ctx, isbn)
	if err != nil {
		if !errors.Is(err, metadata.ErrNotFound) {
			log.Printf("OpenBD lookup failed for %s: %v", isbn, err)
		}
		return nil, ErrMetadataNotFound
	}

	title := record.Title
	if title == "" {
		title = isbn
	}

	categoryName := entities.UncategorizedName
	if len(record.Subjects) > 0 {
		categoryName = record.Subjects[0]
	}

	book, err := r.store.SaveBookRecord(isbn, title, categoryName, record.Text)
	if err != nil {
		return nil, err
	}

	return &RegisteredBook{
		Book:         book,
		Text:         record.Text,
		CategoryName: categoryName,
	}, nil
}

// RegisterUser trims the name and inserts a new user, returning the entity
// with its assigned identity.
func (r *Registrar) RegisterUser(name string) (*entities.User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrMissingName
	}
	return r.store.CreateUser(name)
}
