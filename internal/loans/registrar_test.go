package loans

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/kashidashi/internal/entities"
	"github.com/mrlokans/kashidashi/internal/metadata"
)

type fakeProvider struct {
	record *metadata.Record
	err    error
}

func (p *fakeProvider) Lookup(ctx context.Context, isbn string) (*metadata.Record, error) {
	if p.err != nil {
		return nil, p.err
	}
	return p.record, nil
}

type fakeRegistryStore struct {
	savedISBN     string
	savedTitle    string
	savedCategory string
	savedText     string
	saveErr       error

	createdName string
	nextUserID  uint
}

func (s *fakeRegistryStore) SaveBookRecord(isbn, title, categoryName, text string) (*entities.Book, error) {
	if s.saveErr != nil {
		return nil, s.saveErr
	}
	s.savedISBN = isbn
	s.savedTitle = title
	s.savedCategory = categoryName
	s.savedText = text
	return &entities.Book{ISBN: isbn, Title: title}, nil
}

func (s *fakeRegistryStore) CreateUser(name string) (*entities.User, error) {
	s.createdName = name
	s.nextUserID++
	return &entities.User{ID: s.nextUserID, Name: name}, nil
}

func TestRegisterBook(t *testing.T) {
	ctx := context.Background()

	t.Run("saves metadata fields", func(t *testing.T) {
		store := &fakeRegistryStore{}
		registrar := NewRegistrar(&fakeProvider{record: &metadata.Record{
			Title:    "Kokoro",
			Text:     "A novel.",
			Subjects: []string{"913", "Fiction"},
		}}, store)

		registered, err := registrar.RegisterBook(ctx, "9784101010014")
		require.NoError(t, err)

		assert.Equal(t, "Kokoro", registered.Book.Title)
		assert.Equal(t, "913", registered.CategoryName, "first subject becomes the category")
		assert.Equal(t, "A novel.", registered.Text)
		assert.Equal(t, "913", store.savedCategory)
		assert.Equal(t, "A novel.", store.savedText)
	})

	t.Run("title falls back to ISBN", func(t *testing.T) {
		store := &fakeRegistryStore{}
		registrar := NewRegistrar(&fakeProvider{record: &metadata.Record{}}, store)

		registered, err := registrar.RegisterBook(ctx, "9784101010014")
		require.NoError(t, err)
		assert.Equal(t, "9784101010014", registered.Book.Title)
	})

	t.Run("no subjects yields uncategorized", func(t *testing.T) {
		store := &fakeRegistryStore{}
		registrar := NewRegistrar(&fakeProvider{record: &metadata.Record{Title: "Kokoro"}}, store)

		registered, err := registrar.RegisterBook(ctx, "9784101010014")
		require.NoError(t, err)
		assert.Equal(t, entities.UncategorizedName, registered.CategoryName)
	})

	t.Run("missing record maps to ErrMetadataNotFound", func(t *testing.T) {
		registrar := NewRegistrar(&fakeProvider{err: metadata.ErrNotFound}, &fakeRegistryStore{})

		_, err := registrar.RegisterBook(ctx, "9784101010014")
		assert.ErrorIs(t, err, ErrMetadataNotFound)
	})

	t.Run("transport failure also maps to ErrMetadataNotFound", func(t *testing.T) {
		registrar := NewRegistrar(&fakeProvider{err: errors.New("connection refused")}, &fakeRegistryStore{})

		_, err := registrar.RegisterBook(ctx, "9784101010014")
		assert.ErrorIs(t, err, ErrMetadataNotFound)
	})

	t.Run("storage errors pass through", func(t *testing.T) {
		storageErr := errors.New("disk full")
		store := &fakeRegistryStore{saveErr: storageErr}
		registrar := NewRegistrar(&fakeProvider{record: &metadata.Record{Title: "Kokoro"}}, store)

		_, err := registrar.RegisterBook(ctx, "9784101010014")
		assert.ErrorIs(t, err, storageErr)
	})
}

func TestRegisterUser(t *testing.T) {
	t.Run("trims the name", func(t *testing.T) {
		store := &fakeRegistryStore{}
		registrar := NewRegistrar(&fakeProvider{}, store)

		user, err := registrar.RegisterUser("  Akiko  ")
		require.NoError(t, err)
		assert.Equal(t, "Akiko", user.Name)
		assert.Equal(t, "Akiko", store.createdName)
	})

	t.Run("rejects blank names", func(t *testing.T) {
		registrar := NewRegistrar(&fakeProvider{}, &fakeRegistryStore{})

		_, err := registrar.RegisterUser("   ")
		assert.ErrorIs(t, err, ErrMissingName)
	})
}
