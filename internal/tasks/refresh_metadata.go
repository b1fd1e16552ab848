package tasks

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/kashidashi/internal/entities"
	"github.com/mrlokans/kashidashi/internal/metadata"
)

// RefreshStore is the storage surface the refresh task needs.
type RefreshStore interface {
	BooksMissingDetail() ([]entities.Book, error)
	UpsertBookDetail(isbn, text string) error
}

// RefreshProvider fetches normalized bibliographic records.
type RefreshProvider interface {
	Lookup(ctx context.Context, isbn string) (*metadata.Record, error)
}

// RefreshMetadataTask re-runs the OpenBD lookup for every book that has no
// stored descriptive text. Best effort: books still unknown to OpenBD are
// skipped, not retried individually.
type RefreshMetadataTask struct{}

// Config returns the queue configuration for metadata refresh tasks.
func (t RefreshMetadataTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "refresh_metadata",
		MaxAttempts: 2,
		Backoff:     time.Minute,
		Timeout:     10 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// RefreshMetadataProcessor creates the processor function for
// RefreshMetadataTask.
func RefreshMetadataProcessor(store RefreshStore, provider RefreshProvider) backlite.QueueProcessor[RefreshMetadataTask] {
	return func(ctx context.Context, task RefreshMetadataTask) error {
		if provider == nil {
			return fmt.Errorf("metadata provider not configured")
		}

		books, err := store.BooksMissingDetail()
		if err != nil {
			return fmt.Errorf("list books missing detail: %w", err)
		}

		var updated, skipped int
		for _, book := range books {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			record, err := provider.Lookup(ctx, book.ISBN)
			if err != nil {
				if !errors.Is(err, metadata.ErrNotFound) {
					log.Printf("[TASK] Metadata refresh: lookup failed for %s: %v", book.ISBN, err)
				}
				skipped++
				continue
			}
			if record.Text == "" {
				skipped++
				continue
			}
			if err := store.UpsertBookDetail(book.ISBN, record.Text); err != nil {
				return fmt.Errorf("save detail for %s: %w", book.ISBN, err)
			}
			updated++
		}

		log.Printf("[TASK] Metadata refresh: %d updated, %d skipped of %d candidates",
			updated, skipped, len(books))
		return nil
	}
}

// NewRefreshMetadataQueue creates a backlite queue for metadata refresh
// tasks.
func NewRefreshMetadataQueue(store RefreshStore, provider RefreshProvider) backlite.Queue {
	return backlite.NewQueue(RefreshMetadataProcessor(store, provider))
}
