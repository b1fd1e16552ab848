package loans

import (
	"fmt"
	"strings"
	"time"

	"github.com/mrlokans/kashidashi/internal/entities"
)

// Fallback action ids used when name lookup fails; they match the order the
// reference actions are seeded in.
const (
	FallbackLoanActionID   = 1
	FallbackReturnActionID = 2
)

// LogStore is the storage surface the recorder needs.
type LogStore interface {
	RecordLoan(entry *entities.LoanLog) error
	ActionIDByName(name string, fallback uint) uint
}

// Recorder appends immutable loan log entries after validating that every
// referenced entity exists.
type Recorder struct {
	store LogStore
}

func NewRecorder(store LogStore) *Recorder {
	return &Recorder{store: store}
}

// Record appends one log entry. A zero loggedAt means "now". Reference
// validation failures surface as database.ErrReferenceNotFound; the write is
// all-or-nothing.
func (r *Recorder) Record(userID uint, isbn string, actionID uint, loggedAt time.Time) error {
	entry := &entities.LoanLog{
		UserID:   userID,
		ISBN:     isbn,
		ActionID: actionID,
		LoggedAt: loggedAt,
	}
	return r.store.RecordLoan(entry)
}

// ResolveAction maps a URL action name ("loan" or "return") to its action id,
// falling back to the well-known seeded ids when lookup fails. The second
// return value is false for unknown names.
func (r *Recorder) ResolveAction(what string) (uint, bool) {
	switch what {
	case entities.ActionLoan:
		return r.store.ActionIDByName(entities.ActionLoan, FallbackLoanActionID), true
	case entities.ActionReturn:
		return r.store.ActionIDByName(entities.ActionReturn, FallbackReturnActionID), true
	default:
		return 0, false
	}
}

// ParseLoggedAt normalizes a caller-supplied timestamp. Empty input yields a
// zero time (caller defaults to now). Browser datetime-local values arrive as
// "2006-01-02T15:04"; the single separator is replaced and seconds are
// optional.
func ParseLoggedAt(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	s = strings.Replace(s, "T", " ", 1)
	for _, layout := range []string{"2006-01-02 15:04:05", "2006-01-02 15:04"} {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp: %q", s)
}
