// Package repository persists the play-calling history.
package repository

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/okian/dugout/internal/domain/model"
)

// Page bounds for List.
const (
	DefaultListLimit = 50
	MaxListLimit     = 500
)

// Store provides read/write access to history records.
type Store interface {
	// Create stores p. An empty id is replaced by a fresh UUID; the timestamps
	// are stamped by the store. Returns ErrConflict if the id already exists.
	Create(ctx context.Context, p model.Play) (model.Play, error)

	// Get returns ErrNotFound if the id is unknown.
	Get(ctx context.Context, id string) (model.Play, error)

	// List returns one page ordered by creation time, newest first, and the
	// number of records matching the filters.
	List(ctx context.Context, opts ListOptions) ([]model.Play, int, error)

	// Update replaces the editable fields of an existing record. The creation
	// time and the engine flag are kept.
	Update(ctx context.Context, p model.Play) (model.Play, error)

	Delete(ctx context.Context, id string) error

	Count(ctx context.Context) int

	Close() error
}

// ListOptions filters and pages List. Nil filters match everything.
type ListOptions struct {
	Limit  int
	Offset int

	HalfInning          model.HalfInning
	Outs                *int
	RunnersOnFirst      *bool
	RunnersOnSecond     *bool
	RunnersOnThird      *bool
	GeneratedFromEngine *bool

	// Search is a case-insensitive substring match over team names, context
	// notes, catcher instructions, offensive sign and runner instructions.
	Search string
}

// normalize applies the default page size and rejects bad bounds.
func (o ListOptions) normalize() (ListOptions, error) {
	if o.Limit == 0 {
		o.Limit = DefaultListLimit
	}
	if o.Limit < 0 || o.Limit > MaxListLimit {
		return o, ErrInvalidLimit
	}
	if o.Offset < 0 {
		return o, ErrInvalidOffset
	}
	o.Search = strings.TrimSpace(o.Search)
	return o, nil
}

// matches reports whether p passes every filter in o.
func (o ListOptions) matches(p *model.Play) bool {
	switch {
	case o.HalfInning != "" && p.HalfInning != o.HalfInning:
		return false
	case o.Outs != nil && p.Outs != *o.Outs:
		return false
	case !flagMatches(o.RunnersOnFirst, p.RunnersOnFirst),
		!flagMatches(o.RunnersOnSecond, p.RunnersOnSecond),
		!flagMatches(o.RunnersOnThird, p.RunnersOnThird),
		!flagMatches(o.GeneratedFromEngine, p.GeneratedFromEngine):
		return false
	}
	if o.Search == "" {
		return true
	}
	return strings.Contains(searchText(p), foldSearch(o.Search))
}

// searchText folds the searchable fields into one lower-cased string. The
// separator keeps a needle from matching across two fields.
func searchText(p *model.Play) string {
	return foldSearch(strings.Join([]string{
		p.OffenseTeam, p.DefenseTeam, p.ContextNotes,
		p.CatcherInstructions, p.OffensiveSign, p.RunnerInstructions,
	}, "\x00"))
}

// foldSearch applies Unicode lower-casing so both backends match the same way.
func foldSearch(s string) string {
	return strings.ToLower(s)
}

func flagMatches(want *bool, got bool) bool {
	return want == nil || *want == got
}

// sortPlays orders by creation time descending, then id ascending.
func sortPlays(plays []model.Play) {
	slices.SortFunc(plays, func(a, b model.Play) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
}

// stamp drops the monotonic reading so times compare equal after storage.
func stamp(now func() time.Time) time.Time {
	return now().UTC().Round(0)
}
