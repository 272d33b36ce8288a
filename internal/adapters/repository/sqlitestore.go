package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/okian/dugout/internal/domain/model"
	"github.com/okian/dugout/pkg/metrics"
)

// InMemoryDSN opens a private SQLite database that lives as long as the store.
const InMemoryDSN = ":memory:"

const schema = `
CREATE TABLE IF NOT EXISTS plays (
	id                    TEXT PRIMARY KEY,
	offense_team          TEXT NOT NULL,
	defense_team          TEXT NOT NULL,
	inning                INTEGER NOT NULL,
	half_inning           TEXT NOT NULL,
	outs                  INTEGER NOT NULL,
	balls                 INTEGER NOT NULL,
	strikes               INTEGER NOT NULL,
	runners_on_first      INTEGER NOT NULL,
	runners_on_second     INTEGER NOT NULL,
	runners_on_third      INTEGER NOT NULL,
	score_difference      INTEGER NOT NULL,
	context_notes         TEXT NOT NULL,
	recommended_pitch     TEXT NOT NULL,
	defensive_alignment   TEXT NOT NULL,
	catcher_instructions  TEXT NOT NULL,
	offensive_sign        TEXT NOT NULL,
	runner_instructions   TEXT NOT NULL,
	actual_outcome        TEXT NOT NULL,
	generated_from_engine INTEGER NOT NULL,
	created_at            INTEGER NOT NULL,
	updated_at            INTEGER NOT NULL,
	search_text           TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS plays_created_at ON plays (created_at DESC, id);
`

const playColumns = `id, offense_team, defense_team, inning, half_inning, outs, balls, strikes,
	runners_on_first, runners_on_second, runners_on_third, score_difference, context_notes,
	recommended_pitch, defensive_alignment, catcher_instructions, offensive_sign,
	runner_instructions, actual_outcome, generated_from_engine, created_at, updated_at`

// SQLiteStore keeps the history in a SQLite database through database/sql.
type SQLiteStore struct {
	settings

	db    *sql.DB
	close  sync.Once
	closed atomic.Bool

	wg       sync.WaitGroup
	stopChan chan struct{}
}

// OpenSQLite opens (creating if needed) the database at path and applies the schema.
func OpenSQLite(ctx context.Context, path string, opts ...Option) (*SQLiteStore, error) {
	if path != InMemoryDSN {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create history directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open history database: %w", err)
	}
	// SQLite allows one writer; a single connection also keeps :memory: shared.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply history schema: %w", err)
	}

	s := &SQLiteStore{
		settings: defaultSettings(),
		db:       db,
		stopChan: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(&s.settings)
	}
	s.startMetricsUpdater(ctx)
	return s, nil
}

// Create implements Store.Create.
func (s *SQLiteStore) Create(ctx context.Context, p model.Play) (model.Play, error) {
	defer observe("create", time.Now())

	if s.closed.Load() {
		return model.Play{}, ErrClosed
	}

	if p.ID == "" {
		p.ID = s.newID()
	}
	now := stamp(s.now)
	p.CreatedAt, p.UpdatedAt = now, now

	alignment, err := json.Marshal(p.DefensiveAlignment)
	if err != nil {
		return model.Play{}, fmt.Errorf("encode alignment: %w", err)
	}

	res, err := s.db.ExecContext(ctx, `INSERT INTO plays (`+playColumns+`, search_text)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO NOTHING`,
		p.ID, p.OffenseTeam, p.DefenseTeam, p.Inning, string(p.HalfInning), p.Outs, p.Balls, p.Strikes,
		p.RunnersOnFirst, p.RunnersOnSecond, p.RunnersOnThird, p.ScoreDifference, p.ContextNotes,
		p.RecommendedPitch, string(alignment), p.CatcherInstructions, p.OffensiveSign,
		p.RunnerInstructions, p.ActualOutcome, p.GeneratedFromEngine,
		p.CreatedAt.UnixNano(), p.UpdatedAt.UnixNano(), searchText(&p),
	)
	if err != nil {
		return model.Play{}, fmt.Errorf("insert play: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return model.Play{}, ErrConflict
	}
	return p, nil
}

// Get implements Store.Get.
func (s *SQLiteStore) Get(ctx context.Context, id string) (model.Play, error) {
	defer observe("get", time.Now())

	if s.closed.Load() {
		return model.Play{}, ErrClosed
	}

	row := s.db.QueryRowContext(ctx, `SELECT `+playColumns+` FROM plays WHERE id = ?`, id)
	p, err := scanPlay(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Play{}, ErrNotFound
	}
	return p, err
}

// List implements Store.List.
func (s *SQLiteStore) List(ctx context.Context, opts ListOptions) ([]model.Play, int, error) {
	defer observe("list", time.Now())

	if s.closed.Load() {
		return nil, 0, ErrClosed
	}

	opts, err := opts.normalize()
	if err != nil {
		return nil, 0, err
	}
	where, args := whereClause(opts)

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM plays`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count plays: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+playColumns+` FROM plays`+where+` ORDER BY created_at DESC, id ASC LIMIT ? OFFSET ?`,
		append(args, opts.Limit, opts.Offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("list plays: %w", err)
	}
	defer rows.Close()

	plays := make([]model.Play, 0, opts.Limit)
	for rows.Next() {
		p, err := scanPlay(rows)
		if err != nil {
			return nil, 0, err
		}
		plays = append(plays, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list plays: %w", err)
	}
	return plays, total, nil
}

// Update implements Store.Update.
func (s *SQLiteStore) Update(ctx context.Context, p model.Play) (model.Play, error) {
	defer observe("update", time.Now())

	if s.closed.Load() {
		return model.Play{}, ErrClosed
	}

	alignment, err := json.Marshal(p.DefensiveAlignment)
	if err != nil {
		return model.Play{}, fmt.Errorf("encode alignment: %w", err)
	}
	updated := stamp(s.now)

	res, err := s.db.ExecContext(ctx, `UPDATE plays SET
		offense_team = ?, defense_team = ?, inning = ?, half_inning = ?, outs = ?, balls = ?, strikes = ?,
		runners_on_first = ?, runners_on_second = ?, runners_on_third = ?, score_difference = ?,
		context_notes = ?, recommended_pitch = ?, defensive_alignment = ?, catcher_instructions = ?,
		offensive_sign = ?, runner_instructions = ?, actual_outcome = ?, updated_at = ?, search_text = ?
		WHERE id = ?`,
		p.OffenseTeam, p.DefenseTeam, p.Inning, string(p.HalfInning), p.Outs, p.Balls, p.Strikes,
		p.RunnersOnFirst, p.RunnersOnSecond, p.RunnersOnThird, p.ScoreDifference,
		p.ContextNotes, p.RecommendedPitch, string(alignment), p.CatcherInstructions,
		p.OffensiveSign, p.RunnerInstructions, p.ActualOutcome, updated.UnixNano(), searchText(&p),
		p.ID,
	)
	if err != nil {
		return model.Play{}, fmt.Errorf("update play: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return model.Play{}, ErrNotFound
	}
	return s.Get(ctx, p.ID)
}

// Delete implements Store.Delete.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	defer observe("delete", time.Now())

	if s.closed.Load() {
		return ErrClosed
	}

	res, err := s.db.ExecContext(ctx, `DELETE FROM plays WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete play: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// Count implements Store.Count. Query failures and a closed store count as zero.
func (s *SQLiteStore) Count(ctx context.Context) int {
	if s.closed.Load() {
		return 0
	}
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM plays`).Scan(&n); err != nil {
		return 0
	}
	return n
}

// Close stops the metrics goroutine and closes the database. Later calls
// return ErrClosed.
func (s *SQLiteStore) Close() error {
	var err error
	s.close.Do(func() {
		s.closed.Store(true)
		close(s.stopChan)
		s.wg.Wait()
		err = s.db.Close()
	})
	return err
}

func (s *SQLiteStore) startMetricsUpdater(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.metricsUpdateInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stopChan:
				return
			case <-ticker.C:
				metrics.UpdateHistoryRecords(s.Count(ctx))
			}
		}
	}()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPlay(sc scanner) (model.Play, error) {
	var (
		p                  model.Play
		half, alignment    string
		created, updatedAt int64
	)
	err := sc.Scan(
		&p.ID, &p.OffenseTeam, &p.DefenseTeam, &p.Inning, &half, &p.Outs, &p.Balls, &p.Strikes,
		&p.RunnersOnFirst, &p.RunnersOnSecond, &p.RunnersOnThird, &p.ScoreDifference, &p.ContextNotes,
		&p.RecommendedPitch, &alignment, &p.CatcherInstructions, &p.OffensiveSign,
		&p.RunnerInstructions, &p.ActualOutcome, &p.GeneratedFromEngine, &created, &updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return p, err
		}
		return p, fmt.Errorf("scan play: %w", err)
	}
	p.HalfInning = model.HalfInning(half)
	if err := json.Unmarshal([]byte(alignment), &p.DefensiveAlignment); err != nil {
		return p, fmt.Errorf("decode alignment: %w", err)
	}
	p.CreatedAt = time.Unix(0, created).UTC()
	p.UpdatedAt = time.Unix(0, updatedAt).UTC()
	return p, nil
}

func whereClause(o ListOptions) (string, []any) {
	var (
		conds []string
		args  []any
	)
	if o.HalfInning != "" {
		conds = append(conds, "half_inning = ?")
		args = append(args, string(o.HalfInning))
	}
	if o.Outs != nil {
		conds = append(conds, "outs = ?")
		args = append(args, *o.Outs)
	}
	for col, v := range map[string]*bool{
		"runners_on_first":      o.RunnersOnFirst,
		"runners_on_second":     o.RunnersOnSecond,
		"runners_on_third":      o.RunnersOnThird,
		"generated_from_engine": o.GeneratedFromEngine,
	} {
		if v != nil {
			conds = append(conds, col+" = ?")
			args = append(args, *v)
		}
	}
	if o.Search != "" {
		// search_text is folded in Go; LOWER() in SQLite only covers ASCII.
		conds = append(conds, "search_text LIKE ? ESCAPE '\\'")
		args = append(args, "%"+escapeLike(foldSearch(o.Search))+"%")
	}
	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
