// Package archive stores Union Lotto draws and generated predictions.
//
// Draws live in a sqlite database for durability and in a btree index for
// ordered in-memory reads. The database is the source of truth; the index is
// rebuilt from it on Open and serves every read after that.
package archive

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/btree"
	_ "modernc.org/sqlite"

	"github.com/rewired-gh/lottoracle/internal/logger"
	"github.com/rewired-gh/lottoracle/internal/models"
)

const btreeDegree = 32

const schema = `
CREATE TABLE IF NOT EXISTS draws (
	issue TEXT PRIMARY KEY,
	reds TEXT NOT NULL,
	blue INTEGER NOT NULL,
	open_date TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS predictions (
	id TEXT PRIMARY KEY,
	method TEXT NOT NULL,
	reds TEXT NOT NULL,
	blue INTEGER NOT NULL,
	recent_window INTEGER NOT NULL DEFAULT 0,
	predictor TEXT NOT NULL,
	generated_at TEXT NOT NULL
);
`

// issueLess orders issues numerically: shorter digit strings sort first,
// equal lengths sort lexicographically. Issue numbers never carry leading
// zeros, so this matches integer order without parsing.
func issueLess(a, b models.Draw) bool {
	if len(a.Issue) != len(b.Issue) {
		return len(a.Issue) < len(b.Issue)
	}
	return a.Issue < b.Issue
}

// Archive is a durable store of draws and predictions. It is safe for
// concurrent use within one process.
type Archive struct {
	mu   sync.RWMutex
	db   *sql.DB
	game models.Game
	idx  *btree.BTreeG[models.Draw]
}

// Open opens or creates the archive at path. ":memory:" gives a throwaway
// in-memory archive.
func Open(path string, game models.Game) (*Archive, error) {
	if err := game.Validate(); err != nil {
		return nil, fmt.Errorf("invalid game: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One connection keeps WAL writers from tripping over each other and
	// keeps ":memory:" databases from silently forking per connection.
	db.SetMaxOpenConns(1)

	a := &Archive{
		db:   db,
		game: game,
		idx:  btree.NewG(btreeDegree, issueLess),
	}
	if err := a.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	if err := a.loadIndex(); err != nil {
		db.Close()
		return nil, err
	}
	return a, nil
}

// Close releases the underlying database.
func (a *Archive) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.db.Close()
}

func (a *Archive) initSchema() error {
	if _, err := a.db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return fmt.Errorf("failed to enable WAL: %w", err)
	}
	if _, err := a.db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		return fmt.Errorf("failed to set busy timeout: %w", err)
	}
	if _, err := a.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

func (a *Archive) loadIndex() error {
	rows, err := a.db.Query("SELECT issue, reds, blue, open_date FROM draws")
	if err != nil {
		return fmt.Errorf("failed to load draws: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var issue, reds, date string
		var blue int
		if err := rows.Scan(&issue, &reds, &blue, &date); err != nil {
			return fmt.Errorf("failed to scan draw: %w", err)
		}
		balls, err := splitBalls(reds, a.game.RedCount)
		if err != nil {
			logger.Warn("skipping stored draw %q: %v", issue, err)
			continue
		}
		draw := models.Draw{Issue: issue, RedBalls: balls, BlueBall: blue, Date: date}
		if err := draw.Validate(a.game); err != nil {
			logger.Warn("skipping stored draw %q: %v", issue, err)
			continue
		}
		a.idx.ReplaceOrInsert(draw)
	}
	return rows.Err()
}

// InsertDraws stores the draws that are not yet archived and reports how many
// were added. Known issues are skipped silently, so repeated ingestion of an
// overlapping feed page is idempotent. Any invalid draw aborts the whole
// batch.
func (a *Archive) InsertDraws(draws []models.Draw) (int, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	tx, err := a.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	stmt, err := tx.Prepare("INSERT INTO draws (issue, reds, blue, open_date) VALUES (?, ?, ?, ?)")
	if err != nil {
		tx.Rollback()
		return 0, fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	fresh := make([]models.Draw, 0, len(draws))
	batch := make(map[string]bool, len(draws))
	for _, d := range draws {
		if err := d.Validate(a.game); err != nil {
			tx.Rollback()
			return 0, fmt.Errorf("invalid draw %q: %w", d.Issue, err)
		}
		if batch[d.Issue] {
			continue
		}
		if _, known := a.idx.Get(models.Draw{Issue: d.Issue}); known {
			continue
		}
		if _, err := stmt.Exec(d.Issue, joinBalls(d.RedBalls), d.BlueBall, d.Date); err != nil {
			tx.Rollback()
			return 0, fmt.Errorf("failed to insert draw %q: %w", d.Issue, err)
		}
		batch[d.Issue] = true
		fresh = append(fresh, cloneDraw(d))
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit draws: %w", err)
	}
	// Index only after the transaction is durable.
	for _, d := range fresh {
		a.idx.ReplaceOrInsert(d)
	}
	return len(fresh), nil
}

// Draws returns all archived draws in chronological order.
func (a *Archive) Draws() []models.Draw {
	a.mu.RLock()
	defer a.mu.RUnlock()

	out := make([]models.Draw, 0, a.idx.Len())
	a.idx.Ascend(func(d models.Draw) bool {
		out = append(out, cloneDraw(d))
		return true
	})
	return out
}

// RecentDraws returns the last n draws in chronological order. n at or below
// zero yields nil; n beyond the archive yields everything.
func (a *Archive) RecentDraws(n int) []models.Draw {
	if n <= 0 {
		return nil
	}
	a.mu.RLock()
	defer a.mu.RUnlock()

	if n > a.idx.Len() {
		n = a.idx.Len()
	}
	out := make([]models.Draw, n)
	i := n
	a.idx.Descend(func(d models.Draw) bool {
		i--
		out[i] = cloneDraw(d)
		return i > 0
	})
	return out
}

// LatestIssue returns the newest archived issue number, if any.
func (a *Archive) LatestIssue() (string, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	d, ok := a.idx.Max()
	if !ok {
		return "", false
	}
	return d.Issue, true
}

// Len returns the number of archived draws.
func (a *Archive) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.idx.Len()
}

// SavePrediction persists a generated prediction.
func (a *Archive) SavePrediction(p models.Prediction) error {
	if err := p.Validate(a.game); err != nil {
		return fmt.Errorf("invalid prediction: %w", err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	_, err := a.db.Exec(
		"INSERT INTO predictions (id, method, reds, blue, recent_window, predictor, generated_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		p.ID, p.Method, joinBalls(p.RedBalls), p.BlueBall, p.RecentWindow, p.Predictor,
		p.GeneratedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("failed to insert prediction: %w", err)
	}
	return nil
}

// Predictions returns stored predictions, newest first. A non-positive limit
// returns all of them.
func (a *Archive) Predictions(limit int) ([]models.Prediction, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if limit <= 0 {
		limit = -1 // sqlite treats a negative LIMIT as unlimited
	}
	rows, err := a.db.Query(
		"SELECT id, method, reds, blue, recent_window, predictor, generated_at FROM predictions ORDER BY generated_at DESC, id LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load predictions: %w", err)
	}
	defer rows.Close()

	var preds []models.Prediction
	for rows.Next() {
		var p models.Prediction
		var reds, generatedAt string
		if err := rows.Scan(&p.ID, &p.Method, &reds, &p.BlueBall, &p.RecentWindow, &p.Predictor, &generatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan prediction: %w", err)
		}
		p.RedBalls, err = splitBalls(reds, a.game.RedCount)
		if err != nil {
			return nil, fmt.Errorf("corrupt prediction %q: %w", p.ID, err)
		}
		p.GeneratedAt, err = time.Parse(time.RFC3339Nano, generatedAt)
		if err != nil {
			return nil, fmt.Errorf("corrupt prediction %q: %w", p.ID, err)
		}
		preds = append(preds, p)
	}
	return preds, rows.Err()
}

func joinBalls(balls []int) string {
	parts := make([]string, len(balls))
	for i, b := range balls {
		parts[i] = strconv.Itoa(b)
	}
	return strings.Join(parts, " ")
}

func splitBalls(s string, want int) ([]int, error) {
	fields := strings.Fields(s)
	if len(fields) != want {
		return nil, fmt.Errorf("expected %d balls, got %d", want, len(fields))
	}
	balls := make([]int, len(fields))
	for i, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil {
			return nil, fmt.Errorf("bad ball %q: %w", f, err)
		}
		balls[i] = n
	}
	return balls, nil
}

func cloneDraw(d models.Draw) models.Draw {
	d.RedBalls = append([]int(nil), d.RedBalls...)
	return d
}
