// Package loader fills the directory store from its remote and local
// sources.
//
// Every load is a single attempt. A load either replaces its target
// collections wholesale or leaves them exactly as they were; it never
// applies partially. Failures are reported as an Outcome and logged, and
// are never turned into an error for search callers: until a source loads,
// its collections simply read as empty.
package loader

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/aanand-mishra/student-directory/internal/config"
	"github.com/aanand-mishra/student-directory/internal/storage"
	"github.com/aanand-mishra/student-directory/internal/storage/sqlite"
	"github.com/aanand-mishra/student-directory/internal/types"
)

// Outcome is the result of one load call.
type Outcome struct {
	Source types.Source  `json:"source"`
	OK     bool          `json:"ok"`
	Count  int           `json:"count"`
	Reason string        `json:"reason,omitempty"`
	Took   time.Duration `json:"took"`
}

// Writer is the part of the store the loader writes to.
type Writer interface {
	ReplaceStudents(records []types.Record)
	ReplaceSessions(records []types.Record)
	ReplaceStaffAndReference(ref storage.Reference)
}

// Loader performs the three startup loads against one store.
type Loader struct {
	store   Writer
	sources config.Sources
	client  *http.Client
	log     *slog.Logger
}

// New returns a Loader writing into store. A nil client gets one with
// sources.Timeout; a nil logger falls back to slog.Default().
func New(store Writer, sources config.Sources, client *http.Client, log *slog.Logger) *Loader {
	if client == nil {
		client = &http.Client{Timeout: sources.Timeout}
	}
	if log == nil {
		log = slog.Default()
	}
	return &Loader{store: store, sources: sources, client: client, log: log}
}

// LoadAll runs the three loads concurrently and returns their outcomes in
// a fixed order: local roster, HR, sessions.
func (l *Loader) LoadAll(ctx context.Context) []Outcome {
	outcomes := make([]Outcome, 3)

	// Loads never return an error to the group; a failing source must not
	// cancel the others.
	var g errgroup.Group
	g.Go(func() error { outcomes[0] = l.LoadPrimary(ctx); return nil })
	g.Go(func() error { outcomes[1] = l.LoadStaffAndReference(ctx); return nil })
	g.Go(func() error { outcomes[2] = l.LoadSessions(ctx); return nil })
	_ = g.Wait()

	return outcomes
}

// LoadPrimary loads the local student roster.
func (l *Loader) LoadPrimary(ctx context.Context) Outcome {
	return l.run(ctx, types.SourceLocal, func(ctx context.Context) (int, error) {
		records, err := l.readRoster(ctx)
		if err != nil {
			return 0, err
		}
		l.store.ReplaceStudents(records)
		return len(records), nil
	})
}

// LoadStaffAndReference loads programs, colleges, staff and departments
// from the HR endpoint in one round trip.
func (l *Loader) LoadStaffAndReference(ctx context.Context) Outcome {
	return l.run(ctx, types.SourceHR, func(ctx context.Context) (int, error) {
		body, err := l.fetch(ctx, l.sources.HRURL)
		if err != nil {
			return 0, err
		}
		ref, err := decodeHR(body)
		if err != nil {
			return 0, err
		}
		l.store.ReplaceStaffAndReference(ref)
		return len(ref.Employees), nil
	})
}

// LoadSessions loads the student session records.
func (l *Loader) LoadSessions(ctx context.Context) Outcome {
	return l.run(ctx, types.SourceSession, func(ctx context.Context) (int, error) {
		body, err := l.fetch(ctx, l.sources.SessionsURL)
		if err != nil {
			return 0, err
		}
		records, err := decodeSessions(body)
		if err != nil {
			return 0, err
		}
		l.store.ReplaceSessions(records)
		return len(records), nil
	})
}

func (l *Loader) run(ctx context.Context, src types.Source, load func(context.Context) (int, error)) Outcome {
	start := time.Now()
	count, err := load(ctx)
	out := Outcome{Source: src, OK: err == nil, Count: count, Took: time.Since(start)}

	if err != nil {
		out.Reason = err.Error()
		l.log.Warn("source not loaded, keeping previous data",
			slog.String("source", string(src)),
			slog.String("reason", out.Reason))
		return out
	}

	l.log.Info("source loaded",
		slog.String("source", string(src)),
		slog.Int("count", count),
		slog.Duration("took", out.Took))
	return out
}

func (l *Loader) readRoster(ctx context.Context) ([]types.Record, error) {
	path := l.sources.StudentsPath

	switch {
	case strings.HasPrefix(path, "http://"), strings.HasPrefix(path, "https://"):
		body, err := l.fetch(ctx, path)
		if err != nil {
			return nil, err
		}
		return decodeRoster(body)

	case isSQLite(path):
		db, err := sqlite.New(ctx, path, l.sources.StudentsTable)
		if err != nil {
			return nil, err
		}
		defer db.Close()
		return db.Students(ctx)

	default:
		body, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read roster: %w", err)
		}
		return decodeRoster(body)
	}
}

func (l *Loader) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("fetch: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("fetch: read body: %w", err)
	}
	return body, nil
}

func isSQLite(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite", ".sqlite3":
		return true
	}
	return false
}

// Ensure the store satisfies the writer contract.
var _ Writer = (*storage.Store)(nil)
