// Package application wires log reading, session reconstruction, storage
// and reporting together behind a small service facade that the CLI layer
// depends on.
package application

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync"

	"github.com/kmatts/pokernight/internal/logreader"
	"github.com/kmatts/pokernight/internal/parser"
	"github.com/kmatts/pokernight/internal/persistence"
	"github.com/kmatts/pokernight/internal/report"
	"github.com/kmatts/pokernight/internal/series"
	"github.com/kmatts/pokernight/internal/stats"
)

// AppService is the interface the CLI layer depends on for log import and
// report queries. application.Service satisfies this interface.
type AppService interface {
	ImportFile(ctx context.Context, path string) (string, error)
	ImportAllLogs(ctx context.Context, onProgress func(ImportProgress)) (ImportSummary, error)
	SessionStats(ctx context.Context, uid string) (*stats.Stats, *parser.Evening, error)
	SessionReport(ctx context.Context, uid string) (string, error)
	SeriesReport(ctx context.Context, spec series.TournamentSpec, mapping *series.NameMapping, f persistence.SessionFilter) (string, error)
	ListSessionSummaries(ctx context.Context, f persistence.SessionFilter) ([]persistence.SessionSummary, int, error)
	Close() error
}

// LogFileLocator returns candidate log file paths, newest first.
type LogFileLocator func() ([]string, error)

type Service struct {
	repo           persistence.SessionRepository
	username       string
	detectLogFiles LogFileLocator
	renderer       *report.Renderer

	// Per-session stats cache. UIDs are content-derived, so a cached
	// entry never goes stale; the map is still cleared on import to
	// keep it from growing over long runs.
	cacheMu    sync.Mutex
	statsCache map[string]*stats.Stats
}

func NewService(repo persistence.SessionRepository, username string, locator LogFileLocator) *Service {
	if locator == nil {
		locator = func() ([]string, error) {
			return nil, fmt.Errorf("log file locator is not configured")
		}
	}

	return &Service{
		repo:           repo,
		username:       username,
		detectLogFiles: locator,
		renderer:       report.NewRenderer(),
	}
}

// ImportProgress carries per-file progress information during a bulk import.
type ImportProgress struct {
	// Current is the 1-based index of the file currently being saved.
	Current int
	// Total is the total number of files to import.
	Total int
	// Path is the path of the file being saved.
	Path string
}

// ImportSummary reports the outcome of a bulk import.
type ImportSummary struct {
	Inserted int
	Updated  int
	// LatestUID identifies the newest imported session.
	LatestUID string
}

// parseResult holds the outcome of parsing a single log file.
type parseResult struct {
	path    string
	session persistence.PersistedSession
	err     error
}

// parseLogFile reads and reconstructs a single export. It does not touch
// the database.
func parseLogFile(path, username string) parseResult {
	result := parseResult{path: path}

	records, err := logreader.ReadFile(path)
	if err != nil {
		result.err = err
		return result
	}

	evening, err := parser.NewParser(username).Parse(records)
	if err != nil {
		result.err = err
		return result
	}

	source := persistence.SessionSourceRef{SourcePath: path}
	source.SessionUID = persistence.GenerateSessionUID(evening, source)
	result.session = persistence.PersistedSession{Evening: evening, Source: source}
	return result
}

// ImportFile reads, reconstructs and stores a single export file. It
// returns the UID of the stored session.
func (s *Service) ImportFile(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	res := parseLogFile(path, s.username)
	if res.err != nil {
		return "", fmt.Errorf("import %q: %w", path, res.err)
	}

	if _, err := s.repo.UpsertSessions(ctx, []persistence.PersistedSession{res.session}); err != nil {
		return "", fmt.Errorf("save %q: %w", path, err)
	}

	s.invalidateStatsCache()
	slog.Debug("file imported", "path", path, "uid", res.session.Source.SessionUID, "rounds", len(res.session.Evening.Rounds))
	return res.session.Source.SessionUID, nil
}

// ImportAllLogs imports every located log file, calling onProgress after
// each file is saved. Files are parsed concurrently using a worker pool;
// the DB writes are serialized, oldest file first. onProgress may be nil.
func (s *Service) ImportAllLogs(ctx context.Context, onProgress func(ImportProgress)) (ImportSummary, error) {
	var summary ImportSummary

	if err := ctx.Err(); err != nil {
		return summary, err
	}

	paths, err := s.detectLogFiles()
	if err != nil {
		return summary, err
	}
	if len(paths) == 0 {
		return summary, fmt.Errorf("no log files found")
	}

	slog.Info("importing logs", "files", len(paths))

	// The locator returns newest first. Import oldest -> newest.
	reversed := make([]string, len(paths))
	for i := range paths {
		reversed[i] = paths[len(paths)-1-i]
	}

	workers := runtime.GOMAXPROCS(0)
	if workers > 4 {
		workers = 4
	}
	if workers < 1 {
		workers = 1
	}
	slog.Debug("parallel parse", "files", len(reversed), "workers", workers)

	jobCh := make(chan string, len(reversed))
	resultCh := make(chan parseResult, workers*2)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range jobCh {
				if ctx.Err() != nil {
					return
				}
				resultCh <- parseLogFile(path, s.username)
			}
		}()
	}

	for _, p := range reversed {
		jobCh <- p
	}
	close(jobCh)

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	// Collect results keyed by path; workers finish out of order but the
	// DB writes below must stay oldest first.
	collected := make(map[string]parseResult, len(reversed))
	for res := range resultCh {
		collected[res.path] = res
	}

	prog := ImportProgress{Total: len(reversed)}
	for _, path := range reversed {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		res, ok := collected[path]
		if !ok {
			return summary, fmt.Errorf("parse %q: cancelled", path)
		}
		if res.err != nil {
			return summary, fmt.Errorf("parse %q: %w", path, res.err)
		}

		out, err := s.repo.UpsertSessions(ctx, []persistence.PersistedSession{res.session})
		if err != nil {
			return summary, fmt.Errorf("save %q: %w", path, err)
		}
		summary.Inserted += out.Inserted
		summary.Updated += out.Updated
		summary.LatestUID = res.session.Source.SessionUID

		prog.Current++
		prog.Path = path
		if onProgress != nil {
			onProgress(prog)
		}
		slog.Debug("file imported", "path", path, "uid", res.session.Source.SessionUID)
	}

	s.invalidateStatsCache()
	slog.Info("import complete", "files", len(reversed), "inserted", summary.Inserted, "updated", summary.Updated)
	return summary, nil
}

// SessionStats returns the per-player statistics for a stored session
// along with the session itself.
func (s *Service) SessionStats(ctx context.Context, uid string) (*stats.Stats, *parser.Evening, error) {
	evening, err := s.repo.GetSessionByUID(ctx, uid)
	if err != nil {
		return nil, nil, err
	}
	if evening == nil {
		return nil, nil, fmt.Errorf("session %q not found", uid)
	}

	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()

	if cached, ok := s.statsCache[uid]; ok {
		return cached, evening, nil
	}

	result := stats.NewCalculator().Calculate(evening)
	if s.statsCache == nil {
		s.statsCache = make(map[string]*stats.Stats)
	}
	s.statsCache[uid] = result
	return result, evening, nil
}

// SessionReport renders the full text report for a stored session.
func (s *Service) SessionReport(ctx context.Context, uid string) (string, error) {
	result, evening, err := s.SessionStats(ctx, uid)
	if err != nil {
		return "", err
	}
	return s.renderer.Session(result, evening), nil
}

// SeriesStats aggregates all stored sessions matching the filter into
// tournament-series standings.
func (s *Service) SeriesStats(ctx context.Context, spec series.TournamentSpec, mapping *series.NameMapping, f persistence.SessionFilter) (*series.Stats, error) {
	evenings, err := s.repo.ListSessions(ctx, f)
	if err != nil {
		return nil, err
	}
	if len(evenings) == 0 {
		return nil, fmt.Errorf("no stored sessions match the filter")
	}

	result := series.NewStats(spec, mapping)
	result.AddEvenings(evenings)
	return result, nil
}

// SeriesReport renders the leaderboards for all stored sessions matching
// the filter.
func (s *Service) SeriesReport(ctx context.Context, spec series.TournamentSpec, mapping *series.NameMapping, f persistence.SessionFilter) (string, error) {
	result, err := s.SeriesStats(ctx, spec, mapping, f)
	if err != nil {
		return "", err
	}
	return s.renderer.Series(result), nil
}

// ListSessionSummaries returns lightweight session summaries for list
// display plus the total count, newest first.
func (s *Service) ListSessionSummaries(ctx context.Context, f persistence.SessionFilter) ([]persistence.SessionSummary, int, error) {
	return s.repo.ListSessionSummaries(ctx, f)
}

func (s *Service) invalidateStatsCache() {
	s.cacheMu.Lock()
	s.statsCache = nil
	s.cacheMu.Unlock()
}

func (s *Service) Close() error {
	return s.repo.Close()
}
