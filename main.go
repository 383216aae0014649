package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/kmatts/pokernight/internal/application"
	"github.com/kmatts/pokernight/internal/applog"
	"github.com/kmatts/pokernight/internal/logreader"
	"github.com/kmatts/pokernight/internal/persistence"
	"github.com/kmatts/pokernight/internal/series"
)

var (
	version   = "dev"
	commit    = "local"
	buildDate = "unknown"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		username    = flag.String("username", "", "your player name exactly as it appears in the log (required)")
		dbPath      = flag.String("db", "pokernight.db", "path to the session database")
		logDir      = flag.String("dir", ".", "directory to scan for poker_now_log_*.csv when no files are given")
		configPath  = flag.String("config", "", "path to the tournament series config (YAML)")
		showSeries  = flag.Bool("series", false, "print series leaderboards over all stored sessions")
		listOnly    = flag.Bool("list", false, "list stored sessions and exit without importing")
		debug       = flag.Bool("debug", false, "enable debug logging")
		showVersion = flag.Bool("version", false, "print version and exit")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("pokernight %s (%s, %s)\n", version, commit, buildDate)
		return nil
	}

	applog.Init(*debug)

	var cfg *series.Config
	if *configPath != "" {
		var err error
		cfg, err = series.LoadConfig(*configPath)
		if err != nil {
			return fmt.Errorf("load config %q: %w", *configPath, err)
		}
	}
	if *showSeries && cfg == nil {
		return fmt.Errorf("-series requires -config with tournament settings")
	}

	repo, err := persistence.NewSQLiteRepository(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to open database %q, results will not be stored: %v\n", *dbPath, err)
		repo = nil
	}

	locator := func() ([]string, error) {
		if args := flag.Args(); len(args) > 0 {
			return args, nil
		}
		return logreader.DetectLogFiles(*logDir)
	}

	var svc *application.Service
	if repo != nil {
		svc = application.NewService(repo, *username, locator)
	} else {
		svc = application.NewService(persistence.NewMemoryRepository(), *username, locator)
	}
	defer svc.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if *listOnly {
		return listSessions(ctx, svc)
	}

	if *username == "" {
		return fmt.Errorf("-username is required")
	}

	summary, err := svc.ImportAllLogs(ctx, func(p application.ImportProgress) {
		if !applog.IsDebug() {
			return
		}
		fmt.Printf("imported %d/%d: %s\n", p.Current, p.Total, p.Path)
	})
	if err != nil {
		return err
	}

	out, err := svc.SessionReport(ctx, summary.LatestUID)
	if err != nil {
		return err
	}
	fmt.Print(out)

	if *showSeries {
		out, err := svc.SeriesReport(ctx, cfg.Spec(), cfg.Mapping(), persistence.SessionFilter{})
		if err != nil {
			return err
		}
		fmt.Print(out)
	}

	return nil
}

func listSessions(ctx context.Context, svc *application.Service) error {
	summaries, total, err := svc.ListSessionSummaries(ctx, persistence.SessionFilter{})
	if err != nil {
		return err
	}
	if total == 0 {
		fmt.Println("no stored sessions")
		return nil
	}
	for _, s := range summaries {
		fmt.Printf("%s  %s  rounds=%d players=%d  %s\n",
			s.SessionUID[:12], s.StartedAt.Format("2006-01-02 15:04"), s.NumRounds, s.NumPlayers, s.SourcePath)
	}
	return nil
}
