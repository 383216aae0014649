package persistence

import (
	"context"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/kmatts/pokernight/internal/parser"
)

const sessionLog = `
"alice @ Ab12" created the game with a stack of 1000.
The admin approved the player "bob @ Cd34" participation with a stack of 1000.
-- starting hand #1  (No Limit Texas Hold'em) (dealer: "alice @ Ab12") --
"alice @ Ab12" posts a small blind of 5
"bob @ Cd34" posts a big blind of 10
Your hand is Ah, Kh
"alice @ Ab12" calls 10
"bob @ Cd34" checks
Flop:  [As, 7h, 2d]
"alice @ Ab12" bets 20
"bob @ Cd34" folds
"alice @ Ab12" collected 40 from pot
-- ending hand #1 --
-- starting hand #2  (No Limit Texas Hold'em) (dead button) --
"bob @ Cd34" posts a small blind of 5
"alice @ Ab12" posts a big blind of 10
"bob @ Cd34" folds
"alice @ Ab12" collected 15 from pot
-- ending hand #2 --
`

func testEvening(t *testing.T) *parser.Evening {
	t.Helper()
	base := time.Date(2023, 4, 1, 21, 0, 0, 0, time.UTC)
	var records []parser.Record
	for i, line := range strings.Split(strings.TrimSpace(sessionLog), "\n") {
		records = append(records, parser.Record{
			Text: strings.TrimSpace(line),
			At:   base.Add(time.Duration(i) * time.Second),
		})
	}
	evening, err := parser.NewParser("alice @ Ab12").Parse(records)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return evening
}

func repositories(t *testing.T) map[string]SessionRepository {
	t.Helper()
	sqlite, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "pokernight.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository: %v", err)
	}
	t.Cleanup(func() { _ = sqlite.Close() })
	return map[string]SessionRepository{
		"sqlite": sqlite,
		"memory": NewMemoryRepository(),
	}
}

func TestRepositoryRoundTrip(t *testing.T) {
	for name, repo := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			evening := testEvening(t)
			uid := GenerateSessionUID(evening, SessionSourceRef{})

			res, err := repo.UpsertSessions(ctx, []PersistedSession{
				{Evening: evening, Source: SessionSourceRef{SourcePath: "poker_now_log_x.csv"}},
			})
			if err != nil {
				t.Fatalf("UpsertSessions: %v", err)
			}
			if res.Inserted != 1 || res.Updated != 0 {
				t.Fatalf("upsert result = %+v", res)
			}

			loaded, err := repo.GetSessionByUID(ctx, uid)
			if err != nil {
				t.Fatalf("GetSessionByUID: %v", err)
			}
			if loaded == nil {
				t.Fatal("session not found after upsert")
			}

			if loaded.Username != evening.Username {
				t.Errorf("username = %q", loaded.Username)
			}
			if !reflect.DeepEqual(loaded.Players, evening.Players) {
				t.Errorf("players = %v, want %v", loaded.Players, evening.Players)
			}
			if len(loaded.Rounds) != 2 {
				t.Fatalf("rounds = %d, want 2", len(loaded.Rounds))
			}

			r1 := loaded.Rounds[0]
			if r1.Dealer != "alice @ Ab12" {
				t.Errorf("round 1 dealer = %q", r1.Dealer)
			}
			if !reflect.DeepEqual(r1.Flop, []string{"As", "7h", "2d"}) {
				t.Errorf("round 1 flop = %v", r1.Flop)
			}
			if len(r1.PreflopMoves) != 4 || len(r1.FlopMoves) != 2 {
				t.Errorf("round 1 moves = %d preflop, %d flop", len(r1.PreflopMoves), len(r1.FlopMoves))
			}
			if !reflect.DeepEqual(r1.MoneySpent(), evening.Rounds[0].MoneySpent()) {
				t.Errorf("round 1 money spent = %v", r1.MoneySpent())
			}
			if len(r1.Winners) != 1 || r1.Winners[0].Player != "alice @ Ab12" || r1.Winners[0].Hand != nil {
				t.Errorf("round 1 winners = %+v", r1.Winners)
			}
			if !reflect.DeepEqual(r1.KnownHands["alice @ Ab12"], []string{"Ah", "Kh"}) {
				t.Errorf("round 1 known hands = %v", r1.KnownHands)
			}
			if !reflect.DeepEqual(r1.InitialAmounts, evening.Rounds[0].InitialAmounts) {
				t.Errorf("round 1 initial amounts = %v", r1.InitialAmounts)
			}

			r2 := loaded.Rounds[1]
			if r2.Dealer != "" {
				t.Errorf("round 2 dealer = %q, want empty for dead button", r2.Dealer)
			}
			if r2.Flop != nil {
				t.Errorf("round 2 flop = %v, want nil", r2.Flop)
			}

			if !reflect.DeepEqual(loaded.HistoricalAmounts, evening.HistoricalAmounts) {
				t.Errorf("historical amounts = %v, want %v", loaded.HistoricalAmounts, evening.HistoricalAmounts)
			}
		})
	}
}

func TestRepositoryUpsertIsIdempotent(t *testing.T) {
	for name, repo := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			evening := testEvening(t)
			ps := []PersistedSession{{Evening: evening}}

			if _, err := repo.UpsertSessions(ctx, ps); err != nil {
				t.Fatal(err)
			}
			res, err := repo.UpsertSessions(ctx, ps)
			if err != nil {
				t.Fatal(err)
			}
			if res.Inserted != 0 || res.Updated != 1 {
				t.Errorf("second upsert = %+v, want pure update", res)
			}

			_, total, err := repo.ListSessionSummaries(ctx, SessionFilter{})
			if err != nil {
				t.Fatal(err)
			}
			if total != 1 {
				t.Errorf("total sessions = %d, want 1", total)
			}
		})
	}
}

func TestRepositorySummariesAndFilter(t *testing.T) {
	for name, repo := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			evening := testEvening(t)
			if _, err := repo.UpsertSessions(ctx, []PersistedSession{
				{Evening: evening, Source: SessionSourceRef{SourcePath: "poker_now_log_x.csv"}},
			}); err != nil {
				t.Fatal(err)
			}

			summaries, total, err := repo.ListSessionSummaries(ctx, SessionFilter{Username: "alice @ Ab12"})
			if err != nil {
				t.Fatal(err)
			}
			if total != 1 || len(summaries) != 1 {
				t.Fatalf("summaries = %v total %d", summaries, total)
			}
			s := summaries[0]
			if s.NumRounds != 2 || s.NumPlayers != 2 || s.SourcePath != "poker_now_log_x.csv" {
				t.Errorf("summary = %+v", s)
			}
			if s.StartedAt.IsZero() {
				t.Error("summary started_at not derived from actions")
			}

			_, total, err = repo.ListSessionSummaries(ctx, SessionFilter{Username: "nobody"})
			if err != nil {
				t.Fatal(err)
			}
			if total != 0 {
				t.Errorf("total for unknown user = %d, want 0", total)
			}

			evenings, err := repo.ListSessions(ctx, SessionFilter{})
			if err != nil {
				t.Fatal(err)
			}
			if len(evenings) != 1 || len(evenings[0].Rounds) != 2 {
				t.Errorf("ListSessions = %d sessions", len(evenings))
			}
		})
	}
}

func TestGetSessionByUIDMissing(t *testing.T) {
	for name, repo := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			loaded, err := repo.GetSessionByUID(context.Background(), "no-such-uid")
			if err != nil {
				t.Fatalf("GetSessionByUID: %v", err)
			}
			if loaded != nil {
				t.Errorf("loaded = %+v, want nil", loaded)
			}
		})
	}
}

func TestGenerateSessionUIDStable(t *testing.T) {
	a := GenerateSessionUID(testEvening(t), SessionSourceRef{SourcePath: "a.csv"})
	b := GenerateSessionUID(testEvening(t), SessionSourceRef{SourcePath: "b.csv"})
	if a != b {
		t.Error("uid must not depend on the source path")
	}
	if len(a) != 64 {
		t.Errorf("uid length = %d, want sha256 hex", len(a))
	}
}

func TestMemoryRepositoryIsolation(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	evening := testEvening(t)
	uid := GenerateSessionUID(evening, SessionSourceRef{})
	if _, err := repo.UpsertSessions(ctx, []PersistedSession{{Evening: evening}}); err != nil {
		t.Fatal(err)
	}

	first, err := repo.GetSessionByUID(ctx, uid)
	if err != nil {
		t.Fatal(err)
	}
	first.Players["alice @ Ab12"] = -1
	first.Rounds[0].Winners[0].Amount = -1

	second, err := repo.GetSessionByUID(ctx, uid)
	if err != nil {
		t.Fatal(err)
	}
	if second.Players["alice @ Ab12"] == -1 || second.Rounds[0].Winners[0].Amount == -1 {
		t.Error("stored session was mutated through a returned clone")
	}
}
