package stats

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/kmatts/pokernight/internal/parser"
)

const sessionLog = `
"alice @ Ab12" created the game with a stack of 1000.
The admin approved the player "bob @ Cd34" participation with a stack of 1000.
The admin approved the player "carol @ Ef56" participation with a stack of 1000.
-- starting hand #1  (No Limit Texas Hold'em) (dealer: "carol @ Ef56") --
"alice @ Ab12" posts a small blind of 5
"bob @ Cd34" posts a big blind of 10
Your hand is Ah, Kh
"carol @ Ef56" calls 10
"alice @ Ab12" raises to 30
"bob @ Cd34" raises to 90
"carol @ Ef56" folds
"alice @ Ab12" folds
Uncalled bet of 60 returned to "bob @ Cd34"
"bob @ Cd34" collected 70 from pot
-- ending hand #1 --
-- starting hand #2  (No Limit Texas Hold'em) (dealer: "alice @ Ab12") --
"bob @ Cd34" posts a small blind of 5
"carol @ Ef56" posts a big blind of 10
Your hand is 7s, 7d
"alice @ Ab12" calls 10
"bob @ Cd34" calls 10
"carol @ Ef56" checks
Flop:  [2h, 9h, Kh]
"bob @ Cd34" checks
"carol @ Ef56" checks
"alice @ Ab12" checks
Turn: 2h, 9h, Kh [5d]
"bob @ Cd34" checks
"carol @ Ef56" checks
"alice @ Ab12" checks
River: 2h, 9h, Kh, 5d [7c]
"bob @ Cd34" checks
"carol @ Ef56" checks
"alice @ Ab12" checks
"bob @ Cd34" collected 30 from pot with Pair, 9's (combination: 9s, 9h, Kh, 7c, 5d)
-- ending hand #2 --
`

func sessionFromLog(t *testing.T, username, log string) *parser.Evening {
	t.Helper()
	base := time.Date(2023, 4, 1, 21, 0, 0, 0, time.UTC)
	var records []parser.Record
	for i, line := range strings.Split(strings.TrimSpace(log), "\n") {
		records = append(records, parser.Record{
			Text: strings.TrimSpace(line),
			At:   base.Add(time.Duration(i) * time.Second),
		})
	}
	evening, err := parser.NewParser(username).Parse(records)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return evening
}

func approx(got, want float64) bool {
	return math.Abs(got-want) < 1e-9
}

func TestCalculateWins(t *testing.T) {
	s := NewCalculator().Calculate(sessionFromLog(t, "alice @ Ab12", sessionLog))

	if s.Rounds != 2 {
		t.Fatalf("rounds = %d, want 2", s.Rounds)
	}

	// bob took hand 1 without a showdown and hand 2 at showdown.
	bob := s.Player("bob @ Cd34")
	if bob.Wins() != 2 {
		t.Fatalf("bob wins = %d, want 2", bob.Wins())
	}
	if len(bob.PreshowdownAmounts) != 1 || bob.PreshowdownAmounts[0] != 70 {
		t.Errorf("bob preshowdown amounts = %v", bob.PreshowdownAmounts)
	}
	if len(bob.ShowdownAmounts) != 1 || bob.ShowdownAmounts[0] != 30 {
		t.Errorf("bob showdown amounts = %v", bob.ShowdownAmounts)
	}
	if !approx(bob.ShowdownShare(), 0.5) {
		t.Errorf("bob showdown share = %f", bob.ShowdownShare())
	}
	if !approx(bob.MedianWin(), 50) {
		t.Errorf("bob median win = %f", bob.MedianWin())
	}

	if got := s.Player("alice @ Ab12").Wins(); got != 0 {
		t.Errorf("alice wins = %d, want 0", got)
	}
}

func TestCalculateParticipation(t *testing.T) {
	s := NewCalculator().Calculate(sessionFromLog(t, "alice @ Ab12", sessionLog))

	alice := s.Player("alice @ Ab12")
	if alice.RoundsPresent != 2 || alice.RoundsContributed != 2 {
		t.Errorf("alice participation = %+v", alice)
	}
	if !approx(alice.VPIP(), 1) {
		t.Errorf("alice VPIP = %f", alice.VPIP())
	}

	// carol checked her big blind in hand 2, so only hand 1 was voluntary.
	carol := s.Player("carol @ Ef56")
	if carol.RoundsPresent != 2 || carol.RoundsContributed != 1 {
		t.Errorf("carol participation = %+v", carol)
	}
	if !approx(carol.VPIP(), 0.5) {
		t.Errorf("carol VPIP = %f", carol.VPIP())
	}

	// Hand 2 was checked down to a three-way showdown.
	for _, name := range []string{"alice @ Ab12", "bob @ Cd34", "carol @ Ef56"} {
		if got := s.Player(name).ShowdownsPlayed; got != 1 {
			t.Errorf("%s showdowns played = %d, want 1", name, got)
		}
	}
	bob := s.Player("bob @ Cd34")
	if bob.ShowdownsWon != 1 || !approx(bob.ShowdownWinRate(), 1) {
		t.Errorf("bob showdown wins = %d rate %f", bob.ShowdownsWon, bob.ShowdownWinRate())
	}
	if got := s.Player("alice @ Ab12").ShowdownWinRate(); got != 0 {
		t.Errorf("alice showdown win rate = %f, want 0", got)
	}
}

func TestCalculatePreflop(t *testing.T) {
	s := NewCalculator().Calculate(sessionFromLog(t, "alice @ Ab12", sessionLog))

	// Hand 1: alice opens to 30, bob 3-bets to 90, carol limps.
	alice := s.Player("alice @ Ab12")
	if alice.RaiseRounds != 1 || len(alice.RaiseAmounts) != 1 || alice.RaiseAmounts[0] != 30 {
		t.Errorf("alice raises = %+v", alice)
	}
	if alice.ThreeBetRounds != 0 {
		t.Errorf("alice 3-bets = %d, want 0", alice.ThreeBetRounds)
	}

	bob := s.Player("bob @ Cd34")
	if bob.RaiseRounds != 1 || bob.ThreeBetRounds != 1 {
		t.Errorf("bob preflop = %+v", bob)
	}
	if !approx(bob.AvgThreeBet(), 90) {
		t.Errorf("bob avg 3-bet = %f", bob.AvgThreeBet())
	}

	// carol's flat call in hand 1 ended in a fold, so it is not a limp.
	// In hand 2 everyone entered for exactly the big blind and stayed,
	// the blind-checking carol included.
	carol := s.Player("carol @ Ef56")
	if carol.LimpRounds != 1 {
		t.Errorf("carol limps = %d, want 1", carol.LimpRounds)
	}
	if alice.LimpRounds != 1 || bob.LimpRounds != 1 {
		t.Errorf("limps: alice %d bob %d, want 1 each", alice.LimpRounds, bob.LimpRounds)
	}
	if !approx(carol.LimpRate(), 1) {
		t.Errorf("carol limp rate = %f", carol.LimpRate())
	}
}

func TestCalculateShapes(t *testing.T) {
	s := NewCalculator().Calculate(sessionFromLog(t, "alice @ Ab12", sessionLog))

	shapes := s.Shapes
	if shapes.HandsSeen != 2 {
		t.Fatalf("hands seen = %d, want 2", shapes.HandsSeen)
	}
	if shapes.Shapes["AKs"] != 1 || shapes.Shapes["77"] != 1 {
		t.Errorf("shapes = %v", shapes.Shapes)
	}
	if !approx(shapes.RankFrequency["7"], 0.5) {
		t.Errorf("rank frequency of 7 = %f, want 0.5", shapes.RankFrequency["7"])
	}

	// The one flop (2h 9h Kh) is monotone.
	if shapes.FlopsSeen != 1 || shapes.MonotoneFlops != 1 {
		t.Errorf("flops = %d monotone %d", shapes.FlopsSeen, shapes.MonotoneFlops)
	}
	if !approx(shapes.MonotoneFlopRate(), 1) {
		t.Errorf("monotone rate = %f", shapes.MonotoneFlopRate())
	}
}

func TestPlayerMissingReturnsZeroValues(t *testing.T) {
	s := NewCalculator().Calculate(sessionFromLog(t, "alice @ Ab12", sessionLog))
	ghost := s.Player("nobody @ Xx00")
	if ghost.VPIP() != 0 || ghost.Wins() != 0 || ghost.MedianWin() != 0 {
		t.Errorf("ghost stats = %+v", ghost)
	}
}
