package parser

import (
	"errors"
	"testing"
	"time"
)

func classify(t *testing.T, text string) Event {
	t.Helper()
	ev, err := Classify(Record{Text: text, At: time.Date(2023, 4, 1, 21, 0, 0, 0, time.UTC), Token: "tok"})
	if err != nil {
		t.Fatalf("Classify(%q) error: %v", text, err)
	}
	return ev
}

func TestClassifyActions(t *testing.T) {
	tests := []struct {
		text   string
		kind   EventKind
		action ActionKind
		player string
		amount int
	}{
		{`"alice @ Ab12" posts a small blind of 10`, EventBetAction, ActionSmallBlind, "alice @ Ab12", 10},
		{`"bob @ Cd34" posts a big blind of 20`, EventBetAction, ActionBigBlind, "bob @ Cd34", 20},
		{`"carol @ Ef56" posts a missing small blind of 10`, EventBetAction, ActionMissingSmallBlind, "carol @ Ef56", 10},
		{`"carol @ Ef56" posts a missed big blind of 20`, EventBetAction, ActionMissingBigBlind, "carol @ Ef56", 20},
		{`"dave @ Gh78" posts a straddle of 40`, EventBetAction, ActionStraddle, "dave @ Gh78", 40},
		{`"alice @ Ab12" folds`, EventBetAction, ActionFold, "alice @ Ab12", 0},
		{`"bob @ Cd34" checks`, EventBetAction, ActionCheck, "bob @ Cd34", 0},
		{`"alice @ Ab12" calls 20`, EventBetAction, ActionCall, "alice @ Ab12", 20},
		{`"alice @ Ab12" calls with 20`, EventBetAction, ActionCall, "alice @ Ab12", 20},
		{`"bob @ Cd34" calls 250 and go all in`, EventBetAction, ActionCallAllIn, "bob @ Cd34", 250},
		{`"alice @ Ab12" raises to 60`, EventBetAction, ActionRaise, "alice @ Ab12", 60},
		{`"alice @ Ab12" raises to 500 and go all in`, EventBetAction, ActionRaiseAllIn, "alice @ Ab12", 500},
		{`"bob @ Cd34" bets 35`, EventBetAction, ActionRaise, "bob @ Cd34", 35},
		{`"bob @ Cd34" bets 90 and go all in`, EventBetAction, ActionRaiseAllIn, "bob @ Cd34", 90},
		{`"carol @ Ef56" raises and all in with 300`, EventBetAction, ActionRaiseAllIn, "carol @ Ef56", 300},
		{`Uncalled bet of 80 returned to "alice @ Ab12"`, EventBetAction, ActionUncalledBetReturn, "alice @ Ab12", 80},
	}

	for _, tt := range tests {
		ev := classify(t, tt.text)
		if ev.Kind != tt.kind {
			t.Errorf("%q: kind = %s, want %s", tt.text, ev.Kind, tt.kind)
		}
		if ev.Action != tt.action {
			t.Errorf("%q: action = %s, want %s", tt.text, ev.Action, tt.action)
		}
		if ev.Player != tt.player {
			t.Errorf("%q: player = %q, want %q", tt.text, ev.Player, tt.player)
		}
		if ev.Amount != tt.amount {
			t.Errorf("%q: amount = %d, want %d", tt.text, ev.Amount, tt.amount)
		}
	}
}

func TestClassifyAllInPrecedence(t *testing.T) {
	// The all-in phrasing extends the plain phrasing; rule order must keep
	// the all-in flag instead of matching the general rule first.
	ev := classify(t, `"alice @ Ab12" raises to 500 and go all in`)
	if ev.Action != ActionRaiseAllIn {
		t.Fatalf("action = %s, want %s", ev.Action, ActionRaiseAllIn)
	}
}

func TestClassifyPlayerStack(t *testing.T) {
	ev := classify(t, `"alice @ Ab12" created the game with a stack of 2000.`)
	if ev.Kind != EventPlayerStack || ev.Player != "alice @ Ab12" || ev.Amount != 2000 {
		t.Fatalf("got %+v", ev)
	}

	ev = classify(t, `The admin approved the player "bob @ Cd34" participation with a stack of 1500.`)
	if ev.Kind != EventPlayerStack || ev.Player != "bob @ Cd34" || ev.Amount != 1500 {
		t.Fatalf("got %+v", ev)
	}
}

func TestClassifyHandStart(t *testing.T) {
	ev := classify(t, `-- starting hand #3  (No Limit Texas Hold'em) (dealer: "alice @ Ab12") --`)
	if ev.Kind != EventHandStart || ev.Dealer != "alice @ Ab12" {
		t.Fatalf("got %+v", ev)
	}

	ev = classify(t, `-- starting hand #4  (No Limit Texas Hold'em) (dead button) --`)
	if ev.Kind != EventHandStart || ev.Dealer != "" {
		t.Fatalf("dead button hand: got %+v", ev)
	}
}

func TestClassifyBoards(t *testing.T) {
	ev := classify(t, `Flop:  [As, Kd, 2c]`)
	if ev.Kind != EventFlop || len(ev.Cards) != 3 || ev.Cards[0] != "As" || ev.Cards[2] != "2c" {
		t.Fatalf("flop: got %+v", ev)
	}

	ev = classify(t, `Turn: As, Kd, 2c [9h]`)
	if ev.Kind != EventTurn || len(ev.Cards) != 1 || ev.Cards[0] != "9h" {
		t.Fatalf("turn: got %+v", ev)
	}

	ev = classify(t, `River: As, Kd, 2c, 9h [3s]`)
	if ev.Kind != EventRiver || len(ev.Cards) != 1 || ev.Cards[0] != "3s" {
		t.Fatalf("river: got %+v", ev)
	}

	ev = classify(t, `Turn (second run): As, Kd, 2c [Jd]`)
	if ev.Kind != EventSecondTurn || ev.Cards[0] != "Jd" {
		t.Fatalf("second turn: got %+v", ev)
	}

	ev = classify(t, `River (second run): As, Kd, 2c, Jd [7h]`)
	if ev.Kind != EventSecondRiver || ev.Cards[0] != "7h" {
		t.Fatalf("second river: got %+v", ev)
	}

	ev = classify(t, `Flop (second run):  [Ah, Kh, 2h]`)
	if ev.Kind != EventSecondFlop || len(ev.Cards) != 3 {
		t.Fatalf("second flop: got %+v", ev)
	}
}

func TestClassifyWins(t *testing.T) {
	ev := classify(t, `"alice @ Ab12" collected 120 from pot`)
	if ev.Kind != EventWin || ev.ShowdownWin || ev.Amount != 120 || ev.Cards != nil {
		t.Fatalf("uncontested win: got %+v", ev)
	}

	ev = classify(t, `"bob @ Cd34" collected 340 from pot with Two Pair, A's & 9's (combination: Ah, As, 9d, 9c, Kd)`)
	if ev.Kind != EventWin || !ev.ShowdownWin || ev.Amount != 340 {
		t.Fatalf("showdown win: got %+v", ev)
	}
	if len(ev.Cards) != 5 || ev.Cards[0] != "Ah" || ev.Cards[4] != "Kd" {
		t.Fatalf("showdown combination: got %v", ev.Cards)
	}

	ev = classify(t, `"carol @ Ef56" gained 60`)
	if ev.Kind != EventWin || ev.ShowdownWin || ev.Amount != 60 {
		t.Fatalf("legacy gained: got %+v", ev)
	}

	ev = classify(t, `"dave @ Gh78" collected 95`)
	if ev.Kind != EventWin || ev.Amount != 95 {
		t.Fatalf("legacy collected: got %+v", ev)
	}

	ev = classify(t, `"erin @ Ij90" wins 210 with a pair (hand: Qs, Qd)`)
	if ev.Kind != EventWin || !ev.ShowdownWin || ev.Amount != 210 || len(ev.Cards) != 2 {
		t.Fatalf("legacy wins: got %+v", ev)
	}
}

func TestClassifyShownCards(t *testing.T) {
	ev := classify(t, `Your hand is Qs, Qd`)
	if ev.Kind != EventOwnHand || len(ev.Cards) != 2 || ev.Cards[0] != "Qs" {
		t.Fatalf("own hand: got %+v", ev)
	}

	ev = classify(t, `"alice @ Ab12" shows a 7h, 2c.`)
	if ev.Kind != EventShowCards || ev.Player != "alice @ Ab12" || len(ev.Cards) != 2 {
		t.Fatalf("shows: got %+v", ev)
	}
}

func TestClassifyStackSnapshot(t *testing.T) {
	ev := classify(t, `Player stacks: #1 "alice @ Ab12" (1540) | #3 "bob @ Cd34" (2460)`)
	if ev.Kind != EventStackSnapshot {
		t.Fatalf("kind = %s", ev.Kind)
	}
	want := []StackEntry{
		{Player: "alice @ Ab12", Amount: 1540},
		{Player: "bob @ Cd34", Amount: 2460},
	}
	if len(ev.Stacks) != len(want) {
		t.Fatalf("stacks = %v, want %v", ev.Stacks, want)
	}
	for i := range want {
		if ev.Stacks[i] != want[i] {
			t.Errorf("stacks[%d] = %v, want %v", i, ev.Stacks[i], want[i])
		}
	}
}

func TestClassifyAdminRecords(t *testing.T) {
	texts := []string{
		`entry`,
		`"zed @ Kl12" requested a seat.`,
		`"zed @ Kl12" canceled the seat request.`,
		`The admin rejected the seat request from "zed @ Kl12".`,
		`The player "alice @ Ab12" changed the ID from "alice @ Old99".`,
		`The player "bob @ Cd34" stand up with the stack of 900.`,
		`The player "bob @ Cd34" sit back with the stack of 900.`,
		`"carol @ Ef56" quits the game with a stack of 0.`,
		`The player "dave @ Gh78" joined the game with a stack of 1000.`,
		`"alice @ Ab12" passed the room ownership to "bob @ Cd34".`,
		`The admin queued the stack change for the player "bob @ Cd34" adding 500 chips in the next hand.`,
		`The admin enqueued the removal of the player "carol @ Ef56".`,
		`The admin updated the player "dave @ Gh78" stack from 100 to 600.`,
		`The game's small blind was changed from 5 to 10.`,
		`The game's big blind was changed from 10 to 20.`,
		`"erin @ Ij90" posts a dead small blind of 5`,
		`All players are ready, run it twice is enabled.`,
	}
	for _, text := range texts {
		ev := classify(t, text)
		if ev.Kind != EventAdmin {
			t.Errorf("%q: kind = %s, want %s", text, ev.Kind, EventAdmin)
		}
	}
}

func TestClassifyUnrecognizedFailsLoudly(t *testing.T) {
	rec := Record{Text: `"alice @ Ab12" does something brand new`, Token: "t1"}
	_, err := Classify(rec)
	if err == nil {
		t.Fatal("expected an error for an unrecognized record")
	}
	var uerr *UnclassifiableRecordError
	if !errors.As(err, &uerr) {
		t.Fatalf("error type = %T, want *UnclassifiableRecordError", err)
	}
	if uerr.Record.Text != rec.Text {
		t.Errorf("error carries record %q, want %q", uerr.Record.Text, rec.Text)
	}
}

func TestClassifyRejectsDecimalAmounts(t *testing.T) {
	// Cash-game exports with fractional chips are not supported; they must
	// fail classification rather than truncate.
	_, err := Classify(Record{Text: `"alice @ Ab12" calls 2.50`})
	if err == nil {
		t.Fatal("expected decimal call amount to be unclassifiable")
	}
}
