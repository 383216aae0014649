package parser

import (
	"testing"
	"time"
)

func move(player string, kind ActionKind, amount int) Action {
	return Action{Player: player, Kind: kind, Amount: amount, At: time.Date(2023, 4, 1, 21, 0, 0, 0, time.UTC)}
}

func TestMoneyInPhaseSupersedes(t *testing.T) {
	// A later bet restates the player's commitment for the phase; it does
	// not stack on top of the earlier one.
	spent := moneyInPhase([]Action{
		move("alice", ActionSmallBlind, 5),
		move("alice", ActionRaise, 30),
		move("bob", ActionBigBlind, 10),
		move("bob", ActionCall, 30),
	})
	if spent["alice"] != 30 {
		t.Errorf("alice = %d, want 30", spent["alice"])
	}
	if spent["bob"] != 30 {
		t.Errorf("bob = %d, want 30", spent["bob"])
	}
}

func TestMoneyInPhaseIgnoresZeroAmounts(t *testing.T) {
	spent := moneyInPhase([]Action{
		move("alice", ActionRaise, 40),
		move("alice", ActionShow, 0),
		move("bob", ActionCheck, 0),
		move("bob", ActionFold, 0),
	})
	if spent["alice"] != 40 {
		t.Errorf("alice = %d, want 40", spent["alice"])
	}
	if amount, ok := spent["bob"]; ok {
		t.Errorf("bob = %d, want no entry", amount)
	}
}

func TestMoneyInPhaseUncalledBetSubtracts(t *testing.T) {
	spent := moneyInPhase([]Action{
		move("alice", ActionRaise, 100),
		move("bob", ActionFold, 0),
		move("alice", ActionUncalledBetReturn, 100),
	})
	if spent["alice"] != 0 {
		t.Errorf("alice = %d, want 0 after the full return", spent["alice"])
	}
}

func TestMoneyInPhaseMissingSmallBlindAdds(t *testing.T) {
	// A returning player's owed small blind is dead money on top of
	// whatever they put in by acting.
	spent := moneyInPhase([]Action{
		move("alice", ActionMissingSmallBlind, 5),
		move("alice", ActionCall, 20),
	})
	if spent["alice"] != 25 {
		t.Errorf("alice = %d, want 25", spent["alice"])
	}
}

func TestMoneyInPhaseMissingBigBlindSuppressedBySmall(t *testing.T) {
	// When a player owes both blinds only the missing small blind is added
	// in the second pass.
	spent := moneyInPhase([]Action{
		move("alice", ActionMissingSmallBlind, 5),
		move("alice", ActionMissingBigBlind, 10),
	})
	if spent["alice"] != 15 {
		t.Errorf("alice = %d, want 15", spent["alice"])
	}
}

func TestMoneySpentSumsPhases(t *testing.T) {
	r := &Round{Number: 1}
	at := time.Date(2023, 4, 1, 21, 0, 0, 0, time.UTC)
	r.AddMove("alice", ActionSmallBlind, 5, at)
	r.AddMove("alice", ActionCall, 10, at)
	r.Flop = []string{"As", "Kd", "2c"}
	r.AddMove("alice", ActionRaise, 20, at)
	r.Turn = "9h"
	r.AddMove("alice", ActionRaise, 40, at)

	spent := r.MoneySpent()
	if spent["alice"] != 70 {
		t.Errorf("alice = %d, want 70 summed across phases", spent["alice"])
	}
	if r.TotalMoneyInRound() != 70 {
		t.Errorf("total = %d, want 70", r.TotalMoneyInRound())
	}
}
