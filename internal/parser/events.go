package parser

import "time"

// Record is one raw log entry as delivered by the log reader: a single
// human-readable sentence, its timestamp, and an opaque ordering token.
// Records must be delivered in chronological order; the on-disk log is
// reverse-chronological and the reader owns the reversal.
type Record struct {
	Text  string
	At    time.Time
	Token string
}

// ActionKind identifies one atomic betting action.
type ActionKind int

const (
	ActionUnknown ActionKind = iota
	ActionSmallBlind
	ActionBigBlind
	ActionMissingSmallBlind
	ActionMissingBigBlind
	ActionStraddle
	ActionFold
	ActionCheck
	ActionCall
	ActionCallAllIn
	ActionRaise
	ActionRaiseAllIn
	ActionShow
	ActionUncalledBetReturn
)

func (a ActionKind) String() string {
	switch a {
	case ActionSmallBlind:
		return "small_blind"
	case ActionBigBlind:
		return "big_blind"
	case ActionMissingSmallBlind:
		return "missing_small_blind"
	case ActionMissingBigBlind:
		return "missing_big_blind"
	case ActionStraddle:
		return "straddle"
	case ActionFold:
		return "fold"
	case ActionCheck:
		return "check"
	case ActionCall:
		return "call"
	case ActionCallAllIn:
		return "call_all_in"
	case ActionRaise:
		return "raise"
	case ActionRaiseAllIn:
		return "raise_all_in"
	case ActionShow:
		return "show"
	case ActionUncalledBetReturn:
		return "uncalled_bet_return"
	default:
		return "unknown"
	}
}

// Blind reports whether the action is a forced posting rather than a
// voluntary contribution.
func (a ActionKind) Blind() bool {
	switch a {
	case ActionSmallBlind, ActionBigBlind, ActionMissingSmallBlind, ActionMissingBigBlind:
		return true
	default:
		return false
	}
}

// EventKind identifies the semantic class of one classified log record.
type EventKind int

const (
	EventUnknown EventKind = iota
	// EventAdmin covers seat requests, cancellations, ID changes, queued
	// stack changes, blind-size changes and similar administrative records.
	// They classify successfully but have no effect on the session model.
	EventAdmin
	// EventPlayerStack introduces a player with a starting stack (game
	// creation or an admin-approved buy-in).
	EventPlayerStack
	EventHandStart
	EventHandEnd
	// EventOwnHand carries the observing user's hole cards ("Your hand is").
	EventOwnHand
	EventShowCards
	EventBetAction
	EventFlop
	EventTurn
	EventRiver
	EventSecondFlop
	EventSecondTurn
	EventSecondRiver
	EventStackSnapshot
	EventWin
)

func (k EventKind) String() string {
	switch k {
	case EventAdmin:
		return "admin"
	case EventPlayerStack:
		return "player_stack"
	case EventHandStart:
		return "hand_start"
	case EventHandEnd:
		return "hand_end"
	case EventOwnHand:
		return "own_hand"
	case EventShowCards:
		return "show_cards"
	case EventBetAction:
		return "bet_action"
	case EventFlop:
		return "flop"
	case EventTurn:
		return "turn"
	case EventRiver:
		return "river"
	case EventSecondFlop:
		return "second_flop"
	case EventSecondTurn:
		return "second_turn"
	case EventSecondRiver:
		return "second_river"
	case EventStackSnapshot:
		return "stack_snapshot"
	case EventWin:
		return "win"
	default:
		return "unknown"
	}
}

// StackEntry is one player's reported stack inside a "Player stacks:" record.
type StackEntry struct {
	Player string
	Amount int
}

// Event is the classified form of one raw record. Only the fields relevant
// to the Kind are populated.
type Event struct {
	Kind   EventKind
	Rule   string // name of the classifier rule that matched
	At     time.Time
	Player string
	Action ActionKind // set for EventBetAction
	Amount int
	Cards  []string // board cards, shown cards, or winning combination
	Dealer string   // set for EventHandStart; empty means dead button
	Stacks []StackEntry
	// ShowdownWin is true for EventWin records carrying a combination of
	// cards; false means a preshowdown or uncontested win.
	ShowdownWin bool
}
