package parser

import (
	"fmt"
	"log/slog"
)

// Parser is the reconstruction driver: it feeds classified events into one
// Evening in chronological order. The "current round" is always the last
// element of the evening's round list; there is no other parser state.
//
// Processing is single-threaded and single-pass. A record that fails to
// classify, or an event the driver cannot apply, aborts the whole
// reconstruction; the offending record is carried in the returned error.
type Parser struct {
	username string
	evening  *Evening
}

// NewParser creates a driver for one session observed by the given user.
// The username recovers the user's own hole cards, which appear in the log
// without a player-name prefix.
func NewParser(username string) *Parser {
	return &Parser{
		username: username,
		evening:  NewEvening(username),
	}
}

// Parse consumes the full record sequence and returns the finalized
// Evening. Records must already be in chronological order.
func (p *Parser) Parse(records []Record) (*Evening, error) {
	for _, rec := range records {
		ev, err := Classify(rec)
		if err != nil {
			return nil, err
		}
		if err := p.Apply(ev); err != nil {
			return nil, fmt.Errorf("record %q: %w", rec.Text, err)
		}
	}
	return p.Finalize(), nil
}

// Apply feeds one classified event into the model.
func (p *Parser) Apply(ev Event) error {
	switch ev.Kind {
	case EventAdmin:
		return nil

	case EventPlayerStack:
		p.evening.AddPlayer(ev.Player, ev.Amount)
		return nil

	case EventHandStart:
		r := p.evening.AddRound(ev.Dealer)
		slog.Debug("starting hand", "round", r.Number, "dealer", ev.Dealer)
		return nil

	case EventHandEnd:
		if r := p.evening.CurrentRound(); r != nil {
			slog.Debug("ending hand",
				"round", r.Number,
				"pot", r.TotalMoneyInRound(),
				"winners", len(r.Winners))
		}
		return nil

	case EventOwnHand:
		r, err := p.currentRound(ev)
		if err != nil {
			return err
		}
		r.KnownHands[p.username] = ev.Cards
		return nil

	case EventShowCards:
		r, err := p.currentRound(ev)
		if err != nil {
			return err
		}
		r.KnownHands[ev.Player] = ev.Cards
		r.AddMove(ev.Player, ActionShow, 0, ev.At)
		return nil

	case EventBetAction:
		r, err := p.currentRound(ev)
		if err != nil {
			return err
		}
		r.AddMove(ev.Player, ev.Action, ev.Amount, ev.At)
		return nil

	case EventFlop, EventSecondFlop:
		r, err := p.currentRound(ev)
		if err != nil {
			return err
		}
		if len(ev.Cards) != 3 {
			return structuralf("flop record with %d cards, want 3", len(ev.Cards))
		}
		if ev.Kind == EventFlop {
			r.Flop = ev.Cards
		} else {
			r.SecondFlop = ev.Cards
		}
		return nil

	case EventTurn, EventRiver, EventSecondTurn, EventSecondRiver:
		return p.applyStreetCard(ev)

	case EventStackSnapshot:
		return p.reconcileSnapshot(ev)

	case EventWin:
		r, err := p.currentRound(ev)
		if err != nil {
			return err
		}
		w := Winner{Player: ev.Player, Amount: ev.Amount, At: ev.At}
		if ev.ShowdownWin {
			w.Hand = ev.Cards
			r.KnownHands[ev.Player] = ev.Cards
		}
		r.Winners = append(r.Winners, w)
		return nil

	default:
		return structuralf("unhandled event kind %s (rule %s)", ev.Kind, ev.Rule)
	}
}

func (p *Parser) applyStreetCard(ev Event) error {
	r, err := p.currentRound(ev)
	if err != nil {
		return err
	}
	if len(ev.Cards) != 1 {
		return structuralf("%s record with %d cards, want 1", ev.Kind, len(ev.Cards))
	}
	card := ev.Cards[0]
	switch ev.Kind {
	case EventTurn:
		r.Turn = card
	case EventRiver:
		r.River = card
	case EventSecondTurn:
		r.SecondTurn = card
	case EventSecondRiver:
		r.SecondRiver = card
	}
	return nil
}

// reconcileSnapshot validates the running stack totals against a periodic
// "Player stacks" record. The snapshot is ground truth: on mismatch the
// running total is overwritten, a correction is recorded on the evening,
// and a warning is logged. A mismatch usually means a missed action
// classification or a split-pot edge case and deserves attention even
// though reconstruction continues.
func (p *Parser) reconcileSnapshot(ev Event) error {
	roundNo := 0
	if r := p.evening.CurrentRound(); r != nil {
		roundNo = r.Number
	}
	for _, entry := range ev.Stacks {
		computed, known := p.evening.Players[entry.Player]
		if known && computed == entry.Amount {
			continue
		}
		p.evening.Corrections = append(p.evening.Corrections, StackCorrection{
			Round:    roundNo,
			Player:   entry.Player,
			Reported: entry.Amount,
			Computed: computed,
			At:       ev.At,
		})
		slog.Warn("stack snapshot mismatch, trusting snapshot",
			"round", roundNo,
			"player", entry.Player,
			"reported", entry.Amount,
			"computed", computed)
		p.evening.Players[entry.Player] = entry.Amount
	}
	return nil
}

func (p *Parser) currentRound(ev Event) (*Round, error) {
	r := p.evening.CurrentRound()
	if r == nil {
		return nil, structuralf("%s event before any hand started", ev.Kind)
	}
	return r, nil
}

// Finalize settles the last round and returns the reconstructed session.
// The parser must not be used afterwards.
func (p *Parser) Finalize() *Evening {
	e := p.evening
	if len(e.Rounds) > 0 {
		e.settleLastRound()
	}
	p.evening = nil
	return e
}
