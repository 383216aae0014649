package parser

import (
	"regexp"
	"strconv"
	"strings"
)

// The classifier maps one raw record to exactly one Event by trying an
// ordered list of pattern rules; the first match wins. Order encodes
// precedence between overlapping phrasings: the all-in variants sit above
// their plain counterparts, the second-run board records above the plain
// boards, and the modern pot-collection shapes above the legacy ones.
//
// Amounts are extracted with (\d+) only. Chip amounts in this domain are
// whole numbers, so a decimal amount fails every rule and surfaces as an
// UnclassifiableRecordError instead of being silently truncated.

type classifierRule struct {
	name  string
	re    *regexp.Regexp
	build func(m []string, rec Record) (Event, error)
}

var reQuoted = regexp.MustCompile(`"([^"]*)"`)

var classifierRules = []classifierRule{
	{"game-created", regexp.MustCompile(`^"(.+)" created the game with a stack of (\d+)\.$`), buildPlayerStack},
	{"admin-approved", regexp.MustCompile(`^The admin approved the player "(.+)" participation with a stack of (\d+)\.$`), buildPlayerStack},

	// Administrative records: recognized so the classifier never fails on
	// them, but they carry no model effect.
	{"csv-header", regexp.MustCompile(`^entry$`), buildAdmin},
	{"seat-requested", regexp.MustCompile(`requested a seat`), buildAdmin},
	{"seat-canceled", regexp.MustCompile(`canceled the seat request`), buildAdmin},
	{"seat-rejected", regexp.MustCompile(`rejected the seat request`), buildAdmin},
	{"id-changed", regexp.MustCompile(`changed the ID from`), buildAdmin},
	{"stand-up", regexp.MustCompile(`stand up with the stack`), buildAdmin},
	{"sit-back", regexp.MustCompile(`sit back with the stack`), buildAdmin},
	{"quit", regexp.MustCompile(`quits the game with a stack of`), buildAdmin},
	{"join", regexp.MustCompile(`joined the game with a stack of`), buildAdmin},
	{"ownership-passed", regexp.MustCompile(`passed the room ownership`), buildAdmin},
	{"stack-change-queued", regexp.MustCompile(`queued the stack change for the player`), buildAdmin},
	{"removal-queued", regexp.MustCompile(`enqueued the removal of the player`), buildAdmin},
	{"player-updated", regexp.MustCompile(`updated the player`), buildAdmin},
	{"sb-size-changed", regexp.MustCompile(`small blind was changed from`), buildAdmin},
	{"bb-size-changed", regexp.MustCompile(`big blind was changed from`), buildAdmin},
	{"dead-blind", regexp.MustCompile(`(?i)dead (?:small|big) blind`), buildAdmin},
	{"run-it-twice", regexp.MustCompile(`run it twice`), buildAdmin},

	{"uncalled-bet", regexp.MustCompile(`Uncalled bet of (\d+) returned to "(.+)"`),
		func(m []string, rec Record) (Event, error) {
			amount, err := parseAmount(m[1])
			if err != nil {
				return Event{}, err
			}
			return Event{Kind: EventBetAction, Player: m[2], Action: ActionUncalledBetReturn, Amount: amount}, nil
		}},

	{"player-stacks", regexp.MustCompile(`^Player stacks: (.+)$`), buildStackSnapshot},
	{"hand-start", regexp.MustCompile(`-- starting hand`), buildHandStart},
	{"own-hand", regexp.MustCompile(`^Your hand is (.+)$`),
		func(m []string, rec Record) (Event, error) {
			return Event{Kind: EventOwnHand, Cards: splitCards(m[1])}, nil
		}},
	{"shows", regexp.MustCompile(`^"(.+)" shows a (.+)\.$`),
		func(m []string, rec Record) (Event, error) {
			return Event{Kind: EventShowCards, Player: m[1], Cards: splitCards(m[2])}, nil
		}},

	{"missing-small-blind", regexp.MustCompile(`^"(.+)" posts a missing small blind of (\d+)$`), buildBet(ActionMissingSmallBlind)},
	{"small-blind", regexp.MustCompile(`^"(.+)" posts a small blind of (\d+)$`), buildBet(ActionSmallBlind)},
	{"missed-big-blind", regexp.MustCompile(`^"(.+)" posts a missed big blind of (\d+)$`), buildBet(ActionMissingBigBlind)},
	{"big-blind", regexp.MustCompile(`^"(.+)" posts a big blind of (\d+)$`), buildBet(ActionBigBlind)},
	{"straddle", regexp.MustCompile(`^"(.+)" posts a straddle of (\d+)$`), buildBet(ActionStraddle)},

	{"fold", regexp.MustCompile(`^"(.+)" folds$`), buildBetNoAmount(ActionFold)},
	{"check", regexp.MustCompile(`^"(.+)" checks$`), buildBetNoAmount(ActionCheck)},

	{"call-all-in", regexp.MustCompile(`^"(.+)" calls (\d+) and go all in$`), buildBet(ActionCallAllIn)},
	{"call", regexp.MustCompile(`^"(.+)" calls (\d+)$`), buildBet(ActionCall)},
	// Older exports phrase a call as "calls with N".
	{"call-with", regexp.MustCompile(`^"(.+)" calls with (\d+)$`), buildBet(ActionCall)},

	{"raise-all-in", regexp.MustCompile(`^"(.+)" raises to (\d+) and go all in$`), buildBet(ActionRaiseAllIn)},
	{"raise", regexp.MustCompile(`^"(.+)" raises to (\d+)$`), buildBet(ActionRaise)},
	// A "bet" opens the betting on a street; the model folds it into the
	// raise kind, matching how contributions are computed.
	{"bet-all-in", regexp.MustCompile(`^"(.+)" bets (\d+) and go all in$`), buildBet(ActionRaiseAllIn)},
	{"bet", regexp.MustCompile(`^"(.+)" bets (\d+)$`), buildBet(ActionRaise)},
	{"raise-all-in-legacy", regexp.MustCompile(`^"(.+)" raises and all in with (\d+)$`), buildBet(ActionRaiseAllIn)},

	// Turn and river records repeat the board so far before the bracketed
	// new card; only the bracketed part is extracted.
	{"second-flop", regexp.MustCompile(`(?i)^flop \(second run\):[^\[]*\[(.+)\]$`), buildBoard(EventSecondFlop)},
	{"second-turn", regexp.MustCompile(`(?i)^turn \(second run\):[^\[]*\[(.+)\]$`), buildBoard(EventSecondTurn)},
	{"second-river", regexp.MustCompile(`(?i)^river \(second run\):[^\[]*\[(.+)\]$`), buildBoard(EventSecondRiver)},
	{"flop", regexp.MustCompile(`(?i)^flop:[^\[]*\[(.+)\]$`), buildBoard(EventFlop)},
	{"turn", regexp.MustCompile(`(?i)^turn:[^\[]*\[(.+)\]$`), buildBoard(EventTurn)},
	{"river", regexp.MustCompile(`(?i)^river:[^\[]*\[(.+)\]$`), buildBoard(EventRiver)},

	{"win", regexp.MustCompile(`^"(.+)" collected (\d+) from pot$`), buildWin(false)},
	{"win-showdown", regexp.MustCompile(`^"(.+)" collected (\d+) from pot with .+ \(combination: (.+)\)$`), buildWin(true)},
	// Legacy pot-collection shapes from earlier log formats.
	{"win-gained", regexp.MustCompile(`^"(.+)" gained (\d+)$`), buildWin(false)},
	{"win-collected-legacy", regexp.MustCompile(`^"(.+)" collected (\d+)$`), buildWin(false)},
	{"win-legacy", regexp.MustCompile(`^"(.+)" wins (\d+) .*\(hand: (.+)\)$`), buildWin(true)},

	{"hand-end", regexp.MustCompile(`-- ending hand`),
		func(m []string, rec Record) (Event, error) {
			return Event{Kind: EventHandEnd}, nil
		}},
}

// Classify maps one raw record to an Event, or returns an
// UnclassifiableRecordError if no rule matches.
func Classify(rec Record) (Event, error) {
	for _, rule := range classifierRules {
		m := rule.re.FindStringSubmatch(rec.Text)
		if m == nil {
			continue
		}
		ev, err := rule.build(m, rec)
		if err != nil {
			return Event{}, err
		}
		ev.Rule = rule.name
		ev.At = rec.At
		return ev, nil
	}
	return Event{}, &UnclassifiableRecordError{Record: rec}
}

func buildAdmin(m []string, rec Record) (Event, error) {
	return Event{Kind: EventAdmin}, nil
}

func buildPlayerStack(m []string, rec Record) (Event, error) {
	amount, err := parseAmount(m[2])
	if err != nil {
		return Event{}, err
	}
	return Event{Kind: EventPlayerStack, Player: m[1], Amount: amount}, nil
}

func buildBet(kind ActionKind) func(m []string, rec Record) (Event, error) {
	return func(m []string, rec Record) (Event, error) {
		amount, err := parseAmount(m[2])
		if err != nil {
			return Event{}, err
		}
		return Event{Kind: EventBetAction, Player: m[1], Action: kind, Amount: amount}, nil
	}
}

func buildBetNoAmount(kind ActionKind) func(m []string, rec Record) (Event, error) {
	return func(m []string, rec Record) (Event, error) {
		return Event{Kind: EventBetAction, Player: m[1], Action: kind}, nil
	}
}

func buildBoard(kind EventKind) func(m []string, rec Record) (Event, error) {
	return func(m []string, rec Record) (Event, error) {
		return Event{Kind: kind, Cards: splitCards(m[1])}, nil
	}
}

func buildWin(showdown bool) func(m []string, rec Record) (Event, error) {
	return func(m []string, rec Record) (Event, error) {
		amount, err := parseAmount(m[2])
		if err != nil {
			return Event{}, err
		}
		ev := Event{Kind: EventWin, Player: m[1], Amount: amount, ShowdownWin: showdown}
		if showdown {
			ev.Cards = splitCards(m[3])
		}
		return ev, nil
	}
}

var reStackEntry = regexp.MustCompile(`"(.+)" \((\d+)\)$`)

func buildHandStart(m []string, rec Record) (Event, error) {
	if strings.Contains(rec.Text, "dead button") {
		return Event{Kind: EventHandStart}, nil
	}
	qm := reQuoted.FindStringSubmatch(rec.Text)
	if qm == nil {
		return Event{}, structuralf("starting-hand record without a dealer name: %q", rec.Text)
	}
	return Event{Kind: EventHandStart, Dealer: qm[1]}, nil
}

func buildStackSnapshot(m []string, rec Record) (Event, error) {
	entries := strings.Split(m[1], " | ")
	stacks := make([]StackEntry, 0, len(entries))
	for _, entry := range entries {
		em := reStackEntry.FindStringSubmatch(strings.TrimSpace(entry))
		if em == nil {
			return Event{}, structuralf("malformed stack snapshot entry %q in %q", entry, rec.Text)
		}
		amount, err := parseAmount(em[2])
		if err != nil {
			return Event{}, err
		}
		stacks = append(stacks, StackEntry{Player: em[1], Amount: amount})
	}
	return Event{Kind: EventStackSnapshot, Stacks: stacks}, nil
}

func splitCards(s string) []string {
	parts := strings.Split(s, ", ")
	cards := make([]string, 0, len(parts))
	for _, p := range parts {
		cards = append(cards, strings.TrimSpace(p))
	}
	return cards
}

func parseAmount(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, structuralf("non-integer chip amount %q", s)
	}
	return n, nil
}
