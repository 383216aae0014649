package parser

import "time"

// Action is one atomic betting event. Immutable once created.
type Action struct {
	Player string
	Kind   ActionKind
	Amount int
	At     time.Time
}

// Winner is one pot-collection entry. Hand is nil for a preshowdown or
// uncontested win; a split pot produces more than one entry per round.
type Winner struct {
	Player string
	Hand   []string
	Amount int
	At     time.Time
}

// StackPoint is one (round index, stack amount) sample of a player's chip
// trajectory. Round is the zero-based count of rounds already played when
// the sample was taken.
type StackPoint struct {
	Round  int
	Amount int
}

// StackCorrection records a reconciliation mismatch: a periodic "Player
// stacks" snapshot disagreed with the running total and the snapshot was
// taken as ground truth. Corrections are advisory; they never abort the
// reconstruction, but callers should treat a non-empty list as a signal
// that an action may have been misclassified.
type StackCorrection struct {
	Round    int
	Player   string
	Reported int
	Computed int
	At       time.Time
}

// Round is one hand of poker.
type Round struct {
	Number         int    // 1-based
	Dealer         string // empty for dead-button hands
	InitialAmounts map[string]int
	// KnownHands holds hole cards for players whose cards were revealed:
	// the observing user's own cards, shown cards, or showdown-winning
	// combinations.
	KnownHands map[string][]string

	Flop  []string // exactly 3 when set
	Turn  string
	River string

	// Populated only when the hand was run twice.
	SecondFlop  []string
	SecondTurn  string
	SecondRiver string

	PreflopMoves []Action
	FlopMoves    []Action
	TurnMoves    []Action
	RiverMoves   []Action

	Winners []Winner
}

func newRound(number int, dealer string, players map[string]int) *Round {
	initial := make(map[string]int, len(players))
	for name, amt := range players {
		initial[name] = amt
	}
	return &Round{
		Number:         number,
		Dealer:         dealer,
		InitialAmounts: initial,
		KnownHands:     make(map[string][]string),
	}
}

// AddMove appends an action to the phase determined by which community-card
// milestones have been recorded so far. Phase is derived, never stored.
func (r *Round) AddMove(player string, kind ActionKind, amount int, at time.Time) {
	action := Action{Player: player, Kind: kind, Amount: amount, At: at}
	switch {
	case r.Flop == nil:
		r.PreflopMoves = append(r.PreflopMoves, action)
	case r.Turn == "":
		r.FlopMoves = append(r.FlopMoves, action)
	case r.River == "":
		r.TurnMoves = append(r.TurnMoves, action)
	default:
		r.RiverMoves = append(r.RiverMoves, action)
	}
}

// SmallBlind returns the round's small-blind posting. Exactly one is
// expected; its absence is a structural violation.
func (r *Round) SmallBlind() (Action, error) {
	return r.singlePosting(ActionSmallBlind)
}

// BigBlind returns the round's big-blind posting.
func (r *Round) BigBlind() (Action, error) {
	return r.singlePosting(ActionBigBlind)
}

func (r *Round) singlePosting(kind ActionKind) (Action, error) {
	for _, m := range r.PreflopMoves {
		if m.Kind == kind {
			return m, nil
		}
	}
	return Action{}, structuralf("round %d has no %s action", r.Number, kind)
}

func findMoves(player string, kind ActionKind, moves []Action) []Action {
	var out []Action
	for _, m := range moves {
		if m.Player == player && m.Kind == kind {
			out = append(out, m)
		}
	}
	return out
}

// MoneySpent returns the total contribution of each player across all four
// phases of the round.
func (r *Round) MoneySpent() map[string]int {
	spent := make(map[string]int)
	for _, moves := range [][]Action{r.PreflopMoves, r.FlopMoves, r.TurnMoves, r.RiverMoves} {
		for player, amount := range moneyInPhase(moves) {
			spent[player] += amount
		}
	}
	return spent
}

// PreflopContributions returns each player's preflop-phase contribution.
func (r *Round) PreflopContributions() map[string]int {
	return moneyInPhase(r.PreflopMoves)
}

// FindMoves returns the given player's actions of one kind within a phase's
// move list.
func (r *Round) FindMoves(player string, kind ActionKind, moves []Action) []Action {
	return findMoves(player, kind, moves)
}

// TotalMoneyInRound is the pot size implied by the recorded actions.
func (r *Round) TotalMoneyInRound() int {
	total := 0
	for _, amount := range r.MoneySpent() {
		total += amount
	}
	return total
}

// VoluntaryContributors returns the players who put a positive, non-blind
// amount into the pot preflop.
func (r *Round) VoluntaryContributors() map[string]bool {
	contributors := make(map[string]bool)
	for _, m := range r.PreflopMoves {
		if !m.Kind.Blind() && m.Amount > 0 {
			contributors[m.Player] = true
		}
	}
	return contributors
}

// PlayersPresent returns every player with at least one preflop action,
// blinds included.
func (r *Round) PlayersPresent() map[string]bool {
	present := make(map[string]bool)
	for _, m := range r.PreflopMoves {
		present[m.Player] = true
	}
	return present
}

// NamesInShowdown returns the players whose last river-phase action was not
// a fold.
func (r *Round) NamesInShowdown() []string {
	last := make(map[string]ActionKind)
	order := make([]string, 0)
	for _, m := range r.RiverMoves {
		if _, seen := last[m.Player]; !seen {
			order = append(order, m.Player)
		}
		last[m.Player] = m.Kind
	}
	names := make([]string, 0, len(order))
	for _, player := range order {
		if last[player] != ActionFold {
			names = append(names, player)
		}
	}
	return names
}

// Evening is one reconstructed poker session for one observing user.
type Evening struct {
	Username string
	// Players maps player identity to the authoritative running stack.
	Players map[string]int
	// Rounds is chronological, oldest first, append-only.
	Rounds []*Round
	// HistoricalAmounts records each player's stack at the start of every
	// round, including the first.
	HistoricalAmounts map[string][]StackPoint
	// Corrections collects every reconciliation mismatch observed while
	// reconstructing. Advisory only.
	Corrections []StackCorrection
}

// NewEvening creates an empty session for the given observing user.
func NewEvening(username string) *Evening {
	return &Evening{
		Username:          username,
		Players:           make(map[string]int),
		HistoricalAmounts: make(map[string][]StackPoint),
	}
}

// AddPlayer registers a player's starting stack. A repeated name is a
// rebuy: the stack is simply replaced.
func (e *Evening) AddPlayer(name string, amount int) {
	e.Players[name] = amount
}

// AddRound settles the previous round (if any), snapshots every player's
// stack, and appends a new round with the given dealer.
func (e *Evening) AddRound(dealer string) *Round {
	if len(e.Rounds) > 0 {
		e.settleLastRound()
	}
	e.recordAmounts()
	r := newRound(len(e.Rounds)+1, dealer, e.Players)
	e.Rounds = append(e.Rounds, r)
	return r
}

// CurrentRound returns the round being reconstructed, or nil before the
// first hand starts.
func (e *Evening) CurrentRound() *Round {
	if len(e.Rounds) == 0 {
		return nil
	}
	return e.Rounds[len(e.Rounds)-1]
}

// ActiveRounds returns only the rounds where money actually moved.
func (e *Evening) ActiveRounds() []*Round {
	out := make([]*Round, 0, len(e.Rounds))
	for _, r := range e.Rounds {
		if r.TotalMoneyInRound() != 0 {
			out = append(out, r)
		}
	}
	return out
}

func (e *Evening) recordAmounts() {
	for player, amount := range e.Players {
		e.HistoricalAmounts[player] = append(e.HistoricalAmounts[player], StackPoint{
			Round:  len(e.Rounds),
			Amount: amount,
		})
	}
}

// settleLastRound debits every contributor and credits the winners. With a
// single winner the computed pot is authoritative over the logged amount;
// with a split pot each winner receives exactly their logged amount.
func (e *Evening) settleLastRound() {
	last := e.Rounds[len(e.Rounds)-1]
	spent := last.MoneySpent()
	pot := 0
	for _, amount := range spent {
		pot += amount
	}
	for player, amount := range spent {
		e.Players[player] -= amount
	}

	switch {
	case len(last.Winners) == 1:
		e.Players[last.Winners[0].Player] += pot
	case len(last.Winners) > 1:
		for _, w := range last.Winners {
			e.Players[w.Player] += w.Amount
		}
	}
}
