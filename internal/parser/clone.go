package parser

// CloneEvening returns a deep copy of a reconstructed session. Repositories
// hand out clones so callers can never mutate stored state.
func CloneEvening(e *Evening) *Evening {
	if e == nil {
		return nil
	}
	out := &Evening{
		Username:          e.Username,
		Players:           cloneIntMap(e.Players),
		Rounds:            make([]*Round, 0, len(e.Rounds)),
		HistoricalAmounts: make(map[string][]StackPoint, len(e.HistoricalAmounts)),
		Corrections:       append([]StackCorrection(nil), e.Corrections...),
	}
	for _, r := range e.Rounds {
		out.Rounds = append(out.Rounds, cloneRound(r))
	}
	for player, points := range e.HistoricalAmounts {
		out.HistoricalAmounts[player] = append([]StackPoint(nil), points...)
	}
	return out
}

func cloneRound(r *Round) *Round {
	if r == nil {
		return nil
	}
	out := &Round{
		Number:         r.Number,
		Dealer:         r.Dealer,
		InitialAmounts: cloneIntMap(r.InitialAmounts),
		KnownHands:     make(map[string][]string, len(r.KnownHands)),
		Flop:           append([]string(nil), r.Flop...),
		Turn:           r.Turn,
		River:          r.River,
		SecondFlop:     append([]string(nil), r.SecondFlop...),
		SecondTurn:     r.SecondTurn,
		SecondRiver:    r.SecondRiver,
		PreflopMoves:   append([]Action(nil), r.PreflopMoves...),
		FlopMoves:      append([]Action(nil), r.FlopMoves...),
		TurnMoves:      append([]Action(nil), r.TurnMoves...),
		RiverMoves:     append([]Action(nil), r.RiverMoves...),
		Winners:        make([]Winner, 0, len(r.Winners)),
	}
	for player, cards := range r.KnownHands {
		out.KnownHands[player] = append([]string(nil), cards...)
	}
	for _, w := range r.Winners {
		cw := w
		cw.Hand = append([]string(nil), w.Hand...)
		out.Winners = append(out.Winners, cw)
	}
	return out
}

func cloneIntMap(in map[string]int) map[string]int {
	out := make(map[string]int, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
