package parser

// moneyInPhase computes the amount contributed by each player within one
// betting phase.
//
// Within a phase, a player's later monetary actions supersede earlier ones
// rather than summing: a raise restates the player's total commitment for
// the phase, so the last amount wins. An uncalled-bet return subtracts,
// handing back chips no opponent could match. Missing-blind postings are
// additive on top of whatever was computed, with the missing big blind
// counted only when the player did not also post a missing small blind in
// the same phase.
func moneyInPhase(moves []Action) map[string]int {
	spent := make(map[string]int)
	for _, m := range moves {
		if m.Amount == 0 {
			continue
		}
		if m.Kind == ActionUncalledBetReturn {
			spent[m.Player] -= m.Amount
		} else {
			spent[m.Player] = m.Amount
		}
	}

	for _, m := range moves {
		if m.Kind == ActionMissingSmallBlind {
			spent[m.Player] += m.Amount
		}
		if m.Kind == ActionMissingBigBlind && len(findMoves(m.Player, ActionMissingSmallBlind, moves)) == 0 {
			spent[m.Player] += m.Amount
		}
	}

	return spent
}
