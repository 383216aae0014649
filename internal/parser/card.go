package parser

import "strings"

// RankOrder lists card ranks from weakest to strongest. The index of a rank
// in this string is its relative strength, used when labeling hand shapes.
const RankOrder = "23456789TJQKA"

// NormalizeRank maps the two-character "10" rank to its single-letter form.
func NormalizeRank(card string) string {
	return strings.Replace(card, "10", "T", 1)
}

// CardRank returns the rank portion of a card identifier such as "As" or
// "10♠". The ten is normalized to "T".
func CardRank(card string) string {
	card = NormalizeRank(card)
	runes := []rune(card)
	if len(runes) == 0 {
		return ""
	}
	return string(runes[0])
}

// CardSuit returns the suit marker of a card identifier. Suits may be ASCII
// letters or unicode pips depending on the log vintage, so the last rune is
// taken as-is.
func CardSuit(card string) string {
	runes := []rune(card)
	if len(runes) == 0 {
		return ""
	}
	return string(runes[len(runes)-1])
}

// RankIndex returns the strength index of a single-letter rank, or -1 when
// the rank is not recognized.
func RankIndex(rank string) int {
	return strings.Index(RankOrder, rank)
}

// HandShape labels a two-card holding in standard notation: "AKs" for
// suited, "AKo" for offsuit, "TT" for pairs. The stronger rank comes first.
func HandShape(c1, c2 string) string {
	r1, r2 := CardRank(c1), CardRank(c2)
	if r1 == r2 {
		return r1 + r2
	}
	suffix := "o"
	if CardSuit(c1) == CardSuit(c2) {
		suffix = "s"
	}
	if RankIndex(r1) > RankIndex(r2) {
		return r1 + r2 + suffix
	}
	return r2 + r1 + suffix
}
