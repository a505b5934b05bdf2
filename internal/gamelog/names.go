package gamelog

import "strings"

var nameSuffixes = map[string]bool{
	"jr":  true,
	"sr":  true,
	"ii":  true,
	"iii": true,
	"iv":  true,
}

// NormalizeName folds a player name into a matching key: lowercase, letters
// and single spaces only, generational suffixes dropped.
// "Jaren Jackson Jr." -> "jaren jackson".
func NormalizeName(name string) string {
	folded := strings.Map(func(r rune) rune {
		if r >= 'a' && r <= 'z' {
			return r
		}
		return ' '
	}, strings.ToLower(name))

	words := strings.Fields(folded)
	kept := words[:0]
	for _, w := range words {
		if nameSuffixes[w] {
			continue
		}
		kept = append(kept, w)
	}
	return strings.Join(kept, " ")
}
