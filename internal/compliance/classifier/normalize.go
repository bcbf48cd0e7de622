package classifier

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Input is a query prepared for rule evaluation. Original keeps the user's
// capitalization; Folded is case-folded for pattern matching.
type Input struct {
	Original string
	Folded   string
}

var (
	folder = cases.Fold()

	apostrophes = strings.NewReplacer(
		"‘", "'",
		"’", "'",
		"ʼ", "'",
		"`", "'",
	)
)

// Prepare normalizes raw query text. NFKC maps compatibility forms (fullwidth
// letters, ligatures) onto their canonical characters so they cannot slip past
// the patterns.
func Prepare(text string) Input {
	s := norm.NFKC.String(text)
	s = apostrophes.Replace(s)
	s = strings.Join(strings.Fields(s), " ")
	return Input{
		Original: s,
		Folded:   folder.String(s),
	}
}
