package output

import (
	"strings"

	"github.com/goliatone/go-stache/internal/htmlrules"
)

const htmlSpace = " \t\n\f\r"

// Shape normalises the children of parent the way a browser's parser
// would have produced them: whitespace-only text is dropped where the
// parent discards it, adjacent text is merged and empty text is removed.
func Shape[N any](parent string, pieces []Piece[N]) []Piece[N] {
	if len(pieces) == 0 {
		return nil
	}
	drop := htmlrules.DropsWhitespace(parent)
	out := make([]Piece[N], 0, len(pieces))
	for _, piece := range pieces {
		if piece.IsText {
			if drop && strings.Trim(piece.Text, htmlSpace) == "" {
				continue
			}
			if n := len(out); n > 0 && out[n-1].IsText {
				out[n-1].Text += piece.Text
				continue
			}
		}
		out = append(out, piece)
	}
	kept := out[:0]
	for _, piece := range out {
		if piece.IsText && piece.Text == "" {
			continue
		}
		kept = append(kept, piece)
	}
	if len(kept) == 0 {
		return nil
	}
	return kept
}
