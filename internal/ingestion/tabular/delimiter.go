package tabular

import "bytes"

// DelimiterStrategy picks the field separator of delimited text.
type DelimiterStrategy interface {
	Detect(content []byte) rune
}

// CountHeuristic chooses ';' when the raw content has strictly more semicolons
// than commas and ',' otherwise. Quoted text and free-form cells are counted
// too, so this is a guess: a comma-separated file whose cells contain many
// semicolons is misdetected. Callers needing certainty use FixedDelimiter.
type CountHeuristic struct{}

func (CountHeuristic) Detect(content []byte) rune {
	if bytes.Count(content, []byte{';'}) > bytes.Count(content, []byte{','}) {
		return ';'
	}
	return ','
}

// FixedDelimiter always returns the same separator.
type FixedDelimiter rune

func (f FixedDelimiter) Detect([]byte) rune { return rune(f) }
