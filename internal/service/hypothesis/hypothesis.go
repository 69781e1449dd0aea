// Package hypothesis defines the recognition result produced per decoder
// utterance and the fold used to merge results across utterance boundaries.
package hypothesis

// Hypothesis is the best recognition result for one decoder utterance.
// Immutable once produced; a nil *Hypothesis means no speech was recognized.
type Hypothesis struct {
	Text  string
	Score int64
}

// Combine folds two optional hypotheses into one: both present concatenates
// the texts with a single space and sums the scores, one present returns it,
// neither returns nil.
//
// nil is a left and right identity and the fold is associative, so folding
// across any number of utterance boundaries yields the same result no matter
// how the audio stream was chunked.
func Combine(a, b *Hypothesis) *Hypothesis {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return &Hypothesis{
		Text:  a.Text + " " + b.Text,
		Score: a.Score + b.Score,
	}
}
