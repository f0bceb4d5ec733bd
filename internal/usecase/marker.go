package usecase

import "strings"

// Qualification markers the model appends as the very last character of its
// final fragment. They are an out-of-band signal and must never reach a
// subscriber.
const (
	strongMarker = '#'
	weakMarker   = '*'
)

// Outcome is the qualification signal demultiplexed out of one turn's stream.
type Outcome int

const (
	OutcomeNone Outcome = iota
	OutcomeStrong
	OutcomeWeak
)

func (o Outcome) String() string {
	switch o {
	case OutcomeStrong:
		return "STRONG"
	case OutcomeWeak:
		return "WEAK"
	default:
		return ""
	}
}

// StripMarker inspects a single stream fragment for a trailing qualification
// marker and returns the user-visible text plus the detected outcome.
//
// The prompt instructs the model to place the marker as the absolute last
// character of its last fragment, so only the fragment tail is checked. A
// marker appearing mid-prose is not detected; that is a known precision gap of
// the protocol, kept on purpose rather than buffering across fragments.
func StripMarker(fragment string) (string, Outcome) {
	tail := strings.TrimRight(fragment, " \t\r\n")
	if tail == "" {
		return fragment, OutcomeNone
	}

	switch tail[len(tail)-1] {
	case strongMarker:
		return tail[:len(tail)-1], OutcomeStrong
	case weakMarker:
		return tail[:len(tail)-1], OutcomeWeak
	}

	return fragment, OutcomeNone
}
