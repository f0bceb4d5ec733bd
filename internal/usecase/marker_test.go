package usecase

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripMarker(t *testing.T) {
	tests := []struct {
		name     string
		fragment string
		visible  string
		outcome  Outcome
	}{
		{"no marker", "Hi there!", "Hi there!", OutcomeNone},
		{"strong marker at end", " link#", " link", OutcomeStrong},
		{"weak marker at end", "Have a great day!*", "Have a great day!", OutcomeWeak},
		{"strong marker alone", "#", "", OutcomeStrong},
		{"weak marker alone", "*", "", OutcomeWeak},
		{"marker before trailing newline", "bye*\n", "bye", OutcomeWeak},
		{"marker mid-prose is not detected", "a # b", "a # b", OutcomeNone},
		{"whitespace only", "   ", "   ", OutcomeNone},
		{"empty", "", "", OutcomeNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			visible, outcome := StripMarker(tt.fragment)
			assert.Equal(t, tt.visible, visible)
			assert.Equal(t, tt.outcome, outcome)
		})
	}
}

func TestOutcomeString(t *testing.T) {
	assert.Equal(t, "STRONG", OutcomeStrong.String())
	assert.Equal(t, "WEAK", OutcomeWeak.String())
	assert.Equal(t, "", OutcomeNone.String())
}
