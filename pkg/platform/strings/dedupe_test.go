package strings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDedupeAndTrim(t *testing.T) {
	tests := []struct {
		name     string
		input    []string
		expected []string
	}{
		{name: "nil slice", input: nil, expected: nil},
		{name: "empty slice", input: []string{}, expected: []string{}},
		{name: "trims whitespace", input: []string{"  a  ", "b  "}, expected: []string{"a", "b"}},
		{name: "removes duplicates preserving order", input: []string{"b", "a", "b"}, expected: []string{"b", "a"}},
		{name: "drops blanks", input: []string{"", "  ", "a"}, expected: []string{"a"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DedupeAndTrim(tt.input))
		})
	}
}

func TestSplitList(t *testing.T) {
	assert.Nil(t, SplitList("  ", ","))
	assert.Equal(t,
		[]string{"wss://relay.walletconnect.com", "wss://relay.walletconnect.org"},
		SplitList("wss://relay.walletconnect.com, wss://relay.walletconnect.org,wss://relay.walletconnect.com", ","))
}

func TestSplitPairs(t *testing.T) {
	pairs, ok := SplitPairs("0.0.1=Manufacturer, 0.0.2 = Retailer")
	assert.True(t, ok)
	assert.Equal(t, [][2]string{{"0.0.1", "Manufacturer"}, {"0.0.2", "Retailer"}}, pairs)

	pairs, ok = SplitPairs("0.0.1=Manufacturer,broken,=Retailer")
	assert.False(t, ok)
	assert.Len(t, pairs, 1)
}
