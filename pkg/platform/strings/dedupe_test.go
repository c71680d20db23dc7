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
		{
			name:     "nil slice",
			input:    nil,
			expected: nil,
		},
		{
			name:     "empty slice",
			input:    []string{},
			expected: []string{},
		},
		{
			name:     "trims whitespace",
			input:    []string{"  enable mfa  ", "rotate keys  "},
			expected: []string{"enable mfa", "rotate keys"},
		},
		{
			name:     "removes duplicates preserving order",
			input:    []string{"enable mfa", "rotate keys", "enable mfa"},
			expected: []string{"enable mfa", "rotate keys"},
		},
		{
			name:     "removes empty strings",
			input:    []string{"enable mfa", "", "  ", "rotate keys"},
			expected: []string{"enable mfa", "rotate keys"},
		},
		{
			name:     "preserves case",
			input:    []string{"Enable MFA", "enable mfa"},
			expected: []string{"Enable MFA", "enable mfa"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DedupeAndTrim(tt.input))
		})
	}
}
