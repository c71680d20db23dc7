package template

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIncrementMinor(t *testing.T) {
	tests := []struct {
		name     string
		version  string
		expected string
	}{
		{name: "initial bump", version: "1.0", expected: "1.1"},
		{name: "subsequent bump", version: "1.9", expected: "1.10"},
		{name: "higher major preserved", version: "3.2", expected: "3.3"},
		{name: "malformed resets", version: "banana", expected: "1.1"},
		{name: "too many components resets", version: "1.2.3", expected: "1.1"},
		{name: "non-numeric minor resets", version: "1.x", expected: "1.1"},
		{name: "empty resets", version: "", expected: "1.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, incrementMinor(tt.version))
		})
	}
}
