package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseGroupingMode(t *testing.T) {
	for in, want := range map[string]GroupingMode{
		"":           GroupPerUnit,
		"per-unit":   GroupPerUnit,
		"individual": GroupPerUnit,
		"merged":     GroupMerged,
		"grouped":    GroupMerged,
	} {
		got, err := ParseGroupingMode(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseGroupingMode("bridge")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestGroupingMode_OrDefault(t *testing.T) {
	assert.Equal(t, GroupPerUnit, GroupingMode("").OrDefault())
	assert.Equal(t, GroupMerged, GroupMerged.OrDefault())
}
