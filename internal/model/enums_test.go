package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseCategory(t *testing.T) {
	c, ok := ParseCategory(" professional ")
	assert.True(t, ok)
	assert.Equal(t, CategoryProfessional, c)

	_, ok = ParseCategory("Spiritual")
	assert.False(t, ok)
}

func TestParsePriority(t *testing.T) {
	p, ok := ParsePriority("HIGH")
	assert.True(t, ok)
	assert.Equal(t, PriorityHigh, p)

	_, ok = ParsePriority("Urgent")
	assert.False(t, ok)
}

func TestPriorityRank(t *testing.T) {
	assert.Greater(t, PriorityHigh.Rank(), PriorityMedium.Rank())
	assert.Greater(t, PriorityMedium.Rank(), PriorityLow.Rank())
	assert.Greater(t, PriorityLow.Rank(), Priority("").Rank())
}
