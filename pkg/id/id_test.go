package id

import (
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIsULID(t *testing.T) {
	t.Parallel()

	s := New()
	_, err := ulid.Parse(s)
	require.NoError(t, err)
	assert.Len(t, s, 26)
}

func TestNewIsSortable(t *testing.T) {
	t.Parallel()

	a := New()
	b := New()
	assert.Less(t, a, b)
}

func TestNextAtIsMonotonic(t *testing.T) {
	now := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)

	first := NextAt(now)
	second := NextAt(now)
	third := NextAt(now.Add(-time.Second))

	assert.Greater(t, second, first)
	assert.Greater(t, third, second)
}

func TestObserveBumpsSequence(t *testing.T) {
	future := time.Date(2040, 1, 1, 0, 0, 0, 0, time.UTC).UnixMilli()
	Observe(future)

	assert.Greater(t, Next(), future)
}
