package score

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTierBoundaries(t *testing.T) {
	cases := map[float64]int{
		-100:  0,
		-20.5: 0,
		-20:   1,
		-10:   2,
		-1:    3,
		0:     3,
		1:     4,
		4.99:  4,
		5:     5,
		10:    6,
		1e6:   6,
	}
	for value, want := range cases {
		assert.Equal(t, want, Tier(value), "value %v", value)
	}
}

func TestTierMonotonic(t *testing.T) {
	prev := Tier(-50)
	for v := -50.0; v <= 50; v += 0.25 {
		got := Tier(v)
		assert.GreaterOrEqual(t, got, prev, "value %v", v)
		prev = got
	}
}

func TestSymbol(t *testing.T) {
	assert.Equal(t, "****", Symbol(1))
	assert.Equal(t, "*", Symbol(-25))
	assert.Equal(t, "*******", Symbol(12))
}
