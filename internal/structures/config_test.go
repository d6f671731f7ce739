package structures

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSeatIDs_ContiguousFromFirstID(t *testing.T) {
	conf := &Config{Seats: SeatsConfig{Count: 3, FirstID: 10}}
	assert.Equal(t, []int{10, 11, 12}, conf.SeatIDs())
}

func TestSeatIDs_DefaultsToOne(t *testing.T) {
	conf := &Config{Seats: SeatsConfig{Count: 4}}
	assert.Equal(t, []int{1, 2, 3, 4}, conf.SeatIDs())
}

func TestSeatIDs_ZeroCount(t *testing.T) {
	conf := &Config{}
	assert.Empty(t, conf.SeatIDs())
}
