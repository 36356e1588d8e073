package timetable

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lineABC() *Service {
	return MustService(1, 100,
		NewStation("A", Clock(8, 0)),
		NewStation("B", Clock(9, 0)),
		NewStation("C", Clock(10, 0)))
}

func TestSegmentCost(t *testing.T) {
	s := lineABC()

	t.Run("whole run costs the whole fare", func(t *testing.T) {
		seg := NewSegment(s, 0, 2)
		assert.InDelta(t, 100.0, seg.Cost(), 1e-9)
		assert.Equal(t, 2*time.Hour, seg.Duration())
	})

	t.Run("fare is apportioned per minute", func(t *testing.T) {
		seg := NewSegment(s, 1, 2)
		assert.InDelta(t, 50.0, seg.Cost(), 1e-9)
	})

	t.Run("fractional fares are kept", func(t *testing.T) {
		odd := MustService(2, 10,
			NewStation("A", Clock(8, 0)),
			NewStation("B", Clock(8, 20)),
			NewStation("C", Clock(9, 0)))
		assert.InDelta(t, 10.0/3.0, NewSegment(odd, 0, 1).Cost(), 1e-9)
	})

	t.Run("zero length segment is free", func(t *testing.T) {
		assert.Zero(t, NewSegment(s, 1, 1).Cost())
	})

	t.Run("instant service charges its fare", func(t *testing.T) {
		instant := MustService(3, 12, NewStation("A", Clock(8, 0)), NewStation("B", Clock(8, 0)))
		assert.InDelta(t, 12.0, NewSegment(instant, 0, 1).Cost(), 1e-9)
	})
}

func TestNewSegmentPanicsOnBackwardSlice(t *testing.T) {
	s := lineABC()
	assert.Panics(t, func() { NewSegment(s, 2, 1) })
	assert.Panics(t, func() { NewSegment(s, 0, 3) })
	assert.Panics(t, func() { NewSegment(nil, 0, 0) })
}

func TestSegmentHasStation(t *testing.T) {
	s := MustService(4, 40,
		NewStation("A", Clock(8, 0)),
		NewStation("B", Clock(8, 30)),
		NewStation("C", Clock(9, 0)),
		NewStation("D", Clock(9, 30)))
	seg := NewSegment(s, 1, 2)

	assert.True(t, seg.HasStation("B"))
	assert.True(t, seg.HasStation("C"))
	assert.False(t, seg.HasStation("A"))
	assert.False(t, seg.HasStation("D"))
}

// With a repeated name the scan matches by name, so the first occurrence of
// the boarding name opens the window even when the segment boards later.
func TestSegmentHasStationFirstOccurrenceWins(t *testing.T) {
	loop := MustService(5, 60,
		NewStation("A", Clock(8, 0)),
		NewStation("X", Clock(8, 10)),
		NewStation("B", Clock(8, 20)),
		NewStation("A", Clock(8, 30)),
		NewStation("C", Clock(8, 40)))
	seg := NewSegment(loop, 3, 4)

	assert.True(t, seg.HasStation("X"), "window opened at the first A")
	assert.True(t, seg.HasStation("C"))
}

func TestSegmentBetween(t *testing.T) {
	loop := MustService(6, 60,
		NewStation("A", Clock(8, 0)),
		NewStation("B", Clock(8, 20)),
		NewStation("A", Clock(8, 30)),
		NewStation("C", Clock(8, 40)))

	seg, ok := SegmentBetween(loop, "A", "C")
	require.True(t, ok)
	assert.Equal(t, 2, seg.FirstIndex(), "latest boarding occurrence before the alighting stop")
	assert.Equal(t, 3, seg.LastIndex())

	seg, ok = SegmentBetween(loop, "A", "B")
	require.True(t, ok)
	assert.Equal(t, 0, seg.FirstIndex())
	assert.Equal(t, 1, seg.LastIndex())

	_, ok = SegmentBetween(loop, "C", "A")
	assert.False(t, ok)
}

func TestSegmentStations(t *testing.T) {
	seg := NewSegment(lineABC(), 0, 1)
	stops := seg.Stations()
	require.Len(t, stops, 2)
	assert.Equal(t, "A", stops[0].Name)
	assert.Equal(t, "B", stops[1].Name)
	assert.Equal(t, "Service #1 @ 50.00\n08:00 A\n09:00 B", seg.String())
}
