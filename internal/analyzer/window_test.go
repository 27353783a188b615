package analyzer

import (
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RostislavKrotenko/cybersecurity-smartenergy/pkg/contracts"
)

func windowEvent(offsetSec int) contracts.Event {
	instant := time.Date(2026, 2, 26, 10, 0, 0, 0, time.UTC).
		Add(time.Duration(offsetSec) * time.Second)
	return contracts.Event{
		Timestamp: contracts.FormatTimestamp(instant),
		Time:      instant,
		Source:    "s-" + strconv.Itoa(offsetSec),
	}
}

func TestSlidingWindow(t *testing.T) {
	t.Run("keeps events inside the span", func(t *testing.T) {
		w := newSlidingWindow(60)
		w.add(windowEvent(0))
		w.add(windowEvent(30))
		w.add(windowEvent(60))

		assert.Equal(t, 3, w.size(), "a gap equal to the span is still inside")
		assert.Equal(t, "s-0", w.first().Source)
	})

	t.Run("evicts events beyond the span", func(t *testing.T) {
		w := newSlidingWindow(60)
		w.add(windowEvent(0))
		w.add(windowEvent(30))
		w.add(windowEvent(100))

		assert.Equal(t, 2, w.size())
		assert.Equal(t, "s-30", w.first().Source)
	})

	t.Run("zero span keeps only the newest", func(t *testing.T) {
		w := newSlidingWindow(0)
		w.add(windowEvent(0))
		w.add(windowEvent(1))
		w.add(windowEvent(2))

		assert.Equal(t, 1, w.size())
		assert.Equal(t, "s-2", w.first().Source)
	})

	t.Run("events returns the live contents", func(t *testing.T) {
		w := newSlidingWindow(60)
		w.add(windowEvent(0))
		w.add(windowEvent(100))
		w.add(windowEvent(110))

		live := w.events()
		require.Len(t, live, 2)
		assert.Equal(t, "s-100", live[0].Source)
		assert.Equal(t, "s-110", live[1].Source)
	})
}

func TestEventGroupsOrder(t *testing.T) {
	g := newEventGroups()
	g.add("b", windowEvent(0))
	g.add("a", windowEvent(10))
	g.add("b", windowEvent(20))
	g.add("c", windowEvent(30))

	var keys []string
	var sizes []int
	g.each(func(key string, evts []contracts.Event) {
		keys = append(keys, key)
		sizes = append(sizes, len(evts))
	})

	assert.Equal(t, []string{"b", "a", "c"}, keys, "first-seen key order")
	assert.Equal(t, []int{2, 1, 1}, sizes)
}
