package dedupe_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/leadbothq/leadbot/internal/dedupe"
)

func TestSeen_FirstFalseThenTrue(t *testing.T) {
	guard := dedupe.NewGuard(10, time.Hour)
	assert.False(t, guard.Seen("wamid.1"))
	assert.True(t, guard.Seen("wamid.1"))
	assert.True(t, guard.Seen("wamid.1"))
	assert.False(t, guard.Seen("wamid.2"))
}

func TestSeen_CapacityEvictsOldest(t *testing.T) {
	guard := dedupe.NewGuard(3, time.Hour)
	for i := 0; i < 3; i++ {
		guard.Seen(fmt.Sprintf("id-%d", i))
	}
	assert.Equal(t, 3, guard.Len())

	// A fourth id evicts id-0, which then reads as fresh again.
	assert.False(t, guard.Seen("id-3"))
	assert.Equal(t, 3, guard.Len())
	assert.False(t, guard.Seen("id-0"))
	assert.True(t, guard.Seen("id-3"))
}

func TestSeen_WindowExpiry(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	guard := dedupe.NewGuard(10, time.Minute).WithClock(clock)

	assert.False(t, guard.Seen("wamid.1"))
	now = now.Add(30 * time.Second)
	assert.True(t, guard.Seen("wamid.1"), "still inside the window")

	now = now.Add(31 * time.Second)
	assert.False(t, guard.Seen("wamid.1"), "window elapsed, id is fresh again")
}

func TestNewGuard_Defaults(t *testing.T) {
	guard := dedupe.NewGuard(0, 0)
	assert.False(t, guard.Seen("x"))
	assert.True(t, guard.Seen("x"))
}
