package mpclient

import (
	"sync/atomic"
	"time"
)

// tzMismatch is the gap beyond which a server timestamp is assumed to come
// from a clock set to another timezone rather than from network latency.
const tzMismatch = 5 * time.Minute

// Clock estimates the offset between local time and server time.
//
// Small gaps are treated as latency and ignored. Only a gap of more than five
// minutes changes the offset, and then to the difference between the two
// timezone offsets rather than the raw gap. Every qualifying message
// recomputes the offset from scratch.
type Clock struct {
	now func() time.Time
	loc *time.Location

	offset      atomic.Int64 // ms
	serverZone  atomic.Int64 // seconds east of UTC
	serverKnown atomic.Bool
}

// NewClock returns a Clock using the system clock and local timezone
func NewClock() *Clock {
	return newClock(time.Now, time.Local)
}

func newClock(now func() time.Time, loc *time.Location) *Clock {
	return &Clock{now: now, loc: loc}
}

// SetServerZone records the server's UTC offset in seconds east
func (c *Clock) SetServerZone(secondsEast int) {
	c.serverZone.Store(int64(secondsEast))
	c.serverKnown.Store(true)
}

// ComputeOffset updates the offset from a server timestamp in unix ms
func (c *Clock) ComputeOffset(serverMs int64) {
	local := c.now().In(c.loc)
	// Compare in ms: a Duration overflows for gaps of a few hundred years.
	limit := tzMismatch.Milliseconds()
	if diff := serverMs - local.UnixMilli(); diff >= -limit && diff <= limit {
		c.offset.Store(0)
		return
	}

	_, clientEast := local.Zone()
	var serverEast int
	if c.serverKnown.Load() {
		serverEast = int(c.serverZone.Load())
	} else {
		// No zone from the server: use the local zone at the server's instant.
		_, serverEast = time.UnixMilli(serverMs).In(c.loc).Zone()
	}
	// Timezone offsets here count minutes behind UTC, so the server-minus-
	// client difference flips the sign of the seconds-east values.
	c.offset.Store(int64(clientEast-serverEast) * 1000)
}

// Offset returns the current estimate
func (c *Clock) Offset() time.Duration {
	return time.Duration(c.offset.Load()) * time.Millisecond
}

// ServerNow returns local time corrected by the offset
func (c *Clock) ServerNow() time.Time {
	return c.now().Add(c.Offset())
}

// LocalMs returns local time in unix ms
func (c *Clock) LocalMs() int64 {
	return c.now().UnixMilli()
}
