package main

import (
	"testing"
	"time"
)

func TestAllowMessageDropsWithinWindow(t *testing.T) {
	c := &Client{remoteAddr: "1.2.3.4"}
	start := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	allowed := 0
	for i := 0; i < maxMessagesPerSec*2; i++ {
		if c.allowMessage(start.Add(time.Duration(i) * time.Millisecond)) {
			allowed++
		}
	}
	if allowed != maxMessagesPerSec {
		t.Errorf("expected %d messages allowed in one window, got %d", maxMessagesPerSec, allowed)
	}

	if !c.allowMessage(start.Add(1500 * time.Millisecond)) {
		t.Error("expected the cap to reset in the next window")
	}
}

func TestAllowMessageHighRefreshRate(t *testing.T) {
	c := &Client{remoteAddr: "1.2.3.4"}
	start := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	frame := time.Second / 165

	for i := 0; i < 165*3; i++ {
		if !c.allowMessage(start.Add(time.Duration(i) * frame)) {
			t.Fatalf("frame %d at 165 Hz was dropped", i)
		}
	}
}
