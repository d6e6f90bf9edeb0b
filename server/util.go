package main

import (
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// GeneratePlayerID returns a new random player id
func GeneratePlayerID() string {
	return uuid.NewString()
}

// UnixMs returns t as unix milliseconds
func UnixMs(t time.Time) int64 {
	return t.UnixMilli()
}

// ZoneOffset returns t's UTC offset in seconds east
func ZoneOffset(t time.Time) int {
	_, off := t.Zone()
	return off
}

// parseSkin reads the skin query parameter. The value is not validated beyond
// being an integer; anything else becomes 0.
func parseSkin(raw string) int {
	skin, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return skin
}

func extractIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
