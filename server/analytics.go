package main

import (
	"database/sql"
	"fmt"
	"log"
	"sync"
	"time"
)

// Event types for analytics tracking
const (
	EvtConnect    = "connect"
	EvtDisconnect = "disconnect"
)

// AnalyticsEvent represents a single trackable event
type AnalyticsEvent struct {
	Type      string
	PeerID    string
	Data      string // JSON metadata (optional)
	Timestamp time.Time
}

// Analytics handles event tracking with batched background writes
type Analytics struct {
	db       *DB
	events   chan AnalyticsEvent
	stop     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup

	mu              sync.RWMutex
	concurrentPeers int
}

// NewAnalytics creates and starts the analytics background writer. db may be
// nil, in which case events are counted live but never stored.
func NewAnalytics(db *DB) *Analytics {
	a := &Analytics{
		db:     db,
		events: make(chan AnalyticsEvent, 1024),
		stop:   make(chan struct{}),
	}
	a.wg.Add(1)
	go a.writer()
	return a
}

// Track enqueues an event for async persistence (non-blocking)
func (a *Analytics) Track(evtType, peerID, data string) {
	select {
	case a.events <- AnalyticsEvent{
		Type:      evtType,
		PeerID:    peerID,
		Data:      data,
		Timestamp: time.Now().UTC(),
	}:
	default:
		// Channel full, drop the event
	}
}

// SetConcurrentPeers updates live player count metric
func (a *Analytics) SetConcurrentPeers(n int) {
	a.mu.Lock()
	a.concurrentPeers = n
	a.mu.Unlock()
}

// ConcurrentPeers returns the live player count metric
func (a *Analytics) ConcurrentPeers() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.concurrentPeers
}

// Stop flushes pending events and shuts down the writer
func (a *Analytics) Stop() {
	a.stopOnce.Do(func() {
		close(a.stop)
		a.wg.Wait()
	})
}

// writer is the background goroutine that batches and writes events to DB
func (a *Analytics) writer() {
	defer a.wg.Done()

	batch := make([]AnalyticsEvent, 0, 64)
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case evt := <-a.events:
			batch = append(batch, evt)
			if len(batch) >= 50 {
				a.flush(batch)
				batch = batch[:0]
			}
		case <-ticker.C:
			if len(batch) > 0 {
				a.flush(batch)
				batch = batch[:0]
			}
		case <-a.stop:
			// Drain what is queued; Track may still be called afterwards
			// so the channel stays open.
		drain:
			for {
				select {
				case evt := <-a.events:
					batch = append(batch, evt)
				default:
					break drain
				}
			}
			if len(batch) > 0 {
				a.flush(batch)
			}
			return
		}
	}
}

// flush writes a batch of events to the database
func (a *Analytics) flush(events []AnalyticsEvent) {
	if a.db == nil || len(events) == 0 {
		return
	}
	tx, err := a.db.conn.Begin()
	if err != nil {
		log.Printf("analytics: begin tx error: %v", err)
		return
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT INTO analytics_events (event_type, peer_id, data, created_at) VALUES (?, ?, ?, ?)`)
	if err != nil {
		log.Printf("analytics: prepare error: %v", err)
		return
	}
	defer stmt.Close()

	for _, evt := range events {
		pid := sql.NullString{String: evt.PeerID, Valid: evt.PeerID != ""}
		data := sql.NullString{String: evt.Data, Valid: evt.Data != ""}
		_, err := stmt.Exec(evt.Type, pid, data, evt.Timestamp.Format(time.RFC3339))
		if err != nil {
			log.Printf("analytics: insert error: %v", err)
		}
	}
	if err := tx.Commit(); err != nil {
		log.Printf("analytics: commit error: %v", err)
	}
}

// skinData formats the metadata stored with a connect event
func skinData(skin int) string {
	return fmt.Sprintf(`{"skin":%d}`, skin)
}

// --- Query methods for the API ---

// EventCounts returns counts of each event type for the last N days
func (a *Analytics) EventCounts(days int) (map[string]int, error) {
	if a.db == nil {
		return nil, nil
	}
	rows, err := a.db.conn.Query(`
		SELECT event_type, COUNT(*) FROM analytics_events
		WHERE created_at >= date('now', '-' || ? || ' days')
		GROUP BY event_type ORDER BY COUNT(*) DESC
	`, days)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[string]int)
	for rows.Next() {
		var evtType string
		var count int
		if err := rows.Scan(&evtType, &count); err != nil {
			continue
		}
		result[evtType] = count
	}
	return result, rows.Err()
}

// DailyActiveHistory returns distinct connecting peers per day for the last N days
func (a *Analytics) DailyActiveHistory(days int) ([]DayCount, error) {
	if a.db == nil {
		return nil, nil
	}
	rows, err := a.db.conn.Query(`
		SELECT date(created_at) as day, COUNT(DISTINCT peer_id)
		FROM analytics_events
		WHERE event_type = ? AND peer_id IS NOT NULL
			AND created_at >= date('now', '-' || ? || ' days')
		GROUP BY day ORDER BY day
	`, EvtConnect, days)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []DayCount
	for rows.Next() {
		var dc DayCount
		if err := rows.Scan(&dc.Day, &dc.Count); err != nil {
			continue
		}
		result = append(result, dc)
	}
	return result, rows.Err()
}

// SkinPopularity returns how often each skin was chosen on connect
func (a *Analytics) SkinPopularity(limit int) ([]SkinCount, error) {
	if a.db == nil {
		return nil, nil
	}
	rows, err := a.db.conn.Query(`
		SELECT CAST(json_extract(data, '$.skin') AS INTEGER) as skin, COUNT(*) as cnt
		FROM analytics_events
		WHERE event_type = ? AND json_valid(data)
		GROUP BY skin ORDER BY cnt DESC LIMIT ?
	`, EvtConnect, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []SkinCount
	for rows.Next() {
		var sc SkinCount
		if err := rows.Scan(&sc.Skin, &sc.Count); err != nil {
			continue
		}
		result = append(result, sc)
	}
	return result, rows.Err()
}

// DayCount holds a count for a specific day
type DayCount struct {
	Day   string `json:"day"`
	Count int    `json:"count"`
}

// SkinCount holds connect count per skin
type SkinCount struct {
	Skin  int `json:"skin"`
	Count int `json:"count"`
}
