package main

import (
	"encoding/json"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"mousemaze/protocol"
)

const (
	maxConnsPerIP = 8
	maxTotalConns = 1000
)

type eventKind int

const (
	evConnect eventKind = iota
	evDisconnect
	evFrame
)

// hubEvent is a connection event or a binary frame read from a client. All
// three kinds share one channel so a client's events keep their order.
type hubEvent struct {
	kind eventKind
	from *Client
	data []byte
}

// Hub owns the roster. Events are handled one at a time by Run, so the
// roster needs no lock.
type Hub struct {
	roster    map[string]*Client
	order     []*Client // join order, for roster snapshots
	events    chan hubEvent
	done      chan struct{}
	stopOnce  sync.Once
	peers     atomic.Int64
	analytics *Analytics
	now       func() time.Time
	// Connection limiting (mutex-protected, accessed from HTTP handlers)
	connMu     sync.Mutex
	ipConns    map[string]int
	totalConns int
}

// NewHub creates a new Hub. analytics may be nil.
func NewHub(analytics *Analytics) *Hub {
	return &Hub{
		roster:    make(map[string]*Client),
		events:    make(chan hubEvent, 256),
		done:      make(chan struct{}),
		analytics: analytics,
		now:       time.Now,
		ipConns:   make(map[string]int),
	}
}

func (h *Hub) CanAccept(ip string) bool {
	h.connMu.Lock()
	defer h.connMu.Unlock()
	if h.totalConns >= maxTotalConns {
		return false
	}
	if h.ipConns[ip] >= maxConnsPerIP {
		return false
	}
	return true
}

func (h *Hub) TrackConnect(ip string) {
	h.connMu.Lock()
	defer h.connMu.Unlock()
	h.ipConns[ip]++
	h.totalConns++
}

func (h *Hub) TrackDisconnect(ip string) {
	h.connMu.Lock()
	defer h.connMu.Unlock()
	h.ipConns[ip]--
	if h.ipConns[ip] <= 0 {
		delete(h.ipConns, ip)
	}
	h.totalConns--
}

// Run processes connection and frame events until Stop is called
func (h *Hub) Run() {
	for {
		select {
		case ev := <-h.events:
			switch ev.kind {
			case evConnect:
				h.handleConnect(ev.from)
			case evDisconnect:
				h.handleDisconnect(ev.from)
			case evFrame:
				h.handleFrame(ev)
			}
		case <-h.done:
			return
		}
	}
}

// Stop terminates Run
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.done) })
}

// submit hands ev to Run unless the hub has stopped
func (h *Hub) submit(ev hubEvent) {
	select {
	case h.events <- ev:
	case <-h.done:
	}
}

// PeerCount returns the roster size. Safe to call from any goroutine.
func (h *Hub) PeerCount() int {
	return int(h.peers.Load())
}

// TotalConns returns the tracked connection count
func (h *Hub) TotalConns() int {
	h.connMu.Lock()
	defer h.connMu.Unlock()
	return h.totalConns
}

func (h *Hub) handleConnect(c *Client) {
	if _, ok := h.roster[c.player.ID]; ok {
		return
	}
	h.roster[c.player.ID] = c
	h.order = append(h.order, c)
	h.peers.Store(int64(len(h.order)))
	log.Printf("client connected: %s skin=%d total=%d", c.player.ID, c.player.Skin, len(h.order))

	now := h.now()
	c.SendJSON(protocol.Envelope{T: protocol.MsgServerInfo, Data: protocol.ServerInfoMsg{
		Time: UnixMs(now),
		TZ:   ZoneOffset(now),
		ID:   c.player.ID,
	}})
	c.SendJSON(protocol.Envelope{T: protocol.MsgRoster, Data: protocol.RosterMsg{Players: h.snapshot()}})

	h.broadcast(protocol.Envelope{T: protocol.MsgRosterSize, Data: protocol.RosterSizeMsg{Count: len(h.order)}})
	h.broadcast(protocol.Envelope{T: protocol.MsgPlayerJoined, Data: c.player})

	if h.analytics != nil {
		h.analytics.Track(EvtConnect, c.player.ID, skinData(c.player.Skin))
		h.analytics.SetConcurrentPeers(len(h.order))
	}
}

func (h *Hub) handleDisconnect(c *Client) {
	if h.roster[c.player.ID] != c {
		return
	}
	delete(h.roster, c.player.ID)
	for i, o := range h.order {
		if o == c {
			h.order = append(h.order[:i], h.order[i+1:]...)
			break
		}
	}
	h.peers.Store(int64(len(h.order)))
	close(c.send)
	log.Printf("client disconnected: %s total=%d", c.player.ID, len(h.order))

	h.broadcast(protocol.Envelope{T: protocol.MsgRosterSize, Data: protocol.RosterSizeMsg{Count: len(h.order)}})
	h.broadcast(protocol.Envelope{T: protocol.MsgPlayerLeft, Data: protocol.PlayerLeftMsg{ID: c.player.ID}})

	if h.analytics != nil {
		h.analytics.Track(EvtDisconnect, c.player.ID, "")
		h.analytics.SetConcurrentPeers(len(h.order))
	}
}

// handleFrame relays a client's frame to every other peer, stamped with the
// server receive time. The payload is passed through untouched.
func (h *Hub) handleFrame(ev hubEvent) {
	if h.roster[ev.from.player.ID] != ev.from {
		return
	}
	in, err := protocol.DecodeFrameIn(ev.data)
	if err != nil {
		log.Printf("frame from %s: %v", ev.from.player.ID, err)
		return
	}
	data, err := msgpack.Marshal(&protocol.FrameOut{
		Time:    UnixMs(h.now()),
		ID:      ev.from.player.ID,
		Payload: in.Payload,
		Sent:    in.Sent,
	})
	if err != nil {
		log.Printf("marshal relayed frame: %v", err)
		return
	}
	for _, c := range h.order {
		if c != ev.from {
			c.SendBinary(data)
		}
	}
}

func (h *Hub) snapshot() []protocol.Player {
	players := make([]protocol.Player, 0, len(h.order))
	for _, c := range h.order {
		players = append(players, c.player)
	}
	return players
}

// broadcast sends a message to every peer in the roster
func (h *Hub) broadcast(msg protocol.Envelope) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("marshal error: %v", err)
		return
	}
	for _, c := range h.order {
		c.SendRaw(data)
	}
}
