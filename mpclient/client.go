// Package mpclient connects a game to the relay server. It keeps track of
// the roster, estimates the server clock offset and delivers everything the
// server sends as a stream of typed events.
package mpclient

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"mousemaze/protocol"
)

const (
	writeWait     = 10 * time.Second
	eventBufSize  = 256
	closeDeadline = time.Second
)

// Client is a connection to the relay server
type Client struct {
	conn   *websocket.Conn
	clock  *Clock
	events chan Event
	done   chan struct{}

	writeMu   sync.Mutex
	closeOnce sync.Once

	mu      sync.RWMutex
	localID string
	local   protocol.Player
	players []protocol.Player
	err     error
}

// Dial connects to the server's websocket endpoint with the given skin
func Dial(ctx context.Context, rawURL string, skin int) (*Client, error) {
	return dial(ctx, rawURL, skin, NewClock())
}

func dial(ctx context.Context, rawURL string, skin int, clock *Clock) (*Client, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse url: %w", err)
	}
	q := u.Query()
	q.Set(protocol.SkinParam, strconv.Itoa(skin))
	u.RawQuery = q.Encode()

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", u.Host, err)
	}

	c := &Client{
		conn:   conn,
		clock:  clock,
		events: make(chan Event, eventBufSize),
		done:   make(chan struct{}),
		local:  protocol.Player{Skin: -1},
	}
	go c.readLoop()
	return c, nil
}

// Events returns the event stream. It is closed when the connection ends.
func (c *Client) Events() <-chan Event {
	return c.events
}

// Clock returns the client's server clock estimate
func (c *Client) Clock() *Clock {
	return c.clock
}

// Local returns this client's player, or a zero id before the server has
// announced it
func (c *Client) Local() protocol.Player {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.local
}

// Players returns the last known roster
func (c *Client) Players() []protocol.Player {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]protocol.Player, len(c.players))
	copy(out, c.players)
	return out
}

// Err returns the error that ended the connection, if any
func (c *Client) Err() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.err
}

// SendFrame sends this player's frame data, stamped with local time
func (c *Client) SendFrame(payload interface{}) error {
	data, err := protocol.EncodeFrame(payload, c.clock.LocalMs())
	if err != nil {
		return err
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := c.conn.WriteMessage(websocket.BinaryMessage, data); err != nil {
		return fmt.Errorf("send frame: %w", err)
	}
	return nil
}

// Close disconnects from the server
func (c *Client) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.done)
		c.writeMu.Lock()
		c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(closeDeadline))
		c.writeMu.Unlock()
		err = c.conn.Close()
	})
	return err
}

func (c *Client) readLoop() {
	defer close(c.events)
	for {
		msgType, raw, err := c.conn.ReadMessage()
		if err != nil {
			select {
			case <-c.done:
			default:
				c.mu.Lock()
				c.err = err
				c.mu.Unlock()
			}
			return
		}
		if msgType == websocket.BinaryMessage {
			c.handleFrame(raw)
		} else {
			c.handleEnvelope(raw)
		}
	}
}

func (c *Client) emit(ev Event) {
	select {
	case c.events <- ev:
	case <-c.done:
	}
}

func (c *Client) handleFrame(raw []byte) {
	f, err := protocol.DecodeFrameOut(raw)
	if err != nil {
		log.Printf("mpclient: %v", err)
		return
	}
	c.clock.ComputeOffset(f.Time)
	c.emit(Frame{ID: f.ID, Payload: f.Payload, Sent: f.Sent, ServerTime: f.Time})
}

func (c *Client) handleEnvelope(raw []byte) {
	var env protocol.InEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		log.Printf("mpclient: unmarshal error: %v", err)
		return
	}

	switch env.T {
	case protocol.MsgServerInfo:
		var msg protocol.ServerInfoMsg
		if err := env.Unmarshal(&msg); err != nil {
			return
		}
		c.clock.SetServerZone(msg.TZ)
		c.clock.ComputeOffset(msg.Time)
		c.mu.Lock()
		c.localID = msg.ID
		c.mu.Unlock()

	case protocol.MsgRoster:
		var msg protocol.RosterMsg
		if err := env.Unmarshal(&msg); err != nil {
			return
		}
		c.mu.Lock()
		c.players = msg.Players
		c.mu.Unlock()

	case protocol.MsgRosterSize:
		var msg protocol.RosterSizeMsg
		if err := env.Unmarshal(&msg); err != nil {
			return
		}
		c.emit(RosterSize{Count: msg.Count})

	case protocol.MsgPlayerJoined:
		var p protocol.Player
		if err := env.Unmarshal(&p); err != nil {
			return
		}
		c.handleJoined(p)

	case protocol.MsgPlayerLeft:
		var msg protocol.PlayerLeftMsg
		if err := env.Unmarshal(&msg); err != nil {
			return
		}
		c.mu.Lock()
		for i, p := range c.players {
			if p.ID == msg.ID {
				c.players = append(c.players[:i], c.players[i+1:]...)
				break
			}
		}
		c.mu.Unlock()
		c.emit(PlayerLeft{ID: msg.ID})
	}
}

// handleJoined tells this client apart from remote players. When the local
// player is announced, everyone already in the roster is reported as joined.
func (c *Client) handleJoined(p protocol.Player) {
	c.mu.Lock()
	if p.ID == c.localID {
		c.local = p
		existing := make([]protocol.Player, 0, len(c.players))
		for _, o := range c.players {
			if o.ID != p.ID {
				existing = append(existing, o)
			}
		}
		c.mu.Unlock()

		c.emit(LocalPlayer{Player: p})
		for _, o := range existing {
			c.emit(PlayerJoined{Player: o})
		}
		return
	}

	known := false
	for _, o := range c.players {
		if o.ID == p.ID {
			known = true
			break
		}
	}
	if !known {
		c.players = append(c.players, p)
	}
	c.mu.Unlock()
	c.emit(PlayerJoined{Player: p})
}
