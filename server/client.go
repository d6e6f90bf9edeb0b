package main

import (
	"encoding/json"
	"log"
	"time"

	"github.com/gorilla/websocket"

	"mousemaze/protocol"
)

const (
	writeWait         = 10 * time.Second
	pongWait          = 60 * time.Second
	pingPeriod        = (pongWait * 9) / 10
	maxMessageSize    = 8192
	sendBufSize       = 256
	maxMessagesPerSec = 300 // frame data arrives once per rendered frame, up to 240 Hz displays
)

// Client represents a WebSocket connection
type Client struct {
	hub        *Hub
	conn       *websocket.Conn
	send       chan []byte
	player     protocol.Player
	remoteAddr string
	msgCount   int
	msgResetAt time.Time
}

// NewClient creates a new Client and assigns its player id
func NewClient(hub *Hub, conn *websocket.Conn, remoteAddr string, skin int) *Client {
	return &Client{
		hub:        hub,
		conn:       conn,
		send:       make(chan []byte, sendBufSize),
		player:     protocol.Player{ID: GeneratePlayerID(), Skin: skin},
		remoteAddr: remoteAddr,
	}
}

// ReadPump reads messages from the WebSocket connection
func (c *Client) ReadPump() {
	defer func() {
		c.hub.TrackDisconnect(c.remoteAddr)
		c.hub.submit(hubEvent{kind: evDisconnect, from: c})
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		msgType, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("ws error: %v", err)
			}
			break
		}

		if !c.allowMessage(time.Now()) {
			continue
		}
		if msgType != websocket.BinaryMessage {
			continue
		}
		c.hub.submit(hubEvent{kind: evFrame, from: c, data: message})
	}
}

// allowMessage counts a message against the per-second cap. Messages over
// the cap are dropped for the rest of the window; the connection stays up.
func (c *Client) allowMessage(now time.Time) bool {
	if now.After(c.msgResetAt) {
		c.msgCount = 0
		c.msgResetAt = now.Add(time.Second)
	}
	c.msgCount++
	if c.msgCount == maxMessagesPerSec+1 {
		log.Printf("rate limit exceeded for %s, dropping messages", c.remoteAddr)
	}
	return c.msgCount <= maxMessagesPerSec
}

// WritePump writes messages to the WebSocket connection
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			// Check for binary marker (0xFF prefix from SendBinary)
			var err error
			if len(message) > 0 && message[0] == 0xFF {
				err = c.conn.WriteMessage(websocket.BinaryMessage, message[1:])
			} else {
				err = c.conn.WriteMessage(websocket.TextMessage, message)
			}
			if err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// SendJSON sends a JSON message to the client
func (c *Client) SendJSON(msg interface{}) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("marshal error: %v", err)
		return
	}
	c.SendRaw(data)
}

// SendRaw sends pre-marshaled bytes as a text message to the client
func (c *Client) SendRaw(data []byte) {
	defer func() { recover() }()
	select {
	case c.send <- data:
	default:
		// Client too slow, drop message
	}
}

// SendBinary sends pre-marshaled bytes as a binary WebSocket message
// Prefixes with 0xFF marker byte so WritePump can distinguish from text
func (c *Client) SendBinary(data []byte) {
	defer func() { recover() }()
	msg := make([]byte, len(data)+1)
	msg[0] = 0xFF // binary marker
	copy(msg[1:], data)
	select {
	case c.send <- msg:
	default:
	}
}
