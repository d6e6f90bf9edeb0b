// Package protocol defines the messages exchanged between the relay server
// and game clients. Control messages travel as JSON text frames wrapped in an
// Envelope; per-player frame data travels as msgpack binary frames.
package protocol

import (
	"encoding/json"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// Server -> Client message types
const (
	MsgServerInfo   = "server_info"
	MsgRoster       = "roster"
	MsgRosterSize   = "roster_size"
	MsgPlayerJoined = "player_joined"
	MsgPlayerLeft   = "player_left"
)

// SkinParam is the query parameter carrying the client's chosen skin
const SkinParam = "skin"

// Envelope wraps all outgoing JSON messages with a type field
type Envelope struct {
	T    string      `json:"t"`
	Data interface{} `json:"d,omitempty"`
}

// InEnvelope is used for decoding. json.RawMessage defers the payload decode
type InEnvelope struct {
	T string          `json:"t"`
	D json.RawMessage `json:"d,omitempty"`
}

// Player is a connected peer
type Player struct {
	ID   string `json:"id" msgpack:"id"`
	Skin int    `json:"skin" msgpack:"skin"`
}

// ServerInfoMsg is sent once per connection
type ServerInfoMsg struct {
	Time int64  `json:"time"` // server unix ms
	TZ   int    `json:"tz"`   // server UTC offset, seconds east
	ID   string `json:"id"`   // id assigned to the receiving peer
}

// RosterMsg lists every connected player
type RosterMsg struct {
	Players []Player `json:"players"`
}

// RosterSizeMsg carries the current number of connected players
type RosterSizeMsg struct {
	Count int `json:"count"`
}

// PlayerLeftMsg announces a disconnected player
type PlayerLeftMsg struct {
	ID string `json:"id"`
}

// FrameIn is a client's per-frame state. Payload is opaque to the server.
type FrameIn struct {
	Payload msgpack.RawMessage `msgpack:"p"`
	Sent    int64              `msgpack:"s"` // client unix ms
}

// FrameOut is a relayed FrameIn stamped by the server
type FrameOut struct {
	Time    int64              `msgpack:"t"` // server receive unix ms
	ID      string             `msgpack:"id"`
	Payload msgpack.RawMessage `msgpack:"p"`
	Sent    int64              `msgpack:"s"`
}

// EncodeFrame marshals a client frame, encoding payload with msgpack
func EncodeFrame(payload interface{}, sent int64) ([]byte, error) {
	raw, err := msgpack.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}
	return msgpack.Marshal(&FrameIn{Payload: raw, Sent: sent})
}

// DecodeFrameIn unmarshals a client frame
func DecodeFrameIn(data []byte) (FrameIn, error) {
	var f FrameIn
	if err := msgpack.Unmarshal(data, &f); err != nil {
		return f, fmt.Errorf("decode frame: %w", err)
	}
	return f, nil
}

// DecodeFrameOut unmarshals a relayed frame
func DecodeFrameOut(data []byte) (FrameOut, error) {
	var f FrameOut
	if err := msgpack.Unmarshal(data, &f); err != nil {
		return f, fmt.Errorf("decode relayed frame: %w", err)
	}
	return f, nil
}

// Unmarshal decodes an envelope payload into v
func (e InEnvelope) Unmarshal(v interface{}) error {
	if len(e.D) == 0 {
		return fmt.Errorf("%s: empty payload", e.T)
	}
	return json.Unmarshal(e.D, v)
}
