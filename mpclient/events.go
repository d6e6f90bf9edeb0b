package mpclient

import (
	"github.com/vmihailenco/msgpack/v5"

	"mousemaze/protocol"
)

// Event is anything delivered on Client.Events
type Event interface {
	event()
}

// RosterSize reports how many players are connected
type RosterSize struct {
	Count int
}

// LocalPlayer is emitted once, when the server announces this client
type LocalPlayer struct {
	Player protocol.Player
}

// PlayerJoined is emitted for every remote player, including those already
// connected when this client joined
type PlayerJoined struct {
	Player protocol.Player
}

// PlayerLeft is emitted when a remote player disconnects
type PlayerLeft struct {
	ID string
}

// Frame is a remote player's frame data
type Frame struct {
	ID         string
	Payload    msgpack.RawMessage
	Sent       int64 // sender's local unix ms
	ServerTime int64 // server receive unix ms
}

// Decode unmarshals the frame payload into v
func (f Frame) Decode(v interface{}) error {
	return msgpack.Unmarshal(f.Payload, v)
}

func (RosterSize) event()   {}
func (LocalPlayer) event()  {}
func (PlayerJoined) event() {}
func (PlayerLeft) event()   {}
func (Frame) event()        {}
