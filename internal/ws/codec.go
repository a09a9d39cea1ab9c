package ws

import (
	"encoding/json"

	"github.com/gorilla/websocket"
	"github.com/vmihailenco/msgpack/v5"

	"huddle/internal/models"
)

const (
	SubprotocolJSON    = "huddle.json"
	SubprotocolMsgpack = "huddle.msgpack"
)

// Codec turns frames into client messages and server messages into frames.
type Codec interface {
	Subprotocol() string
	// FrameType is the websocket message type used for outgoing frames.
	FrameType() int
	Encode(msg models.ServerMessage) ([]byte, error)
	Decode(data []byte, msg *models.ClientMessage) error
}

type jsonCodec struct{}

func (jsonCodec) Subprotocol() string { return SubprotocolJSON }
func (jsonCodec) FrameType() int      { return websocket.TextMessage }

func (jsonCodec) Encode(msg models.ServerMessage) ([]byte, error) {
	return json.Marshal(msg)
}

func (jsonCodec) Decode(data []byte, msg *models.ClientMessage) error {
	return json.Unmarshal(data, msg)
}

type msgpackCodec struct{}

func (msgpackCodec) Subprotocol() string { return SubprotocolMsgpack }
func (msgpackCodec) FrameType() int      { return websocket.BinaryMessage }

func (msgpackCodec) Encode(msg models.ServerMessage) ([]byte, error) {
	return msgpack.Marshal(msg)
}

func (msgpackCodec) Decode(data []byte, msg *models.ClientMessage) error {
	return msgpack.Unmarshal(data, msg)
}

var (
	JSON    Codec = jsonCodec{}
	Msgpack Codec = msgpackCodec{}
)

// Subprotocols lists what the upgrader offers, preferred first.
var Subprotocols = []string{SubprotocolJSON, SubprotocolMsgpack}

// CodecFor picks the codec for a negotiated subprotocol. Clients that did not
// ask for one get JSON.
func CodecFor(subprotocol string) Codec {
	if subprotocol == SubprotocolMsgpack {
		return Msgpack
	}
	return JSON
}
