package ws

import (
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"

	"huddle/internal/models"
)

func TestCodecFor(t *testing.T) {
	assert.Equal(t, JSON, CodecFor(""))
	assert.Equal(t, JSON, CodecFor(SubprotocolJSON))
	assert.Equal(t, JSON, CodecFor("unknown"))
	assert.Equal(t, Msgpack, CodecFor(SubprotocolMsgpack))

	assert.Equal(t, websocket.TextMessage, JSON.FrameType())
	assert.Equal(t, websocket.BinaryMessage, Msgpack.FrameType())
}

func TestJSONCodec(t *testing.T) {
	data, err := JSON.Encode(models.ServerMessage{
		Type:    models.ServerMessageTypeUsers,
		Payload: []models.User{},
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"users_update","payload":[]}`, string(data))

	var msg models.ClientMessage
	require.NoError(t, JSON.Decode([]byte(`{"type":"join","username":"bob","avatar":"bg-red-500"}`), &msg))
	assert.Equal(t, models.ClientMessage{
		Type:     models.ClientMessageTypeJoin,
		Username: "bob",
		Avatar:   "bg-red-500",
	}, msg)

	assert.Error(t, JSON.Decode([]byte("nope"), &msg))
}

func TestMsgpackCodec(t *testing.T) {
	data, err := Msgpack.Encode(models.ServerMessage{
		Type:    models.ServerMessageTypeTyping,
		Payload: models.TypingUser{User: models.User{ID: "1", Username: "alice"}, Typing: true},
	})
	require.NoError(t, err)

	var got struct {
		Type    string            `msgpack:"type"`
		Payload models.TypingUser `msgpack:"payload"`
	}
	require.NoError(t, msgpack.Unmarshal(data, &got))
	assert.Equal(t, "user_typing", got.Type)
	assert.Equal(t, "alice", got.Payload.User.Username)
	assert.True(t, got.Payload.Typing)

	in, err := msgpack.Marshal(models.ClientMessage{Type: models.ClientMessageTypeSend, Text: "hi"})
	require.NoError(t, err)

	var msg models.ClientMessage
	require.NoError(t, Msgpack.Decode(in, &msg))
	assert.Equal(t, models.ClientMessageTypeSend, msg.Type)
	assert.Equal(t, "hi", msg.Text)
}
