package socket

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"ecosnap_server/logger"
	"ecosnap_server/models"
)

type fakeConn struct {
	rooms []string
}

func (c *fakeConn) ID() string       { return "sock-1" }
func (c *fakeConn) Join(room string) { c.rooms = append(c.rooms, room) }

type broadcastCall struct {
	namespace, room, event string
	args                   []interface{}
}

type fakeBroadcaster struct {
	calls []broadcastCall
}

func (b *fakeBroadcaster) BroadcastToRoom(namespace string, room, event string, args ...interface{}) bool {
	b.calls = append(b.calls, broadcastCall{namespace, room, event, args})
	return true
}

func TestRoomIsSymmetric(t *testing.T) {
	ab, ok := Room(JoinRequest{UserID: "alice", OtherUserID: "bob"})
	assert.True(t, ok)
	ba, _ := Room(JoinRequest{UserID: "bob", OtherUserID: "alice"})
	assert.Equal(t, ab, ba)
	assert.Equal(t, models.ConversationID("alice", "bob"), ab)

	_, ok = Room(JoinRequest{UserID: "alice"})
	assert.False(t, ok)

	_, ok = Room(JoinRequest{UserID: "a#b", OtherUserID: "c"})
	assert.False(t, ok)
}

func TestJoinAddsConnectionToConversationRoom(t *testing.T) {
	h := &Hub{log: logger.NewNop()}
	conn := &fakeConn{}

	h.join(conn, JoinRequest{UserID: "bob", OtherUserID: "alice"})
	h.join(conn, JoinRequest{UserID: "bob"})

	assert.Equal(t, []string{"alice#bob"}, conn.rooms)
}

func TestNotifyMessageBroadcastsToRoom(t *testing.T) {
	b := &fakeBroadcaster{}
	h := &Hub{broadcast: b, log: logger.NewNop()}
	msg := models.Message{MessageID: "m-1", SenderID: "alice", ReceiverID: "bob"}

	h.NotifyMessage("alice#bob", msg)

	assert.Equal(t, []broadcastCall{{"/", "alice#bob", EventNewMessage, []interface{}{msg}}}, b.calls)
}

func TestNewHubWithoutClients(t *testing.T) {
	h := NewHub(logger.NewNop())
	assert.NotPanics(t, func() {
		h.NotifyMessage("alice#bob", models.Message{MessageID: "m-1"})
	})
}
