package socket

import (
	"net/http"
	"strings"

	socketio "github.com/googollee/go-socket.io"

	"ecosnap_server/logger"
	"ecosnap_server/models"
)

const (
	namespace       = "/"
	EventJoin       = "join"
	EventNewMessage = "newMessage"
)

// JoinRequest asks to receive the messages of one conversation.
type JoinRequest struct {
	UserID      string `json:"userId"`
	OtherUserID string `json:"otherUserId"`
}

// roomJoiner is the part of a socket connection the join handler needs.
type roomJoiner interface {
	ID() string
	Join(room string)
}

// broadcaster is the part of the socket.io server used to push events.
type broadcaster interface {
	BroadcastToRoom(namespace string, room, event string, args ...interface{}) bool
}

// Hub pushes every stored message to the socket.io room named after its
// conversation id.
type Hub struct {
	server    *socketio.Server
	broadcast broadcaster
	log       *logger.Logger
}

// NewHub initializes the Socket.IO server and its event handlers.
func NewHub(log *logger.Logger) *Hub {
	server := socketio.NewServer(nil)
	h := &Hub{server: server, broadcast: server, log: log.With("component", "socket")}

	server.OnConnect(namespace, func(c socketio.Conn) error {
		h.log.Debug("✅ Socket connected", "socketId", c.ID())
		return nil
	})

	server.OnEvent(namespace, EventJoin, func(c socketio.Conn, req JoinRequest) {
		h.join(c, req)
	})

	server.OnError(namespace, func(c socketio.Conn, err error) {
		if c == nil {
			h.log.Warn("Socket error", "error", err)
			return
		}
		h.log.Warn("Socket error", "socketId", c.ID(), "error", err)
	})

	server.OnDisconnect(namespace, func(c socketio.Conn, reason string) {
		h.log.Debug("❌ Socket disconnected", "socketId", c.ID(), "reason", reason)
	})

	return h
}

func (h *Hub) join(c roomJoiner, req JoinRequest) {
	room, ok := Room(req)
	if !ok {
		h.log.Warn("Invalid join request", "socketId", c.ID())
		return
	}
	c.Join(room)
	h.log.Debug("👥 Socket joined conversation", "socketId", c.ID(), "room", room)
}

// Room returns the room of the conversation between the two users.
func Room(req JoinRequest) (string, bool) {
	if strings.TrimSpace(req.UserID) == "" || strings.TrimSpace(req.OtherUserID) == "" {
		return "", false
	}
	if strings.Contains(req.UserID, models.KeySeparator) || strings.Contains(req.OtherUserID, models.KeySeparator) {
		return "", false
	}
	return models.ConversationID(req.UserID, req.OtherUserID), true
}

// NotifyMessage broadcasts msg to everyone in the conversation's room.
func (h *Hub) NotifyMessage(conversationID string, msg models.Message) {
	if !h.broadcast.BroadcastToRoom(namespace, conversationID, EventNewMessage, msg) {
		h.log.Debug("No socket namespace for broadcast", "room", conversationID)
	}
}

// Serve runs the socket.io event loop until Close.
func (h *Hub) Serve() error {
	return h.server.Serve()
}

func (h *Hub) Close() error {
	return h.server.Close()
}

func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.server.ServeHTTP(w, r)
}
