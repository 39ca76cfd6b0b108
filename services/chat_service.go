package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"ecosnap_server/logger"
	"ecosnap_server/models"
	"ecosnap_server/store"
	"ecosnap_server/utils"
)

// maxEnrichConcurrency bounds parallel username lookups per request.
const maxEnrichConcurrency = 8

// MessageNotifier is told about every committed message.
type MessageNotifier interface {
	NotifyMessage(conversationID string, msg models.Message)
}

// SendMessageInput is the payload of a new direct message.
type SendMessageInput struct {
	SenderID    string `json:"senderId"`
	ReceiverID  string `json:"receiverId"`
	ContentType string `json:"contentType"`
	Content     string `json:"content"`
	ImageURL    string `json:"imageUrl"`
	Description string `json:"description"`
}

type ChatService struct {
	Store    store.Table
	Notifier MessageNotifier

	log   *logger.Logger
	now   func() time.Time
	newID func() string
}

func NewChatService(table store.Table, notifier MessageNotifier, log *logger.Logger) *ChatService {
	return &ChatService{
		Store:    table,
		Notifier: notifier,
		log:      log.With("service", "chat"),
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// SendMessage validates the payload and commits the message together with
// both participants' conversation summaries. Nothing is written when
// validation fails.
func (s *ChatService) SendMessage(ctx context.Context, in SendMessageInput) (models.Message, error) {
	if in.ContentType == "" {
		in.ContentType = models.ContentTypeText
	}
	preview, err := validateMessage(in)
	if err != nil {
		return models.Message{}, err
	}

	conversationID := models.ConversationID(in.SenderID, in.ReceiverID)
	timestamp := models.FormatTimestamp(s.now())
	messageID := s.newID()
	key := models.MessageKey(conversationID, timestamp, messageID)

	msg := models.Message{
		PK:          key.PK,
		SK:          key.SK,
		MessageID:   messageID,
		SenderID:    in.SenderID,
		ReceiverID:  in.ReceiverID,
		ContentType: in.ContentType,
		CreatedAt:   timestamp,
	}
	if in.ContentType == models.ContentTypeImage {
		msg.ImageURL = in.ImageURL
		msg.Description = in.Description
	} else {
		msg.Content = in.Content
	}

	records := []any{
		msg,
		models.NewConversationSummary(in.SenderID, in.ReceiverID, preview, timestamp),
		models.NewConversationSummary(in.ReceiverID, in.SenderID, preview, timestamp),
	}
	ops := make([]store.Op, 0, len(records))
	for _, rec := range records {
		item, err := models.ToItem(rec)
		if err != nil {
			return models.Message{}, err
		}
		ops = append(ops, store.Op{Put: &store.Put{Item: item}})
	}

	if err := s.Store.TransactWrite(ctx, ops); err != nil {
		s.log.Error("❌ Failed to store message", "conversationId", conversationID, "error", err)
		return models.Message{}, fmt.Errorf("send message: %w", err)
	}

	if s.Notifier != nil {
		s.Notifier.NotifyMessage(conversationID, msg)
	}
	s.log.Debug("📩 Message stored", "conversationId", conversationID, "messageId", messageID)
	return msg, nil
}

// validateMessage returns the conversation preview text for a valid message.
func validateMessage(in SendMessageInput) (string, error) {
	if strings.TrimSpace(in.ReceiverID) == "" {
		return "", invalid("receiverId", "Receiver ID is required.")
	}
	if strings.TrimSpace(in.SenderID) == "" {
		return "", invalid("senderId", "Sender ID is required.")
	}
	if in.SenderID == in.ReceiverID {
		return "", invalid("receiverId", "Cannot send a message to yourself.")
	}
	if err := validParticipants(in.SenderID, in.ReceiverID); err != nil {
		return "", err
	}

	switch in.ContentType {
	case models.ContentTypeImage:
		if in.ImageURL == "" {
			return "", invalid("imageUrl", "imageUrl is required for image messages.")
		}
		if in.Description != "" {
			return models.PhotoPreviewIcon + " " + in.Description, nil
		}
		return models.PhotoPreviewDefault, nil
	case models.ContentTypeText:
		if in.Content == "" {
			return "", invalid("content", "Content is required for text messages.")
		}
		return in.Content, nil
	default:
		return "", invalid("contentType", "contentType must be 'text' or 'image'.")
	}
}

// GetConversations lists the user's conversation summaries in descending
// sort key order, which is the other participant's id and not recency.
// Each summary is enriched with the other participant's username; a failed
// lookup yields models.UnknownUsername instead of failing the request.
func (s *ChatService) GetConversations(ctx context.Context, userID string) ([]models.ConversationSummary, error) {
	if err := requireUserID(userID); err != nil {
		return nil, err
	}

	items, err := s.Store.Query(ctx, store.QueryInput{
		PK:       models.PrefixUser + userID,
		SKPrefix: models.PrefixConvo,
	})
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}

	convos := make([]models.ConversationSummary, len(items))
	for i, item := range items {
		if err := models.FromItem(item, &convos[i]); err != nil {
			return nil, err
		}
	}

	var g errgroup.Group
	g.SetLimit(maxEnrichConcurrency)
	for i := range convos {
		g.Go(func() error {
			convos[i].OtherUsername = s.lookupUsername(ctx, convos[i].OtherUserID)
			return nil
		})
	}
	_ = g.Wait()

	return convos, nil
}

func (s *ChatService) lookupUsername(ctx context.Context, userID string) string {
	item, err := s.Store.GetItem(ctx, models.UserKey(userID))
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			s.log.Warn("Username lookup failed", "userId", userID, "error", err)
		}
		return models.UnknownUsername
	}
	if name := utils.ExtractString(item, "username"); name != "" {
		return name
	}
	return models.UnknownUsername
}

// validParticipants rejects ids that would make two different pairs share
// one conversation id.
func validParticipants(ids ...string) error {
	for _, id := range ids {
		if strings.Contains(id, models.KeySeparator) {
			return invalid("", fmt.Sprintf("User IDs must not contain '%s'.", models.KeySeparator))
		}
	}
	return nil
}

// GetMessages returns the conversation history newest first. The result is
// the same whichever participant asks. Messages are ordered by their
// millisecond timestamp; messages sharing a millisecond are ordered by
// message id, which is random.
func (s *ChatService) GetMessages(ctx context.Context, userID, otherUserID string) ([]models.Message, error) {
	if strings.TrimSpace(userID) == "" || strings.TrimSpace(otherUserID) == "" {
		return nil, invalid("", "Both userId and otherUserId are required.")
	}
	if err := validParticipants(userID, otherUserID); err != nil {
		return nil, err
	}

	conversationID := models.ConversationID(userID, otherUserID)
	items, err := s.Store.Query(ctx, store.QueryInput{
		PK:          models.MessagePartition(conversationID),
		SKPrefix:    models.PrefixMessage,
		ScanForward: true,
	})
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}

	messages := make([]models.Message, len(items))
	for i, item := range items {
		if err := models.FromItem(item, &messages[i]); err != nil {
			return nil, err
		}
	}

	// ✅ Reverse so the newest message comes first
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}
