package models

type Message struct {
	PK          string `dynamodbav:"PK" json:"-"`
	SK          string `dynamodbav:"SK" json:"-"`
	MessageID   string `dynamodbav:"messageId" json:"messageId"`
	SenderID    string `dynamodbav:"senderId" json:"senderId"`
	ReceiverID  string `dynamodbav:"receiverId" json:"receiverId"`
	ContentType string `dynamodbav:"contentType" json:"contentType"`
	Content     string `dynamodbav:"content,omitempty" json:"content,omitempty"`
	ImageURL    string `dynamodbav:"imageUrl,omitempty" json:"imageUrl,omitempty"`
	Description string `dynamodbav:"description,omitempty" json:"description,omitempty"`
	CreatedAt   string `dynamodbav:"createdAt" json:"createdAt"`
}

// ConversationSummary is one participant's view of a conversation. It is
// overwritten on every new message between the pair.
type ConversationSummary struct {
	PK                   string `dynamodbav:"PK" json:"-"`
	SK                   string `dynamodbav:"SK" json:"-"`
	OtherUserID          string `dynamodbav:"otherUserId" json:"otherUserId"`
	LastMessage          string `dynamodbav:"lastMessage" json:"lastMessage"`
	LastMessageTimestamp string `dynamodbav:"lastMessageTimestamp" json:"lastMessageTimestamp"`

	// Resolved at read time, never stored.
	OtherUsername string `dynamodbav:"-" json:"otherUsername"`
}

func NewConversationSummary(userID, otherUserID, lastMessage, timestamp string) ConversationSummary {
	key := ConversationSummaryKey(userID, otherUserID)
	return ConversationSummary{
		PK:                   key.PK,
		SK:                   key.SK,
		OtherUserID:          otherUserID,
		LastMessage:          lastMessage,
		LastMessageTimestamp: timestamp,
	}
}
