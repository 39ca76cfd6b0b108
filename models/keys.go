package models

import (
	"sort"
	"strings"
	"time"

	"ecosnap_server/store"
)

// IndexKey is a secondary index key pair.
type IndexKey struct {
	PK string
	SK string
}

// GroupKind distinguishes the two membership aggregates.
type GroupKind int

const (
	GroupOrganization GroupKind = iota
	GroupCharity
)

func (k GroupKind) String() string {
	if k == GroupCharity {
		return "charity"
	}
	return "organization"
}

// Prefix is the membership sort key prefix for the group kind.
func (k GroupKind) Prefix() string {
	if k == GroupCharity {
		return GroupPrefixCharity
	}
	return GroupPrefixOrg
}

// Category is the GSI2 partition listing every group of the kind.
func (k GroupKind) Category() string {
	if k == GroupCharity {
		return CategoryCharities
	}
	return CategoryOrganizations
}

func UserKey(userID string) store.Key {
	return store.Key{PK: PrefixUser + userID, SK: PrefixMetadata + userID}
}

func UsernameIndexKey(username string) IndexKey {
	return IndexKey{PK: PrefixUsername + username, SK: PrefixUsername + username}
}

// UsernameGuardKey addresses the record that reserves a username. Creating it
// with attribute_not_exists in the same transaction as the user makes the
// name unique.
func UsernameGuardKey(username string) store.Key {
	return store.Key{PK: PrefixUsername + username, SK: PrefixUsername + username}
}

func OrgKey(orgID string) store.Key {
	return store.Key{PK: PrefixOrg + orgID, SK: PrefixMetadata + orgID}
}

func CharityKey(charityID string) store.Key {
	return store.Key{PK: PrefixCharity + charityID, SK: PrefixMetadata + charityID}
}

// GroupKey is OrgKey or CharityKey depending on kind.
func GroupKey(kind GroupKind, groupID string) store.Key {
	if kind == GroupCharity {
		return CharityKey(groupID)
	}
	return OrgKey(groupID)
}

func CategoryIndexKey(kind GroupKind, name string) IndexKey {
	return IndexKey{PK: kind.Category(), SK: PrefixMetadata + name}
}

func MembershipKey(userID, groupPrefix, groupID string) store.Key {
	return store.Key{PK: PrefixUser + userID, SK: groupPrefix + KeySeparator + groupID}
}

// ConversationID is symmetric: both participants resolve the same id.
// Ids containing KeySeparator are ambiguous here and must be rejected by
// callers.
func ConversationID(a, b string) string {
	ids := []string{a, b}
	sort.Strings(ids)
	return strings.Join(ids, KeySeparator)
}

func ConversationSummaryKey(userID, otherUserID string) store.Key {
	return store.Key{PK: PrefixUser + userID, SK: PrefixConvo + otherUserID}
}

// MessagePartition is the partition key holding every message of a conversation.
func MessagePartition(conversationID string) string {
	return PrefixConvo + conversationID
}

func MessageKey(conversationID, timestamp, messageID string) store.Key {
	return store.Key{PK: MessagePartition(conversationID), SK: PrefixMessage + timestamp + KeySeparator + messageID}
}

// FormatTimestamp renders t in TimestampLayout. The fixed width keeps
// lexicographic and chronological order identical.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}
