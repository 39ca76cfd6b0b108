package models

import (
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"

	"ecosnap_server/store"
)

// Kind discriminates record types sharing the table.
type Kind string

const (
	KindUnknown           Kind = ""
	KindUser              Kind = "user"
	KindUsernameGuard     Kind = "usernameGuard"
	KindOrganization      Kind = "organization"
	KindCharity           Kind = "charity"
	KindOrgMembership     Kind = "orgMembership"
	KindCharityMembership Kind = "charityMembership"
	KindConversation      Kind = "conversation"
	KindMessage           Kind = "message"
)

// Record is implemented by every stored entity.
type Record interface {
	Kind() Kind
}

func (User) Kind() Kind                { return KindUser }
func (UsernameGuard) Kind() Kind       { return KindUsernameGuard }
func (Organization) Kind() Kind        { return KindOrganization }
func (Charity) Kind() Kind             { return KindCharity }
func (OrgMembership) Kind() Kind       { return KindOrgMembership }
func (CharityMembership) Kind() Kind   { return KindCharityMembership }
func (ConversationSummary) Kind() Kind { return KindConversation }
func (Message) Kind() Kind             { return KindMessage }

// KindOf infers the record type from its key prefixes.
func KindOf(key store.Key) Kind {
	switch {
	case strings.HasPrefix(key.PK, PrefixUsername):
		return KindUsernameGuard
	case strings.HasPrefix(key.PK, PrefixUser):
		switch {
		case strings.HasPrefix(key.SK, PrefixMetadata):
			return KindUser
		case strings.HasPrefix(key.SK, PrefixOrg):
			return KindOrgMembership
		case strings.HasPrefix(key.SK, PrefixCharity):
			return KindCharityMembership
		case strings.HasPrefix(key.SK, PrefixConvo):
			return KindConversation
		}
	case strings.HasPrefix(key.PK, PrefixOrg) && strings.HasPrefix(key.SK, PrefixMetadata):
		return KindOrganization
	case strings.HasPrefix(key.PK, PrefixCharity) && strings.HasPrefix(key.SK, PrefixMetadata):
		return KindCharity
	case strings.HasPrefix(key.PK, PrefixConvo) && strings.HasPrefix(key.SK, PrefixMessage):
		return KindMessage
	}
	return KindUnknown
}

// Decode unmarshals an item into the entity its key identifies.
func Decode(item store.Item) (Record, error) {
	key, err := item.Key()
	if err != nil {
		return nil, err
	}
	switch KindOf(key) {
	case KindUser:
		return decodeAs[User](item)
	case KindUsernameGuard:
		return decodeAs[UsernameGuard](item)
	case KindOrganization:
		return decodeAs[Organization](item)
	case KindCharity:
		return decodeAs[Charity](item)
	case KindOrgMembership:
		return decodeAs[OrgMembership](item)
	case KindCharityMembership:
		return decodeAs[CharityMembership](item)
	case KindConversation:
		return decodeAs[ConversationSummary](item)
	case KindMessage:
		return decodeAs[Message](item)
	default:
		return nil, fmt.Errorf("unrecognized record key %s", key)
	}
}

func decodeAs[T Record](item store.Item) (Record, error) {
	var v T
	if err := FromItem(item, &v); err != nil {
		return nil, err
	}
	return v, nil
}

// ToItem marshals an entity into a raw store item.
func ToItem(v any) (store.Item, error) {
	item, err := attributevalue.MarshalMap(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal item: %w", err)
	}
	return item, nil
}

// FromItem unmarshals a raw store item into out.
func FromItem(item store.Item, out any) error {
	if err := attributevalue.UnmarshalMap(item, out); err != nil {
		return fmt.Errorf("failed to unmarshal item: %w", err)
	}
	return nil
}
