package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"ecosnap_server/logger"
	"ecosnap_server/models"
	"ecosnap_server/store"
	"ecosnap_server/utils"
)

// groupStore holds the membership logic shared by organizations and charities.
type groupStore struct {
	store store.Table
	kind  models.GroupKind
	log   *logger.Logger
	now   func() time.Time
	newID func() string
}

func newGroupStore(table store.Table, kind models.GroupKind, log *logger.Logger) *groupStore {
	return &groupStore{
		store: table,
		kind:  kind,
		log:   log,
		now:   time.Now,
		newID: uuid.NewString,
	}
}

func (g *groupStore) idField() string {
	if g.kind == models.GroupCharity {
		return "charityId"
	}
	return "orgId"
}

func (g *groupStore) validateName(name string) error {
	if strings.TrimSpace(name) == "" {
		if g.kind == models.GroupCharity {
			return invalid("name", "Charity name is required.")
		}
		return invalid("name", "Organization name is required.")
	}
	return nil
}

// create writes the aggregate record. It goes through TransactWrite so
// creation shares the commit path of every other aggregate mutation.
func (g *groupStore) create(ctx context.Context, record any) error {
	item, err := models.ToItem(record)
	if err != nil {
		return err
	}
	if err := g.store.TransactWrite(ctx, []store.Op{{Put: &store.Put{Item: item}}}); err != nil {
		return fmt.Errorf("create %s: %w", g.kind, err)
	}
	return nil
}

func (g *groupStore) list(ctx context.Context) ([]store.Item, error) {
	items, err := g.store.Query(ctx, store.QueryInput{
		PK:          g.kind.Category(),
		Index:       store.IndexGSI2,
		ScanForward: true,
	})
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", g.kind, err)
	}
	return items, nil
}

// signup records the membership and bumps totalSignups in one transaction.
// The membership put fails if the user already joined and the counter
// update fails if the aggregate does not exist.
func (g *groupStore) signup(ctx context.Context, groupID, userID string, membership any) error {
	if err := requireUserID(userID); err != nil {
		return err
	}
	if strings.TrimSpace(groupID) == "" {
		return invalid(g.idField(), "Group ID is required.")
	}

	item, err := models.ToItem(membership)
	if err != nil {
		return err
	}
	err = g.store.TransactWrite(ctx, []store.Op{
		{Put: &store.Put{Item: item, Condition: store.ConditionNotExists}},
		{Update: &store.Update{
			Key:        models.GroupKey(g.kind, groupID),
			Increments: map[string]int64{models.AttrTotalSignups: 1},
			Condition:  store.ConditionExists,
		}},
	})
	if err := mapCancellation(err, ErrAlreadyMember, ErrGroupNotFound); err != nil {
		g.log.Warn("Signup failed", "groupId", groupID, "userId", userID, "error", err)
		return err
	}

	g.log.Info("✅ Member signed up", "groupId", groupID, "userId", userID)
	return nil
}

// userGroups returns the ids of every group of this kind the user joined.
func (g *groupStore) userGroups(ctx context.Context, userID string) ([]string, error) {
	if err := requireUserID(userID); err != nil {
		return nil, err
	}
	items, err := g.store.Query(ctx, store.QueryInput{
		PK:          models.PrefixUser + userID,
		SKPrefix:    g.kind.Prefix() + "#",
		ScanForward: true,
		Projection:  []string{g.idField()},
	})
	if err != nil {
		return nil, fmt.Errorf("list %s memberships: %w", g.kind, err)
	}

	ids := make([]string, 0, len(items))
	for _, item := range items {
		if id := utils.ExtractString(item, g.idField()); id != "" {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func requireUserID(userID string) error {
	if strings.TrimSpace(userID) == "" {
		return invalid("userId", "User ID is required.")
	}
	return nil
}

// mapCancellation turns a two-operation transaction cancellation into the
// domain error of the failed operation. When the store does not say which
// guard failed, the first operation's guard is assumed.
func mapCancellation(err, first, second error) error {
	if err == nil {
		return nil
	}
	var canceled *store.TransactionCanceledError
	if !errors.As(err, &canceled) {
		return err
	}
	switch {
	case canceled.FailedAt(0) || !canceled.Known():
		return first
	case canceled.FailedAt(1):
		return second
	default:
		return err
	}
}
