package services

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"ecosnap_server/logger"
	"ecosnap_server/models"
	"ecosnap_server/store"
	"ecosnap_server/utils"
)

func newTable(t *testing.T) *store.BadgerTable {
	t.Helper()
	table, err := store.NewBadgerTable(store.BadgerOptions{}, logger.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = table.Close() })
	return table
}

// stepClock advances one millisecond on every reading.
type stepClock struct {
	mu sync.Mutex
	t  time.Time
}

func newClock() *stepClock {
	return &stepClock{t: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)}
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(time.Millisecond)
	return c.t
}

type sequentialIDs struct {
	mu     sync.Mutex
	prefix string
	n      int
}

func (s *sequentialIDs) Next() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	return fmt.Sprintf("%s%d", s.prefix, s.n)
}

func newAuth(t *testing.T, table store.Table) *AuthService {
	svc := NewAuthService(table, NewTokenService("test-secret", time.Hour), bcrypt.MinCost, logger.NewNop())
	svc.now = newClock().Now
	return svc
}

func newOrgs(table store.Table) *OrganizationService {
	svc := NewOrganizationService(table, logger.NewNop())
	svc.groups.now = newClock().Now
	svc.groups.newID = (&sequentialIDs{prefix: "org-"}).Next
	return svc
}

func newCharities(table store.Table) *CharityService {
	svc := NewCharityService(table, logger.NewNop())
	svc.groups.now = newClock().Now
	svc.groups.newID = (&sequentialIDs{prefix: "charity-"}).Next
	return svc
}

func getItem(t *testing.T, table store.Table, key store.Key) store.Item {
	t.Helper()
	item, err := table.GetItem(context.Background(), key)
	require.NoError(t, err)
	return item
}

func counter(t *testing.T, table store.Table, key store.Key, attr string) int64 {
	t.Helper()
	return utils.ExtractInt64(getItem(t, table, key), attr)
}

func putUser(t *testing.T, table store.Table, userID, username string) {
	t.Helper()
	item, err := models.ToItem(models.NewUser(userID, username, "hash", "2024-01-01T00:00:00.000Z"))
	require.NoError(t, err)
	require.NoError(t, table.PutItem(context.Background(), item, store.ConditionNone))
}

// cancelingTable cancels every transaction without saying which operation failed.
type cancelingTable struct {
	store.Table
}

func (cancelingTable) TransactWrite(context.Context, []store.Op) error {
	return &store.TransactionCanceledError{}
}
