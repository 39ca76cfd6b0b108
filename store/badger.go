package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/cenkalti/backoff/v5"
	"github.com/dgraph-io/badger/v4"

	"ecosnap_server/logger"
)

const (
	DefaultConflictRetries = 100

	conflictInitialBackoff = time.Millisecond
	conflictMaxBackoff     = 50 * time.Millisecond
)

// BadgerOptions configures the embedded backend.
type BadgerOptions struct {
	// Path to the database directory. Empty runs in memory.
	Path string

	// ConflictRetries bounds how often a transaction is run when it keeps
	// failing with badger.ErrConflict. Zero uses DefaultConflictRetries.
	ConflictRetries int
}

// BadgerTable implements Table on an embedded badger database. Every call
// runs in one serializable badger transaction, so conditions are evaluated
// against the same snapshot the writes commit on.
type BadgerTable struct {
	db      *badger.DB
	retries int
	log     *logger.Logger
}

var _ Table = (*BadgerTable)(nil)

func NewBadgerTable(opts BadgerOptions, log *logger.Logger) (*BadgerTable, error) {
	badgerOpts := badger.DefaultOptions(opts.Path).WithLogger(nil)
	if opts.Path == "" {
		badgerOpts = badgerOpts.WithInMemory(true)
	}
	db, err := badger.Open(badgerOpts)
	if err != nil {
		return nil, fmt.Errorf("open badger db: %w", err)
	}
	retries := opts.ConflictRetries
	if retries <= 0 {
		retries = DefaultConflictRetries
	}
	return &BadgerTable{db: db, retries: retries, log: log.With("store", "badger")}, nil
}

func (t *BadgerTable) Close() error {
	return t.db.Close()
}

// update runs fn in a read-write transaction. A transaction that loses to a
// concurrent commit is re-run after a jittered exponential backoff.
func (t *BadgerTable) update(ctx context.Context, fn func(txn *badger.Txn) error) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = conflictInitialBackoff
	b.MaxInterval = conflictMaxBackoff

	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		if err := ctx.Err(); err != nil {
			return struct{}{}, backoff.Permanent(err)
		}
		err := t.db.Update(fn)
		if err != nil && !errors.Is(err, badger.ErrConflict) {
			return struct{}{}, backoff.Permanent(err)
		}
		return struct{}{}, err
	},
		backoff.WithBackOff(b),
		backoff.WithMaxTries(uint(t.retries)),
		backoff.WithMaxElapsedTime(0),
		backoff.WithNotify(func(err error, next time.Duration) {
			t.log.Debug("Transaction conflict, retrying", "backoff", next)
		}),
	)
	var permanent *backoff.PermanentError
	if errors.As(err, &permanent) {
		err = permanent.Unwrap()
	}
	switch {
	case err == nil:
		return nil
	case errors.Is(err, badger.ErrConflict),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return unavailable("badger update", err)
	default:
		return err
	}
}

func (t *BadgerTable) GetItem(ctx context.Context, key Key) (Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, unavailable("badger get", err)
	}
	var item Item
	err := t.db.View(func(txn *badger.Txn) error {
		var err error
		item, err = getItem(txn, key)
		return err
	})
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, ErrNotFound
	}
	return item, nil
}

func (t *BadgerTable) Query(ctx context.Context, in QueryInput) ([]Item, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, unavailable("badger query", err)
	}

	prefix := queryPrefix(in)
	var items []Item
	err := t.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = !in.ScanForward
		it := txn.NewIterator(opts)
		defer it.Close()

		// Key parts never contain 0xFF (valid UTF-8), so prefix+0xFF sorts
		// after every key under the prefix.
		if in.ScanForward {
			it.Seek(prefix)
		} else {
			it.Seek(append(append([]byte{}, prefix...), 0xFF))
		}

		for ; it.ValidForPrefix(prefix); it.Next() {
			val, err := it.Item().ValueCopy(nil)
			if err != nil {
				return err
			}

			var item Item
			if in.Index == "" {
				item, err = deserializeItem(val)
				if err != nil {
					return err
				}
			} else {
				// Index entries hold the primary key of the record they point at.
				item, err = txnGetRaw(txn, val)
				if err != nil {
					return err
				}
				if item == nil {
					continue
				}
			}

			items = append(items, project(item, in.Projection))
			if in.Limit > 0 && int32(len(items)) >= in.Limit {
				return nil
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("badger query %s: %w", in.PK, err)
	}
	return items, nil
}

func (t *BadgerTable) PutItem(ctx context.Context, item Item, cond Condition) error {
	key, err := item.Key()
	if err != nil {
		return err
	}
	return t.update(ctx, func(txn *badger.Txn) error {
		existing, err := getItem(txn, key)
		if err != nil {
			return err
		}
		if !cond.holds(existing != nil) {
			return ErrConditionFailed
		}
		return putItem(txn, key, existing, item)
	})
}

func (t *BadgerTable) UpdateItem(ctx context.Context, upd Update) error {
	if _, err := (Op{Update: &upd}).key(); err != nil {
		return err
	}
	return t.update(ctx, func(txn *badger.Txn) error {
		existing, err := getItem(txn, upd.Key)
		if err != nil {
			return err
		}
		if !upd.Condition.holds(existing != nil) {
			return ErrConditionFailed
		}
		return applyUpdate(txn, upd, existing)
	})
}

func (t *BadgerTable) TransactWrite(ctx context.Context, ops []Op) error {
	if err := ValidateTransaction(ops); err != nil {
		return err
	}
	return t.update(ctx, func(txn *badger.Txn) error {
		existing := make([]Item, len(ops))
		var failed []int
		for i, op := range ops {
			key, _ := op.key()
			cur, err := getItem(txn, key)
			if err != nil {
				return err
			}
			existing[i] = cur

			cond := ConditionNone
			if op.Put != nil {
				cond = op.Put.Condition
			} else {
				cond = op.Update.Condition
			}
			if !cond.holds(cur != nil) {
				failed = append(failed, i)
			}
		}
		if len(failed) > 0 {
			return &TransactionCanceledError{Failed: failed}
		}

		for i, op := range ops {
			if op.Put != nil {
				key, _ := op.key()
				if err := putItem(txn, key, existing[i], op.Put.Item); err != nil {
					return err
				}
				continue
			}
			if err := applyUpdate(txn, *op.Update, existing[i]); err != nil {
				return err
			}
		}
		return nil
	})
}

func getItem(txn *badger.Txn, key Key) (Item, error) {
	return txnGetRaw(txn, primaryKey(key))
}

// txnGetRaw returns nil, nil when the key is absent.
func txnGetRaw(txn *badger.Txn, raw []byte) (Item, error) {
	entry, err := txn.Get(raw)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	val, err := entry.ValueCopy(nil)
	if err != nil {
		return nil, err
	}
	return deserializeItem(val)
}

// putItem replaces the record under key and keeps its index entries in step.
func putItem(txn *badger.Txn, key Key, existing, item Item) error {
	for _, part := range []string{key.PK, key.SK} {
		if err := validKeyPart(part); err != nil {
			return err
		}
	}
	if err := deleteIndexEntries(txn, key, existing); err != nil {
		return err
	}
	val, err := serializeItem(item)
	if err != nil {
		return err
	}
	if err := txn.Set(primaryKey(key), val); err != nil {
		return err
	}
	return writeIndexEntries(txn, key, item)
}

func applyUpdate(txn *badger.Txn, upd Update, existing Item) error {
	next := make(Item, len(existing)+len(upd.Increments)+2)
	for k, v := range existing {
		next[k] = v
	}
	for k, v := range upd.Key.Attributes() {
		next[k] = v
	}
	for attr, delta := range upd.Increments {
		cur := int64(0)
		if av, ok := next[attr]; ok {
			n, ok := av.(*types.AttributeValueMemberN)
			if !ok {
				return fmt.Errorf("cannot add to non-numeric attribute %s", attr)
			}
			parsed, err := strconv.ParseInt(n.Value, 10, 64)
			if err != nil {
				return fmt.Errorf("attribute %s holds %q: %w", attr, n.Value, err)
			}
			cur = parsed
		}
		next[attr] = &types.AttributeValueMemberN{Value: strconv.FormatInt(cur+delta, 10)}
	}
	return putItem(txn, upd.Key, existing, next)
}

func indexEntries(key Key, item Item) [][]byte {
	var out [][]byte
	for _, index := range []string{IndexGSI1, IndexGSI2} {
		attrs := indexAttrs[index]
		ipk, ok1 := item[attrs[0]].(*types.AttributeValueMemberS)
		isk, ok2 := item[attrs[1]].(*types.AttributeValueMemberS)
		if !ok1 || !ok2 {
			continue
		}
		out = append(out, indexKey(index, ipk.Value, isk.Value, key))
	}
	return out
}

func writeIndexEntries(txn *badger.Txn, key Key, item Item) error {
	for _, entry := range indexEntries(key, item) {
		if err := txn.Set(entry, primaryKey(key)); err != nil {
			return err
		}
	}
	return nil
}

func deleteIndexEntries(txn *badger.Txn, key Key, existing Item) error {
	if existing == nil {
		return nil
	}
	for _, entry := range indexEntries(key, existing) {
		if err := txn.Delete(entry); err != nil {
			return err
		}
	}
	return nil
}
