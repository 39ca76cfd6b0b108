// Package store is the single-table data access layer.
//
// Every record kind lives in one logical table keyed by (PK, SK) with two
// global secondary indexes, GSI1 (GSI1PK, GSI1SK) and GSI2 (GSI2PK, GSI2SK).
// Two backends implement [Table]: [DynamoTable] talks to Amazon DynamoDB and
// [BadgerTable] embeds an ordered transactional key-value store for local
// development and tests. Both honour the same conditional-write and
// all-or-nothing transaction semantics.
package store

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// Attribute names shared by every record in the table.
const (
	AttrPK     = "PK"
	AttrSK     = "SK"
	AttrGSI1PK = "GSI1PK"
	AttrGSI1SK = "GSI1SK"
	AttrGSI2PK = "GSI2PK"
	AttrGSI2SK = "GSI2SK"
)

// Index names.
const (
	IndexGSI1 = "GSI1"
	IndexGSI2 = "GSI2"
)

// MaxTransactionOps is the DynamoDB limit on operations in one TransactWriteItems call.
const MaxTransactionOps = 100

// indexAttrs maps an index to its partition and sort key attributes.
var indexAttrs = map[string][2]string{
	IndexGSI1: {AttrGSI1PK, AttrGSI1SK},
	IndexGSI2: {AttrGSI2PK, AttrGSI2SK},
}

// Key is the composite primary key of a record.
type Key struct {
	PK string
	SK string
}

func (k Key) String() string { return k.PK + "|" + k.SK }

// Attributes returns the key as DynamoDB attribute values.
func (k Key) Attributes() map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		AttrPK: &types.AttributeValueMemberS{Value: k.PK},
		AttrSK: &types.AttributeValueMemberS{Value: k.SK},
	}
}

// Item is a raw record. Its PK and SK attributes are always strings.
type Item map[string]types.AttributeValue

// Key extracts the primary key of the item.
func (it Item) Key() (Key, error) {
	pk, ok := it[AttrPK].(*types.AttributeValueMemberS)
	if !ok || pk.Value == "" {
		return Key{}, fmt.Errorf("item is missing string attribute %s", AttrPK)
	}
	sk, ok := it[AttrSK].(*types.AttributeValueMemberS)
	if !ok || sk.Value == "" {
		return Key{}, fmt.Errorf("item is missing string attribute %s", AttrSK)
	}
	return Key{PK: pk.Value, SK: sk.Value}, nil
}

// Condition guards a write against the currently committed record.
type Condition int

const (
	// ConditionNone writes unconditionally.
	ConditionNone Condition = iota
	// ConditionNotExists requires that no record exists under the key.
	ConditionNotExists
	// ConditionExists requires that a record exists under the key.
	ConditionExists
)

func (c Condition) String() string {
	switch c {
	case ConditionNotExists:
		return "attribute_not_exists(SK)"
	case ConditionExists:
		return "attribute_exists(PK)"
	default:
		return "none"
	}
}

// holds reports whether the condition is satisfied given whether a record exists.
func (c Condition) holds(exists bool) bool {
	switch c {
	case ConditionNotExists:
		return !exists
	case ConditionExists:
		return exists
	default:
		return true
	}
}

// QueryInput selects records sharing a partition key, optionally narrowed by
// a sort key prefix. With Index set the partition and sort keys are the
// index's key attributes instead of PK and SK.
type QueryInput struct {
	PK       string
	SKPrefix string
	Index    string

	// ScanForward orders results by sort key ascending when true.
	ScanForward bool

	// Projection limits returned attributes. Empty returns whole records.
	Projection []string

	// Limit caps the total number of records returned (0 = no limit).
	Limit int32
}

func (q QueryInput) validate() error {
	if q.PK == "" {
		return fmt.Errorf("query requires a partition key value")
	}
	if q.Index != "" {
		if _, ok := indexAttrs[q.Index]; !ok {
			return fmt.Errorf("unknown index %q", q.Index)
		}
	}
	return nil
}

// keyAttrs returns the partition and sort key attribute names the query runs against.
func (q QueryInput) keyAttrs() (string, string) {
	if q.Index == "" {
		return AttrPK, AttrSK
	}
	attrs := indexAttrs[q.Index]
	return attrs[0], attrs[1]
}

// Put writes a whole record.
type Put struct {
	Item      Item
	Condition Condition
}

// Update applies atomic counter increments to a record.
type Update struct {
	Key        Key
	Increments map[string]int64
	Condition  Condition
}

// Op is one transaction operation; exactly one field is set.
type Op struct {
	Put    *Put
	Update *Update
}

func (op Op) key() (Key, error) {
	switch {
	case op.Put != nil && op.Update == nil:
		return op.Put.Item.Key()
	case op.Update != nil && op.Put == nil:
		if op.Update.Key.PK == "" || op.Update.Key.SK == "" {
			return Key{}, fmt.Errorf("update requires a full key")
		}
		if len(op.Update.Increments) == 0 {
			return Key{}, fmt.Errorf("update on %s has no increments", op.Update.Key)
		}
		return op.Update.Key, nil
	default:
		return Key{}, fmt.Errorf("operation must set exactly one of Put or Update")
	}
}

// ValidateTransaction checks the operation count limit and that no two
// operations target the same record.
func ValidateTransaction(ops []Op) error {
	if len(ops) == 0 {
		return fmt.Errorf("transaction has no operations")
	}
	if len(ops) > MaxTransactionOps {
		return fmt.Errorf("transaction has %d operations, limit is %d", len(ops), MaxTransactionOps)
	}
	seen := make(map[Key]int, len(ops))
	for i, op := range ops {
		k, err := op.key()
		if err != nil {
			return fmt.Errorf("operation %d: %w", i, err)
		}
		if j, dup := seen[k]; dup {
			return fmt.Errorf("operations %d and %d both target %s", j, i, k)
		}
		seen[k] = i
	}
	return nil
}

// Table is the storage contract consumed by the domain services.
type Table interface {
	// GetItem returns the record under key or ErrNotFound.
	GetItem(ctx context.Context, key Key) (Item, error)

	// Query returns every matching record ordered by sort key. An empty
	// result is not an error.
	Query(ctx context.Context, in QueryInput) ([]Item, error)

	// PutItem writes a record, failing with ErrConditionFailed when the
	// condition does not hold.
	PutItem(ctx context.Context, item Item, cond Condition) error

	// UpdateItem atomically adds the increments to the record.
	UpdateItem(ctx context.Context, upd Update) error

	// TransactWrite commits every operation or none. A failed guard is
	// reported as *TransactionCanceledError.
	TransactWrite(ctx context.Context, ops []Op) error
}
