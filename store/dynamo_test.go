package store

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ecosnap_server/logger"
)

type apiCall[T, U any] = func(context.Context, *T, ...func(*dynamodb.Options)) (*U, error)

// mockClient is a function-field fake of the DynamoDB client. Unset
// functions fail the test when called.
type mockClient struct {
	t            *testing.T
	GetFunc      apiCall[dynamodb.GetItemInput, dynamodb.GetItemOutput]
	PutFunc      apiCall[dynamodb.PutItemInput, dynamodb.PutItemOutput]
	UpdateFunc   apiCall[dynamodb.UpdateItemInput, dynamodb.UpdateItemOutput]
	QueryFunc    apiCall[dynamodb.QueryInput, dynamodb.QueryOutput]
	TransactFunc apiCall[dynamodb.TransactWriteItemsInput, dynamodb.TransactWriteItemsOutput]
}

var _ DynamoDBAPI = (*mockClient)(nil)

func (m *mockClient) GetItem(ctx context.Context, in *dynamodb.GetItemInput, opts ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	require.NotNil(m.t, m.GetFunc, "unexpected GetItem call")
	return m.GetFunc(ctx, in, opts...)
}

func (m *mockClient) PutItem(ctx context.Context, in *dynamodb.PutItemInput, opts ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	require.NotNil(m.t, m.PutFunc, "unexpected PutItem call")
	return m.PutFunc(ctx, in, opts...)
}

func (m *mockClient) UpdateItem(ctx context.Context, in *dynamodb.UpdateItemInput, opts ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
	require.NotNil(m.t, m.UpdateFunc, "unexpected UpdateItem call")
	return m.UpdateFunc(ctx, in, opts...)
}

func (m *mockClient) Query(ctx context.Context, in *dynamodb.QueryInput, opts ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	require.NotNil(m.t, m.QueryFunc, "unexpected Query call")
	return m.QueryFunc(ctx, in, opts...)
}

func (m *mockClient) TransactWriteItems(ctx context.Context, in *dynamodb.TransactWriteItemsInput, opts ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error) {
	require.NotNil(m.t, m.TransactFunc, "unexpected TransactWriteItems call")
	return m.TransactFunc(ctx, in, opts...)
}

func newDynamoTable(m *mockClient) *DynamoTable {
	return NewDynamoTable(m, "Ecosnap", logger.NewNop())
}

func TestDynamoGetItem(t *testing.T) {
	m := &mockClient{t: t}
	m.GetFunc = func(_ context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
		assert.Equal(t, "Ecosnap", aws.ToString(in.TableName))
		assert.Equal(t, s("USER#1"), in.Key[AttrPK])
		assert.Equal(t, s("METADATA#1"), in.Key[AttrSK])
		return &dynamodb.GetItemOutput{Item: record("USER#1", "METADATA#1", "username", "alice")}, nil
	}

	item, err := newDynamoTable(m).GetItem(context.Background(), Key{PK: "USER#1", SK: "METADATA#1"})
	require.NoError(t, err)
	assert.Equal(t, "alice", str(t, item, "username"))
}

func TestDynamoGetItemMissing(t *testing.T) {
	m := &mockClient{t: t}
	m.GetFunc = func(context.Context, *dynamodb.GetItemInput, ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
		return &dynamodb.GetItemOutput{}, nil
	}

	_, err := newDynamoTable(m).GetItem(context.Background(), Key{PK: "USER#1", SK: "METADATA#1"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDynamoQueryFollowsPagination(t *testing.T) {
	m := &mockClient{t: t}
	calls := 0
	m.QueryFunc = func(_ context.Context, in *dynamodb.QueryInput, _ ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
		calls++
		assert.Equal(t, IndexGSI2, aws.ToString(in.IndexName))
		assert.False(t, aws.ToBool(in.ScanIndexForward))
		assert.Contains(t, aws.ToString(in.KeyConditionExpression), "begins_with")
		assert.Contains(t, in.ExpressionAttributeNames, "#0")
		if calls == 1 {
			assert.Nil(t, in.ExclusiveStartKey)
			return &dynamodb.QueryOutput{
				Items:            []map[string]types.AttributeValue{record("ORG#1", "METADATA#1")},
				LastEvaluatedKey: Key{PK: "ORG#1", SK: "METADATA#1"}.Attributes(),
			}, nil
		}
		assert.NotNil(t, in.ExclusiveStartKey)
		return &dynamodb.QueryOutput{Items: []map[string]types.AttributeValue{record("ORG#2", "METADATA#2")}}, nil
	}

	items, err := newDynamoTable(m).Query(context.Background(), QueryInput{PK: "ORGANIZATIONS", SKPrefix: "METADATA#", Index: IndexGSI2})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.Len(t, items, 2)
}

func TestDynamoQueryProjection(t *testing.T) {
	m := &mockClient{t: t}
	m.QueryFunc = func(_ context.Context, in *dynamodb.QueryInput, _ ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
		assert.NotEmpty(t, aws.ToString(in.ProjectionExpression))
		assert.Nil(t, in.IndexName)
		return &dynamodb.QueryOutput{Items: []map[string]types.AttributeValue{{"orgId": s("1")}}}, nil
	}

	items, err := newDynamoTable(m).Query(context.Background(), QueryInput{PK: "USER#1", SKPrefix: "ORG#", Projection: []string{"orgId"}, ScanForward: true})
	require.NoError(t, err)
	assert.Equal(t, []Item{{"orgId": s("1")}}, items)
}

func TestDynamoPutItemConditionFailed(t *testing.T) {
	m := &mockClient{t: t}
	m.PutFunc = func(_ context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
		assert.Equal(t, "attribute_not_exists (#0)", aws.ToString(in.ConditionExpression))
		assert.Equal(t, AttrSK, in.ExpressionAttributeNames["#0"])
		return nil, &types.ConditionalCheckFailedException{Message: aws.String("exists")}
	}

	err := newDynamoTable(m).PutItem(context.Background(), record("USER#1", "ORG#1"), ConditionNotExists)
	assert.ErrorIs(t, err, ErrConditionFailed)
}

func TestDynamoPutItemUnconditional(t *testing.T) {
	m := &mockClient{t: t}
	m.PutFunc = func(_ context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
		assert.Nil(t, in.ConditionExpression)
		return &dynamodb.PutItemOutput{}, nil
	}

	assert.NoError(t, newDynamoTable(m).PutItem(context.Background(), record("USER#1", "METADATA#1"), ConditionNone))
}

func TestDynamoUpdateItemUsesAdd(t *testing.T) {
	m := &mockClient{t: t}
	m.UpdateFunc = func(_ context.Context, in *dynamodb.UpdateItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
		assert.Contains(t, aws.ToString(in.UpdateExpression), "ADD")
		assert.Contains(t, aws.ToString(in.ConditionExpression), "attribute_exists")
		assert.Contains(t, in.ExpressionAttributeValues, ":0")
		assert.ElementsMatch(t, []string{AttrPK, "totalSignups"}, mapValues(in.ExpressionAttributeNames))
		return &dynamodb.UpdateItemOutput{}, nil
	}

	err := newDynamoTable(m).UpdateItem(context.Background(), Update{
		Key:        Key{PK: "ORG#1", SK: "METADATA#1"},
		Increments: map[string]int64{"totalSignups": 1},
		Condition:  ConditionExists,
	})
	assert.NoError(t, err)
}

func TestDynamoTransactWriteBuildsItems(t *testing.T) {
	m := &mockClient{t: t}
	m.TransactFunc = func(_ context.Context, in *dynamodb.TransactWriteItemsInput, _ ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error) {
		require.Len(t, in.TransactItems, 2)
		put := in.TransactItems[0].Put
		require.NotNil(t, put)
		assert.Equal(t, "Ecosnap", aws.ToString(put.TableName))
		assert.NotNil(t, put.ConditionExpression)
		upd := in.TransactItems[1].Update
		require.NotNil(t, upd)
		assert.Contains(t, aws.ToString(upd.UpdateExpression), "ADD")
		return &dynamodb.TransactWriteItemsOutput{}, nil
	}

	err := newDynamoTable(m).TransactWrite(context.Background(), []Op{
		{Put: &Put{Item: record("USER#1", "ORG#1"), Condition: ConditionNotExists}},
		{Update: &Update{Key: Key{PK: "ORG#1", SK: "METADATA#1"}, Increments: map[string]int64{"totalSignups": 1}, Condition: ConditionExists}},
	})
	assert.NoError(t, err)
}

func TestDynamoTransactWriteMapsCancellationReasons(t *testing.T) {
	m := &mockClient{t: t}
	m.TransactFunc = func(context.Context, *dynamodb.TransactWriteItemsInput, ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error) {
		return nil, &types.TransactionCanceledException{
			Message: aws.String("Transaction cancelled"),
			CancellationReasons: []types.CancellationReason{
				{Code: aws.String("None")},
				{Code: aws.String("ConditionalCheckFailed")},
			},
		}
	}

	err := newDynamoTable(m).TransactWrite(context.Background(), []Op{
		{Put: &Put{Item: record("USER#1", "ORG#1"), Condition: ConditionNotExists}},
		{Update: &Update{Key: Key{PK: "ORG#1", SK: "METADATA#1"}, Increments: map[string]int64{"totalSignups": 1}, Condition: ConditionExists}},
	})
	var canceled *TransactionCanceledError
	require.True(t, errors.As(err, &canceled))
	assert.Equal(t, []int{1}, canceled.Failed)
}

func TestDynamoTransactWriteThrottledIsUnavailable(t *testing.T) {
	m := &mockClient{t: t}
	m.TransactFunc = func(context.Context, *dynamodb.TransactWriteItemsInput, ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error) {
		return nil, &types.TransactionCanceledException{
			CancellationReasons: []types.CancellationReason{{Code: aws.String("ThrottlingError")}},
		}
	}

	err := newDynamoTable(m).TransactWrite(context.Background(), []Op{{Put: &Put{Item: record("A", "B")}}})
	assert.ErrorIs(t, err, ErrStoreUnavailable)
	assert.NotErrorIs(t, err, ErrTransactionCanceled)
}

func TestDynamoTransportErrorsAreUnavailable(t *testing.T) {
	m := &mockClient{t: t}
	m.GetFunc = func(context.Context, *dynamodb.GetItemInput, ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
		return nil, context.DeadlineExceeded
	}

	_, err := newDynamoTable(m).GetItem(context.Background(), Key{PK: "A", SK: "B"})
	assert.ErrorIs(t, err, ErrStoreUnavailable)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestDynamoTransactWriteValidatesBeforeCalling(t *testing.T) {
	m := &mockClient{t: t}
	ops := make([]Op, MaxTransactionOps+1)
	for i := range ops {
		ops[i] = Op{Put: &Put{Item: record("A", string(rune('a'+i%26))+string(rune('a'+i/26)))}}
	}

	assert.Error(t, newDynamoTable(m).TransactWrite(context.Background(), ops))
}

func mapValues(m map[string]string) []string {
	out := make([]string, 0, len(m))
	for _, v := range m {
		out = append(out, v)
	}
	return out
}
