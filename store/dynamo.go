package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"

	"ecosnap_server/logger"
)

// DynamoDBAPI is the subset of *dynamodb.Client the table needs.
type DynamoDBAPI interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	TransactWriteItems(ctx context.Context, params *dynamodb.TransactWriteItemsInput, optFns ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error)
}

var _ DynamoDBAPI = (*dynamodb.Client)(nil)

// DynamoTable implements Table on one DynamoDB table.
type DynamoTable struct {
	client    DynamoDBAPI
	tableName string
	log       *logger.Logger
}

var _ Table = (*DynamoTable)(nil)

func NewDynamoTable(client DynamoDBAPI, tableName string, log *logger.Logger) *DynamoTable {
	return &DynamoTable{client: client, tableName: tableName, log: log.With("store", "dynamodb", "table", tableName)}
}

func (d *DynamoTable) GetItem(ctx context.Context, key Key) (Item, error) {
	output, err := d.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(d.tableName),
		Key:       key.Attributes(),
	})
	if err != nil {
		return nil, d.mapError("get item", err)
	}
	if output.Item == nil {
		return nil, ErrNotFound
	}
	return output.Item, nil
}

func (d *DynamoTable) Query(ctx context.Context, in QueryInput) ([]Item, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	pkAttr, skAttr := in.keyAttrs()

	keyCond := expression.Key(pkAttr).Equal(expression.Value(in.PK))
	if in.SKPrefix != "" {
		keyCond = keyCond.And(expression.Key(skAttr).BeginsWith(in.SKPrefix))
	}
	builder := expression.NewBuilder().WithKeyCondition(keyCond)
	if len(in.Projection) > 0 {
		names := make([]expression.NameBuilder, 0, len(in.Projection)-1)
		for _, n := range in.Projection[1:] {
			names = append(names, expression.Name(n))
		}
		builder = builder.WithProjection(expression.NamesList(expression.Name(in.Projection[0]), names...))
	}
	expr, err := builder.Build()
	if err != nil {
		return nil, fmt.Errorf("build query expression: %w", err)
	}

	input := &dynamodb.QueryInput{
		TableName:                 aws.String(d.tableName),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ProjectionExpression:      expr.Projection(),
		ScanIndexForward:          aws.Bool(in.ScanForward),
	}
	if in.Index != "" {
		input.IndexName = aws.String(in.Index)
	}
	if in.Limit > 0 {
		input.Limit = aws.Int32(in.Limit)
	}

	var items []Item
	paginator := dynamodb.NewQueryPaginator(d.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, d.mapError("query", err)
		}
		for _, it := range page.Items {
			items = append(items, it)
			if in.Limit > 0 && int32(len(items)) >= in.Limit {
				return items, nil
			}
		}
	}
	return items, nil
}

func (d *DynamoTable) PutItem(ctx context.Context, item Item, cond Condition) error {
	if _, err := item.Key(); err != nil {
		return err
	}
	input := &dynamodb.PutItemInput{
		TableName: aws.String(d.tableName),
		Item:      item,
	}
	if cb, ok := conditionBuilder(cond); ok {
		expr, err := expression.NewBuilder().WithCondition(cb).Build()
		if err != nil {
			return fmt.Errorf("build condition expression: %w", err)
		}
		input.ConditionExpression = expr.Condition()
		input.ExpressionAttributeNames = expr.Names()
	}

	if _, err := d.client.PutItem(ctx, input); err != nil {
		return d.mapError("put item", err)
	}
	return nil
}

func (d *DynamoTable) UpdateItem(ctx context.Context, upd Update) error {
	if _, err := (Op{Update: &upd}).key(); err != nil {
		return err
	}
	expr, err := updateExpression(upd)
	if err != nil {
		return err
	}
	_, err = d.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(d.tableName),
		Key:                       upd.Key.Attributes(),
		UpdateExpression:          expr.Update(),
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		return d.mapError("update item", err)
	}
	return nil
}

func (d *DynamoTable) TransactWrite(ctx context.Context, ops []Op) error {
	if err := ValidateTransaction(ops); err != nil {
		return err
	}

	items := make([]types.TransactWriteItem, 0, len(ops))
	for i, op := range ops {
		if op.Put != nil {
			put := &types.Put{
				TableName: aws.String(d.tableName),
				Item:      op.Put.Item,
			}
			if cb, ok := conditionBuilder(op.Put.Condition); ok {
				expr, err := expression.NewBuilder().WithCondition(cb).Build()
				if err != nil {
					return fmt.Errorf("operation %d: build condition expression: %w", i, err)
				}
				put.ConditionExpression = expr.Condition()
				put.ExpressionAttributeNames = expr.Names()
			}
			items = append(items, types.TransactWriteItem{Put: put})
			continue
		}

		expr, err := updateExpression(*op.Update)
		if err != nil {
			return fmt.Errorf("operation %d: %w", i, err)
		}
		items = append(items, types.TransactWriteItem{Update: &types.Update{
			TableName:                 aws.String(d.tableName),
			Key:                       op.Update.Key.Attributes(),
			UpdateExpression:          expr.Update(),
			ConditionExpression:       expr.Condition(),
			ExpressionAttributeNames:  expr.Names(),
			ExpressionAttributeValues: expr.Values(),
		}})
	}

	_, err := d.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{TransactItems: items})
	if err != nil {
		return d.mapError("transact write", err)
	}
	return nil
}

func conditionBuilder(cond Condition) (expression.ConditionBuilder, bool) {
	switch cond {
	case ConditionNotExists:
		return expression.AttributeNotExists(expression.Name(AttrSK)), true
	case ConditionExists:
		return expression.AttributeExists(expression.Name(AttrPK)), true
	default:
		return expression.ConditionBuilder{}, false
	}
}

// updateExpression renders the increments as one ADD clause per attribute.
func updateExpression(upd Update) (expression.Expression, error) {
	var ub expression.UpdateBuilder
	for attr, delta := range upd.Increments {
		ub = ub.Add(expression.Name(attr), expression.Value(delta))
	}
	builder := expression.NewBuilder().WithUpdate(ub)
	if cb, ok := conditionBuilder(upd.Condition); ok {
		builder = builder.WithCondition(cb)
	}
	expr, err := builder.Build()
	if err != nil {
		return expression.Expression{}, fmt.Errorf("build update expression: %w", err)
	}
	return expr, nil
}

// mapError translates SDK errors into the store taxonomy.
func (d *DynamoTable) mapError(op string, err error) error {
	var ccf *types.ConditionalCheckFailedException
	if errors.As(err, &ccf) {
		return ErrConditionFailed
	}

	var txErr *types.TransactionCanceledException
	if errors.As(err, &txErr) {
		canceled := &TransactionCanceledError{}
		for i, reason := range txErr.CancellationReasons {
			if aws.ToString(reason.Code) == "ConditionalCheckFailed" {
				canceled.Failed = append(canceled.Failed, i)
			}
		}
		if canceled.Known() || len(txErr.CancellationReasons) == 0 {
			return canceled
		}
		// Cancelled for throttling or a conflicting transaction, not a guard.
		d.log.Warn("Transaction cancelled without a failed condition", "op", op, "error", err)
		return unavailable(op, err)
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		d.log.Error("DynamoDB request failed", "op", op, "code", apiErr.ErrorCode(), "error", apiErr.ErrorMessage())
	} else {
		d.log.Error("DynamoDB request failed", "op", op, "error", err)
	}
	return unavailable(fmt.Sprintf("%s on table '%s'", op, d.tableName), err)
}
