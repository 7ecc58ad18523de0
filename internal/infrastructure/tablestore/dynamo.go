package tablestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ErlynFabian/WearShop-sub000/internal/gateway"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
)

// Dynamo stores records in a single DynamoDB table keyed by
// (table_name, id). Mutations reach the change feed through the table's
// DynamoDB Stream, so no publisher is attached here.
type Dynamo struct {
	client    *dynamodb.Client
	tableName string
}

// dynamoRecord is the DynamoDB item layout.
type dynamoRecord struct {
	TableName string `dynamodbav:"table_name"`
	ID        string `dynamodbav:"id"`
	Data      string `dynamodbav:"data"`
	CreatedAt string `dynamodbav:"created_at"`
	UpdatedAt string `dynamodbav:"updated_at"`
}

func NewDynamo(client *dynamodb.Client, tableName string) *Dynamo {
	return &Dynamo{client: client, tableName: tableName}
}

func (d *Dynamo) mapError(table string, err error) error {
	if err == nil {
		return nil
	}
	var notFound *types.ResourceNotFoundException
	if errors.As(err, &notFound) {
		return gateway.WrapError(gateway.CodeTableMissing, table, err)
	}
	var condFailed *types.ConditionalCheckFailedException
	if errors.As(err, &condFailed) {
		return gateway.WrapError(gateway.CodeConflict, table, err)
	}
	return gateway.WrapError(gateway.CodeUnavailable, table, err)
}

func (d *Dynamo) toRecord(table string, item dynamoRecord) (*gateway.Record, error) {
	createdAt, err := time.Parse(time.RFC3339Nano, item.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	updatedAt, err := time.Parse(time.RFC3339Nano, item.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}
	return &gateway.Record{
		ID:        item.ID,
		Table:     table,
		Data:      []byte(item.Data),
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}, nil
}

func (d *Dynamo) put(ctx context.Context, table string, rec gateway.Record, mustBeNew bool) error {
	item := dynamoRecord{
		TableName: table,
		ID:        rec.ID,
		Data:      string(rec.Data),
		CreatedAt: rec.CreatedAt.Format(time.RFC3339Nano),
		UpdatedAt: rec.UpdatedAt.Format(time.RFC3339Nano),
	}
	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return gateway.WrapError(gateway.CodeBadRequest, table, err)
	}

	input := &dynamodb.PutItemInput{
		TableName: aws.String(d.tableName),
		Item:      av,
	}
	if mustBeNew {
		input.ConditionExpression = aws.String("attribute_not_exists(id)")
	}
	if _, err := d.client.PutItem(ctx, input); err != nil {
		return d.mapError(table, err)
	}
	return nil
}

func (d *Dynamo) Insert(ctx context.Context, table string, data any) (*gateway.Record, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, gateway.WrapError(gateway.CodeBadRequest, table, err)
	}
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, gateway.WrapError(gateway.CodeBadRequest, table, err)
	}
	id, _ := fields["id"].(string)
	if id == "" {
		id = uuid.New().String()
		fields["id"] = id
		raw, _ = json.Marshal(fields)
	}

	now := time.Now()
	rec := gateway.Record{ID: id, Table: table, Data: raw, CreatedAt: now, UpdatedAt: now}
	if err := d.put(ctx, table, rec, true); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (d *Dynamo) Get(ctx context.Context, table, id string) (*gateway.Record, error) {
	out, err := d.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(d.tableName),
		Key: map[string]types.AttributeValue{
			"table_name": &types.AttributeValueMemberS{Value: table},
			"id":         &types.AttributeValueMemberS{Value: id},
		},
	})
	if err != nil {
		return nil, d.mapError(table, err)
	}
	if out.Item == nil {
		return nil, gateway.NewError(gateway.CodeNotFound, table, "record not found: "+id)
	}

	var item dynamoRecord
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, gateway.WrapError(gateway.CodeBadRequest, table, err)
	}
	return d.toRecord(table, item)
}

func (d *Dynamo) Select(ctx context.Context, table string, q gateway.Query) ([]gateway.Record, error) {
	var out []gateway.Record
	var lastKey map[string]types.AttributeValue

	for {
		resp, err := d.client.Query(ctx, &dynamodb.QueryInput{
			TableName:              aws.String(d.tableName),
			KeyConditionExpression: aws.String("table_name = :t"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":t": &types.AttributeValueMemberS{Value: table},
			},
			ExclusiveStartKey: lastKey,
		})
		if err != nil {
			return nil, d.mapError(table, err)
		}

		for _, rawItem := range resp.Items {
			var item dynamoRecord
			if err := attributevalue.UnmarshalMap(rawItem, &item); err != nil {
				continue
			}
			rec, err := d.toRecord(table, item)
			if err != nil {
				continue
			}
			if gateway.MatchRecord(*rec, q) {
				out = append(out, *rec)
			}
		}

		if resp.LastEvaluatedKey == nil {
			break
		}
		lastKey = resp.LastEvaluatedKey
	}

	gateway.SortRecords(out, q)
	return out, nil
}

func (d *Dynamo) Update(ctx context.Context, table, id string, patch map[string]any) (*gateway.Record, error) {
	old, err := d.Get(ctx, table, id)
	if err != nil {
		return nil, err
	}

	var fields map[string]any
	if err := json.Unmarshal(old.Data, &fields); err != nil {
		return nil, gateway.WrapError(gateway.CodeBadRequest, table, err)
	}
	for k, v := range patch {
		fields[k] = v
	}
	raw, err := json.Marshal(fields)
	if err != nil {
		return nil, gateway.WrapError(gateway.CodeBadRequest, table, err)
	}

	rec := gateway.Record{ID: id, Table: table, Data: raw, CreatedAt: old.CreatedAt, UpdatedAt: time.Now()}
	if err := d.put(ctx, table, rec, false); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (d *Dynamo) Delete(ctx context.Context, table, id string) error {
	if _, err := d.Get(ctx, table, id); err != nil {
		return err
	}
	_, err := d.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(d.tableName),
		Key: map[string]types.AttributeValue{
			"table_name": &types.AttributeValueMemberS{Value: table},
			"id":         &types.AttributeValueMemberS{Value: id},
		},
	})
	return d.mapError(table, err)
}
