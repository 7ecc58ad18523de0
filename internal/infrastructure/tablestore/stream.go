package tablestore

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/ErlynFabian/WearShop-sub000/internal/gateway"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodbstreams"
	streamtypes "github.com/aws/aws-sdk-go-v2/service/dynamodbstreams/types"
)

// StreamPoller turns a DynamoDB Stream into gateway change events. It is
// the dynamo counterpart of the Kafka change feed.
type StreamPoller struct {
	client    *dynamodbstreams.Client
	streamArn string
	interval  time.Duration
}

func NewStreamPoller(client *dynamodbstreams.Client, streamArn string, interval time.Duration) *StreamPoller {
	if interval <= 0 {
		interval = time.Second
	}
	return &StreamPoller{client: client, streamArn: streamArn, interval: interval}
}

// Run polls all open shards until the context is cancelled, delivering each
// converted change event to handler. Handler errors are logged, not fatal.
func (sp *StreamPoller) Run(ctx context.Context, handler func(context.Context, gateway.ChangeEvent) error) error {
	iterators, err := sp.shardIterators(ctx)
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		for shardID, iterator := range iterators {
			if iterator == "" {
				continue
			}
			out, err := sp.client.GetRecords(ctx, &dynamodbstreams.GetRecordsInput{
				ShardIterator: aws.String(iterator),
			})
			if err != nil {
				log.Printf("[StreamPoller] GetRecords on shard %s: %v", shardID, err)
				continue
			}

			for _, rec := range out.Records {
				ev, err := ConvertStreamRecord(rec)
				if err != nil {
					log.Printf("[StreamPoller] Skipping record: %v", err)
					continue
				}
				if ev == nil {
					continue
				}
				if err := handler(ctx, *ev); err != nil {
					log.Printf("[StreamPoller] Handler error for %s on %s: %v", ev.Kind, ev.Table, err)
				}
			}

			if out.NextShardIterator == nil {
				iterators[shardID] = "" // shard closed
			} else {
				iterators[shardID] = *out.NextShardIterator
			}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(sp.interval):
		}
	}
}

func (sp *StreamPoller) shardIterators(ctx context.Context) (map[string]string, error) {
	desc, err := sp.client.DescribeStream(ctx, &dynamodbstreams.DescribeStreamInput{
		StreamArn: aws.String(sp.streamArn),
	})
	if err != nil {
		return nil, fmt.Errorf("describe stream: %w", err)
	}

	iterators := make(map[string]string)
	for _, shard := range desc.StreamDescription.Shards {
		out, err := sp.client.GetShardIterator(ctx, &dynamodbstreams.GetShardIteratorInput{
			StreamArn:         aws.String(sp.streamArn),
			ShardId:           shard.ShardId,
			ShardIteratorType: streamtypes.ShardIteratorTypeLatest,
		})
		if err != nil {
			return nil, fmt.Errorf("get shard iterator: %w", err)
		}
		if out.ShardIterator != nil {
			iterators[aws.ToString(shard.ShardId)] = *out.ShardIterator
		}
	}
	return iterators, nil
}

// ConvertStreamRecord maps a DynamoDB Stream record onto a gateway change
// event. Records that carry no usable image return (nil, nil).
func ConvertStreamRecord(rec streamtypes.Record) (*gateway.ChangeEvent, error) {
	if rec.Dynamodb == nil {
		return nil, nil
	}

	var kind gateway.ChangeKind
	switch rec.EventName {
	case streamtypes.OperationTypeInsert:
		kind = gateway.ChangeInsert
	case streamtypes.OperationTypeModify:
		kind = gateway.ChangeUpdate
	case streamtypes.OperationTypeRemove:
		kind = gateway.ChangeDelete
	default:
		return nil, nil
	}

	ev := &gateway.ChangeEvent{
		ID:        aws.ToString(rec.EventID),
		Kind:      kind,
		Timestamp: time.Now(),
	}
	if rec.Dynamodb.ApproximateCreationDateTime != nil {
		ev.Timestamp = *rec.Dynamodb.ApproximateCreationDateTime
	}

	newRec, err := imageToRecord(rec.Dynamodb.NewImage)
	if err != nil {
		return nil, fmt.Errorf("new image: %w", err)
	}
	oldRec, err := imageToRecord(rec.Dynamodb.OldImage)
	if err != nil {
		return nil, fmt.Errorf("old image: %w", err)
	}
	if newRec == nil && oldRec == nil {
		return nil, nil
	}

	ev.New = newRec
	ev.Old = oldRec
	if newRec != nil {
		ev.Table = newRec.Table
	} else {
		ev.Table = oldRec.Table
	}
	return ev, nil
}

func imageToRecord(image map[string]streamtypes.AttributeValue) (*gateway.Record, error) {
	if image == nil {
		return nil, nil
	}

	rec := &gateway.Record{
		ID:    attrString(image["id"]),
		Table: attrString(image["table_name"]),
		Data:  []byte(attrString(image["data"])),
	}
	if rec.ID == "" || rec.Table == "" {
		return nil, fmt.Errorf("image missing id or table_name")
	}

	if s := attrString(image["created_at"]); s != "" {
		t, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return nil, fmt.Errorf("parse created_at: %w", err)
		}
		rec.CreatedAt = t
	}
	if s := attrString(image["updated_at"]); s != "" {
		t, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return nil, fmt.Errorf("parse updated_at: %w", err)
		}
		rec.UpdatedAt = t
	}
	return rec, nil
}

func attrString(av streamtypes.AttributeValue) string {
	if s, ok := av.(*streamtypes.AttributeValueMemberS); ok {
		return s.Value
	}
	return ""
}
