package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/life-stream-dev/life-stream-go-stomp-client/internal/event"
	"github.com/life-stream-dev/life-stream-go-stomp-client/internal/logger"
)

type DBStore struct {
	client           *mongo.Client
	collection       *mongo.Collection
	operationTimeout time.Duration
}

var (
	ErrChannelEmpty = errors.New("channel is empty")
	ErrUserEmpty    = errors.New("user is empty")
)

// EventFilter 与唯一索引对应的查询条件
func EventFilter(doc *EventDocument) bson.D {
	return bson.D{
		{Key: "channel", Value: doc.Channel},
		{Key: "user", Value: doc.User},
		{Key: "date_time", Value: doc.DateTime},
		{Key: "event_name", Value: doc.EventName},
	}
}

func validateKey(channel, user string) error {
	if channel == "" {
		return ErrChannelEmpty
	}
	if user == "" {
		return ErrUserEmpty
	}
	return nil
}

// SaveEvent 写入或覆盖一条事件
func (ds *DBStore) SaveEvent(ctx context.Context, channel, user string, ev event.Event) error {
	if err := validateKey(channel, user); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, ds.operationTimeout)
	defer cancel()

	doc := NewEventDocument(channel, user, ev, time.Now())
	opts := options.Replace().SetUpsert(true)

	startTime := time.Now()
	result, err := ds.collection.ReplaceOne(ctx, EventFilter(doc), doc, opts)
	logger.DebugF("event upsert cost: %v", time.Since(startTime))

	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("unique key conflicts: %w", err)
		}
		return fmt.Errorf("database operation failed: %w", err)
	}

	logger.DebugF("Event saved: channel=%s, user=%s, matched=%d, modified=%d, upserted=%v",
		channel, user,
		result.MatchedCount,
		result.ModifiedCount,
		result.UpsertedID != nil,
	)
	return nil
}

// QueryEvents 按时间顺序读取已归档的事件
func (ds *DBStore) QueryEvents(ctx context.Context, channel, user string) ([]event.Event, error) {
	if err := validateKey(channel, user); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, ds.operationTimeout)
	defer cancel()

	filter := bson.D{{Key: "channel", Value: channel}, {Key: "user", Value: user}}
	opts := options.Find().SetSort(bson.D{{Key: "date_time", Value: 1}, {Key: "event_name", Value: 1}})
	cursor, err := ds.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("database operation failed: %w", err)
	}
	defer func() { _ = cursor.Close(ctx) }()

	var docs []EventDocument
	if err := cursor.All(ctx, &docs); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("database operation failed: %w", err)
	}

	events := make([]event.Event, 0, len(docs))
	for i := range docs {
		events = append(events, docs[i].Event())
	}
	return events, nil
}
