package database

import (
	"time"

	"github.com/life-stream-dev/life-stream-go-stomp-client/internal/event"
)

const (
	DefaultCollectionName = "events"
	EventIndexName        = "events_channel_user_time_name_unique"
)

// EventDocument 归档到MongoDB的事件文档
type EventDocument struct {
	Channel     string            `bson:"channel"`
	User        string            `bson:"user"`
	City        string            `bson:"city"`
	EventName   string            `bson:"event_name"`
	DateTime    int64             `bson:"date_time"`
	Description string            `bson:"description"`
	Info        map[string]string `bson:"general_information"`
	ArchivedAt  time.Time         `bson:"archived_at"`
}

func NewEventDocument(channel, user string, ev event.Event, now time.Time) *EventDocument {
	return &EventDocument{
		Channel:     channel,
		User:        user,
		City:        ev.City,
		EventName:   ev.Name,
		DateTime:    ev.DateTime,
		Description: ev.Description,
		Info:        ev.InfoCopy(),
		ArchivedAt:  now.UTC(),
	}
}

// Event 还原为事件
func (d *EventDocument) Event() event.Event {
	return event.Event{
		Channel:     d.Channel,
		City:        d.City,
		Name:        d.EventName,
		DateTime:    d.DateTime,
		Description: d.Description,
		Info:        d.Info,
		Owner:       d.User,
	}
}
