// Package events carries in-process notifications between the ingestion path
// and interested surfaces, decoupling them from each other.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

const TopicDocumentIngested = "document.ingested"

// DocumentIngested is published after a document's chunks become queryable.
type DocumentIngested struct {
	Filename   string    `json:"filename"`
	ChunkCount int       `json:"chunk_count"`
	At         time.Time `json:"at"`
}

type Bus struct {
	pubsub *gochannel.GoChannel
}

func NewBus() *Bus {
	return &Bus{
		pubsub: gochannel.NewGoChannel(gochannel.Config{
			OutputChannelBuffer: 64,
		}, watermill.NopLogger{}),
	}
}

// DocumentIngested publishes an ingestion completion.
func (b *Bus) DocumentIngested(filename string, chunkCount int) error {
	payload, err := json.Marshal(DocumentIngested{
		Filename:   filename,
		ChunkCount: chunkCount,
		At:         time.Now().UTC(),
	})
	if err != nil {
		return err
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	return b.pubsub.Publish(TopicDocumentIngested, msg)
}

// SubscribeDocumentIngested delivers ingestion events until ctx is done.
// Messages that fail to decode are acked and dropped.
func (b *Bus) SubscribeDocumentIngested(ctx context.Context) (<-chan DocumentIngested, error) {
	messages, err := b.pubsub.Subscribe(ctx, TopicDocumentIngested)
	if err != nil {
		return nil, err
	}

	out := make(chan DocumentIngested)
	go func() {
		defer close(out)
		for msg := range messages {
			var event DocumentIngested
			if err := json.Unmarshal(msg.Payload, &event); err != nil {
				msg.Ack()
				continue
			}
			select {
			case out <- event:
				msg.Ack()
			case <-ctx.Done():
				msg.Nack()
				return
			}
		}
	}()
	return out, nil
}

func (b *Bus) Close() error {
	return b.pubsub.Close()
}
