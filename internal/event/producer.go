package event

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/utafrali/storefront/internal/domain"
	pkgkafka "github.com/utafrali/storefront/pkg/kafka"
	"github.com/utafrali/storefront/pkg/logger"
)

// Kafka topic for wish-list domain events.
var TopicWishListUpdated = pkgkafka.Topic("wishlist", "updated")

const (
	EventTypeWishListUpdated = "wishlist.updated"
	AggregateTypeWishList    = "wishlist"
	SourceStorefront         = "storefront"

	// MetadataListingID names the listing screen a change came from.
	MetadataListingID = "listing_id"
)

// WishListUpdatedData is the payload of a wishlist.updated event.
type WishListUpdatedData struct {
	Items      []domain.Product `json:"items"`
	ProductIDs []int64          `json:"product_ids"`
	ItemCount  int              `json:"item_count"`
}

// EventPublisher sends an event envelope to a topic. *pkgkafka.Producer
// satisfies it.
type EventPublisher interface {
	Publish(ctx context.Context, topic string, event *pkgkafka.Event) error
}

// Producer publishes wish-list domain events.
type Producer struct {
	publisher   EventPublisher
	aggregateID string
	logger      *slog.Logger
	seq         atomic.Int64
}

// NewProducer creates a producer whose events are keyed by aggregateID, the
// wish-list storage key.
func NewProducer(publisher EventPublisher, aggregateID string, logger *slog.Logger) *Producer {
	return &Producer{publisher: publisher, aggregateID: aggregateID, logger: logger}
}

// PublishWishListUpdated publishes the full wish list after a change.
func (p *Producer) PublishWishListUpdated(ctx context.Context, items []domain.Product) error {
	ids := make([]int64, len(items))
	for i, item := range items {
		ids[i] = item.ID
	}
	if items == nil {
		items = []domain.Product{}
	}

	data := WishListUpdatedData{Items: items, ProductIDs: ids, ItemCount: len(items)}

	event, err := pkgkafka.NewEvent(EventTypeWishListUpdated, p.aggregateID, AggregateTypeWishList, SourceStorefront, data)
	if err != nil {
		return fmt.Errorf("create wishlist.updated event: %w", err)
	}
	event.WithVersion(p.seq.Add(1))
	if id := logger.CorrelationIDFromContext(ctx); id != "" {
		event.WithCorrelationID(id)
	}
	if id := logger.ListingIDFromContext(ctx); id != "" {
		event.WithMetadata(MetadataListingID, id)
	}

	if err := p.publisher.Publish(ctx, TopicWishListUpdated, event); err != nil {
		return fmt.Errorf("publish wishlist.updated event: %w", err)
	}

	p.logger.DebugContext(ctx, "published wishlist.updated event",
		slog.Int("item_count", len(items)),
	)
	return nil
}
