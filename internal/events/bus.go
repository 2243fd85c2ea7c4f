// GeoStats - Shapefile Statistics and Chart Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/geostats

package events

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"github.com/tomtom215/geostats/internal/config"
	"github.com/tomtom215/geostats/internal/logging"
	"github.com/tomtom215/geostats/internal/metrics"
)

// Bus is the in-process pub/sub shared by publishers and the router.
//
// Publishing blocks until the subscriber acknowledges the message, so an
// upload response is sent only after its artifacts exist. Messages
// published while no handler is subscribed are dropped.
type Bus struct {
	pubsub *gochannel.GoChannel
}

// NewBus creates the pub/sub.
func NewBus(cfg *config.EventsConfig, logger watermill.LoggerAdapter) *Bus {
	if logger == nil {
		logger = logging.NewWatermillAdapter()
	}
	return &Bus{
		pubsub: gochannel.NewGoChannel(gochannel.Config{
			OutputChannelBuffer:            cfg.BufferSize,
			BlockPublishUntilSubscriberAck: true,
		}, logger),
	}
}

// Publisher returns the underlying Watermill publisher.
func (b *Bus) Publisher() message.Publisher { return b.pubsub }

// Subscriber returns the underlying Watermill subscriber.
func (b *Bus) Subscriber() message.Subscriber { return b.pubsub }

// PublishImported publishes a DatasetImported event.
func (b *Bus) PublishImported(ctx context.Context, event *DatasetImported) error {
	return b.publish(ctx, TopicDatasetImported, event)
}

// PublishDeleted publishes a DatasetDeleted event.
func (b *Bus) PublishDeleted(ctx context.Context, event *DatasetDeleted) error {
	return b.publish(ctx, TopicDatasetDeleted, event)
}

func (b *Bus) publish(ctx context.Context, topic string, event validator) error {
	payload, err := marshal(event)
	if err != nil {
		return err
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.SetContext(ctx)
	correlationID := logging.CorrelationIDFromContext(ctx)
	if correlationID == "" {
		correlationID = logging.RequestIDFromContext(ctx)
	}
	if correlationID != "" {
		middleware.SetCorrelationID(correlationID, msg)
	}

	if err := b.pubsub.Publish(topic, msg); err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	metrics.EventsPublished.WithLabelValues(topic).Inc()
	return nil
}

// Close closes the pub/sub. Subscriptions end and further publishes fail.
func (b *Bus) Close() error {
	return b.pubsub.Close()
}
