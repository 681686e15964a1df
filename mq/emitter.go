package mq

import (
	"context"
	"encoding/json"
	"fmt"

	"outfitorbit/globals"
	"outfitorbit/models"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// OrderChannel is the Redis channel order events are published on.
const OrderChannel = "order-events"

// Event types.
const (
	OrderPlaced        = "order.placed"
	OrderPaid          = "order.paid"
	OrderPaymentFailed = "order.payment_failed"
)

// Emitter publishes order events.
type Emitter interface {
	Emit(ctx context.Context, ev models.OrderEvent)
}

// RedisEmitter publishes to OrderChannel.
type RedisEmitter struct {
	Client *redis.Client
}

// Emit is fire and forget: a failed publish is logged, never returned.
func (e *RedisEmitter) Emit(ctx context.Context, ev models.OrderEvent) {
	data, err := json.Marshal(ev)
	if err != nil {
		globals.Log.Error("marshal order event", zap.Error(err))
		return
	}
	if err := e.Client.Publish(ctx, OrderChannel, data).Err(); err != nil {
		globals.Log.Warn("publish order event",
			zap.String("type", ev.Type), zap.String("order", ev.OrderID), zap.Error(err))
		return
	}
	globals.Log.Debug("order event published", zap.String("type", ev.Type), zap.String("order", ev.OrderID))
}

// Handler reacts to one order event.
type Handler func(ctx context.Context, ev models.OrderEvent) error

// StartOrderWorker consumes OrderChannel until ctx is done.
func StartOrderWorker(ctx context.Context, client *redis.Client, h Handler) {
	sub := client.Subscribe(ctx, OrderChannel)
	defer sub.Close()
	ch := sub.Channel()

	globals.Log.Info("order worker listening", zap.String("channel", OrderChannel))
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			if err := HandleMessage(ctx, msg.Payload, h); err != nil {
				globals.Log.Warn("order event not handled", zap.Error(err))
			}
		}
	}
}

// HandleMessage decodes a payload and passes it to h.
func HandleMessage(ctx context.Context, payload string, h Handler) error {
	var ev models.OrderEvent
	if err := json.Unmarshal([]byte(payload), &ev); err != nil {
		return fmt.Errorf("decode order event: %w", err)
	}
	if err := h(ctx, ev); err != nil {
		return fmt.Errorf("%s %s: %w", ev.Type, ev.OrderID, err)
	}
	return nil
}

// OrderedLines removes cart lines that went into an order.
type OrderedLines interface {
	RemoveOrdered(ctx context.Context, userID string, itemIDs []string) error
}

// RemoveOrderedLines takes an order's lines out of the buyer's cart as soon
// as the order is placed, so the same cart cannot be submitted twice. Only
// the ids carried by the event are removed. Replays and the later
// order.paid event are no-ops because the ids are already gone.
func RemoveOrderedLines(c OrderedLines) Handler {
	return func(ctx context.Context, ev models.OrderEvent) error {
		if ev.UserID == "" || len(ev.ItemIDs) == 0 {
			return nil
		}
		if ev.Type != OrderPlaced && ev.Status != models.OrderConfirmed {
			return nil
		}
		return c.RemoveOrdered(ctx, ev.UserID, ev.ItemIDs)
	}
}
