package orders

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"outfitorbit/models"

	"go.mongodb.org/mongo-driver/bson"
)

// MemoryStore is a process-local Store. Update round-trips through BSON so the
// field names match what MongoStore writes.
type MemoryStore struct {
	mu     sync.Mutex
	orders map[string]models.Order
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{orders: make(map[string]models.Order)}
}

func (m *MemoryStore) Insert(_ context.Context, o models.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.orders[o.OrderID]; ok {
		return fmt.Errorf("insert order: duplicate id %s", o.OrderID)
	}
	m.orders[o.OrderID] = o
	return nil
}

func (m *MemoryStore) Get(_ context.Context, orderID string) (models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[orderID]
	if !ok {
		return o, ErrNotFound
	}
	return o, nil
}

func (m *MemoryStore) ListByUser(_ context.Context, userID string) ([]models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Order{}
	for _, o := range m.orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *MemoryStore) Update(_ context.Context, orderID string, set bson.M) (models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[orderID]
	if !ok {
		return o, ErrNotFound
	}

	raw, err := bson.Marshal(o)
	if err != nil {
		return o, err
	}
	var doc bson.M
	if err := bson.Unmarshal(raw, &doc); err != nil {
		return o, err
	}
	for k, v := range set {
		doc[k] = v
	}
	doc["updatedAt"] = time.Now()
	if raw, err = bson.Marshal(doc); err != nil {
		return o, err
	}
	var next models.Order
	if err := bson.Unmarshal(raw, &next); err != nil {
		return o, err
	}
	m.orders[orderID] = next
	return next, nil
}
