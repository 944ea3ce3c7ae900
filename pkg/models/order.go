package models

import (
	"time"
)

type Status string

const (
	StatusPending    Status = "PENDING"
	StatusInProgress Status = "IN_PROGRESS"
	StatusReady      Status = "READY"
	StatusDelivered  Status = "DELIVERED"
	StatusCancelled  Status = "CANCELLED"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusReady, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// Terminal statuses admit no further transitions.
func (s Status) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

type Channel string

const (
	ChannelCounter  Channel = "COUNTER"
	ChannelPickup   Channel = "PICKUP"
	ChannelDelivery Channel = "DELIVERY"
)

func (c Channel) Valid() bool {
	switch c {
	case ChannelCounter, ChannelPickup, ChannelDelivery:
		return true
	}
	return false
}

// EventType identifies the realtime notification produced by an order
// lifecycle change. The values are the wire-level "type" field seen by
// connected displays.
type EventType string

const (
	EventOrderCreated   EventType = "order_created"
	EventOrderUpdated   EventType = "order_updated"
	EventOrderReady     EventType = "order_ready"
	EventOrderCancelled EventType = "order_cancelled"
)

// ExtraSelection is an add-on chosen for a line item. Price is a snapshot
// taken at order time; later menu edits never touch it.
type ExtraSelection struct {
	ExtraID string `json:"extra_id"`
	Price   int64  `json:"price"`
	Qty     int    `json:"qty"`
}

type OrderItem struct {
	ProductID string           `json:"product_id"`
	Qty       int              `json:"qty"`
	UnitPrice int64            `json:"unit_price"`
	IsCombo   bool             `json:"is_combo"`
	Notes     string           `json:"notes,omitempty"`
	Extras    []ExtraSelection `json:"extras,omitempty"`
}

// Order is the aggregate root of the order subsystem. It owns its items and
// their extra selections by value; menu data is referenced by id only.
type Order struct {
	ID        string      `json:"id"`
	Number    int64       `json:"number"`
	Channel   Channel     `json:"channel"`
	Status    Status      `json:"status"`
	Items     []OrderItem `json:"items"`
	Total     int64       `json:"total"`
	Notes     string      `json:"notes,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// Clone returns a deep copy so callers can hand an order to the broadcaster
// without sharing mutable slices with the store.
func (o *Order) Clone() *Order {
	if o == nil {
		return nil
	}
	c := *o
	c.Items = make([]OrderItem, len(o.Items))
	for i, item := range o.Items {
		ci := item
		ci.Extras = append([]ExtraSelection(nil), item.Extras...)
		c.Items[i] = ci
	}
	return &c
}
