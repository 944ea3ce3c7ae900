// Package events mirrors order lifecycle events to Kafka for downstream
// consumers (reporting, archival). The realtime contract for displays is
// carried by the broadcast hub; this mirror is strictly best-effort and
// optional.
package events

import (
	"encoding/json"
	"time"

	"github.com/IBM/sarama"
	"github.com/sirupsen/logrus"

	"github.com/geromendez199/AlfajorApp/pkg/models"
)

const OrderEventsTopic = "orders.events"

// OrderEvent is the envelope written to the topic.
type OrderEvent struct {
	Type      models.EventType `json:"type"`
	Order     *models.Order    `json:"order"`
	EventTime time.Time        `json:"event_time"`
}

type Producer struct {
	producer sarama.SyncProducer
	logger   *logrus.Logger
}

func NewProducer(brokers string, logger *logrus.Logger) (*Producer, error) {
	config := sarama.NewConfig()
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 5
	config.Producer.Return.Successes = true
	config.Version = sarama.V2_6_0_0

	producer, err := sarama.NewSyncProducer([]string{brokers}, config)
	if err != nil {
		return nil, err
	}

	return &Producer{producer: producer, logger: logger}, nil
}

// PublishOrderEvent writes one lifecycle event, keyed by order id so
// per-order ordering survives partitioning.
func (p *Producer) PublishOrderEvent(eventType models.EventType, order *models.Order) error {
	event := OrderEvent{Type: eventType, Order: order, EventTime: time.Now()}
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	msg := &sarama.ProducerMessage{
		Topic: OrderEventsTopic,
		Key:   sarama.StringEncoder(order.ID),
		Value: sarama.ByteEncoder(data),
	}

	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		return err
	}

	p.logger.WithFields(logrus.Fields{
		"event_type": eventType,
		"order_id":   order.ID,
		"partition":  partition,
		"offset":     offset,
	}).Debug("Order event mirrored to Kafka")
	return nil
}

func (p *Producer) Close() error {
	return p.producer.Close()
}
