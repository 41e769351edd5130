package kafka

import (
	"time"
)

// Config holds Kafka configuration
type Config struct {
	Brokers       []string
	ConsumerGroup string
	ClientID      string

	// Producer settings
	BatchSize    int
	BatchTimeout time.Duration
	RequiredAcks int // 0: no ack, 1: leader ack, -1: all replicas ack

	// Consumer settings
	MinBytes      int
	MaxBytes      int
	MaxWait       time.Duration
	CommitTimeout time.Duration
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Brokers:       []string{"localhost:9092"},
		ConsumerGroup: "pos-default-group",
		ClientID:      "pos-client",

		BatchSize:    100,
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: -1, // All replicas

		MinBytes:      1,
		MaxBytes:      10e6, // 10MB
		MaxWait:       500 * time.Millisecond,
		CommitTimeout: 5 * time.Second,
	}
}

// Topics contains all POS Kafka topic names
var Topics = struct {
	OrdersEvents  string
	StockEvents   string
	ShiftEvents   string
	LoyaltyEvents string
}{
	OrdersEvents:  "pos.orders.events",
	StockEvents:   "pos.stock.events",
	ShiftEvents:   "pos.shifts.events",
	LoyaltyEvents: "pos.loyalty.events",
}

// TopicConfig holds configuration for a Kafka topic
type TopicConfig struct {
	Name              string
	Partitions        int
	ReplicationFactor int
	RetentionMs       int64
}

// DefaultTopicConfigs returns default configurations for POS topics
func DefaultTopicConfigs() []TopicConfig {
	return []TopicConfig{
		{Name: Topics.OrdersEvents, Partitions: 6, ReplicationFactor: 3, RetentionMs: 7 * 24 * 60 * 60 * 1000},    // 7 days
		{Name: Topics.StockEvents, Partitions: 6, ReplicationFactor: 3, RetentionMs: 30 * 24 * 60 * 60 * 1000},   // 30 days for audit
		{Name: Topics.ShiftEvents, Partitions: 3, ReplicationFactor: 3, RetentionMs: 90 * 24 * 60 * 60 * 1000},   // 90 days for audit
		{Name: Topics.LoyaltyEvents, Partitions: 3, ReplicationFactor: 3, RetentionMs: 7 * 24 * 60 * 60 * 1000},
	}
}

// TopicForEventType routes an event type to its topic
func TopicForEventType(eventType string) string {
	switch {
	case hasPrefix(eventType, "pos.order."):
		return Topics.OrdersEvents
	case hasPrefix(eventType, "pos.stock."):
		return Topics.StockEvents
	case hasPrefix(eventType, "pos.shift."):
		return Topics.ShiftEvents
	case hasPrefix(eventType, "pos.loyalty."):
		return Topics.LoyaltyEvents
	default:
		return Topics.OrdersEvents
	}
}

func hasPrefix(s, prefix string) bool {
	return len(s) >= len(prefix) && s[:len(prefix)] == prefix
}
