package kafka

import (
	"testing"

	"github.com/Adithya-Monish-Kumar-K/docrank/pkg/config"
)

func TestEncode(t *testing.T) {
	messages, err := encode([]Event{
		{Key: "rank", Value: map[string]int{"total_hits": 2}},
		{Key: "AI1.txt", Value: "loaded"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(messages))
	}
	if string(messages[0].Key) != "rank" || string(messages[0].Value) != `{"total_hits":2}` {
		t.Errorf("unexpected first message %q=%q", messages[0].Key, messages[0].Value)
	}
	if string(messages[1].Value) != `"loaded"` {
		t.Errorf("unexpected second value %q", messages[1].Value)
	}
}

func TestEncodeRejectsUnmarshalable(t *testing.T) {
	if _, err := encode([]Event{{Key: "bad", Value: make(chan int)}}); err == nil {
		t.Error("expected marshal error")
	}
}

func TestNewProducerUsesAnalyticsTopic(t *testing.T) {
	p := NewProducer(config.KafkaConfig{
		Brokers: []string{"localhost:9092"},
		Topics:  config.KafkaTopics{AnalyticsEvents: "docrank-analytics"},
	})
	defer p.Close()
	if p.writer.Topic != "docrank-analytics" {
		t.Errorf("topic = %q", p.writer.Topic)
	}
}
