package kafka

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewProducerWriterSettings(t *testing.T) {
	p, ok := NewProducer([]string{"k1:9092", "k2:9092"}, zap.NewNop()).(*producer)
	if !ok {
		t.Fatal("expected *producer")
	}
	w := p.writer
	if got := w.Addr.String(); got != "k1:9092,k2:9092" {
		t.Errorf("unexpected addr %q", got)
	}
	if _, ok := w.Balancer.(*kafkago.Hash); !ok {
		t.Errorf("expected hash balancer for per-invoice ordering, got %T", w.Balancer)
	}
	if w.RequiredAcks != kafkago.RequireAll {
		t.Errorf("expected RequireAll acks, got %v", w.RequiredAcks)
	}
	if w.Async {
		t.Error("writer must be synchronous")
	}
	if w.Topic != "" {
		t.Errorf("topic must be set per message, got %q", w.Topic)
	}
	if err := p.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := p.Produce(context.Background(), "1", "billing-events", []byte(`{}`)); !errors.Is(err, io.ErrClosedPipe) {
		t.Errorf("produce after close: expected closed pipe, got %v", err)
	}
}

func TestWriterLogsRouteToZap(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	p := NewProducer([]string{"k1:9092"}, zap.New(core)).(*producer)

	p.writer.Logger.Printf("writing %d messages", 2)
	p.writer.ErrorLogger.Printf("failed to reach %s", "k1:9092")

	entries := logs.All()
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Level != zapcore.DebugLevel || entries[0].Message != "writing 2 messages" {
		t.Errorf("unexpected debug entry %+v", entries[0].Entry)
	}
	if entries[1].Level != zapcore.ErrorLevel || entries[1].Message != "failed to reach k1:9092" {
		t.Errorf("unexpected error entry %+v", entries[1].Entry)
	}
}

func TestProduceUnreachableBroker(t *testing.T) {
	p := NewProducer([]string{"127.0.0.1:1"}, zap.NewNop())
	defer p.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	err := p.Produce(ctx, "7", "billing-events", []byte(`{}`))
	if err == nil {
		t.Fatal("expected error from unreachable broker")
	}
	if !strings.HasPrefix(err.Error(), "produce to billing-events:") {
		t.Errorf("unexpected error %q", err)
	}
}
