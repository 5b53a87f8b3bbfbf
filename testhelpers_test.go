//go:build integration

package main_test

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
	kafkamodule "github.com/testcontainers/testcontainers-go/modules/kafka"
	"go.uber.org/zap"

	"github.com/Kilat-Pet-Delivery/service-loyalty/internal/adapter"
	"github.com/Kilat-Pet-Delivery/service-loyalty/internal/application"
	"github.com/Kilat-Pet-Delivery/service-loyalty/internal/domain/quote"
	loyaltyEvents "github.com/Kilat-Pet-Delivery/service-loyalty/internal/events"
	"github.com/Kilat-Pet-Delivery/service-loyalty/internal/handler"
	"github.com/Kilat-Pet-Delivery/service-loyalty/internal/platform/kafka"
	"github.com/Kilat-Pet-Delivery/service-loyalty/internal/platform/metrics"
)

const testTopic = "loyalty.events"

// testInfra holds shared test infrastructure.
type testInfra struct {
	KafkaBrokers []string
	Cleanup      func()
}

// loyaltyStack holds wired-up loyalty service components.
type loyaltyStack struct {
	Service         *application.QuoteService
	Router          http.Handler
	CleanupProducer func()
}

// unavailableFxAdapter always fails, as an FX service that is down.
type unavailableFxAdapter struct{}

func (unavailableFxAdapter) FetchRate(ctx context.Context, currency string) (float64, error) {
	return 0, errors.New("connection refused")
}

// setupContainers starts a Kafka testcontainer with the loyalty topic created.
func setupContainers(t *testing.T) *testInfra {
	t.Helper()
	ctx := context.Background()

	// Start Kafka container using confluent-local (supports KRaft natively).
	kafkaContainer, err := kafkamodule.Run(ctx, "confluentinc/confluent-local:7.5.0")
	require.NoError(t, err, "failed to start Kafka container")

	kafkaBrokers, err := kafkaContainer.Brokers(ctx)
	require.NoError(t, err, "failed to get Kafka brokers")

	createTopics(t, kafkaBrokers, testTopic)

	cleanup := func() {
		if err := kafkaContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate Kafka container: %v", err)
		}
	}

	return &testInfra{
		KafkaBrokers: kafkaBrokers,
		Cleanup:      cleanup,
	}
}

// setupLoyaltyStack wires the quote service against mock collaborators and a
// real Kafka producer. A nil fx uses the mock FX adapter.
func setupLoyaltyStack(t *testing.T, brokers []string, fx adapter.FxAdapter) *loyaltyStack {
	t.Helper()
	logger, _ := zap.NewDevelopment()

	if fx == nil {
		fx = adapter.NewMockFxAdapter(logger)
	}

	recorder := metrics.NewRecorder(prometheus.NewRegistry())
	producer := kafka.NewProducer(brokers, logger)
	publisher := loyaltyEvents.NewQuotePublisher(producer, testTopic, logger)

	svc := application.NewQuoteService(
		application.NewFxResolver(fx, recorder, logger),
		application.NewPromoResolver(adapter.NewMockPromoAdapter(logger), application.DefaultPromoTimeout, recorder, logger),
		quote.NewCalculator(),
		publisher,
		recorder,
		logger,
	)

	router := handler.NewRouter(handler.RouterConfig{
		ServiceName:  "service-loyalty",
		QuoteHandler: handler.NewQuoteHandler(svc),
		Metrics:      recorder,
		Logger:       logger,
	})

	return &loyaltyStack{
		Service:         svc,
		Router:          router,
		CleanupProducer: func() { _ = producer.Close() },
	}
}

// consumeOneEvent reads from a Kafka topic until it finds an event of the expected type.
func consumeOneEvent(t *testing.T, brokers []string, topic, expectedType string, timeout time.Duration) kafka.CloudEvent {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	reader := newTestReader(brokers, topic)
	defer func() { _ = reader.Close() }()

	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				t.Fatalf("timed out waiting for event type %q on topic %q", expectedType, topic)
			}
			continue
		}
		ce, err := kafka.ParseCloudEvent(msg.Value)
		if err != nil {
			continue
		}
		if ce.Type == expectedType {
			return ce
		}
	}
}

// countEvents reads everything published to topic within the window.
func countEvents(t *testing.T, brokers []string, topic string, window time.Duration) int {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), window)
	defer cancel()

	reader := newTestReader(brokers, topic)
	defer func() { _ = reader.Close() }()

	count := 0
	for {
		if _, err := reader.ReadMessage(ctx); err != nil {
			if ctx.Err() != nil {
				return count
			}
			continue
		}
		count++
	}
}

func newTestReader(brokers []string, topic string) *kafkago.Reader {
	return kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     brokers,
		GroupID:     fmt.Sprintf("test-assert-%s", uuid.New().String()[:8]),
		Topic:       topic,
		MinBytes:    1,
		MaxBytes:    10e6,
		StartOffset: kafkago.FirstOffset,
	})
}

// createTopics pre-creates Kafka topics so producers don't fail with "Unknown Topic".
func createTopics(t *testing.T, brokers []string, topics ...string) {
	t.Helper()
	conn, err := kafkago.Dial("tcp", brokers[0])
	require.NoError(t, err, "failed to dial Kafka for topic creation")
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err, "failed to get Kafka controller")

	controllerConn, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, fmt.Sprintf("%d", controller.Port)))
	require.NoError(t, err, "failed to connect to Kafka controller")
	defer controllerConn.Close()

	topicConfigs := make([]kafkago.TopicConfig, len(topics))
	for i, topic := range topics {
		topicConfigs[i] = kafkago.TopicConfig{
			Topic:             topic,
			NumPartitions:     1,
			ReplicationFactor: 1,
		}
	}
	err = controllerConn.CreateTopics(topicConfigs...)
	require.NoError(t, err, "failed to create Kafka topics")

	// Give Kafka a moment to propagate topic metadata.
	time.Sleep(1 * time.Second)
}
