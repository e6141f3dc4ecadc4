package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/civicsignal/incident-fusion/internal/config"
	"github.com/civicsignal/incident-fusion/internal/domain"
)

// Writer produces cluster summaries to a Kafka topic.
// It implements pipeline.Publisher.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured sink topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaSinkTopic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// Publish serializes and publishes the summaries to the sink topic in a
// single WriteMessages call for efficiency. Messages are keyed by geohash so
// summaries for the same area land on the same partition.
func (w *Writer) Publish(ctx context.Context, summaries []domain.ClusterSummary) error {
	if len(summaries) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(summaries))
	for i := range summaries {
		msg, err := serializeToMessage(summaries[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	return w.writer.WriteMessages(ctx, msgs...)
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a ClusterSummary into a Kafka message.
// Summaries without a geohash fall back to the cluster ID as key.
func serializeToMessage(summary domain.ClusterSummary) (kafkago.Message, error) {
	data, err := json.Marshal(summary)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize cluster summary: %w", err)
	}

	key := summary.Geohash
	if key == "" {
		key = strconv.Itoa(summary.ClusterID)
	}

	return kafkago.Message{
		Key:   []byte(key),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "source_city", Value: []byte(summary.SourceCity)},
			{Key: "resolution_time", Value: []byte(summary.ResolutionTime.Format(time.RFC3339))},
		},
	}, nil
}
