package kafka

import (
	"context"
	"log/slog"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/igra-sounding-etl/internal/config"
	"github.com/couchcryptid/igra-sounding-etl/internal/domain"
)

// headerOrder fixes the order in which event headers become Kafka headers.
var headerOrder = []string{"sounding_id", "station", "obs_time", "levels"}

// Writer produces sounding messages to a Kafka topic.
// It implements pipeline.BatchLoader.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured sink topic. Messages
// are keyed by station and hash-partitioned, so each station's soundings stay
// in archive order within one partition.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaSinkTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// LoadBatch serializes and publishes a batch of soundings in a single
// WriteMessages call.
func (w *Writer) LoadBatch(ctx context.Context, soundings []*domain.Sounding) error {
	if len(soundings) == 0 {
		return nil
	}
	runID := domain.RunIDFromContext(ctx)

	msgs := make([]kafkago.Message, len(soundings))
	for i, s := range soundings {
		msg, err := serializeToMessage(s, runID)
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return err
	}
	w.logger.Debug("published soundings", "count", len(msgs), "topic", w.writer.Topic)
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a Sounding into a Kafka message.
func serializeToMessage(s *domain.Sounding, runID string) (kafkago.Message, error) {
	ev, err := domain.SerializeSounding(s)
	if err != nil {
		return kafkago.Message{}, err
	}

	headers := make([]kafkago.Header, 0, len(headerOrder)+1)
	for _, k := range headerOrder {
		headers = append(headers, kafkago.Header{Key: k, Value: []byte(ev.Headers[k])})
	}
	if runID != "" {
		headers = append(headers, kafkago.Header{Key: "run_id", Value: []byte(runID)})
	}

	return kafkago.Message{
		Key:     ev.Key,
		Value:   ev.Value,
		Headers: headers,
	}, nil
}
