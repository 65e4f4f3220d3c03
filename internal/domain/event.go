package domain

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// OutputEvent is the serialized form of a sounding destined for a sink.
type OutputEvent struct {
	Key     []byte
	Value   []byte
	Headers map[string]string
}

// SerializeSounding marshals a sounding to JSON keyed by station so that one
// station's soundings stay ordered within a partition.
func SerializeSounding(s *Sounding) (OutputEvent, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return OutputEvent{}, fmt.Errorf("serialize sounding %s: %w", s.Station, err)
	}
	return OutputEvent{
		Key:   []byte(s.Station),
		Value: data,
		Headers: map[string]string{
			"sounding_id": s.ID(),
			"station":     s.Station,
			"obs_time":    s.ObsTime.Format(time.RFC3339),
			"levels":      strconv.Itoa(len(s.Levels)),
		},
	}, nil
}

type runIDKey struct{}

// WithRunID tags ctx with the id of the pipeline run producing the events.
func WithRunID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, runIDKey{}, id)
}

// RunIDFromContext returns the run id set by WithRunID, or "".
func RunIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(runIDKey{}).(string)
	return id
}
