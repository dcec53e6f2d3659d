package events

import (
	"encoding/json"
	"testing"

	"allocate/internal/common"
	"allocate/internal/processmanager"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewKafkaSink(t *testing.T) {
	config := &common.EventsConfig{
		Brokers: []string{"localhost:9092"},
		Topic:   "allocate-events",
	}

	sink := NewKafkaSink(config, "run-1")

	assert.Equal(t, "allocate-events", sink.writer.Topic)
	assert.NoError(t, sink.Close())
}

func TestEventPayloadShape(t *testing.T) {
	payload := eventPayload{
		RunID: "run-1",
		Event: processmanager.Event{
			Clock:        7,
			Type:         processmanager.EventFinished,
			Process:      "P1",
			PendingCount: 2,
		},
	}

	data, err := json.Marshal(payload)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "run-1", decoded["run_id"])
	assert.Equal(t, "FINISHED", decoded["type"])
	assert.Equal(t, "P1", decoded["process"])
	assert.Equal(t, float64(7), decoded["clock"])
}
