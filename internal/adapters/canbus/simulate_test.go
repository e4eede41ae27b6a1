package canbus

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/openvehicle/canagent/internal/adapters/log"
	"github.com/openvehicle/canagent/internal/dbc"
)

func testDB() *dbc.Database {
	return &dbc.Database{Messages: []dbc.Message{
		{
			Name:    "BMS_1",
			FrameID: 0x100,
			Length:  4,
			Signals: []dbc.Signal{
				{Name: "pack_soc", StartBit: 0, Length: 8, Scale: 1, Minimum: 0, Maximum: 100},
				{Name: "pack_voltage", StartBit: 8, Length: 16, Scale: 0.1, Minimum: 0, Maximum: 450},
			},
		},
	}}
}

func TestSimulatedReaderProducesFrames(t *testing.T) {
	r := NewSimulatedReader(testDB(), 200, 0, log.NewNoopLogger())
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Millisecond)
	defer cancel()

	require.NoError(t, r.Open(ctx))

	var frames int
	for {
		f, err := r.Next(ctx)
		if err != nil {
			break
		}
		require.Equal(t, uint32(0x100), f.ArbID)
		require.Len(t, f.Data, 4)
		frames++
	}
	require.Greater(t, frames, 0)
	require.NoError(t, r.Close())

	stats := r.Stats()
	require.Equal(t, uint64(frames), stats.Frames)
}

func TestSimulatedReaderRespectsDuration(t *testing.T) {
	r := NewSimulatedReader(testDB(), 500, 30*time.Millisecond, log.NewNoopLogger())
	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()

	require.NoError(t, r.Open(ctx))
	for {
		if _, err := r.Next(ctx); err != nil {
			break
		}
	}
	// duration elapsed: Next must now return promptly rather than hang
	_, err := r.Next(ctx)
	require.Error(t, err)
}
