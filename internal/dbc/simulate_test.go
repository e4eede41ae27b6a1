package dbc

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateSignalValueStaysInRange(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	signals := []Signal{
		{Name: "coolant_temp", Minimum: -40, Maximum: 120},
		{Name: "engine_rpm", Minimum: 0, Maximum: 6000},
		{Name: "battery_soc", Minimum: 0, Maximum: 100},
		{Name: "pack_voltage", Minimum: 300, Maximum: 420},
		{Name: "motor_current", Minimum: -200, Maximum: 200},
		{Name: "ambient_pressure", Minimum: 980, Maximum: 1030},
	}
	for _, sig := range signals {
		for tt := 0.0; tt < 400; tt += 17 {
			v := GenerateSignalValue(sig, tt, rng)
			require.GreaterOrEqual(t, v, sig.Minimum, "signal %s below range at t=%v", sig.Name, tt)
			require.LessOrEqual(t, v, sig.Maximum, "signal %s above range at t=%v", sig.Name, tt)
		}
	}
}

func TestGenerateSignalValueSOCDecaysMonotonically(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	sig := Signal{Name: "battery_soc", Minimum: 0, Maximum: 100}
	prev := GenerateSignalValue(sig, 0, rng)
	for tt := 60.0; tt <= 3600; tt += 60 {
		v := GenerateSignalValue(sig, tt, rng)
		require.LessOrEqual(t, v, prev)
		prev = v
	}
}

func TestMessageEncodeDecodeRoundTrip(t *testing.T) {
	msg := Message{
		Name:    "BMS_1",
		FrameID: 0x100,
		Length:  4,
		Signals: []Signal{
			{Name: "soc", StartBit: 0, Length: 8, Scale: 1, Offset: 0, Minimum: 0, Maximum: 100},
			{Name: "voltage", StartBit: 8, Length: 16, Scale: 0.1, Offset: 0, Minimum: 0, Maximum: 500},
		},
	}
	data, err := msg.Encode(map[string]float64{"soc": 77, "voltage": 401.2})
	require.NoError(t, err)
	require.Len(t, data, 4)

	decoded, err := msg.Decode(data)
	require.NoError(t, err)
	require.InDelta(t, 77, decoded["soc"], 0.001)
	require.InDelta(t, 401.2, decoded["voltage"], 0.1)
}
