package dbc

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Signal is a single linearly-scaled value packed into a message's payload.
// Physical value = raw*Scale + Offset. Bits are little-endian ("Intel"
// byte order in DBC terms), counted from StartBit as the least significant
// bit of the signal.
type Signal struct {
	Name     string  `yaml:"name"`
	StartBit int     `yaml:"start_bit"`
	Length   int     `yaml:"length"`
	Scale    float64 `yaml:"scale"`
	Offset   float64 `yaml:"offset"`
	Minimum  float64 `yaml:"minimum"`
	Maximum  float64 `yaml:"maximum"`
}

// Message is one CAN arbitration ID's worth of packed signals.
type Message struct {
	Name    string   `yaml:"name"`
	FrameID uint32   `yaml:"frame_id"`
	Length  uint8    `yaml:"length"`
	Signals []Signal `yaml:"signals"`
}

// Database is a loaded set of message definitions.
type Database struct {
	Messages []Message `yaml:"messages"`
}

type document struct {
	Messages []Message `yaml:"messages"`
}

// LoadFile reads and parses a message-definition file at path.
func LoadFile(path string) (*Database, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("dbc: read %s: %w", path, err)
	}
	var doc document
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("dbc: parse %s: %w", path, err)
	}
	if len(doc.Messages) == 0 {
		return nil, fmt.Errorf("dbc: %s defines no messages", path)
	}
	return &Database{Messages: doc.Messages}, nil
}

// Encode packs values (keyed by signal name) into a Length-byte payload
// for m. Signals absent from values encode as zero raw. Values are
// clamped to [Minimum, Maximum] before scaling.
func (m Message) Encode(values map[string]float64) ([]byte, error) {
	data := make([]byte, m.Length)
	for _, sig := range m.Signals {
		v, ok := values[sig.Name]
		if !ok {
			continue
		}
		if v < sig.Minimum {
			v = sig.Minimum
		}
		if v > sig.Maximum {
			v = sig.Maximum
		}
		raw := int64((v - sig.Offset) / sig.Scale)
		if err := packBits(data, sig.StartBit, sig.Length, uint64(raw)); err != nil {
			return nil, fmt.Errorf("dbc: encode %s.%s: %w", m.Name, sig.Name, err)
		}
	}
	return data, nil
}

// Decode unpacks every signal in m from data, returning physical values
// keyed by signal name.
func (m Message) Decode(data []byte) (map[string]float64, error) {
	out := make(map[string]float64, len(m.Signals))
	for _, sig := range m.Signals {
		raw, err := unpackBits(data, sig.StartBit, sig.Length)
		if err != nil {
			return nil, fmt.Errorf("dbc: decode %s.%s: %w", m.Name, sig.Name, err)
		}
		out[sig.Name] = float64(raw)*sig.Scale + sig.Offset
	}
	return out, nil
}

func packBits(data []byte, startBit, length int, value uint64) error {
	if startBit < 0 || length <= 0 || length > 64 {
		return fmt.Errorf("invalid bit range start=%d length=%d", startBit, length)
	}
	for i := 0; i < length; i++ {
		bitPos := startBit + i
		byteIdx := bitPos / 8
		if byteIdx >= len(data) {
			return fmt.Errorf("bit position %d exceeds payload length %d", bitPos, len(data)*8)
		}
		bit := (value >> uint(i)) & 1
		data[byteIdx] |= byte(bit) << uint(bitPos%8)
	}
	return nil
}

func unpackBits(data []byte, startBit, length int) (uint64, error) {
	if startBit < 0 || length <= 0 || length > 64 {
		return 0, fmt.Errorf("invalid bit range start=%d length=%d", startBit, length)
	}
	var value uint64
	for i := 0; i < length; i++ {
		bitPos := startBit + i
		byteIdx := bitPos / 8
		if byteIdx >= len(data) {
			return 0, fmt.Errorf("bit position %d exceeds payload length %d", bitPos, len(data)*8)
		}
		bit := (data[byteIdx] >> uint(bitPos%8)) & 1
		value |= uint64(bit) << uint(i)
	}
	return value, nil
}
