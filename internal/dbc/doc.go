// Package dbc loads a minimal CAN message-definition database and, from
// it, generates and decodes signal values.
//
// Full DBC/CANdb++ grammar support is out of scope here — real decoding is
// an external collaborator per the agent's design, and this package exists
// only to drive the built-in simulator and the decode-live CLI mode. The
// on-disk format is a small YAML document listing messages, each with an
// arbitration ID, a byte length, and little-endian, linearly-scaled
// signals (offset + scale, min/max). That subset covers every signal shape
// the simulator and decode-live mode need.
package dbc
