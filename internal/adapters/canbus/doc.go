// Package canbus implements ports.CANReader against a real SocketCAN
// interface and against an in-process signal simulator.
package canbus
