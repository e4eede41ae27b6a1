package log

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/openvehicle/canagent/internal/ports"
)

// ZerologAdapter implements ports.Logger using zerolog.
type ZerologAdapter struct {
	logger zerolog.Logger
}

// NewConsole builds an adapter that writes human-readable lines to stderr,
// for interactive/foreground use.
func NewConsole(level string) *ZerologAdapter {
	w := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	l := zerolog.New(w).With().Timestamp().Logger().Level(parseLevel(level))
	return &ZerologAdapter{logger: l}
}

// NewJSON builds an adapter that writes one JSON object per line to w, for
// log-file or log-aggregator use.
func NewJSON(w io.Writer, level string) *ZerologAdapter {
	l := zerolog.New(w).With().Timestamp().Logger().Level(parseLevel(level))
	return &ZerologAdapter{logger: l}
}

func parseLevel(level string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.InfoLevel
	}
	return lvl
}

func (z *ZerologAdapter) Debug(msg string, fields ...ports.Field) { z.emit(z.logger.Debug(), msg, fields) }
func (z *ZerologAdapter) Info(msg string, fields ...ports.Field)  { z.emit(z.logger.Info(), msg, fields) }
func (z *ZerologAdapter) Warn(msg string, fields ...ports.Field)  { z.emit(z.logger.Warn(), msg, fields) }
func (z *ZerologAdapter) Error(msg string, fields ...ports.Field) { z.emit(z.logger.Error(), msg, fields) }

func (z *ZerologAdapter) emit(event *zerolog.Event, msg string, fields []ports.Field) {
	for _, f := range fields {
		event = addField(event, f)
	}
	event.Msg(msg)
}

func addField(event *zerolog.Event, f ports.Field) *zerolog.Event {
	switch v := f.Value.(type) {
	case string:
		return event.Str(f.Key, v)
	case int:
		return event.Int(f.Key, v)
	case int64:
		return event.Int64(f.Key, v)
	case uint64:
		return event.Uint64(f.Key, v)
	case float64:
		return event.Float64(f.Key, v)
	case bool:
		return event.Bool(f.Key, v)
	case time.Duration:
		return event.Dur(f.Key, v)
	case error:
		return event.AnErr(f.Key, v)
	default:
		return event.Interface(f.Key, v)
	}
}
