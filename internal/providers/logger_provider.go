package providers

import (
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"hotseatd/internal/structures"
)

// TypeEnum routes a log line to its concern-specific log file.
type TypeEnum uint8

const (
	TypeApp TypeEnum = iota
	TypeGet
	TypePost
	TypeBroker
	TypeFeed
	TypeStore
	TypeSynthetic
)

func (t TypeEnum) String() string {
	switch t {
	case TypeApp:
		return "app"
	case TypeGet:
		return "get"
	case TypePost:
		return "post"
	case TypeBroker:
		return "broker"
	case TypeFeed:
		return "feed"
	case TypeStore:
		return "store"
	case TypeSynthetic:
		return "synthetic"
	}
	return "unknown"
}

func GetLogTypeByRequestType(method string) TypeEnum {
	if method == "POST" {
		return TypePost
	}
	return TypeGet
}

type Logger interface {
	Debugf(t TypeEnum, format string, args ...interface{})
	Infof(t TypeEnum, format string, args ...interface{})
	Warnf(t TypeEnum, format string, args ...interface{})
	Errorf(t TypeEnum, format string, args ...interface{})
	Fatalf(t TypeEnum, format string, args ...interface{})
	Close()
}

type LogProvider struct {
	loggers map[TypeEnum]zerolog.Logger
	files   []*os.File
}

// fileFor groups log types into files: app.log for lifecycle and
// store activity, access.log for the HTTP API, ingest.log for the
// telemetry sources.
func fileFor(t TypeEnum) string {
	switch t {
	case TypeGet, TypePost:
		return "access.log"
	case TypeBroker, TypeFeed, TypeSynthetic:
		return "ingest.log"
	default:
		return "app.log"
	}
}

func NewLogProvider(conf *structures.Config) (Logger, error) {
	level, err := zerolog.ParseLevel(conf.Logger.Level)
	if err != nil {
		return nil, err
	}

	lp := &LogProvider{loggers: make(map[TypeEnum]zerolog.Logger)}
	writers := make(map[string]io.Writer)
	types := []TypeEnum{TypeApp, TypeGet, TypePost, TypeBroker, TypeFeed, TypeStore, TypeSynthetic}

	for _, t := range types {
		name := fileFor(t)
		w, ok := writers[name]
		if !ok {
			file, err := os.OpenFile(
				filepath.Join(conf.Logger.Dir, name),
				os.O_CREATE|os.O_APPEND|os.O_WRONLY,
				os.FileMode(conf.Logger.Mode),
			)
			if err != nil {
				lp.Close()
				return nil, err
			}
			lp.files = append(lp.files, file)
			w = file
			if conf.Debug {
				w = io.MultiWriter(file, zerolog.ConsoleWriter{Out: os.Stderr})
			}
			writers[name] = w
		}
		lp.loggers[t] = zerolog.New(w).Level(level).With().
			Timestamp().
			Str("type", t.String()).
			Logger()
	}
	return lp, nil
}

func (l *LogProvider) Debugf(t TypeEnum, format string, args ...interface{}) {
	lg := l.loggers[t]
	lg.Debug().Msgf(format, args...)
}

func (l *LogProvider) Infof(t TypeEnum, format string, args ...interface{}) {
	lg := l.loggers[t]
	lg.Info().Msgf(format, args...)
}

func (l *LogProvider) Warnf(t TypeEnum, format string, args ...interface{}) {
	lg := l.loggers[t]
	lg.Warn().Msgf(format, args...)
}

func (l *LogProvider) Errorf(t TypeEnum, format string, args ...interface{}) {
	lg := l.loggers[t]
	lg.Error().Msgf(format, args...)
}

func (l *LogProvider) Fatalf(t TypeEnum, format string, args ...interface{}) {
	lg := l.loggers[t]
	lg.Fatal().Msgf(format, args...)
}

func (l *LogProvider) Close() {
	for _, f := range l.files {
		_ = f.Close()
	}
}
