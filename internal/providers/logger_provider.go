package providers

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"postpilot/internal/structures"
)

// TypeEnum selects the log channel. Each channel writes to its own file
// under the configured log dir.
type TypeEnum int

const (
	TypeApp TypeEnum = iota
	TypeHTTP
	TypePipeline
	TypeGenAI
	TypeNews
	TypeStorage
)

func (t TypeEnum) String() string {
	switch t {
	case TypeHTTP:
		return "http"
	case TypePipeline:
		return "pipeline"
	case TypeGenAI:
		return "genai"
	case TypeNews:
		return "news"
	case TypeStorage:
		return "storage"
	default:
		return "app"
	}
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

var logChannels = []TypeEnum{TypeApp, TypeHTTP, TypePipeline, TypeGenAI, TypeNews, TypeStorage}

func NewLogProvider(conf *structures.Config) (Logger, error) {
	level, err := zerolog.ParseLevel(conf.Logger.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", conf.Logger.Level, err)
	}

	provider := &LogProvider{
		loggers: make(map[TypeEnum]zerolog.Logger, len(logChannels)),
	}

	for _, channel := range logChannels {
		path := filepath.Join(conf.Logger.Dir, channel.String()+".log")
		file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, os.FileMode(conf.Logger.Mode))
		if err != nil {
			provider.Close()
			return nil, fmt.Errorf("failed to open log file %s: %w", path, err)
		}
		provider.files = append(provider.files, file)

		var out io.Writer = file
		if conf.Debug {
			out = zerolog.MultiLevelWriter(file, zerolog.ConsoleWriter{Out: os.Stderr})
		}
		provider.loggers[channel] = zerolog.New(out).
			Level(level).
			With().
			Timestamp().
			Str("channel", channel.String()).
			Logger()
	}

	return provider, nil
}

func (l *LogProvider) logf(level zerolog.Level, t TypeEnum, format string, args ...interface{}) {
	logger, ok := l.loggers[t]
	if !ok {
		logger = l.loggers[TypeApp]
	}
	logger.WithLevel(level).Msgf(format, args...)
}

func (l *LogProvider) Debugf(t TypeEnum, format string, args ...interface{}) {
	l.logf(zerolog.DebugLevel, t, format, args...)
}

func (l *LogProvider) Infof(t TypeEnum, format string, args ...interface{}) {
	l.logf(zerolog.InfoLevel, t, format, args...)
}

func (l *LogProvider) Warnf(t TypeEnum, format string, args ...interface{}) {
	l.logf(zerolog.WarnLevel, t, format, args...)
}

func (l *LogProvider) Errorf(t TypeEnum, format string, args ...interface{}) {
	l.logf(zerolog.ErrorLevel, t, format, args...)
}

func (l *LogProvider) Fatalf(t TypeEnum, format string, args ...interface{}) {
	l.logf(zerolog.FatalLevel, t, format, args...)
	os.Exit(1)
}

func (l *LogProvider) Close() {
	for _, file := range l.files {
		_ = file.Close()
	}
}
