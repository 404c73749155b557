package log

import (
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"golang.org/x/net/context"
	"gopkg.in/natefinch/lumberjack.v2"

	formatter "github.com/antonfisher/nested-logrus-formatter"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var (
	logger *logrus.Logger
	once   sync.Once
)

// Field names shared by the engine so console, loop and HTTP lines line up.
const (
	RequestIDKey   = "request_id"
	UtteranceIDKey = "utterance_id"
	ComponentKey   = "component"
	TraceIDKey     = "trace_id"
)

const defaultLogDir = "./storage/logs"

type Fields = logrus.Fields

// NewLogger builds the process logger once. LOG_LEVEL picks the level
// (debug when unset) and LOG_DIR the rotation directory; APP_ENV=test keeps
// output on stderr only.
func NewLogger() *logrus.Logger {
	once.Do(func() {
		logger = logrus.New()

		level, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL"))
		if err != nil {
			level = logrus.DebugLevel
		}
		logger.SetLevel(level)

		logger.SetFormatter(&formatter.Formatter{
			TimestampFormat: "02 Jan 06 - 15:04:05",
			CallerFirst:     true,
			FieldsOrder:     []string{ComponentKey, RequestIDKey, UtteranceIDKey},
			CustomCallerFormatter: func(f *runtime.Frame) string {
				s := strings.Split(f.Function, ".")
				funcName := s[len(s)-1]
				return fmt.Sprintf(" \x1b[%dm[%s:%d][%s()]", 34, path.Base(f.File), f.Line, funcName)
			},
		})

		writers := []io.Writer{os.Stderr}
		if os.Getenv("APP_ENV") != "test" {
			writers = append(writers, rotatingFile(os.Getenv("LOG_DIR"), time.Now()))
		}

		logger.SetOutput(io.MultiWriter(writers...))
		logger.SetReportCaller(true)
	})

	return logger
}

func rotatingFile(dir string, day time.Time) *lumberjack.Logger {
	if dir == "" {
		dir = defaultLogDir
	}
	return &lumberjack.Logger{
		Filename:   filepath.Join(dir, fmt.Sprintf("avril-%s.log", day.Format("2006-01-02"))),
		LocalTime:  true,
		Compress:   true,
		MaxSize:    100,
		MaxAge:     7,
		MaxBackups: 3,
	}
}

// ErrorWithTraceID logs an absorbed fault and returns the id a response can
// quote. The request id is reused when present.
func ErrorWithTraceID(fields Fields, msg string) string {
	if fields == nil {
		fields = Fields{}
	}

	traceID := "unknown"
	if reqID, ok := fields[RequestIDKey].(string); ok && reqID != "" && reqID != "unknown" {
		traceID = reqID
	} else if id, err := uuid.NewRandom(); err == nil {
		traceID = id.String()
	}

	fields[TraceIDKey] = traceID
	NewLogger().WithFields(fields).Error(msg)

	return traceID
}

// FromContext tags l with the request id carried by ctx. Work the engine
// starts itself carries an "engine:<component>" id.
func FromContext(l *logrus.Logger, ctx context.Context) *logrus.Entry {
	requestID := "unknown"
	if ctx != nil {
		if id, ok := ctx.Value(RequestIDKey).(string); ok && id != "" {
			requestID = id
		}
	}

	return l.WithField(RequestIDKey, requestID)
}
