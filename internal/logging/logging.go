// Package logging wires a process-wide structured logger on top of arbor,
// following the singleton shape used for the core's own ambient logging.
package logging

import (
	"sync"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/arbor/models"
)

var (
	globalLogger arbor.ILogger
	loggerMutex  sync.RWMutex
)

// Get returns the process-wide logger, lazily falling back to a plain
// console logger if nothing has called Init yet.
func Get() arbor.ILogger {
	loggerMutex.RLock()
	if globalLogger != nil {
		defer loggerMutex.RUnlock()
		return globalLogger
	}
	loggerMutex.RUnlock()

	loggerMutex.Lock()
	defer loggerMutex.Unlock()
	if globalLogger == nil {
		globalLogger = arbor.NewLogger()
		globalLogger.Warn().Msg("logging.Get called before Init; falling back to console logger")
	}
	return globalLogger
}

// Init installs logger as the process-wide singleton.
func Init(logger arbor.ILogger) {
	loggerMutex.Lock()
	defer loggerMutex.Unlock()
	globalLogger = logger
}

// Options configures the one logger every command-line invocation sets up.
type Options struct {
	Level    string // debug|info|warn|error
	FilePath string // empty disables file output
	Console  bool
}

// Setup builds a logger per opts, installs it as the singleton, and
// returns it.
func Setup(opts Options) arbor.ILogger {
	logger := arbor.NewLogger()
	if opts.Console {
		logger = logger.WithConsoleWriter(models.WriterConfiguration{
			Type:       models.LogWriterTypeConsole,
			TimeFormat: "15:04:05",
		})
	}
	if opts.FilePath != "" {
		logger = logger.WithFileWriter(models.WriterConfiguration{
			Type:       models.LogWriterTypeFile,
			FileName:   opts.FilePath,
			TimeFormat: "2006-01-02T15:04:05Z07:00",
			MaxSize:    10,
			MaxBackups: 3,
		})
	}
	if opts.Level != "" {
		logger = logger.WithLevelFromString(opts.Level)
	}
	Init(logger)
	return logger
}
