package logging

import (
	"io"
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	mu sync.Mutex

	logger *logrus.Logger
)

// GetLogger returns the shared component logger. Diagnostics about
// unresolved messages are warnings so they surface in timeline tool
// output without aborting processing.
func GetLogger() *logrus.Entry {
	mu.Lock()
	defer mu.Unlock()

	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.TextFormatter{
			DisableTimestamp: true,
		})
		logger.SetLevel(logrus.WarnLevel)
	}

	return logger.WithField("component", "winevtrc")
}

// SetVerbose enables debug level output.
func SetVerbose(verbose bool) {
	entry := GetLogger()

	mu.Lock()
	defer mu.Unlock()

	if verbose {
		entry.Logger.SetLevel(logrus.DebugLevel)
	} else {
		entry.Logger.SetLevel(logrus.WarnLevel)
	}
}

// SetOutput redirects all log output, mainly used by tests.
func SetOutput(writer io.Writer) {
	entry := GetLogger()

	mu.Lock()
	defer mu.Unlock()

	entry.Logger.SetOutput(writer)
}
