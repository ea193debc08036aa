// Package log provides the leveled logging interface used across formgraph.
//
// Two implementations are provided: DefaultLogger, built on the standard
// library logger, and GologLogger, built on github.com/kataras/golog. Both
// filter messages below the configured LogLevel.
//
// # Example Usage
//
//	logger := log.NewDefaultLogger(log.LogLevelInfo)
//	logger.Info("pipeline run %s finished with status %s", runID, status)
//
// The package also keeps a process-wide logger so that stages do not need a
// logger threaded through every call:
//
//	log.SetDefaultLogger(log.NewGologLoggerWithOutput(os.Stderr, log.LogLevelDebug))
//	log.Debug("extracted %d candidate values", n)
//
// Levels can be parsed from configuration strings with ParseLevel.
package log
