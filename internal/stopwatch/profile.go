package stopwatch

import "time"

// Logger defines the logging interface used by Profile.
type Logger interface {
	Debug(msg string, args ...any)
	Warn(msg string, args ...any)
}

// Profile runs fn and logs how long it took under name. A failing fn is
// logged at warn level with the error; its error is returned unchanged.
func Profile(logger Logger, name string, fn func() error) error {
	sw := StartNew()
	err := fn()
	elapsed := sw.Elapsed()

	if logger == nil {
		return err
	}
	if err != nil {
		logger.Warn("operation failed", "operation", name, "duration_ms", ms(elapsed), "error", err)
		return err
	}
	logger.Debug("operation completed", "operation", name, "duration_ms", ms(elapsed))
	return nil
}

// ms converts d to fractional milliseconds for log output.
func ms(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
