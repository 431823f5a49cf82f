package log

// NewNull returns a Logger that discards everything. Useful for
// tests and headless runs.
func NewNull() Logger {
	return nullLogger{}
}

type nullLogger struct{}

func (nullLogger) Infof(string, ...interface{})  {}
func (nullLogger) Errorf(string, ...interface{}) {}
func (nullLogger) Debugf(string, ...interface{}) {}
