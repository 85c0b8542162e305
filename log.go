package bitmask

// Logger receives debug lines about rejected and encoded values. apex/log's
// log.Log and *log.Entry satisfy it.
type Logger interface {
	Debugf(string, ...interface{})
}

type nopLogger struct{}

func (nopLogger) Debugf(string, ...interface{}) {}
