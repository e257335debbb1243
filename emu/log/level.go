package log

// Level mirrors logrus's severity ordering: lower values are more severe and
// always emitted; DebugLevel and InfoLevel are gated by the per-module debug
// mask (see Module.Enabled).
type Level int

const (
	PanicLevel Level = iota
	FatalLevel
	ErrorLevel
	WarnLevel
	InfoLevel
	DebugLevel
)
