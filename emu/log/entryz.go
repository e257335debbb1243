package log

import (
	"sync"
	"time"

	"gopkg.in/Sirupsen/logrus.v0"
)

// EntryZ is a fluent, pooled log-entry builder for hot paths (bus dispatch,
// per-scanline drawing, per-sample synth ticks): building one costs nothing
// when the owning module/level is disabled, since Module.logz returns nil and
// every method below is a nil-receiver no-op until End() flushes.
type EntryZ struct {
	mod Module
	lvl Level
	msg string

	zfbuf [16]ZField
	zfidx int
}

var entryzPool = sync.Pool{New: func() any { return &EntryZ{} }}

func newEntryZ() *EntryZ {
	e := entryzPool.Get().(*EntryZ)
	e.zfidx = 0
	return e
}

func (e *EntryZ) push(f ZField) *EntryZ {
	if e == nil {
		return nil
	}
	if e.zfidx < len(e.zfbuf) {
		e.zfbuf[e.zfidx] = f
		e.zfidx++
	}
	return e
}

func (e *EntryZ) Bool(key string, v bool) *EntryZ {
	return e.push(ZField{Type: FieldTypeBool, Key: key, Boolean: v})
}

func (e *EntryZ) String(key string, v string) *EntryZ {
	return e.push(ZField{Type: FieldTypeString, Key: key, String: v})
}

func (e *EntryZ) Hex8(key string, v uint8) *EntryZ {
	return e.push(ZField{Type: FieldTypeHex8, Key: key, Integer: uint64(v)})
}

func (e *EntryZ) Hex16(key string, v uint16) *EntryZ {
	return e.push(ZField{Type: FieldTypeHex16, Key: key, Integer: uint64(v)})
}

func (e *EntryZ) Hex32(key string, v uint32) *EntryZ {
	return e.push(ZField{Type: FieldTypeHex32, Key: key, Integer: uint64(v)})
}

func (e *EntryZ) Hex64(key string, v uint64) *EntryZ {
	return e.push(ZField{Type: FieldTypeHex64, Key: key, Integer: v})
}

func (e *EntryZ) Int(key string, v int) *EntryZ {
	return e.push(ZField{Type: FieldTypeInt, Key: key, Integer: uint64(int64(v))})
}

func (e *EntryZ) Uint(key string, v uint) *EntryZ {
	return e.push(ZField{Type: FieldTypeUint, Key: key, Integer: uint64(v)})
}

func (e *EntryZ) Uint8(key string, v uint8) *EntryZ  { return e.Uint(key, uint(v)) }
func (e *EntryZ) Uint16(key string, v uint16) *EntryZ { return e.Uint(key, uint(v)) }
func (e *EntryZ) Uint32(key string, v uint32) *EntryZ { return e.Uint(key, uint(v)) }

func (e *EntryZ) Error(key string, err error) *EntryZ {
	return e.push(ZField{Type: FieldTypeError, Key: key, Error: err})
}

func (e *EntryZ) Duration(key string, d time.Duration) *EntryZ {
	return e.push(ZField{Type: FieldTypeDuration, Key: key, Duration: d})
}

// End flushes the entry to the underlying logger and returns it to the pool.
// Calling End on a nil receiver (a disabled entry) is a no-op.
func (e *EntryZ) End() {
	if e == nil {
		return
	}
	fields := make(logrus.Fields, e.zfidx+1)
	fields["mod"] = modNames[e.mod]
	for i := range e.zfbuf[:e.zfidx] {
		fields[e.zfbuf[i].Key] = e.zfbuf[i].Value()
	}

	entry := logrus.StandardLogger().WithFields(fields)
	switch e.lvl {
	case DebugLevel:
		entry.Debug(e.msg)
	case InfoLevel:
		entry.Info(e.msg)
	case WarnLevel:
		entry.Warn(e.msg)
	case ErrorLevel:
		entry.Error(e.msg)
	case FatalLevel:
		entry.Fatal(e.msg)
	default:
		entry.Print(e.msg)
	}

	entryzPool.Put(e)
}
