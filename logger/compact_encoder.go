package logger

import (
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap/buffer"
	"go.uber.org/zap/zapcore"
)

const (
	colorReset  = "\x1b[0m"
	colorBold   = "\x1b[1m"
	colorYellow = "\x1b[33m"
	colorRed    = "\x1b[31m"
	colorDim    = "\x1b[2m"
)

var bufferPool = buffer.NewPool()

// compactEncoder renders one line per entry for terminals:
//
//	13:04:35  WARN  tags  Duplicate alias in filter options  attribute_id=1 alias=red
//
// The level is only printed above info. Context fields (added with With)
// come first in key order, then the entry fields in call order.
type compactEncoder struct {
	*zapcore.MapObjectEncoder
	color bool
}

func newCompactEncoder(color bool) *compactEncoder {
	return &compactEncoder{MapObjectEncoder: zapcore.NewMapObjectEncoder(), color: color}
}

func (enc *compactEncoder) Clone() zapcore.Encoder {
	clone := newCompactEncoder(enc.color)
	for k, v := range enc.Fields {
		clone.Fields[k] = v
	}
	return clone
}

func (enc *compactEncoder) EncodeEntry(ent zapcore.Entry, fields []zapcore.Field) (*buffer.Buffer, error) {
	line := bufferPool.Get()

	line.AppendString(enc.paint(colorDim, ent.Time.Format("15:04:05")))
	if ent.Level != zapcore.InfoLevel {
		line.AppendString("  ")
		line.AppendString(enc.levelLabel(ent.Level))
	}
	if ent.LoggerName != "" {
		line.AppendString("  ")
		line.AppendString(ent.LoggerName)
	}
	line.AppendString("  ")
	line.AppendString(ent.Message)

	pairs := make([]string, 0, len(enc.Fields)+len(fields))
	keys := make([]string, 0, len(enc.Fields))
	for k := range enc.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		pairs = appendPair(pairs, k, enc.Fields[k])
	}

	entry := zapcore.NewMapObjectEncoder()
	seen := make(map[string]bool, len(fields))
	for _, f := range fields {
		f.AddTo(entry)
	}
	for _, f := range fields {
		if seen[f.Key] {
			continue
		}
		seen[f.Key] = true
		if v, ok := entry.Fields[f.Key]; ok {
			pairs = appendPair(pairs, f.Key, v)
		}
	}

	if len(pairs) > 0 {
		line.AppendString("  ")
		line.AppendString(strings.Join(pairs, " "))
	}
	line.AppendString("\n")
	return line, nil
}

// appendPair drops the errorVerbose stack rendering of error fields
func appendPair(pairs []string, key string, value interface{}) []string {
	if strings.HasSuffix(key, "Verbose") {
		return pairs
	}
	return append(pairs, fmt.Sprintf("%s=%v", key, value))
}

func (enc *compactEncoder) levelLabel(level zapcore.Level) string {
	label := level.CapitalString()
	switch {
	case level == zapcore.WarnLevel:
		return enc.paint(colorBold+colorYellow, label)
	case level >= zapcore.ErrorLevel:
		return enc.paint(colorBold+colorRed, label)
	default:
		return enc.paint(colorDim, label)
	}
}

func (enc *compactEncoder) paint(color, s string) string {
	if !enc.color {
		return s
	}
	return color + s + colorReset
}
