package logger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/designs2/attribute-tags/errors"
)

func encode(t *testing.T, enc zapcore.Encoder, level zapcore.Level, fields ...zapcore.Field) string {
	t.Helper()
	buf, err := enc.EncodeEntry(zapcore.Entry{
		Level:      level,
		Time:       time.Date(2024, 5, 1, 13, 4, 35, 0, time.UTC),
		LoggerName: "tags",
		Message:    "Reconciled relations",
	}, fields)
	require.NoError(t, err)
	defer buf.Free()
	return buf.String()
}

func TestCompactEncoder_NeverDiscardsFields(t *testing.T) {
	enc := newCompactEncoder(false)

	tests := []struct {
		field    zapcore.Field
		mustFind string
	}{
		{zap.Int64(FieldAttributeID, 7), "attribute_id=7"},
		{zap.String(FieldSourceTable, "colors"), "source_table=colors"},
		{zap.Int(FieldAdded, 3), "added=3"},
		{zap.Bool("strict", true), "strict=true"},
		{zap.Float64("ratio", 0.5), "ratio=0.5"},
		{zap.Strings(FieldAlias, []string{"red", "blue"}), "alias=[red blue]"},
		{zap.String("field.with.dots", "x"), "field.with.dots=x"},
	}

	fields := make([]zapcore.Field, 0, len(tests))
	for _, tt := range tests {
		fields = append(fields, tt.field)
	}
	line := encode(t, enc, zapcore.InfoLevel, fields...)

	assert.Equal(t, "13:04:35  tags  Reconciled relations  ", line[:len("13:04:35  tags  Reconciled relations  ")])
	for _, tt := range tests {
		assert.Contains(t, line, tt.mustFind)
	}
	assert.NotContains(t, line, "INFO")
}

func TestCompactEncoder_ContextFieldsAndLevel(t *testing.T) {
	enc := newCompactEncoder(false)
	enc.AddString(FieldSourceTable, "colors")
	enc.AddInt64(FieldAttributeID, 1)

	clone := enc.Clone()
	line := encode(t, clone, zapcore.WarnLevel, zap.String(FieldAlias, "red"))

	assert.Equal(t, "13:04:35  WARN  tags  Reconciled relations  attribute_id=1 source_table=colors alias=red\n", line)

	// Cloning must not leak fields back into the parent
	clone.AddString("extra", "1")
	assert.NotContains(t, encode(t, enc, zapcore.InfoLevel), "extra")
}

func TestCompactEncoder_ErrorFields(t *testing.T) {
	line := encode(t, newCompactEncoder(false), zapcore.ErrorLevel, zap.Error(errors.New("boom")))

	assert.Contains(t, line, "ERROR")
	assert.Contains(t, line, "error=boom")
	assert.NotContains(t, line, "errorVerbose")
}

func TestCompactEncoder_Color(t *testing.T) {
	line := encode(t, newCompactEncoder(true), zapcore.WarnLevel)
	assert.Contains(t, line, colorYellow+"WARN"+colorReset)
}
