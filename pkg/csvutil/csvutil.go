// Package csvutil renders tabular exports.
//
// Fields are quoted only when they contain a comma, a double quote or a
// newline; embedded quotes are doubled. Rows are joined with "\n".
package csvutil

import (
	"bytes"
	"strings"
)

// Escape quotes v when it contains a comma, double quote or newline.
func Escape(v string) string {
	if !strings.ContainsAny(v, ",\"\n") {
		return v
	}
	return `"` + strings.ReplaceAll(v, `"`, `""`) + `"`
}

// Render writes a header row followed by rows, escaping every field.
func Render(headers []string, rows [][]string) []byte {
	var buf bytes.Buffer
	writeRow(&buf, headers)
	for _, row := range rows {
		buf.WriteByte('\n')
		writeRow(&buf, row)
	}
	return buf.Bytes()
}

func writeRow(buf *bytes.Buffer, fields []string) {
	for i, f := range fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(Escape(f))
	}
}

// Deref returns *s or "" for nil.
func Deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
