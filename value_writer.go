package graphql

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/llehouerou/go-graphql-builder/types"
)

// FormatValue converts v with ValueOf and returns its GraphQL literal text.
//
// E.g., [][2]any{{"name", "Al"}, {"role", Enum("ADMIN")}} -> `{name: "Al", role: ADMIN}`.
func FormatValue(v any) (string, error) {
	val, err := ValueOf(v)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := writeValue(&buf, val); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// WriteValue writes the GraphQL literal text of v to w.
func WriteValue(w io.Writer, v Value) error {
	var buf bytes.Buffer
	if err := writeValue(&buf, v); err != nil {
		return err
	}
	_, err := buf.WriteTo(w)
	return err
}

// writeValue writes the literal text of v to buf.
// A nil Value is written as null.
func writeValue(buf *bytes.Buffer, v Value) error {
	switch v := v.(type) {
	case nil, Null:
		buf.WriteString(types.NullLiteral)
	case Boolean:
		if v {
			buf.WriteString(types.TrueLiteral)
		} else {
			buf.WriteString(types.FalseLiteral)
		}
	case Int:
		buf.WriteString(strconv.FormatInt(int64(v), 10))
	case Float:
		s, err := formatFloat(float64(v))
		if err != nil {
			return err
		}
		buf.WriteString(s)
	case String:
		if !utf8.ValidString(string(v)) {
			return fmt.Errorf("%w: invalid UTF-8 in string %q", ErrUnsupportedValue, string(v))
		}
		writeString(buf, string(v))
	case Enum:
		buf.WriteString(string(v))
	case Variable:
		buf.WriteString(types.VariablePrefix)
		buf.WriteString(v.Name)
	case List:
		buf.WriteByte('[')
		for i, item := range v {
			if i != 0 {
				buf.WriteString(", ")
			}
			if err := writeValue(buf, item); err != nil {
				return fmt.Errorf("failed to write list item %d: %w", i, err)
			}
		}
		buf.WriteByte(']')
	case Object:
		buf.WriteByte('{')
		if err := writeObjectFields(buf, v); err != nil {
			return err
		}
		buf.WriteByte('}')
	default:
		return fmt.Errorf("%w: %T", ErrUnsupportedValue, v)
	}
	return nil
}

// writeObjectFields writes "name: value" pairs separated by ", ".
// It is shared by input objects and operation arguments.
func writeObjectFields(buf *bytes.Buffer, fields Object) error {
	for i, f := range fields {
		if i != 0 {
			buf.WriteString(", ")
		}
		buf.WriteString(f.Name)
		buf.WriteString(": ")
		if err := writeValue(buf, f.Value); err != nil {
			return fmt.Errorf("failed to write field `%s`: %w", f.Name, err)
		}
	}
	return nil
}

// formatFloat returns the shortest text that parses back to f. Integral
// values get a ".0" suffix so the literal stays a Float.
func formatFloat(f float64) (string, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "", fmt.Errorf("%w: non-finite float %v", ErrUnsupportedValue, f)
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s, nil
}

// writeString writes s as a quoted GraphQL string literal.
func writeString(buf *bytes.Buffer, s string) {
	buf.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			buf.WriteString(`\"`)
		case '\\':
			buf.WriteString(`\\`)
		case '\b':
			buf.WriteString(`\b`)
		case '\f':
			buf.WriteString(`\f`)
		case '\n':
			buf.WriteString(`\n`)
		case '\r':
			buf.WriteString(`\r`)
		case '\t':
			buf.WriteString(`\t`)
		default:
			if r < 0x20 || r == 0x7f {
				fmt.Fprintf(buf, `\u%04x`, r)
				continue
			}
			buf.WriteRune(r)
		}
	}
	buf.WriteByte('"')
}
