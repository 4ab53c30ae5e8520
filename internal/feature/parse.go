package feature

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

var (
	// ErrAbsent signals a missing or null field value.
	ErrAbsent = errors.New("value absent")
	// ErrMalformed signals a value that is not a decodable literal.
	ErrMalformed = errors.New("malformed value")
)

// ParseError describes why one categorical field could not be decoded.
type ParseError struct {
	Field string
	Err   error
}

func (e *ParseError) Error() string {
	if e.Field == "" {
		return "parse field: " + e.Err.Error()
	}
	return fmt.Sprintf("parse field %s: %v", e.Field, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Parse decodes a categorical field value. The dataset mixes strict JSON with
// Python-literal encodings (single quotes, None/True/False), so strict JSON is
// tried first and the literal form is rewritten to JSON on failure.
func Parse(raw string) (any, error) {
	s := strings.TrimSpace(raw)
	if s == "" || isNullLiteral(s) {
		return nil, &ParseError{Err: ErrAbsent}
	}

	var v any
	if err := json.Unmarshal([]byte(s), &v); err == nil {
		if v == nil {
			return nil, &ParseError{Err: ErrAbsent}
		}
		return v, nil
	}

	converted, err := pyLiteralToJSON(s)
	if err != nil {
		return nil, &ParseError{Err: fmt.Errorf("%w: %w", ErrMalformed, err)}
	}
	if err := json.Unmarshal([]byte(converted), &v); err != nil {
		return nil, &ParseError{Err: fmt.Errorf("%w: %w", ErrMalformed, err)}
	}
	if v == nil {
		return nil, &ParseError{Err: ErrAbsent}
	}
	return v, nil
}

func isNullLiteral(s string) bool {
	switch strings.ToLower(s) {
	case "nan", "null", "none":
		return true
	}
	return false
}

// pyLiteralToJSON rewrites single-quoted strings and Python constants to JSON.
// Double-quoted strings are copied through untouched.
func pyLiteralToJSON(s string) (string, error) {
	var b strings.Builder
	b.Grow(len(s))

	rs := []rune(s)
	for i := 0; i < len(rs); i++ {
		c := rs[i]
		switch {
		case c == '\'' || c == '"':
			end, err := copyQuoted(&b, rs, i)
			if err != nil {
				return "", err
			}
			i = end
		case isIdentStart(c):
			j := i
			for j < len(rs) && isIdentPart(rs[j]) {
				j++
			}
			switch word := string(rs[i:j]); word {
			case "None":
				b.WriteString("null")
			case "True":
				b.WriteString("true")
			case "False":
				b.WriteString("false")
			default:
				b.WriteString(word)
			}
			i = j - 1
		default:
			b.WriteRune(c)
		}
	}
	return b.String(), nil
}

// copyQuoted writes the string literal starting at rs[start] as a JSON string
// and returns the index of its closing quote.
func copyQuoted(b *strings.Builder, rs []rune, start int) (int, error) {
	quote := rs[start]
	var body strings.Builder
	for i := start + 1; i < len(rs); i++ {
		c := rs[i]
		switch {
		case c == '\\' && i+1 < len(rs):
			next := rs[i+1]
			if next == '\'' {
				body.WriteRune('\'')
			} else {
				body.WriteRune('\\')
				body.WriteRune(next)
			}
			i++
		case c == quote:
			b.WriteString(`"`)
			b.WriteString(body.String())
			b.WriteString(`"`)
			return i, nil
		case c == '"':
			body.WriteString(`\"`)
		default:
			body.WriteRune(c)
		}
	}
	return 0, fmt.Errorf("unterminated string at offset %d", start)
}

func isIdentStart(c rune) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c rune) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}

// stringify renders a decoded value as a token string.
func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case json.Number:
		return t.String()
	default:
		out, err := json.Marshal(t)
		if err != nil {
			return ""
		}
		return string(out)
	}
}
