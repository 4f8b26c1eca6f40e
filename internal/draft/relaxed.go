package draft

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf16"
	"unicode/utf8"
)

// ParseRelaxed decodes JSON text with three relaxations that generative
// models commonly produce:
//
//   - object keys may be bare identifiers: {title: "x"}
//   - objects and arrays may end with a trailing comma: {"a": 1,}
//   - strings may be single quoted: {'title': 'x'}
//
// Everything else follows RFC 8259. Comments, NaN/Infinity, hex numbers and
// raw control characters inside strings are rejected. The result uses the
// same types as encoding/json decoding into an interface value.
func ParseRelaxed(text string) (any, error) {
	p := &relaxedParser{src: text}
	p.skipSpace()
	v, err := p.value()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos < len(p.src) {
		return nil, p.errorf("unexpected trailing content")
	}
	return v, nil
}

type relaxedParser struct {
	src string
	pos int
}

func (p *relaxedParser) errorf(format string, args ...any) error {
	return fmt.Errorf("relaxed json: offset %d: %s", p.pos, fmt.Sprintf(format, args...))
}

func (p *relaxedParser) skipSpace() {
	for p.pos < len(p.src) {
		switch p.src[p.pos] {
		case ' ', '\t', '\n', '\r':
			p.pos++
		default:
			return
		}
	}
}

func (p *relaxedParser) peek() (byte, bool) {
	if p.pos >= len(p.src) {
		return 0, false
	}
	return p.src[p.pos], true
}

func (p *relaxedParser) value() (any, error) {
	c, ok := p.peek()
	if !ok {
		return nil, p.errorf("unexpected end of input")
	}

	switch {
	case c == '{':
		return p.object()
	case c == '[':
		return p.array()
	case c == '"' || c == '\'':
		return p.str()
	case c == '-' || (c >= '0' && c <= '9'):
		return p.number()
	case strings.HasPrefix(p.src[p.pos:], "true"):
		p.pos += len("true")
		return true, nil
	case strings.HasPrefix(p.src[p.pos:], "false"):
		p.pos += len("false")
		return false, nil
	case strings.HasPrefix(p.src[p.pos:], "null"):
		p.pos += len("null")
		return nil, nil
	}
	return nil, p.errorf("unexpected character %q", c)
}

func (p *relaxedParser) object() (map[string]any, error) {
	p.pos++ // '{'
	obj := map[string]any{}

	for {
		p.skipSpace()
		c, ok := p.peek()
		if !ok {
			return nil, p.errorf("unterminated object")
		}
		if c == '}' {
			p.pos++
			return obj, nil
		}

		key, err := p.key()
		if err != nil {
			return nil, err
		}

		p.skipSpace()
		if c, ok := p.peek(); !ok || c != ':' {
			return nil, p.errorf("expected ':' after key %q", key)
		}
		p.pos++

		p.skipSpace()
		v, err := p.value()
		if err != nil {
			return nil, err
		}
		obj[key] = v

		p.skipSpace()
		c, ok = p.peek()
		switch {
		case !ok:
			return nil, p.errorf("unterminated object")
		case c == ',':
			p.pos++
		case c == '}':
			p.pos++
			return obj, nil
		default:
			return nil, p.errorf("expected ',' or '}' in object")
		}
	}
}

func (p *relaxedParser) key() (string, error) {
	c, _ := p.peek()
	if c == '"' || c == '\'' {
		return p.str()
	}

	start := p.pos
	for p.pos < len(p.src) {
		r, size := utf8.DecodeRuneInString(p.src[p.pos:])
		first := p.pos == start
		if r == '_' || r == '$' || unicode.IsLetter(r) || (!first && unicode.IsDigit(r)) {
			p.pos += size
			continue
		}
		break
	}
	if p.pos == start {
		return "", p.errorf("expected object key")
	}
	return p.src[start:p.pos], nil
}

func (p *relaxedParser) array() ([]any, error) {
	p.pos++ // '['
	arr := []any{}

	for {
		p.skipSpace()
		c, ok := p.peek()
		if !ok {
			return nil, p.errorf("unterminated array")
		}
		if c == ']' {
			p.pos++
			return arr, nil
		}

		v, err := p.value()
		if err != nil {
			return nil, err
		}
		arr = append(arr, v)

		p.skipSpace()
		c, ok = p.peek()
		switch {
		case !ok:
			return nil, p.errorf("unterminated array")
		case c == ',':
			p.pos++
		case c == ']':
			p.pos++
			return arr, nil
		default:
			return nil, p.errorf("expected ',' or ']' in array")
		}
	}
}

func (p *relaxedParser) str() (string, error) {
	quote := p.src[p.pos]
	p.pos++

	var sb strings.Builder
	for {
		if p.pos >= len(p.src) {
			return "", p.errorf("unterminated string")
		}
		c := p.src[p.pos]
		switch {
		case c == quote:
			p.pos++
			return sb.String(), nil
		case c < 0x20:
			return "", p.errorf("control character in string")
		case c == '\\':
			if err := p.escape(&sb); err != nil {
				return "", err
			}
		default:
			r, size := utf8.DecodeRuneInString(p.src[p.pos:])
			sb.WriteRune(r)
			p.pos += size
		}
	}
}

func (p *relaxedParser) escape(sb *strings.Builder) error {
	p.pos++ // '\'
	c, ok := p.peek()
	if !ok {
		return p.errorf("unterminated escape")
	}
	p.pos++

	switch c {
	case '"', '\'', '\\', '/':
		sb.WriteByte(c)
	case 'b':
		sb.WriteByte('\b')
	case 'f':
		sb.WriteByte('\f')
	case 'n':
		sb.WriteByte('\n')
	case 'r':
		sb.WriteByte('\r')
	case 't':
		sb.WriteByte('\t')
	case 'u':
		r, err := p.hex4()
		if err != nil {
			return err
		}
		if utf16.IsSurrogate(r) && strings.HasPrefix(p.src[p.pos:], `\u`) {
			p.pos += 2
			low, err := p.hex4()
			if err != nil {
				return err
			}
			r = utf16.DecodeRune(r, low)
		}
		sb.WriteRune(r)
	default:
		return p.errorf("invalid escape '\\%c'", c)
	}
	return nil
}

func (p *relaxedParser) hex4() (rune, error) {
	if p.pos+4 > len(p.src) {
		return 0, p.errorf("short unicode escape")
	}
	n, err := strconv.ParseUint(p.src[p.pos:p.pos+4], 16, 32)
	if err != nil {
		return 0, p.errorf("invalid unicode escape")
	}
	p.pos += 4
	return rune(n), nil
}

func (p *relaxedParser) number() (float64, error) {
	start := p.pos
	if p.src[p.pos] == '-' {
		p.pos++
	}

	digits := func() int {
		n := 0
		for p.pos < len(p.src) && p.src[p.pos] >= '0' && p.src[p.pos] <= '9' {
			p.pos++
			n++
		}
		return n
	}

	intStart := p.pos
	if digits() == 0 {
		return 0, p.errorf("invalid number")
	}
	if p.src[intStart] == '0' && p.pos-intStart > 1 {
		return 0, p.errorf("leading zero in number")
	}
	if c, ok := p.peek(); ok && c == '.' {
		p.pos++
		if digits() == 0 {
			return 0, p.errorf("invalid fraction")
		}
	}
	if c, ok := p.peek(); ok && (c == 'e' || c == 'E') {
		p.pos++
		if c, ok := p.peek(); ok && (c == '+' || c == '-') {
			p.pos++
		}
		if digits() == 0 {
			return 0, p.errorf("invalid exponent")
		}
	}

	f, err := strconv.ParseFloat(p.src[start:p.pos], 64)
	if err != nil {
		return 0, p.errorf("invalid number %q", p.src[start:p.pos])
	}
	return f, nil
}
