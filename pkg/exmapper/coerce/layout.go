package coerce

import (
	"fmt"
	"strings"
	"time"
)

// DatePattern is a compiled yyyy-MM-dd style date pattern: a sequence of
// Go layout fragments, literal text and millisecond fields.
type DatePattern struct {
	segments []segment
}

type segmentKind int

const (
	segLayout segmentKind = iota
	segLiteral
	segMillis
)

type segment struct {
	kind segmentKind
	text string // layout or literal text
	n    int    // digits of a millisecond field
}

// CompilePattern compiles a yyyy-MM-dd style pattern. Text between
// single quotes is literal, and a doubled single quote stands for one
// quote. Unknown letters are literal too.
func CompilePattern(pattern string) DatePattern {
	var p DatePattern
	runes := []rune(pattern)

	for i := 0; i < len(runes); {
		r := runes[i]

		if r == '\'' {
			if i+1 < len(runes) && runes[i+1] == '\'' {
				p.text("'")
				i += 2
				continue
			}
			var quoted strings.Builder
			j := i + 1
			for ; j < len(runes); j++ {
				if runes[j] != '\'' {
					quoted.WriteRune(runes[j])
					continue
				}
				if j+1 < len(runes) && runes[j+1] == '\'' {
					quoted.WriteRune('\'')
					j++
					continue
				}
				break
			}
			p.text(quoted.String())
			i = j + 1
			continue
		}

		n := 1
		for i+n < len(runes) && runes[i+n] == r {
			n++
		}
		i += n

		switch {
		case r == 'S':
			p.millis(n)
		case isASCIILetter(r):
			if layout, ok := token(r, n); ok {
				p.layout(layout)
			} else {
				p.text(strings.Repeat(string(r), n))
			}
		default:
			p.text(strings.Repeat(string(r), n))
		}
	}
	return p
}

// text appends literal text. Text Go cannot misread as a layout element
// joins the surrounding layout.
func (p *DatePattern) text(s string) {
	if s == "" {
		return
	}
	if safeInLayout(s) {
		p.layout(s)
		return
	}
	if last := p.last(); last != nil && last.kind == segLiteral {
		last.text += s
		return
	}
	p.segments = append(p.segments, segment{kind: segLiteral, text: s})
}

func (p *DatePattern) layout(s string) {
	if last := p.last(); last != nil && last.kind == segLayout {
		last.text += s
		return
	}
	p.segments = append(p.segments, segment{kind: segLayout, text: s})
}

// millis appends a millisecond field. Three digits right after '.' or ','
// map onto Go's fractional seconds so they can be parsed.
func (p *DatePattern) millis(n int) {
	if last := p.last(); n == 3 && last != nil && last.kind == segLayout &&
		(strings.HasSuffix(last.text, ".") || strings.HasSuffix(last.text, ",")) {
		last.text += "000"
		return
	}
	p.segments = append(p.segments, segment{kind: segMillis, n: n})
}

func (p *DatePattern) last() *segment {
	if len(p.segments) == 0 {
		return nil
	}
	return &p.segments[len(p.segments)-1]
}

// Format formats t.
func (p DatePattern) Format(t time.Time) string {
	var b strings.Builder
	for _, seg := range p.segments {
		switch seg.kind {
		case segLayout:
			b.WriteString(t.Format(seg.text))
		case segLiteral:
			b.WriteString(seg.text)
		case segMillis:
			fmt.Fprintf(&b, "%0*d", seg.n, t.Nanosecond()/int(time.Millisecond))
		}
	}
	return b.String()
}

// Parse parses s. Values without a zone are read as UTC, matching
// spreadsheet serial dates.
func (p DatePattern) Parse(s string) (time.Time, error) {
	var (
		layout   strings.Builder
		literals []string
	)
	for _, seg := range p.segments {
		switch seg.kind {
		case segLayout:
			layout.WriteString(seg.text)
		case segLiteral:
			layout.WriteString(placeholder)
			literals = append(literals, seg.text)
		case segMillis:
			return time.Time{}, fmt.Errorf("cannot parse %d-digit milliseconds outside a fraction", seg.n)
		}
	}
	return parseLiterals(layout.String(), s, literals, 0)
}

// placeholder stands in for literal text that Go would read as a layout
// element. It is matched against the same placeholder in the input.
const placeholder = "\x00"

// parseLiterals replaces each literal in s by the placeholder, trying
// every occurrence until the layout matches.
func parseLiterals(layout, s string, literals []string, from int) (time.Time, error) {
	if len(literals) == 0 {
		return time.ParseInLocation(layout, s, time.UTC)
	}

	lit := literals[0]
	var firstErr error
	for off := from; off <= len(s); {
		idx := strings.Index(s[off:], lit)
		if idx < 0 {
			break
		}
		pos := off + idx
		candidate := s[:pos] + placeholder + s[pos+len(lit):]
		t, err := parseLiterals(layout, candidate, literals[1:], pos+len(placeholder))
		if err == nil {
			return t, nil
		}
		if firstErr == nil {
			firstErr = err
		}
		off = pos + 1
	}
	if firstErr == nil {
		firstErr = fmt.Errorf("literal %q not found in %q", lit, s)
	}
	return time.Time{}, firstErr
}

// safeInLayout reports whether s contains nothing Go layouts interpret:
// no ASCII letters or digits and no underscore.
func safeInLayout(s string) bool {
	for _, r := range s {
		if isASCIILetter(r) || (r >= '0' && r <= '9') || r == '_' || r == 0 {
			return false
		}
	}
	return true
}

func isASCIILetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func token(r rune, n int) (string, bool) {
	switch r {
	case 'y':
		if n == 2 {
			return "06", true
		}
		return "2006", true
	case 'M':
		switch {
		case n == 1:
			return "1", true
		case n == 2:
			return "01", true
		case n == 3:
			return "Jan", true
		default:
			return "January", true
		}
	case 'd':
		if n == 1 {
			return "2", true
		}
		return "02", true
	case 'H':
		return "15", true
	case 'h':
		if n == 1 {
			return "3", true
		}
		return "03", true
	case 'm':
		if n == 1 {
			return "4", true
		}
		return "04", true
	case 's':
		if n == 1 {
			return "5", true
		}
		return "05", true
	case 'E':
		if n >= 4 {
			return "Monday", true
		}
		return "Mon", true
	case 'a':
		return "PM", true
	case 'Z':
		return "-0700", true
	case 'X':
		return "Z07:00", true
	case 'z':
		return "MST", true
	}
	return "", false
}

// FormatDate formats t with a yyyy-MM-dd style pattern.
func FormatDate(t time.Time, pattern string) string {
	return CompilePattern(pattern).Format(t)
}

// ParseDate parses s with a yyyy-MM-dd style pattern, reading values
// without a zone as UTC.
func ParseDate(s, pattern string) (time.Time, error) {
	return CompilePattern(pattern).Parse(s)
}

// fallbackLayouts are tried for text cells of time fields without a
// date format.
var fallbackLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
	"2006/01/02 15:04:05",
	"2006/01/02",
}

func parseAnyDate(s string) (time.Time, bool) {
	for _, layout := range fallbackLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
