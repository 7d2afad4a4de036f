package tokenizer

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"iter"
	"strings"
	"unicode"
)

// LineIterator uses Go 1.24 iterator pattern
type LineIterator iter.Seq2[Line, error]

// LineTokenizer splits an LVM byte stream into classified logical lines.
//
// Lines are read lazily. The dialect can be replaced between two pulls
// (the header declares the separator) and the new one applies from the next line.
type LineTokenizer struct {
	reader  *bufio.Reader
	dialect Dialect
	line    int
}

// NewLineTokenizer creates a new LineTokenizer
func NewLineTokenizer(r io.Reader, dialect ...Dialect) *LineTokenizer {
	d := DefaultDialect()
	if len(dialect) > 0 {
		d = dialect[0]
	}

	return &LineTokenizer{
		reader:  bufio.NewReader(r),
		dialect: d,
	}
}

// Dialect returns the active dialect
func (t *LineTokenizer) Dialect() Dialect {
	return t.dialect
}

// SetDialect replaces the active dialect for the lines that are not read yet
func (t *LineTokenizer) SetDialect(d Dialect) {
	t.dialect = d
}

// Lines returns an iterator of lines.
// Calling Lines again resumes from the first unread line.
func (t *LineTokenizer) Lines() LineIterator {
	return func(yield func(Line, error) bool) {
		for {
			text, err := t.reader.ReadString('\n')
			if text == "" && err != nil {
				if !errors.Is(err, io.EOF) {
					yield(Line{}, fmt.Errorf("failed to read line %d: %w", t.line+1, err))
				}
				return
			}

			t.line++
			text = strings.TrimSuffix(text, "\n")
			text = strings.TrimSuffix(text, "\r")
			if t.line == 1 {
				text = strings.TrimPrefix(text, "\uFEFF")
			}

			if !yield(classify(text, t.line, t.dialect), nil) {
				return
			}

			if err != nil {
				if !errors.Is(err, io.EOF) {
					yield(Line{}, fmt.Errorf("failed to read line %d: %w", t.line+1, err))
				}
				return
			}
		}
	}
}

// AllLines gets all lines as a slice (for debugging)
func (t *LineTokenizer) AllLines() ([]Line, error) {
	lines := make([]Line, 0, 64)

	for line, err := range t.Lines() {
		if err != nil {
			return lines, err
		}
		lines = append(lines, line)
	}

	return lines, nil
}

// Reclassify classifies a line again with another dialect.
// Lines read before a separator change may need it.
func Reclassify(line Line, d Dialect) Line {
	return classify(line.Text, line.Number, d)
}

// classify decides whether a line is blank, a section marker, or data
func classify(text string, number int, d Dialect) Line {
	line := Line{Text: text, Number: number}

	filler := func(r rune) bool {
		return r == d.Separator || unicode.IsSpace(r)
	}

	trimmed := strings.TrimFunc(text, filler)
	switch {
	case trimmed == "":
		line.Kind = BLANK
	case len(trimmed) > 6 && strings.HasPrefix(trimmed, "***") && strings.HasSuffix(trimmed, "***"):
		line.Kind = MARKER
		line.Marker = trimmed[3 : len(trimmed)-3]
	default:
		line.Kind = DATA
	}

	return line
}

// Split splits a line into fields using the dialect.
//
// A field that starts with the quote character runs until the closing quote;
// separators inside it are literal and escape sequences are resolved.
// Outside quotes every character is literal.
func Split(line Line, d Dialect) ([]string, error) {
	runes := []rune(line.Text)
	fields := make([]string, 0, 8)

	var builder strings.Builder

	inQuote := false
	quoteStart := 0
	atFieldStart := true

	for i := 0; i < len(runes); i++ {
		r := runes[i]

		switch {
		case inQuote:
			switch r {
			case d.Escape:
				if i+1 >= len(runes) {
					return nil, &MalformedEscapeError{
						Pos:    Position{Line: line.Number, Column: i + 1},
						Reason: "dangling escape character",
					}
				}
				i++
				builder.WriteString(resolveEscape(runes[i], d))
			case d.Quote:
				inQuote = false
			default:
				builder.WriteRune(r)
			}
		case r == d.Separator:
			fields = append(fields, builder.String())
			builder.Reset()
			atFieldStart = true
			continue
		case r == d.Quote && atFieldStart:
			inQuote = true
			quoteStart = i
		default:
			builder.WriteRune(r)
		}

		atFieldStart = false
	}

	if inQuote {
		return nil, &MalformedEscapeError{
			Pos:    Position{Line: line.Number, Column: quoteStart + 1},
			Reason: "unterminated quoted field",
		}
	}

	return append(fields, builder.String()), nil
}

// resolveEscape returns the literal text of an escape sequence
func resolveEscape(r rune, d Dialect) string {
	switch r {
	case 't':
		return "\t"
	case 'n':
		return "\n"
	case 'r':
		return "\r"
	case d.Escape, d.Quote, d.Separator:
		return string(r)
	default:
		// unknown sequences are kept verbatim
		return string(d.Escape) + string(r)
	}
}
