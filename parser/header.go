package parser

import (
	"slices"
	"strings"

	"github.com/shibukawa/snaplvm/tokenizer"
	"github.com/shibukawa/snaplvm/value"
)

// Signature is the first line of a LabVIEW Measurement file.
// The character right after it is the file separator.
const Signature = "LabVIEW Measurement"

// headerLine is one key/value line of a header
type headerLine struct {
	key       string
	values    []string // value fields, trailing empty fields removed
	remainder string   // raw text after the key and its separator
	number    int
}

func (p *Parser) parseHeaderLine(line tokenizer.Line) (headerLine, error) {
	fields, err := p.split(line)
	if err != nil {
		return headerLine{}, err
	}

	h := headerLine{
		key:    firstField(fields),
		values: trimTrailingEmpty(fields[1:]),
		number: line.Number,
	}
	if _, after, found := strings.Cut(line.Text, string(p.settings.Separator)); found {
		h.remainder = after
	}

	return h, nil
}

// joined returns the value fields joined back with the separator
func (h headerLine) joined(sep rune) string {
	return strings.Join(h.values, string(sep))
}

// first returns the first value field
func (h headerLine) first() string {
	if len(h.values) == 0 {
		return ""
	}
	return h.values[0]
}

// scalarValue is the mapping value of a line: all value fields joined, coerced with the key hint.
func (p *Parser) scalarValue(h headerLine) value.Value {
	if len(h.values) == 0 {
		if _, ok := delimiterKeys[h.key]; ok && h.remainder != "" {
			return value.String(h.remainder)
		}
		return value.Null()
	}

	return p.coerce(h.joined(p.settings.Separator), hintFor(h.key), h.number, 0, h.key)
}

// delimiterKeys are keys whose value may be made of delimiter characters only
var delimiterKeys = map[string]struct{}{
	"Separator":         {},
	"Decimal_Separator": {},
}

// applyKnownKey feeds a known key back into the active settings.
// It reports whether the key is known.
func (p *Parser) applyKnownKey(h headerLine) (bool, error) {
	known, ok := knownKeys[h.key]
	if !ok {
		return false, nil
	}

	raw := h.first()
	if _, ok := delimiterKeys[h.key]; !ok && raw == "" {
		// an empty value leaves the setting as it is
		return true, nil
	}
	v, _ := p.coercer.Coerce(raw, known.hint)

	before := p.settings.Separator
	if err := known.apply(&p.settings, setting{value: v, raw: raw, remainder: h.remainder}); err != nil {
		shown := raw
		if shown == "" {
			shown = h.remainder
		}
		return true, &InvalidHeaderValueError{Key: h.key, Value: shown, Line: h.number, Reason: err.Error()}
	}

	if p.settings.Separator != before {
		p.setSeparator(p.settings.Separator)
	}

	p.logger.Debug("header key applied", "key", h.key, "value", raw, "line", h.number)

	return true, nil
}

// parseFileHeader reads the optional signature line and the file header.
// The header ends at ***End_of_Header***, at a blank line, or before the next ***Start_of_Header***.
func (p *Parser) parseFileHeader() (value.Value, error) {
	line, ok, err := p.skipBlank()
	if err != nil {
		return value.Value{}, err
	}
	if !ok {
		return value.Value{}, p.unterminated(SectionFileHeader)
	}

	if line.Kind == tokenizer.DATA && strings.HasPrefix(line.Text, Signature) {
		if rest := strings.TrimPrefix(line.Text, Signature); rest != "" {
			sep := []rune(rest)[0]
			p.setSeparator(sep)
			p.logger.Debug("separator selected by signature", "separator", tokenizer.SeparatorName(sep))
		}

		if line, ok, err = p.lines.read(); err != nil {
			return value.Value{}, err
		} else if !ok {
			return value.Value{}, p.unterminated(SectionFileHeader)
		}
	}

	if line.IsMarker(tokenizer.StartOfHeader) {
		if line, ok, err = p.lines.read(); err != nil {
			return value.Value{}, err
		} else if !ok {
			return value.Value{}, p.unterminated(SectionFileHeader)
		}
	}

	var entries []value.Entry

	decimalBefore := p.settings.DecimalSeparator

loop:
	for {
		switch {
		case line.IsMarker(tokenizer.EndOfHeader), line.Kind == tokenizer.BLANK:
			break loop
		case line.IsMarker(tokenizer.StartOfHeader):
			p.lines.unread(line)
			break loop
		case line.Kind == tokenizer.DATA:
			h, err := p.parseHeaderLine(line)
			if err != nil {
				return value.Value{}, err
			}

			if _, err := p.applyKnownKey(h); err != nil {
				return value.Value{}, err
			}
			if h.key == "Decimal_Separator" && p.settings.DecimalSeparator != decimalBefore {
				p.coercer.Declare(p.settings.DecimalSeparator)
				decimalBefore = p.settings.DecimalSeparator
			}

			entries = append(entries, value.Pair(h.key, p.scalarValue(h)))
		}

		if line, ok, err = p.lines.read(); err != nil {
			return value.Value{}, err
		} else if !ok {
			return value.Value{}, p.unterminated(SectionFileHeader)
		}
	}

	required := slices.Clone(p.options.RequiredHeaderKeys)
	if p.settings.WriterVersion >= 2 {
		required = append(required, "Decimal_Separator")
	}
	if err := requireKeys(entries, required, SectionFileHeader, line.Number); err != nil {
		return value.Value{}, err
	}

	return value.Map(entries...), nil
}

// skipBlank returns the next non-blank line
func (p *Parser) skipBlank() (tokenizer.Line, bool, error) {
	for {
		line, ok, err := p.lines.read()
		if err != nil || !ok {
			return line, ok, err
		}
		if line.Kind != tokenizer.BLANK {
			return line, true, nil
		}
	}
}

func (p *Parser) unterminated(section string) error {
	return &UnterminatedSectionError{Section: section, Line: p.lines.last}
}

func requireKeys(entries []value.Entry, keys []string, section string, line int) error {
	for _, key := range keys {
		found := slices.ContainsFunc(entries, func(e value.Entry) bool {
			return e.Key == key
		})
		if !found {
			return &MissingRequiredHeaderKeyError{Key: key, Section: section, Line: line}
		}
	}

	return nil
}
