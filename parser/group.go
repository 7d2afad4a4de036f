package parser

import (
	"strings"

	"github.com/shibukawa/snaplvm/coerce"
	"github.com/shibukawa/snaplvm/tokenizer"
	"github.com/shibukawa/snaplvm/value"
)

// ChannelsKey opens a LabVIEW segment header, which has no start marker.
const ChannelsKey = "Channels"

// groupState is the state of the group parser
type groupState int

const (
	expectHeaderOrData groupState = iota
	inHeader
	expectChannelNames
	inData
)

func (s groupState) String() string {
	switch s {
	case expectHeaderOrData:
		return "ExpectHeaderOrData"
	case inHeader:
		return "InHeader"
	case expectChannelNames:
		return "ExpectChannelNames"
	default:
		return "InData"
	}
}

// groupHeader is the parsed header of one group
type groupHeader struct {
	entries []value.Entry

	// per channel values of distributed keys, in key order
	distributed []distributedKey
	hasUnitKey  bool
}

type distributedKey struct {
	key    string
	values []value.Value // values[i] belongs to the channel in field i+1
}

// parseGroup parses the next group. found is false at the end of input.
// On a row arity mismatch the rest of the group is skipped and the error returned.
func (p *Parser) parseGroup() (group value.Value, start int, found bool, err error) {
	saved, savedCoercer := p.settings, p.coercer
	defer func() {
		p.settings, p.coercer = saved, savedCoercer
		p.tokenizer.SetDialect(p.tokenizer.Dialect().WithSeparator(saved.Separator))
	}()

	var header groupHeader

	state := expectHeaderOrData
	for state == expectHeaderOrData {
		line, ok, err := p.lines.read()
		if err != nil {
			return value.Value{}, 0, false, err
		}
		if !ok {
			return value.Value{}, 0, false, nil
		}

		switch line.Kind {
		case tokenizer.BLANK:
			continue
		case tokenizer.MARKER:
			if line.IsMarker(tokenizer.StartOfHeader) {
				start = line.Number
				state = inHeader
			}
		case tokenizer.DATA:
			fields, err := p.split(line)
			if err != nil {
				return value.Value{}, 0, false, err
			}

			start = line.Number
			p.lines.unread(line)

			if firstField(fields) == ChannelsKey {
				state = inHeader
			} else {
				state = expectChannelNames
			}
		}
	}

	p.logger.Debug("group started", "line", start, "state", state.String())

	if state == inHeader {
		if header, err = p.parseGroupHeader(); err != nil {
			return value.Value{}, start, false, err
		}
	}

	names, units, err := p.parseChannelNames(header)
	if err != nil {
		return value.Value{}, start, false, err
	}

	columns, err := p.parseTable(names)
	if err != nil {
		if skipErr := p.skipGroup(); skipErr != nil {
			return value.Value{}, start, false, skipErr
		}
		return value.Value{}, start, false, err
	}

	channels := make([]value.Value, 0, len(names))
	for i, name := range names {
		channels = append(channels, value.Map(
			value.Pair("name", value.String(name)),
			value.Pair("properties", channelProperties(header, units, i)),
			value.Pair("values", value.Seq(columns[i]...)),
		))
	}

	group = value.Map(
		value.Pair("header", value.Map(header.entries...)),
		value.Pair("channels", value.Seq(channels...)),
	)

	return group, start, true, nil
}

// parseGroupHeader reads header lines until ***End_of_Header***.
// Known keys update the group's copy of the settings; a group that declares
// its own decimal separator gets a child coercer.
func (p *Parser) parseGroupHeader() (groupHeader, error) {
	var header groupHeader

	decimalBefore := p.settings.DecimalSeparator

	for {
		line, ok, err := p.lines.read()
		if err != nil {
			return groupHeader{}, err
		}
		if !ok {
			return groupHeader{}, p.unterminated(SectionGroupHeader)
		}

		switch {
		case line.IsMarker(tokenizer.EndOfHeader):
			if err := requireKeys(header.entries, p.options.RequiredGroupKeys, SectionGroupHeader, line.Number); err != nil {
				return groupHeader{}, err
			}
			return header, nil
		case line.IsMarker(tokenizer.StartOfHeader):
			return groupHeader{}, p.unterminated(SectionGroupHeader)
		case line.Kind != tokenizer.DATA:
			continue
		}

		h, err := p.parseHeaderLine(line)
		if err != nil {
			return groupHeader{}, err
		}

		if _, err := p.applyKnownKey(h); err != nil {
			return groupHeader{}, err
		}
		if h.key == "Decimal_Separator" && p.settings.DecimalSeparator != decimalBefore {
			p.coercer = p.coercer.Child(p.settings.DecimalSeparator)
			decimalBefore = p.settings.DecimalSeparator
		}

		if groupScopedKeys[h.key] {
			header.entries = append(header.entries, value.Pair(h.key, p.scalarValue(h)))
			continue
		}

		hint := hintFor(h.key)
		values := make([]value.Value, 0, len(h.values))
		for i, raw := range h.values {
			values = append(values, p.coerce(raw, hint, h.number, i+2, h.key))
		}

		header.entries = append(header.entries, value.Pair(h.key, value.Seq(values...)))
		header.distributed = append(header.distributed, distributedKey{key: h.key, values: values})
		if isUnitKey(h.key) {
			header.hasUnitKey = true
		}
	}
}

func isUnitKey(key string) bool {
	return key == "X_Dimension" || strings.HasPrefix(key, "X_Unit") || strings.HasPrefix(key, "Y_Unit")
}

// parseChannelNames reads the channel name row and the optional unit row.
// A header that is directly followed by another group or the end of input has no channels.
func (p *Parser) parseChannelNames(header groupHeader) (names, units []string, err error) {
	line, ok, err := p.skipBlank()
	if err != nil || !ok {
		return nil, nil, err
	}

	if line.Kind == tokenizer.MARKER {
		p.lines.unread(line)
		return nil, nil, nil
	}

	fields, err := p.split(line)
	if err != nil {
		return nil, nil, err
	}
	if firstField(fields) == ChannelsKey {
		p.lines.unread(line)
		return nil, nil, nil
	}

	names = trimTrailingEmpty(fields)

	if !header.hasUnitKey {
		return names, nil, nil
	}

	next, ok, err := p.lines.read()
	if err != nil || !ok {
		return names, nil, err
	}

	if units, isUnitRow := p.unitRow(next, len(names)); isUnitRow {
		return names, units, nil
	}

	p.lines.unread(next)

	return names, nil, nil
}

// unitRow reports whether a line holds one text label per channel
func (p *Parser) unitRow(line tokenizer.Line, width int) ([]string, bool) {
	if line.Kind != tokenizer.DATA {
		return nil, false
	}

	fields, err := p.split(line)
	if err != nil {
		return nil, false
	}

	fields = trimTrailingEmpty(fields)
	if len(fields) != width || firstField(fields) == ChannelsKey {
		return nil, false
	}

	probe := coerce.New(p.coercer.DecimalSeparator())
	for _, f := range fields {
		if f == "" {
			continue
		}
		if v, _ := probe.Coerce(f, coerce.Auto()); v.Kind() != value.KindString {
			return nil, false
		}
	}

	return fields, true
}

// channelProperties collects the header values and the unit of channel i
func channelProperties(header groupHeader, units []string, i int) value.Value {
	var props []value.Entry

	// field 0 of a header line is the key, so channel i takes value i-1
	if i > 0 {
		for _, d := range header.distributed {
			if i-1 < len(d.values) {
				props = append(props, value.Pair(d.key, d.values[i-1]))
			}
		}
	}

	if i < len(units) && units[i] != "" {
		props = append(props, value.Pair("Unit", value.String(units[i])))
	}

	return value.Map(props...)
}

// skipGroup discards lines up to the next group boundary
func (p *Parser) skipGroup() error {
	for {
		line, ok, err := p.lines.read()
		if err != nil || !ok {
			return err
		}

		switch {
		case p.endsTable(line):
			return nil
		case line.Kind == tokenizer.MARKER:
			p.lines.unread(line)
			return nil
		}

		fields, err := p.split(line)
		if err != nil {
			return err
		}
		if firstField(fields) == ChannelsKey {
			p.lines.unread(line)
			return nil
		}
	}
}
