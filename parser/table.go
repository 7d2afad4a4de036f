package parser

import (
	"strings"

	"github.com/shibukawa/snaplvm/coerce"
	"github.com/shibukawa/snaplvm/tokenizer"
	"github.com/shibukawa/snaplvm/value"
)

// CommentColumn is the free text column LabVIEW writes at the far right of a table.
// Rows may leave it out entirely.
const CommentColumn = "Comment"

// parseTable reads data rows into one value sequence per channel.
// The table ends at an empty line, a marker, a Channels line, or the end of input.
func (p *Parser) parseTable(names []string) ([][]value.Value, error) {
	if len(names) == 0 {
		return nil, nil
	}

	hints := make([]coerce.Hint, len(names))
	for i, name := range names {
		if hint, ok := p.options.ColumnTypes[name]; ok {
			hints[i] = hint
		} else {
			hints[i] = coerce.Auto()
		}
	}

	optionalLast := names[len(names)-1] == CommentColumn

	columns := make([][]value.Value, len(names))

	for {
		line, ok, err := p.lines.read()
		if err != nil {
			return nil, err
		}
		if !ok {
			return columns, nil
		}

		switch {
		case p.endsTable(line):
			return columns, nil
		case line.Kind == tokenizer.MARKER:
			p.lines.unread(line)
			return columns, nil
		}

		fields, err := p.split(line)
		if err != nil {
			return nil, err
		}
		if firstField(fields) == ChannelsKey {
			p.lines.unread(line)
			return columns, nil
		}

		fields, err = fitRow(fields, len(names), optionalLast, line.Number)
		if err != nil {
			return nil, err
		}

		for i, raw := range fields {
			columns[i] = append(columns[i], p.coerce(raw, hints[i], line.Number, i+1, names[i]))
		}
	}
}

// endsTable reports whether a line closes the data section.
// A row made only of separators is data with every sample missing.
func (p *Parser) endsTable(line tokenizer.Line) bool {
	return line.Kind == tokenizer.BLANK && !strings.ContainsRune(line.Text, p.tokenizer.Dialect().Separator)
}

// fitRow checks the field count of a row against the channel count.
// Extra trailing empty fields are dropped and a missing comment column is read as empty.
// A row with no samples at all is widened to the channel count.
func fitRow(fields []string, width int, optionalLast bool, line int) ([]string, error) {
	switch {
	case len(trimTrailingEmpty(fields)) == 0:
		return make([]string, width), nil
	case len(fields) == width:
		return fields, nil
	case len(fields) > width:
		for _, f := range fields[width:] {
			if strings.TrimSpace(f) != "" {
				return nil, &RowArityMismatchError{Line: line, Expected: width, Actual: len(trimTrailingEmpty(fields))}
			}
		}
		return fields[:width], nil
	case optionalLast && len(fields) == width-1:
		return append(fields, ""), nil
	default:
		return nil, &RowArityMismatchError{Line: line, Expected: width, Actual: len(fields)}
	}
}
