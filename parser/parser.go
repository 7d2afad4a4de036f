// Package parser reads the sections of an LVM file: the file header, then a
// sequence of groups, each with an optional header, a channel name row and a
// data table.
package parser

import (
	"errors"
	"io"
	"log/slog"
	"strings"

	"github.com/shibukawa/snaplvm/coerce"
	"github.com/shibukawa/snaplvm/tokenizer"
	"github.com/shibukawa/snaplvm/value"
)

// Options controls parser behaviors.
type Options struct {
	// Separator and DecimalSeparator are used until the file declares its own.
	// Zero keeps the LabVIEW defaults (tab and '.').
	Separator        rune
	DecimalSeparator rune

	// RequiredHeaderKeys must appear in the file header.
	RequiredHeaderKeys []string
	// RequiredGroupKeys must appear in every group header.
	RequiredGroupKeys []string

	// ColumnTypes maps a channel name to the hint used for its values. Other channels use Auto.
	ColumnTypes map[string]coerce.Hint
	// TimestampLayouts are extra time.Parse layouts tried by Auto coercion.
	TimestampLayouts []string

	Logger *slog.Logger
}

// DefaultOptions provides the default parser options.
var DefaultOptions = Options{}

// Result is the outcome of one parse.
type Result struct {
	Header       value.Value   // file header map
	Groups       []value.Value // one map per group that parsed completely
	Dropped      []*GroupError
	Degradations []Degradation
	Settings     Settings // file level settings
}

// Parser reads one LVM stream.
type Parser struct {
	tokenizer *tokenizer.LineTokenizer
	lines     *lineReader
	options   Options
	logger    *slog.Logger

	// active settings and coercer; a group replaces them while it is parsed
	settings Settings
	coercer  *coerce.Coercer

	degradations []Degradation
}

// New creates a parser over r.
func New(r io.Reader, options Options) *Parser {
	settings := DefaultSettings()
	if options.Separator != 0 {
		settings.Separator = options.Separator
	}
	if options.DecimalSeparator != 0 {
		settings.DecimalSeparator = options.DecimalSeparator
	}

	logger := options.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	t := tokenizer.NewLineTokenizer(r, tokenizer.DefaultDialect().WithSeparator(settings.Separator))

	return &Parser{
		tokenizer: t,
		lines:     newLineReader(t),
		options:   options,
		logger:    logger,
		settings:  settings,
		coercer:   coerce.New(settings.DecimalSeparator).WithLayouts(options.TimestampLayouts...),
	}
}

// Parse reads the whole stream.
//
// Framing errors (malformed escapes, unterminated or invalid headers, missing
// required keys) abort the parse. A group whose rows do not match its channel
// count is dropped and reported in Result.Dropped.
func (p *Parser) Parse() (*Result, error) {
	defer p.lines.close()

	header, err := p.parseFileHeader()
	if err != nil {
		return nil, err
	}

	result := &Result{
		Header:   header,
		Settings: p.settings,
	}

	for index := 0; ; index++ {
		group, start, found, err := p.parseGroup()
		if err != nil {
			var arityErr *RowArityMismatchError
			if !errors.As(err, &arityErr) {
				return nil, err
			}

			groupErr := &GroupError{Index: index, StartLine: start, Err: err}
			p.logger.Warn("group dropped", "group", index, "line", start, "error", err)
			result.Dropped = append(result.Dropped, groupErr)

			continue
		}

		if !found {
			break
		}

		result.Groups = append(result.Groups, group)
	}

	result.Degradations = p.degradations

	return result, nil
}

// setSeparator updates the active settings and the tokenizer dialect
func (p *Parser) setSeparator(sep rune) {
	p.settings.Separator = sep
	p.tokenizer.SetDialect(p.tokenizer.Dialect().WithSeparator(sep))
}

func (p *Parser) split(line tokenizer.Line) ([]string, error) {
	return tokenizer.Split(line, p.tokenizer.Dialect())
}

// coerce converts one field with the active coercer and records fallbacks
func (p *Parser) coerce(raw string, hint coerce.Hint, line, column int, key string) value.Value {
	v, fellBack := p.coercer.Coerce(raw, hint)
	if fellBack {
		d := Degradation{Line: line, Column: column, Key: key, Raw: raw, Hint: hint.String()}
		p.degradations = append(p.degradations, d)
		p.logger.Debug("coercion fell back to string", "line", line, "column", column, "key", key, "hint", d.Hint)
	}

	return v
}

// trimTrailingEmpty drops the empty fields left by trailing separators
func trimTrailingEmpty(fields []string) []string {
	end := len(fields)
	for end > 0 && strings.TrimSpace(fields[end-1]) == "" {
		end--
	}

	return fields[:end]
}

// firstField returns the trimmed first field of a data line
func firstField(fields []string) string {
	if len(fields) == 0 {
		return ""
	}

	return strings.TrimSpace(fields[0])
}
