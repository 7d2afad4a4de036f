package snaplvm

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/goccy/go-yaml"
	"github.com/joho/godotenv"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"

	"github.com/shibukawa/snaplvm/coerce"
	"github.com/shibukawa/snaplvm/parser"
	"github.com/shibukawa/snaplvm/tokenizer"
)

// Options controls how LVM files are read.
//
// Options can be written in code or loaded from YAML:
//
//	encoding: windows-1252
//	separator: Tab
//	decimal_separator: ","
//	required_header_keys: [Writer_Version]
//	column_types:
//	  Comment: text
//	  Valve: boolean
//	timestamp_layouts: ["02.01.2006 15:04:05"]
type Options struct {
	// Encoding is the IANA charset name of the input. Empty means UTF-8.
	Encoding string `yaml:"encoding"`

	// Separator and DecimalSeparator apply until the file declares its own.
	// Separator accepts the names used in LVM headers (Tab, Comma, Semicolon, Space)
	// or a single character.
	Separator        string `yaml:"separator"`
	DecimalSeparator string `yaml:"decimal_separator"`

	RequiredHeaderKeys []string `yaml:"required_header_keys"`
	RequiredGroupKeys  []string `yaml:"required_group_keys"`

	// ColumnTypes maps a channel name to a type hint:
	// auto, integer, float, float(,), boolean, text, timestamp or timestamp(<layout>).
	ColumnTypes map[string]string `yaml:"column_types"`

	// TimestampLayouts are extra time.Parse layouts tried for untyped columns.
	TimestampLayouts []string `yaml:"timestamp_layouts"`

	// Logger receives parse diagnostics. Nil discards them.
	Logger *slog.Logger `yaml:"-"`
}

// LoadOptions reads YAML options from r.
// Unknown keys are rejected.
func LoadOptions(r io.Reader) (*Options, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read options: %w", err)
	}

	var options Options

	// Parse YAML with strict mode to detect unknown fields
	if len(bytes.TrimSpace(data)) > 0 {
		if err := yaml.UnmarshalWithOptions(data, &options, yaml.Strict()); err != nil {
			return nil, fmt.Errorf("failed to parse options: %w", err)
		}
	}

	applyDefaults(&options)

	if err := validateOptions(&options); err != nil {
		return nil, err
	}

	return &options, nil
}

// LoadOptionsFile reads YAML options from a file.
//
// A .env file next to it is loaded first, then ${VAR} and $VAR references
// in the file are expanded. A missing file yields the default options.
func LoadOptionsFile(path string) (*Options, error) {
	if err := loadEnvFile(filepath.Join(filepath.Dir(path), ".env")); err != nil {
		return nil, fmt.Errorf("failed to load environment files: %w", err)
	}

	f, err := os.Open(path)
	if os.IsNotExist(err) {
		options := getDefaultOptions()
		return &options, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read options file: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read options file: %w", err)
	}

	data = []byte(expandEnvVars(string(data)))

	return LoadOptions(bytes.NewReader(data))
}

// getDefaultOptions returns the options used when none are given
func getDefaultOptions() Options {
	return Options{
		Encoding:         "utf-8",
		Separator:        "Tab",
		DecimalSeparator: ".",
	}
}

// applyDefaults fills in missing values
func applyDefaults(options *Options) {
	defaults := getDefaultOptions()

	if options.Encoding == "" {
		options.Encoding = defaults.Encoding
	}
	if options.Separator == "" {
		options.Separator = defaults.Separator
	}
	if options.DecimalSeparator == "" {
		options.DecimalSeparator = defaults.DecimalSeparator
	}
}

// validateOptions checks the options for values the parser cannot use
func validateOptions(options *Options) error {
	if _, err := resolveEncoding(options.Encoding); err != nil {
		return fmt.Errorf("%w: encoding '%s': %v", ErrConfigValidation, options.Encoding, err)
	}

	if _, err := separatorRune(options.Separator); err != nil {
		return fmt.Errorf("%w: separator '%s': %v", ErrConfigValidation, options.Separator, err)
	}

	sep, err := separatorRune(options.DecimalSeparator)
	if err != nil || (sep != 0 && sep != '.' && sep != ',') {
		return fmt.Errorf("%w: decimal_separator '%s': must be '.' or ','", ErrConfigValidation, options.DecimalSeparator)
	}

	for name, hint := range options.ColumnTypes {
		if _, err := coerce.ParseHint(hint); err != nil {
			return fmt.Errorf("%w: column_types.%s: %v", ErrConfigValidation, name, err)
		}
	}

	for i, layout := range options.TimestampLayouts {
		if strings.TrimSpace(layout) == "" {
			return fmt.Errorf("%w: timestamp_layouts[%d] is empty", ErrConfigValidation, i)
		}
	}

	for _, key := range options.RequiredHeaderKeys {
		if key == "" {
			return fmt.Errorf("%w: required_header_keys contains an empty key", ErrConfigValidation)
		}
	}

	for _, key := range options.RequiredGroupKeys {
		if key == "" {
			return fmt.Errorf("%w: required_group_keys contains an empty key", ErrConfigValidation)
		}
	}

	return nil
}

// parserOptions converts validated options for the parser
func (o Options) parserOptions() (parser.Options, error) {
	sep, err := separatorRune(o.Separator)
	if err != nil {
		return parser.Options{}, err
	}

	decimalSep, err := separatorRune(o.DecimalSeparator)
	if err != nil {
		return parser.Options{}, err
	}

	var columnTypes map[string]coerce.Hint
	if len(o.ColumnTypes) > 0 {
		columnTypes = make(map[string]coerce.Hint, len(o.ColumnTypes))
		for name, raw := range o.ColumnTypes {
			hint, err := coerce.ParseHint(raw)
			if err != nil {
				return parser.Options{}, err
			}
			columnTypes[name] = hint
		}
	}

	return parser.Options{
		Separator:          sep,
		DecimalSeparator:   decimalSep,
		RequiredHeaderKeys: o.RequiredHeaderKeys,
		RequiredGroupKeys:  o.RequiredGroupKeys,
		ColumnTypes:        columnTypes,
		TimestampLayouts:   o.TimestampLayouts,
		Logger:             o.Logger,
	}, nil
}

// separatorRune reads a separator name or a single character. Empty means the default.
func separatorRune(s string) (rune, error) {
	if s == "" {
		return 0, nil
	}
	if r, ok := tokenizer.SeparatorNames[s]; ok {
		return r, nil
	}
	if utf8.RuneCountInString(s) == 1 {
		r, _ := utf8.DecodeRuneInString(s)
		return r, nil
	}

	return 0, fmt.Errorf("must be Tab, Comma, Semicolon, Space or a single character")
}

// resolveEncoding looks up an IANA charset. UTF-8 needs no decoding and yields nil.
func resolveEncoding(name string) (encoding.Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "utf-8", "utf8":
		return nil, nil
	}

	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil {
		return nil, err
	}
	if enc == nil {
		return nil, fmt.Errorf("unsupported charset")
	}

	return enc, nil
}

// loadEnvFile loads a .env file if it exists
func loadEnvFile(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}

	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}

	return nil
}

var (
	bracedEnvVar = regexp.MustCompile(`\$\{([^}]+)\}`)
	plainEnvVar  = regexp.MustCompile(`\$([A-Za-z_][A-Za-z0-9_]*)`)
)

// expandEnvVars expands environment variables in the format ${VAR} or $VAR
func expandEnvVars(s string) string {
	s = bracedEnvVar.ReplaceAllStringFunc(s, func(match string) string {
		return os.Getenv(match[2 : len(match)-1])
	})

	return plainEnvVar.ReplaceAllStringFunc(s, func(match string) string {
		return os.Getenv(match[1:])
	})
}
