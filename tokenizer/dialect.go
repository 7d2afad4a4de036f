package tokenizer

// Dialect holds the framing characters of an LVM file.
// The separator is declared by the file itself (signature line or Separator header key),
// so the parser replaces the dialect while reading the header.
type Dialect struct {
	Separator rune // field delimiter
	Quote     rune // bounds fields that contain escapes
	Escape    rune // escape character inside quoted fields
}

// DefaultDialect returns the dialect used until the header says otherwise.
func DefaultDialect() Dialect {
	return Dialect{
		Separator: '\t',
		Quote:     '"',
		Escape:    '\\',
	}
}

// WithSeparator returns a copy of the dialect using another field delimiter
func (d Dialect) WithSeparator(sep rune) Dialect {
	d.Separator = sep
	return d
}

// SeparatorNames maps the names LabVIEW writes for the Separator key to characters.
var SeparatorNames = map[string]rune{
	"Tab":       '\t',
	"Comma":     ',',
	"Semicolon": ';',
	"Space":     ' ',
}

// SeparatorName returns the LabVIEW name of a separator, or the character itself.
func SeparatorName(sep rune) string {
	for name, r := range SeparatorNames {
		if r == sep {
			return name
		}
	}
	return string(sep)
}
