package parser

import (
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/shibukawa/snaplvm/coerce"
	"github.com/shibukawa/snaplvm/tokenizer"
	"github.com/shibukawa/snaplvm/value"
)

// XColumns tells how many X columns the data tables carry.
type XColumns int

const (
	XColumnsNo XColumns = iota
	XColumnsOne
	XColumnsMulti
)

func (x XColumns) String() string {
	switch x {
	case XColumnsNo:
		return "No"
	case XColumnsMulti:
		return "Multi"
	default:
		return "One"
	}
}

// TimePref tells whether X values are absolute or relative times.
type TimePref int

const (
	TimeRelative TimePref = iota
	TimeAbsolute
)

func (t TimePref) String() string {
	if t == TimeAbsolute {
		return "Absolute"
	}
	return "Relative"
}

// Settings is the parsing configuration declared by a header.
// The file header sets the document level; a group header works on a copy.
type Settings struct {
	Separator        rune
	DecimalSeparator rune
	MultiHeadings    bool
	XColumns         XColumns
	TimePref         TimePref

	// Date and Time are zero when the header does not carry them.
	Date time.Time
	Time time.Time

	ReaderVersion float64
	WriterVersion float64
}

// DefaultSettings returns the settings used before any header key is read.
func DefaultSettings() Settings {
	return Settings{
		Separator:        '\t',
		DecimalSeparator: '.',
		XColumns:         XColumnsOne,
		TimePref:         TimeRelative,
	}
}

// setting is the input of a known key update.
type setting struct {
	value     value.Value // first value field, coerced with the key hint
	raw       string      // first value field
	remainder string      // line text after the key and its separator
}

// knownKey is a header key that reconfigures parsing.
type knownKey struct {
	hint  coerce.Hint
	apply func(s *Settings, in setting) error
}

// knownKeys lists every header key that updates Settings.
var knownKeys = map[string]knownKey{
	"Separator": {
		hint: coerce.Text(),
		apply: func(s *Settings, in setting) error {
			r, err := delimiter(in)
			if err != nil {
				return err
			}
			s.Separator = r
			return nil
		},
	},
	"Decimal_Separator": {
		hint: coerce.Text(),
		apply: func(s *Settings, in setting) error {
			r, err := delimiter(in)
			if err != nil {
				return err
			}
			if r != '.' && r != ',' {
				return fmt.Errorf("decimal separator must be '.' or ','")
			}
			s.DecimalSeparator = r
			return nil
		},
	},
	"Multi_Headings": {
		hint: coerce.Boolean(),
		apply: func(s *Settings, in setting) error {
			b, err := in.value.AsBool()
			if err != nil {
				return err
			}
			s.MultiHeadings = b
			return nil
		},
	},
	"X_Columns": {
		hint: coerce.Text(),
		apply: func(s *Settings, in setting) error {
			switch in.raw {
			case "No":
				s.XColumns = XColumnsNo
			case "One":
				s.XColumns = XColumnsOne
			case "Multi":
				s.XColumns = XColumnsMulti
			default:
				return fmt.Errorf("expected No, One or Multi")
			}
			return nil
		},
	},
	"Time_Pref": {
		hint: coerce.Text(),
		apply: func(s *Settings, in setting) error {
			switch in.raw {
			case "Absolute":
				s.TimePref = TimeAbsolute
			case "Relative":
				s.TimePref = TimeRelative
			default:
				return fmt.Errorf("expected Absolute or Relative")
			}
			return nil
		},
	},
	"Date": {
		hint: coerce.Timestamp(""),
		apply: func(s *Settings, in setting) error {
			t, err := in.value.AsTimestamp()
			if err != nil {
				return err
			}
			s.Date = t
			return nil
		},
	},
	"Time": {
		hint: coerce.Timestamp(""),
		apply: func(s *Settings, in setting) error {
			t, err := in.value.AsTimestamp()
			if err != nil {
				return err
			}
			s.Time = t
			return nil
		},
	},
	"Reader_Version": {
		hint: coerce.Float('.'),
		apply: func(s *Settings, in setting) error {
			f, err := in.value.AsFloat()
			if err != nil {
				return err
			}
			s.ReaderVersion = f
			return nil
		},
	},
	"Writer_Version": {
		hint: coerce.Float('.'),
		apply: func(s *Settings, in setting) error {
			f, err := in.value.AsFloat()
			if err != nil {
				return err
			}
			s.WriterVersion = f
			return nil
		},
	},
}

// delimiter reads a separator name, a single character, or a value made only
// of one repeated delimiter character ("Separator<TAB><TAB>" declares a tab).
func delimiter(in setting) (rune, error) {
	if in.raw == "" {
		r, size := utf8.DecodeRuneInString(in.remainder)
		if size == 0 {
			return 0, fmt.Errorf("empty separator")
		}
		for _, c := range in.remainder {
			if c != r {
				return 0, fmt.Errorf("mixed delimiter characters")
			}
		}
		return r, nil
	}

	if r, ok := tokenizer.SeparatorNames[in.raw]; ok {
		return r, nil
	}
	if utf8.RuneCountInString(in.raw) == 1 {
		r, _ := utf8.DecodeRuneInString(in.raw)
		return r, nil
	}
	return 0, fmt.Errorf("unknown separator")
}

// hintFor returns the coercion hint of a header key.
func hintFor(key string) coerce.Hint {
	if k, ok := knownKeys[key]; ok {
		return k.hint
	}
	return coerce.Auto()
}

// groupScopedKeys are group header keys that describe the whole group
// rather than one value per channel.
var groupScopedKeys = map[string]bool{
	"Separator":         true,
	"Decimal_Separator": true,
	"Multi_Headings":    true,
	"X_Columns":         true,
	"Time_Pref":         true,
	"Reader_Version":    true,
	"Writer_Version":    true,

	"Channels":     true,
	"Notes":        true,
	"Test_Name":    true,
	"Test_Number":  true,
	"Test_Numbers": true,
	"Test_Series":  true,
	"UUT_Name":     true,
	"UUT_M/N":      true,
	"UUT_S/N":      true,
}
