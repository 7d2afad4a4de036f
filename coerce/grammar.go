package coerce

import (
	"unicode"

	pc "github.com/shibukawa/parsercombinator"
)

// Scalar grammars work on one token per rune.

func toRuneTokens(raw string) []pc.Token[rune] {
	runes := []rune(raw)
	results := make([]pc.Token[rune], len(runes))

	for i, r := range runes {
		results[i] = pc.Token[rune]{
			Type: "rune",
			Pos: &pc.Pos{
				Line:  1,
				Col:   i + 1,
				Index: i,
			},
			Val: r,
			Raw: string(r),
		}
	}

	return results
}

func runeClass(pred func(rune) bool) pc.Parser[rune] {
	return func(pctx *pc.ParseContext[rune], tokens []pc.Token[rune]) (int, []pc.Token[rune], error) {
		if len(tokens) > 0 && pred(tokens[0].Val) {
			return 1, tokens[:1], nil
		}

		return 0, nil, pc.ErrNotMatch
	}
}

func char(chars ...rune) pc.Parser[rune] {
	return runeClass(func(r rune) bool {
		for _, c := range chars {
			if r == c {
				return true
			}
		}
		return false
	})
}

// word matches s case-insensitively
func word(s string) pc.Parser[rune] {
	parsers := make([]pc.Parser[rune], 0, len(s))
	for _, c := range s {
		lower := unicode.ToLower(c)
		parsers = append(parsers, runeClass(func(r rune) bool {
			return unicode.ToLower(r) == lower
		}))
	}
	return pc.Seq(parsers...)
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

var (
	digit  = runeClass(isDigit)
	digits = pc.Seq(digit, pc.ZeroOrMore("digits", digit))
	sign   = pc.Optional(char('+', '-'))
	eos    = pc.EOS[rune]()

	integerGrammar = pc.Seq(sign, digits, eos)

	exponent       = pc.Optional(pc.Seq(char('e', 'E'), sign, digits))
	specialGrammar = pc.Or(pc.Seq(sign, word("inf")), word("nan"))

	dateSep = char('/', '-')
	date    = pc.Seq(
		pc.Repeat("year", 4, 4, digit), dateSep,
		pc.Repeat("month", 2, 2, digit), dateSep,
		pc.Repeat("day", 2, 2, digit),
	)
	clock = pc.Seq(
		pc.Repeat("hour", 1, 2, digit), char(':'),
		pc.Repeat("minute", 2, 2, digit), char(':'),
		pc.Repeat("second", 2, 2, digit),
		pc.Optional(pc.Seq(char('.', ','), digits)),
	)
	timestampGrammar = pc.Seq(
		pc.Or(
			pc.Seq(date, pc.Optional(pc.Seq(char(' ', 'T'), clock))),
			clock,
		),
		eos,
	)

	booleanTrue  = pc.Seq(pc.Or(word("yes"), word("true"), char('1')), eos)
	booleanFalse = pc.Seq(pc.Or(word("no"), word("false"), char('0')), eos)
)

// floatGrammar builds a float grammar accepting any of the given decimal separators.
// Both "1,5" and ",5" and "1," are accepted, with an optional exponent.
func floatGrammar(separators ...rune) pc.Parser[rune] {
	sep := char(separators...)
	mantissa := pc.Or(
		pc.Seq(digits, pc.Optional(pc.Seq(sep, pc.ZeroOrMore("fraction", digit)))),
		pc.Seq(sep, digits),
	)
	return pc.Seq(
		pc.Or(
			pc.Seq(sign, mantissa, exponent),
			specialGrammar,
		),
		eos,
	)
}

var (
	floatDot    = floatGrammar('.')
	floatComma  = floatGrammar(',')
	floatEither = floatGrammar('.', ',')
)

// matches reports whether the grammar consumes the whole input
func matches(p pc.Parser[rune], raw string) bool {
	if raw == "" {
		return false
	}
	pctx := pc.NewParseContext[rune]()
	pctx.OrMode = pc.OrModeTryFast

	_, _, err := p(pctx, toRuneTokens(raw))
	return err == nil
}
