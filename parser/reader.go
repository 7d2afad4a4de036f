package parser

import (
	"iter"

	"github.com/shibukawa/snaplvm/tokenizer"
)

// lineReader pulls lines from the tokenizer and allows pushing lines back.
type lineReader struct {
	tokenizer *tokenizer.LineTokenizer
	next      func() (tokenizer.Line, error, bool)
	stop      func()
	pushed    []tokenizer.Line
	last      int // number of the last line handed out
}

func newLineReader(t *tokenizer.LineTokenizer) *lineReader {
	next, stop := iter.Pull2(iter.Seq2[tokenizer.Line, error](t.Lines()))
	return &lineReader{
		tokenizer: t,
		next:      next,
		stop:      stop,
	}
}

// read returns the next line. ok is false at EOF.
// Pushed back lines are classified again with the current dialect.
func (r *lineReader) read() (line tokenizer.Line, ok bool, err error) {
	if n := len(r.pushed); n > 0 {
		line = r.pushed[n-1]
		r.pushed = r.pushed[:n-1]
		line = tokenizer.Reclassify(line, r.tokenizer.Dialect())
		r.last = line.Number
		return line, true, nil
	}

	line, err, ok = r.next()
	if !ok {
		return tokenizer.Line{}, false, nil
	}
	if err != nil {
		return tokenizer.Line{}, false, err
	}
	r.last = line.Number
	return line, true, nil
}

// unread pushes a line back so the next read returns it.
func (r *lineReader) unread(line tokenizer.Line) {
	r.pushed = append(r.pushed, line)
}

func (r *lineReader) close() {
	r.stop()
}
