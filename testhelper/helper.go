package testhelper

import (
	"fmt"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"testing"
)

var whiteSpaces = regexp.MustCompile(`(\s+)`)

// TrimIndent removes the indentation of the second line from every line and drops the first line.
// Tabs after the indentation are kept because LVM fixtures are tab separated.
func TrimIndent(t *testing.T, src string) string {
	t.Helper()

	lines := strings.Split(src, "\n")

	var indent string
	if len(lines) > 1 {
		indent = whiteSpaces.FindString(lines[1])
	}

	for i, line := range lines {
		lines[i] = strings.TrimPrefix(line, indent)
	}

	return strings.Join(lines[1:], "\n")
}

// LVM builds an LVM fixture from an indented raw string.
// Every "|" becomes the separator, which is a tab unless given.
//
//	src := testhelper.LVM(t, `
//		Channels|2
//		***End_of_Header***
//		X_Value|Voltage
//		0|1.5
//	`)
func LVM(t *testing.T, src string, separator ...rune) string {
	t.Helper()

	sep := "\t"
	if len(separator) > 0 {
		sep = string(separator[0])
	}

	return strings.ReplaceAll(TrimIndent(t, src), "|", sep)
}

// GetCaller returns "(file.go:line)" of the test line that called the assertion helper.
// Use it in messages of assertions made inside loops or helpers.
func GetCaller(t testing.TB) string {
	t.Helper()

	_, file, line, ok := runtime.Caller(2)
	if !ok {
		return "unknown"
	}

	return fmt.Sprintf("(%s:%d)", filepath.Base(file), line)
}
