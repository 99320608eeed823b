// Package pyparse gates the reviewer on Python syntax validity. It does
// not build or expose a syntax tree; the parse is a pass/fail oracle.
package pyparse

import (
	"errors"
	"strings"

	"github.com/go-python/gpython/parser"
	"github.com/go-python/gpython/py"

	"github.com/Prasanna-Nadrajan/mlreview/internal/ir"
)

// MessagePrefix marks the single fatal issue produced on parse failure.
const MessagePrefix = "Fatal Syntax Error: "

// Validate parses code with the Python grammar. It returns an empty
// slice on success (the empty string parses) and exactly one critical
// "syntax" issue on failure. Pure function of its input.
func Validate(code string) []ir.Issue {
	_, err := parser.ParseString(code, py.ExecMode)
	if err == nil {
		return nil
	}
	return []ir.Issue{{
		Line:     errorLine(err),
		Message:  MessagePrefix + errorText(err),
		Severity: ir.Critical,
		Category: "syntax",
	}}
}

// errorLine pulls the line number the parser attached to the syntax
// error, falling back to 1 when it reports none.
func errorLine(err error) int {
	var exc *py.Exception
	if errors.As(err, &exc) && exc.Dict != nil {
		if v, ok := exc.Dict["lineno"]; ok {
			if n, ok := v.(py.Int); ok && n > 0 {
				return int(n)
			}
		}
	}
	return 1
}

// errorText reduces gpython's multi-line rendering (file/line banner,
// source excerpt, then a tail like "SyntaxError: 'unexpected EOF while
// parsing'") to just the parser message, so the issue reads on one line.
func errorText(err error) string {
	var msg string
	lines := strings.Split(err.Error(), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if s := strings.TrimSpace(lines[i]); s != "" {
			msg = s
			break
		}
	}
	if _, rest, ok := strings.Cut(msg, "Error: "); ok {
		msg = rest
	}
	if len(msg) >= 2 && msg[0] == '\'' && msg[len(msg)-1] == '\'' {
		msg = msg[1 : len(msg)-1]
	}
	return msg
}
