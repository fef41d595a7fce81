// Package diag contains the diagnostic types shared by every stage of the
// dooble compiler front-end: the lexer, the parser, and the semantic pass all
// report problems as a Diagnostic appended to a Sink rather than returning an
// error up the call stack, which lets each stage continue past a bad input
// and report everything wrong with it in one pass.
package diag

import (
	"fmt"
	"strings"

	"github.com/dekarrin/rosed"
)

// Kind classifies a Diagnostic by the pipeline stage that produced it.
type Kind int

const (
	Lexical Kind = iota
	Syntactic
	Semantic
	Internal
)

func (k Kind) String() string {
	switch k {
	case Lexical:
		return "lexical error"
	case Syntactic:
		return "syntax error"
	case Semantic:
		return "semantic error"
	case Internal:
		return "internal error"
	default:
		return "error"
	}
}

// consoleWidth is the column width diagnostic messages are wrapped to when
// rendered, matching the console width convention used elsewhere in the
// front-end's diagnostic and REPL output.
const consoleWidth = 80

// Severity distinguishes a Diagnostic that always fails a compile (Error)
// from one that's advisory by default (Warning) and only fails a compile
// when Config.WarningsAsErrors promotes it.
type Severity int

const (
	Error Severity = iota
	Warning
)

// Diagnostic is a single reported problem, carrying enough source context to
// render a caret under the offending text.
type Diagnostic struct {
	Kind Kind

	// Severity is Error unless the diagnostic was raised with Warnf.
	Severity Severity

	// Message is the technical description of the problem.
	Message string

	// Line is the 1-indexed source line the problem occurred on. Zero means
	// no particular line applies (e.g. unexpected end of input).
	Line int

	// Col is the 1-indexed column within Line that the problem starts at.
	Col int

	// SourceLine is the full text of Line, used to render a cursor.
	SourceLine string

	// Wrapped is an underlying error this diagnostic was derived from, if
	// any.
	Wrapped error
}

func (d Diagnostic) Error() string {
	label := d.Kind.String()
	if d.Severity == Warning {
		label = "warning (" + label + ")"
	}
	if d.Line == 0 {
		return fmt.Sprintf("%s: %s", label, d.Message)
	}
	return fmt.Sprintf("%s: line %d, col %d: %s", label, d.Line, d.Col, d.Message)
}

func (d Diagnostic) Unwrap() error {
	return d.Wrapped
}

// Cursor renders the offending source line with a '^' placed under Col.
// Returns an empty string if no SourceLine was captured.
func (d Diagnostic) Cursor() string {
	if d.SourceLine == "" {
		return ""
	}
	pad := strings.Repeat(" ", max(d.Col-1, 0))
	return d.SourceLine + "\n" + pad + "^"
}

// FullMessage renders the complete, word-wrapped diagnostic: the source
// cursor (if any) followed by the wrapped error message.
func (d Diagnostic) FullMessage() string {
	msg := rosed.Edit(d.Error()).Wrap(consoleWidth).String()
	if cur := d.Cursor(); cur != "" {
		return cur + "\n" + msg
	}
	return msg
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// Sink accumulates Diagnostics produced during one pipeline stage or one
// compile as a whole. Its zero value is ready to use.
type Sink struct {
	diags []Diagnostic
}

// Add appends a Diagnostic to the sink.
func (s *Sink) Add(d Diagnostic) {
	s.diags = append(s.diags, d)
}

// Errorf is a convenience that builds and appends a Diagnostic from a
// printf-style message.
func (s *Sink) Errorf(kind Kind, line, col int, sourceLine, format string, a ...any) {
	s.Add(Diagnostic{
		Kind:       kind,
		Severity:   Error,
		Message:    fmt.Sprintf(format, a...),
		Line:       line,
		Col:        col,
		SourceLine: sourceLine,
	})
}

// Warnf is Errorf's Warning-severity counterpart: recorded diagnostics that
// don't make HasErrors true unless promoted by Config.WarningsAsErrors.
func (s *Sink) Warnf(kind Kind, line, col int, sourceLine, format string, a ...any) {
	s.Add(Diagnostic{
		Kind:       kind,
		Severity:   Warning,
		Message:    fmt.Sprintf(format, a...),
		Line:       line,
		Col:        col,
		SourceLine: sourceLine,
	})
}

// HasErrors reports whether any Error-severity diagnostic has been
// recorded. This is the "sticky parse_error flag" of the front-end's
// error-handling design: once set for a given parse/compile, callers must
// check it before trusting the result. Warning-severity diagnostics alone
// don't set it; see HasWarnings and Config.WarningsAsErrors.
func (s *Sink) HasErrors() bool {
	for _, d := range s.diags {
		if d.Severity != Warning {
			return true
		}
	}
	return false
}

// HasWarnings reports whether any Warning-severity diagnostic has been
// recorded, regardless of whether any Error-severity ones have been too.
func (s *Sink) HasWarnings() bool {
	for _, d := range s.diags {
		if d.Severity == Warning {
			return true
		}
	}
	return false
}

// All returns every Diagnostic recorded so far, in the order they were
// added.
func (s *Sink) All() []Diagnostic {
	return s.diags
}

// Count returns the number of diagnostics recorded.
func (s *Sink) Count() int {
	return len(s.diags)
}

// InternalError is panicked for conditions that indicate a bug in the
// compiler itself (an exhausted pool, a reallocation failure) rather than a
// problem with the input being compiled. These are never added to a Sink.
type InternalError struct {
	// Bug is the technical detail a maintainer needs to find the defect.
	Bug string

	Wrapped error
}

func (e InternalError) Error() string {
	return fmt.Sprintf("internal error: %s", e.Bug)
}

func (e InternalError) Unwrap() error {
	return e.Wrapped
}

// Panic raises an InternalError built from a printf-style message.
func Panic(format string, a ...any) {
	panic(InternalError{Bug: fmt.Sprintf(format, a...)})
}
