// Package diagnostic provides source-located error reporting for the
// translator: diagnostics are collected as ordinary Go values and
// surfaced as errors rather than terminating on the first failure.
package diagnostic

import (
	"fmt"
	"strings"

	"codeberg.org/saruga/c89front/internal/sourcemap"
)

// Severity represents the severity level of a diagnostic.
type Severity uint8

const (
	// Error prevents a successful translation.
	Error Severity = iota
	// Warning is a non-blocking issue; promoted to Error under -Werror.
	Warning
	// Note provides additional context for another diagnostic.
	Note
)

func (s Severity) String() string {
	switch s {
	case Error:
		return "error"
	case Warning:
		return "warning"
	case Note:
		return "note"
	default:
		return "unknown"
	}
}

// Category classifies a diagnostic by which translation phase raised it.
type Category uint8

const (
	// Syntax covers grammar violations caught by the recursive-descent parser.
	Syntax Category = iota
	// Symbol covers name resolution failures: undeclared, redeclared,
	// redefined, or shadowed in a way the language forbids.
	Symbol
	// Type covers type-analysis failures: incompatible operands, invalid
	// conversions, incomplete types used where completeness is required.
	Type
	// Semantic covers every other static constraint: break/continue outside
	// a loop, duplicate default labels, non-constant array bounds, and so on.
	Semantic
	// Internal marks a translator invariant violation rather than a fault in
	// the input program.
	Internal
)

func (c Category) String() string {
	switch c {
	case Syntax:
		return "syntax"
	case Symbol:
		return "symbol"
	case Type:
		return "type"
	case Semantic:
		return "semantic"
	case Internal:
		return "internal"
	default:
		return "unknown"
	}
}

// Position represents a position in source code.
type Position struct {
	Offset int // Byte offset (0-based)
	Line   int // Line number (1-based)
	Column int // Column number (1-based)
}

// Range represents a range in source code.
type Range struct {
	Start Position
	End   Position
}

// RelatedInfo provides additional location information for a diagnostic,
// e.g. pointing back at a prior declaration in a "redefinition" error.
type RelatedInfo struct {
	Range   Range
	Message string
}

// Diagnostic is a single source-located message.
type Diagnostic struct {
	Severity Severity
	Category Category
	Message  string
	Range    Range
	Related  []RelatedInfo
}

// Error implements the error interface so a Diagnostic can be returned,
// wrapped, and matched with errors.Is/errors.As like any other Go error.
func (d *Diagnostic) Error() string {
	return fmt.Sprintf("%d:%d: %s: %s: %s", d.Range.Start.Line, d.Range.Start.Column, d.Severity, d.Category, d.Message)
}

// DiagnosticList collects diagnostics raised while translating one source
// file and formats them with source context.
type DiagnosticList struct {
	diagnostics []Diagnostic
	lineIndex   *sourcemap.LineIndex
	source      string
	hasErrors   bool
	warnAsError bool
}

// NewDiagnosticList creates a new diagnostic list for the given source.
func NewDiagnosticList(source string) *DiagnosticList {
	return &DiagnosticList{
		lineIndex: sourcemap.NewLineIndex(source),
		source:    source,
	}
}

// WarnAsError makes every subsequently added Warning count as an Error for
// HasErrors/Err, matching a -Werror style CLI flag.
func (dl *DiagnosticList) WarnAsError(on bool) {
	dl.warnAsError = on
}

// Add adds a diagnostic to the list.
func (dl *DiagnosticList) Add(d Diagnostic) {
	dl.diagnostics = append(dl.diagnostics, d)
	if d.Severity == Error || (d.Severity == Warning && dl.warnAsError) {
		dl.hasErrors = true
	}
}

// AddError adds an error diagnostic at the given byte offset.
func (dl *DiagnosticList) AddError(cat Category, offset int, message string) {
	dl.AddErrorRange(cat, offset, offset+1, message)
}

// AddErrorRange adds an error diagnostic for a byte range.
func (dl *DiagnosticList) AddErrorRange(cat Category, start, end int, message string) {
	dl.Add(Diagnostic{
		Severity: Error,
		Category: cat,
		Message:  message,
		Range:    dl.MakeRange(start, end),
	})
}

// AddWarning adds a warning diagnostic at the given byte offset.
func (dl *DiagnosticList) AddWarning(cat Category, offset int, message string) {
	dl.Add(Diagnostic{
		Severity: Warning,
		Category: cat,
		Message:  message,
		Range:    dl.MakeRange(offset, offset+1),
	})
}

// AddNote adds a note diagnostic at the given byte offset, typically
// following an Error/Warning to point at a related declaration.
func (dl *DiagnosticList) AddNote(offset int, message string) {
	dl.Add(Diagnostic{
		Severity: Note,
		Message:  message,
		Range:    dl.MakeRange(offset, offset+1),
	})
}

// MakePosition converts a byte offset to a Position.
func (dl *DiagnosticList) MakePosition(offset int) Position {
	line, col := dl.lineIndex.ByteOffsetToLineColumn(offset)
	return Position{
		Offset: offset,
		Line:   line + 1, // Convert to 1-based
		Column: col + 1,  // Convert to 1-based
	}
}

// MakeRange converts byte offsets to a Range.
func (dl *DiagnosticList) MakeRange(start, end int) Range {
	return Range{
		Start: dl.MakePosition(start),
		End:   dl.MakePosition(end),
	}
}

// HasErrors returns true if there are any error-level diagnostics (or
// warnings promoted to errors by WarnAsError).
func (dl *DiagnosticList) HasErrors() bool {
	return dl.hasErrors
}

// Err returns a non-nil error summarizing the list when HasErrors is true,
// nil otherwise. This is the boundary where diagnostics become the return
// value a caller checks, instead of a process exit code.
func (dl *DiagnosticList) Err() error {
	if !dl.HasErrors() {
		return nil
	}
	return fmt.Errorf("%d diagnostic(s), first: %w", dl.ErrorCount(), dl.firstError())
}

func (dl *DiagnosticList) firstError() error {
	for i := range dl.diagnostics {
		d := &dl.diagnostics[i]
		if d.Severity == Error || (d.Severity == Warning && dl.warnAsError) {
			return d
		}
	}
	return nil
}

// Diagnostics returns all collected diagnostics.
func (dl *DiagnosticList) Diagnostics() []Diagnostic {
	return dl.diagnostics
}

// Errors returns only error-level diagnostics.
func (dl *DiagnosticList) Errors() []Diagnostic {
	var errs []Diagnostic
	for _, d := range dl.diagnostics {
		if d.Severity == Error {
			errs = append(errs, d)
		}
	}
	return errs
}

// Warnings returns only warning-level diagnostics.
func (dl *DiagnosticList) Warnings() []Diagnostic {
	var warnings []Diagnostic
	for _, d := range dl.diagnostics {
		if d.Severity == Warning {
			warnings = append(warnings, d)
		}
	}
	return warnings
}

// Count returns the total number of diagnostics.
func (dl *DiagnosticList) Count() int {
	return len(dl.diagnostics)
}

// ErrorCount returns the number of diagnostics that count as errors.
func (dl *DiagnosticList) ErrorCount() int {
	count := 0
	for _, d := range dl.diagnostics {
		if d.Severity == Error || (d.Severity == Warning && dl.warnAsError) {
			count++
		}
	}
	return count
}

// Format formats all diagnostics as a human-readable string, one per line
// plus source context. Callers that want color should use the cmd-level
// formatter instead, which wraps this with fatih/color.
func (dl *DiagnosticList) Format() string {
	if len(dl.diagnostics) == 0 {
		return ""
	}

	var sb strings.Builder
	for i := range dl.diagnostics {
		sb.WriteString(dl.FormatDiagnostic(&dl.diagnostics[i]))
		sb.WriteByte('\n')
	}
	return sb.String()
}

// FormatDiagnostic formats a single diagnostic with source context.
func (dl *DiagnosticList) FormatDiagnostic(d *Diagnostic) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "%d:%d: %s[%s]: %s\n",
		d.Range.Start.Line, d.Range.Start.Column, d.Severity, d.Category, d.Message)

	sourceLine := dl.getSourceLine(d.Range.Start.Line)
	if sourceLine != "" {
		fmt.Fprintf(&sb, "    %s\n", sourceLine)
		caret := strings.Repeat(" ", d.Range.Start.Column-1+4) + "^"
		if d.Range.End.Line == d.Range.Start.Line && d.Range.End.Column > d.Range.Start.Column {
			caret += strings.Repeat("~", d.Range.End.Column-d.Range.Start.Column-1)
		}
		sb.WriteString(caret)
		sb.WriteByte('\n')
	}

	for _, rel := range d.Related {
		fmt.Fprintf(&sb, "  %d:%d: note: %s\n", rel.Range.Start.Line, rel.Range.Start.Column, rel.Message)
	}

	return sb.String()
}

func (dl *DiagnosticList) getSourceLine(line int) string {
	if line < 1 {
		return ""
	}
	lines := strings.Split(dl.source, "\n")
	if line > len(lines) {
		return ""
	}
	return strings.TrimRight(lines[line-1], "\r")
}

// Clear removes all diagnostics.
func (dl *DiagnosticList) Clear() {
	dl.diagnostics = dl.diagnostics[:0]
	dl.hasErrors = false
}
