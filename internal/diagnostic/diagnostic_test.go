package diagnostic

import (
	"errors"
	"testing"
)

func TestAddErrorSetsHasErrors(t *testing.T) {
	dl := NewDiagnosticList("int x;\n")
	if dl.HasErrors() {
		t.Fatal("fresh list must not report errors")
	}
	dl.AddError(Symbol, 0, "undeclared identifier 'x'")
	if !dl.HasErrors() {
		t.Fatal("expected HasErrors after AddError")
	}
	if dl.ErrorCount() != 1 {
		t.Fatalf("ErrorCount = %d, want 1", dl.ErrorCount())
	}
}

func TestWarningsDoNotCountAsErrorsByDefault(t *testing.T) {
	dl := NewDiagnosticList("int x;\n")
	dl.AddWarning(Semantic, 0, "unused variable 'x'")
	if dl.HasErrors() {
		t.Fatal("a bare warning must not count as an error")
	}
	if len(dl.Warnings()) != 1 {
		t.Fatalf("Warnings() len = %d, want 1", len(dl.Warnings()))
	}
}

func TestWarnAsErrorPromotesWarnings(t *testing.T) {
	dl := NewDiagnosticList("int x;\n")
	dl.WarnAsError(true)
	dl.AddWarning(Semantic, 0, "unused variable 'x'")
	if !dl.HasErrors() {
		t.Fatal("expected WarnAsError to promote the warning to an error")
	}
	if dl.Err() == nil {
		t.Fatal("expected Err() to be non-nil once HasErrors is true")
	}
}

func TestErrAndAsErrorsAreUnwrappable(t *testing.T) {
	dl := NewDiagnosticList("int x;\n")
	dl.AddError(Type, 4, "incompatible types in assignment")
	err := dl.Err()
	if err == nil {
		t.Fatal("expected a non-nil error")
	}
	var d *Diagnostic
	if !errors.As(err, &d) {
		t.Fatal("expected errors.As to unwrap to *Diagnostic")
	}
	if d.Category != Type {
		t.Fatalf("unwrapped diagnostic category = %v, want Type", d.Category)
	}
}

func TestMakePositionIsOneIndexed(t *testing.T) {
	dl := NewDiagnosticList("int x;\nint y;\n")
	pos := dl.MakePosition(0)
	if pos.Line != 1 || pos.Column != 1 {
		t.Fatalf("first byte position = %d:%d, want 1:1", pos.Line, pos.Column)
	}
	pos = dl.MakePosition(7)
	if pos.Line != 2 || pos.Column != 1 {
		t.Fatalf("position at offset 7 = %d:%d, want 2:1", pos.Line, pos.Column)
	}
}
