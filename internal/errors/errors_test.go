package errors

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		wantMsg string
		wantCat Category
	}{
		{
			name:    "route error",
			code:    "A001",
			wantMsg: "Route not found",
			wantCat: CategoryRoute,
		},
		{
			name:    "guard error",
			code:    "A020",
			wantMsg: "Navigation denied by guard",
			wantCat: CategoryGuard,
		},
		{
			name:    "dialog error",
			code:    "A040",
			wantMsg: "No dialog is open",
			wantCat: CategoryDialog,
		},
		{
			name:    "unknown error code",
			code:    "A999",
			wantMsg: "Unknown error",
			wantCat: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code)
			if err.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", err.Message, tt.wantMsg)
			}
			if err.Category != tt.wantCat {
				t.Errorf("Category = %q, want %q", err.Category, tt.wantCat)
			}
			if err.Code != tt.code {
				t.Errorf("Code = %q, want %q", err.Code, tt.code)
			}
		})
	}
}

func TestIsMatchesByCode(t *testing.T) {
	sentinel := New("A001")
	err := New("A001").WithDetailf("no route %q", "reports")

	if !stderrors.Is(err, sentinel) {
		t.Error("errors.Is should match errors with the same code")
	}
	if stderrors.Is(err, New("A002")) {
		t.Error("errors.Is should not match a different code")
	}

	wrapped := fmt.Errorf("push: %w", err)
	if !stderrors.Is(wrapped, sentinel) {
		t.Error("errors.Is should see through fmt wrapping")
	}
	if sentinel.Detail != "" {
		t.Error("sentinel must not be mutated by building a new error")
	}
}

func TestUnwrap(t *testing.T) {
	cause := stderrors.New("boom")
	err := New("A030").Wrap(cause)

	if !stderrors.Is(err, cause) {
		t.Error("wrapped cause should be reachable")
	}
	if !strings.Contains(err.Error(), "boom") {
		t.Errorf("Error() = %q, want cause text", err.Error())
	}
}

func TestFromError(t *testing.T) {
	if FromError(nil, "A030") != nil {
		t.Error("FromError(nil) should be nil")
	}

	orig := New("A021")
	if got := FromError(fmt.Errorf("x: %w", orig), "A030"); got != orig {
		t.Error("FromError should return the existing Error in the chain")
	}

	got := FromError(stderrors.New("plain"), "A030")
	if got.Code != "A030" || got.Wrapped == nil {
		t.Errorf("FromError(plain) = %+v", got)
	}
}

func TestCodeOf(t *testing.T) {
	if got := CodeOf(fmt.Errorf("a: %w", New("A003"))); got != "A003" {
		t.Errorf("CodeOf = %q, want A003", got)
	}
	if got := CodeOf(stderrors.New("x")); got != "" {
		t.Errorf("CodeOf(plain) = %q, want empty", got)
	}
}

func TestFormat(t *testing.T) {
	DisableColors()
	defer EnableColors()

	err := New("A001").WithDetail("No route definition matches \"reports\" in area \"main\".")
	out := err.Format()

	for _, want := range []string{"ERROR A001: Route not found", "reports", "Hint:"} {
		if !strings.Contains(out, want) {
			t.Errorf("Format() missing %q:\n%s", want, out)
		}
	}
}

func TestFormatCompact(t *testing.T) {
	err := New("A040").WithDetail("stack empty")
	if got, want := err.FormatCompact(), "A040: No dialog is open (stack empty)"; got != want {
		t.Errorf("FormatCompact() = %q, want %q", got, want)
	}
}

func TestFormatJSON(t *testing.T) {
	err := New("A020").WithDetail("area main")
	out := err.FormatJSON()
	for _, want := range []string{`"code":"A020"`, `"category":"guard"`, `"detail":"area main"`} {
		if !strings.Contains(out, want) {
			t.Errorf("FormatJSON() = %s, missing %s", out, want)
		}
	}
}

func TestWrapText(t *testing.T) {
	lines := wrapText("one two three four five", 9)
	if len(lines) != 3 {
		t.Fatalf("wrapText lines = %v", lines)
	}
	if wrapText("", 10) != nil {
		t.Error("empty text should wrap to nil")
	}
}

func TestPrint(t *testing.T) {
	DisableColors()
	defer EnableColors()

	var buf bytes.Buffer
	Print(&buf, New("A040"))
	if !strings.Contains(buf.String(), "A040") {
		t.Errorf("Print coded error = %q", buf.String())
	}

	buf.Reset()
	Print(&buf, stderrors.New("plain failure"))
	if !strings.Contains(buf.String(), "plain failure") {
		t.Errorf("Print plain error = %q", buf.String())
	}
}
