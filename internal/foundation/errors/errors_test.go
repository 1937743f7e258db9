package errors

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuilderDefaults(t *testing.T) {
	err := NewError(CategoryRender, "cannot write page").Build()
	require.Equal(t, CategoryRender, err.Category())
	require.Equal(t, SeverityError, err.Severity())
	require.Equal(t, "cannot write page", err.Message())
	require.False(t, err.IsFatal())
}

func TestWrapErrorUnwraps(t *testing.T) {
	base := io.ErrUnexpectedEOF
	err := WrapError(base, CategoryInput, "read spreadsheet").Fatal().WithContext("path", "pages.xlsx").Build()

	require.ErrorIs(t, err, base)
	require.True(t, err.IsFatal())
	require.Contains(t, err.Error(), "[input:fatal] read spreadsheet")
	require.Contains(t, err.Error(), "path=pages.xlsx")

	wrapped := fmt.Errorf("generate: %w", err)
	got, ok := AsClassified(wrapped)
	require.True(t, ok)
	require.Same(t, err, got)
	require.True(t, HasCategory(wrapped, CategoryInput))
	require.Equal(t, SeverityFatal, GetSeverity(wrapped))
}

func TestUnclassifiedFallbacks(t *testing.T) {
	plain := stderrors.New("boom")
	require.False(t, IsClassified(plain))
	require.Equal(t, CategoryInternal, GetCategory(plain))
	require.Equal(t, SeverityError, GetSeverity(plain))
}

func TestWithContextCopies(t *testing.T) {
	orig := ValidationError("bad answers").WithContext("field", "title").Build()
	copied := orig.WithContext("field", "author")

	v, _ := orig.Context().GetString("field")
	require.Equal(t, "title", v)
	v, _ = copied.Context().GetString("field")
	require.Equal(t, "author", v)
	require.True(t, stderrors.Is(copied, orig))
}

func TestErrorContextMerge(t *testing.T) {
	var empty ErrorContext
	other := ErrorContext{"a": 1}
	require.Equal(t, other, empty.Merge(other))

	merged := ErrorContext{"a": 0, "b": 2}.Merge(other)
	require.Equal(t, ErrorContext{"a": 1, "b": 2}, merged)
}

func TestExitCodes(t *testing.T) {
	a := NewCLIErrorAdapter(false, nil)
	tests := []struct {
		err  error
		want int
	}{
		{nil, 0},
		{stderrors.New("x"), 1},
		{ValidationError("v").Build(), 2},
		{InputError("i").Build(), 3},
		{FileSystemError("f").Build(), 4},
		{RenderError("r").Build(), 4},
		{ConfigError("c").Build(), 7},
		{LedgerError("l").Build(), 8},
		{NewError(CategoryGit, "g").Build(), 8},
		{InternalError("x").Build(), 10},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, a.ExitCodeFor(tt.err), "err=%v", tt.err)
	}
}

func TestFormatError(t *testing.T) {
	quiet := NewCLIErrorAdapter(false, nil)
	require.Equal(t, "", quiet.FormatError(nil))
	require.Equal(t, "Error: boom", quiet.FormatError(stderrors.New("boom")))
	require.Equal(t, "Error: read spreadsheet: unexpected EOF",
		quiet.FormatError(WrapError(io.ErrUnexpectedEOF, CategoryInput, "read spreadsheet").Build()))
	require.Equal(t, "Internal error occurred (use -v for details)", quiet.FormatError(InternalError("oops").Build()))

	verbose := NewCLIErrorAdapter(true, nil)
	require.Equal(t, "[internal:fatal] oops", verbose.FormatError(InternalError("oops").Build()))
}

func TestHandleError(t *testing.T) {
	var logs, out bytes.Buffer
	a := NewCLIErrorAdapter(false, slog.New(slog.NewTextHandler(&logs, nil)))
	a.out = &out
	code := -1
	a.exit = func(c int) { code = c }

	a.HandleError(InputError("cannot load page spreadsheet").WithContext("path", "p.csv").Build())

	require.Equal(t, 3, code)
	require.Equal(t, "Error: cannot load page spreadsheet\n", out.String())
	require.Contains(t, logs.String(), "category=input")
	require.Contains(t, logs.String(), "path=p.csv")

	code = -1
	a.HandleError(nil)
	require.Equal(t, -1, code)
}
