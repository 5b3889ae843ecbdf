package main

import (
	"errors"
	"strings"
	"testing"

	"github.com/macslang/macs"
	"github.com/nalgeon/be"
)

func TestLexPhase(t *testing.T) {
	out, err := lexPhase("var x")
	be.Err(t, err, nil)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	be.Equal(t, len(lines), 3)
	be.True(t, strings.Contains(lines[0], "VAR"))
	be.True(t, strings.Contains(lines[1], `IDENTIFIER      "x"`))
	be.True(t, strings.Contains(lines[2], "EOF"))
}

func TestLexPhaseStopsAtProblem(t *testing.T) {
	out, err := lexPhase("a $ b")
	var pe *macs.ParseError
	be.True(t, errors.As(err, &pe))
	be.Equal(t, pe.Message, "unexpected character")
	be.Equal(t, strings.Count(out, "\n"), 2)
}

func TestParsePhase(t *testing.T) {
	out, err := parsePhase("func main(): int { return 0; }")
	be.Err(t, err, nil)
	be.Equal(t, out, `(program (func "main" (params) int (block (return 0))))`+"\n")
}

func TestCheckPhaseListsFunctions(t *testing.T) {
	out, err := checkPhase(macs.Samples["correct"].Source)
	be.Err(t, err, nil)
	be.Equal(t, out, "func factorial(int): int\nfunc main(): int\nno errors found\n")
}

func TestBuildPhase(t *testing.T) {
	out, err := buildPhase("func main(): int { return 0; }")
	be.Err(t, err, nil)
	be.True(t, strings.Contains(out, "public static int Main(string[] args)"))
}

func TestRenderErrorIncludesFrame(t *testing.T) {
	src := macs.Samples["syntax-error"].Source
	_, err := parsePhase(src)
	got := renderError(src, err)
	be.True(t, strings.Contains(got, "parse failed: syntax error: unexpected token at start of expression"))
	be.True(t, strings.Contains(got, "--> line 3, column 18"))
	be.True(t, strings.Contains(got, "var x: int = ;"))
}

func TestRenderErrorWithoutFrame(t *testing.T) {
	got := renderError("", errors.New("boom"))
	be.True(t, strings.Contains(got, "generate failed: boom"))
	be.True(t, !strings.Contains(got, "-->"))
}
