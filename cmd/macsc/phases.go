package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/macslang/macs"
)

var (
	accentColor  = lipgloss.Color("#3B82F6")
	successColor = lipgloss.Color("#10B981")
	errorColor   = lipgloss.Color("#EF4444")
	mutedColor   = lipgloss.Color("#6B7280")

	successStyle = lipgloss.NewStyle().Foreground(successColor)
	errorStyle   = lipgloss.NewStyle().Foreground(errorColor).Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(mutedColor)
)

// phase is one step of the pipeline that can be shown on its own.
type phase struct {
	name string
	desc string
	run  func(src string) (string, error)
}

var phases = []phase{
	{name: "lex", desc: "List the tokens of a MACSLang program", run: lexPhase},
	{name: "parse", desc: "Print the syntax tree of a MACSLang program", run: parsePhase},
	{name: "check", desc: "Type-check a MACSLang program", run: checkPhase},
	{name: "build", desc: "Translate a MACSLang program to C#", run: buildPhase},
}

func lexPhase(src string) (string, error) {
	var b strings.Builder
	for _, tok := range macs.Tokenize(src) {
		fmt.Fprintf(&b, "%4d:%-4d %-15s %q\n", tok.Line, tok.Column, tok.Type, tok.Literal)
		if tok.Type == macs.UNKNOWN {
			return b.String(), &macs.ParseError{Token: tok, Message: tok.Problem}
		}
	}
	return b.String(), nil
}

func parsePhase(src string) (string, error) {
	prog, err := macs.Parse(src)
	if err != nil {
		return "", err
	}
	return macs.ToSExpr(prog) + "\n", nil
}

func checkPhase(src string) (string, error) {
	_, info, err := macs.Check(src)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	for _, fn := range info.Global.Symbols() {
		params := make([]string, len(fn.Params))
		for i, p := range fn.Params {
			params[i] = p.String()
		}
		fmt.Fprintf(&b, "func %s(%s): %s\n", fn.Name, strings.Join(params, ", "), fn.Return)
	}
	b.WriteString("no errors found\n")
	return b.String(), nil
}

func buildPhase(src string) (string, error) {
	return macs.Transpile(src)
}

// renderError formats a compilation error for the terminal, followed by a
// code frame when the error carries a position.
func renderError(src string, err error) string {
	msg := errorStyle.Render(fmt.Sprintf("%s failed: %v", macs.StageOf(err), err))
	if f, ok := err.(interface{ Frame(string) string }); ok {
		if frame := f.Frame(src); frame != "" {
			msg += "\n" + mutedStyle.Render(frame)
		}
	}
	return msg + "\n"
}
