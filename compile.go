package macs

import (
	"errors"
	"fmt"
)

// Stage identifies a step of the compilation pipeline.
type Stage int

const (
	StageLex Stage = iota
	StageParse
	StageCheck
	StageGenerate
)

func (s Stage) String() string {
	switch s {
	case StageLex:
		return "lex"
	case StageParse:
		return "parse"
	case StageCheck:
		return "check"
	case StageGenerate:
		return "generate"
	default:
		return fmt.Sprintf("Stage(%d)", int(s))
	}
}

// StageOf reports which stage produced err: StageParse for a *ParseError,
// StageCheck for a *SemanticError and StageGenerate otherwise.
func StageOf(err error) Stage {
	var pe *ParseError
	var se *SemanticError
	switch {
	case errors.As(err, &pe):
		return StageParse
	case errors.As(err, &se):
		return StageCheck
	default:
		return StageGenerate
	}
}

// Parse lexes and parses src into a program tree.
func Parse(src string) (*Node, error) {
	return NewParser(NewLexer(src)).ParseProgram()
}

// Check parses and analyzes src.
func Check(src string) (*Node, *Info, error) {
	prog, err := Parse(src)
	if err != nil {
		return nil, nil, err
	}
	info, err := Analyze(prog)
	if err != nil {
		return nil, nil, err
	}
	return prog, info, nil
}

// Transpile runs the whole pipeline and returns the C# program for src.
func Transpile(src string) (string, error) {
	prog, info, err := Check(src)
	if err != nil {
		return "", err
	}
	return Generate(prog, info), nil
}
