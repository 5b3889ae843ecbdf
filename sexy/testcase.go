package sexy

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// InputType names the fence holding the MACSLang source of a test.
type InputType string

const (
	InputTypeExpr    InputType = "macs-expr"
	InputTypeProgram InputType = "macs-program"
)

// AssertionType names a fence holding an expectation about the input.
type AssertionType string

const (
	AssertionTypeAST          AssertionType = "ast"
	AssertionTypeTypes        AssertionType = "types"
	AssertionTypeCSharp       AssertionType = "csharp"
	AssertionTypeCompileError AssertionType = "compile-error"
)

// Assertion is one expectation of a test case.
type Assertion struct {
	Type    AssertionType
	Content string

	// ParsedSexy is set for ast and types assertions.
	ParsedSexy *Node
}

// TestCase is a "## Test: name" section of a Markdown suite.
type TestCase struct {
	Name       string
	Input      string
	InputType  InputType
	Line       int // line of the opening input fence
	Assertions []Assertion
}

// CSharpLines returns the non-blank lines of a csharp assertion with
// surrounding whitespace removed.
func (a Assertion) CSharpLines() []string {
	var lines []string
	for _, line := range strings.Split(a.Content, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// ExtractTestCases reads every test case from a Markdown document. Fences
// without a language are ignored; any other fence must belong to a test.
func ExtractTestCases(markdownContent string) ([]TestCase, error) {
	x := &extractor{source: []byte(markdownContent)}
	doc := goldmark.New().Parser().Parse(text.NewReader(x.source))

	err := ast.Walk(doc, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		var err error
		switch n := node.(type) {
		case *ast.Heading:
			err = x.heading(n)
		case *ast.FencedCodeBlock:
			err = x.fence(n)
		}
		if err != nil {
			return ast.WalkStop, err
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return nil, fmt.Errorf("error walking markdown AST: %w", err)
	}
	if err := x.flush(); err != nil {
		return nil, err
	}
	return x.cases, nil
}

type extractor struct {
	source  []byte
	cases   []TestCase
	current *TestCase
}

// flush validates the open test case and appends it to the result.
func (x *extractor) flush() error {
	if x.current == nil {
		return nil
	}
	if err := validateTestCase(x.current); err != nil {
		return err
	}
	x.cases = append(x.cases, *x.current)
	x.current = nil
	return nil
}

func (x *extractor) heading(n *ast.Heading) error {
	title := x.text(n)
	name, ok := strings.CutPrefix(title, "Test: ")
	if !ok {
		return nil
	}
	if err := x.flush(); err != nil {
		return err
	}
	x.current = &TestCase{Name: name, Assertions: []Assertion{}}
	return nil
}

func (x *extractor) fence(n *ast.FencedCodeBlock) error {
	lang := string(n.Language(x.source))
	line := x.fenceLine(n)
	known := isInputFence(lang) || isAssertionFence(lang)

	if x.current == nil {
		switch {
		case lang == "":
			return nil
		case known:
			return fmt.Errorf("line %d: %s fence found outside of test case", line, lang)
		default:
			return fmt.Errorf("line %d: unknown fence language '%s' found outside of test case", line, lang)
		}
	}

	content := strings.TrimRight(x.body(n), "\n")
	switch {
	case lang == "":
		return nil

	case isInputFence(lang):
		if x.current.Input != "" {
			return fmt.Errorf("line %d: multiple input fences found in test '%s'", line, x.current.Name)
		}
		x.current.Input = content
		x.current.InputType = InputType(lang)
		x.current.Line = line
		return nil

	case isAssertionFence(lang):
		a := Assertion{Type: AssertionType(lang), Content: content}
		if a.Type == AssertionTypeAST || a.Type == AssertionTypeTypes {
			parsed, err := Parse(content)
			if err != nil {
				return fmt.Errorf("line %d: failed to parse Sexy assertion in test '%s': %w", line, x.current.Name, err)
			}
			a.ParsedSexy = parsed
		}
		x.current.Assertions = append(x.current.Assertions, a)
		return nil

	default:
		return fmt.Errorf("line %d: unknown fence language '%s' in test '%s'", line, lang, x.current.Name)
	}
}

// text concatenates the text segments below node.
func (x *extractor) text(node ast.Node) string {
	var buf bytes.Buffer
	ast.Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if t, ok := n.(*ast.Text); entering && ok {
			buf.Write(t.Segment.Value(x.source))
		}
		return ast.WalkContinue, nil
	})
	return buf.String()
}

func (x *extractor) body(n *ast.FencedCodeBlock) string {
	var buf bytes.Buffer
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		buf.Write(seg.Value(x.source))
	}
	return buf.String()
}

// fenceLine returns the 1-based line of the opening fence. The node only
// records its content lines, so the fence is the line before the first one.
func (x *extractor) fenceLine(n *ast.FencedCodeBlock) int {
	if n.Lines().Len() == 0 {
		return 1
	}
	start := n.Lines().At(0).Start
	return bytes.Count(x.source[:min(start, len(x.source))], []byte("\n"))
}

func isInputFence(lang string) bool {
	switch InputType(lang) {
	case InputTypeExpr, InputTypeProgram:
		return true
	}
	return false
}

func isAssertionFence(lang string) bool {
	switch AssertionType(lang) {
	case AssertionTypeAST, AssertionTypeTypes, AssertionTypeCSharp, AssertionTypeCompileError:
		return true
	}
	return false
}

// validateTestCase requires an input and at least one assertion, and
// restricts types assertions to expression inputs.
func validateTestCase(tc *TestCase) error {
	if tc.Input == "" {
		return fmt.Errorf("test '%s' has no input fence", tc.Name)
	}
	if len(tc.Assertions) == 0 {
		return fmt.Errorf("test '%s' has no assertion fences", tc.Name)
	}
	for _, a := range tc.Assertions {
		if a.Type != AssertionTypeTypes {
			continue
		}
		if tc.InputType != InputTypeExpr {
			return fmt.Errorf("test '%s': types assertion requires a %s input", tc.Name, InputTypeExpr)
		}
		if a.ParsedSexy.Type != NodeList {
			return fmt.Errorf("test '%s': types assertion must be a list of (pattern type) pairs", tc.Name)
		}
	}
	return nil
}
