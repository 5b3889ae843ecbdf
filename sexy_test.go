package macs

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/macslang/macs/sexy"
	"github.com/nalgeon/be"
)

func TestSexyAllTests(t *testing.T) {
	testFiles, err := filepath.Glob("test/*_test.md")
	be.Err(t, err, nil)
	be.True(t, len(testFiles) > 0)

	for _, testFile := range testFiles {
		testName := strings.TrimSuffix(filepath.Base(testFile), ".md")

		t.Run(testName, func(t *testing.T) {
			content, err := os.ReadFile(testFile)
			be.Err(t, err, nil)

			testCases, err := sexy.ExtractTestCases(string(content))
			be.Err(t, err, nil)

			for _, tc := range testCases {
				t.Run(tc.Name, func(t *testing.T) {
					runSexyTest(t, tc)
				})
			}
		})
	}
}

// sexyResult is what the pipeline produced for one test input.
type sexyResult struct {
	tree   *Node
	info   *Info
	csharp string
	err    error
}

func compileSexyInput(tc sexy.TestCase) sexyResult {
	var r sexyResult
	switch tc.InputType {
	case sexy.InputTypeExpr:
		r.tree, r.err = NewParser(NewLexer(tc.Input)).ParseExpression()
		if r.err == nil {
			r.info, r.err = AnalyzeExpr(r.tree, NewScope(nil))
		}
	case sexy.InputTypeProgram:
		r.tree, r.err = Parse(tc.Input)
		if r.err == nil {
			r.info, r.err = Analyze(r.tree)
		}
		if r.err == nil {
			r.csharp = Generate(r.tree, r.info)
		}
	}
	return r
}

func runSexyTest(t *testing.T, tc sexy.TestCase) {
	r := compileSexyInput(tc)

	for i, assertion := range tc.Assertions {
		t.Run("assertion_"+string(rune('a'+i)), func(t *testing.T) {
			switch assertion.Type {
			case sexy.AssertionTypeAST:
				be.True(t, r.tree != nil)
				assertSexyMatch(t, assertion.ParsedSexy, r.tree)

			case sexy.AssertionTypeTypes:
				be.Err(t, r.err, nil)
				assertTypes(t, assertion.ParsedSexy, r.tree, r.info)

			case sexy.AssertionTypeCSharp:
				be.Err(t, r.err, nil)
				assertCSharpLines(t, r.csharp, assertion.CSharpLines())

			case sexy.AssertionTypeCompileError:
				be.True(t, r.err != nil)
				be.Err(t, r.err, assertion.Content)

			default:
				t.Fatalf("line %d: unknown assertion type %s", tc.Line, assertion.Type)
			}
		})
	}
}

func assertSexyMatch(t *testing.T, pattern *sexy.Node, tree *Node) {
	t.Helper()
	actual, err := sexy.Parse(ToSExpr(tree))
	be.Err(t, err, nil)
	if err := sexy.Match(pattern, actual); err != nil {
		t.Errorf("%v\nfull tree: %s", err, actual)
	}
}

// assertTypes checks (pattern type) pairs: for each pair some expression in
// the tree must match pattern and have the named type.
func assertTypes(t *testing.T, pairs *sexy.Node, tree *Node, info *Info) {
	t.Helper()
	var exprs []*Node
	walkExprs(tree, func(n *Node) { exprs = append(exprs, n) })

	for _, pair := range pairs.Items {
		if pair.Type != sexy.NodeList || len(pair.Items) != 2 || pair.Items[1].Type != sexy.NodeSymbol {
			t.Fatalf("types entry %s is not a (pattern type) pair", pair)
		}
		pattern, want := pair.Items[0], pair.Items[1].Text

		found := false
		for _, expr := range exprs {
			actual, err := sexy.Parse(ToSExpr(expr))
			be.Err(t, err, nil)
			if sexy.Match(pattern, actual) == nil && info.TypeOf(expr).String() == want {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("no expression matching %s has type %s", pattern, want)
		}
	}
}

func walkExprs(n *Node, visit func(*Node)) {
	if n == nil || !n.IsExpr() {
		return
	}
	visit(n)
	walkExprs(n.Left, visit)
	walkExprs(n.Right, visit)
	for _, arg := range n.Children {
		walkExprs(arg, visit)
	}
}

// assertCSharpLines checks that want appears in the generated code as
// consecutive lines, ignoring indentation.
func assertCSharpLines(t *testing.T, csharp string, want []string) {
	t.Helper()
	var got []string
	for _, line := range strings.Split(csharp, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			got = append(got, line)
		}
	}
	for start := 0; start+len(want) <= len(got); start++ {
		match := true
		for i := range want {
			if got[start+i] != want[i] {
				match = false
				break
			}
		}
		if match {
			return
		}
	}
	t.Errorf("generated C# does not contain lines:\n%s\n\nfull output:\n%s", strings.Join(want, "\n"), csharp)
}
