package macs

import (
	"strings"
	"testing"

	"github.com/nalgeon/be"
)

func transpile(t *testing.T, src string) string {
	t.Helper()
	out, err := Transpile(src)
	be.Err(t, err, nil)
	return out
}

func TestGenerateMinimalProgram(t *testing.T) {
	got := transpile(t, "func main(): int { return 0; }")
	want := `using System;
using System.Globalization;
using System.IO;

namespace MACSLangRuntime
{
    public static class Program
    {
        public static int Main(string[] args)
        {
            Console.SetOut(new StreamWriter(Console.OpenStandardOutput()) { AutoFlush = true });
            return 0;
        }
    }

    internal static class Runtime
    {
        public static string Show(int value) => value.ToString(CultureInfo.InvariantCulture);
        public static string Show(float value) => value.ToString(CultureInfo.InvariantCulture);
        public static string Show(bool value) => value ? "true" : "false";
        public static string Show(char value) => value.ToString();
        public static string Show(string value) => value;
    }
}
`
	be.Equal(t, got, want)
}

func TestGenerateFunctionsSeparatedByBlankLine(t *testing.T) {
	got := transpile(t, "func one(): int { return 1; }\nfunc main(): int { return one(); }")
	be.True(t, strings.Contains(got, "            return 1;\n        }\n\n        public static int Main(string[] args)\n"))
}

func TestGenerateNestedIndentation(t *testing.T) {
	got := transpile(t, "func main(): int { while (true) { if (false) { return 1; } } return 0; }")
	be.True(t, strings.Contains(got, `
            while (true)
            {
                if (false)
                {
                    return 1;
                }
            }
            return 0;
`))
}

func TestGenerateIsDeterministic(t *testing.T) {
	prog, info, err := Check(Samples["correct"].Source)
	be.Err(t, err, nil)
	first := Generate(prog, info)
	second := Generate(prog, info)
	be.Equal(t, first, second)
}

func TestGenerateCorrectSample(t *testing.T) {
	got := transpile(t, Samples["correct"].Source)
	for _, line := range []string{
		"public static int factorial(int n)",
		"for (int i = 1; (i <= n); i = (i + 1))",
		"result = (result * i);",
		"int number = 0;",
		"number = int.Parse(Console.ReadLine()!, CultureInfo.InvariantCulture);",
		"int fact = factorial(number);",
		`Console.WriteLine(global::MACSLangRuntime.Runtime.Show(((("The factorial of " + global::MACSLangRuntime.Runtime.Show(number)) + " is ") + global::MACSLangRuntime.Runtime.Show(fact))));`,
		"float myFloat = 123.45f;",
		"char myChar = 'X';",
		"if ((myBool == false))",
		"int temp = 0;",
		"while (myBool)",
		"bool exprResult = ((((5 + (3 * 2)) == 11) && (!false)) || true);",
	} {
		be.True(t, strings.Contains(got, line+"\n"))
	}
}

func TestGenerateFlushPrecedesEveryRead(t *testing.T) {
	got := transpile(t, `func main(): int {
    var a: int;
    var b: string;
    print("a?");
    input(a);
    print("b?");
    input(b);
    return a;
}`)
	lines := strings.Split(got, "\n")
	reads := 0
	for i, line := range lines {
		if strings.Contains(line, "Console.ReadLine()") {
			reads++
			be.Equal(t, strings.TrimSpace(lines[i-1]), "Console.Out.Flush();")
		}
	}
	be.Equal(t, reads, 2)
	be.Equal(t, strings.Count(got, "Console.Out.Flush();"), 2)
}

func TestGenerateSetOutIsFirstInMain(t *testing.T) {
	got := transpile(t, "func main(): int { print(1); return 0; }")
	i := strings.Index(got, "public static int Main(string[] args)")
	be.True(t, i >= 0)
	rest := strings.SplitN(got[i:], "\n", 4)
	be.Equal(t, strings.TrimSpace(rest[1]), "{")
	be.Equal(t, strings.TrimSpace(rest[2]), "Console.SetOut(new StreamWriter(Console.OpenStandardOutput()) { AutoFlush = true });")
}

func TestGenerateNoSetOutOutsideMain(t *testing.T) {
	got := transpile(t, "func helper(): int { return 1; }")
	be.True(t, !strings.Contains(got, "Console.SetOut"))
	be.True(t, !strings.Contains(got, "static int Main("))
}

func TestGeneratePanicsOnUnanalyzedTree(t *testing.T) {
	prog, err := Parse("func main(): int { return 0; }")
	be.Err(t, err, nil)

	defer func() {
		be.True(t, recover() != nil)
	}()
	Generate(prog, newInfo(NewScope(nil)))
}

func TestLiteral(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"0", "0"},
		{"2147483647", "2147483647"},
		{"3.14", "3.14f"},
		{"0.5", "0.5f"},
		{"true", "true"},
		{"false", "false"},
		{"'a'", "'a'"},
		{`'"'`, `'"'`},
		{`'\'`, `'\\'`},
		{`"plain"`, `"plain"`},
		{`"it's"`, `"it's"`},
		{`"back\slash"`, `"back\\slash"`},
		{"\"tab\there\"", `"tab\there"`},
		{"\"two\nlines\"", `"two\nlines"`},
		{`"héllo"`, `"héllo"`},
	}
	for _, tt := range tests {
		be.Equal(t, literal(parseExpr(t, tt.input)), tt.want)
	}
}

func TestEscapeChar(t *testing.T) {
	be.Equal(t, escapeChar('\'', '\''), `\'`)
	be.Equal(t, escapeChar('\'', '"'), `'`)
	be.Equal(t, escapeChar('"', '"'), `\"`)
	be.Equal(t, escapeChar(0, '"'), `\0`)
	be.Equal(t, escapeChar('\r', '"'), `\r`)
	be.Equal(t, escapeChar(0x1b, '"'), `\u001b`)
	be.Equal(t, escapeChar(0x7f, '"'), `\u007f`)
	be.Equal(t, escapeChar(0x85, '"'), `\u0085`)
	be.Equal(t, escapeChar('é', '"'), "é")
	be.Equal(t, escapeChar(0x2028, '"'), `\u2028`)
	be.Equal(t, escapeChar(0x2029, '\''), `\u2029`)
}

func TestGenerateEscapesLineSeparators(t *testing.T) {
	got := transpile(t, "func main(): int { print(\"a\u2028b\u2029c\"); return 0; }")
	be.True(t, strings.Contains(got, `Show("a\u2028b\u2029c")`))
	be.True(t, !strings.ContainsRune(got, 0x2028))
	be.True(t, !strings.ContainsRune(got, 0x2029))
}

func TestUniqueName(t *testing.T) {
	used := map[string]bool{"x": true, "x_1": true}
	be.Equal(t, uniqueName("x", used), "x_2")
	be.Equal(t, uniqueName("x", used), "x_3")
	be.True(t, used["x_2"])
}

func TestEscapeIdent(t *testing.T) {
	be.Equal(t, escapeIdent("value"), "value")
	be.Equal(t, escapeIdent("class"), "@class")
	be.Equal(t, escapeIdent("double"), "@double")
}

func TestGenerateParametersShareLocalNames(t *testing.T) {
	got := transpile(t, `func f(n: int): int {
    if (true) { var n: int = 2; return n; }
    return n;
}`)
	be.True(t, strings.Contains(got, "public static int f(int n)\n"))
	be.True(t, strings.Contains(got, "int n_1 = 2;\n"))
	be.True(t, strings.Contains(got, "return n_1;\n"))
}

func TestGenerateLocalsRestartPerFunction(t *testing.T) {
	got := transpile(t, `func a(): int { var x: int = 1; return x; }
func b(): int { var x: int = 2; return x; }`)
	be.Equal(t, strings.Count(got, "int x = "), 2)
	be.True(t, !strings.Contains(got, "x_1"))
}

func TestGenerateForStepReadingBodyVariable(t *testing.T) {
	got := transpile(t, "func main(): int { for (var i: int = 0; i < 3; j = i) { var j: int = 1; } return 0; }")
	want := `            {
                int i = 0;
                while ((i < 3))
                {
                    int j = 1;
                    j = i;
                }
            }
            return 0;
`
	be.True(t, strings.Contains(got, want))
	be.True(t, !strings.Contains(got, "for ("))
}

func TestGenerateForStepInNestedLoop(t *testing.T) {
	got := transpile(t, `func main(): int {
    for (var i: int = 0; i < 2; i = i + 1) {
        for (var k: int = 0; k < 2; k = k + d) { var d: int = 1; print(k); }
    }
    return 0;
}`)
	be.True(t, strings.Contains(got, "for (int i = 0; (i < 2); i = (i + 1))\n"))
	be.True(t, strings.Contains(got, "int k = 0;\n"))
	be.True(t, strings.Contains(got, "k = (k + d);\n"))
}

func TestGenerateRenamesFrameworkNames(t *testing.T) {
	got := transpile(t, `func Console(): int { return 1; }
func main(): int { var CultureInfo: int = Console(); input(CultureInfo); return CultureInfo; }`)
	be.True(t, strings.Contains(got, "public static int Console_1()\n"))
	be.True(t, strings.Contains(got, "Console.SetOut(new StreamWriter(Console.OpenStandardOutput()) { AutoFlush = true });\n"))
	be.True(t, strings.Contains(got, "int CultureInfo_1 = Console_1();\n"))
	be.True(t, strings.Contains(got, "CultureInfo_1 = int.Parse(Console.ReadLine()!, CultureInfo.InvariantCulture);\n"))
	be.True(t, !strings.Contains(got, "int Console()"))
}

func FuzzTranspile(f *testing.F) {
	for _, name := range SampleNames() {
		f.Add(Samples[name].Source)
	}
	f.Add("func main(): int { for (var i: int = 0; i < 3; j = i) { var j: int = 1; } return 0; }")
	f.Add("func Console(): int { return 1; } func main(): int { return Console(); }")
	f.Add("func f(): int { for (;;) { } }")
	f.Fuzz(func(t *testing.T, src string) {
		prog, info, err := Check(src)
		if err != nil {
			return
		}
		// Anything the analyzer accepts must lower without panicking.
		got := Generate(prog, info)
		be.True(t, strings.Contains(got, "namespace MACSLangRuntime"))
		be.Equal(t, Generate(prog, info), got)
	})
}
