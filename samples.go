package macs

import "sort"

// Sample is a built-in example program.
type Sample struct {
	Name        string
	Description string
	Source      string
}

// Samples are the example programs offered by the CLI menu.
var Samples = map[string]Sample{
	"correct": {
		Name:        "correct",
		Description: "factorial program that compiles and runs",
		Source:      sampleCorrect,
	},
	"syntax-error": {
		Name:        "syntax-error",
		Description: "program with a missing initializer expression",
		Source:      sampleSyntaxError,
	},
	"semantic-error": {
		Name:        "semantic-error",
		Description: "program that parses but breaks typing and scoping rules",
		Source:      sampleSemanticError,
	},
}

// SampleNames returns the sample names in sorted order.
func SampleNames() []string {
	names := make([]string, 0, len(Samples))
	for name := range Samples {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

const sampleCorrect = `// Example MACSLang program
func factorial(n: int): int {
    var result: int = 1;
    for (var i: int = 1; i <= n; i = i + 1) {
        result = result * i;
    }
    return result;
}

func main(): int {
    print("Enter a number to compute its factorial:");
    var number: int;
    input(number);

    var fact: int = factorial(number);
    print("The factorial of " + number + " is " + fact);

    /*
     * A block comment.
     * It may span several lines.
     */
    var myFloat: float = 123.45;
    var myChar: char = 'X';
    var myBool: bool = true;
    if (myBool == false) {
        // nothing
    } else {
        var temp: int = 0;
    }
    while (myBool) {
        myBool = false;
    }
    var exprResult: bool = (5 + 3 * 2) == 11 && !false || true;
    return 0;
}
`

const sampleSyntaxError = `// Program with a syntax error
func syntaxError(): int {
    var x: int = ; // missing value after '='
    print("This line is never reached.");
    return 0;
}
`

const sampleSemanticError = `// Program with semantic errors
func semanticErrors(): int {
    var a: int = 10;
    var b: float = 5.5;
    var c: bool = true;

    undeclaredVar = 20;
    a = b;
    var result: int = a + c;
    factorial(a, b);
    factorial(c);
    return b;
}

func otherFunction(): int {
    return 0;
}

func duplicate(): int { return 1; }
func duplicate(): int { return 2; }
`
