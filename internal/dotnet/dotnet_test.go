package dotnet

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nalgeon/be"
)

// requireTool skips the test when name is not on PATH. The tests stand in
// ordinary utilities for the SDK so they run without .NET installed.
func requireTool(t *testing.T, name string) string {
	t.Helper()
	path, err := exec.LookPath(name)
	if err != nil {
		t.Skipf("%s not available: %v", name, err)
	}
	return path
}

func TestConfigDefaults(t *testing.T) {
	cfg := Config{}.withDefaults()
	be.Equal(t, cfg.Dotnet, "dotnet")
	be.Equal(t, cfg.Framework, "net6.0")
	be.Equal(t, cfg.Project, "MACSLangGeneratedApp")
	be.Equal(t, cfg.Dir, ".")
	be.True(t, cfg.Logger != nil)
	be.True(t, cfg.Stdout != nil)

	cfg = Config{Framework: "net8.0", Project: "Demo"}.withDefaults()
	be.Equal(t, cfg.Framework, "net8.0")
	be.Equal(t, cfg.Project, "Demo")
}

func TestProjectFile(t *testing.T) {
	got := ProjectFile("net8.0")
	be.True(t, strings.Contains(got, "<TargetFramework>net8.0</TargetFramework>"))
	be.True(t, strings.Contains(got, "<OutputType>Exe</OutputType>"))
	be.True(t, strings.Contains(got, "<EnableDefaultCompileItems>false</EnableDefaultCompileItems>"))
	be.True(t, strings.Contains(got, `<Compile Include="GeneratedProgram.cs" />`))
}

func TestWrite(t *testing.T) {
	dir := t.TempDir()
	p, err := Write(Config{Dir: dir, Project: "App"}, "class X {}")
	be.Err(t, err, nil)
	be.Equal(t, p.Dir, filepath.Join(dir, "App"))

	src, err := os.ReadFile(p.SourcePath())
	be.Err(t, err, nil)
	be.Equal(t, string(src), "class X {}")

	proj, err := os.ReadFile(p.ProjectPath())
	be.Err(t, err, nil)
	be.Equal(t, string(proj), ProjectFile("net6.0"))
	be.Equal(t, filepath.Base(p.ProjectPath()), "App.csproj")

	be.Equal(t, p.AssemblyPath(), filepath.Join(dir, "App", "bin", "Debug", "net6.0", "App.dll"))
}

func TestWriteReplacesStaleProject(t *testing.T) {
	dir := t.TempDir()
	stale := filepath.Join(dir, "App", "stale.txt")
	be.Err(t, os.MkdirAll(filepath.Dir(stale), 0o755), nil)
	be.Err(t, os.WriteFile(stale, []byte("old"), 0o644), nil)
	be.Err(t, os.WriteFile(filepath.Join(dir, "App", "App.csproj"), []byte("<Project />"), 0o644), nil)

	_, err := Write(Config{Dir: dir, Project: "App"}, "")
	be.Err(t, err, nil)

	_, err = os.Stat(stale)
	be.True(t, errors.Is(err, os.ErrNotExist))
}

func TestWriteReusesEmptyDirectory(t *testing.T) {
	dir := t.TempDir()
	be.Err(t, os.Mkdir(filepath.Join(dir, "App"), 0o755), nil)

	p, err := Write(Config{Dir: dir, Project: "App"}, "class X {}")
	be.Err(t, err, nil)
	_, err = os.Stat(p.ProjectPath())
	be.Err(t, err, nil)
}

func TestWriteKeepsForeignDirectory(t *testing.T) {
	dir := t.TempDir()
	mine := filepath.Join(dir, "App", "notes.txt")
	be.Err(t, os.MkdirAll(filepath.Dir(mine), 0o755), nil)
	be.Err(t, os.WriteFile(mine, []byte("keep"), 0o644), nil)

	_, err := Write(Config{Dir: dir, Project: "App"}, "")
	be.Err(t, err, "refusing to replace")

	data, err := os.ReadFile(mine)
	be.Err(t, err, nil)
	be.Equal(t, string(data), "keep")
}

func TestWriteRejectsProjectPaths(t *testing.T) {
	root := t.TempDir()
	precious := filepath.Join(root, "precious.txt")
	be.Err(t, os.WriteFile(precious, []byte("keep"), 0o644), nil)
	out := filepath.Join(root, "out")
	be.Err(t, os.Mkdir(out, 0o755), nil)

	for _, name := range []string{"..", ".", "../out", "a/b", `a\b`} {
		t.Run(name, func(t *testing.T) {
			_, err := Write(Config{Dir: out, Project: name}, "")
			be.Err(t, err, "invalid project name")
		})
	}

	data, err := os.ReadFile(precious)
	be.Err(t, err, nil)
	be.Equal(t, string(data), "keep")
}

func TestBuildFailureKeepsOutput(t *testing.T) {
	fake := requireTool(t, "false")
	p, err := Write(Config{Dir: t.TempDir(), Dotnet: fake}, "")
	be.Err(t, err, nil)

	err = p.Build(context.Background())
	var buildErr *BuildError
	be.True(t, errors.As(err, &buildErr))
	be.Err(t, err, "dotnet build failed")
}

func TestBuildAndRunStreamsOutput(t *testing.T) {
	fake := requireTool(t, "echo")
	var out bytes.Buffer
	cfg := Config{Dir: t.TempDir(), Dotnet: fake, Project: "Echo", Stdout: &out}

	err := BuildAndRun(context.Background(), cfg, "")
	be.Err(t, err, nil)

	want := "exec " + filepath.Join(cfg.Dir, "Echo", "bin", "Debug", "net6.0", "Echo.dll") + "\n"
	be.Equal(t, out.String(), want)
}

func TestRunHonorsContext(t *testing.T) {
	fake := requireTool(t, "echo")
	p, err := Write(Config{Dir: t.TempDir(), Dotnet: fake}, "")
	be.Err(t, err, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = p.Run(ctx)
	be.True(t, err != nil)
}
