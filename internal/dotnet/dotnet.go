// Package dotnet builds and runs generated C# programs with the .NET SDK.
//
// A Project is a directory holding GeneratedProgram.cs and a minimal SDK
// project file. Build runs `dotnet build` on it and Run executes the
// resulting assembly with `dotnet exec`, wiring the caller's stdin and
// stdout to the program.
package dotnet

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
)

// SourceFile is the name of the generated C# file inside a project.
const SourceFile = "GeneratedProgram.cs"

// Config controls where projects are written and which SDK runs them.
type Config struct {
	// Dotnet is the SDK executable. Defaults to "dotnet".
	Dotnet string
	// Framework is the TargetFramework moniker. Defaults to "net6.0".
	Framework string
	// Project names the project file and the output assembly.
	// Defaults to "MACSLangGeneratedApp".
	Project string
	// Dir is the parent directory of the project directory. Defaults to
	// the working directory.
	Dir string

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	Logger *log.Logger
}

func (c Config) withDefaults() Config {
	if c.Dotnet == "" {
		c.Dotnet = "dotnet"
	}
	if c.Framework == "" {
		c.Framework = "net6.0"
	}
	if c.Project == "" {
		c.Project = "MACSLangGeneratedApp"
	}
	if c.Dir == "" {
		c.Dir = "."
	}
	if c.Stdin == nil {
		c.Stdin = os.Stdin
	}
	if c.Stdout == nil {
		c.Stdout = os.Stdout
	}
	if c.Stderr == nil {
		c.Stderr = os.Stderr
	}
	if c.Logger == nil {
		c.Logger = log.New(io.Discard)
	}
	return c
}

// ProjectFile returns the contents of the SDK project file that compiles
// only GeneratedProgram.cs.
func ProjectFile(framework string) string {
	return fmt.Sprintf(`<Project Sdk="Microsoft.NET.Sdk">
  <PropertyGroup>
    <OutputType>Exe</OutputType>
    <TargetFramework>%s</TargetFramework>
    <ImplicitUsings>enable</ImplicitUsings>
    <Nullable>enable</Nullable>
    <EnableDefaultCompileItems>false</EnableDefaultCompileItems>
  </PropertyGroup>
  <ItemGroup>
    <Compile Include="%s" />
  </ItemGroup>
</Project>
`, framework, SourceFile)
}

// Project is a generated .NET project on disk.
type Project struct {
	cfg Config
	Dir string
}

// BuildError is returned when `dotnet build` exits unsuccessfully. Output
// holds everything the SDK printed.
type BuildError struct {
	Err    error
	Output string
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("dotnet build failed: %v", e.Err)
}

func (e *BuildError) Unwrap() error {
	return e.Err
}

// Write creates a fresh project directory holding csharp and its project
// file. An existing directory of the same name is replaced only when it is
// empty or holds the project file of an earlier Write.
func Write(cfg Config, csharp string) (*Project, error) {
	cfg = cfg.withDefaults()
	if err := checkProjectName(cfg.Project); err != nil {
		return nil, err
	}
	dir, err := filepath.Abs(filepath.Join(cfg.Dir, cfg.Project))
	if err != nil {
		return nil, err
	}

	if err := clearProjectDir(dir, cfg.Project); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating %s: %w", dir, err)
	}

	p := &Project{cfg: cfg, Dir: dir}
	if err := os.WriteFile(p.SourcePath(), []byte(csharp), 0o644); err != nil {
		return nil, fmt.Errorf("writing generated source: %w", err)
	}
	if err := os.WriteFile(p.ProjectPath(), []byte(ProjectFile(cfg.Framework)), 0o644); err != nil {
		return nil, fmt.Errorf("writing project file: %w", err)
	}
	cfg.Logger.Debug("wrote project", "dir", dir, "framework", cfg.Framework)
	return p, nil
}

// checkProjectName rejects names that would place the project anywhere
// but a direct child of Config.Dir.
func checkProjectName(name string) error {
	if name == "." || name == ".." || strings.ContainsAny(name, `/\`) || filepath.Base(name) != name {
		return fmt.Errorf("invalid project name %q: must be a plain directory name", name)
	}
	return nil
}

// clearProjectDir removes dir if it is a project directory from an earlier
// run. A missing or empty directory is fine; anything else is left alone.
func clearProjectDir(dir, project string) error {
	entries, err := os.ReadDir(dir)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil
	case err != nil:
		return fmt.Errorf("inspecting %s: %w", dir, err)
	case len(entries) == 0:
		return nil
	}
	if _, err := os.Stat(filepath.Join(dir, project+".csproj")); err != nil {
		return fmt.Errorf("refusing to replace %s: it does not contain %s.csproj", dir, project)
	}
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("clearing %s: %w", dir, err)
	}
	return nil
}

// SourcePath is the path of GeneratedProgram.cs.
func (p *Project) SourcePath() string {
	return filepath.Join(p.Dir, SourceFile)
}

// ProjectPath is the path of the .csproj file.
func (p *Project) ProjectPath() string {
	return filepath.Join(p.Dir, p.cfg.Project+".csproj")
}

// AssemblyPath is where a Debug build places the program assembly.
func (p *Project) AssemblyPath() string {
	return filepath.Join(p.Dir, "bin", "Debug", p.cfg.Framework, p.cfg.Project+".dll")
}

// Build compiles the project. The SDK output is only shown on failure,
// through the returned *BuildError.
func (p *Project) Build(ctx context.Context) error {
	args := []string{"build", p.Dir, "-c", "Debug", "--nologo"}
	p.cfg.Logger.Debug("building", "cmd", p.cfg.Dotnet+" "+strings.Join(args, " "))

	var out bytes.Buffer
	cmd := exec.CommandContext(ctx, p.cfg.Dotnet, args...)
	cmd.Dir = p.Dir
	cmd.Stdout = &out
	cmd.Stderr = &out
	if err := cmd.Run(); err != nil {
		return &BuildError{Err: err, Output: out.String()}
	}
	p.cfg.Logger.Info("build succeeded", "assembly", p.AssemblyPath())
	return nil
}

// Command returns the `dotnet exec` command for the built assembly without
// standard streams attached.
func (p *Project) Command(ctx context.Context) *exec.Cmd {
	cmd := exec.CommandContext(ctx, p.cfg.Dotnet, "exec", p.AssemblyPath())
	cmd.Dir = p.Dir
	return cmd
}

// Run executes the built assembly with the configured standard streams.
func (p *Project) Run(ctx context.Context) error {
	cmd := p.Command(ctx)
	cmd.Stdin = p.cfg.Stdin
	cmd.Stdout = p.cfg.Stdout
	cmd.Stderr = p.cfg.Stderr
	p.cfg.Logger.Debug("running", "cmd", cmd.String())
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("running %s: %w", filepath.Base(p.AssemblyPath()), err)
	}
	return nil
}

// BuildAndRun writes csharp to a project, builds it and runs it.
func BuildAndRun(ctx context.Context, cfg Config, csharp string) error {
	p, err := Write(cfg, csharp)
	if err != nil {
		return err
	}
	if err := p.Build(ctx); err != nil {
		return err
	}
	return p.Run(ctx)
}
