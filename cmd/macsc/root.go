package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/macslang/macs"
	"github.com/macslang/macs/internal/dotnet"
	"github.com/spf13/cobra"
)

// errReported means the failure was already shown to the user.
var errReported = errors.New("compilation failed")

type options struct {
	verbose bool
	out     string
	sample  string

	dotnet    string
	framework string
	project   string

	logger *log.Logger
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "macsc",
		Short: "MACSLang to C# compiler",
		Long: `macsc compiles MACSLang programs to C# and runs them with the .NET SDK.

Every phase can be run on its own, either on a file or on one of the
built-in samples (` + strings.Join(macs.SampleNames(), ", ") + `).`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			opts.logger = log.NewWithOptions(cmd.ErrOrStderr(), log.Options{Prefix: "macsc"})
			if opts.verbose {
				opts.logger.SetLevel(log.DebugLevel)
			}
		},
	}

	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log every step")
	root.PersistentFlags().StringVarP(&opts.out, "out", "o", "", "write output to this path instead of stdout")
	root.PersistentFlags().StringVarP(&opts.sample, "sample", "s", "", "use a built-in sample instead of a file")

	for _, p := range phases {
		root.AddCommand(newPhaseCmd(opts, p))
	}
	root.AddCommand(newRunCmd(opts), newMenuCmd(opts))
	return root
}

func newPhaseCmd(opts *options, p phase) *cobra.Command {
	return &cobra.Command{
		Use:   p.name + " [file]",
		Short: p.desc,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, src, err := opts.source(args)
			if err != nil {
				return err
			}
			opts.logger.Debug("running phase", "phase", p.name, "source", name)

			out, err := p.run(src)
			if err != nil {
				if out != "" {
					fmt.Fprint(cmd.OutOrStdout(), out)
				}
				return opts.report(cmd, src, err)
			}
			return opts.emit(cmd, out)
		},
	}
}

func newRunCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [file]",
		Short: "Compile a MACSLang program and run it with dotnet",
		Long: `run translates the program to C#, writes it together with a project file
into a fresh project directory, builds it with "dotnet build" and executes
the assembly. The program reads from stdin and writes to stdout.

--out selects the directory the project directory is created in.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, src, err := opts.source(args)
			if err != nil {
				return err
			}
			return opts.run(cmd, name, src)
		},
	}
	cmd.Flags().StringVar(&opts.dotnet, "dotnet", "dotnet", "dotnet executable")
	cmd.Flags().StringVar(&opts.framework, "framework", "net6.0", "target framework of the generated project")
	cmd.Flags().StringVar(&opts.project, "project", "MACSLangGeneratedApp", "name of the generated project")
	return cmd
}

func (o *options) dotnetConfig(cmd *cobra.Command) dotnet.Config {
	return dotnet.Config{
		Dotnet:    o.dotnet,
		Framework: o.framework,
		Project:   o.project,
		Dir:       o.out,
		Stdin:     cmd.InOrStdin(),
		Stdout:    cmd.OutOrStdout(),
		Stderr:    cmd.ErrOrStderr(),
		Logger:    o.logger,
	}
}

func (o *options) run(cmd *cobra.Command, name, src string) error {
	csharp, err := macs.Transpile(src)
	if err != nil {
		return o.report(cmd, src, err)
	}
	o.logger.Debug("generated C#", "source", name, "bytes", len(csharp))

	err = dotnet.BuildAndRun(cmd.Context(), o.dotnetConfig(cmd), csharp)
	var buildErr *dotnet.BuildError
	if errors.As(err, &buildErr) {
		fmt.Fprint(cmd.ErrOrStderr(), errorStyle.Render("dotnet build failed")+"\n"+buildErr.Output)
		return errReported
	}
	return err
}

// source returns the program selected by --sample or the file argument.
func (o *options) source(args []string) (name, src string, err error) {
	if o.sample != "" {
		if len(args) > 0 {
			return "", "", errors.New("pass either a file or --sample, not both")
		}
		sample, ok := macs.Samples[o.sample]
		if !ok {
			return "", "", fmt.Errorf("unknown sample %q (available: %s)", o.sample, strings.Join(macs.SampleNames(), ", "))
		}
		return "sample " + sample.Name, sample.Source, nil
	}
	if len(args) != 1 {
		return "", "", errors.New("expected a source file or --sample")
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", "", fmt.Errorf("read source: %w", err)
	}
	return args[0], string(data), nil
}

func (o *options) report(cmd *cobra.Command, src string, err error) error {
	fmt.Fprint(cmd.ErrOrStderr(), renderError(src, err))
	return errReported
}

func (o *options) emit(cmd *cobra.Command, out string) error {
	if o.out == "" {
		_, err := fmt.Fprint(cmd.OutOrStdout(), out)
		return err
	}
	if err := os.WriteFile(o.out, []byte(out), 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	o.logger.Info("wrote output", "path", o.out)
	return nil
}
