package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	tstarlark "github.com/neurodesk/tstring/pkg/starlark"
	"github.com/neurodesk/tstring/pkg/tstring"
	"github.com/neurodesk/tstring/pkg/validator"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

type app struct {
	v   *viper.Viper
	cfg config
	log *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New(), log: slog.Default()}
	root := &cobra.Command{
		Use:   "tstring",
		Short: "Parse, evaluate and render template string literals",
		Long: `tstring checks template string literals such as t"Hello {name!r:>10}",
evaluates their replacement fields as Starlark expressions against variable
bindings, and prints the resulting template or its rendered text.

Configuration is read from .tstring.yaml, TSTRING_* environment variables
and flags, in increasing priority.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(a.v, cmd.Flags())
			if err != nil {
				return err
			}
			a.cfg = cfg
			a.log = cfg.logger(cmd.ErrOrStderr())
			a.log.Debug("running command", "command", cmd.Name(), "config", a.v.ConfigFileUsed())
			return nil
		},
	}
	addConfigFlags(root.PersistentFlags())
	root.AddCommand(a.checkCmd(), a.inspectCmd(), a.renderCmd())
	return root
}

func (a *app) checkCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [literal]",
		Short: "Check the syntax of a template literal without evaluating it",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := literalSource(cmd, args)
			if err != nil {
				return err
			}
			lit, err := tstring.Parse(src, a.cfg.options()...)
			if err != nil {
				a.log.Error("check failed", "error", err)
				return fmt.Errorf("checking literal: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ok: %d strings, %d interpolations\n", len(lit.Strings), lit.NumFields())
			return nil
		},
	}
	addSourceFlags(cmd.Flags())
	return cmd
}

func (a *app) inspectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect [literal]",
		Short: "Evaluate a template literal and print its strings and interpolations",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ev, src, err := a.prepare(cmd, args)
			if err != nil {
				return err
			}
			tmpl, err := ev.Template(src)
			if err != nil {
				a.log.Error("evaluation failed", "error", err)
				return fmt.Errorf("evaluating literal: %w", err)
			}
			out := cmd.OutOrStdout()
			if a.cfg.Output == "text" {
				_, err := fmt.Fprintln(out, tmpl.String())
				return err
			}
			enc := yaml.NewEncoder(out)
			enc.SetIndent(2)
			if err := enc.Encode(tmpl); err != nil {
				return fmt.Errorf("encoding template: %w", err)
			}
			return enc.Close()
		},
	}
	addSourceFlags(cmd.Flags())
	addEvalFlags(cmd.Flags())
	cmd.Flags().StringP("output", "o", "yaml", "output format (yaml, text)")
	return cmd
}

func (a *app) renderCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render [literal]",
		Short: "Evaluate a template literal and print the rendered text",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ev, src, err := a.prepare(cmd, args)
			if err != nil {
				return err
			}
			s, err := ev.Render(src)
			if err != nil {
				a.log.Error("render failed", "error", err)
				return fmt.Errorf("rendering literal: %w", err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), s)
			return err
		},
	}
	addSourceFlags(cmd.Flags())
	addEvalFlags(cmd.Flags())
	return cmd
}

func addSourceFlags(fs *pflag.FlagSet) {
	fs.StringP("file", "f", "", "read the literal from a file ('-' for stdin)")
}

func addEvalFlags(fs *pflag.FlagSet) {
	fs.String("vars", "", "YAML file of variable bindings")
	fs.StringToString("set", nil, "bind NAME=VALUE; the value is read as a YAML scalar")
	fs.String("script", "", "Starlark file executed before the literal is evaluated")
}

// literalSource returns the literal named by --file or the argument.
func literalSource(cmd *cobra.Command, args []string) (string, error) {
	file, _ := cmd.Flags().GetString("file")
	var src string
	switch {
	case file == "-":
		b, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("reading literal: %w", err)
		}
		src = string(b)
	case file != "":
		b, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("reading literal: %w", err)
		}
		src = string(b)
	case len(args) == 1:
		src = args[0]
	default:
		return "", fmt.Errorf("no literal given: pass it as an argument or with --file")
	}
	src = strings.TrimRight(src, "\n")
	if err := validator.NotEmpty(src, "literal"); err != nil {
		return "", err
	}
	return src, nil
}

// prepare builds an evaluator from the bindings flags and reads the
// literal.
func (a *app) prepare(cmd *cobra.Command, args []string) (*tstarlark.Evaluator, string, error) {
	src, err := literalSource(cmd, args)
	if err != nil {
		return nil, "", err
	}
	ev := tstarlark.NewEvaluator(a.cfg.options()...)

	if path, _ := cmd.Flags().GetString("vars"); path != "" {
		vars, err := loadVars(path)
		if err != nil {
			return nil, "", err
		}
		if err := ev.SetGlobals(vars); err != nil {
			return nil, "", err
		}
		a.log.Debug("loaded variables", "file", path, "count", len(vars))
	}

	set, _ := cmd.Flags().GetStringToString("set")
	for name, raw := range set {
		if err := validator.Identifier(name, "--set variable"); err != nil {
			return nil, "", err
		}
		var v any
		if err := yaml.Unmarshal([]byte(raw), &v); err != nil || v == nil {
			v = raw
		}
		if err := ev.SetGlobal(name, v); err != nil {
			return nil, "", err
		}
	}

	if path, _ := cmd.Flags().GetString("script"); path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, "", fmt.Errorf("reading script: %w", err)
		}
		if _, err := ev.ExecFile(path, b); err != nil {
			a.log.Error("script failed", "file", path, "error", err)
			return nil, "", err
		}
	}
	return ev, src, nil
}

func loadVars(path string) (map[string]any, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	vars := map[string]any{}
	if err := yaml.NewDecoder(f).Decode(&vars); err != nil && err != io.EOF {
		return nil, fmt.Errorf("decoding variables file: %w", err)
	}
	err = validator.MapDict(vars, func(name string, _ any) error {
		return validator.Identifier(name, "variable")
	}, path)
	if err != nil {
		return nil, err
	}
	return vars, nil
}
