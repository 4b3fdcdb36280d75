// Command corec is the CLI entry point driving internal/elaborate,
// internal/eval and internal/solver end to end, modeled on the teacher's
// cmd/ailang/main.go subcommand dispatch but built on
// github.com/spf13/cobra (the teacher's go.mod declared cobra/pflag as
// dependencies its own snapshot never imported; corec is their first
// consumer).
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/corelang/corec/internal/effects"
	"github.com/corelang/corec/internal/elaborate"
	"github.com/corelang/corec/internal/eval"
	"github.com/corelang/corec/internal/fixtures"
	"github.com/corelang/corec/internal/manifestcfg"
	"github.com/corelang/corec/internal/repl"
	"github.com/corelang/corec/internal/rtctx"
	"github.com/corelang/corec/internal/solver"
	"github.com/corelang/corec/internal/term"
)

// Version is set by ldflags during release builds.
var Version = "dev"

var (
	green = color.New(color.FgGreen).SprintFunc()
	red   = color.New(color.FgRed).SprintFunc()
	cyan  = color.New(color.FgCyan).SprintFunc()
)

var manifestPath string

func main() {
	root := &cobra.Command{
		Use:   "corec",
		Short: "corec drives the dependently-typed core's infer/check/evaluate/flow surface",
	}
	root.PersistentFlags().StringVar(&manifestPath, "manifest", "", "YAML manifest of host relations/effects to install (default: built-ins, nothing granted)")

	root.AddCommand(versionCmd(), listCmd(), checkCmd(), evalCmd(), replCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", red("error"), err)
		os.Exit(1)
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("corec %s\n", Version)
		},
	}
}

func listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "list the named fixture programs eval/check operate on",
		Run: func(cmd *cobra.Command, args []string) {
			for _, p := range fixtures.Registry() {
				fmt.Printf("%-14s %s\n", cyan(p.Name), p.Description)
			}
		},
	}
}

func loadManifest() (*solver.State, effects.Grant, error) {
	st := solver.New()
	m := manifestcfg.Default()
	if manifestPath != "" {
		loaded, err := manifestcfg.Load(manifestPath)
		if err != nil {
			return nil, nil, err
		}
		m = loaded
	}
	grant, err := m.Apply(st)
	if err != nil {
		return nil, nil, err
	}
	return st, grant, nil
}

func checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <fixture>",
		Short: "run infer against a fixture program and print its inferred type",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, ok := fixtures.Lookup(args[0])
			if !ok {
				return fmt.Errorf("no fixture named %q (see `corec list`)", args[0])
			}
			st, _, err := loadManifest()
			if err != nil {
				return err
			}
			e := elaborate.New(st)
			typ, usages, _, err := e.Infer(p.Term, rtctx.NewTypechecking())
			if err != nil {
				return err
			}
			fmt.Printf("%s : %s\n", green(p.Name), typ)
			fmt.Printf("usages: %v\n", usages)
			return nil
		},
	}
}

func evalCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "eval <fixture>",
		Short: "infer then evaluate a fixture program and print its resulting value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, ok := fixtures.Lookup(args[0])
			if !ok {
				return fmt.Errorf("no fixture named %q (see `corec list`)", args[0])
			}
			st, _, err := loadManifest()
			if err != nil {
				return err
			}
			e := elaborate.New(st)
			tc := rtctx.NewTypechecking()
			_, _, typed, err := e.Infer(p.Term, tc)
			if err != nil {
				return err
			}
			val, err := eval.Evaluate(typed, tc.RT, st)
			if err != nil {
				return err
			}
			if asJSON {
				b, err := term.EncodeHost(val)
				if err != nil {
					return err
				}
				fmt.Println(string(b))
				return nil
			}
			fmt.Printf("%s => %s\n", green(p.Name), val)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the result as host JSON instead of the value printer")
	return cmd
}

func replCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "start an interactive loop over infer/evaluate",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, grant, err := loadManifest()
			if err != nil {
				return err
			}
			r := &repl.REPL{St: st, Elab: elaborate.New(st), Grant: grant, Version: Version}
			r.Start(os.Stdout)
			return nil
		},
	}
}
