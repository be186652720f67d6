package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/nihei9/lexautom/compiler"
	"github.com/nihei9/lexautom/expr"
	"github.com/nihei9/lexautom/spec"
	"github.com/spf13/cobra"
)

var compileFlags = struct {
	debug  *bool
	output *string
}{}

func init() {
	cmd := &cobra.Command{
		Use:   "compile",
		Short: "Compile a rule specification into DFAs",
		Long:  `compile takes a rule specification and generates one minimal DFA per lexical state the rules are active in.`,
		Example: `  Read from/Write to the specified file:
    lexautom compile rules.json -o automaton.json
  Read from stdin and write to stdout:
    cat rules.json | lexautom compile`,
		Args: cobra.MaximumNArgs(1),
		RunE: runCompile,
	}
	compileFlags.debug = cmd.Flags().BoolP("debug", "d", false, "enable logging")
	compileFlags.output = cmd.Flags().StringP("output", "o", "", "output file path (default stdout)")
	rootCmd.AddCommand(cmd)
}

func runCompile(cmd *cobra.Command, args []string) (retErr error) {
	var path string
	if len(args) > 0 {
		path = args[0]
	}
	rspec, err := readRuleSpec(path)
	if err != nil {
		return fmt.Errorf("Cannot read a rule specification: %w", err)
	}
	err = rspec.Validate()
	if err != nil {
		return err
	}

	arena := expr.NewArena()
	rules := make([]compiler.Rule[spec.ActionName], len(rspec.Rules))
	for i, e := range rspec.Rules {
		x, err := e.Build(arena)
		if err != nil {
			return err
		}
		rules[i] = compiler.NewRule(x, e.Action)
	}

	diags := &compiler.DiagnosticList{}
	opts := []compiler.CompilerOption{
		compiler.WithReporter(diags),
	}
	if *compileFlags.debug {
		fileName := "lexautom-compile.log"
		f, err := os.OpenFile(fileName, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
		if err != nil {
			return fmt.Errorf("Cannot open the log file %s: %w", fileName, err)
		}
		defer f.Close()
		fmt.Fprintf(f, `lexautom compile starts.
Date time: %v
---
`, time.Now().Format(time.RFC3339))
		defer func() {
			fmt.Fprintf(f, "---\n")
			if retErr != nil {
				fmt.Fprintf(f, "lexautom compile failed: %v\n", retErr)
			} else {
				fmt.Fprintf(f, "lexautom compile succeeded.\n")
			}
		}()

		opts = append(opts, compiler.EnableLogging(f))
	}

	aut, err := compiler.Compile(arena, rules, opts...)
	for _, d := range *diags {
		if d.Severity == compiler.SeverityWarning {
			writeDiagnostic(os.Stderr, d, rules)
		}
	}
	if err != nil {
		return err
	}

	err = writeCompiledAutomaton(compiler.GenCompiledAutomaton(aut, func(a spec.ActionName) string {
		return a.String()
	}), *compileFlags.output)
	if err != nil {
		return fmt.Errorf("Cannot write a compiled automaton: %w", err)
	}

	return nil
}

func writeDiagnostic(w io.Writer, d *compiler.Diagnostic, rules []compiler.Rule[spec.ActionName]) {
	fmt.Fprintf(w, "%v: %v", d.Severity, d.Code)
	if d.Rule >= 0 {
		fmt.Fprintf(w, ": %v", rules[d.Rule].Action)
	}
	if d.Detail != "" {
		fmt.Fprintf(w, ": %v", d.Detail)
	}
	fmt.Fprintf(w, "\n")
}

func readRuleSpec(path string) (*spec.RuleSpec, error) {
	r := os.Stdin
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("Cannot open the rule specification file %s: %w", path, err)
		}
		defer f.Close()
		r = f
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	rspec := &spec.RuleSpec{}
	err = json.Unmarshal(data, rspec)
	if err != nil {
		return nil, err
	}
	return rspec, nil
}

func writeCompiledAutomaton(caut *spec.CompiledAutomaton, path string) error {
	out, err := json.Marshal(caut)
	if err != nil {
		return err
	}
	w := os.Stdout
	if path != "" {
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
		if err != nil {
			return fmt.Errorf("Cannot open the output file %s: %w", path, err)
		}
		defer f.Close()
		w = f
	}
	fmt.Fprintf(w, "%v\n", string(out))
	return nil
}
