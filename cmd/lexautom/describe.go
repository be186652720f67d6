package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/nihei9/lexautom/spec"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "describe automaton",
		Short: "Print a summary of a compiled automaton",
		Long: `describe prints the lexical states, the alphabet, the actions, and the state counts of a compiled automaton.
As use ` + "`lexautom compile`" + `, you can generate the automaton.`,
		Example: `  lexautom describe automaton.json`,
		Args:    cobra.ExactArgs(1),
		RunE:    runDescribe,
	}
	rootCmd.AddCommand(cmd)
}

func runDescribe(cmd *cobra.Command, args []string) error {
	caut, err := readCompiledAutomaton(args[0])
	if err != nil {
		return fmt.Errorf("Cannot read a compiled automaton: %w", err)
	}
	writeDescription(os.Stdout, caut)
	return nil
}

func writeDescription(w io.Writer, caut *spec.CompiledAutomaton) {
	fmt.Fprintf(w, "Lexical states: %v\n", strings.Join(caut.Conditions, ", "))
	fmt.Fprintf(w, "Alphabet: %v symbols\n", len(caut.Alphabet))
	fmt.Fprintf(w, "NFA states: %v\n", caut.NFAStateCount)
	fmt.Fprintf(w, "Actions:\n")
	for id, act := range caut.Actions {
		fmt.Fprintf(w, "  #%v %v (rule #%v)", id, act.Action, act.Rule)
		if act.Kind != "none" {
			fmt.Fprintf(w, " %v(%v)", act.Kind, act.Value)
		}
		fmt.Fprintf(w, "\n")
	}
	fmt.Fprintf(w, "DFAs:\n")
	for i, tab := range caut.DFAs {
		name := "(lookahead)"
		if i < len(caut.Conditions) {
			name = caut.Conditions[i]
		}
		accepting := 0
		for _, acc := range tab.AcceptingStates {
			if acc != 0 {
				accepting++
			}
		}
		fmt.Fprintf(w, "  #%v %v: %v states, %v accepting\n", i, name, tab.RowCount-1, accepting)
	}
}

func readCompiledAutomaton(path string) (*spec.CompiledAutomaton, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("Cannot open the compiled automaton file %s: %w", path, err)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	caut := &spec.CompiledAutomaton{}
	err = json.Unmarshal(data, caut)
	if err != nil {
		return nil, err
	}
	return caut, nil
}
