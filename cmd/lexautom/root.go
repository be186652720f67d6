package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "lexautom",
	Short: "Compile scanner rules into minimal DFAs",
	Long: `lexautom provides two features:
* Compiles a rule specification into one minimal DFA per lexical state.
* Describes a compiled automaton.
  This feature is primarily aimed at debugging the rule specification.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return err
	}
	return nil
}
