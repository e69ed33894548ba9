package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/stornet-dev/stornet-node/pkg/policy"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "stornet-node",
	Short: "StorNet storage node",
	Long: `StorNet storage node serves object PUT, DELETE and HEAD requests,
resolves container placement from replication policies and keeps the
configured number of object copies alive in the background.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runNode(cfgFile)
	},
}

var policyCmd = &cobra.Command{
	Use:   "policy",
	Short: "Replication policy utilities",
}

var policyParseCmd = &cobra.Command{
	Use:   "parse <rule>",
	Short: "Parse a replication policy and print its canonical form",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := policy.Parse(args[0])
		if err != nil {
			return err
		}

		fmt.Println(policy.EncodeToString(p))

		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "path to config file")

	policyCmd.AddCommand(policyParseCmd)
	rootCmd.AddCommand(policyCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
