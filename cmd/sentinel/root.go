package main

import (
	"os"

	"github.com/benmeehan/sentinel/internal/console"
	"github.com/benmeehan/sentinel/internal/constants"
	"github.com/mattn/go-colorable"
	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:          "sentinel",
	Short:        "Operator console for the lab sentinel microcontroller",
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup(configPath)
		if err != nil {
			return err
		}

		c := console.New(a.client, os.Stdin, colorable.NewColorableStdout(), console.NewStyler(os.Stdout), a.logger)
		return c.Run(cmd.Context())
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", constants.DefaultConfigFile, "configuration file (.json, .yaml or .toml)")
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(callCmd)
	rootCmd.AddCommand(watchCmd)
}
