package cmd

import (
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage sondetracker configuration",
}

func init() {
	configCmd.AddCommand(configNewCmd)
	configNewCmd.Flags().BoolVar(&configNewAsEnvFlag, "env", false, "print environment variable exports instead of TOML")
}
