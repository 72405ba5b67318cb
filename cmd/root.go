package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "auth-service",
	Short: "User registration, login and role-based access control",
	Long: `auth-service issues signed bearer tokens for registered users and
guards routes by role. Usage:

	auth-service serve
	auth-service migrate up
	auth-service hash-password
`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and runs it.
// This is called by main.main(). It only needs to happen once.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
