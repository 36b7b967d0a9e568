package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hirio/csvforge/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter config file",
	Long: `Write the example configuration to ./config.toml (or --path).

Edit engine.roots before running anything else; every file operation
is confined to those directories.`,
	RunE: runInitCmd,
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().String("path", "config.toml", "Where to write the config")
	initCmd.Flags().Bool("force", false, "Overwrite an existing file")
}

func runInitCmd(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("path")
	force, _ := cmd.Flags().GetBool("force")

	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}

	if err := config.WriteDefault(path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	fmt.Printf("Wrote %s\n", path)
	return nil
}
