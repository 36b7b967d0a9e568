package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hirio/csvforge/internal/preset"
	"github.com/hirio/csvforge/internal/validate"
)

var presetCmd = &cobra.Command{
	Use:   "preset",
	Short: "Manage normalization presets",
}

var presetListCmd = &cobra.Command{
	Use:   "list",
	Short: "List preset names",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		names, err := a.presets.List()
		if err != nil {
			return err
		}
		if jsonOutput {
			printJSON(names)
			return nil
		}
		for _, n := range names {
			fmt.Println(n)
		}
		return nil
	},
}

var presetShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Print one preset",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		p, err := a.presets.Load(args[0])
		if err != nil {
			return err
		}
		if jsonOutput {
			printJSON(p)
			return nil
		}
		data, err := os.ReadFile(a.presets.Path(args[0]))
		if err != nil {
			return err
		}
		_, _ = os.Stdout.Write(data)
		return nil
	},
}

var presetInitCmd = &cobra.Command{
	Use:   "init <name>",
	Short: "Write a starter preset",
	Long: `Write a commented starter preset under the presets directory. Edit the
header map, required headers, and validation rules to fit the source
files the preset is for.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		name := args[0]
		if _, err := a.presets.Load(name); err == nil {
			return fmt.Errorf("preset %s already exists at %s", name, a.presets.Path(name))
		}

		trim, drop := true, true
		starter := &preset.Preset{
			HeaderMap:       map[string]string{"商品名": "title", "JANコード": "jan"},
			RequiredHeaders: []string{"jan"},
			Order:           []string{"jan", "title"},
			TrimWhitespace:  &trim,
			DropEmptyRows:   &drop,
			Validate: &validate.RuleSet{
				NumericColumns: []string{"jan"},
				UniqueColumns:  []string{"jan"},
			},
		}
		if err := a.presets.Save(name, starter); err != nil {
			return err
		}
		fmt.Printf("Wrote %s\n", a.presets.Path(name))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(presetCmd)
	presetCmd.AddCommand(presetListCmd)
	presetCmd.AddCommand(presetShowCmd)
	presetCmd.AddCommand(presetInitCmd)
}
