package main

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/p-blackswan/site-agent/internal/site"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check a content model file for invariant violations",
	RunE: func(cmd *cobra.Command, args []string) error {
		modelPath, _ := cmd.Flags().GetString("model")
		model, err := readModel(modelPath)
		if err != nil {
			return err
		}

		violations := site.Validate(model)
		if len(violations) == 0 {
			fmt.Printf("%s: valid (%d sections)\n", modelPath, len(model.Sections))
			return nil
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"Field", "Problem"})
		for _, v := range violations {
			t.AppendRow(table.Row{v.Field, v.Message})
		}
		t.Render()
		return fmt.Errorf("%s: %d violation(s)", modelPath, len(violations))
	},
}

func init() {
	validateCmd.Flags().String("model", "", "path to the content model JSON")
	_ = validateCmd.MarkFlagRequired("model")
	rootCmd.AddCommand(validateCmd)
}
