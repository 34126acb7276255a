package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/p-blackswan/site-agent/internal/action"
	"github.com/p-blackswan/site-agent/internal/site"
)

var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Apply a batch of actions to a content model file",
	Long: `Reads a content model and a JSON array of actions, applies them in order and
prints one row per action. The resulting model is written to --out, or to stdout
with --print-model.`,
	Example: `  siteagent apply --model site.json --actions batch.json --out site.next.json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		modelPath, _ := cmd.Flags().GetString("model")
		actionsPath, _ := cmd.Flags().GetString("actions")
		outPath, _ := cmd.Flags().GetString("out")
		printModel, _ := cmd.Flags().GetBool("print-model")
		jsonOut, _ := cmd.Flags().GetBool("json")

		model, err := readModel(modelPath)
		if err != nil {
			return err
		}
		var actions []action.Action
		if err := readJSON(actionsPath, &actions); err != nil {
			return err
		}

		exec := action.NewExecutor(action.DefaultRegistry(styleDefaultsFromFlags(cmd)), cliLogger(cmd))
		next, outcomes := exec.Apply(model, actions)

		if jsonOut {
			if err := writeJSON(os.Stdout, outcomes); err != nil {
				return err
			}
		} else {
			renderOutcomes(outcomes)
			fmt.Println(action.Summarize(outcomes))
		}

		if outPath != "" {
			f, err := os.Create(outPath)
			if err != nil {
				return fmt.Errorf("creating %s: %w", outPath, err)
			}
			defer f.Close()
			if err := writeJSON(f, next); err != nil {
				return err
			}
		} else if printModel {
			if err := writeJSON(os.Stdout, next); err != nil {
				return err
			}
		}

		if len(actions) > 0 && !action.AnySucceeded(outcomes) {
			return fmt.Errorf("no action succeeded")
		}
		return nil
	},
}

func init() {
	applyCmd.Flags().String("model", "", "path to the content model JSON")
	applyCmd.Flags().String("actions", "", "path to the actions JSON array")
	applyCmd.Flags().String("out", "", "write the resulting model to this path")
	applyCmd.Flags().Bool("print-model", false, "print the resulting model to stdout")
	applyCmd.Flags().Bool("json", false, "print outcomes as JSON")
	addStyleDefaultFlags(applyCmd)
	_ = applyCmd.MarkFlagRequired("model")
	_ = applyCmd.MarkFlagRequired("actions")
	rootCmd.AddCommand(applyCmd)
}

func renderOutcomes(outcomes []action.Outcome) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"#", "Action", "ID", "Result", "Detail"})
	for i, o := range outcomes {
		result, detail := "ok", o.Description
		if !o.Success {
			result, detail = "failed", o.Error
			if o.Code != "" {
				result = "failed (" + string(o.Code) + ")"
			}
		}
		t.AppendRow(table.Row{strconv.Itoa(i + 1), o.Action, o.ActionID, result, detail})
	}
	ok, failed := action.Counts(outcomes)
	t.AppendFooter(table.Row{"", "", "", fmt.Sprintf("%d ok / %d failed", ok, failed), ""})
	t.Render()
}

func addStyleDefaultFlags(cmd *cobra.Command) {
	cmd.Flags().String("accent", "#f59e0b", "accent color used when the model sets none")
	cmd.Flags().String("heading-font", "Inter", "heading font used when the model sets none")
	cmd.Flags().String("body-font", "Inter", "body font used when the model sets none")
}

func styleDefaultsFromFlags(cmd *cobra.Command) site.StyleDefaults {
	accent, _ := cmd.Flags().GetString("accent")
	heading, _ := cmd.Flags().GetString("heading-font")
	body, _ := cmd.Flags().GetString("body-font")
	return site.StyleDefaults{AccentColor: accent, HeadingFont: heading, BodyFont: body}
}

func readModel(path string) (site.ContentModel, error) {
	var m site.ContentModel
	if err := readJSON(path, &m); err != nil {
		return site.ContentModel{}, err
	}
	return m, nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}

func writeJSON(f *os.File, v any) error {
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
