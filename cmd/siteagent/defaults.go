package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/p-blackswan/site-agent/internal/onboarding"
)

var defaultsCmd = &cobra.Command{
	Use:   "defaults [business-type]",
	Short: "Show onboarding defaults for a business type",
	Long:  `Without an argument, lists the business types in the catalog. With one, prints the colors, fonts and sections a generated site starts from.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		catalog := onboarding.BuiltinCatalog()
		if path, _ := cmd.Flags().GetString("catalog"); path != "" {
			var err error
			if catalog, err = onboarding.LoadCatalog(path); err != nil {
				return err
			}
		}

		if len(args) == 0 {
			t := table.NewWriter()
			t.SetOutputMirror(os.Stdout)
			t.AppendHeader(table.Row{"Type", "Label", "Aliases"})
			for _, name := range catalog.Types() {
				d := catalog.Lookup(name)
				t.AppendRow(table.Row{name, d.Label, strings.Join(d.Aliases, ", ")})
			}
			t.Render()
			return nil
		}

		d := catalog.Lookup(args[0])
		fmt.Printf("%s (%s)\n", d.Label, d.BusinessType)
		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"Setting", "Value"})
		t.AppendRow(table.Row{"primary", d.Colors.Primary})
		t.AppendRow(table.Row{"secondary", d.Colors.Secondary})
		t.AppendRow(table.Row{"accent", d.Colors.Accent})
		t.AppendRow(table.Row{"heading font", d.Fonts.Heading})
		t.AppendRow(table.Row{"body font", d.Fonts.Body})
		for i, s := range d.DefaultSections {
			t.AppendRow(table.Row{fmt.Sprintf("section %d", i+1), fmt.Sprintf("%s (%s)", s.Title, s.Type)})
		}
		for _, tl := range d.Taglines {
			t.AppendRow(table.Row{"tagline", tl})
		}
		t.Render()
		return nil
	},
}

func init() {
	defaultsCmd.Flags().String("catalog", "", "YAML catalog to use instead of the built-in one")
	rootCmd.AddCommand(defaultsCmd)
}
