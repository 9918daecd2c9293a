package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"booking-dialogue/internal/catalog"
	"booking-dialogue/internal/dialogue/nlu"
	"booking-dialogue/internal/dialogue/reply"
	"booking-dialogue/internal/models"

	"github.com/spf13/cobra"
)

var categoriesAgent string

func init() {
	rootCmd.AddCommand(categoriesCmd)
	categoriesCmd.Flags().StringVar(&categoriesAgent, "agent", "car-rental", "assistant whose prices are shown")
}

var categoriesCmd = &cobra.Command{
	Use:   "categories [text]",
	Short: "List rental categories or classify a phrase",
	Long: `Without arguments, lists the rental categories with the daily price and
vehicle count of the assistant's catalog. With text, shows which category
the text and service-value detectors pick for it.

Examples:
  dialogue-cli categories
  dialogue-cli categories "családi terepjáró"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if len(args) > 0 {
			text := strings.Join(args, " ")
			fmt.Fprintf(out, "text:    %s\n", detected(nlu.DetectCategoryFromText(text)))
			fmt.Fprintf(out, "service: %s\n", detected(nlu.NormalizeServiceValue(text)))
			return nil
		}

		agent, err := catalog.LoadAgent(catalogDir, categoriesAgent)
		if err != nil {
			return err
		}

		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "CATEGORY\tLABEL\tDAILY\tVEHICLES")
		for _, c := range models.Categories {
			daily := "-"
			if price, ok := agent.Pricing.BasePrice(c); ok {
				daily = reply.FormatHUF(price)
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%d\n", c, c.Label(), daily, agent.Data.Count(c))
		}
		return tw.Flush()
	},
}

func detected(c models.Category, ok bool) string {
	if !ok {
		return "-"
	}
	return fmt.Sprintf("%s (%s)", c, c.Label())
}
