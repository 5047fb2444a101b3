package main

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"codewhisperer/internal/temporal"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))

	trendStyles = map[temporal.Trend]lipgloss.Style{
		temporal.TrendIncreasing: lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		temporal.TrendDecreasing: lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
		temporal.TrendStable:     lipgloss.NewStyle().Foreground(lipgloss.Color("7")),
		temporal.TrendCyclical:   lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
	}
)

func newInsightsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "insights",
		Short: "Print the aggregated temporal insight report",
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, kv, err := openEngine()
			if err != nil {
				return err
			}
			defer kv.Close()

			report := engine.TemporalInsights()
			engine.Close()

			fmt.Println(headerStyle.Render("Evolution summary"))
			for _, line := range report.EvolutionSummary {
				fmt.Println("  " + line)
			}

			fmt.Println(headerStyle.Render("Trending patterns"))
			if len(report.TrendingPatterns) == 0 {
				fmt.Println(dimStyle.Render("  none tracked yet"))
			}
			for _, tp := range report.TrendingPatterns {
				style := trendStyles[tp.Trend]
				fmt.Printf("  %-40s %s (%.2f)\n", tp.PatternID, style.Render(string(tp.Trend)), tp.Confidence)
			}

			if len(report.CyclicalPatterns) > 0 {
				fmt.Println(headerStyle.Render("Cyclical patterns"))
				for _, id := range report.CyclicalPatterns {
					fmt.Println("  " + id)
				}
			}

			fmt.Println(headerStyle.Render("Recent habit changes"))
			if len(report.RecentChanges) == 0 {
				fmt.Println(dimStyle.Render("  none in the last 30 days"))
			}
			for _, ch := range report.RecentChanges {
				fmt.Printf("  %s  %-12s %s -> %s (%.2f)\n",
					ch.Timestamp.Format("2006-01-02"), ch.Language,
					ch.OldPattern, ch.NewPattern, ch.Confidence)
			}
			return nil
		},
	}
}
