package cli

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/robalobadob/homophones/internal/daily"
	"github.com/robalobadob/homophones/internal/puzzles"
)

var puzzlesDate string

var puzzlesCmd = &cobra.Command{
	Use:   "puzzles",
	Short: "Validate the challenge catalog and show the pick for a day",
	RunE:  runPuzzles,
}

func init() {
	puzzlesCmd.Flags().StringVar(&puzzlesDate, "date", "", "Day to resolve as YYYY-MM-DD (default today, UTC)")
	rootCmd.AddCommand(puzzlesCmd)
}

func runPuzzles(cmd *cobra.Command, _ []string) error {
	cat, err := puzzles.Load(cfg.PuzzlesFile)
	if err != nil {
		return err
	}
	day := time.Now()
	if puzzlesDate != "" {
		if day, err = daily.ParseDateKey(puzzlesDate); err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTHEME\tDIFFICULTY\tWORDS\tHINTS\tDATE")
	for _, p := range cat.All() {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%s\n",
			p.ID, p.ThemeName, p.Difficulty, len(p.CorrectWords), len(p.Hints), p.Date)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	pick, err := cat.ForDate(day, cfg.DailySalt)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "\n%s: %s (%s)\n", daily.DateKey(day), pick.ID, pick.ThemeName)
	return nil
}
