package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/abhisek/studyhall/internal/export"
	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List completed exams",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		s, err := openStore(cmd, cfg)
		if err != nil {
			return err
		}
		defer s.Close()

		attempts, err := s.Attempts().List(context.Background(), limit)
		if err != nil {
			return fmt.Errorf("list attempts: %w", err)
		}
		if len(attempts) == 0 {
			fmt.Println("No exams taken yet.")
			return nil
		}

		fmt.Printf("%-19s  %-12s  %-30s  %-7s  %-7s  %-5s  %s\n",
			"Completed", "User", "Exam", "Score", "%", "Time", "Result")
		fmt.Println(strings.Repeat("─", 100))

		for _, a := range attempts {
			title := a.Title
			if len(title) > 30 {
				title = title[:30]
			}
			result := "FAIL"
			if a.Passed {
				result = "PASS"
			}
			fmt.Printf("%-19s  %-12s  %-30s  %-7s  %-7.1f  %-5s  %s\n",
				a.CompletedAt.Local().Format("2006-01-02 15:04:05"),
				a.Username,
				title,
				fmt.Sprintf("%d/%d", a.Correct, a.Total),
				a.Percentage,
				a.TimeTaken,
				result,
			)
		}
		return nil
	},
}

var historyExportCmd = &cobra.Command{
	Use:   "export <file.xlsx>",
	Short: "Export exam history to a spreadsheet",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		s, err := openStore(cmd, cfg)
		if err != nil {
			return err
		}
		defer s.Close()

		ctx := context.Background()
		attempts, err := s.Attempts().List(ctx, 0)
		if err != nil {
			return fmt.Errorf("list attempts: %w", err)
		}
		stats, err := s.Attempts().Stats(ctx)
		if err != nil {
			return fmt.Errorf("compute stats: %w", err)
		}

		f, err := os.Create(args[0])
		if err != nil {
			return fmt.Errorf("create %s: %w", args[0], err)
		}
		if err := export.WriteAttempts(f, attempts, stats); err != nil {
			f.Close()
			return fmt.Errorf("write workbook: %w", err)
		}
		if err := f.Close(); err != nil {
			return err
		}
		fmt.Printf("Exported %d attempt(s) to %s\n", len(attempts), args[0])
		return nil
	},
}

func init() {
	historyCmd.Flags().Int("limit", 20, "Maximum number of attempts to show (0 = all)")
	historyCmd.AddCommand(historyExportCmd)
}
