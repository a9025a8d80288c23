package cmd

import (
	"context"
	"fmt"

	"github.com/abhisek/studyhall/internal/exam"
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show exam statistics",
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

		st, err := s.Attempts().Stats(context.Background())
		if err != nil {
			return fmt.Errorf("compute stats: %w", err)
		}
		if st.Attempts == 0 {
			fmt.Println("No exams taken yet.")
			return nil
		}

		fmt.Printf("Exams taken:      %d\n", st.Attempts)
		fmt.Printf("Passed:           %d (pass mark %.0f%%)\n", st.Passed, exam.PassThreshold)
		fmt.Printf("Average score:    %.1f%%\n", st.AveragePercentage)
		fmt.Printf("Best score:       %.1f%%\n", st.BestPercentage)
		fmt.Printf("Questions:        %d answered correctly of %d\n", st.CorrectAnswers, st.Questions)
		fmt.Printf("Time in exams:    %s\n", exam.FormatElapsed(st.TotalSeconds))
		return nil
	},
}
