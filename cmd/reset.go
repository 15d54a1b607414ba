package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset <course-id>",
	Short: "Reset a course's practice progress or exam history",
	Long: "Without flags, wipes the practice record (learned and review sets and the chat). " +
		"--exam clears the exam history and --wrong only the exam mistakes. --all does both resets.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		examFlag, _ := cmd.Flags().GetBool("exam")
		wrongFlag, _ := cmd.Flags().GetBool("wrong")
		allFlag, _ := cmd.Flags().GetBool("all")

		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		ctx := cmd.Context()
		c, err := getCourse(cmd, e, args[0])
		if err != nil {
			return err
		}

		practice := allFlag || (!examFlag && !wrongFlag)
		if practice {
			if err := e.progress.Delete(ctx, c.ID); err != nil {
				return fmt.Errorf("reset progress: %w", err)
			}
			fmt.Println("Practice progress reset.")
		}

		switch {
		case allFlag || examFlag:
			if err := e.history.Reset(ctx, c.ID); err != nil {
				return fmt.Errorf("reset exam history: %w", err)
			}
			fmt.Println("Exam history reset.")
		case wrongFlag:
			if err := e.history.ResetWrong(ctx, c.ID); err != nil {
				return fmt.Errorf("reset exam mistakes: %w", err)
			}
			fmt.Println("Exam mistakes cleared.")
		}
		return nil
	},
}

func init() {
	resetCmd.Flags().Bool("exam", false, "Clear seen and wrong exam history")
	resetCmd.Flags().Bool("wrong", false, "Clear only the wrong exam ids")
	resetCmd.Flags().Bool("all", false, "Clear practice progress and exam history")
	resetCmd.MarkFlagsMutuallyExclusive("exam", "wrong", "all")
}
