package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show or change mock exam and tutor settings",
	Long:  "Without flags, prints the current settings. Flags update only the values given.",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		ctx := cmd.Context()
		flags := cmd.Flags()

		exam, err := e.settings.ExamSettings(ctx)
		if err != nil {
			return err
		}
		if flags.Changed("duration") || flags.Changed("questions") {
			if flags.Changed("duration") {
				d, _ := flags.GetDuration("duration")
				if d < time.Minute {
					return fmt.Errorf("--duration must be at least 1m, got %s", d)
				}
				exam.DurationSeconds = int(d / time.Second)
			}
			if flags.Changed("questions") {
				n, _ := flags.GetInt("questions")
				if n < 1 {
					return fmt.Errorf("--questions must be positive, got %d", n)
				}
				exam.TotalQuestions = n
			}
			if err := e.settings.SaveExamSettings(ctx, exam); err != nil {
				return fmt.Errorf("save exam settings: %w", err)
			}
		}

		chatCfg, err := e.settings.ChatConfig(ctx)
		if err != nil {
			return err
		}
		if flags.Changed("model") || flags.Changed("max-tokens") {
			if flags.Changed("model") {
				chatCfg.Model, _ = flags.GetString("model")
			}
			if flags.Changed("max-tokens") {
				n, _ := flags.GetInt("max-tokens")
				if n < 1 {
					return fmt.Errorf("--max-tokens must be positive, got %d", n)
				}
				chatCfg.MaxTokens = n
			}
			if err := e.settings.SaveChatConfig(ctx, chatCfg); err != nil {
				return fmt.Errorf("save chat settings: %w", err)
			}
		}

		model := chatCfg.Model
		if model == "" {
			model = "(provider default)"
		}
		fmt.Printf("Exam duration:   %s\n", exam.Duration())
		fmt.Printf("Exam questions:  %d\n", exam.TotalQuestions)
		fmt.Printf("Tutor model:     %s\n", model)
		fmt.Printf("Tutor max tokens: %d\n", chatCfg.MaxTokens)
		return nil
	},
}

func init() {
	settingsCmd.Flags().Duration("duration", 0, "Mock exam time limit (e.g. 90m, 2h)")
	settingsCmd.Flags().Int("questions", 0, "Number of questions per mock exam")
	settingsCmd.Flags().String("model", "", "Tutor model id; empty uses the provider default")
	settingsCmd.Flags().Int("max-tokens", 0, "Maximum tokens per tutor reply")
}
