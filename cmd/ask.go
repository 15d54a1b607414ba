package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/examprep/internal/chat"
	"github.com/abhisek/examprep/internal/course"
)

var askCmd = &cobra.Command{
	Use:   "ask <course-id> <question-id>",
	Short: "Ask the tutor to explain one question",
	Long: "Sends the question to the configured LLM provider. The exchange is added to the " +
		"course's chat unless --structured is given, which prints a one-off structured explanation.",
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		c, err := getCourse(cmd, e, args[0])
		if err != nil {
			return err
		}
		q, ok := c.Question(args[1])
		if !ok {
			return fmt.Errorf("course %q has no question %q", c.ID, args[1])
		}

		provider, timeout := newProvider(cmd, e)
		svc := chat.NewService(provider, e.progress, e.settings, timeout, e.log)
		if !svc.Available() {
			return chat.ErrNotConfigured
		}

		printQuestion(q)

		if structured, _ := cmd.Flags().GetBool("structured"); structured {
			ex, err := svc.Explain(cmd.Context(), c.ID, q)
			if err != nil {
				return fmt.Errorf("explain: %w", err)
			}
			fmt.Printf("Tutor's answer:  %s", strings.Join(ex.AnswerKeys, ", "))
			if !ex.AgreesWith(q) {
				fmt.Printf("  (bank says %s)", q.Answer)
			}
			fmt.Println()
			fmt.Println()
			fmt.Println("Analysis:\n" + ex.Analysis + "\n")
			fmt.Println("Why it is correct:\n" + ex.WhyCorrect + "\n")
			fmt.Println("Why the others are wrong:\n" + ex.WhyWrong + "\n")
			fmt.Println("Conclusion:\n" + ex.Conclusion)
			return nil
		}

		reply, err := svc.AskAboutQuestion(cmd.Context(), c.ID, q)
		if err != nil {
			return fmt.Errorf("ask tutor: %w", err)
		}
		fmt.Println(reply.Content)
		return nil
	},
}

func printQuestion(q course.Question) {
	fmt.Println(course.StripMarkup(q.Text))
	fmt.Println()
	for _, k := range q.OptionKeys() {
		fmt.Printf("  %s. %s\n", k, course.StripMarkup(q.Options[k]))
	}
	fmt.Println(strings.Repeat("─", 60))
}

func init() {
	askCmd.Flags().Bool("structured", false, "Print a structured explanation without touching the chat history")
}
