package cmd

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/examprep/internal/course"
	"github.com/abhisek/examprep/internal/llm"
	"github.com/abhisek/examprep/internal/store"
)

var llmCmd = &cobra.Command{
	Use:   "llm",
	Short: "Inspect tutor requests",
	Long: "Every chat message and explanation sent to the LLM provider is logged with " +
		"the course and question it was about.",
}

var llmListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent tutor requests",
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := store.QueryOpts{}
		opts.Limit, _ = cmd.Flags().GetInt("limit")
		opts.Purpose, _ = cmd.Flags().GetString("purpose")
		opts.CourseID, _ = cmd.Flags().GetString("course")
		switch llm.Purpose(opts.Purpose) {
		case "", llm.PurposeChat, llm.PurposeExplain:
		default:
			return fmt.Errorf("unknown purpose %q: use %s or %s", opts.Purpose, llm.PurposeChat, llm.PurposeExplain)
		}

		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		events, err := e.store.EventRepo().QueryLLMEvents(cmd.Context(), opts)
		if err != nil {
			return fmt.Errorf("query requests: %w", err)
		}
		if len(events) == 0 {
			fmt.Println("No tutor requests found.")
			return nil
		}

		names := courseNames(cmd.Context(), e)
		fmt.Printf("%-5s  %-16s  %-7s  %-24s  %-10s  %-24s  %11s  %6s  %s\n",
			"ID", "Time", "Purpose", "Course", "Question", "Model", "Tokens", "Ms", "OK")
		fmt.Println(strings.Repeat("─", 124))
		for _, ev := range events {
			ok := "✓"
			if !ev.Success {
				ok = "✗"
			}
			fmt.Printf("%-5d  %-16s  %-7s  %-24s  %-10s  %-24s  %11s  %6d  %s\n",
				ev.ID,
				ev.Timestamp.Local().Format("2006-01-02 15:04"),
				ev.Purpose,
				truncate(orDash(names.label(ev.CourseID)), 24),
				truncate(orDash(ev.QuestionID), 10),
				truncate(ev.Model, 24),
				fmt.Sprintf("%d/%d", ev.InputTokens, ev.OutputTokens),
				ev.LatencyMs,
				ok,
			)
		}
		return nil
	},
}

var llmViewCmd = &cobra.Command{
	Use:   "view <id>",
	Short: "Show one tutor request with its question, prompt and reply",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid ID %q", args[0])
		}

		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		ctx := cmd.Context()
		ev, err := e.store.EventRepo().GetLLMEvent(ctx, id)
		if err != nil {
			return fmt.Errorf("get request: %w", err)
		}
		if ev == nil {
			return fmt.Errorf("request %d not found", id)
		}

		fmt.Printf("ID:        %d\n", ev.ID)
		fmt.Printf("Time:      %s\n", ev.Timestamp.Local().Format("2006-01-02 15:04:05"))
		fmt.Printf("Purpose:   %s\n", ev.Purpose)
		fmt.Printf("Course:    %s\n", orDash(courseNames(ctx, e).label(ev.CourseID)))
		fmt.Printf("Question:  %s\n", orDash(ev.QuestionID))
		fmt.Printf("Provider:  %s (%s)\n", ev.Provider, ev.Model)
		fmt.Printf("Tokens:    %d in / %d out", ev.InputTokens, ev.OutputTokens)
		if usd, ok := llm.EstimateCost(ev.Model, ev.InputTokens, ev.OutputTokens); ok && ev.Success {
			fmt.Printf("  (%s)", formatCost(usd))
		}
		fmt.Println()
		fmt.Printf("Latency:   %dms\n", ev.LatencyMs)
		if ev.ErrorMessage != "" {
			fmt.Printf("Error:     %s\n", ev.ErrorMessage)
		}

		if q, ok := lookupQuestion(ctx, e, ev.CourseID, ev.QuestionID); ok {
			section("QUESTION")
			printQuestion(q)
			fmt.Printf("Bank answer: %s\n", q.Answer)
		}
		section("REQUEST")
		fmt.Println(orNotCaptured(ev.RequestBody))
		section("RESPONSE")
		fmt.Println(orNotCaptured(ev.ResponseBody))
		return nil
	},
}

var llmStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show tutor token usage and estimated cost",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		ctx := cmd.Context()
		events := e.store.EventRepo()
		byPurpose, err := events.LLMUsageByPurpose(ctx)
		if err != nil {
			return fmt.Errorf("query usage: %w", err)
		}
		if len(byPurpose) == 0 {
			fmt.Println("No tutor requests recorded yet.")
			return nil
		}

		rule := strings.Repeat("─", 72)
		fmt.Println("Usage by purpose")
		fmt.Println(rule)
		fmt.Printf("%-16s  %6s  %10s  %10s  %10s  %8s\n", "Purpose", "Calls", "Input", "Output", "Total", "Avg Ms")
		fmt.Println(rule)
		var calls, in, out int
		for _, u := range byPurpose {
			fmt.Printf("%-16s  %6d  %10d  %10d  %10d  %8d\n",
				u.Purpose, u.Calls, u.InputTokens, u.OutputTokens, u.InputTokens+u.OutputTokens, u.AvgLatencyMs)
			calls += u.Calls
			in += u.InputTokens
			out += u.OutputTokens
		}
		fmt.Println(rule)
		fmt.Printf("%-16s  %6d  %10d  %10d  %10d\n", "TOTAL", calls, in, out, in+out)

		byModel, err := events.LLMUsageByModel(ctx)
		if err != nil {
			return fmt.Errorf("query model usage: %w", err)
		}
		if len(byModel) == 0 {
			return nil
		}

		fmt.Println()
		fmt.Println("Estimated cost (USD)")
		fmt.Println(rule)
		fmt.Printf("%-32s  %6s  %10s  %10s  %9s\n", "Model", "Calls", "Input", "Output", "Cost")
		fmt.Println(rule)
		var total float64
		var unpriced []string
		for _, u := range byModel {
			cost := "?"
			if usd, ok := llm.EstimateCost(u.Model, u.InputTokens, u.OutputTokens); ok {
				total += usd
				cost = formatCost(usd)
			} else {
				unpriced = append(unpriced, u.Model)
			}
			fmt.Printf("%-32s  %6d  %10d  %10d  %9s\n", truncate(u.Model, 32), u.Calls, u.InputTokens, u.OutputTokens, cost)
		}
		fmt.Println(rule)
		label := "TOTAL"
		if len(unpriced) > 0 {
			label = "TOTAL (partial)"
		}
		fmt.Printf("%-32s  %6s  %10s  %10s  %9s\n", label, "", "", "", formatCost(total))
		if len(unpriced) > 0 {
			fmt.Printf("\nNo price known for: %s\n", strings.Join(unpriced, ", "))
		}
		return nil
	},
}

// courseIndex maps course IDs to names for display.
type courseIndex map[string]string

func courseNames(ctx context.Context, e *env) courseIndex {
	idx := courseIndex{}
	courses, err := e.courses.List(ctx)
	if err != nil {
		return idx
	}
	for _, c := range courses {
		idx[c.ID] = c.Name
	}
	return idx
}

// label names a course, keeping the ID of courses deleted since.
func (idx courseIndex) label(id string) string {
	if name, ok := idx[id]; ok {
		return name
	}
	return id
}

func lookupQuestion(ctx context.Context, e *env, courseID, questionID string) (course.Question, bool) {
	if courseID == "" || questionID == "" {
		return course.Question{}, false
	}
	c, err := e.courses.Get(ctx, courseID)
	if err != nil || c == nil {
		return course.Question{}, false
	}
	return c.Question(questionID)
}

func section(title string) {
	rule := strings.Repeat("─", 60)
	fmt.Println()
	fmt.Println(rule)
	fmt.Println(title)
	fmt.Println(rule)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func orNotCaptured(s string) string {
	if s == "" {
		return "(not captured)"
	}
	return s
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}

func formatCost(usd float64) string {
	if usd < 0.01 {
		return fmt.Sprintf("$%.4f", usd)
	}
	return fmt.Sprintf("$%.2f", usd)
}

func init() {
	llmListCmd.Flags().IntP("limit", "n", 20, "Number of requests to show")
	llmListCmd.Flags().StringP("purpose", "p", "", "Only show chat or explain requests")
	llmListCmd.Flags().StringP("course", "c", "", "Only show requests about this course ID")

	llmCmd.AddCommand(llmListCmd, llmViewCmd, llmStatsCmd)
}
