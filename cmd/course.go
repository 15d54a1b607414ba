package cmd

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/examprep/internal/course"
	"github.com/abhisek/examprep/internal/store"
)

var courseCmd = &cobra.Command{
	Use:   "course",
	Short: "Import and manage question banks",
}

var courseImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import a JSON or YAML question bank as a new course",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		bank, err := course.LoadFile(args[0])
		if err != nil {
			return err
		}
		if name, _ := cmd.Flags().GetString("name"); name != "" {
			bank.Name = name
		}

		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		c, err := e.courses.Create(cmd.Context(), bank)
		if err != nil {
			return fmt.Errorf("import course: %w", err)
		}
		fmt.Printf("Imported %q (%d questions) as %s\n", c.Name, len(c.Questions), c.ID)
		return nil
	},
}

var courseListCmd = &cobra.Command{
	Use:   "list",
	Short: "List imported courses",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		courses, err := e.courses.List(cmd.Context())
		if err != nil {
			return fmt.Errorf("list courses: %w", err)
		}
		if len(courses) == 0 {
			fmt.Println("No courses yet. Import one with: examprep course import <file>")
			return nil
		}

		fmt.Printf("%-32s  %-32s  %9s  %s\n", "ID", "Name", "Questions", "Created")
		fmt.Println(strings.Repeat("─", 96))
		for _, c := range courses {
			fmt.Printf("%-32s  %-32s  %9d  %s\n",
				c.ID,
				truncate(c.Name, 32),
				len(c.Questions),
				time.UnixMilli(c.CreatedAt).Local().Format("2006-01-02 15:04"),
			)
		}
		return nil
	},
}

var courseShowCmd = &cobra.Command{
	Use:   "show <course-id>",
	Short: "Show a course with its practice and exam progress",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
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
		p, err := e.progress.Load(ctx, c.ID)
		if err != nil {
			return fmt.Errorf("load progress: %w", err)
		}
		h, err := e.history.Load(ctx, c.ID)
		if err != nil {
			return fmt.Errorf("load exam history: %w", err)
		}

		fmt.Printf("ID:           %s\n", c.ID)
		fmt.Printf("Name:         %s\n", c.Name)
		if c.Description != "" {
			fmt.Printf("Description:  %s\n", c.Description)
		}
		fmt.Printf("Questions:    %d\n", len(c.Questions))
		fmt.Printf("Learned:      %d\n", len(p.LearnedQuestions))
		fmt.Printf("In review:    %d\n", len(p.IncorrectQuestions))
		fmt.Printf("Chat:         %d messages\n", len(p.ChatHistory))
		fmt.Printf("Exam seen:    %d\n", len(h.SeenIDs))
		fmt.Printf("Exam wrong:   %d\n", len(h.WrongIDs))

		if verbose, _ := cmd.Flags().GetBool("questions"); verbose {
			fmt.Println()
			fmt.Println(strings.Repeat("─", 60))
			for _, q := range c.Questions {
				fmt.Printf("%-12s  %s  [%s]\n", q.ID, truncate(course.StripMarkup(q.Text), 60), q.Answer)
			}
		}
		return nil
	},
}

var courseDeleteCmd = &cobra.Command{
	Use:   "delete <course-id>",
	Short: "Delete a course together with its progress and exam history",
	Args:  cobra.ExactArgs(1),
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
		if err := e.courses.Delete(cmd.Context(), c.ID); err != nil {
			return fmt.Errorf("delete course: %w", err)
		}
		fmt.Printf("Deleted %q\n", c.Name)
		return nil
	},
}

// getCourse loads a course by id with a friendlier error for unknown ids.
func getCourse(cmd *cobra.Command, e *env, id string) (*course.Course, error) {
	c, err := e.courses.Get(cmd.Context(), id)
	if errors.Is(err, store.ErrCourseNotFound) {
		return nil, fmt.Errorf("no course with id %q (see: examprep course list)", id)
	}
	if err != nil {
		return nil, fmt.Errorf("load course: %w", err)
	}
	return c, nil
}

func init() {
	courseImportCmd.Flags().String("name", "", "Course name (overrides the name in the file)")
	courseShowCmd.Flags().Bool("questions", false, "Also list every question with its answer")

	courseCmd.AddCommand(courseImportCmd)
	courseCmd.AddCommand(courseListCmd)
	courseCmd.AddCommand(courseShowCmd)
	courseCmd.AddCommand(courseDeleteCmd)
}
