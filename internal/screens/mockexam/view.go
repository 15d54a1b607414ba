package mockexam

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/examprep/internal/course"
	"github.com/abhisek/examprep/internal/exam"
	"github.com/abhisek/examprep/internal/ui/layout"
	"github.com/abhisek/examprep/internal/ui/theme"
)

func (e *ExamScreen) View(width, height int) string {
	switch {
	case e.errMsg != "":
		return renderMessage(width, theme.Incorrect.Render("Error: "+e.errMsg))
	case e.sess == nil:
		return renderMessage(width, theme.Hint.Render("Preparing exam..."))
	case e.sess.Len() == 0:
		return renderMessage(width, theme.Subtitle.Render("Nothing to examine: this course has no questions."))
	case e.confirmSubmit:
		return renderMessage(width, e.renderSubmitConfirm())
	case e.confirmQuit:
		return renderMessage(width, theme.Warning.Render("Abandon this exam? Nothing will be recorded. (y/n)"))
	}

	inner := width - 4
	var b strings.Builder

	if e.score != nil {
		b.WriteString(renderScore(*e.score))
		b.WriteString("\n")
	}

	info := fmt.Sprintf("  Question %d/%d  ·  Answered %d  ·  Marked %d",
		e.idx+1, e.sess.Len(), e.sess.Answered(), e.sess.MarkedCount())
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Secondary).Bold(true).Render(info))
	if e.sess.Marked(e.idx) {
		b.WriteString("  " + theme.Marked.Render("MARKED"))
	}
	b.WriteString("\n")
	b.WriteString("  " + e.renderStrip(inner))
	b.WriteString("\n")
	b.WriteString("  " + layout.Rule(inner))
	b.WriteString("\n\n")

	q := e.sess.Questions()[e.idx]
	b.WriteString(lipgloss.NewStyle().
		Foreground(theme.Text).
		Bold(true).
		Width(inner).
		PaddingLeft(2).
		Render(strings.TrimSpace(course.StripMarkup(q.Text))))
	b.WriteString("\n\n")

	var answer []string
	if e.score != nil {
		answer = q.AnswerKeys()
	}
	b.WriteString(e.choice.View(e.sess.Selection(e.idx), answer))

	if e.score != nil {
		b.WriteString("\n")
		if e.sess.IsCorrect(e.idx) {
			b.WriteString(theme.Correct.Render("  Correct"))
		} else {
			b.WriteString(theme.Incorrect.Render("  Incorrect"))
			b.WriteString(theme.Subtitle.Render("  Answer: " + strings.Join(q.AnswerKeys(), ", ")))
		}
		b.WriteString("\n")
		if q.Explanation != "" {
			b.WriteString("\n")
			b.WriteString(lipgloss.NewStyle().
				Foreground(theme.TextDim).
				Width(inner).
				PaddingLeft(2).
				Render(strings.TrimSpace(course.StripMarkup(q.Explanation))))
			b.WriteString("\n")
		}
	}

	if e.warning != "" {
		b.WriteString("\n")
		b.WriteString(theme.Warning.Render("  " + e.warning))
	}
	return b.String()
}

func (e *ExamScreen) renderSubmitConfirm() string {
	unanswered := e.sess.Len() - e.sess.Answered()
	msg := "Submit the exam? (y/n)"
	if unanswered > 0 {
		msg = fmt.Sprintf("%d question(s) unanswered. Submit anyway? (y/n)", unanswered)
	}
	return theme.Warning.Render(msg)
}

// renderStrip draws one glyph per question: answered, unanswered, marked,
// and after submission correct or incorrect. The current question is
// highlighted.
func (e *ExamScreen) renderStrip(width int) string {
	var b strings.Builder
	for i := range e.sess.Len() {
		if i >= width {
			break
		}
		glyph, style := "○", lipgloss.NewStyle().Foreground(theme.TextDim)
		switch {
		case e.score != nil && e.sess.IsCorrect(i):
			glyph, style = "●", lipgloss.NewStyle().Foreground(theme.Success)
		case e.score != nil:
			glyph, style = "●", lipgloss.NewStyle().Foreground(theme.Error)
		case e.sess.Marked(i):
			glyph, style = "!", lipgloss.NewStyle().Foreground(theme.Accent)
		case !e.sess.Selection(i).Empty():
			glyph, style = "●", lipgloss.NewStyle().Foreground(theme.Secondary)
		}
		if i == e.idx {
			style = style.Underline(true).Bold(true)
		}
		b.WriteString(style.Render(glyph))
	}
	return b.String()
}

func renderScore(s exam.Score) string {
	verdict := theme.Correct.Render("PASS")
	if !s.Passed() {
		verdict = theme.Incorrect.Render("FAIL")
	}
	line := fmt.Sprintf("  Score: %d/%d (%d%%)  ", s.Correct, s.Total, s.Percentage)
	return theme.Title.Render(line) + verdict +
		theme.Subtitle.Render(fmt.Sprintf("  pass mark %d%%", exam.PassPercentage))
}

func renderMessage(width int, msg string) string {
	return lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Render("\n\n" + msg)
}
