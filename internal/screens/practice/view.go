package practice

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/examprep/internal/course"
	"github.com/abhisek/examprep/internal/ui/components"
	"github.com/abhisek/examprep/internal/ui/layout"
	"github.com/abhisek/examprep/internal/ui/theme"
)

func (p *PracticeScreen) View(width, height int) string {
	if p.errMsg != "" {
		return renderMessage(width, theme.Incorrect.Render("Error: "+p.errMsg))
	}
	if p.sess == nil {
		return renderMessage(width, theme.Hint.Render("Loading progress..."))
	}
	if p.confirmReset {
		return renderMessage(width, theme.Warning.Render("Reset all practice progress for this course? (y/n)"))
	}
	q, ok := p.sess.Current()
	switch {
	case !ok && p.sess.Total() == 0:
		return renderMessage(width, theme.Subtitle.Render("Nothing to practice: this course has no questions."))
	case !ok:
		msg := theme.Correct.Render("Every question is learned.") + "\n\n" +
			theme.Hint.Render("Press Ctrl+R to reset progress and start over.")
		if p.warning != "" {
			msg += "\n\n" + theme.Warning.Render(p.warning)
		}
		return renderMessage(width, msg)
	}

	inner := width - 4
	var b strings.Builder

	pos, n := p.sess.Position()
	info := fmt.Sprintf("  Turn %d  ·  Question %d/%d", p.sess.TurnNumber(), pos+1, n)
	if p.outcome == nil && p.sess.IsReview() {
		info += "  " + theme.Review.Render("REVIEW")
	}
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Secondary).Bold(true).Render(info))
	b.WriteString("\n")

	label := fmt.Sprintf("Mastery %d/%d", p.sess.Learned(), p.sess.Total())
	b.WriteString("  " + components.NewProgressBar(label, p.sess.Mastery(), true, min(inner, 60)).View())
	b.WriteString("\n")
	b.WriteString("  " + layout.Rule(inner))
	b.WriteString("\n\n")

	b.WriteString(renderQuestion(q, inner))
	b.WriteString("\n\n")

	var answer []string
	if p.outcome != nil {
		answer = q.AnswerKeys()
	}
	b.WriteString(p.choice.View(p.sess.Selection(), answer))

	if p.outcome != nil {
		b.WriteString("\n")
		b.WriteString(p.renderFeedback(q, inner))
	}

	if p.warning != "" {
		b.WriteString("\n")
		b.WriteString(theme.Warning.Render("  " + p.warning))
	}

	return b.String()
}

func (p *PracticeScreen) renderFeedback(q course.Question, width int) string {
	var b strings.Builder
	if p.outcome.Correct {
		b.WriteString(theme.Correct.Render("  Correct!"))
		if p.outcome.RemovedFromReview {
			b.WriteString(theme.Subtitle.Render("  Removed from review."))
		}
	} else {
		b.WriteString(theme.Incorrect.Render("  Incorrect."))
		b.WriteString(theme.Subtitle.Render("  Answer: " + strings.Join(q.AnswerKeys(), ", ")))
	}
	b.WriteString("\n")

	if q.Explanation != "" {
		b.WriteString("\n")
		b.WriteString(wrap(course.StripMarkup(q.Explanation), width))
		b.WriteString("\n")
	}

	switch {
	case p.explaining:
		b.WriteString("\n" + theme.Hint.Render("  Asking the tutor..."))
	case p.explanation != nil && p.explanation.Err != nil:
		b.WriteString("\n" + theme.Incorrect.Render("  Explain failed: "+p.explanation.Err.Error()))
	case p.explanation != nil:
		b.WriteString("\n" + renderExplanation(p.explanation, q, width))
	}
	return b.String()
}

func renderExplanation(msg *explainReadyMsg, q course.Question, width int) string {
	e := msg.Explanation
	var b strings.Builder
	b.WriteString(theme.AssistantLabel.Render("  Tutor"))
	if !e.AgreesWith(q) {
		b.WriteString(theme.Warning.Render(fmt.Sprintf("  (tutor picks %s)", strings.Join(e.AnswerKeys, ", "))))
	}
	b.WriteString("\n")
	for _, part := range []string{e.Analysis, e.WhyCorrect, e.WhyWrong, e.Conclusion} {
		if strings.TrimSpace(part) == "" {
			continue
		}
		b.WriteString(wrap(part, width))
		b.WriteString("\n")
	}
	return b.String()
}

func renderQuestion(q course.Question, width int) string {
	return lipgloss.NewStyle().
		Foreground(theme.Text).
		Bold(true).
		Width(width).
		PaddingLeft(2).
		Render(strings.TrimSpace(course.StripMarkup(q.Text)))
}

func wrap(s string, width int) string {
	return lipgloss.NewStyle().
		Foreground(theme.TextDim).
		Width(width).
		PaddingLeft(2).
		Render(strings.TrimSpace(s))
}

func renderMessage(width int, msg string) string {
	return lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Render("\n\n" + msg)
}
