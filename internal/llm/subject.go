package llm

import "context"

// Purpose says why the tutor was asked.
type Purpose string

const (
	// PurposeChat is a message in a course's tutor conversation.
	PurposeChat Purpose = "chat"
	// PurposeExplain is a one-off structured explanation of a question.
	PurposeExplain Purpose = "explain"
)

// Subject is what a request is about. It travels in the context so the
// request log can attribute each call to a course and question.
type Subject struct {
	Purpose    Purpose
	CourseID   string
	QuestionID string
}

type subjectKey struct{}

// About attaches sub to ctx.
func About(ctx context.Context, sub Subject) context.Context {
	return context.WithValue(ctx, subjectKey{}, sub)
}

// SubjectFrom returns the subject attached to ctx, if any.
func SubjectFrom(ctx context.Context) (Subject, bool) {
	sub, ok := ctx.Value(subjectKey{}).(Subject)
	return sub, ok
}
