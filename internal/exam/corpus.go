package exam

import (
	"fmt"

	"github.com/jonathan/uniadmit/internal/types"
)

// NormalizeQuestion applies the corpus conventions: an ungraded question is
// worth 0 points and an essay carries no options.
func NormalizeQuestion(q types.ExamQuestion) types.ExamQuestion {
	if !q.IsGraded {
		q.Score = 0
	}
	if q.Type == types.QuestionEssay {
		q.Options = nil
	} else {
		q.Options = append([]types.QuestionOption{}, q.Options...)
	}
	return q
}

// ValidateQuestion checks a question before it is saved to the corpus.
func ValidateQuestion(q types.ExamQuestion) error {
	invalid := func(field, format string, args ...any) error {
		return &types.ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
	}
	if q.SuiteID == "" {
		return invalid("suite_id", "question must belong to a suite")
	}
	if q.Text == "" {
		return invalid("text", "question text is required")
	}
	if !q.Type.Valid() {
		return invalid("type", "unknown question type %q", q.Type)
	}
	if q.Score < 0 {
		return invalid("score", "score cannot be negative")
	}
	if !q.Type.Choice() {
		return nil
	}

	if len(q.Options) < 2 {
		return invalid("options", "choice questions need at least two options")
	}
	seen := make(map[string]bool, len(q.Options))
	for _, o := range q.Options {
		if o.ID == "" {
			return invalid("options", "option id is required")
		}
		if seen[o.ID] {
			return invalid("options", "duplicate option id %q", o.ID)
		}
		seen[o.ID] = true
	}
	if !q.IsGraded {
		return nil
	}
	correct := len(q.CorrectOptionIDs())
	switch {
	case q.Type == types.QuestionSingle && correct != 1:
		return invalid("options", "single-choice questions need exactly one correct option, got %d", correct)
	case q.Type == types.QuestionMulti && correct == 0:
		return invalid("options", "multi-choice questions need at least one correct option")
	}
	return nil
}

// MarkCorrect toggles an option. For single-choice questions marking one
// option correct clears every other.
func MarkCorrect(q types.ExamQuestion, optionID string) (types.ExamQuestion, error) {
	if _, ok := q.Option(optionID); !ok {
		return q, types.NewNotFound("option", optionID)
	}
	out := q
	out.Options = append([]types.QuestionOption{}, q.Options...)
	for i := range out.Options {
		o := &out.Options[i]
		switch {
		case o.ID == optionID && q.Type == types.QuestionSingle:
			o.IsCorrect = true
		case o.ID == optionID:
			o.IsCorrect = !o.IsCorrect
		case q.Type == types.QuestionSingle:
			o.IsCorrect = false
		}
	}
	return out, nil
}

// ValidateAnswer checks an applicant answer against the question shape.
func ValidateAnswer(q types.ExamQuestion, answer types.Answer) error {
	invalid := func(format string, args ...any) error {
		return &types.ValidationError{Field: "answer", Message: fmt.Sprintf(format, args...)}
	}
	switch q.Type {
	case types.QuestionEssay:
		if answer.Options != nil {
			return invalid("essay answers are free text")
		}
	case types.QuestionSingle:
		if answer.Options != nil {
			return invalid("single-choice answers take one option id")
		}
		if answer.Text != "" {
			if _, ok := q.Option(answer.Text); !ok {
				return invalid("unknown option %q", answer.Text)
			}
		}
	case types.QuestionMulti:
		ids := answer.Selected()
		seen := make(map[string]bool, len(ids))
		for _, id := range ids {
			if _, ok := q.Option(id); !ok {
				return invalid("unknown option %q", id)
			}
			if seen[id] {
				return invalid("option %q selected twice", id)
			}
			seen[id] = true
		}
	}
	return nil
}

// InSuite returns the questions belonging to one suite, in corpus order.
func InSuite(questions []types.ExamQuestion, suiteID string) []types.ExamQuestion {
	var out []types.ExamQuestion
	for _, q := range questions {
		if q.SuiteID == suiteID {
			out = append(out, q)
		}
	}
	return out
}

// Find returns the question with the given id.
func Find(questions []types.ExamQuestion, id string) (types.ExamQuestion, error) {
	for _, q := range questions {
		if q.ID == id {
			return q, nil
		}
	}
	return types.ExamQuestion{}, types.NewNotFound("question", id)
}
