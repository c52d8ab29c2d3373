package types

// QuestionType is the kind of exam question.
type QuestionType string

const (
	QuestionSingle QuestionType = "single"
	QuestionMulti  QuestionType = "multi"
	QuestionEssay  QuestionType = "essay"
)

// Valid reports whether t is a known question type.
func (t QuestionType) Valid() bool {
	return t == QuestionSingle || t == QuestionMulti || t == QuestionEssay
}

// Choice reports whether the question is answered by option ids.
func (t QuestionType) Choice() bool {
	return t == QuestionSingle || t == QuestionMulti
}

// ExamSuite groups questions.
type ExamSuite struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

// QuestionOption is one choice of a choice question.
type QuestionOption struct {
	ID         string `json:"id"`
	Text       string `json:"text"`
	IsCorrect  bool   `json:"is_correct"`
	AllowInput bool   `json:"allow_input,omitempty"`
}

// ExamQuestion is one question of the corpus.
type ExamQuestion struct {
	ID       string           `json:"id"`
	SuiteID  string           `json:"suite_id"`
	Text     string           `json:"text"`
	Type     QuestionType     `json:"type"`
	Score    float64          `json:"score"`
	IsGraded bool             `json:"is_graded"`
	Options  []QuestionOption `json:"options,omitempty"`
}

// CorrectOptionIDs returns the ids of options marked correct, in option order.
func (q ExamQuestion) CorrectOptionIDs() []string {
	var ids []string
	for _, o := range q.Options {
		if o.IsCorrect {
			ids = append(ids, o.ID)
		}
	}
	return ids
}

// Option returns the option with the given id.
func (q ExamQuestion) Option(id string) (QuestionOption, bool) {
	for _, o := range q.Options {
		if o.ID == id {
			return o, true
		}
	}
	return QuestionOption{}, false
}
