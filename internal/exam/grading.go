// Package exam scores applicant answers against the exam corpus and tracks
// per-suite completion.
package exam

import (
	"fmt"
	"math"
	"sort"

	"github.com/jonathan/uniadmit/internal/types"
)

// Answered reports whether a non-empty answer exists for the question.
func Answered(answers map[string]types.Answer, questionID string) bool {
	a, ok := answers[questionID]
	return ok && !a.Empty()
}

// ObjectiveScore is the contribution of a choice question: full points when
// the selected set equals the correct set, otherwise 0. Ungraded questions
// and essays contribute 0.
func ObjectiveScore(q types.ExamQuestion, answer types.Answer) float64 {
	if !q.IsGraded || !q.Type.Choice() {
		return 0
	}
	correct := q.CorrectOptionIDs()
	if len(correct) == 0 {
		return 0
	}
	if sameSet(answer.Selected(), correct) {
		return q.Score
	}
	return 0
}

func sameSet(got, want []string) bool {
	if len(got) != len(want) {
		return false
	}
	a := append([]string{}, got...)
	b := append([]string{}, want...)
	sort.Strings(a)
	sort.Strings(b)
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// AutoScore sums the objective contributions over the corpus.
func AutoScore(questions []types.ExamQuestion, answers map[string]types.Answer) float64 {
	var total float64
	for _, q := range questions {
		total += ObjectiveScore(q, answers[q.ID])
	}
	return total
}

// Breakdown is the split of a total score.
type Breakdown struct {
	Objective float64 `json:"objective"`
	Essay     float64 `json:"essay"`
	Total     float64 `json:"total"`
	Possible  float64 `json:"possible"`
	// Ungraded lists graded essay questions with no manual score yet.
	Ungraded []string `json:"ungraded,omitempty"`
}

// Total merges objective scores with the manual essay grades. Grades for
// questions that are not graded essays are ignored.
func Total(questions []types.ExamQuestion, answers map[string]types.Answer, grading map[string]float64) Breakdown {
	var b Breakdown
	for _, q := range questions {
		if !q.IsGraded {
			continue
		}
		b.Possible += q.Score
		if q.Type == types.QuestionEssay {
			if g, ok := grading[q.ID]; ok {
				b.Essay += g
			} else {
				b.Ungraded = append(b.Ungraded, q.ID)
			}
			continue
		}
		b.Objective += ObjectiveScore(q, answers[q.ID])
	}
	b.Total = b.Objective + b.Essay
	return b
}

// ValidateGrade checks a manual score. Out-of-range values are rejected, not clamped.
func ValidateGrade(q types.ExamQuestion, score float64) error {
	if q.Type != types.QuestionEssay {
		return types.NewGuardViolation("grade essay", fmt.Sprintf("question %s is not an essay", q.ID))
	}
	if !q.IsGraded {
		return types.NewGuardViolation("grade essay", fmt.Sprintf("question %s is not graded", q.ID))
	}
	if math.IsNaN(score) || score < 0 || score > q.Score {
		return &types.ValidationError{Field: "score", Message: fmt.Sprintf("score %g outside [0, %g]", score, q.Score)}
	}
	return nil
}

// SuiteProgress is the completion of one suite.
type SuiteProgress struct {
	SuiteID  string `json:"suite_id"`
	Title    string `json:"title"`
	Answered int    `json:"answered"`
	Total    int    `json:"total"`
	Percent  int    `json:"percent"`
}

// Progress reports the completion of every suite, in suite order.
func Progress(suites []types.ExamSuite, questions []types.ExamQuestion, answers map[string]types.Answer) []SuiteProgress {
	out := make([]SuiteProgress, 0, len(suites))
	for _, s := range suites {
		p := SuiteProgress{SuiteID: s.ID, Title: s.Title}
		for _, q := range questions {
			if q.SuiteID != s.ID {
				continue
			}
			p.Total++
			if Answered(answers, q.ID) {
				p.Answered++
			}
		}
		if p.Total > 0 {
			p.Percent = int(math.Round(float64(p.Answered) / float64(p.Total) * 100))
		}
		out = append(out, p)
	}
	return out
}

// Unanswered returns the ids of questions without an answer, in corpus order.
func Unanswered(questions []types.ExamQuestion, answers map[string]types.Answer) []string {
	var ids []string
	for _, q := range questions {
		if !Answered(answers, q.ID) {
			ids = append(ids, q.ID)
		}
	}
	return ids
}

// Complete reports whether every question in the corpus is answered.
func Complete(questions []types.ExamQuestion, answers map[string]types.Answer) bool {
	return len(Unanswered(questions, answers)) == 0
}
