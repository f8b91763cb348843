package quiz

import "fmt"

// Outcome classifies one scored question.
type Outcome string

const (
	OutcomeCorrect    Outcome = "correct"
	OutcomeWrong      Outcome = "wrong"
	OutcomeUnanswered Outcome = "unanswered"
	// OutcomeError means the question's correct label could not be resolved.
	OutcomeError Outcome = "error"
)

// ItemResult is the feedback for one question.
type ItemResult struct {
	Index         int     `json:"index"`
	Question      string  `json:"question"`
	Selected      string  `json:"selected,omitempty"`
	CorrectAnswer string  `json:"correct_answer,omitempty"`
	Outcome       Outcome `json:"outcome"`
	Error         string  `json:"error,omitempty"`
}

// Result is the score of a submitted session. Total always counts every
// question, including ones scored as OutcomeError.
type Result struct {
	Correct    int          `json:"correct"`
	Wrong      int          `json:"wrong"`
	Unanswered int          `json:"unanswered"`
	Errors     int          `json:"errors"`
	Total      int          `json:"total"`
	Items      []ItemResult `json:"items"`
}

// Percentage is Correct/Total*100. Score never returns a Result with Total 0.
func (r Result) Percentage() float64 {
	if r.Total == 0 {
		return 0
	}
	return float64(r.Correct) / float64(r.Total) * 100
}

// Verdict returns the feedback band for the percentage.
func (r Result) Verdict() string {
	switch p := r.Percentage(); {
	case p >= 80:
		return "Great job! You have a good understanding of the video content."
	case p >= 60:
		return "Good effort! You might want to review some parts of the video."
	default:
		return "You might need to watch the video again to improve your understanding."
	}
}

// Summary is the one-line score, e.g. "1/3 (33.33%)".
func (r Result) Summary() string {
	return fmt.Sprintf("%d/%d (%.2f%%)", r.Correct, r.Total, r.Percentage())
}

// Score grades a submitted session. Selected text is compared to the correct
// option's display text with exact string equality.
func (s *Session) Score() (Result, error) {
	if !s.submitted {
		return Result{}, fmt.Errorf("%w: cannot score before submit", ErrInvalidStateTransition)
	}
	if len(s.questions) == 0 {
		return Result{}, ErrUndefinedScore
	}

	res := Result{Total: len(s.questions), Items: make([]ItemResult, 0, len(s.questions))}
	for i, q := range s.questions {
		answer := s.answers[i]
		item := ItemResult{Index: i, Question: q.Text, Selected: answer.Selected}

		correct, err := q.CorrectOption()
		switch {
		case err != nil:
			item.Outcome = OutcomeError
			item.Error = err.Error()
			res.Errors++
		case !answer.Answered:
			item.Outcome = OutcomeUnanswered
			item.CorrectAnswer = correct
			res.Unanswered++
		case answer.Selected == correct:
			item.Outcome = OutcomeCorrect
			item.CorrectAnswer = correct
			res.Correct++
		default:
			item.Outcome = OutcomeWrong
			item.CorrectAnswer = correct
			res.Wrong++
		}
		res.Items = append(res.Items, item)
	}
	return res, nil
}
