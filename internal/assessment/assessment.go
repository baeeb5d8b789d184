package assessment

import (
	"fmt"
	"strings"
)

const (
	TypeMCQ         = "mcq"
	TypeShortAnswer = "short_answer"
	TypeMixed       = "mixed"

	pointsPerQuestion = 10.0
	passPercentage    = 70.0
	shortAnswerPass   = 7.0
)

type Question struct {
	Question      string   `json:"question"`
	Type          string   `json:"type"`
	Options       []string `json:"options,omitempty"`
	CorrectAnswer string   `json:"correct_answer,omitempty"`
	Explanation   string   `json:"explanation,omitempty"`
	SampleAnswer  string   `json:"sample_answer,omitempty"`
	KeyPoints     []string `json:"key_points,omitempty"`
}

// missingField names the first field the question type needs but lacks.
func (q Question) missingField() string {
	switch {
	case q.Question == "":
		return "question"
	case q.Type == "":
		return "type"
	}
	switch q.Type {
	case TypeMCQ:
		if len(q.Options) == 0 {
			return "options"
		}
		if q.CorrectAnswer == "" {
			return "correct_answer"
		}
	case TypeShortAnswer:
		if q.SampleAnswer == "" {
			return "sample_answer"
		}
		if len(q.KeyPoints) == 0 {
			return "key_points"
		}
	}
	return ""
}

type Evaluation struct {
	IsCorrect     bool     `json:"is_correct"`
	Score         float64  `json:"score"`
	Feedback      string   `json:"feedback,omitempty"`
	MissingPoints []string `json:"missing_points,omitempty"`
	CorrectAnswer string   `json:"correct_answer,omitempty"`
	Explanation   string   `json:"explanation,omitempty"`
	Error         string   `json:"error,omitempty"`
}

// points is what the evaluation contributes to an assessment total.
func (e Evaluation) points(q Question) float64 {
	if q.Type == TypeMCQ {
		if e.IsCorrect {
			return pointsPerQuestion
		}
		return 0
	}
	return e.Score
}

// questionMix splits n questions between the two kinds.
func questionMix(n int, kind string) (mcq, short int) {
	switch kind {
	case TypeMCQ:
		return n, 0
	case TypeShortAnswer:
		return 0, n
	default:
		mcq = n / 2
		return mcq, n - mcq
	}
}

const generateSystem = "You are a technical interviewer creating skill assessment questions."

func generatePrompt(skills []string, n int, kind string) string {
	mcq, short := questionMix(n, kind)
	return fmt.Sprintf(`Generate a skill assessment with %d questions for a job candidate with these skills: %s.

Include %d multiple-choice questions and %d short answer questions.
Multiple-choice questions have 4 options and exactly one correct answer.

Respond with a JSON array only, using this structure:
[
  {"question": "Question text", "type": "mcq", "options": ["A", "B", "C", "D"], "correct_answer": "A", "explanation": "Why A is right"},
  {"question": "Question text", "type": "short_answer", "sample_answer": "A good answer", "key_points": ["Point 1", "Point 2"]}
]

The questions should be challenging but fair for a technical interview.`,
		n, strings.Join(skills, ", "), mcq, short)
}

const evaluateSystem = "You are a technical interviewer evaluating candidate responses."

func evaluatePrompt(q Question, answer string) string {
	return fmt.Sprintf(`Question: %s

Sample correct answer: %s

Key points the answer should address: %s

Candidate's answer: %s

Judge whether the answer covers the key points, is technically accurate and is complete.
Respond with a JSON object only:
{"score": <0-10>, "feedback": "Feedback on the answer", "missing_points": ["Key points that were missed"], "is_correct": <true when score >= 7>}`,
		q.Question, q.SampleAnswer, strings.Join(q.KeyPoints, ", "), answer)
}
