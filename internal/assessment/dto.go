package assessment

import "github.com/frahmantamala/recruitment/internal/core/common/validation"

const defaultQuestions = 5

type GenerateDTO struct {
	Skills       []string `json:"skills"`
	JobID        *int64   `json:"job_id"`
	NumQuestions int      `json:"num_questions" validate:"omitempty,min=1,max=10"`
	QuestionType string   `json:"question_type" validate:"omitempty,oneof=mcq short_answer mixed"`
}

func (d *GenerateDTO) Validate() error {
	if err := validation.Struct(d); err != nil {
		return err
	}
	if d.NumQuestions == 0 {
		d.NumQuestions = defaultQuestions
	}
	if d.QuestionType == "" {
		d.QuestionType = TypeMixed
	}
	return nil
}

type AnswerDTO struct {
	Question Question `json:"question"`
	Answer   string   `json:"answer"`
}

type BatchAnswerDTO struct {
	QuestionsAndAnswers []AnswerDTO `json:"questions_and_answers" validate:"required,min=1"`
}

func (d BatchAnswerDTO) Validate() error {
	return validation.Struct(d)
}

type GenerateResponse struct {
	SkillsAssessed []string   `json:"skills_assessed"`
	Questions      []Question `json:"questions"`
}

type AnswerResult struct {
	Question   string     `json:"question"`
	UserAnswer string     `json:"user_answer"`
	Evaluation Evaluation `json:"evaluation"`
}

type Summary struct {
	TotalScore       float64 `json:"total_score"`
	MaxPossibleScore float64 `json:"max_possible_score"`
	Percentage       float64 `json:"percentage"`
	Pass             bool    `json:"pass"`
}

type AssessmentResult struct {
	Results []AnswerResult `json:"results"`
	Summary Summary        `json:"summary"`
}
