package assessment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/frahmantamala/recruitment/internal"
	"github.com/frahmantamala/recruitment/internal/job"
	"golang.org/x/sync/errgroup"
)

const (
	evaluationWorkers = 4
	evaluationFailure = "There was an error evaluating your answer."
)

type JobLookup interface {
	Get(ctx context.Context, id int64) (*job.Job, error)
}

type SkillsSource interface {
	Skills(ctx context.Context, userID int64) ([]string, error)
}

type Service struct {
	llm       LanguageModel
	jobs      JobLookup
	cvs       SkillsSource
	maxTokens int
	logger    *slog.Logger
}

func NewService(llm LanguageModel, jobs JobLookup, cvs SkillsSource, maxTokens int, logger *slog.Logger) *Service {
	if maxTokens <= 0 {
		maxTokens = 2000
	}
	return &Service{llm: llm, jobs: jobs, cvs: cvs, maxTokens: maxTokens, logger: logger}
}

// Generate asks the language model for questions on the request's skills,
// else the job's, else the caller's CV skills.
func (s *Service) Generate(ctx context.Context, userID int64, dto GenerateDTO) (*GenerateResponse, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	skills, err := s.skillsFor(ctx, userID, dto)
	if err != nil {
		return nil, err
	}

	content, err := s.llm.Complete(ctx, Prompt{
		System:      generateSystem,
		User:        generatePrompt(skills, dto.NumQuestions, dto.QuestionType),
		Temperature: 0.7,
		MaxTokens:   s.maxTokens,
	})
	if err != nil {
		return nil, s.generationFailed(err)
	}

	var questions []Question
	if err := json.Unmarshal([]byte(extractJSON(content)), &questions); err != nil {
		return nil, s.generationFailed(fmt.Errorf("decode questions: %w", err))
	}
	if len(questions) == 0 {
		return nil, s.generationFailed(errors.New("no questions returned"))
	}

	s.logger.Info("assessment generated", "user_id", userID, "skills", len(skills), "questions", len(questions))
	return &GenerateResponse{SkillsAssessed: skills, Questions: questions}, nil
}

func (s *Service) skillsFor(ctx context.Context, userID int64, dto GenerateDTO) ([]string, error) {
	var skills []string
	switch {
	case len(dto.Skills) > 0:
		skills = dto.Skills
	case dto.JobID != nil:
		j, err := s.jobs.Get(ctx, *dto.JobID)
		if err != nil {
			return nil, err
		}
		skills = j.Skills
	default:
		fromCV, err := s.cvs.Skills(ctx, userID)
		if errors.Is(err, internal.ErrCVNotFound) {
			return nil, internal.ErrNoSkills
		}
		if err != nil {
			return nil, err
		}
		skills = fromCV
	}

	out := make([]string, 0, len(skills))
	for _, sk := range skills {
		if sk = strings.TrimSpace(sk); sk != "" {
			out = append(out, sk)
		}
	}
	if len(out) == 0 {
		return nil, internal.ErrNoSkills
	}
	return out, nil
}

func (s *Service) generationFailed(err error) error {
	s.logger.Error("question generation failed", "error", err)
	return internal.NewExternalError("Failed to generate assessment questions", internal.ErrCodeLanguageModelError, err)
}

// EvaluateAnswer grades one answer. Multiple choice is compared locally;
// a short answer is graded by the language model. A model failure is
// reported inside the evaluation, not as an error.
func (s *Service) EvaluateAnswer(ctx context.Context, dto AnswerDTO) (*AnswerResult, error) {
	if err := validateQuestion(dto.Question); err != nil {
		return nil, err
	}
	res := s.evaluate(ctx, dto)
	return &res, nil
}

// EvaluateAssessment grades every answer, at most four at a time, and sums
// ten points per question.
func (s *Service) EvaluateAssessment(ctx context.Context, dto BatchAnswerDTO) (*AssessmentResult, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	for _, qa := range dto.QuestionsAndAnswers {
		if err := validateQuestion(qa.Question); err != nil {
			return nil, err
		}
	}

	results := make([]AnswerResult, len(dto.QuestionsAndAnswers))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(evaluationWorkers)
	for i, qa := range dto.QuestionsAndAnswers {
		g.Go(func() error {
			results[i] = s.evaluate(gctx, qa)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var total float64
	for i, qa := range dto.QuestionsAndAnswers {
		total += results[i].Evaluation.points(qa.Question)
	}
	maxScore := pointsPerQuestion * float64(len(results))
	percentage := total / maxScore * 100

	return &AssessmentResult{
		Results: results,
		Summary: Summary{
			TotalScore:       total,
			MaxPossibleScore: maxScore,
			Percentage:       math.Round(percentage*100) / 100,
			Pass:             percentage >= passPercentage,
		},
	}, nil
}

func (s *Service) evaluate(ctx context.Context, dto AnswerDTO) AnswerResult {
	q := dto.Question
	res := AnswerResult{Question: q.Question, UserAnswer: dto.Answer}

	if q.Type == TypeMCQ {
		correct := strings.TrimSpace(dto.Answer) == strings.TrimSpace(q.CorrectAnswer)
		res.Evaluation = Evaluation{
			IsCorrect:     correct,
			CorrectAnswer: q.CorrectAnswer,
			Explanation:   q.Explanation,
		}
		if correct {
			res.Evaluation.Score = pointsPerQuestion
		}
		return res
	}

	content, err := s.llm.Complete(ctx, Prompt{
		System:      evaluateSystem,
		User:        evaluatePrompt(q, dto.Answer),
		Temperature: 0.3,
		MaxTokens:   1000,
	})
	if err == nil {
		var graded Evaluation
		if err = json.Unmarshal([]byte(extractJSON(content)), &graded); err == nil {
			graded.Score = math.Max(0, math.Min(pointsPerQuestion, graded.Score))
			graded.IsCorrect = graded.Score >= shortAnswerPass
			graded.Error = ""
			res.Evaluation = graded
			return res
		}
	}

	s.logger.Warn("answer evaluation failed", "error", err)
	res.Evaluation = Evaluation{
		IsCorrect: false,
		Score:     0,
		Error:     err.Error(),
		Feedback:  evaluationFailure,
	}
	return res
}

func validateQuestion(q Question) error {
	if field := q.missingField(); field != "" {
		return internal.NewValidationFieldError(field, "Question is missing required field: "+field, internal.ErrCodeValidationFailed)
	}
	if q.Type != TypeMCQ && q.Type != TypeShortAnswer {
		return internal.NewValidationFieldError("type", "Question type must be mcq or short_answer", internal.ErrCodeValidationFailed)
	}
	return nil
}
