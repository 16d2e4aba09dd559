package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"quizgen/internal/models"
	"quizgen/internal/observability"
	contextutils "quizgen/internal/utils"

	"github.com/xeipuuv/gojsonschema"
	"go.opentelemetry.io/otel/attribute"
)

// QuizServiceInterface defines the interface for quiz lifecycle operations.
// This allows for easier mocking in tests.
type QuizServiceInterface interface {
	GenerateQuiz(ctx context.Context, userID int, req *models.GenerateQuizRequest) (int, error)
	GetQuizForDisplay(ctx context.Context, quizID int) ([]models.QuestionForDisplay, error)
	GetHint(ctx context.Context, quizID, questionID int) (string, error)
	GetQuizByID(ctx context.Context, quizID int) (*models.Quiz, error)
}

// QuizService generates quizzes through the completion service and serves
// them with cache-aside reads and hint redaction.
type QuizService struct {
	db         *sql.DB
	completion CompletionServiceInterface
	cache      *QuizCache
	logger     *observability.Logger
}

var _ QuizServiceInterface = (*QuizService)(nil)

// NewQuizService creates a new QuizService instance
func NewQuizService(db *sql.DB, completion CompletionServiceInterface, cache *QuizCache, logger *observability.Logger) *QuizService {
	return &QuizService{
		db:         db,
		completion: completion,
		cache:      cache,
		logger:     logger,
	}
}

// generatedQuestionsSchema validates the parsed completion output before
// anything is persisted. Malformed question arrays fail generation instead
// of landing in the quizzes table.
const generatedQuestionsSchema = `{
	"type": "array",
	"minItems": 1,
	"items": {
		"type": "object",
		"required": ["questionNumber", "question", "options", "correctAnswer", "hint"],
		"properties": {
			"questionNumber": {"type": "integer", "minimum": 1},
			"question": {"type": "string", "minLength": 1},
			"options": {
				"type": "array",
				"minItems": 4,
				"maxItems": 4,
				"items": {"type": "string"}
			},
			"correctAnswer": {"type": "integer", "minimum": 0},
			"hint": {"type": "string"}
		}
	}
}`

// BuildQuizPrompt constructs the single-turn generation instruction sent to
// the completion service.
func BuildQuizPrompt(req *models.GenerateQuizRequest) string {
	return fmt.Sprintf("Generate a %s quiz for grade %d students with %d questions. "+
		"The difficulty should be %s. Each question should be worth 1 point, for a total of %d points. "+
		"Format the response as a JSON array of objects, where each object represents a question and has the following properties: "+
		"questionNumber, question, options (an array of 4 possible answers), "+
		"correctAnswer (the index of the correct option in the options array), "+
		"hint (a useful hint for answering the question without revealing the correct answer). "+
		"Don't add filler statements in the response. Only give the JSON array.",
		req.Subject, req.Grade, req.TotalQuestions, req.Difficulty, req.MaxScore)
}

// ExtractJSONArray slices the first '[' through the last ']' out of raw
// completion text, tolerating leading and trailing model commentary.
func ExtractJSONArray(content string) (string, error) {
	start := strings.Index(content, "[")
	end := strings.LastIndex(content, "]")
	if start == -1 || end == -1 || end < start {
		return "", contextutils.WrapError(contextutils.ErrGenerationFailed, "no JSON array found in completion output")
	}
	return content[start : end+1], nil
}

// ParseGeneratedQuestions extracts, parses, and schema-validates the
// question array from raw completion output.
func ParseGeneratedQuestions(content string) ([]models.Question, error) {
	jsonContent, err := ExtractJSONArray(content)
	if err != nil {
		return nil, err
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(generatedQuestionsSchema),
		gojsonschema.NewStringLoader(jsonContent),
	)
	if err != nil {
		return nil, contextutils.WrapErrorf(contextutils.ErrGenerationFailed, "failed to parse generated questions: %v", err)
	}
	if !result.Valid() {
		var errorMessages []string
		for _, e := range result.Errors() {
			errorMessages = append(errorMessages, e.String())
		}
		return nil, contextutils.WrapErrorf(contextutils.ErrGenerationFailed, "generated questions failed schema validation: %s", strings.Join(errorMessages, "; "))
	}

	var questions []models.Question
	if err := json.Unmarshal([]byte(jsonContent), &questions); err != nil {
		return nil, contextutils.WrapErrorf(contextutils.ErrGenerationFailed, "failed to parse generated questions: %v", err)
	}

	// Reject answer indices the schema cannot see past: each correctAnswer
	// must point inside its own options array.
	for _, q := range questions {
		if q.CorrectAnswer >= len(q.Options) {
			return nil, contextutils.WrapErrorf(contextutils.ErrGenerationFailed, "question %d has correctAnswer %d outside its %d options", q.QuestionNumber, q.CorrectAnswer, len(q.Options))
		}
	}

	return questions, nil
}

// GenerateQuiz builds the generation prompt, calls the completion service,
// parses and validates the result, and persists the quiz. Returns the new
// quiz id.
func (s *QuizService) GenerateQuiz(ctx context.Context, userID int, req *models.GenerateQuizRequest) (result0 int, err error) {
	ctx, span := observability.TraceQuizFunction(ctx, "generate_quiz",
		observability.AttributeUserID(userID),
		observability.AttributeSubject(req.Subject),
		attribute.Int("quiz.grade", req.Grade),
		attribute.Int("quiz.total_questions", req.TotalQuestions),
	)
	defer observability.FinishSpan(span, &err)

	prompt := BuildQuizPrompt(req)

	content, err := s.completion.Complete(ctx, prompt)
	if err != nil {
		s.logger.Error(ctx, "Completion call failed during quiz generation", err, map[string]interface{}{
			"subject": req.Subject,
			"grade":   req.Grade,
		})
		return 0, contextutils.WrapError(contextutils.ErrGenerationFailed, "completion request failed")
	}

	questions, err := ParseGeneratedQuestions(content)
	if err != nil {
		s.logger.Error(ctx, "Failed to parse generated quiz", err, map[string]interface{}{
			"subject":        req.Subject,
			"content_length": len(content),
		})
		return 0, err
	}

	quiz := &models.Quiz{
		UserID:         userID,
		Grade:          req.Grade,
		Subject:        req.Subject,
		TotalQuestions: req.TotalQuestions,
		MaxScore:       req.MaxScore,
		Difficulty:     req.Difficulty,
		Questions:      questions,
	}

	if err := s.createQuiz(ctx, quiz); err != nil {
		return 0, err
	}

	span.SetAttributes(observability.AttributeQuizID(quiz.ID))
	return quiz.ID, nil
}

func (s *QuizService) createQuiz(ctx context.Context, quiz *models.Quiz) (err error) {
	ctx, span := observability.TraceQuizFunction(ctx, "create_quiz",
		observability.AttributeUserID(quiz.UserID),
		observability.AttributeSubject(quiz.Subject),
	)
	defer observability.FinishSpan(span, &err)

	questionsJSON, err := json.Marshal(quiz.Questions)
	if err != nil {
		return contextutils.WrapError(err, "failed to marshal quiz questions")
	}

	query := `
		INSERT INTO quizzes (user_id, grade, subject, total_questions, max_score, difficulty, questions)
		VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id, created_at
	`

	err = s.db.QueryRowContext(ctx, query,
		quiz.UserID,
		quiz.Grade,
		quiz.Subject,
		quiz.TotalQuestions,
		quiz.MaxScore,
		quiz.Difficulty,
		string(questionsJSON),
	).Scan(&quiz.ID, &quiz.CreatedAt)
	if err != nil {
		return contextutils.WrapError(err, "failed to save quiz to database")
	}

	return nil
}

// GetQuizByID fetches a quiz from the store, hints and answers included.
// Callers serving quiz takers must go through GetQuizForDisplay instead.
func (s *QuizService) GetQuizByID(ctx context.Context, quizID int) (result0 *models.Quiz, err error) {
	ctx, span := observability.TraceQuizFunction(ctx, "get_quiz_by_id",
		observability.AttributeQuizID(quizID),
	)
	defer observability.FinishSpan(span, &err)

	query := `
		SELECT id, user_id, grade, subject, total_questions, max_score, difficulty, questions, created_at
		FROM quizzes WHERE id = $1
	`

	var quiz models.Quiz
	var questionsJSON []byte
	err = s.db.QueryRowContext(ctx, query, quizID).Scan(
		&quiz.ID,
		&quiz.UserID,
		&quiz.Grade,
		&quiz.Subject,
		&quiz.TotalQuestions,
		&quiz.MaxScore,
		&quiz.Difficulty,
		&questionsJSON,
		&quiz.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, contextutils.ErrQuizNotFound
	}
	if err != nil {
		return nil, contextutils.WrapError(err, "failed to get quiz from database")
	}

	if err := json.Unmarshal(questionsJSON, &quiz.Questions); err != nil {
		return nil, contextutils.WrapError(err, "failed to unmarshal quiz questions")
	}

	return &quiz, nil
}

// GetQuizForDisplay returns a quiz's questions with hints stripped, serving
// from the cache when possible and backfilling it on a store read. Cache
// failures never fail the request.
func (s *QuizService) GetQuizForDisplay(ctx context.Context, quizID int) (result0 []models.QuestionForDisplay, err error) {
	ctx, span := observability.TraceQuizFunction(ctx, "get_quiz_for_display",
		observability.AttributeQuizID(quizID),
	)
	defer observability.FinishSpan(span, &err)

	if questions, ok := s.cache.GetQuestions(ctx, quizID); ok {
		span.SetAttributes(attribute.String("quiz.source", "cache"))
		return questions, nil
	}

	quiz, err := s.GetQuizByID(ctx, quizID)
	if err != nil {
		return nil, err
	}

	questions := quiz.QuestionsForDisplay()
	s.cache.SetQuestions(ctx, quizID, questions)

	span.SetAttributes(attribute.String("quiz.source", "database"))
	return questions, nil
}

// GetHint returns the hint for one question of a quiz. questionID is the
// 1-based question position.
func (s *QuizService) GetHint(ctx context.Context, quizID, questionID int) (result0 string, err error) {
	ctx, span := observability.TraceQuizFunction(ctx, "get_hint",
		observability.AttributeQuizID(quizID),
		observability.AttributeQuestionID(questionID),
	)
	defer observability.FinishSpan(span, &err)

	quiz, err := s.GetQuizByID(ctx, quizID)
	if err != nil {
		return "", err
	}

	if questionID < 1 || questionID > len(quiz.Questions) {
		return "", contextutils.ErrQuestionNotFound
	}

	return quiz.Questions[questionID-1].Hint, nil
}
