package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"quizgen/internal/models"
	"quizgen/internal/observability"
	contextutils "quizgen/internal/utils"

	"github.com/lib/pq"
	"go.opentelemetry.io/otel/attribute"
)

// ResultServiceInterface defines the interface for grading and result
// history operations.
type ResultServiceInterface interface {
	SubmitQuiz(ctx context.Context, userID int, req *models.SubmitQuizRequest) (*models.SubmissionResult, *models.Quiz, error)
	GetHistory(ctx context.Context, userID int, filter *models.HistoryFilter) ([]models.Result, error)
}

// ResultService grades submissions and records per-attempt results.
type ResultService struct {
	db          *sql.DB
	quizService QuizServiceInterface
	logger      *observability.Logger
}

var _ ResultServiceInterface = (*ResultService)(nil)

// NewResultService creates a new ResultService instance
func NewResultService(db *sql.DB, quizService QuizServiceInterface, logger *observability.Logger) *ResultService {
	return &ResultService{
		db:          db,
		quizService: quizService,
		logger:      logger,
	}
}

// GradeSubmission scores a set of responses against a quiz, one point per
// correct answer. Responses whose questionId falls outside the quiz or whose
// userResponse is empty are skipped without scoring or erroring. Incorrect
// answers are collected with option text for feedback generation.
func GradeSubmission(quiz *models.Quiz, responses []models.QuizResponse) (int, []models.WrongResponse) {
	score := 0
	wrongResponses := []models.WrongResponse{}

	for _, response := range responses {
		if response.QuestionID < 1 || response.QuestionID > len(quiz.Questions) {
			continue
		}
		if response.UserResponse == "" {
			continue
		}

		question := quiz.Questions[response.QuestionID-1]

		selected, err := strconv.Atoi(strings.TrimSpace(response.UserResponse))
		if err == nil && selected == question.CorrectAnswer {
			score++
			continue
		}

		// Non-numeric or out-of-range selections fall back to the raw text.
		userAnswer := response.UserResponse
		if err == nil && selected >= 0 && selected < len(question.Options) {
			userAnswer = question.Options[selected]
		}

		wrongResponses = append(wrongResponses, models.WrongResponse{
			Question:      question.Question,
			UserResponse:  userAnswer,
			CorrectAnswer: question.Options[question.CorrectAnswer],
		})
	}

	return score, wrongResponses
}

// SubmitQuiz grades a submission and records the result with the next
// attempt number for this (user, quiz) pair. Returns the grading outcome and
// the quiz the submission was graded against.
func (s *ResultService) SubmitQuiz(ctx context.Context, userID int, req *models.SubmitQuizRequest) (result0 *models.SubmissionResult, result1 *models.Quiz, err error) {
	ctx, span := observability.TraceResultFunction(ctx, "submit_quiz",
		observability.AttributeUserID(userID),
		observability.AttributeQuizID(req.QuizID),
		attribute.Int("submission.responses", len(req.Responses)),
	)
	defer observability.FinishSpan(span, &err)

	quiz, err := s.quizService.GetQuizByID(ctx, req.QuizID)
	if err != nil {
		return nil, nil, err
	}

	score, wrongResponses := GradeSubmission(quiz, req.Responses)

	result := &models.Result{
		UserID:    userID,
		QuizID:    req.QuizID,
		Score:     score,
		Responses: req.Responses,
	}

	if err := s.insertResult(ctx, result); err != nil {
		return nil, nil, contextutils.WrapError(contextutils.ErrSubmissionFailed, "failed to record quiz result")
	}

	span.SetAttributes(
		attribute.Int("submission.score", score),
		attribute.Int("submission.attempt", result.Attempt),
	)

	return &models.SubmissionResult{
		Score:          score,
		Attempt:        result.Attempt,
		ResultID:       result.ID,
		WrongResponses: wrongResponses,
	}, quiz, nil
}

// insertResult writes one result row, computing the attempt number inside
// the INSERT so concurrent submissions for the same (user, quiz) pair cannot
// claim the same attempt. The unique index on (user_id, quiz_id, attempt)
// backstops the subselect; on a collision the insert is retried.
func (s *ResultService) insertResult(ctx context.Context, result *models.Result) (err error) {
	ctx, span := observability.TraceResultFunction(ctx, "insert_result",
		observability.AttributeUserID(result.UserID),
		observability.AttributeQuizID(result.QuizID),
	)
	defer observability.FinishSpan(span, &err)

	responsesJSON, err := json.Marshal(result.Responses)
	if err != nil {
		return contextutils.WrapError(err, "failed to marshal responses")
	}

	query := `
		INSERT INTO results (user_id, quiz_id, attempt, score, responses)
		VALUES ($1, $2, (SELECT COALESCE(MAX(attempt), 0) + 1 FROM results WHERE user_id = $1 AND quiz_id = $2), $3, $4)
		RETURNING id, attempt, completed_at
	`

	const maxRetries = 3
	for i := 0; i < maxRetries; i++ {
		err = s.db.QueryRowContext(ctx, query,
			result.UserID,
			result.QuizID,
			result.Score,
			string(responsesJSON),
		).Scan(&result.ID, &result.Attempt, &result.CompletedAt)
		if err == nil {
			return nil
		}
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			s.logger.Warn(ctx, "Attempt number collision, retrying insert", map[string]interface{}{
				"user_id": result.UserID,
				"quiz_id": result.QuizID,
				"retry":   i + 1,
			})
			continue
		}
		return contextutils.WrapError(err, "failed to insert result")
	}

	return contextutils.WrapError(err, "failed to insert result after retries")
}

// GetHistory returns the user's results matching the filter, newest first.
// QuizID, Score, and the date window are applied in the query; Subject and
// Grade are attributes of the joined quiz applied after the fetch.
func (s *ResultService) GetHistory(ctx context.Context, userID int, filter *models.HistoryFilter) (result0 []models.Result, err error) {
	ctx, span := observability.TraceResultFunction(ctx, "get_history",
		observability.AttributeUserID(userID),
	)
	defer observability.FinishSpan(span, &err)

	query := `
		SELECT r.id, r.user_id, r.quiz_id, r.attempt, r.score, r.responses, r.completed_at, q.subject, q.grade
		FROM results r
		LEFT JOIN quizzes q ON q.id = r.quiz_id
		WHERE r.user_id = $1
	`
	args := []interface{}{userID}

	if filter.QuizID != nil {
		args = append(args, *filter.QuizID)
		query += " AND r.quiz_id = $" + strconv.Itoa(len(args))
	}
	if filter.Score != nil {
		args = append(args, *filter.Score)
		query += " AND r.score = $" + strconv.Itoa(len(args))
	}
	if filter.FromDate != nil && filter.ToDate != nil {
		from, to := NormalizeDateWindow(*filter.FromDate, *filter.ToDate)
		args = append(args, from)
		query += " AND r.completed_at >= $" + strconv.Itoa(len(args))
		args = append(args, to)
		query += " AND r.completed_at <= $" + strconv.Itoa(len(args))
	}

	query += " ORDER BY r.completed_at DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, contextutils.WrapError(err, "failed to query results")
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			s.logger.Warn(ctx, "Failed to close rows", map[string]interface{}{
				"error": closeErr.Error(),
			})
		}
	}()

	var results []models.Result
	for rows.Next() {
		var result models.Result
		var responsesJSON []byte
		if err := rows.Scan(
			&result.ID,
			&result.UserID,
			&result.QuizID,
			&result.Attempt,
			&result.Score,
			&responsesJSON,
			&result.CompletedAt,
			&result.Subject,
			&result.Grade,
		); err != nil {
			return nil, contextutils.WrapError(err, "failed to scan result row")
		}
		if err := json.Unmarshal(responsesJSON, &result.Responses); err != nil {
			return nil, contextutils.WrapError(err, "failed to unmarshal responses")
		}
		results = append(results, result)
	}
	if err := rows.Err(); err != nil {
		return nil, contextutils.WrapError(err, "failed to iterate result rows")
	}

	results = FilterResultsByQuiz(results, filter)

	span.SetAttributes(attribute.Int("history.count", len(results)))
	return results, nil
}

// NormalizeDateWindow widens the inclusive date window so that ToDate covers
// its whole day regardless of the time component supplied.
func NormalizeDateWindow(from, to time.Time) (time.Time, time.Time) {
	normalizedTo := time.Date(to.Year(), to.Month(), to.Day(), 23, 59, 59, 999000000, to.Location())
	return from, normalizedTo
}

// FilterResultsByQuiz applies the subject and grade criteria of the joined
// quiz to an already-fetched result list, preserving order.
func FilterResultsByQuiz(results []models.Result, filter *models.HistoryFilter) []models.Result {
	if filter.Subject == "" && filter.Grade == nil {
		return results
	}

	filtered := make([]models.Result, 0, len(results))
	for _, result := range results {
		if filter.Subject != "" {
			if !result.Subject.Valid || !strings.EqualFold(result.Subject.String, filter.Subject) {
				continue
			}
		}
		if filter.Grade != nil {
			if !result.Grade.Valid || int(result.Grade.Int32) != *filter.Grade {
				continue
			}
		}
		filtered = append(filtered, result)
	}
	return filtered
}
