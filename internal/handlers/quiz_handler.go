package handlers

import (
	"net/http"
	"strconv"
	"time"

	"quizgen/internal/models"
	"quizgen/internal/observability"
	"quizgen/internal/services"
	contextutils "quizgen/internal/utils"

	"github.com/gin-gonic/gin"
)

// QuizHandler serves the quiz lifecycle API: generation, retrieval,
// submission, hints, and history.
type QuizHandler struct {
	quizService     services.QuizServiceInterface
	resultService   services.ResultServiceInterface
	feedbackService services.FeedbackServiceInterface
	logger          *observability.Logger
}

// NewQuizHandler creates a new QuizHandler instance
func NewQuizHandler(
	quizService services.QuizServiceInterface,
	resultService services.ResultServiceInterface,
	feedbackService services.FeedbackServiceInterface,
	logger *observability.Logger,
) *QuizHandler {
	return &QuizHandler{
		quizService:     quizService,
		resultService:   resultService,
		feedbackService: feedbackService,
		logger:          logger,
	}
}

// GenerateQuiz handles POST /v1/quiz/generate
func (h *QuizHandler) GenerateQuiz(c *gin.Context) {
	ctx, span := observability.TraceHandlerFunction(c.Request.Context(), "generate_quiz")
	defer span.End()

	var req models.GenerateQuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleValidationError(c, "Grade, Subject, TotalQuestions, MaxScore, and Difficulty are required.")
		return
	}
	if req.Grade == 0 || req.Subject == "" || req.TotalQuestions == 0 || req.MaxScore == 0 || req.Difficulty == "" {
		HandleValidationError(c, "Grade, Subject, TotalQuestions, MaxScore, and Difficulty are required.")
		return
	}

	userID := contextutils.GetUserIDFromContext(ctx)

	quizID, err := h.quizService.GenerateQuiz(ctx, userID, &req)
	if err != nil {
		h.logger.Error(ctx, "Quiz generation failed", err, map[string]interface{}{
			"subject": req.Subject,
			"grade":   req.Grade,
		})
		HandleAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Quiz generated successfully.",
		"quizId":  quizID,
	})
}

// GetQuiz handles GET /v1/quiz/get/:quizId
func (h *QuizHandler) GetQuiz(c *gin.Context) {
	ctx, span := observability.TraceHandlerFunction(c.Request.Context(), "get_quiz")
	defer span.End()

	quizID, err := strconv.Atoi(c.Param("quizId"))
	if err != nil {
		HandleValidationError(c, "quizId is required.")
		return
	}

	questions, err := h.quizService.GetQuizForDisplay(ctx, quizID)
	if err != nil {
		HandleAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Quiz retrieved successfully.",
		"quiz":    questions,
	})
}

// SubmitQuiz handles POST /v1/quiz/submit
func (h *QuizHandler) SubmitQuiz(c *gin.Context) {
	ctx, span := observability.TraceHandlerFunction(c.Request.Context(), "submit_quiz")
	defer span.End()

	var req models.SubmitQuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleValidationError(c, "quizId and responses are required.")
		return
	}
	if req.QuizID == 0 || req.Responses == nil {
		HandleValidationError(c, "quizId and responses are required.")
		return
	}

	userID := contextutils.GetUserIDFromContext(ctx)

	submission, quiz, err := h.resultService.SubmitQuiz(ctx, userID, &req)
	if err != nil {
		h.logger.Error(ctx, "Quiz submission failed", err, map[string]interface{}{
			"quiz_id": req.QuizID,
		})
		HandleAppError(c, err)
		return
	}

	// Feedback is best-effort; a completion or mail failure never fails
	// the submission.
	userEmail := contextutils.GetUserEmailFromContext(ctx)
	h.feedbackService.SendFeedback(ctx, userEmail, quiz, submission)

	c.JSON(http.StatusOK, gin.H{
		"message": "Quiz submitted successfully. An AI generated feedback is sent to your registered email ID.",
		"score":   submission.Score,
	})
}

// GetHint handles GET /v1/quiz/hint
func (h *QuizHandler) GetHint(c *gin.Context) {
	ctx, span := observability.TraceHandlerFunction(c.Request.Context(), "get_hint")
	defer span.End()

	quizID, err1 := strconv.Atoi(c.Query("quizId"))
	questionID, err2 := strconv.Atoi(c.Query("questionId"))
	if err1 != nil || err2 != nil {
		HandleValidationError(c, "quizId and questionId are required.")
		return
	}

	hint, err := h.quizService.GetHint(ctx, quizID, questionID)
	if err != nil {
		HandleAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Hint retrieved successfully.",
		"hint":    hint,
	})
}

// GetHistory handles GET /v1/quiz/history
func (h *QuizHandler) GetHistory(c *gin.Context) {
	ctx, span := observability.TraceHandlerFunction(c.Request.Context(), "get_history")
	defer span.End()

	filter, validationMsg := parseHistoryFilter(c)
	if validationMsg != "" {
		HandleValidationError(c, validationMsg)
		return
	}

	userID := contextutils.GetUserIDFromContext(ctx)

	results, err := h.resultService.GetHistory(ctx, userID, filter)
	if err != nil {
		h.logger.Error(ctx, "History query failed", err, nil)
		HandleAppError(c, err)
		return
	}

	if results == nil {
		results = []models.Result{}
	}

	c.JSON(http.StatusOK, gin.H{"results": results})
}

// parseHistoryFilter reads the optional history query parameters, returning
// a non-empty validation message on malformed input. The date window only
// applies when both bounds are present.
func parseHistoryFilter(c *gin.Context) (*models.HistoryFilter, string) {
	filter := &models.HistoryFilter{
		Subject: c.Query("subject"),
	}

	if raw := c.Query("quizId"); raw != "" {
		quizID, err := strconv.Atoi(raw)
		if err != nil {
			return nil, "quizId must be a number."
		}
		filter.QuizID = &quizID
	}
	if raw := c.Query("grade"); raw != "" {
		grade, err := strconv.Atoi(raw)
		if err != nil {
			return nil, "grade must be a number."
		}
		filter.Grade = &grade
	}
	if raw := c.Query("score"); raw != "" {
		score, err := strconv.Atoi(raw)
		if err != nil {
			return nil, "score must be a number."
		}
		filter.Score = &score
	}
	if raw := c.Query("fromDate"); raw != "" {
		from, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return nil, "fromDate must be YYYY-MM-DD."
		}
		filter.FromDate = &from
	}
	if raw := c.Query("toDate"); raw != "" {
		to, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return nil, "toDate must be YYYY-MM-DD."
		}
		filter.ToDate = &to
	}

	return filter, ""
}
