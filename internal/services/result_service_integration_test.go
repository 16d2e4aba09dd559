//go:build integration

package services

import (
	"context"
	"testing"
	"time"

	"quizgen/internal/models"
	contextutils "quizgen/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupResultServices(t *testing.T) (*ResultService, *QuizService, *models.User) {
	db := SharedTestDBSetup(t)
	t.Cleanup(func() { db.Close() })

	logger := testLogger()
	user := createTestUser(t, NewUserService(db, logger))

	completion := &cannedCompletion{content: validQuestionsJSON}
	quizService := NewQuizService(db, completion, NewQuizCache(nil, 0, logger), logger)
	resultService := NewResultService(db, quizService, logger)

	return resultService, quizService, user
}

func generateTestQuiz(t *testing.T, quizService *QuizService, userID int) int {
	quizID, err := quizService.GenerateQuiz(context.Background(), userID, &models.GenerateQuizRequest{
		Grade: 8, Subject: "Biology", TotalQuestions: 2, MaxScore: 2, Difficulty: "medium",
	})
	require.NoError(t, err)
	return quizID
}

func TestResultService_SubmitQuiz_Integration(t *testing.T) {
	resultService, quizService, user := setupResultServices(t)
	quizID := generateTestQuiz(t, quizService, user.ID)

	// validQuestionsJSON: question 1 correct=1, question 2 correct=0
	submission, quiz, err := resultService.SubmitQuiz(context.Background(), user.ID, &models.SubmitQuizRequest{
		QuizID: quizID,
		Responses: []models.QuizResponse{
			{QuestionID: 1, UserResponse: "1"},
			{QuestionID: 2, UserResponse: "2"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, submission.Score)
	assert.Equal(t, 1, submission.Attempt)
	assert.Greater(t, submission.ResultID, 0)
	require.Len(t, submission.WrongResponses, 1)
	assert.Equal(t, "DNA", submission.WrongResponses[0].CorrectAnswer)
	assert.Equal(t, quizID, quiz.ID)
}

func TestResultService_AttemptNumbersIncrement_Integration(t *testing.T) {
	resultService, quizService, user := setupResultServices(t)
	quizID := generateTestQuiz(t, quizService, user.ID)

	responses := []models.QuizResponse{{QuestionID: 1, UserResponse: "1"}}

	for want := 1; want <= 3; want++ {
		submission, _, err := resultService.SubmitQuiz(context.Background(), user.ID, &models.SubmitQuizRequest{
			QuizID:    quizID,
			Responses: responses,
		})
		require.NoError(t, err)
		assert.Equal(t, want, submission.Attempt)
	}
}

func TestResultService_SubmitUnknownQuiz_Integration(t *testing.T) {
	resultService, _, user := setupResultServices(t)

	_, _, err := resultService.SubmitQuiz(context.Background(), user.ID, &models.SubmitQuizRequest{
		QuizID:    99999,
		Responses: []models.QuizResponse{},
	})
	require.Error(t, err)
	assert.Equal(t, contextutils.ErrorCodeQuizNotFound, contextutils.GetErrorCode(err))
}

func TestResultService_GetHistory_Integration(t *testing.T) {
	resultService, quizService, user := setupResultServices(t)
	quizID := generateTestQuiz(t, quizService, user.ID)

	submit := func(responses []models.QuizResponse) {
		_, _, err := resultService.SubmitQuiz(context.Background(), user.ID, &models.SubmitQuizRequest{
			QuizID:    quizID,
			Responses: responses,
		})
		require.NoError(t, err)
	}
	submit([]models.QuizResponse{{QuestionID: 1, UserResponse: "1"}, {QuestionID: 2, UserResponse: "0"}}) // score 2
	submit([]models.QuizResponse{{QuestionID: 1, UserResponse: "0"}})                                     // score 0

	t.Run("all results with joined quiz attributes", func(t *testing.T) {
		results, err := resultService.GetHistory(context.Background(), user.ID, &models.HistoryFilter{})
		require.NoError(t, err)
		require.Len(t, results, 2)
		assert.Equal(t, "Biology", results[0].Subject.String)
		assert.EqualValues(t, 8, results[0].Grade.Int32)
	})

	t.Run("score filter", func(t *testing.T) {
		score := 2
		results, err := resultService.GetHistory(context.Background(), user.ID, &models.HistoryFilter{Score: &score})
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, 2, results[0].Score)
	})

	t.Run("subject filter", func(t *testing.T) {
		results, err := resultService.GetHistory(context.Background(), user.ID, &models.HistoryFilter{Subject: "Chemistry"})
		require.NoError(t, err)
		assert.Empty(t, results)
	})

	t.Run("date window includes the whole toDate day", func(t *testing.T) {
		today := time.Now().Truncate(24 * time.Hour)
		results, err := resultService.GetHistory(context.Background(), user.ID, &models.HistoryFilter{
			FromDate: &today,
			ToDate:   &today,
		})
		require.NoError(t, err)
		assert.Len(t, results, 2)
	})

	t.Run("other users see nothing", func(t *testing.T) {
		results, err := resultService.GetHistory(context.Background(), user.ID+1, &models.HistoryFilter{})
		require.NoError(t, err)
		assert.Empty(t, results)
	})
}
