package services

import (
	"database/sql"
	"testing"
	"time"

	"quizgen/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gradingQuiz() *models.Quiz {
	return &models.Quiz{
		ID:       42,
		MaxScore: 3,
		Questions: []models.Question{
			{
				QuestionNumber: 1,
				Question:       "2 + 2?",
				Options:        []string{"4", "5", "6", "7"},
				CorrectAnswer:  0,
			},
			{
				QuestionNumber: 2,
				Question:       "3 x 3?",
				Options:        []string{"6", "9", "12", "3"},
				CorrectAnswer:  1,
			},
			{
				QuestionNumber: 3,
				Question:       "10 / 5?",
				Options:        []string{"5", "10", "2", "1"},
				CorrectAnswer:  2,
			},
		},
	}
}

func TestGradeSubmission(t *testing.T) {
	t.Run("scores one point per correct answer", func(t *testing.T) {
		responses := []models.QuizResponse{
			{QuestionID: 1, UserResponse: "0"},
			{QuestionID: 2, UserResponse: "3"},
			{QuestionID: 3, UserResponse: "2"},
		}

		score, wrong := GradeSubmission(gradingQuiz(), responses)

		assert.Equal(t, 2, score)
		require.Len(t, wrong, 1)
		assert.Equal(t, "3 x 3?", wrong[0].Question)
		assert.Equal(t, "3", wrong[0].UserResponse)
		assert.Equal(t, "9", wrong[0].CorrectAnswer)
	})

	t.Run("perfect score has no wrong responses", func(t *testing.T) {
		responses := []models.QuizResponse{
			{QuestionID: 1, UserResponse: "0"},
			{QuestionID: 2, UserResponse: "1"},
			{QuestionID: 3, UserResponse: "2"},
		}

		score, wrong := GradeSubmission(gradingQuiz(), responses)

		assert.Equal(t, 3, score)
		assert.Empty(t, wrong)
	})

	t.Run("out-of-range questionId is skipped silently", func(t *testing.T) {
		responses := []models.QuizResponse{
			{QuestionID: 0, UserResponse: "0"},
			{QuestionID: 99, UserResponse: "0"},
			{QuestionID: 1, UserResponse: "0"},
		}

		score, wrong := GradeSubmission(gradingQuiz(), responses)

		assert.Equal(t, 1, score)
		assert.Empty(t, wrong)
	})

	t.Run("empty userResponse is skipped without scoring", func(t *testing.T) {
		responses := []models.QuizResponse{
			{QuestionID: 1, UserResponse: ""},
			{QuestionID: 2, UserResponse: "1"},
		}

		score, wrong := GradeSubmission(gradingQuiz(), responses)

		assert.Equal(t, 1, score)
		assert.Empty(t, wrong)
	})

	t.Run("non-numeric answer is wrong with raw text", func(t *testing.T) {
		responses := []models.QuizResponse{
			{QuestionID: 1, UserResponse: "four"},
		}

		score, wrong := GradeSubmission(gradingQuiz(), responses)

		assert.Equal(t, 0, score)
		require.Len(t, wrong, 1)
		assert.Equal(t, "four", wrong[0].UserResponse)
		assert.Equal(t, "4", wrong[0].CorrectAnswer)
	})

	t.Run("selection index outside options keeps raw text", func(t *testing.T) {
		responses := []models.QuizResponse{
			{QuestionID: 1, UserResponse: "9"},
		}

		score, wrong := GradeSubmission(gradingQuiz(), responses)

		assert.Equal(t, 0, score)
		require.Len(t, wrong, 1)
		assert.Equal(t, "9", wrong[0].UserResponse)
	})

	t.Run("no responses", func(t *testing.T) {
		score, wrong := GradeSubmission(gradingQuiz(), nil)

		assert.Equal(t, 0, score)
		assert.Empty(t, wrong)
	})
}

func TestNormalizeDateWindow(t *testing.T) {
	from := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	gotFrom, gotTo := NormalizeDateWindow(from, to)

	assert.Equal(t, from, gotFrom)
	assert.Equal(t, time.Date(2025, 3, 10, 23, 59, 59, 999000000, time.UTC), gotTo)
}

func TestFilterResultsByQuiz(t *testing.T) {
	results := []models.Result{
		{ID: 1, Subject: sql.NullString{String: "Math", Valid: true}, Grade: sql.NullInt32{Int32: 8, Valid: true}},
		{ID: 2, Subject: sql.NullString{String: "Biology", Valid: true}, Grade: sql.NullInt32{Int32: 8, Valid: true}},
		{ID: 3, Subject: sql.NullString{String: "Math", Valid: true}, Grade: sql.NullInt32{Int32: 10, Valid: true}},
		{ID: 4}, // quiz row deleted, joined columns NULL
	}

	t.Run("no criteria returns input unchanged", func(t *testing.T) {
		filtered := FilterResultsByQuiz(results, &models.HistoryFilter{})
		assert.Len(t, filtered, 4)
	})

	t.Run("subject filter", func(t *testing.T) {
		filtered := FilterResultsByQuiz(results, &models.HistoryFilter{Subject: "math"})
		require.Len(t, filtered, 2)
		assert.Equal(t, 1, filtered[0].ID)
		assert.Equal(t, 3, filtered[1].ID)
	})

	t.Run("grade filter", func(t *testing.T) {
		grade := 8
		filtered := FilterResultsByQuiz(results, &models.HistoryFilter{Grade: &grade})
		require.Len(t, filtered, 2)
		assert.Equal(t, 1, filtered[0].ID)
		assert.Equal(t, 2, filtered[1].ID)
	})

	t.Run("subject and grade together", func(t *testing.T) {
		grade := 8
		filtered := FilterResultsByQuiz(results, &models.HistoryFilter{Subject: "Math", Grade: &grade})
		require.Len(t, filtered, 1)
		assert.Equal(t, 1, filtered[0].ID)
	})

	t.Run("null joined columns never match", func(t *testing.T) {
		grade := 8
		filtered := FilterResultsByQuiz(results[3:], &models.HistoryFilter{Subject: "Math", Grade: &grade})
		assert.Empty(t, filtered)
	})
}
