package models

import (
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuiz_QuestionsForDisplay(t *testing.T) {
	quiz := &Quiz{
		Questions: []Question{
			{QuestionNumber: 1, Question: "Q1?", Options: []string{"a", "b"}, CorrectAnswer: 0, Hint: "first hint"},
			{QuestionNumber: 2, Question: "Q2?", Options: []string{"c", "d"}, CorrectAnswer: 1, Hint: "second hint"},
		},
	}

	display := quiz.QuestionsForDisplay()

	require.Len(t, display, 2)
	assert.Equal(t, 1, display[0].QuestionNumber)
	assert.Equal(t, 2, display[1].QuestionNumber)
	assert.Equal(t, "Q1?", display[0].Question)
	assert.Equal(t, []string{"c", "d"}, display[1].Options)

	// The display projection must never serialize a hint field
	data, err := json.Marshal(display)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "hint")
	assert.NotContains(t, string(data), "first hint")
}

func TestQuiz_QuestionsForDisplay_Empty(t *testing.T) {
	quiz := &Quiz{}
	display := quiz.QuestionsForDisplay()
	assert.Empty(t, display)
	assert.NotNil(t, display)
}

func TestUser_PasswordHashNeverSerialized(t *testing.T) {
	user := User{ID: 1, Name: "Ada", Email: "ada@example.com", PasswordHash: "bcrypt-hash"}

	data, err := json.Marshal(user)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "bcrypt-hash")
}

func TestResult_MarshalJSON(t *testing.T) {
	completed := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	t.Run("flattens joined quiz attributes", func(t *testing.T) {
		result := Result{
			ID:          3,
			UserID:      1,
			QuizID:      2,
			Score:       4,
			Attempt:     2,
			Responses:   []QuizResponse{{QuestionID: 1, UserResponse: "0"}},
			CompletedAt: completed,
			Subject:     sql.NullString{String: "Math", Valid: true},
			Grade:       sql.NullInt32{Int32: 8, Valid: true},
		}

		data, err := json.Marshal(result)
		require.NoError(t, err)

		var decoded map[string]interface{}
		require.NoError(t, json.Unmarshal(data, &decoded))
		assert.Equal(t, "Math", decoded["subject"])
		assert.Equal(t, float64(8), decoded["grade"])
		assert.Equal(t, float64(2), decoded["attempt"])
		assert.NotContains(t, string(data), "Valid")
	})

	t.Run("omits absent joined attributes", func(t *testing.T) {
		result := Result{ID: 3, CompletedAt: completed}

		data, err := json.Marshal(result)
		require.NoError(t, err)
		assert.NotContains(t, string(data), "subject")
		assert.NotContains(t, string(data), "grade")
	})
}
