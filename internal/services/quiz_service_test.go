package services

import (
	"testing"

	"quizgen/internal/models"
	contextutils "quizgen/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildQuizPrompt(t *testing.T) {
	req := &models.GenerateQuizRequest{
		Grade:          8,
		Subject:        "Biology",
		TotalQuestions: 5,
		MaxScore:       5,
		Difficulty:     "medium",
	}

	prompt := BuildQuizPrompt(req)

	assert.Contains(t, prompt, "Biology quiz for grade 8")
	assert.Contains(t, prompt, "5 questions")
	assert.Contains(t, prompt, "The difficulty should be medium")
	assert.Contains(t, prompt, "total of 5 points")
	assert.Contains(t, prompt, "questionNumber")
	assert.Contains(t, prompt, "correctAnswer")
	assert.Contains(t, prompt, "hint")
	assert.Contains(t, prompt, "Only give the JSON array")
}

func TestExtractJSONArray(t *testing.T) {
	t.Run("bare array", func(t *testing.T) {
		out, err := ExtractJSONArray(`[{"a":1}]`)
		require.NoError(t, err)
		assert.Equal(t, `[{"a":1}]`, out)
	})

	t.Run("tolerates surrounding commentary", func(t *testing.T) {
		out, err := ExtractJSONArray("Here is your quiz:\n[{\"a\":1}]\nEnjoy!")
		require.NoError(t, err)
		assert.Equal(t, `[{"a":1}]`, out)
	})

	t.Run("uses first open and last close bracket", func(t *testing.T) {
		out, err := ExtractJSONArray(`[[1],[2]] trailing`)
		require.NoError(t, err)
		assert.Equal(t, `[[1],[2]]`, out)
	})

	t.Run("missing open bracket", func(t *testing.T) {
		_, err := ExtractJSONArray(`no array here]`)
		// "]" before any "[" means there is no array to slice
		require.Error(t, err)
		assert.Equal(t, contextutils.ErrorCodeGenerationFailed, contextutils.GetErrorCode(err))
	})

	t.Run("missing close bracket", func(t *testing.T) {
		_, err := ExtractJSONArray(`[ unterminated`)
		require.Error(t, err)
		assert.Equal(t, contextutils.ErrorCodeGenerationFailed, contextutils.GetErrorCode(err))
	})

	t.Run("empty content", func(t *testing.T) {
		_, err := ExtractJSONArray("")
		require.Error(t, err)
	})
}

const validQuestionsJSON = `[
	{
		"questionNumber": 1,
		"question": "What is the powerhouse of the cell?",
		"options": ["Nucleus", "Mitochondria", "Ribosome", "Golgi body"],
		"correctAnswer": 1,
		"hint": "It produces ATP."
	},
	{
		"questionNumber": 2,
		"question": "What carries genetic information?",
		"options": ["DNA", "ATP", "RNA polymerase", "Lipids"],
		"correctAnswer": 0,
		"hint": "A double helix."
	}
]`

func TestParseGeneratedQuestions(t *testing.T) {
	t.Run("valid array", func(t *testing.T) {
		questions, err := ParseGeneratedQuestions(validQuestionsJSON)
		require.NoError(t, err)
		require.Len(t, questions, 2)
		assert.Equal(t, 1, questions[0].QuestionNumber)
		assert.Equal(t, "What is the powerhouse of the cell?", questions[0].Question)
		assert.Equal(t, 1, questions[0].CorrectAnswer)
		assert.Equal(t, "It produces ATP.", questions[0].Hint)
		assert.Len(t, questions[0].Options, 4)
	})

	t.Run("valid array wrapped in commentary", func(t *testing.T) {
		content := "Sure! Here is the quiz you asked for:\n" + validQuestionsJSON + "\nLet me know if you need more."
		questions, err := ParseGeneratedQuestions(content)
		require.NoError(t, err)
		assert.Len(t, questions, 2)
	})

	t.Run("no array in content", func(t *testing.T) {
		_, err := ParseGeneratedQuestions("I cannot generate a quiz right now.")
		require.Error(t, err)
		assert.Equal(t, contextutils.ErrorCodeGenerationFailed, contextutils.GetErrorCode(err))
	})

	t.Run("malformed JSON between brackets", func(t *testing.T) {
		_, err := ParseGeneratedQuestions(`[{"questionNumber": 1,]`)
		require.Error(t, err)
		assert.Equal(t, contextutils.ErrorCodeGenerationFailed, contextutils.GetErrorCode(err))
	})

	t.Run("missing required field fails schema validation", func(t *testing.T) {
		_, err := ParseGeneratedQuestions(`[
			{"questionNumber": 1, "question": "Q?", "options": ["a", "b"], "correctAnswer": 0}
		]`)
		require.Error(t, err)
		assert.Equal(t, contextutils.ErrorCodeGenerationFailed, contextutils.GetErrorCode(err))
	})

	t.Run("empty array fails schema validation", func(t *testing.T) {
		_, err := ParseGeneratedQuestions(`[]`)
		require.Error(t, err)
	})

	t.Run("wrong field type fails schema validation", func(t *testing.T) {
		_, err := ParseGeneratedQuestions(`[
			{"questionNumber": "one", "question": "Q?", "options": ["a", "b"], "correctAnswer": 0, "hint": "h"}
		]`)
		require.Error(t, err)
	})

	t.Run("fewer than four options fails schema validation", func(t *testing.T) {
		_, err := ParseGeneratedQuestions(`[
			{"questionNumber": 1, "question": "Q?", "options": ["a", "b"], "correctAnswer": 0, "hint": "h"}
		]`)
		require.Error(t, err)
		assert.Equal(t, contextutils.ErrorCodeGenerationFailed, contextutils.GetErrorCode(err))
	})

	t.Run("correctAnswer outside options is rejected", func(t *testing.T) {
		_, err := ParseGeneratedQuestions(`[
			{"questionNumber": 1, "question": "Q?", "options": ["a", "b", "c", "d"], "correctAnswer": 5, "hint": "h"}
		]`)
		require.Error(t, err)
		assert.Equal(t, contextutils.ErrorCodeGenerationFailed, contextutils.GetErrorCode(err))
	})
}
