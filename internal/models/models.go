// Package models defines data structures used throughout the quiz service.
package models

import (
	"database/sql"
	"encoding/json"
	"time"
)

// User represents a registered quiz taker
type User struct {
	ID           int       `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Omit from JSON responses
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Question is a single generated multiple-choice question. The hint is only
// exposed through the dedicated hint lookup, never through normal retrieval.
type Question struct {
	QuestionNumber int      `json:"questionNumber"`
	Question       string   `json:"question"`
	Options        []string `json:"options"`
	CorrectAnswer  int      `json:"correctAnswer"`
	Hint           string   `json:"hint"`
}

// QuestionForDisplay is the hint-redacted projection of a Question served to
// quiz takers.
type QuestionForDisplay struct {
	QuestionNumber int      `json:"questionNumber"`
	Question       string   `json:"question"`
	Options        []string `json:"options"`
	CorrectAnswer  int      `json:"correctAnswer"`
}

// Quiz is a persisted set of generated questions with scoring metadata.
// Quizzes are immutable once created.
type Quiz struct {
	ID             int        `json:"id"`
	UserID         int        `json:"userId"`
	Grade          int        `json:"grade"`
	Subject        string     `json:"subject"`
	TotalQuestions int        `json:"totalQuestions"`
	MaxScore       int        `json:"maxScore"`
	Difficulty     string     `json:"difficulty"`
	Questions      []Question `json:"questions"`
	CreatedAt      time.Time  `json:"created_at"`
}

// QuestionsForDisplay returns the quiz questions with hints stripped,
// preserving order.
func (q *Quiz) QuestionsForDisplay() []QuestionForDisplay {
	display := make([]QuestionForDisplay, 0, len(q.Questions))
	for _, question := range q.Questions {
		display = append(display, QuestionForDisplay{
			QuestionNumber: question.QuestionNumber,
			Question:       question.Question,
			Options:        question.Options,
			CorrectAnswer:  question.CorrectAnswer,
		})
	}
	return display
}

// QuizResponse is one submitted answer: a 1-based question id and the
// option index the user picked, as submitted (string form).
type QuizResponse struct {
	QuestionID   int    `json:"questionId"`
	UserResponse string `json:"userResponse"`
}

// WrongResponse describes one incorrectly answered question for feedback
// generation. UserResponse and CorrectAnswer carry option text, not indices.
type WrongResponse struct {
	Question      string `json:"question"`
	UserResponse  string `json:"userResponse"`
	CorrectAnswer string `json:"correctAnswer"`
}

// Result records one graded quiz attempt by one user. Results are created
// exactly once per submission and never mutated.
type Result struct {
	ID          int            `json:"id"`
	UserID      int            `json:"userId"`
	QuizID      int            `json:"quizId"`
	Score       int            `json:"score"`
	Attempt     int            `json:"attempt"`
	Responses   []QuizResponse `json:"responses"`
	CompletedAt time.Time      `json:"completedAt"`

	// Populated from the joined quiz for history display
	Subject sql.NullString `json:"-"`
	Grade   sql.NullInt32  `json:"-"`
}

// MarshalJSON customizes JSON marshaling for Result to flatten the joined
// quiz attributes and drop the sql.Null wrappers.
func (r Result) MarshalJSON() (result0 []byte, err error) {
	return json.Marshal(&struct {
		ID          int            `json:"id"`
		UserID      int            `json:"userId"`
		QuizID      int            `json:"quizId"`
		Score       int            `json:"score"`
		Attempt     int            `json:"attempt"`
		Responses   []QuizResponse `json:"responses"`
		CompletedAt time.Time      `json:"completedAt"`
		Subject     *string        `json:"subject,omitempty"`
		Grade       *int32         `json:"grade,omitempty"`
	}{
		ID:          r.ID,
		UserID:      r.UserID,
		QuizID:      r.QuizID,
		Score:       r.Score,
		Attempt:     r.Attempt,
		Responses:   r.Responses,
		CompletedAt: r.CompletedAt,
		Subject:     nullStringToPointer(r.Subject),
		Grade:       nullInt32ToPointer(r.Grade),
	})
}

func nullStringToPointer(ns sql.NullString) *string {
	if ns.Valid {
		return &ns.String
	}
	return nil
}

func nullInt32ToPointer(ni sql.NullInt32) *int32 {
	if ni.Valid {
		return &ni.Int32
	}
	return nil
}

// GenerateQuizRequest is the payload for quiz generation
type GenerateQuizRequest struct {
	Grade          int    `json:"grade"`
	Subject        string `json:"subject"`
	TotalQuestions int    `json:"totalQuestions"`
	MaxScore       int    `json:"maxScore"`
	Difficulty     string `json:"difficulty"`
}

// SubmitQuizRequest is the payload for quiz submission
type SubmitQuizRequest struct {
	QuizID    int            `json:"quizId"`
	Responses []QuizResponse `json:"responses"`
}

// SubmissionResult is the outcome of grading one submission
type SubmissionResult struct {
	Score          int             `json:"score"`
	Attempt        int             `json:"attempt"`
	ResultID       int             `json:"resultId"`
	WrongResponses []WrongResponse `json:"-"`
}

// HistoryFilter selects a slice of one user's result history. QuizID and
// Score filter exactly; FromDate/ToDate bound completedAt inclusively and
// only apply when both are set. Grade and Subject are attributes of the
// joined quiz and are applied after the fetch.
type HistoryFilter struct {
	QuizID   *int
	Subject  string
	Grade    *int
	Score    *int
	FromDate *time.Time
	ToDate   *time.Time
}
