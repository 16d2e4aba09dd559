package services

import (
	"context"
	"fmt"
	"strings"

	"quizgen/internal/models"
	"quizgen/internal/observability"

	"go.opentelemetry.io/otel/attribute"
)

// FeedbackServiceInterface defines the interface for post-submission
// feedback delivery.
type FeedbackServiceInterface interface {
	SendFeedback(ctx context.Context, userEmail string, quiz *models.Quiz, submission *models.SubmissionResult)
}

// FeedbackService generates topic-wise feedback for a graded submission and
// emails it to the quiz taker. Every failure here is absorbed: feedback is
// best-effort and must never fail the submission that triggered it.
type FeedbackService struct {
	completion CompletionServiceInterface
	email      EmailServiceInterface
	logger     *observability.Logger
}

var _ FeedbackServiceInterface = (*FeedbackService)(nil)

// NewFeedbackService creates a new FeedbackService instance
func NewFeedbackService(completion CompletionServiceInterface, email EmailServiceInterface, logger *observability.Logger) *FeedbackService {
	return &FeedbackService{
		completion: completion,
		email:      email,
		logger:     logger,
	}
}

// BuildFeedbackPrompt constructs the completion instruction for grading
// feedback from the score and the list of incorrect answers.
func BuildFeedbackPrompt(score, maxScore int, wrongResponses []models.WrongResponse) string {
	wrongResponsesText := "No incorrect responses."
	if len(wrongResponses) > 0 {
		var parts []string
		for _, response := range wrongResponses {
			parts = append(parts, fmt.Sprintf("Question: %s\nStudent Answer: %s\nCorrect Answer: %s",
				response.Question, response.UserResponse, response.CorrectAnswer))
		}
		wrongResponsesText = strings.Join(parts, "\n\n")
	}

	return fmt.Sprintf(`
The score of the student is %d out of %d.
Here is the list of wrong responses to the quiz:
%s

Based on the above responses, provide a topic-wise feedback on which topics the student needs to improve and on which topics the student is strong. If the user has all correct answers, provide a congratulatory message.

**Instructions:**
- Avoid using phrases like "it seems that" or other filler language.
- Be direct and clear in your feedback.
- Also include a general feedback based on quiz score and performance.
- Answer in dot bullets with newline character and dont include wrong responses in the feedback.
- Provide only the feedback in a single message, addressing the student using "you".
`, score, maxScore, wrongResponsesText)
}

// SendFeedback generates feedback for a graded submission and emails it to
// the user. Errors are logged, never returned.
func (s *FeedbackService) SendFeedback(ctx context.Context, userEmail string, quiz *models.Quiz, submission *models.SubmissionResult) {
	ctx, span := observability.TraceFeedbackFunction(ctx, "send_feedback",
		observability.AttributeQuizID(quiz.ID),
		attribute.Int("submission.score", submission.Score),
	)
	defer span.End()

	prompt := BuildFeedbackPrompt(submission.Score, quiz.MaxScore, submission.WrongResponses)

	feedback, err := s.completion.Complete(ctx, prompt)
	if err != nil {
		s.logger.Error(ctx, "Feedback generation failed", err, map[string]interface{}{
			"quiz_id": quiz.ID,
		})
		return
	}

	subject := fmt.Sprintf("%s Quiz Result", quiz.Subject)
	if err := s.email.SendQuizResult(ctx, userEmail, subject, submission.Score, quiz.MaxScore, feedback); err != nil {
		s.logger.Error(ctx, "Feedback email delivery failed", err, map[string]interface{}{
			"quiz_id": quiz.ID,
		})
	}
}
