package services

import (
	"context"
	"fmt"
	"html/template"
	"strings"

	"quizgen/internal/config"
	"quizgen/internal/observability"
	contextutils "quizgen/internal/utils"

	"go.opentelemetry.io/otel/attribute"
	"gopkg.in/mail.v2"
)

// EmailServiceInterface defines the interface for email functionality
type EmailServiceInterface interface {
	SendQuizResult(ctx context.Context, to, subject string, score, maxScore int, feedback string) error
	IsEnabled() bool
}

// EmailService sends quiz result emails over SMTP using gomail
type EmailService struct {
	cfg    *config.Config
	logger *observability.Logger
	dialer *mail.Dialer
}

// Ensure EmailService implements the EmailServiceInterface
var _ EmailServiceInterface = (*EmailService)(nil)

// NewEmailService creates a new EmailService instance
func NewEmailService(cfg *config.Config, logger *observability.Logger) *EmailService {
	var dialer *mail.Dialer
	if cfg.Email.Enabled && cfg.Email.SMTP.Host != "" {
		dialer = mail.NewDialer(
			cfg.Email.SMTP.Host,
			cfg.Email.SMTP.Port,
			cfg.Email.SMTP.Username,
			cfg.Email.SMTP.Password,
		)
	}

	return &EmailService{
		cfg:    cfg,
		logger: logger,
		dialer: dialer,
	}
}

// IsEnabled returns whether email sending is configured
func (e *EmailService) IsEnabled() bool {
	return e.cfg.Email.Enabled && e.dialer != nil
}

const quizResultTemplate = `<html>
  <body style="font-family: Arial, sans-serif; color: #2c3e50; margin: 0; padding: 30px; background-color: #f8f9fa; line-height: 1.6;">
    <div style="max-width: 600px; margin: 0 auto; background-color: #ffffff; padding: 20px; border-radius: 8px; box-shadow: 0 4px 8px rgba(0,0,0,0.1);">
      <h1 style="color: #27ae60; font-size: 24px; margin-bottom: 20px;">Your Quiz Result</h1>
      <p style="font-size: 18px; margin-bottom: 10px;">
        <strong>Your score:</strong> {{.Score}}
      </p>
      <p style="font-size: 18px; margin-bottom: 10px;">
        <strong>Max score:</strong> {{.MaxScore}}
      </p>
      <p style="font-size: 18px;">
        <strong>AI generated feedback:</strong><br />
        {{.Feedback}}
      </p>
    </div>
  </body>
</html>`

// SendQuizResult sends the graded score and generated feedback to the quiz
// taker. Newlines in the feedback become <br> tags for the HTML body.
func (e *EmailService) SendQuizResult(ctx context.Context, to, subject string, score, maxScore int, feedback string) (err error) {
	ctx, span := observability.TraceFeedbackFunction(ctx, "send_quiz_result",
		attribute.String("email.subject", subject),
		attribute.Int("quiz.score", score),
	)
	defer observability.FinishSpan(span, &err)

	if !e.IsEnabled() {
		e.logger.Info(ctx, "Email disabled, skipping quiz result mail", map[string]interface{}{
			"to": to,
		})
		return nil
	}

	if to == "" {
		return contextutils.WrapError(contextutils.ErrInvalidInput, "recipient address is required")
	}

	body, err := e.renderQuizResult(score, maxScore, feedback)
	if err != nil {
		return contextutils.WrapError(err, "failed to render quiz result email")
	}

	m := mail.NewMessage()
	m.SetHeader("From", fmt.Sprintf("%s <%s>", e.cfg.Email.SMTP.FromName, e.cfg.Email.SMTP.FromAddress))
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	if err = e.dialer.DialAndSend(m); err != nil {
		e.logger.Error(ctx, "Failed to send quiz result email", err, map[string]interface{}{
			"to": to,
		})
		return contextutils.WrapError(err, "failed to send email")
	}

	e.logger.Info(ctx, "Quiz result email sent", map[string]interface{}{
		"to": to,
	})
	return nil
}

func (e *EmailService) renderQuizResult(score, maxScore int, feedback string) (string, error) {
	tmpl, err := template.New("quiz_result").Parse(quizResultTemplate)
	if err != nil {
		return "", err
	}

	escaped := template.HTMLEscapeString(feedback)
	formatted := template.HTML(strings.ReplaceAll(escaped, "\n", "<br>"))

	var sb strings.Builder
	err = tmpl.Execute(&sb, map[string]interface{}{
		"Score":    score,
		"MaxScore": maxScore,
		"Feedback": formatted,
	})
	if err != nil {
		return "", err
	}
	return sb.String(), nil
}
