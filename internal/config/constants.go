package config

import "time"

// Completion request limits
const (
	// CompletionRequestTimeout bounds one outbound completion call at the
	// HTTP client level
	CompletionRequestTimeout = 120 * time.Second

	// CompletionTemperature is the fixed sampling temperature for both quiz
	// generation and feedback requests
	CompletionTemperature = 0.7
)

// Quiz content constraints
const (
	// OptionsPerQuestion is the required number of options per generated question
	OptionsPerQuestion = 4
)
