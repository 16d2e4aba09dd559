package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"quizgen/internal/config"
	"quizgen/internal/models"
	"quizgen/internal/observability"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCacheClient is an in-memory CacheClient for tests. Errors can be
// injected per operation.
type fakeCacheClient struct {
	data    map[string]string
	getErr  error
	setErr  error
	pingErr error
	gets    int
	sets    int
}

func newFakeCacheClient() *fakeCacheClient {
	return &fakeCacheClient{data: make(map[string]string)}
}

func (f *fakeCacheClient) Get(_ context.Context, key string) (string, error) {
	f.gets++
	if f.getErr != nil {
		return "", f.getErr
	}
	value, ok := f.data[key]
	if !ok {
		return "", ErrCacheMiss
	}
	return value, nil
}

func (f *fakeCacheClient) Set(_ context.Context, key, value string, _ time.Duration) error {
	f.sets++
	if f.setErr != nil {
		return f.setErr
	}
	f.data[key] = value
	return nil
}

func (f *fakeCacheClient) Ping(_ context.Context) error {
	return f.pingErr
}

func testLogger() *observability.Logger {
	return observability.NewLogger(&config.OpenTelemetryConfig{EnableLogging: false})
}

func displayQuestions() []models.QuestionForDisplay {
	return []models.QuestionForDisplay{
		{QuestionNumber: 1, Question: "Q1?", Options: []string{"a", "b", "c", "d"}, CorrectAnswer: 0},
		{QuestionNumber: 2, Question: "Q2?", Options: []string{"e", "f", "g", "h"}, CorrectAnswer: 3},
	}
}

func TestQuizCache_SetThenGet(t *testing.T) {
	client := newFakeCacheClient()
	cache := NewQuizCache(client, time.Minute, testLogger())
	ctx := context.Background()

	questions := displayQuestions()
	cache.SetQuestions(ctx, 7, questions)

	got, ok := cache.GetQuestions(ctx, 7)
	require.True(t, ok)
	assert.Equal(t, questions, got)
}

func TestQuizCache_Miss(t *testing.T) {
	cache := NewQuizCache(newFakeCacheClient(), time.Minute, testLogger())

	got, ok := cache.GetQuestions(context.Background(), 404)
	assert.False(t, ok)
	assert.Nil(t, got)
}

func TestQuizCache_NilClientDegradesToMiss(t *testing.T) {
	cache := NewQuizCache(nil, time.Minute, testLogger())
	ctx := context.Background()

	got, ok := cache.GetQuestions(ctx, 1)
	assert.False(t, ok)
	assert.Nil(t, got)

	// SetQuestions must be a no-op, not a panic
	cache.SetQuestions(ctx, 1, displayQuestions())
}

func TestQuizCache_UnavailableBackendSkipsOperations(t *testing.T) {
	client := newFakeCacheClient()
	client.pingErr = errors.New("connection refused")
	cache := NewQuizCache(client, time.Minute, testLogger())
	ctx := context.Background()

	_, ok := cache.GetQuestions(ctx, 1)
	assert.False(t, ok)
	cache.SetQuestions(ctx, 1, displayQuestions())

	// The availability check failed, so the backend was never touched
	assert.Equal(t, 0, client.gets)
	assert.Equal(t, 0, client.sets)
}

func TestQuizCache_ReadErrorIsSwallowed(t *testing.T) {
	client := newFakeCacheClient()
	client.getErr = errors.New("read timeout")
	cache := NewQuizCache(client, time.Minute, testLogger())

	got, ok := cache.GetQuestions(context.Background(), 1)
	assert.False(t, ok)
	assert.Nil(t, got)
}

func TestQuizCache_WriteErrorIsSwallowed(t *testing.T) {
	client := newFakeCacheClient()
	client.setErr = errors.New("write timeout")
	cache := NewQuizCache(client, time.Minute, testLogger())

	cache.SetQuestions(context.Background(), 1, displayQuestions())
	assert.Empty(t, client.data)
}

func TestQuizCache_CorruptEntryIsAMiss(t *testing.T) {
	client := newFakeCacheClient()
	client.data["quiz:9"] = "{not json"
	cache := NewQuizCache(client, time.Minute, testLogger())

	got, ok := cache.GetQuestions(context.Background(), 9)
	assert.False(t, ok)
	assert.Nil(t, got)
}
