package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"quizgen/internal/config"
	"quizgen/internal/models"
	"quizgen/internal/observability"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/attribute"
)

// CacheClient is the minimal cache surface the quiz service needs. The
// production implementation is backed by redis; tests substitute a fake.
type CacheClient interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Ping(ctx context.Context) error
}

// ErrCacheMiss is returned by Get when the key is absent.
var ErrCacheMiss = redis.Nil

type redisCache struct {
	client *redis.Client
}

// NewRedisCache connects to redis using the configured address. It returns
// nil when caching is disabled; callers treat a nil handle as "no cache".
func NewRedisCache(cfg *config.RedisConfig, logger *observability.Logger) CacheClient {
	if !cfg.Enabled || cfg.Addr == "" {
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn(ctx, "Redis unreachable at startup, continuing without cache", map[string]interface{}{
			"addr":  cfg.Addr,
			"error": err.Error(),
		})
	}

	return &redisCache{client: client}
}

func (c *redisCache) Get(ctx context.Context, key string) (string, error) {
	return c.client.Get(ctx, key).Result()
}

func (c *redisCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return c.client.Set(ctx, key, value, ttl).Err()
}

func (c *redisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// QuizCache wraps a CacheClient with quiz-shaped read/write helpers. Cached
// values are the hint-redacted question projections only, never full
// quizzes. Availability is checked per operation; a dead or absent cache
// degrades to a miss and never surfaces an error to the caller.
type QuizCache struct {
	client CacheClient
	ttl    time.Duration
	logger *observability.Logger
}

// NewQuizCache creates a QuizCache. client may be nil.
func NewQuizCache(client CacheClient, ttl time.Duration, logger *observability.Logger) *QuizCache {
	return &QuizCache{
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

func quizCacheKey(quizID int) string {
	return fmt.Sprintf("quiz:%d", quizID)
}

// available reports whether the cache can serve this operation. Checked at
// call time so a redis restart picks back up without a process restart.
func (qc *QuizCache) available(ctx context.Context) bool {
	if qc == nil || qc.client == nil {
		return false
	}
	return qc.client.Ping(ctx) == nil
}

// GetQuestions returns the cached redacted questions for a quiz, or
// (nil, false) on any miss or cache failure.
func (qc *QuizCache) GetQuestions(ctx context.Context, quizID int) ([]models.QuestionForDisplay, bool) {
	ctx, span := observability.TraceCacheFunction(ctx, "get_questions",
		observability.AttributeQuizID(quizID),
	)
	defer span.End()

	if !qc.available(ctx) {
		span.SetAttributes(attribute.Bool("cache.available", false))
		return nil, false
	}

	raw, err := qc.client.Get(ctx, quizCacheKey(quizID))
	if err != nil {
		if err != ErrCacheMiss {
			qc.logger.Warn(ctx, "Cache read failed", map[string]interface{}{
				"quiz_id": quizID,
				"error":   err.Error(),
			})
		}
		span.SetAttributes(attribute.Bool("cache.hit", false))
		return nil, false
	}

	var questions []models.QuestionForDisplay
	if err := json.Unmarshal([]byte(raw), &questions); err != nil {
		qc.logger.Warn(ctx, "Cache entry unparseable, treating as miss", map[string]interface{}{
			"quiz_id": quizID,
			"error":   err.Error(),
		})
		span.SetAttributes(attribute.Bool("cache.hit", false))
		return nil, false
	}

	span.SetAttributes(attribute.Bool("cache.hit", true))
	return questions, true
}

// SetQuestions stores the redacted questions for a quiz. Failures are
// logged and swallowed.
func (qc *QuizCache) SetQuestions(ctx context.Context, quizID int, questions []models.QuestionForDisplay) {
	ctx, span := observability.TraceCacheFunction(ctx, "set_questions",
		observability.AttributeQuizID(quizID),
	)
	defer span.End()

	if !qc.available(ctx) {
		span.SetAttributes(attribute.Bool("cache.available", false))
		return
	}

	data, err := json.Marshal(questions)
	if err != nil {
		qc.logger.Warn(ctx, "Failed to marshal questions for cache", map[string]interface{}{
			"quiz_id": quizID,
			"error":   err.Error(),
		})
		return
	}

	if err := qc.client.Set(ctx, quizCacheKey(quizID), string(data), qc.ttl); err != nil {
		qc.logger.Warn(ctx, "Cache write failed", map[string]interface{}{
			"quiz_id": quizID,
			"error":   err.Error(),
		})
	}
}
