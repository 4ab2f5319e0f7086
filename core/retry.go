package core

import (
	"log"
	"math"
	"math/rand"
	"strings"
	"time"
)

// RetryProfile bounds a retry loop. MaxRetries counts total attempts, so
// MaxRetries=3 means at most 2 retries after the first call. Matchers are
// lower-case substrings checked against the error message; a non-matching
// error surfaces immediately.
type RetryProfile struct {
	MaxRetries int
	Matchers   []string
	BaseDelay  time.Duration
	MaxDelay   time.Duration

	// Sleep and Jitter are overridable for tests. Nil means real sleep and
	// uniform(0, 0.1*delay) jitter.
	Sleep  func(time.Duration)
	Jitter func(delay time.Duration) time.Duration
}

var transientMatchers = []string{"quota", "429", "temporarily", "proxy", "502", "gateway"}

// TranscriptRetryProfile covers transcript-source calls.
func TranscriptRetryProfile() RetryProfile {
	return RetryProfile{
		MaxRetries: 5,
		Matchers:   transientMatchers,
		BaseDelay:  time.Second,
		MaxDelay:   60 * time.Second,
	}
}

// EmbeddingRetryProfile covers embedding calls. Embedding endpoints throttle
// harder, hence the longer base delay.
func EmbeddingRetryProfile() RetryProfile {
	return RetryProfile{
		MaxRetries: 5,
		Matchers:   transientMatchers,
		BaseDelay:  2 * time.Second,
		MaxDelay:   60 * time.Second,
	}
}

// GenerationRetryProfile covers chat-completion calls.
func GenerationRetryProfile() RetryProfile {
	return RetryProfile{
		MaxRetries: 3,
		Matchers:   []string{"quota", "429", "rate limit"},
		BaseDelay:  time.Second,
		MaxDelay:   60 * time.Second,
	}
}

// Retry runs op with exponential backoff and jitter. Errors whose lower-cased
// message contains none of the profile's matchers are returned immediately;
// the final attempt's error is returned without sleeping.
func Retry(op func() error, p RetryProfile) error {
	if p.MaxRetries <= 0 {
		p.MaxRetries = 1
	}
	sleep := p.Sleep
	if sleep == nil {
		sleep = time.Sleep
	}
	jitter := p.Jitter
	if jitter == nil {
		jitter = func(delay time.Duration) time.Duration {
			return time.Duration(rand.Float64() * 0.1 * float64(delay))
		}
	}

	var lastErr error
	for attempt := 0; attempt < p.MaxRetries; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}

		if !matchesAny(lastErr.Error(), p.Matchers) || attempt == p.MaxRetries-1 {
			return lastErr
		}

		delay := time.Duration(math.Min(
			float64(p.BaseDelay)*math.Pow(2, float64(attempt)),
			float64(p.MaxDelay),
		))
		total := delay + jitter(delay)
		log.Printf("Retry %d/%d after %.2fs due to error: %v", attempt+1, p.MaxRetries, total.Seconds(), lastErr)
		sleep(total)
	}
	return lastErr
}

func matchesAny(msg string, matchers []string) bool {
	if len(matchers) == 0 {
		return true
	}
	msg = strings.ToLower(msg)
	for _, m := range matchers {
		if strings.Contains(msg, m) {
			return true
		}
	}
	return false
}
