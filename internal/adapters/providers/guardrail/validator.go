package guardrail

import (
	"context"
	"regexp"
	"strings"
	"sync"

	"golang.org/x/time/rate"

	"github.com/velora/vehicle-discovery/internal/domain/providers"
	"github.com/velora/vehicle-discovery/internal/evaluation"
)

// injectionPatterns flag attempts to repurpose the query channel as a
// prompt channel. Matched case-insensitively on the raw text.
var injectionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)ignore (all |any )?(previous|prior|above) (instructions|prompts)`),
	regexp.MustCompile(`(?i)you are (now|no longer)\b`),
	regexp.MustCompile(`(?i)\bsystem prompt\b`),
	regexp.MustCompile(`(?i)\bdisregard\b.*\b(rules|instructions)\b`),
	regexp.MustCompile(`(?i)act as\b`),
}

// Validator screens queries before they reach the pipeline: length limits,
// prompt-injection patterns, a per-session token-bucket rate limit, and an
// off-topic check backed by a local NLU read.
type Validator struct {
	limits     *evaluation.Guardrails
	classifier providers.NLUProvider

	ratePerSecond rate.Limit
	burst         int

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

var _ providers.GuardrailValidator = (*Validator)(nil)

// Option configures the validator.
type Option func(*Validator)

// WithRateLimit sets the per-session request rate and burst.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(v *Validator) {
		v.ratePerSecond = rate.Limit(perSecond)
		v.burst = burst
	}
}

// WithOffTopicClassifier enables off-topic rejection. The classifier should
// be a cheap local provider; a remote NLU call here would put a network
// round trip in front of every request.
func WithOffTopicClassifier(classifier providers.NLUProvider) Option {
	return func(v *Validator) {
		v.classifier = classifier
	}
}

// NewValidator creates a validator with the given limits.
func NewValidator(limits *evaluation.Guardrails, opts ...Option) *Validator {
	v := &Validator{
		limits:        limits,
		ratePerSecond: 5,
		burst:         10,
		limiters:      make(map[string]*rate.Limiter),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Validate accepts or rejects a query. Rejections carry a reason and never
// reach the attribute mapper.
func (v *Validator) Validate(ctx context.Context, sessionID, text string) providers.GuardrailDecision {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return reject("empty query")
	}
	if !v.limits.WithinLength(trimmed) {
		return reject("query too long")
	}
	for _, p := range injectionPatterns {
		if p.MatchString(trimmed) {
			return reject("query looks like a prompt injection attempt")
		}
	}
	if !v.limiter(sessionID).Allow() {
		return reject("rate limit exceeded for session")
	}
	if v.classifier != nil {
		// A classifier failure never blocks the pipeline; the query just
		// skips the off-topic check.
		if res, err := v.classifier.Understand(ctx, trimmed); err == nil && res != nil {
			if res.Intent == evaluation.IntentUnknown && !v.limits.ShouldProcess(res.Confidence) {
				return reject("query does not look like a vehicle search")
			}
			if len(res.Entities) > v.limits.MaxEntities() {
				return reject("query carries too many constraints")
			}
		}
	}
	return providers.GuardrailDecision{Accepted: true}
}

func (v *Validator) limiter(sessionID string) *rate.Limiter {
	v.mu.Lock()
	defer v.mu.Unlock()
	l, ok := v.limiters[sessionID]
	if !ok {
		l = rate.NewLimiter(v.ratePerSecond, v.burst)
		v.limiters[sessionID] = l
	}
	return l
}

func reject(reason string) providers.GuardrailDecision {
	return providers.GuardrailDecision{Accepted: false, Reason: reason}
}
