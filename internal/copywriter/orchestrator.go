/*
Copyright 2020 Google LLC

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package copywriter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ademuri/listening-insights/internal/cache"
	"github.com/ademuri/listening-insights/internal/llm"
)

// Defaults for Config.
const (
	DefaultTTL        = 24 * time.Hour
	DefaultFailureTTL = 5 * time.Minute
	DefaultTimeout    = 20 * time.Second
)

// Config controls generation.
type Config struct {
	Enabled bool
	// TTL applies to generated copy, FailureTTL to cached fallbacks.
	TTL        time.Duration
	FailureTTL time.Duration
	Timeout    time.Duration
}

func (c Config) withDefaults() Config {
	if c.TTL <= 0 {
		c.TTL = DefaultTTL
	}
	if c.FailureTTL <= 0 {
		c.FailureTTL = DefaultFailureTTL
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	return c
}

// Cache stores generated copy. *cache.Service satisfies it.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key, value string, ttl time.Duration)
}

// cachedCopy is the stored form of a Result.
type cachedCopy struct {
	Text   string `json:"text"`
	Source Source `json:"source"`
}

// Orchestrator generates copy for insight payloads.
type Orchestrator struct {
	gen     llm.Generator
	cache   Cache
	cfg     Config
	log     logrus.FieldLogger
	prompts *PromptBuilder
	rnd     Rand
	now     func() time.Time
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithRand fixes the seed-word source.
func WithRand(r Rand) Option {
	return func(o *Orchestrator) {
		o.rnd = r
	}
}

// WithClock overrides the clock used to rotate fallbacks.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		o.now = now
	}
}

// New returns an orchestrator. gen and c may be nil: a nil generator always
// falls back and a nil cache disables caching.
func New(gen llm.Generator, c Cache, cfg Config, log logrus.FieldLogger, opts ...Option) *Orchestrator {
	if log == nil {
		log = logrus.StandardLogger()
	}
	o := &Orchestrator{
		gen:   gen,
		cache: c,
		cfg:   cfg.withDefaults(),
		log:   log,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	o.prompts = NewPromptBuilder(o.rnd)
	return o
}

// Request asks for copy of one insight type.
type Request struct {
	UserID  string
	Type    InsightType
	Payload any
	// Regenerate skips the cache lookup; the new copy still overwrites the
	// cached entry.
	Regenerate bool
}

// Generate never fails: every generator problem yields fallback copy. An
// unknown insight type or a payload of the wrong type panics.
func (o *Orchestrator) Generate(ctx context.Context, req Request) Result {
	info := infoFor(req.Type)
	checkPayload(req.Type, req.Payload)
	res := Result{Type: req.Type, RequestID: uuid.NewString()}
	log := o.log.WithFields(logrus.Fields{
		"request_id": res.RequestID,
		"type":       string(req.Type),
		"user":       req.UserID,
	})

	if !o.cfg.Enabled {
		res.Text = disabledFor(req.Type)
		res.Source = SourceDisabled
		res.Parsed = parseStructured(req.Type, res.Text)
		log.WithField("source", res.Source).Debug("Copy generation disabled")
		return res
	}

	key := ""
	if o.cache != nil {
		k, err := cache.Key(req.UserID, string(req.Type), req.Payload)
		if err != nil {
			log.WithError(err).Warn("Could not build cache key, skipping cache")
		} else {
			key = k
		}
	}

	if key != "" && !req.Regenerate {
		if hit, ok := o.lookup(ctx, key, log); ok {
			res.Text = hit.Text
			res.Source = SourceCache
			res.FromCache = true
			res.Fallback = hit.Source == SourceFallback
			res.Parsed = parseStructured(req.Type, res.Text)
			log.WithField("source", res.Source).Info("Served copy from cache")
			return res
		}
	}

	prompt := o.prompts.Build(req.Type, req.Payload)
	text, err := o.call(ctx, prompt)
	if err != nil {
		log.WithError(err).Warn("Generation failed, using fallback")
		res.Text = fallbackText(req.Type, req.Payload, o.now())
		res.Source = SourceFallback
		res.Fallback = true
		res.Parsed = parseStructured(req.Type, res.Text)
		o.store(ctx, key, res, o.cfg.FailureTTL, log)
		return res
	}

	res.Text = text
	res.Source = SourceAI
	if info.json {
		res.Parsed = parseStructured(req.Type, text)
		if failed, ok := res.Parsed.(ParseFailed); ok {
			log.WithError(failed.Err).Warn("Response did not validate, keeping raw text")
		}
	}
	o.store(ctx, key, res, o.cfg.TTL, log)
	log.WithFields(logrus.Fields{"source": res.Source, "seeds": len(prompt.Seeds)}).Info("Generated copy")
	return res
}

func (o *Orchestrator) call(ctx context.Context, p Prompt) (string, error) {
	if o.gen == nil {
		return "", errors.New("no generator configured")
	}
	ctx, cancel := context.WithTimeout(ctx, o.cfg.Timeout)
	defer cancel()

	type reply struct {
		text string
		err  error
	}
	done := make(chan reply, 1)
	go func() {
		text, err := o.gen.Generate(ctx, p.Request())
		done <- reply{text, err}
	}()

	var text string
	select {
	case r := <-done:
		if r.err != nil {
			return "", r.err
		}
		text = r.text
	case <-ctx.Done():
		return "", ctx.Err()
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", llm.ErrEmptyResponse
	}
	return text, nil
}

func (o *Orchestrator) lookup(ctx context.Context, key string, log logrus.FieldLogger) (cachedCopy, bool) {
	raw, ok := o.cache.Get(ctx, key)
	if !ok {
		return cachedCopy{}, false
	}
	var hit cachedCopy
	if err := json.Unmarshal([]byte(raw), &hit); err != nil || hit.Text == "" {
		log.WithField("key", key).Warn("Discarding unreadable cache entry")
		return cachedCopy{}, false
	}
	return hit, true
}

func (o *Orchestrator) store(ctx context.Context, key string, res Result, ttl time.Duration, log logrus.FieldLogger) {
	if key == "" {
		return
	}
	b, err := json.Marshal(cachedCopy{Text: res.Text, Source: res.Source})
	if err != nil {
		log.WithError(fmt.Errorf("encode cache entry: %w", err)).Warn("Skipping cache write")
		return
	}
	o.cache.Set(ctx, key, string(b), ttl)
}
