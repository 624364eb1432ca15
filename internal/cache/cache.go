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

// Package cache stores generated copy in two tiers: an optional remote
// backend and a bounded in-process store.
package cache

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

// Backend is a key-value store with per-entry expiry.
type Backend interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Clear(ctx context.Context) error
}

// Service tries the remote backend first and falls through to the local
// tier on any remote error. Remote errors are logged, never returned from
// Get or Set.
type Service struct {
	remote Backend
	local  *Memory
	log    logrus.FieldLogger
}

// NewService builds a cache. remote may be nil, in which case only the local
// tier is used.
func NewService(local *Memory, remote Backend, log logrus.FieldLogger) *Service {
	if local == nil {
		local = NewMemory(DefaultCapacity)
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Service{remote: remote, local: local, log: log}
}

// Get returns the cached value for key.
func (s *Service) Get(ctx context.Context, key string) (string, bool) {
	if s.remote != nil {
		v, ok, err := s.remote.Get(ctx, key)
		switch {
		case err != nil:
			s.log.WithError(err).WithField("key", key).Warn("Remote cache read failed, using local tier")
		case ok:
			s.log.WithField("key", key).Debug("Remote cache hit")
			return v, true
		}
	}
	v, ok, _ := s.local.Get(ctx, key)
	if ok {
		s.log.WithField("key", key).Debug("Local cache hit")
	}
	return v, ok
}

// Set writes value to the remote tier when configured, and always to the
// local tier.
func (s *Service) Set(ctx context.Context, key, value string, ttl time.Duration) {
	if s.remote != nil {
		if err := s.remote.Set(ctx, key, value, ttl); err != nil {
			s.log.WithError(err).WithField("key", key).Warn("Remote cache write failed, using local tier")
		}
	}
	_ = s.local.Set(ctx, key, value, ttl)
}

// Clear empties both tiers. The local tier is always cleared; a remote
// failure is returned.
func (s *Service) Clear(ctx context.Context) error {
	_ = s.local.Clear(ctx)
	if s.remote == nil {
		return nil
	}
	if err := s.remote.Clear(ctx); err != nil {
		return fmt.Errorf("clearing remote cache: %w", err)
	}
	return nil
}

// Key derives the cache key for an insight payload:
// insight:{userID}:{insightType}:{first 8 hex chars of md5(canonical JSON)}.
func Key(userID, insightType string, payload any) (string, error) {
	canonical, err := CanonicalJSON(payload)
	if err != nil {
		return "", fmt.Errorf("encoding %s payload: %w", insightType, err)
	}
	sum := md5.Sum(canonical)
	return fmt.Sprintf("insight:%s:%s:%s", userID, insightType, hex.EncodeToString(sum[:])[:8]), nil
}

// CanonicalJSON encodes v with object keys sorted at every level, so equal
// payloads always produce identical bytes.
func CanonicalJSON(v any) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var generic any
	if err := dec.Decode(&generic); err != nil {
		return nil, err
	}
	return json.Marshal(generic)
}
