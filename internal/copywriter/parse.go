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
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// cleanJSONResponse strips markdown fences and any chatter around the
// outermost JSON object.
func cleanJSONResponse(response string) string {
	cleaned := strings.TrimSpace(response)

	if strings.HasPrefix(cleaned, "```json") {
		cleaned = strings.TrimPrefix(cleaned, "```json")
		cleaned = strings.TrimSuffix(cleaned, "```")
		cleaned = strings.TrimSpace(cleaned)
	} else if strings.HasPrefix(cleaned, "```") {
		cleaned = strings.TrimPrefix(cleaned, "```")
		cleaned = strings.TrimSuffix(cleaned, "```")
		cleaned = strings.TrimSpace(cleaned)
	}

	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start >= 0 && end > start {
		cleaned = cleaned[start : end+1]
	}
	return cleaned
}

// parseStructured validates a JSON response for t. Free-text types yield nil.
func parseStructured(t InsightType, text string) Parsed {
	info := infoFor(t)
	if !info.json {
		return nil
	}

	var fields map[string]any
	if err := json.Unmarshal([]byte(cleanJSONResponse(text)), &fields); err != nil {
		return ParseFailed{Raw: text, Err: fmt.Errorf("decode %s response: %w", t, err)}
	}
	if fields == nil {
		return ParseFailed{Raw: text, Err: errors.New("response is not a JSON object")}
	}
	for _, key := range info.requiredKeys {
		s, ok := fields[key].(string)
		if !ok || strings.TrimSpace(s) == "" {
			return ParseFailed{Raw: text, Err: fmt.Errorf("%s response missing %q", t, key)}
		}
	}
	return ParsedOK{Fields: fields}
}
