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

package cmd

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/ademuri/lastfm-go/lastfm"
)

func TestUpdateCommand(t *testing.T) {
	if updateCmd == nil {
		t.Error("updateCmd is nil")
	}
	if updateCmd.Use != "update" {
		t.Errorf("expected use 'update', got %s", updateCmd.Use)
	}
}

func TestScrobbleToPlay(t *testing.T) {
	p := scrobbleToPlay(" The Band ", "Some Song", 1600000000)
	if p.TrackID != "lastfm:the band/some song" {
		t.Errorf("TrackID = %q", p.TrackID)
	}
	if len(p.ArtistRefs) != 1 || p.ArtistRefs[0].ID != "lastfm:the band" {
		t.Errorf("ArtistRefs = %+v", p.ArtistRefs)
	}
	if !p.PlayedAt.Equal(time.Unix(1600000000, 0)) {
		t.Errorf("PlayedAt = %v", p.PlayedAt)
	}
	if p.ReleaseYear != 0 || p.Features != nil {
		t.Errorf("scrobbles carry no metadata, got %+v", p)
	}
}

func TestTagsToGenres(t *testing.T) {
	tests := []struct {
		name   string
		tags   []string
		counts []int
		want   []string
	}{
		{"Empty", nil, nil, nil},
		{"Lowercased and deduped", []string{"Indie", "indie ", "Rock"}, []int{100, 90, 80}, []string{"indie", "rock"}},
		{"Zero count skipped", []string{"rock", "seen live"}, []int{100, 0}, []string{"rock"}},
		{"Capped", []string{"a", "b", "c", "d", "e", "f"}, nil, []string{"a", "b", "c", "d", "e"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tagsToGenres(tt.tags, tt.counts); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("tagsToGenres() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsServerError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"Server", &lastfm.LastfmError{Code: 503}, true},
		{"Client", &lastfm.LastfmError{Code: 404}, false},
		{"Other", errors.New("boom"), false},
	}
	for _, tt := range tests {
		if got := isServerError(tt.err); got != tt.want {
			t.Errorf("%s: isServerError() = %v, want %v", tt.name, got, tt.want)
		}
	}
}
