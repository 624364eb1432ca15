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

package analysis

import (
	"strings"
	"time"
)

// ArtistRef points from a play at one of its artists.
type ArtistRef struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

// AudioFeatures are measured features, when the provider supplied them.
type AudioFeatures struct {
	Valence      float64 `json:"valence" yaml:"valence"`
	Energy       float64 `json:"energy" yaml:"energy"`
	Danceability float64 `json:"danceability" yaml:"danceability"`
	Tempo        float64 `json:"tempo" yaml:"tempo"`
}

// PlayEvent is one play of a track.
type PlayEvent struct {
	TrackID     string         `json:"trackId" yaml:"track_id"`
	TrackName   string         `json:"trackName" yaml:"track_name"`
	ArtistRefs  []ArtistRef    `json:"artists" yaml:"artists"`
	DurationMs  int            `json:"durationMs" yaml:"duration_ms"`
	Popularity  int            `json:"popularity" yaml:"popularity"`
	Explicit    bool           `json:"explicit" yaml:"explicit"`
	ReleaseYear int            `json:"releaseYear" yaml:"release_year"`
	PlayedAt    time.Time      `json:"playedAt" yaml:"played_at"`
	Features    *AudioFeatures `json:"features,omitempty" yaml:"features,omitempty"`
}

// TrackKey identifies the track across repeated plays.
func (p PlayEvent) TrackKey() string {
	if p.TrackID != "" {
		return p.TrackID
	}
	return strings.ToLower(p.TrackName) + "|" + strings.ToLower(p.PrimaryArtistName())
}

// ArtistKey identifies the primary artist of the play.
func (p PlayEvent) ArtistKey() string {
	if len(p.ArtistRefs) == 0 {
		return ""
	}
	if p.ArtistRefs[0].ID != "" {
		return p.ArtistRefs[0].ID
	}
	return strings.ToLower(p.ArtistRefs[0].Name)
}

// PrimaryArtistName is the first artist's name, or "" when there is none.
func (p PlayEvent) PrimaryArtistName() string {
	if len(p.ArtistRefs) == 0 {
		return ""
	}
	return p.ArtistRefs[0].Name
}

// ArtistProfile is reference data about an artist.
type ArtistProfile struct {
	ID            string   `json:"id" yaml:"id"`
	Name          string   `json:"name" yaml:"name"`
	Genres        []string `json:"genres" yaml:"genres"`
	Popularity    int      `json:"popularity" yaml:"popularity"`
	FollowerCount int64    `json:"followers" yaml:"followers"`
}

// History is the immutable input to every selector.
type History struct {
	Plays   []PlayEvent
	Artists []ArtistProfile
	// Now anchors recency weighting and ages. Zero means time.Now().
	Now time.Time
	// Location is used for hour-of-day bucketing. Nil means UTC.
	Location *time.Location
}

func (h History) now() time.Time {
	if h.Now.IsZero() {
		return time.Now()
	}
	return h.Now
}

func (h History) location() *time.Location {
	if h.Location == nil {
		return time.UTC
	}
	return h.Location
}

func (h History) currentYear() int {
	return h.now().In(h.location()).Year()
}

// ArtistIndex resolves artist refs against the supplied profiles, by id and
// then by case-insensitive name.
type ArtistIndex struct {
	byID   map[string]ArtistProfile
	byName map[string]ArtistProfile
}

// NewArtistIndex indexes artists.
func NewArtistIndex(artists []ArtistProfile) ArtistIndex {
	idx := ArtistIndex{
		byID:   make(map[string]ArtistProfile, len(artists)),
		byName: make(map[string]ArtistProfile, len(artists)),
	}
	for _, a := range artists {
		if a.ID != "" {
			idx.byID[a.ID] = a
		}
		if a.Name != "" {
			idx.byName[strings.ToLower(a.Name)] = a
		}
	}
	return idx
}

// Resolve returns the profile for ref.
func (idx ArtistIndex) Resolve(ref ArtistRef) (ArtistProfile, bool) {
	if ref.ID != "" {
		if a, ok := idx.byID[ref.ID]; ok {
			return a, true
		}
	}
	a, ok := idx.byName[strings.ToLower(ref.Name)]
	return a, ok
}

// PrimaryGenres returns the genres of the play's first resolvable artist.
func (idx ArtistIndex) PrimaryGenres(p PlayEvent) []string {
	for _, ref := range p.ArtistRefs {
		if a, ok := idx.Resolve(ref); ok && len(a.Genres) > 0 {
			return a.Genres
		}
	}
	return nil
}

// Placeholders used instead of empty strings.
const (
	NoTracksAvailable   = "No tracks available"
	NoGenresAvailable   = "No genres available"
	NoListeningData     = "No listening data"
	UnknownTrack        = "Unknown Track"
	UnknownArtist       = "Unknown Artist"
	UnknownEra          = "Unknown"
	DefaultTopGenre     = "Pop"
	UnknownDominantMood = "unknown"
)

// TrackRef names a track for display.
type TrackRef struct {
	Name   string `json:"name" yaml:"name"`
	Artist string `json:"artist" yaml:"artist"`
	Year   int    `json:"year,omitempty" yaml:"year,omitempty"`
}

func unknownTrack() TrackRef {
	return TrackRef{Name: UnknownTrack, Artist: UnknownArtist}
}

func trackRefOf(p PlayEvent) TrackRef {
	ref := TrackRef{Name: p.TrackName, Artist: p.PrimaryArtistName(), Year: p.ReleaseYear}
	if ref.Name == "" {
		ref.Name = UnknownTrack
	}
	if ref.Artist == "" {
		ref.Artist = UnknownArtist
	}
	return ref
}

// DecadeShare is the share of weight (0-100) falling in a decade.
type DecadeShare struct {
	Decade  int     `json:"decade" yaml:"decade"`
	Percent float64 `json:"percent" yaml:"percent"`
}

// MusicalAgePayload summarizes the release-year profile of recent plays.
type MusicalAgePayload struct {
	Age         int           `json:"age" yaml:"age"`
	MedianYear  int           `json:"medianYear" yaml:"median_year"`
	MeanYear    float64       `json:"meanYear" yaml:"mean_year"`
	StdDevYears float64       `json:"stdDevYears" yaml:"std_dev_years"`
	TrackCount  int           `json:"trackCount" yaml:"track_count"`
	PlayCount   int           `json:"playCount" yaml:"play_count"`
	Era         string        `json:"era" yaml:"era"`
	Decades     []DecadeShare `json:"decades" yaml:"decades"`
	Oldest      TrackRef      `json:"oldest" yaml:"oldest"`
	Newest      TrackRef      `json:"newest" yaml:"newest"`
	Description string        `json:"description" yaml:"description"`
}

// Mood names.
const (
	MoodHappy      = "happy"
	MoodEnergetic  = "energetic"
	MoodChill      = "chill"
	MoodMelancholy = "melancholy"
)

// Moods lists moods in classification and tie-break order.
var Moods = []string{MoodHappy, MoodEnergetic, MoodChill, MoodMelancholy}

// MoodShare is the count and percentage of tracks in one mood.
type MoodShare struct {
	Mood    string `json:"mood" yaml:"mood"`
	Count   int    `json:"count" yaml:"count"`
	Percent int    `json:"percent" yaml:"percent"`
}

// MoodRingPayload distributes unique tracks over four moods.
type MoodRingPayload struct {
	Moods           []MoodShare `json:"moods" yaml:"moods"`
	Dominant        string      `json:"dominant" yaml:"dominant"`
	TrackCount      int         `json:"trackCount" yaml:"track_count"`
	AvgValence      float64     `json:"avgValence" yaml:"avg_valence"`
	AvgEnergy       float64     `json:"avgEnergy" yaml:"avg_energy"`
	AvgDanceability float64     `json:"avgDanceability" yaml:"avg_danceability"`
	MeasuredCount   int         `json:"measuredCount" yaml:"measured_count"`
	Description     string      `json:"description" yaml:"description"`
}

// GenreCount is a genre and how many artists carry it.
type GenreCount struct {
	Genre string `json:"genre" yaml:"genre"`
	Count int    `json:"count" yaml:"count"`
}

// GenrePassportPayload describes the breadth of genres across artists.
type GenrePassportPayload struct {
	DistinctGenres   int          `json:"distinctGenres" yaml:"distinct_genres"`
	ExplorationScore int          `json:"explorationScore" yaml:"exploration_score"`
	TopGenres        []GenreCount `json:"topGenres" yaml:"top_genres"`
	ArtistCount      int          `json:"artistCount" yaml:"artist_count"`
	Description      string       `json:"description" yaml:"description"`
}

// NightOwlPayload is the hour-of-day listening profile.
type NightOwlPayload struct {
	Histogram    [24]int `json:"histogram" yaml:"histogram,flow"`
	PeakHour     int     `json:"peakHour" yaml:"peak_hour"`
	IsNightOwl   bool    `json:"isNightOwl" yaml:"is_night_owl"`
	Score        float64 `json:"score" yaml:"score"`
	NightPlays   int     `json:"nightPlays" yaml:"night_plays"`
	TotalPlays   int     `json:"totalPlays" yaml:"total_plays"`
	SkippedPlays int     `json:"skippedPlays" yaml:"skipped_plays"`
	Label        string  `json:"label" yaml:"label"`
	Description  string  `json:"description" yaml:"description"`
}

// RadarAxes are the five radar scores, each 0-100.
type RadarAxes struct {
	Positivity  float64 `json:"positivity" yaml:"positivity"`
	Energy      float64 `json:"energy" yaml:"energy"`
	Exploration float64 `json:"exploration" yaml:"exploration"`
	Nostalgia   float64 `json:"nostalgia" yaml:"nostalgia"`
	NightOwl    float64 `json:"nightOwl" yaml:"night_owl"`
}

// RadarStats are the supporting statistics behind each axis.
type RadarStats struct {
	MeanValence      float64 `json:"meanValence" yaml:"mean_valence"`
	MeanEnergy       float64 `json:"meanEnergy" yaml:"mean_energy"`
	MeanTempoNorm    float64 `json:"meanTempoNorm" yaml:"mean_tempo_norm"`
	GenreEntropy     float64 `json:"genreEntropy" yaml:"genre_entropy"`
	GenreTokens      int     `json:"genreTokens" yaml:"genre_tokens"`
	MedianTrackAge   float64 `json:"medianTrackAge" yaml:"median_track_age"`
	DatedTracks      int     `json:"datedTracks" yaml:"dated_tracks"`
	NightPlays       int     `json:"nightPlays" yaml:"night_plays"`
	TimestampedPlays int     `json:"timestampedPlays" yaml:"timestamped_plays"`
	MappedPlays      int     `json:"mappedPlays" yaml:"mapped_plays"`
}

// RadarPayload is the five-axis listening profile.
type RadarPayload struct {
	Axes        RadarAxes  `json:"axes" yaml:"axes"`
	Stats       RadarStats `json:"stats" yaml:"stats"`
	TopGenre    string     `json:"topGenre" yaml:"top_genre"`
	SampleTrack TrackRef   `json:"sampleTrack" yaml:"sample_track"`
	PlayCount   int        `json:"playCount" yaml:"play_count"`
	// IsDefault marks a payload built from empty input. Zero scores alone do
	// not mean "no data".
	IsDefault bool `json:"isDefault" yaml:"is_default"`
}

// Confidence is a sample-size quality label attached to a metric.
type Confidence string

const (
	ConfidenceInsufficient Confidence = "insufficient"
	ConfidenceLow          Confidence = "low"
	ConfidenceMedium       Confidence = "medium"
	ConfidenceHigh         Confidence = "high"
)

// Metric is a 0-1 score with its confidence and how it was computed.
type Metric struct {
	Score      float64    `json:"score" yaml:"score"`
	Confidence Confidence `json:"confidence" yaml:"confidence"`
	Formula    string     `json:"formula" yaml:"formula"`
	SampleSize int        `json:"sampleSize" yaml:"sample_size"`
}

// VolatilityMetric carries the mapped-track floor so callers can render a
// "not enough data" state.
type VolatilityMetric struct {
	Metric           `yaml:",inline"`
	MappedTrackCount int `json:"mappedTrackCount" yaml:"mapped_track_count"`
	MinRequired      int `json:"minRequired" yaml:"min_required"`
}

// PsychoPayload holds the five psychometric scores.
type PsychoPayload struct {
	MusicalDiversity    Metric           `json:"musicalDiversity" yaml:"musical_diversity"`
	ExplorationRate     Metric           `json:"explorationRate" yaml:"exploration_rate"`
	TemporalConsistency Metric           `json:"temporalConsistency" yaml:"temporal_consistency"`
	MainstreamAffinity  Metric           `json:"mainstreamAffinity" yaml:"mainstream_affinity"`
	EmotionalVolatility VolatilityMetric `json:"emotionalVolatility" yaml:"emotional_volatility"`
}
