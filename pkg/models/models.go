package models

import "strconv"

// Playlist is a discovered playlist as reported by the search API.
// TotalTracks is the remote's own count and may drift from the number of
// tracks actually harvested.
type Playlist struct {
	ID            string  `json:"playlist_id"`
	Name          string  `json:"name"`
	Description   *string `json:"description"`
	Owner         string  `json:"owner"`
	OwnerID       string  `json:"owner_id"`
	TotalTracks   int     `json:"total_tracks"`
	Followers     int     `json:"followers"`
	Public        bool    `json:"public"`
	Collaborative bool    `json:"collaborative"`
	ExternalURL   string  `json:"external_url"`
	ImageURL      *string `json:"image_url"`
}

// Track is a single playlist entry. The Playlist* fields are a snapshot of
// the owning playlist taken at harvest time, not a live join.
type Track struct {
	ID              string  `json:"track_id"`
	Name            string  `json:"name"`
	Artist          string  `json:"artist"`
	ArtistID        string  `json:"artist_id"`
	Album           string  `json:"album"`
	AlbumID         string  `json:"album_id"`
	ReleaseDate     string  `json:"release_date"`
	DurationMS      int     `json:"duration_ms"`
	DurationMinutes float64 `json:"duration_minutes"`
	Popularity      int     `json:"popularity"`
	Explicit        bool    `json:"explicit"`
	ISRC            *string `json:"isrc"`
	SpotifyURL      string  `json:"spotify_url"`
	AddedAt         string  `json:"added_at"`
	AddedBy         string  `json:"added_by"`

	PlaylistID        string `json:"playlist_id"`
	PlaylistName      string `json:"playlist_name"`
	PlaylistOwner     string `json:"playlist_owner"`
	PlaylistFollowers int    `json:"playlist_followers"`

	Features AudioFeatures `json:"audio_features"`
}

// AudioFeatures is the twelve-descriptor record for one track. All fields
// are nullable: a zero AudioFeatures is the explicit all-null record stored
// for tracks whose features could not be resolved.
type AudioFeatures struct {
	Danceability     *float64 `json:"danceability"`
	Energy           *float64 `json:"energy"`
	Key              *int     `json:"key"`
	Loudness         *float64 `json:"loudness"`
	Mode             *int     `json:"mode"`
	Speechiness      *float64 `json:"speechiness"`
	Acousticness     *float64 `json:"acousticness"`
	Instrumentalness *float64 `json:"instrumentalness"`
	Liveness         *float64 `json:"liveness"`
	Valence          *float64 `json:"valence"`
	Tempo            *float64 `json:"tempo"`
	TimeSignature    *int     `json:"time_signature"`
}

// Resolved reports whether the record carries actual values rather than
// being the all-null placeholder.
func (f AudioFeatures) Resolved() bool {
	return f.Danceability != nil
}

// Dataset is the harvested output consumed by downstream tooling.
type Dataset struct {
	Playlists []Playlist `json:"playlists"`
	Tracks    []Track    `json:"tracks"`
}

// Stats holds row counts for the persisted dataset. AudioFeatures counts
// only rows with resolved values, not the all-null placeholders.
type Stats struct {
	Playlists     int64 `json:"playlists"`
	Tracks        int64 `json:"tracks"`
	AudioFeatures int64 `json:"audio_features"`
}

// HarvestRun records one completed harvest for provenance.
type HarvestRun struct {
	ID         string `json:"run_id"`
	StartedAt  int64  `json:"started_at"`
	FinishedAt int64  `json:"finished_at"`
	Playlists  int    `json:"playlists"`
	Tracks     int    `json:"tracks"`
	Features   int    `json:"features"`
}

// DurationMinutes converts a track duration in milliseconds to minutes,
// rounded to two decimal places. Rounding goes through the decimal
// representation: scaling the float first can push a value like
// 222900/60000 (just under 3.715) up to 3.72.
func DurationMinutes(ms int) float64 {
	v, _ := strconv.ParseFloat(strconv.FormatFloat(float64(ms)/60000, 'f', 2, 64), 64)
	return v
}
