package tmdb

import (
	"fmt"
)

// API and image CDN locations. PosterBase and BackdropBase are the width
// presets the original service recommends for list and hero views.
const (
	DefaultBaseURL = "https://api.themoviedb.org/3"
	PosterBase     = "https://image.tmdb.org/t/p/w500"
	BackdropBase   = "https://image.tmdb.org/t/p/w780"

	imdbVideoBase = "http://www.imdb.com/title/%s/videogallery"
)

// Endpoint paths, relative to the API base URL.
const (
	endpointSearchMulti  = "/search/multi"
	endpointSearchMovie  = "/search/movie"
	endpointSearchTV     = "/search/tv"
	endpointSearchPerson = "/search/person"

	endpointMovieDetails      = "/movie/%d"
	endpointTVDetails         = "/tv/%d"
	endpointPersonDetails     = "/person/%d"
	endpointPersonExternalIDs = "/person/%d/external_ids"
)

// Media type discriminator values as they appear in API payloads.
const (
	MediaTypeMovie  = "movie"
	MediaTypeTV     = "tv"
	MediaTypePerson = "person"
)

// MediaEntity is the closed set of domain types a payload can resolve to:
// Movie, TVShow or Person.
type MediaEntity interface {
	// EntityID returns the numeric id, the cache primary key.
	EntityID() int
	// EntityName returns the display name or title used as the secondary
	// cache key (lowercased by the cache, preserved here).
	EntityName() string

	mediaEntity()
}

// Movie is a single film record.
//
// Poster, Backdrop and Trailer are derived once at construction time and
// never recomputed: Poster/Backdrop prepend the image CDN base to the raw
// path fragments, Trailer is built from the IMDb id when one is present.
type Movie struct {
	ID               int
	Title            string
	Name             string
	OriginalTitle    string
	Overview         string
	ReleaseDate      string
	OriginalLanguage string
	Genres           []string
	GenreIDs         []int
	Poster           string
	Backdrop         string
	Popularity       float64
	VoteCount        int
	VoteAverage      float64
	Adult            bool
	Video            bool
	IMDbID           string
	Trailer          string
}

func (m *Movie) EntityID() int      { return m.ID }
func (m *Movie) EntityName() string { return m.Name }
func (m *Movie) mediaEntity()       {}

// TVShow is a single series record. Name and Title carry the same value so
// callers can treat shows and movies uniformly.
type TVShow struct {
	ID               int
	Name             string
	Title            string
	OriginalName     string
	Overview         string
	FirstAirDate     string
	OriginCountry    []string
	OriginalLanguage string
	Genres           []string
	GenreIDs         []int
	Poster           string
	Backdrop         string
	Popularity       float64
	VoteCount        int
	VoteAverage      float64
	Seasons          int
	Runtime          int
	IMDbID           string
	Trailer          string
}

func (t *TVShow) EntityID() int      { return t.ID }
func (t *TVShow) EntityName() string { return t.Name }
func (t *TVShow) mediaEntity()       {}

// Person is an actor/crew record. KnownFor holds the person's associated
// filmography, resolved from search-result payloads only: its members carry
// the narrower search-result field set, never detail-fetch fields.
type Person struct {
	ID          int
	Name        string
	Popularity  float64
	ProfilePath string
	Adult       bool
	IMDbID      string
	KnownFor    []MediaEntity
}

func (p *Person) EntityID() int      { return p.ID }
func (p *Person) EntityName() string { return p.Name }
func (p *Person) mediaEntity()       {}

// ExternalIDs holds the cross-service identifiers of a person.
type ExternalIDs struct {
	IMDbID      string
	FacebookID  string
	InstagramID string
	TwitterID   string
}

// NewMovie builds a Movie from a raw API payload. Unknown keys are ignored
// and missing optional keys leave zero values; only a missing id is an error.
func NewMovie(raw map[string]any) (*Movie, error) {
	id, ok := rawInt(raw, "id")
	if !ok {
		return nil, fmt.Errorf("%w: movie without id", ErrValidation)
	}

	m := &Movie{
		ID:               id,
		OriginalTitle:    rawString(raw, "original_title"),
		Overview:         rawString(raw, "overview"),
		ReleaseDate:      rawString(raw, "release_date"),
		OriginalLanguage: rawString(raw, "original_language"),
		Genres:           rawGenreNames(raw),
		GenreIDs:         rawIntSlice(raw, "genre_ids"),
		Popularity:       rawFloat(raw, "popularity"),
		VoteCount:        int(rawFloat(raw, "vote_count")),
		VoteAverage:      rawFloat(raw, "vote_average"),
		Adult:            rawBool(raw, "adult"),
		Video:            rawBool(raw, "video"),
	}

	m.Name, m.Title = aliasNameTitle(raw)

	if p := rawString(raw, "poster_path"); p != "" {
		m.Poster = PosterBase + p
	}
	if b := rawString(raw, "backdrop_path"); b != "" {
		m.Backdrop = BackdropBase + b
	}
	if imdb := rawString(raw, "imdb_id"); imdb != "" {
		m.IMDbID = imdb
		m.Trailer = fmt.Sprintf(imdbVideoBase, imdb)
	}

	return m, nil
}

// NewTVShow builds a TVShow from a raw API payload. Same tolerance rules as
// NewMovie.
func NewTVShow(raw map[string]any) (*TVShow, error) {
	id, ok := rawInt(raw, "id")
	if !ok {
		return nil, fmt.Errorf("%w: tv show without id", ErrValidation)
	}

	t := &TVShow{
		ID:               id,
		OriginalName:     rawString(raw, "original_name"),
		Overview:         rawString(raw, "overview"),
		FirstAirDate:     rawString(raw, "first_air_date"),
		OriginCountry:    rawStringSlice(raw, "origin_country"),
		OriginalLanguage: rawString(raw, "original_language"),
		Genres:           rawGenreNames(raw),
		GenreIDs:         rawIntSlice(raw, "genre_ids"),
		Popularity:       rawFloat(raw, "popularity"),
		VoteCount:        int(rawFloat(raw, "vote_count")),
		VoteAverage:      rawFloat(raw, "vote_average"),
	}

	t.Name, t.Title = aliasNameTitle(raw)

	if n, ok := rawInt(raw, "number_of_seasons"); ok {
		t.Seasons = n
	} else if seasons, ok := raw["seasons"].([]any); ok {
		t.Seasons = len(seasons)
	}
	if runtimes, ok := raw["episode_run_time"].([]any); ok && len(runtimes) > 0 {
		if r, ok := runtimes[0].(float64); ok {
			t.Runtime = int(r)
		}
	}

	if p := rawString(raw, "poster_path"); p != "" {
		t.Poster = PosterBase + p
	}
	if b := rawString(raw, "backdrop_path"); b != "" {
		t.Backdrop = BackdropBase + b
	}
	if imdb := rawString(raw, "imdb_id"); imdb != "" {
		t.IMDbID = imdb
		t.Trailer = fmt.Sprintf(imdbVideoBase, imdb)
	}

	return t, nil
}

// NewPerson builds a Person from a raw API payload. KnownFor resolution
// happens in the dispatcher, which passes the resolved members in; the raw
// known_for key itself is ignored here.
func NewPerson(raw map[string]any, knownFor []MediaEntity) (*Person, error) {
	id, ok := rawInt(raw, "id")
	if !ok {
		return nil, fmt.Errorf("%w: person without id", ErrValidation)
	}

	return &Person{
		ID:          id,
		Name:        rawString(raw, "name"),
		Popularity:  rawFloat(raw, "popularity"),
		ProfilePath: rawString(raw, "profile_path"),
		Adult:       rawBool(raw, "adult"),
		IMDbID:      rawString(raw, "imdb_id"),
		KnownFor:    knownFor,
	}, nil
}

// aliasNameTitle reads name and/or title from a raw payload and returns the
// value for both fields. When the payload supplies conflicting values the
// result follows a fixed key order; callers should not depend on which wins.
func aliasNameTitle(raw map[string]any) (name, title string) {
	v := rawString(raw, "name")
	if t := rawString(raw, "title"); t != "" {
		v = t
	}
	return v, v
}

// rawString reads a string field, returning "" when absent or mistyped.
func rawString(raw map[string]any, key string) string {
	s, _ := raw[key].(string)
	return s
}

// rawFloat reads a numeric field. JSON numbers decode as float64.
func rawFloat(raw map[string]any, key string) float64 {
	f, _ := raw[key].(float64)
	return f
}

// rawInt reads a numeric field as an int, reporting whether it was present.
// Accepts int as well so hand-built payloads in tests behave like decoded
// JSON.
func rawInt(raw map[string]any, key string) (int, bool) {
	switch v := raw[key].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	}
	return 0, false
}

func rawBool(raw map[string]any, key string) bool {
	b, _ := raw[key].(bool)
	return b
}

func rawStringSlice(raw map[string]any, key string) []string {
	items, ok := raw[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func rawIntSlice(raw map[string]any, key string) []int {
	items, ok := raw[key].([]any)
	if !ok {
		return nil
	}
	out := make([]int, 0, len(items))
	for _, item := range items {
		switch v := item.(type) {
		case float64:
			out = append(out, int(v))
		case int:
			out = append(out, v)
		}
	}
	return out
}

// rawGenreNames flattens a detail-endpoint genres list of {id, name} objects
// into the name strings, preserving order. Search payloads carry genre_ids
// instead, which stay as ids (resolving them would cost a network round
// trip).
func rawGenreNames(raw map[string]any) []string {
	items, ok := raw["genres"].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		if name, ok := obj["name"].(string); ok {
			out = append(out, name)
		}
	}
	return out
}
