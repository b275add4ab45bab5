package tmdb

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/defaltsimon/tmdbie/cache"
)

// searchConcurrency bounds SearchMany fan-out.
const searchConcurrency = 4

// Client is the public entry point: it orchestrates search, cache checks,
// detail fetches and entity construction.
type Client struct {
	apiKey     string
	baseURL    string
	transport  Transport
	cache      *cache.Store[MediaEntity]
	dispatcher *Dispatcher
	logger     zerolog.Logger
}

// NewClient creates a Client. Without options it uses the pooled transport,
// a private cache and a no-op logger.
func NewClient(apiKey string, opts ...ClientOption) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: API key is required", ErrTMDB)
	}

	o := clientOptions{
		baseURL: DefaultBaseURL,
		logger:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	transport := o.transport
	if transport == nil {
		transportOpts := append([]TransportOption{WithTransportLogger(o.logger)}, o.transportOpts...)
		var err error
		transport, err = NewTransport(o.transportName, transportOpts...)
		if err != nil {
			return nil, err
		}
	}

	store := o.cache
	if store == nil {
		store = cache.New[MediaEntity]()
	}

	return &Client{
		apiKey:     apiKey,
		baseURL:    o.baseURL,
		transport:  transport,
		cache:      store,
		dispatcher: NewDispatcher(store, o.logger),
		logger:     o.logger,
	}, nil
}

// Cache exposes the client's result store, so callers can share it with
// other clients or inspect it directly.
func (c *Client) Cache() *cache.Store[MediaEntity] {
	return c.cache
}

// Search resolves a free-text query to a single typed entity.
//
// The cache is consulted by query string first (unless WithoutCache). On a
// miss the multi-search endpoint is queried and only its first result is
// considered; ranking among several matches is the API's business, not this
// client's. Movie and TV results get a second, type-specific detail fetch
// for a fuller record; person results use the search record directly, so a
// Person resolved this way carries search-result fields only.
//
// An empty query and an empty result list both return (nil, nil): not found
// is not an error. A detail fetch that comes back empty fails with ErrNoData
// rather than returning a partially built entity.
func (c *Client) Search(ctx context.Context, query string, opts ...SearchOption) (MediaEntity, error) {
	if query == "" {
		return nil, nil
	}

	o := searchOptions{checkCache: true}
	for _, opt := range opts {
		opt(&o)
	}

	if o.checkCache {
		if hit, ok := c.cache.ByName(query); ok {
			c.logger.Debug().Str("query", query).Msg("Search served from cache")
			return hit, nil
		}
	}

	results, err := c.searchList(ctx, endpointSearchMulti, query, o)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		c.logger.Debug().Str("query", query).Msg("Search returned no results")
		return nil, nil
	}

	first := results[0]
	id, ok := rawInt(first, "id")
	if !ok {
		return nil, fmt.Errorf("%w: search result without id", ErrValidation)
	}

	payload := first
	switch mediaType := rawString(first, "media_type"); mediaType {
	case MediaTypeMovie, MediaTypeTV:
		path := endpointMovieDetails
		if mediaType == MediaTypeTV {
			path = endpointTVDetails
		}
		detail, err := c.fetch(ctx, fmt.Sprintf(path, id), nil)
		if err != nil {
			return nil, err
		}
		if len(detail) == 0 {
			return nil, fmt.Errorf("%w: %s detail for id %d", ErrNoData, mediaType, id)
		}
		// Detail payloads do not repeat the discriminator.
		detail["media_type"] = mediaType
		payload = detail
	default:
		// Person results are used as-is, skipping the detail fetch; the
		// dispatcher rejects anything that is not movie/tv/person.
	}

	entity, err := c.dispatcher.Build(payload)
	if err != nil {
		return nil, err
	}

	c.cache.Put(entity)
	return entity, nil
}

// SearchMany resolves several queries concurrently with bounded
// parallelism. The returned slice is aligned with queries; entries whose
// query found nothing are nil. The first hard error cancels the remaining
// fetches.
func (c *Client) SearchMany(ctx context.Context, queries []string, opts ...SearchOption) ([]MediaEntity, error) {
	results := make([]MediaEntity, len(queries))
	if len(queries) == 0 {
		return results, nil
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(searchConcurrency)

	var mu sync.Mutex
	for i, query := range queries {
		i, query := i, query
		g.Go(func() error {
			entity, err := c.Search(ctx, query, opts...)
			if err != nil {
				return err
			}
			mu.Lock()
			results[i] = entity
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// SearchMovies runs a movie-only search and returns every result as a typed
// entity.
func (c *Client) SearchMovies(ctx context.Context, query string, opts ...SearchOption) ([]*Movie, error) {
	return searchTyped[*Movie](c, ctx, endpointSearchMovie, MediaTypeMovie, query, opts)
}

// SearchTV runs a series-only search.
func (c *Client) SearchTV(ctx context.Context, query string, opts ...SearchOption) ([]*TVShow, error) {
	return searchTyped[*TVShow](c, ctx, endpointSearchTV, MediaTypeTV, query, opts)
}

// SearchPeople runs a people-only search.
func (c *Client) SearchPeople(ctx context.Context, query string, opts ...SearchOption) ([]*Person, error) {
	return searchTyped[*Person](c, ctx, endpointSearchPerson, MediaTypePerson, query, opts)
}

// searchTyped queries a single-type search endpoint and instantiates every
// result. Single-type endpoints omit the media_type discriminator, so it is
// injected before dispatch.
func searchTyped[T MediaEntity](c *Client, ctx context.Context, endpoint, mediaType, query string, opts []SearchOption) ([]T, error) {
	if query == "" {
		return nil, nil
	}

	o := searchOptions{checkCache: true}
	for _, opt := range opts {
		opt(&o)
	}

	results, err := c.searchList(ctx, endpoint, query, o)
	if err != nil {
		return nil, err
	}

	entities := make([]T, 0, len(results))
	for _, raw := range results {
		raw["media_type"] = mediaType
		entity, err := c.dispatcher.Build(raw)
		if err != nil {
			c.logger.Warn().Err(err).Msg("Skipping unbuildable search result")
			continue
		}
		entities = append(entities, entity.(T))
	}
	return entities, nil
}

// MovieDetails fetches and constructs the full record for a movie id, and
// stores it in the cache.
func (c *Client) MovieDetails(ctx context.Context, id int) (*Movie, error) {
	raw, err := c.detail(ctx, endpointMovieDetails, MediaTypeMovie, id)
	if err != nil {
		return nil, err
	}
	movie, err := NewMovie(raw)
	if err != nil {
		return nil, err
	}
	c.cache.Put(movie)
	return movie, nil
}

// TVDetails fetches and constructs the full record for a series id, and
// stores it in the cache.
func (c *Client) TVDetails(ctx context.Context, id int) (*TVShow, error) {
	raw, err := c.detail(ctx, endpointTVDetails, MediaTypeTV, id)
	if err != nil {
		return nil, err
	}
	show, err := NewTVShow(raw)
	if err != nil {
		return nil, err
	}
	c.cache.Put(show)
	return show, nil
}

// PersonDetails fetches and constructs the full record for a person id, and
// stores it in the cache. Detail payloads carry no known_for list.
func (c *Client) PersonDetails(ctx context.Context, id int) (*Person, error) {
	raw, err := c.detail(ctx, endpointPersonDetails, MediaTypePerson, id)
	if err != nil {
		return nil, err
	}
	person, err := NewPerson(raw, nil)
	if err != nil {
		return nil, err
	}
	c.cache.Put(person)
	return person, nil
}

// PersonExternalIDs fetches a person's cross-service identifiers.
func (c *Client) PersonExternalIDs(ctx context.Context, id int) (*ExternalIDs, error) {
	raw, err := c.fetch(ctx, fmt.Sprintf(endpointPersonExternalIDs, id), nil)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: external ids for person %d", ErrNoData, id)
	}

	return &ExternalIDs{
		IMDbID:      rawString(raw, "imdb_id"),
		FacebookID:  rawString(raw, "facebook_id"),
		InstagramID: rawString(raw, "instagram_id"),
		TwitterID:   rawString(raw, "twitter_id"),
	}, nil
}

// detail fetches a type-specific detail payload and tags it with the
// discriminator the detail endpoints omit.
func (c *Client) detail(ctx context.Context, path, mediaType string, id int) (map[string]any, error) {
	raw, err := c.fetch(ctx, fmt.Sprintf(path, id), nil)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: %s detail for id %d", ErrNoData, mediaType, id)
	}
	raw["media_type"] = mediaType
	return raw, nil
}

// searchList queries a search endpoint and returns its results array as raw
// objects.
func (c *Client) searchList(ctx context.Context, endpoint, query string, o searchOptions) ([]map[string]any, error) {
	params := url.Values{}
	params.Set("query", query)
	if o.language != "" {
		params.Set("language", o.language)
	}
	if o.page > 0 {
		params.Set("page", strconv.Itoa(o.page))
	}
	if o.adultSet {
		params.Set("include_adult", strconv.FormatBool(o.includeAdult))
	}
	if o.region != "" {
		params.Set("region", o.region)
	}

	resp, err := c.fetch(ctx, endpoint, params)
	if err != nil {
		return nil, err
	}

	items, ok := resp["results"].([]any)
	if !ok {
		return nil, nil
	}

	results := make([]map[string]any, 0, len(items))
	for _, item := range items {
		if obj, ok := item.(map[string]any); ok {
			results = append(results, obj)
		}
	}
	return results, nil
}

// fetch normalizes parameters and hands the request to the transport.
func (c *Client) fetch(ctx context.Context, path string, params url.Values) (map[string]any, error) {
	return c.transport.Fetch(ctx, c.baseURL+path, c.prepareParams(params))
}

// prepareParams drops empty values and injects the API key if absent. Safe
// to apply more than once.
func (c *Client) prepareParams(params url.Values) url.Values {
	out := url.Values{}
	for key, values := range params {
		for _, value := range values {
			if value != "" {
				out.Set(key, value)
			}
		}
	}
	if out.Get("api_key") == "" {
		out.Set("api_key", c.apiKey)
	}
	return out
}
