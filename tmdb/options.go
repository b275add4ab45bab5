package tmdb

import (
	"github.com/rs/zerolog"

	"github.com/defaltsimon/tmdbie/cache"
)

// ClientOption configures a Client.
type ClientOption func(*clientOptions)

type clientOptions struct {
	baseURL       string
	transport     Transport
	transportName string
	transportOpts []TransportOption
	cache         *cache.Store[MediaEntity]
	logger        zerolog.Logger
}

// WithBaseURL overrides the API base URL. Mainly useful for tests.
func WithBaseURL(baseURL string) ClientOption {
	return func(o *clientOptions) {
		if baseURL != "" {
			o.baseURL = baseURL
		}
	}
}

// WithTransport supplies a caller-provided transport. Takes precedence over
// WithTransportName.
func WithTransport(t Transport) ClientOption {
	return func(o *clientOptions) {
		o.transport = t
	}
}

// WithTransportName selects one of the named built-in transports
// (TransportPooled, TransportSimple), with optional transport tuning.
func WithTransportName(name string, opts ...TransportOption) ClientOption {
	return func(o *clientOptions) {
		o.transportName = name
		o.transportOpts = opts
	}
}

// WithCache supplies the result cache. Passing one store to several clients
// gives them a shared view; omitting it gives the client a private store.
func WithCache(store *cache.Store[MediaEntity]) ClientOption {
	return func(o *clientOptions) {
		o.cache = store
	}
}

// WithLogger sets the client logger.
func WithLogger(logger zerolog.Logger) ClientOption {
	return func(o *clientOptions) {
		o.logger = logger
	}
}

// SearchOption configures a single Search call.
type SearchOption func(*searchOptions)

type searchOptions struct {
	language     string
	page         int
	includeAdult bool
	adultSet     bool
	region       string
	checkCache   bool
}

// WithLanguage requests results in the given ISO 639-1 language.
func WithLanguage(language string) SearchOption {
	return func(o *searchOptions) {
		o.language = language
	}
}

// WithPage requests a specific result page.
func WithPage(page int) SearchOption {
	return func(o *searchOptions) {
		if page > 0 {
			o.page = page
		}
	}
}

// WithIncludeAdult toggles adult content in results. Unset leaves the
// server default.
func WithIncludeAdult(include bool) SearchOption {
	return func(o *searchOptions) {
		o.includeAdult = include
		o.adultSet = true
	}
}

// WithRegion filters release data by the given ISO 3166-1 region.
func WithRegion(region string) SearchOption {
	return func(o *searchOptions) {
		o.region = region
	}
}

// WithoutCache skips the cache read before searching. The result is still
// stored afterwards.
func WithoutCache() SearchOption {
	return func(o *searchOptions) {
		o.checkCache = false
	}
}
