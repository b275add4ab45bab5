package tmdb

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/defaltsimon/tmdbie/cache"
)

// Dispatcher resolves raw API payloads into typed media entities based on
// the media_type discriminator.
type Dispatcher struct {
	cache  *cache.Store[MediaEntity]
	logger zerolog.Logger
}

// NewDispatcher creates a dispatcher backed by the given cache. The cache is
// consulted when resolving a person's known_for members.
func NewDispatcher(store *cache.Store[MediaEntity], logger zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		cache:  store,
		logger: logger,
	}
}

// Build constructs the entity variant named by the payload's media_type
// field. A missing or unrecognized discriminator fails with
// ErrUnknownMediaType; it is never silently dropped.
func (d *Dispatcher) Build(raw map[string]any) (MediaEntity, error) {
	return d.build(raw, false)
}

// build carries a nested flag so known_for members never resolve their own
// known_for lists, bounding the recursion to one level.
func (d *Dispatcher) build(raw map[string]any, nested bool) (MediaEntity, error) {
	mediaType := rawString(raw, "media_type")

	switch mediaType {
	case MediaTypeMovie:
		return NewMovie(raw)
	case MediaTypeTV:
		return NewTVShow(raw)
	case MediaTypePerson:
		var knownFor []MediaEntity
		if !nested {
			knownFor = d.resolveKnownFor(raw)
		}
		return NewPerson(raw, knownFor)
	default:
		d.logger.Error().Str("media_type", mediaType).Msg("Payload has no usable media_type discriminator")
		return nil, fmt.Errorf("%w: %q", ErrUnknownMediaType, mediaType)
	}
}

// resolveKnownFor builds a person's filmography from the raw known_for list.
// Each member is looked up in the cache by id first; on a hit the cached
// instance is reused as-is. On a miss the member is constructed from the
// nested payload alone, so it carries search-result fields only — no detail
// fetch is issued for known_for members.
func (d *Dispatcher) resolveKnownFor(raw map[string]any) []MediaEntity {
	items, ok := raw["known_for"].([]any)
	if !ok || len(items) == 0 {
		return nil
	}

	knownFor := make([]MediaEntity, 0, len(items))
	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}

		if id, ok := rawInt(obj, "id"); ok {
			if cached, ok := d.cache.ByID(id); ok {
				knownFor = append(knownFor, cached)
				continue
			}
		}

		entity, err := d.build(obj, true)
		if err != nil {
			d.logger.Warn().Err(err).Msg("Skipping unresolvable known_for entry")
			continue
		}
		knownFor = append(knownFor, entity)
	}

	return knownFor
}
