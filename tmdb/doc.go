// Package tmdb provides a client for the themoviedb.org metadata API.
//
// It resolves free-text queries to typed Movie, TVShow or Person records,
// caching results in-process so repeated lookups never hit the network.
//
// # Architecture
//
// The package is organized into several components:
//
//   - Client: the public facade orchestrating search, cache checks, detail
//     fetches and entity construction
//   - Dispatcher: classifies raw payloads by their media_type discriminator
//     and builds the matching entity variant
//   - Transport: the pluggable "fetch JSON for a URL" boundary, with a
//     bounded rate-limit retry protocol
//   - Types: the Movie/TVShow/Person domain model with field normalization
//
// # Usage
//
//	store := cache.New[tmdb.MediaEntity]()
//	client, err := tmdb.NewClient("your-api-key",
//		tmdb.WithCache(store),
//		tmdb.WithLogger(logger),
//	)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	entity, err := client.Search(ctx, "The Thing")
//	if err != nil {
//		log.Fatal(err)
//	}
//	if movie, ok := entity.(*tmdb.Movie); ok {
//		fmt.Println(movie.Title, movie.Poster)
//	}
//
// # Error Handling
//
// Every error matches the root ErrTMDB. The taxonomy:
//
//   - HTTPError: non-2xx, non-429 status, never retried
//   - ErrRatelimitExceeded: two 429s in a row for one logical request
//   - ErrDecode: empty or malformed response body
//   - ErrUnknownMediaType: unrecognized media_type discriminator
//   - ErrNoData: detail fetch with an empty payload
//   - ErrValidation: entity payload without an id
//
// Not finding anything for a query is not an error: Search returns
// (nil, nil).
//
// # Caveats
//
// A Person resolved through Search carries search-result fields only — no
// follow-up detail fetch is made for people, and known_for members are
// likewise built from the nested search payloads alone. Concurrent searches
// for the same query are not coalesced; both fetch and the later store wins.
package tmdb
