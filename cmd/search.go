package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/defaltsimon/tmdbie/filter"
	"github.com/defaltsimon/tmdbie/tmdb"
)

var (
	searchLanguage string
	searchPage     int
	includeAdult   bool
	searchRegion   string
	noCache        bool
	filterExpr     string
)

// searchCmd represents the search command
var searchCmd = &cobra.Command{
	Use:   "search <query> [query...]",
	Short: "Resolve queries to movie, TV show or person records",
	Long: `Resolve one or more free-text queries against the multi-search endpoint
and print the best match for each. Multiple queries are fetched
concurrently.

A --filter expression is evaluated against every resolved entity, e.g.:

  tmdbie search --filter 'Movie.VoteAverage > 7' "the thing" "alien"
  tmdbie search --filter 'Type == "tv" and hasGenre("drama")' "the wire"`,
	Args:    cobra.MinimumNArgs(1),
	PreRunE: initializeApp,
	RunE:    runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)

	searchCmd.Flags().StringVarP(&searchLanguage, "language", "l", "", "ISO 639-1 result language (default from config)")
	searchCmd.Flags().IntVar(&searchPage, "page", 0, "result page to search")
	searchCmd.Flags().BoolVar(&includeAdult, "adult", false, "include adult content in results")
	searchCmd.Flags().StringVar(&searchRegion, "region", "", "ISO 3166-1 release region")
	searchCmd.Flags().BoolVar(&noCache, "no-cache", false, "skip the cache read before searching")
	searchCmd.Flags().StringVarP(&filterExpr, "filter", "f", "", "filter expression applied to resolved entities")
}

func runSearch(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	var opts []tmdb.SearchOption
	language := searchLanguage
	if language == "" {
		language = cfg.TMDB.Language
	}
	if language != "" {
		opts = append(opts, tmdb.WithLanguage(language))
	}
	if searchPage > 0 {
		opts = append(opts, tmdb.WithPage(searchPage))
	}
	if cmd.Flags().Changed("adult") {
		opts = append(opts, tmdb.WithIncludeAdult(includeAdult))
	}
	if searchRegion != "" {
		opts = append(opts, tmdb.WithRegion(searchRegion))
	}
	if noCache {
		opts = append(opts, tmdb.WithoutCache())
	}

	entities, err := client.SearchMany(ctx, args, opts...)
	if err != nil {
		return err
	}

	if filterExpr != "" {
		f, err := filter.Compile(filterExpr)
		if err != nil {
			return fmt.Errorf("invalid filter expression: %w", err)
		}
		entities = f.Matches(entities)
	}

	printed := 0
	for i, entity := range entities {
		if entity == nil {
			if filterExpr == "" {
				fmt.Printf("No result for %q\n", args[i])
			}
			continue
		}
		if printed > 0 {
			fmt.Println()
		}
		printEntity(entity)
		printed++
	}

	if filterExpr != "" && printed == 0 {
		fmt.Println("No results matched the filter.")
	}

	return nil
}

// printEntity renders one resolved record.
func printEntity(entity tmdb.MediaEntity) {
	switch v := entity.(type) {
	case *tmdb.Movie:
		fmt.Printf("%s (movie, id %d)\n", v.Title, v.ID)
		if v.ReleaseDate != "" {
			fmt.Printf("  Released: %s\n", v.ReleaseDate)
		}
		if len(v.Genres) > 0 {
			fmt.Printf("  Genres: %s\n", strings.Join(v.Genres, ", "))
		}
		if v.VoteCount > 0 {
			fmt.Printf("  Rating: %.1f (%d votes)\n", v.VoteAverage, v.VoteCount)
		}
		printOverview(v.Overview)
		if v.Poster != "" {
			fmt.Printf("  Poster: %s\n", v.Poster)
		}
		if v.Trailer != "" {
			fmt.Printf("  Trailer: %s\n", v.Trailer)
		}
	case *tmdb.TVShow:
		fmt.Printf("%s (tv, id %d)\n", v.Name, v.ID)
		if v.FirstAirDate != "" {
			fmt.Printf("  First aired: %s\n", v.FirstAirDate)
		}
		if v.Seasons > 0 {
			fmt.Printf("  Seasons: %d\n", v.Seasons)
		}
		if len(v.Genres) > 0 {
			fmt.Printf("  Genres: %s\n", strings.Join(v.Genres, ", "))
		}
		if v.VoteCount > 0 {
			fmt.Printf("  Rating: %.1f (%d votes)\n", v.VoteAverage, v.VoteCount)
		}
		printOverview(v.Overview)
		if v.Poster != "" {
			fmt.Printf("  Poster: %s\n", v.Poster)
		}
	case *tmdb.Person:
		fmt.Printf("%s (person, id %d)\n", v.Name, v.ID)
		if len(v.KnownFor) > 0 {
			names := make([]string, 0, len(v.KnownFor))
			for _, known := range v.KnownFor {
				names = append(names, known.EntityName())
			}
			fmt.Printf("  Known for: %s\n", strings.Join(names, ", "))
		}
	}
}

func printOverview(overview string) {
	if overview == "" {
		return
	}
	if len(overview) > 200 {
		overview = overview[:197] + "..."
	}
	fmt.Printf("  %s\n", overview)
}
