package config

// Config represents the complete configuration structure
type Config struct {
	TMDB    TMDBConfig    `mapstructure:"tmdb"`
	Cache   CacheConfig   `mapstructure:"cache"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// TMDBConfig holds API connection details
type TMDBConfig struct {
	APIKey    string `mapstructure:"api_key"`
	Language  string `mapstructure:"language"`
	Transport string `mapstructure:"transport"`
	QPS       int    `mapstructure:"qps"`
}

// CacheConfig controls the result cache
type CacheConfig struct {
	MaxAgeSeconds int `mapstructure:"max_age_seconds"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Color  bool   `mapstructure:"color"`
}
