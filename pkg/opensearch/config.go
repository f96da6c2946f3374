package opensearch

// Config holds OpenSearch client connection parameters. Addresses empty
// disables event indexing in the server command.
type Config struct {
	Addresses    []string `env:"OPENSEARCH_ADDRESSES" envSeparator:","`
	Username     string   `env:"OPENSEARCH_USERNAME"`
	Password     string   `env:"OPENSEARCH_PASSWORD"`
	MaxRetries   int      `env:"OPENSEARCH_MAX_RETRIES" envDefault:"3"`
	DisableRetry bool     `env:"OPENSEARCH_DISABLE_RETRY" envDefault:"false"`
	Index        string   `env:"OPENSEARCH_EVENTS_INDEX" envDefault:"payvalidator-events"`
}

// Enabled reports whether any address is configured.
func (c Config) Enabled() bool {
	return len(c.Addresses) > 0
}
