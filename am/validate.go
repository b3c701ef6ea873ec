package am

import "github.com/teranos/entigraph/errors"

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	// Search limits: 0 = use default, negative = invalid
	if c.Search.DefaultLimit < 0 {
		return errors.Newf("search.default_limit must be >= 0, got %d", c.Search.DefaultLimit)
	}
	if c.Search.MaxLimit < 0 {
		return errors.Newf("search.max_limit must be >= 0, got %d", c.Search.MaxLimit)
	}
	if c.Search.MaxLimit > 0 && c.Search.MaxLimit < c.Search.DefaultLimit {
		return errors.Newf("search.max_limit (%d) must be >= search.default_limit (%d)",
			c.Search.MaxLimit, c.Search.DefaultLimit)
	}

	// Edit distance above 2 makes the label prefilter useless
	if c.Search.MaxFuzziness < 0 || c.Search.MaxFuzziness > 2 {
		return errors.Newf("search.max_fuzziness must be between 0 and 2, got %d", c.Search.MaxFuzziness)
	}

	if c.Triples.BatchSize < 0 {
		return errors.Newf("triples.batch_size must be >= 0, got %d", c.Triples.BatchSize)
	}

	if c.Ingest.RefreshEvery < 0 {
		return errors.Newf("ingest.refresh_every must be >= 0, got %d", c.Ingest.RefreshEvery)
	}
	if c.Ingest.RefreshIntervalSeconds < 0 {
		return errors.Newf("ingest.refresh_interval_seconds must be >= 0, got %d", c.Ingest.RefreshIntervalSeconds)
	}

	if len(c.Locales.Supported) == 0 {
		return errors.New("locales.supported cannot be empty")
	}
	for _, l := range c.Locales.Supported {
		if l == "" {
			return errors.New("locales.supported cannot contain an empty locale")
		}
	}

	return nil
}
