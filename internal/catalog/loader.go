package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/farhanmaulana/cetakin-backend/pkg/config"
)

// Loader fetches the static paper catalog document. It is invoked once at
// boot; there is no retry and no refresh.
type Loader struct {
	httpClient *http.Client
	sourceURL  string
}

// NewLoader builds a catalog loader from configuration.
func NewLoader(cfg config.CatalogConfig) (*Loader, error) {
	if cfg.PaperSourceURL == "" {
		return nil, errors.New("paper catalog source url is required")
	}
	timeout := cfg.FetchTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Loader{
		httpClient: &http.Client{Timeout: timeout},
		sourceURL:  cfg.PaperSourceURL,
	}, nil
}

// Fetch performs the single catalog request and returns the usable entries
// in document order. Entries without a name or a positive price are dropped.
func (l *Loader) Fetch(ctx context.Context) ([]PaperType, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.sourceURL, nil)
	if err != nil {
		return nil, fmt.Errorf("building catalog request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	res, err := l.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching paper catalog: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("paper catalog returned status %d", res.StatusCode)
	}

	payload, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("reading paper catalog: %w", err)
	}

	var decoded []PaperType
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return nil, fmt.Errorf("decoding paper catalog: %w", err)
	}

	papers := make([]PaperType, 0, len(decoded))
	for _, entry := range decoded {
		if entry.Valid() {
			papers = append(papers, entry)
		}
	}
	return papers, nil
}
