package ingest

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"agrichat/internal/logging"

	"github.com/go-shiori/go-readability"
	"github.com/sony/gobreaker"
)

// PageFetcher downloads web pages and extracts their readable text. Calls
// go through a circuit breaker so a dead site fails fast.
type PageFetcher struct {
	client  *http.Client
	breaker *gobreaker.CircuitBreaker
	logger  *logging.Logger
}

// NewPageFetcher creates a fetcher. A nil client gets a 15 second timeout.
func NewPageFetcher(client *http.Client, logger *logging.Logger) *PageFetcher {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &PageFetcher{
		client: client,
		logger: logger,
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "url-import",
			MaxRequests: 1,
			Interval:    time.Minute,
			Timeout:     30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 3
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				logger.Warn("circuit breaker '%s' state changed from %v to %v", name, from, to)
			},
		}),
	}
}

// Fetch returns the readable text of the page at rawURL.
func (f *PageFetcher) Fetch(ctx context.Context, rawURL string) (string, error) {
	logger := f.logger.WithContext("url", rawURL)

	parsedURL, err := url.Parse(rawURL)
	if err != nil || (parsedURL.Scheme != "http" && parsedURL.Scheme != "https") || parsedURL.Host == "" {
		return "", fmt.Errorf("invalid URL: %s", rawURL)
	}

	text, err := f.breaker.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return nil, err
		}
		resp, err := f.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch URL: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("failed to fetch URL: status %d", resp.StatusCode)
		}

		article, err := readability.FromReader(resp.Body, parsedURL)
		if err != nil {
			return nil, fmt.Errorf("failed to parse HTML: %w", err)
		}
		return strings.TrimSpace(article.TextContent), nil
	})
	if err != nil {
		logger.WithContext("error", err.Error()).Error("URL fetch failed")
		return "", err
	}

	s := text.(string)
	if s == "" {
		return "", ErrNoContent
	}
	logger.WithContext("text_size", len(s)).Debug("URL content fetched and parsed")
	return s, nil
}

// Fetcher extracts text from a URL
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (string, error)
}

// ImportURL stores the readable text of rawURL as the answer to question.
func (imp *Importer) ImportURL(ctx context.Context, fetcher Fetcher, question, rawURL, intent, crop string) (int64, error) {
	text, err := fetcher.Fetch(ctx, rawURL)
	if err != nil {
		return 0, err
	}

	id, err := imp.store.AddEntry(ctx, Entry{
		Question: strings.TrimSpace(question),
		Answer:   text,
		Intent:   intent,
		Crop:     crop,
		Topic:    rawURL,
	})
	if err != nil {
		return 0, err
	}
	imp.logger.WithFields(map[string]interface{}{
		"id":  id,
		"url": rawURL,
	}).Info("imported knowledge entry from URL")
	return id, nil
}
