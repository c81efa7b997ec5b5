package features

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/stitts-dev/ffreport/pkg/logger"
)

// SeasonPlaceholder is replaced with the season in fine feed locations.
const SeasonPlaceholder = "{season}"

var ErrFeedStatus = errors.New("feed returned non-OK status")

// FeedSource reads a feature feed published as a JSON array of records,
// over HTTP or from a local file. One feed serves one feature.
type FeedSource struct {
	location string
	client   *http.Client
	logger   *logrus.Entry
}

// NewFeedSource reads from location: an http(s) URL, a file:// URL or a
// plain path. A nil client gets a 30 second timeout.
func NewFeedSource(location string, client *http.Client) *FeedSource {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &FeedSource{
		location: location,
		client:   client,
		logger:   logger.WithComponent("feature_feed").WithField("location", location),
	}
}

func (f *FeedSource) Arrests(ctx context.Context) ([]Arrest, error) {
	var out []Arrest
	if err := f.fetch(ctx, f.location, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (f *FeedSource) Weights(ctx context.Context) ([]PlayerWeight, error) {
	var out []PlayerWeight
	if err := f.fetch(ctx, f.location, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (f *FeedSource) Fines(ctx context.Context, season int) ([]Fine, error) {
	var out []Fine
	location := strings.ReplaceAll(f.location, SeasonPlaceholder, strconv.Itoa(season))
	if err := f.fetch(ctx, location, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func isHTTP(location string) bool {
	return strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://")
}

func (f *FeedSource) fetch(ctx context.Context, location string, out interface{}) error {
	var (
		body []byte
		err  error
	)
	if isHTTP(location) {
		body, err = f.get(ctx, location)
	} else {
		if err = ctx.Err(); err == nil {
			body, err = os.ReadFile(strings.TrimPrefix(location, "file://"))
		}
		if err != nil {
			err = fmt.Errorf("failed to read feed %s: %w", location, err)
		}
	}
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode feed %s: %w", location, err)
	}
	f.logger.WithField("bytes", len(body)).Debug("Feed fetched")
	return nil
}

func (f *FeedSource) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s returned %d", ErrFeedStatus, url, resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read feed %s: %w", url, err)
	}
	return body, nil
}
