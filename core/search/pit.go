package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/elastic/go-elasticsearch/v8"
)

// OpenPIT opens a point-in-time snapshot of the given index and returns its
// token. All slices of a distributed run share one token so they observe a
// single consistent view of the source.
func OpenPIT(ctx context.Context, es *elasticsearch.Client, index, keepAlive string) (string, error) {
	res, err := es.OpenPointInTime(
		[]string{index},
		keepAlive,
		es.OpenPointInTime.WithContext(ctx),
	)
	if err != nil {
		return "", fmt.Errorf("open point in time on %q: %w", index, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		detail, _ := io.ReadAll(res.Body)
		return "", fmt.Errorf("open point in time failed with status %s: %s", res.Status(), string(detail))
	}

	var response struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(res.Body).Decode(&response); err != nil {
		return "", fmt.Errorf("parse point in time response: %w", err)
	}
	return response.ID, nil
}

// ClosePIT releases a point-in-time snapshot token.
func ClosePIT(ctx context.Context, es *elasticsearch.Client, id string) error {
	body, err := json.Marshal(map[string]string{"id": id})
	if err != nil {
		return fmt.Errorf("encode point in time id: %w", err)
	}

	res, err := es.ClosePointInTime(
		es.ClosePointInTime.WithContext(ctx),
		es.ClosePointInTime.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		return fmt.Errorf("close point in time: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		detail, _ := io.ReadAll(res.Body)
		return fmt.Errorf("close point in time failed with status %s: %s", res.Status(), string(detail))
	}
	return nil
}
