package googlecloud

import (
	"context"
	"fmt"
	"os"

	"cloud.google.com/go/datastore"
)

// Client wraps the Google Cloud Datastore client to store file reference metadata.
type Client struct {
	ds    *datastore.Client
	retry RetryConfig
}

// NewClient creates a new Google Cloud Datastore client.
// The official client picks up DATASTORE_EMULATOR_HOST on its own.
func NewClient(ctx context.Context, projectID string) (*Client, error) {
	ds, err := datastore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to create datastore client: %w", err)
	}
	return &Client{ds: ds, retry: DefaultRetryConfig()}, nil
}

// UsesEmulator reports whether the client talks to a local emulator.
func UsesEmulator() (string, bool) {
	host := os.Getenv("DATASTORE_EMULATOR_HOST")
	return host, host != ""
}

// Close closes the underlying datastore client.
func (c *Client) Close() error {
	return c.ds.Close()
}
