package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/surrealdb/surrealdb.go"
)

type blobRecord struct {
	Value string `json:"value"`
}

// Get returns the blob stored under key. A missing record is not an error.
func (c *Client) Get(ctx context.Context, key string) (string, bool, error) {
	if strings.TrimSpace(key) == "" {
		return "", false, ErrInvalidKey
	}
	results, err := surrealdb.Query[[]blobRecord](ctx, c.db, `
		SELECT value FROM type::record("blob", $key)
	`, map[string]any{"key": key})
	if err != nil {
		return "", false, fmt.Errorf("get blob: %w", wrapQueryError(err))
	}

	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return "", false, nil
	}
	return (*results)[0].Result[0].Value, true, nil
}

// Set replaces the blob stored under key.
func (c *Client) Set(ctx context.Context, key, value string) error {
	if strings.TrimSpace(key) == "" {
		return ErrInvalidKey
	}
	_, err := surrealdb.Query[any](ctx, c.db, `
		UPSERT type::record("blob", $key) SET
			value = $value,
			updated = time::now()
	`, map[string]any{"key": key, "value": value})
	if err != nil {
		return fmt.Errorf("set blob: %w", wrapQueryError(err))
	}
	return nil
}

// Remove deletes the blob stored under key. Deleting a missing key is a no-op.
func (c *Client) Remove(ctx context.Context, key string) error {
	if strings.TrimSpace(key) == "" {
		return ErrInvalidKey
	}
	_, err := surrealdb.Query[any](ctx, c.db, `
		DELETE type::record("blob", $key)
	`, map[string]any{"key": key})
	if err != nil {
		return fmt.Errorf("remove blob: %w", wrapQueryError(err))
	}
	return nil
}
