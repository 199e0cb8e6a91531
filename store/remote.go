// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/innitec-lgtm/SupportCenter-v1/db"
)

// Remote is the primary document store. Get returns ErrNotFound on a miss.
type Remote interface {
	Name() string
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// SQLStore keeps documents in the kv_store table
type SQLStore struct {
	db *sql.DB
}

// NewSQLStore creates the schema if needed and returns the store
func NewSQLStore(conn *sql.DB) (*SQLStore, error) {
	if err := db.CreateSchema(conn); err != nil {
		return nil, err
	}
	return &SQLStore{db: conn}, nil
}

func (s *SQLStore) Name() string { return "sql" }

func (s *SQLStore) Get(ctx context.Context, key string) ([]byte, error) {
	var doc string
	err := s.db.QueryRowContext(ctx, db.SelectDocument, key).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query document %q: %w", key, err)
	}
	return []byte(doc), nil
}

func (s *SQLStore) Set(ctx context.Context, key string, value []byte) error {
	if _, err := s.db.ExecContext(ctx, db.UpsertDocument, key, string(value)); err != nil {
		return fmt.Errorf("failed to upsert document %q: %w", key, err)
	}
	return nil
}

// RESTStore talks to a Redis-over-HTTP key-value service (the Upstash
// REST protocol, which Vercel KV exposes)
type RESTStore struct {
	baseURL string
	token   string
	client  *http.Client
}

func NewRESTStore(baseURL, token string, client *http.Client) *RESTStore {
	if client == nil {
		client = http.DefaultClient
	}
	return &RESTStore{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		client:  client,
	}
}

func (s *RESTStore) Name() string { return "rest" }

// restResponse is the envelope every command returns
type restResponse struct {
	Result *string `json:"result"`
	Error  string  `json:"error,omitempty"`
}

func (s *RESTStore) Get(ctx context.Context, key string) ([]byte, error) {
	resp, err := s.do(ctx, http.MethodGet, "/get/"+url.PathEscape(key), nil)
	if err != nil {
		return nil, err
	}
	if resp.Result == nil {
		return nil, ErrNotFound
	}
	return []byte(*resp.Result), nil
}

func (s *RESTStore) Set(ctx context.Context, key string, value []byte) error {
	_, err := s.do(ctx, http.MethodPost, "/set/"+url.PathEscape(key), value)
	return err
}

func (s *RESTStore) do(ctx context.Context, method, path string, body []byte) (*restResponse, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to build KV request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.token)

	httpResp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("KV request failed: %w", err)
	}
	defer httpResp.Body.Close()

	var resp restResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return nil, fmt.Errorf("failed to decode KV response (status %d): %w", httpResp.StatusCode, err)
	}
	if resp.Error != "" {
		return nil, fmt.Errorf("KV error (status %d): %s", httpResp.StatusCode, resp.Error)
	}
	if httpResp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("KV request returned status %d", httpResp.StatusCode)
	}
	return &resp, nil
}
