// Package dict provides dictionary lookup and text-to-speech with a
// write-through cache.
package dict

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/dassodev/Dasso2008/internal/model"
)

// Cache is the injected word cache. Lookups consult it before any network
// call; writes are a pure side effect and never gate correctness.
type Cache interface {
	GetEntry(ctx context.Context, word string) ([]byte, bool, error)
	PutEntry(ctx context.Context, word string, data []byte) error
	GetAudio(ctx context.Context, word string) ([]byte, bool, error)
	PutAudio(ctx context.Context, word string, audio []byte) error
}

// Client calls the dictionary and text-to-speech services.
type Client struct {
	baseURL    string
	httpClient *http.Client
	cache      Cache
}

// NewClient builds a dictionary client. cache may be nil to disable caching.
func NewClient(baseURL string, cache Cache) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		cache: cache,
	}
}

type lookupRequest struct {
	Text string `json:"text"`
	Type string `json:"type"`
}

type lookupResponse struct {
	WordInfo *model.WordInfo `json:"wordInfo"`
}

type speechRequest struct {
	Text string `json:"text"`
}

// Lookup resolves a word, cache first. A cache read failure degrades to the
// network; the result is written back unconditionally on a miss.
func (c *Client) Lookup(ctx context.Context, word string) (*model.WordInfo, error) {
	if c.cache != nil {
		if data, ok, err := c.cache.GetEntry(ctx, word); err == nil && ok {
			var info model.WordInfo
			if uerr := json.Unmarshal(data, &info); uerr == nil {
				return &info, nil
			}
			// Undecodable cache entry falls through to a re-fetch.
		}
	}

	body, err := c.post(ctx, "/api/word-info", lookupRequest{Text: word, Type: "word"})
	if err != nil {
		return nil, err
	}
	var parsed lookupResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, err
	}
	if parsed.WordInfo == nil {
		return nil, fmt.Errorf("no word info for %q", word)
	}

	if c.cache != nil {
		if data, merr := json.Marshal(parsed.WordInfo); merr == nil {
			if cerr := c.cache.PutEntry(ctx, word, data); cerr != nil {
				// Cache write failures never surface to the reader.
				_ = cerr
			}
		}
	}
	return parsed.WordInfo, nil
}

// Speak fetches pronunciation audio for a word, cache first.
func (c *Client) Speak(ctx context.Context, text string) ([]byte, error) {
	if c.cache != nil {
		if audio, ok, err := c.cache.GetAudio(ctx, text); err == nil && ok {
			return audio, nil
		}
	}

	audio, err := c.post(ctx, "/api/text-to-speech", speechRequest{Text: text})
	if err != nil {
		return nil, err
	}

	if c.cache != nil {
		if cerr := c.cache.PutAudio(ctx, text, audio); cerr != nil {
			// Cache write failures never surface to the reader.
			_ = cerr
		}
	}
	return audio, nil
}

func (c *Client) post(ctx context.Context, path string, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			// Best-effort body close.
			_ = cerr
		}
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("service returned HTTP %d: %s", resp.StatusCode, body)
	}
	return body, nil
}
