// Package segment wraps the external word-segmentation service.
package segment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
	"unicode"

	"github.com/dassodev/Dasso2008/internal/model"
)

// ContainsChinese reports whether any rune is Han script.
func ContainsChinese(s string) bool {
	for _, r := range s {
		if unicode.Is(unicode.Han, r) {
			return true
		}
	}
	return false
}

// Client calls the segmentation service. The client caches nothing; the
// dictionary cache is a separate concern.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient builds a segmentation client.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type segmentRequest struct {
	Text string `json:"text"`
}

type segmentResponse struct {
	Segments []model.Segment `json:"segments"`
}

// Segment returns the ordered segments of one paragraph. Paragraphs with no
// Han runes bypass the remote call: the whole paragraph comes back as a
// single ENGLISH segment with rune offsets.
func (c *Client) Segment(ctx context.Context, paragraph string) ([]model.Segment, error) {
	if !ContainsChinese(paragraph) {
		return []model.Segment{{
			Word:   paragraph,
			Offset: 0,
			End:    len([]rune(paragraph)),
			Type:   model.SegmentEnglish,
		}}, nil
	}

	payload, err := json.Marshal(segmentRequest{Text: paragraph})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/segment", bytes.NewReader(payload))
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
		return nil, fmt.Errorf("segmentation service returned HTTP %d: %s", resp.StatusCode, body)
	}
	var parsed segmentResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, err
	}
	if err := validateSegments(paragraph, parsed.Segments); err != nil {
		return nil, err
	}
	return parsed.Segments, nil
}

// SegmentAll segments a whole content load. The batch is all-or-nothing:
// any paragraph failing fails the batch, and the caller falls back to plain
// paragraph rendering.
func (c *Client) SegmentAll(ctx context.Context, paragraphs []string) ([][]model.Segment, error) {
	result := make([][]model.Segment, len(paragraphs))
	for i, paragraph := range paragraphs {
		segments, err := c.Segment(ctx, paragraph)
		if err != nil {
			return nil, fmt.Errorf("failed to segment paragraph %d: %w", i, err)
		}
		result[i] = segments
	}
	return result, nil
}

// validateSegments rejects responses that would not reconstruct the
// original paragraph when concatenated in order.
func validateSegments(paragraph string, segments []model.Segment) error {
	var joined bytes.Buffer
	for _, s := range segments {
		joined.WriteString(s.Word)
	}
	if joined.String() != paragraph {
		return fmt.Errorf("segments do not reconstruct paragraph")
	}
	return nil
}
