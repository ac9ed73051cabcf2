package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"modoojob/search-service/internal/stream"
)

// PerPage is the fixed batch size both surfaces request.
const PerPage = 15

// Client talks to the upstream AI search APIs: the job stream, the talent
// stream, and the on-demand Work24 detail lookup. The streaming endpoints
// deliberately use a transport without an overall request timeout — a search
// stream legitimately outlives any sane fixed deadline; idle detection is the
// session's job.
type Client struct {
	JobBase    string // e.g. https://aijob.example.com/api
	TalentBase string
	httpc      *http.Client
	detailc    *http.Client
}

// NewClient constructs a Client for the given API bases.
func NewClient(jobBase, talentBase string) *Client {
	return &Client{
		JobBase:    jobBase,
		TalentBase: talentBase,
		httpc:      &http.Client{},
		detailc:    &http.Client{Timeout: 15 * time.Second},
	}
}

// JobRequest is the page-numbered search request body.
type JobRequest struct {
	Query   string `json:"query"`
	Page    int    `json:"page"`
	PerPage int    `json:"per_page"`
	Region  string `json:"region,omitempty"`
}

// TalentRequest is the cursor-based search request body.
type TalentRequest struct {
	Query     string `json:"query"`
	Limit     int    `json:"limit"`
	LastDocID string `json:"lastDocId,omitempty"`
	Region    string `json:"region,omitempty"`
}

// UpstreamError is a non-2xx response from a search API. It carries the
// server-provided message when one was sent, else a generic status line.
type UpstreamError struct {
	StatusCode int
	Message    string
}

func (e *UpstreamError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("서버 오류: %d", e.StatusCode)
}

// OpenJobStream issues the job search request and returns a frame decoder
// over the response body. The caller must Close the decoder.
func (c *Client) OpenJobStream(ctx context.Context, req JobRequest) (*stream.Decoder, error) {
	return c.openStream(ctx, c.JobBase+"/stream", req)
}

// OpenTalentStream issues the talent search request and returns a frame
// decoder over the response body.
func (c *Client) OpenTalentStream(ctx context.Context, req TalentRequest) (*stream.Decoder, error) {
	return c.openStream(ctx, c.TalentBase+"/stream", req)
}

func (c *Client) openStream(ctx context.Context, url string, body any) (*stream.Decoder, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http POST: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return nil, decodeUpstreamError(resp)
	}

	return stream.NewDecoder(resp.Body), nil
}

// decodeUpstreamError extracts the server's {"message": …} body when present.
func decodeUpstreamError(resp *http.Response) error {
	ue := &UpstreamError{StatusCode: resp.StatusCode}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err == nil {
		var body struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(raw, &body) == nil {
			ue.Message = body.Message
		}
	}
	return ue
}

// JobDetail fetches the full record for one external posting. Used by the
// detail view only, never by the streaming path.
func (c *Client) JobDetail(ctx context.Context, jobID string) (*JobDetail, error) {
	url := fmt.Sprintf("%s/detail/%s", c.JobBase, jobID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.detailc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http GET: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, decodeUpstreamError(resp)
	}

	var detail JobDetail
	if err := json.NewDecoder(resp.Body).Decode(&detail); err != nil {
		return nil, fmt.Errorf("decode detail: %w", err)
	}
	return &detail, nil
}
