// Package stems talks to the external AI stem-separation collaborator.
package stems

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"MashFM/logger"
	"MashFM/model"
)

// SeparationError reports a collaborator failure. Callers proceed without
// stems; the original asset remains usable as a full-mix track.
type SeparationError struct {
	Reason string
	Err    error
}

func (e *SeparationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("stem separation failed: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("stem separation failed: %s", e.Reason)
}

func (e *SeparationError) Unwrap() error { return e.Err }

// StemSet maps each stem type to the collaborator's asset reference. Fixed
// four-slot structure; iterate with model.AllStemTypes.
type StemSet map[model.StemType]string

// Separator requests stem separation for an uploaded asset and fetches the
// resulting stem audio by reference.
type Separator interface {
	Separate(ctx context.Context, assetRef string, durationSeconds float64) (StemSet, error)
	FetchStem(ctx context.Context, stemRef string) ([]byte, error)
}

// Client is the HTTP separator implementation.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a separator client. An empty baseURL yields a client
// whose Separate always fails with a SeparationError, which callers already
// tolerate.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 120 * time.Second, // separation is slow, but never unbounded
		},
	}
}

type separateRequest struct {
	AssetRef        string  `json:"assetRef"`
	DurationSeconds float64 `json:"durationSeconds"`
}

type separateResponse struct {
	Stems map[string]string `json:"stems"`
	Error string            `json:"error,omitempty"`
}

// Separate posts the asset reference and returns up to four stem references.
func (c *Client) Separate(ctx context.Context, assetRef string, durationSeconds float64) (StemSet, error) {
	if c.baseURL == "" {
		return nil, &SeparationError{Reason: "no separation service configured"}
	}

	body, err := json.Marshal(separateRequest{AssetRef: assetRef, DurationSeconds: durationSeconds})
	if err != nil {
		return nil, &SeparationError{Reason: "encode request", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/separate", bytes.NewReader(body))
	if err != nil {
		return nil, &SeparationError{Reason: "build request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &SeparationError{Reason: "request failed", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &SeparationError{Reason: fmt.Sprintf("unexpected status %d", resp.StatusCode)}
	}

	var decoded separateResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, &SeparationError{Reason: "decode response", Err: err}
	}
	if decoded.Error != "" {
		return nil, &SeparationError{Reason: decoded.Error}
	}

	// Only the four known stem types survive; anything else the service
	// returns is dropped.
	set := make(StemSet, 4)
	for _, st := range model.AllStemTypes() {
		if ref, ok := decoded.Stems[string(st)]; ok && ref != "" {
			set[st] = ref
		}
	}
	if len(set) == 0 {
		return nil, &SeparationError{Reason: "service returned no stems"}
	}

	logger.Info("stems separated",
		logger.String("assetRef", assetRef),
		logger.Int("stems", len(set)))
	return set, nil
}

// FetchStem downloads one separated stem's audio by the reference Separate
// returned.
func (c *Client) FetchStem(ctx context.Context, stemRef string) ([]byte, error) {
	if c.baseURL == "" {
		return nil, &SeparationError{Reason: "no separation service configured"}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/stems/"+stemRef, nil)
	if err != nil {
		return nil, &SeparationError{Reason: "build request", Err: err}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &SeparationError{Reason: "fetch failed", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &SeparationError{Reason: fmt.Sprintf("unexpected status %d fetching stem %s", resp.StatusCode, stemRef)}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &SeparationError{Reason: "read stem body", Err: err}
	}
	if len(data) == 0 {
		return nil, &SeparationError{Reason: "empty stem " + stemRef}
	}
	return data, nil
}
