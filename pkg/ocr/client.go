package ocr

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client wraps the external OCR/extraction service. The service is opaque:
// it takes a document URL and returns raw text plus extracted entities.
type Client struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
}

type ExtractRequest struct {
	DocumentURL string `json:"document_url"`
}

type ExtractedEntity struct {
	Name       string  `json:"name"`
	Dosage     string  `json:"dosage"`
	Frequency  string  `json:"frequency"`
	Duration   string  `json:"duration"`
	Quantity   int     `json:"quantity"`
	Confidence float64 `json:"confidence"`
}

type ExtractResponse struct {
	Success    bool              `json:"success"`
	Confidence float64           `json:"confidence"`
	RawText    string            `json:"raw_text"`
	Medicines  []ExtractedEntity `json:"medicines"`
	Message    string            `json:"message"`
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		BaseURL: baseURL,
		APIKey:  apiKey,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (c *Client) Extract(documentURL string) (*ExtractResponse, error) {
	jsonData, err := json.Marshal(&ExtractRequest{DocumentURL: documentURL})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal extract request: %w", err)
	}

	req, err := http.NewRequest("POST", c.BaseURL+"/api/extract", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.APIKey)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("extraction request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var extractResp ExtractResponse
	if err := json.Unmarshal(body, &extractResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if resp.StatusCode != http.StatusOK || !extractResp.Success {
		return &extractResp, fmt.Errorf("extraction failed: %s", extractResp.Message)
	}

	return &extractResp, nil
}
