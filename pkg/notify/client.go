package notify

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client talks to the external notification dispatcher (SMS/email/push).
type Client struct {
	BaseURL    string
	Username   string
	Password   string
	HTTPClient *http.Client
}

type DispatchRequest struct {
	OrderID uint   `json:"order_id"`
	Type    string `json:"type"` // status_update, delivery_update, cancellation
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

type DispatchResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    struct {
		NotificationID string `json:"notification_id"`
		Status         string `json:"status"`
	} `json:"data"`
}

func NewClient(baseURL, username, password string) *Client {
	return &Client{
		BaseURL:  baseURL,
		Username: username,
		Password: password,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (c *Client) Dispatch(req *DispatchRequest) (*DispatchResponse, error) {
	jsonData, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal dispatch request: %w", err)
	}

	httpReq, err := http.NewRequest("POST", c.BaseURL+"/api/notifications/dispatch", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	auth := base64.StdEncoding.EncodeToString([]byte(c.Username + ":" + c.Password))
	httpReq.Header.Set("Authorization", "Basic "+auth)

	resp, err := c.HTTPClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to send notification: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var dispatchResp DispatchResponse
	if err := json.Unmarshal(body, &dispatchResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if resp.StatusCode != http.StatusOK || !dispatchResp.Success {
		return &dispatchResp, fmt.Errorf("notification dispatch failed: %s", dispatchResp.Message)
	}

	return &dispatchResp, nil
}
