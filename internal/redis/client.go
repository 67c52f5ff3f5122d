package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
)

type Client struct {
	rdb *redis.Client
}

// CheckoutSession carries the in-flight checkout state between the cart and
// the order placement call.
type CheckoutSession struct {
	UserID          uint                   `json:"user_id"`
	PrescriptionID  *uint                  `json:"prescription_id"`
	CartItemIDs     []uint                 `json:"cart_item_ids"`
	DeliveryAddress string                 `json:"delivery_address"`
	DeliveryType    string                 `json:"delivery_type"`
	Data            map[string]interface{} `json:"data"`
	CreatedAt       time.Time              `json:"created_at"`
	UpdatedAt       time.Time              `json:"updated_at"`
}

func Initialize(redisURL string) (*Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	rdb := redis.NewClient(opt)

	// Test connection
	ctx := context.Background()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

// Match-result cache. Entries are hints only: a miss or a stale read always
// falls through to the catalog store.

func matchKey(name, dosage string) string {
	return "match:" + strings.ToLower(strings.TrimSpace(name)) + "|" + strings.ToLower(strings.TrimSpace(dosage))
}

func (c *Client) SetMatchResult(name, dosage string, result interface{}, ttl time.Duration) error {
	ctx := context.Background()
	jsonData, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal match result: %w", err)
	}
	return c.rdb.Set(ctx, matchKey(name, dosage), jsonData, ttl).Err()
}

func (c *Client) GetMatchResult(name, dosage string, dest interface{}) error {
	ctx := context.Background()
	val, err := c.rdb.Get(ctx, matchKey(name, dosage)).Result()
	if err != nil {
		if err == redis.Nil {
			return fmt.Errorf("match result not cached")
		}
		return fmt.Errorf("failed to get match result: %w", err)
	}
	return json.Unmarshal([]byte(val), dest)
}

// InvalidateMatches drops every cached match result. Called when the catalog
// change channel reports a medicine insert/update/delete.
func (c *Client) InvalidateMatches() error {
	ctx := context.Background()
	iter := c.rdb.Scan(ctx, 0, "match:*", 100).Iterator()
	for iter.Next(ctx) {
		if err := c.rdb.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}

// Checkout session management

func (c *Client) SetCheckoutSession(sessionID string, data *CheckoutSession, ttl time.Duration) error {
	ctx := context.Background()
	jsonData, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal checkout session: %w", err)
	}
	return c.rdb.Set(ctx, "checkout:"+sessionID, jsonData, ttl).Err()
}

func (c *Client) GetCheckoutSession(sessionID string) (*CheckoutSession, error) {
	ctx := context.Background()
	val, err := c.rdb.Get(ctx, "checkout:"+sessionID).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, fmt.Errorf("checkout session not found")
		}
		return nil, fmt.Errorf("failed to get checkout session: %w", err)
	}

	var session CheckoutSession
	if err := json.Unmarshal([]byte(val), &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal checkout session: %w", err)
	}
	return &session, nil
}

func (c *Client) DeleteCheckoutSession(sessionID string) error {
	ctx := context.Background()
	return c.rdb.Del(ctx, "checkout:"+sessionID).Err()
}

// Publish pushes a change event onto a table's notification channel.
func (c *Client) Publish(channel string, payload interface{}) error {
	ctx := context.Background()
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	return c.rdb.Publish(ctx, channel, jsonData).Err()
}

// Subscribe returns the raw pub/sub handle for a channel.
func (c *Client) Subscribe(channel string) *redis.PubSub {
	return c.rdb.Subscribe(context.Background(), channel)
}

// Close Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}
