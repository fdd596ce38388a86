/**
 * @description
 * This package provides a client for the Sui fullnode JSON-RPC API. It
 * encapsulates the logic for making requests to the ledger, handling request
 * body construction, and parsing responses. The service treats the ledger as a
 * black box reachable through two calls: an event query and an object fetch.
 *
 * @dependencies
 * - bytes, context, encoding/json, fmt, net/http, time: Standard Go libraries.
 */
package suiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"
)

// Client is a client for a Sui fullnode RPC endpoint.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client

	nextID atomic.Int64
}

// NewClient creates a new ledger RPC client.
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: baseURL,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type rpcRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      int64         `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
}

type rpcEnvelope struct {
	JSONRPC string          `json:"jsonrpc"`
	Result  json.RawMessage `json:"result"`
	Error   *RPCError       `json:"error"`
}

// RPCError is a JSON-RPC level failure returned by the fullnode.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("ledger rpc error %d: %s", e.Code, e.Message)
}

// EventID identifies one event within its transaction.
type EventID struct {
	TxDigest string `json:"txDigest"`
	EventSeq string `json:"eventSeq"`
}

// Event is one ledger event as returned by suix_queryEvents. ParsedJSON holds
// the Move event payload; for invoice creation events it carries the created
// object's identifier.
type Event struct {
	ID          EventID                `json:"id"`
	PackageID   string                 `json:"packageId"`
	Sender      string                 `json:"sender"`
	Type        string                 `json:"type"`
	ParsedJSON  map[string]interface{} `json:"parsedJson"`
	TimestampMs string                 `json:"timestampMs"`
}

// EventPage is one page of event query results.
type EventPage struct {
	Data        []Event `json:"data"`
	HasNextPage bool    `json:"hasNextPage"`
}

// ObjectContent is the decoded Move struct content of an object.
type ObjectContent struct {
	DataType string                 `json:"dataType"`
	Type     string                 `json:"type"`
	Fields   map[string]interface{} `json:"fields"`
}

// ObjectData is the payload for a found object.
type ObjectData struct {
	ObjectID string         `json:"objectId"`
	Version  string         `json:"version"`
	Digest   string         `json:"digest"`
	Content  *ObjectContent `json:"content"`
}

// ObjectNotFound describes the object-level error branch of sui_getObject
// (deleted, not found, etc.). It is not an RPC failure.
type ObjectNotFound struct {
	Code     string `json:"code"`
	ObjectID string `json:"object_id,omitempty"`
}

// ObjectResponse is the result of sui_getObject: exactly one of Data or Error
// is populated.
type ObjectResponse struct {
	Data  *ObjectData     `json:"data"`
	Error *ObjectNotFound `json:"error"`
}

// QueryEvents fetches a page of events of the given Move event type.
func (c *Client) QueryEvents(ctx context.Context, eventType string, limit int, descending bool) (*EventPage, error) {
	params := []interface{}{
		map[string]interface{}{"MoveEventType": eventType},
		nil,
		limit,
		descending,
	}

	var page EventPage
	if err := c.call(ctx, "suix_queryEvents", params, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// GetObject fetches one object by ID with its content included.
func (c *Client) GetObject(ctx context.Context, objectID string) (*ObjectResponse, error) {
	params := []interface{}{
		objectID,
		map[string]interface{}{"showContent": true, "showOwner": true},
	}

	var resp ObjectResponse
	if err := c.call(ctx, "sui_getObject", params, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Ping checks fullnode reachability with the cheapest available call.
func (c *Client) Ping(ctx context.Context) error {
	var chain string
	return c.call(ctx, "sui_getChainIdentifier", []interface{}{}, &chain)
}

func (c *Client) call(ctx context.Context, method string, params []interface{}, result interface{}) error {
	payload := rpcRequest{
		JSONRPC: "2.0",
		ID:      c.nextID.Add(1),
		Method:  method,
		Params:  params,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal %s request: %w", method, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s request failed: %w", method, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("%s returned status %d: %s", method, resp.StatusCode, string(raw))
	}

	var envelope rpcEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", method, err)
	}
	if envelope.Error != nil {
		return envelope.Error
	}
	if result != nil && len(envelope.Result) > 0 {
		if err := json.Unmarshal(envelope.Result, result); err != nil {
			return fmt.Errorf("failed to unmarshal %s result: %w", method, err)
		}
	}
	return nil
}
