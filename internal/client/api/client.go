package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/iudanet/gophtext/pkg/api"
)

const contentTypeMsgpack = "application/msgpack"

// Client представляет HTTP клиент для взаимодействия с сервером
type Client struct {
	httpClient *http.Client
	codec      api.Codec
	baseURL    string
}

// NewClient создает новый API клиент. codec используется и для REST,
// и для websocket-сессий.
func NewClient(baseURL string, codec api.Codec) *Client {
	if codec == nil {
		codec = api.JSON
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		codec:   codec,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Codec возвращает кодек клиента
func (c *Client) Codec() api.Codec {
	return c.codec
}

// Snapshot получает текущее состояние OT документа
func (c *Client) Snapshot(ctx context.Context, docID string) (*api.Snapshot, error) {
	var resp api.Snapshot
	if err := c.doRequest(ctx, http.MethodGet, "/api/v1/ot/"+url.PathEscape(docID), nil, &resp); err != nil {
		return nil, fmt.Errorf("snapshot request failed: %w", err)
	}
	return &resp, nil
}

// History получает операции документа с версией больше since
func (c *Client) History(ctx context.Context, docID string, since uint64) (*api.HistoryResponse, error) {
	var resp api.HistoryResponse
	path := "/api/v1/ot/" + url.PathEscape(docID) + "/ops?since=" + strconv.FormatUint(since, 10)
	if err := c.doRequest(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, fmt.Errorf("history request failed: %w", err)
	}
	return &resp, nil
}

// Submit отправляет операцию без websocket-сессии.
// Отказ секвенсора возвращается как Accepted=false без ошибки.
func (c *Client) Submit(ctx context.Context, docID string, req api.SubmitRequest) (*api.SubmitResponse, error) {
	var resp api.SubmitResponse
	if err := c.doRequest(ctx, http.MethodPost, "/api/v1/ot/"+url.PathEscape(docID)+"/ops", req, &resp); err != nil {
		return nil, fmt.Errorf("submit request failed: %w", err)
	}
	return &resp, nil
}

// State получает полное состояние серверной CRDT реплики
func (c *Client) State(ctx context.Context, docID string) (*api.StateResponse, error) {
	var resp api.StateResponse
	if err := c.doRequest(ctx, http.MethodGet, "/api/v1/crdt/"+url.PathEscape(docID)+"/atoms", nil, &resp); err != nil {
		return nil, fmt.Errorf("state request failed: %w", err)
	}
	return &resp, nil
}

// Merge отправляет пакет атомов серверной реплике
func (c *Client) Merge(ctx context.Context, docID string, batch api.AtomBatch) (*api.MergeResponse, error) {
	var resp api.MergeResponse
	if err := c.doRequest(ctx, http.MethodPost, "/api/v1/crdt/"+url.PathEscape(docID)+"/atoms", batch, &resp); err != nil {
		return nil, fmt.Errorf("merge request failed: %w", err)
	}
	return &resp, nil
}

// doRequest выполняет HTTP запрос
func (c *Client) doRequest(ctx context.Context, method, path string, body, result any) error {
	var bodyReader io.Reader
	if body != nil {
		data, err := c.codec.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	contentType := "application/json"
	if c.codec.Binary() {
		contentType = contentTypeMsgpack
	}
	req.Header.Set("Accept", contentType)
	if body != nil {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrSequencerUnavailable, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		message := strings.TrimSpace(string(respBody))
		var errResp api.ErrorResponse
		if err := decodeResponse(resp, respBody, &errResp); err == nil && errResp.Error != "" {
			message = errResp.Error
		}
		if resp.StatusCode == http.StatusServiceUnavailable {
			return fmt.Errorf("%w: %s", ErrSequencerUnavailable, message)
		}
		return fmt.Errorf("server error (%d): %s", resp.StatusCode, message)
	}

	if result != nil {
		if err := decodeResponse(resp, respBody, result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// decodeResponse выбирает кодек по Content-Type ответа:
// ошибки сервер может вернуть в JSON даже клиенту msgpack
func decodeResponse(resp *http.Response, data []byte, v any) error {
	codec := api.JSON
	if strings.HasPrefix(resp.Header.Get("Content-Type"), contentTypeMsgpack) {
		codec = api.Msgpack
	}
	return codec.Unmarshal(data, v)
}
