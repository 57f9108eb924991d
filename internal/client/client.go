// HTTP implementation of the engine's Remote interface.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/ds124wfegd/WB_L3/6/internal/entity"
)

type Client struct {
	baseURL  string
	viewerID string
	http     *http.Client
}

func NewClient(baseURL, viewerID string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:  baseURL,
		viewerID: viewerID,
		http:     &http.Client{Timeout: timeout},
	}
}

func (c *Client) FetchPage(ctx context.Context, threadID string, page, pageSize int, policy entity.SortPolicy) (*entity.CommentsPage, error) {
	query := url.Values{}
	query.Set("page", fmt.Sprint(page))
	query.Set("page_size", fmt.Sprint(pageSize))
	query.Set("sort", string(policy))

	path := fmt.Sprintf("/threads/%s/comments?%s", url.PathEscape(threadID), query.Encode())
	var resp entity.CommentsPage
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) CreateComment(ctx context.Context, threadID string, req entity.CreateCommentRequest) (*entity.Comment, error) {
	path := fmt.Sprintf("/threads/%s/comments", url.PathEscape(threadID))
	var created entity.Comment
	if err := c.do(ctx, http.MethodPost, path, req, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *Client) CreateReply(ctx context.Context, threadID, parentID string, req entity.CreateCommentRequest) (*entity.Comment, error) {
	path := fmt.Sprintf("/threads/%s/comments/%s/replies", url.PathEscape(threadID), url.PathEscape(parentID))
	var created entity.Comment
	if err := c.do(ctx, http.MethodPost, path, req, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *Client) ToggleLike(ctx context.Context, commentID string) (*entity.LikeResult, error) {
	path := fmt.Sprintf("/comments/%s/like", url.PathEscape(commentID))
	var result entity.LikeResult
	if err := c.do(ctx, http.MethodPost, path, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) DeleteComment(ctx context.Context, commentID string) error {
	path := fmt.Sprintf("/comments/%s", url.PathEscape(commentID))
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %v", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.viewerID != "" {
		req.Header.Set("X-Viewer-ID", c.viewerID)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var apiErr struct {
			Error string `json:"error"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && apiErr.Error != "" {
			return fmt.Errorf("%s %s: %s", method, path, apiErr.Error)
		}
		return fmt.Errorf("%s %s: unexpected status %d", method, path, resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %v", err)
	}
	return nil
}
