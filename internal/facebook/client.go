// Package facebook is the Graph API client used to upload roster images and
// create, schedule, and delete page posts.
package facebook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/amarfts/ph-scheduler/platform/apperr"
	"github.com/amarfts/ph-scheduler/platform/config"
	"github.com/amarfts/ph-scheduler/platform/logger"
)

// Client talks to the Graph API.
type Client struct {
	baseURL string
	client  *http.Client
	log     *logger.Logger
}

// NewClient creates a Graph API client.
func NewClient(cfg config.GraphConfig, log *logger.Logger) *Client {
	return &Client{
		baseURL: cfg.GetGraphBaseURL(),
		client:  &http.Client{Timeout: 60 * time.Second},
		log:     log,
	}
}

type graphIDResponse struct {
	ID string `json:"id"`
}

type graphErrorResponse struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// UploadPhoto uploads an image to the page unpublished and returns the media
// id for later attachment.
func (c *Client) UploadPhoto(ctx context.Context, pageToken, pageID string, image []byte) (string, error) {
	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)

	if err := form.WriteField("access_token", pageToken); err != nil {
		return "", err
	}
	if err := form.WriteField("published", "false"); err != nil {
		return "", err
	}
	part, err := form.CreateFormFile("source", "roster.png")
	if err != nil {
		return "", err
	}
	if _, err := part.Write(image); err != nil {
		return "", err
	}
	if err := form.Close(); err != nil {
		return "", err
	}

	reqURL := fmt.Sprintf("%s/%s/photos", c.baseURL, pageID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, &buf)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", form.FormDataContentType())

	id, err := c.doIDRequest(req, "photo upload failed")
	if err != nil {
		return "", err
	}

	c.log.Info("photo uploaded", "page_id", pageID, "media_id", id)
	return id, nil
}

// CreatePost creates a feed post with the uploaded media attached. When
// scheduledAt is non-zero the post is created unpublished with a
// scheduled_publish_time; otherwise it goes live immediately.
func (c *Client) CreatePost(ctx context.Context, pageToken, pageID, message, mediaID string, scheduledAt time.Time) (string, error) {
	attached, err := json.Marshal([]map[string]string{{"media_fbid": mediaID}})
	if err != nil {
		return "", err
	}

	body := url.Values{}
	body.Set("access_token", pageToken)
	body.Set("message", message)
	body.Set("attached_media", string(attached))
	if !scheduledAt.IsZero() {
		body.Set("published", "false")
		body.Set("scheduled_publish_time", strconv.FormatInt(scheduledAt.Unix(), 10))
	}

	reqURL := fmt.Sprintf("%s/%s/feed", c.baseURL, pageID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL,
		bytes.NewBufferString(body.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	id, err := c.doIDRequest(req, "post creation failed")
	if err != nil {
		return "", err
	}

	c.log.Info("post created", "page_id", pageID, "post_id", id, "scheduled", !scheduledAt.IsZero())
	return id, nil
}

// DeletePost deletes a page post by its remote id.
func (c *Client) DeletePost(ctx context.Context, pageToken, postID string) error {
	params := url.Values{}
	params.Set("access_token", pageToken)

	reqURL := fmt.Sprintf("%s/%s?%s", c.baseURL, postID, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, reqURL, nil)
	if err != nil {
		return err
	}

	if _, err := c.doIDRequest(req, "post deletion failed"); err != nil {
		return err
	}

	c.log.Info("post deleted", "post_id", postID)
	return nil
}

// doIDRequest executes the request and decodes the standard {id} response.
// Graph error messages are surfaced verbatim.
func (c *Client) doIDRequest(req *http.Request, failure string) (string, error) {
	resp, err := c.client.Do(req)
	if err != nil {
		c.log.Error("graph api request failed", "error", err)
		return "", apperr.RemoteIntegration("social platform unreachable")
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", apperr.RemoteIntegration("reading social platform response failed")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", apperr.RemoteIntegration(remoteMessage(payload, failure))
	}

	var out graphIDResponse
	if err := json.Unmarshal(payload, &out); err != nil || out.ID == "" {
		// DELETE responds {"success":true} without an id.
		if req.Method == http.MethodDelete {
			return "", nil
		}
		return "", apperr.RemoteIntegration(failure + ": no id in response")
	}

	return out.ID, nil
}

// remoteMessage extracts the platform's own error message when present so it
// reaches the operator verbatim.
func remoteMessage(payload []byte, fallback string) string {
	var graphErr graphErrorResponse
	if err := json.Unmarshal(payload, &graphErr); err == nil && graphErr.Error.Message != "" {
		return fmt.Sprintf("%s: %s", fallback, graphErr.Error.Message)
	}
	return fallback
}
