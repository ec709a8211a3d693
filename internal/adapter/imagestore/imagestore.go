// Package imagestore uploads product images to a hosted image service
// over its HTTP API and returns the served URL.
package imagestore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/pvolkov/shoply/internal/core/domain"
	"github.com/pvolkov/shoply/internal/core/port"
	"github.com/pvolkov/shoply/pkg/retry"
)

var _ port.ImageUploader = (*Client)(nil)

const (
	requestTimeout = 15 * time.Second
	maxAttempts    = 3
)

type uploadResponse struct {
	SecureURL string `json:"secure_url"`
	Error     struct {
		Message string `json:"message"`
	} `json:"error"`
}

type Client struct {
	uploadURL string
	apiKey    string
	folder    string
	httpCl    *http.Client
}

func New(uploadURL, apiKey, folder string) Client {
	return Client{
		uploadURL: uploadURL,
		apiKey:    apiKey,
		folder:    folder,
		httpCl:    &http.Client{Timeout: requestTimeout},
	}
}

// Upload sends the image and returns the hosted URL. Transient upstream
// failures are retried with backoff; 4xx responses are not.
func (c Client) Upload(
	ctx context.Context, filename string, data io.Reader,
) (string, error) {
	const op = "imagestore.Upload"

	body, contentType, err := c.buildForm(filename, data)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	retryCfg := retry.RetryConfig{
		MaxAttempts: maxAttempts,
		Backoff:     retry.ExponentialBackoff(200 * time.Millisecond),
		ShouldRetry: func(err error) bool {
			return domain.KindOf(err) == domain.KindInternal
		},
	}

	url, err := retry.DoWithResult(ctx, retryCfg, func() (string, error) {
		return c.doUpload(ctx, body, contentType)
	})
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return url, nil
}

func (c Client) buildForm(
	filename string, data io.Reader,
) (body []byte, contentType string, err error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	if c.folder != "" {
		if err := w.WriteField("folder", c.folder); err != nil {
			return nil, "", err
		}
	}

	fw, err := w.CreateFormFile("file", filename)
	if err != nil {
		return nil, "", err
	}
	if _, err := io.Copy(fw, data); err != nil {
		return nil, "", err
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}

func (c Client) doUpload(
	ctx context.Context, body []byte, contentType string,
) (string, error) {
	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost, c.uploadURL, bytes.NewReader(body),
	)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	res, err := c.httpCl.Do(req)
	if err != nil {
		return "", err
	}
	defer res.Body.Close()

	var parsed uploadResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}

	switch {
	case res.StatusCode >= 500:
		return "", fmt.Errorf(
			"image service unavailable: status %d", res.StatusCode,
		)
	case res.StatusCode >= 400:
		return "", domain.InvalidInput(
			"image rejected: " + parsed.Error.Message,
		)
	}

	if parsed.SecureURL == "" {
		return "", fmt.Errorf("image service returned no url")
	}
	return parsed.SecureURL, nil
}
