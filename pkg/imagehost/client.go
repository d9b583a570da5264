package imagehost

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/farhanmaulana/cetakin-backend/pkg/config"
)

const fieldName = "image"

// Uploader is the surface consumed by the asset service.
type Uploader interface {
	Upload(ctx context.Context, fileName string, content io.Reader) (string, error)
}

// Client talks to the external image-hosting API. Uploads are a single
// multipart POST authenticated by an API key query parameter; the host
// answers with {"success": bool, "data": {"url": "..."}}.
type Client struct {
	httpClient *http.Client
	uploadURL  string
	apiKey     string
}

type uploadResponse struct {
	Success bool `json:"success"`
	Data    struct {
		URL string `json:"url"`
	} `json:"data"`
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// NewClient builds an image host client from configuration.
func NewClient(cfg config.ImageHostConfig) (*Client, error) {
	if cfg.UploadURL == "" {
		return nil, errors.New("image host upload url is required")
	}
	if cfg.APIKey == "" {
		return nil, errors.New("image host api key is required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		uploadURL:  cfg.UploadURL,
		apiKey:     cfg.APIKey,
	}, nil
}

// Upload sends one file and returns the hosted URL. One attempt, no retry.
func (c *Client) Upload(ctx context.Context, fileName string, content io.Reader) (string, error) {
	if strings.TrimSpace(fileName) == "" {
		return "", errors.New("file name is required")
	}
	if content == nil {
		return "", errors.New("file content is required")
	}

	body, contentType, err := buildMultipartBody(fileName, content)
	if err != nil {
		return "", err
	}

	endpoint, err := c.endpointWithKey()
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return "", fmt.Errorf("building upload request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	res, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("upload request: %w", err)
	}
	defer res.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("reading upload response: %w", err)
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return "", fmt.Errorf("image host returned status %d", res.StatusCode)
	}

	var decoded uploadResponse
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return "", fmt.Errorf("decoding upload response: %w", err)
	}
	if !decoded.Success || decoded.Data.URL == "" {
		msg := decoded.Error.Message
		if msg == "" {
			msg = "upload rejected"
		}
		return "", fmt.Errorf("image host: %s", msg)
	}

	return decoded.Data.URL, nil
}

func (c *Client) endpointWithKey() (string, error) {
	parsed, err := url.Parse(c.uploadURL)
	if err != nil {
		return "", fmt.Errorf("parsing upload url: %w", err)
	}
	q := parsed.Query()
	q.Set("key", c.apiKey)
	parsed.RawQuery = q.Encode()
	return parsed.String(), nil
}

func buildMultipartBody(fileName string, content io.Reader) (io.Reader, string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile(fieldName, fileName)
	if err != nil {
		return nil, "", fmt.Errorf("creating multipart part: %w", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return nil, "", fmt.Errorf("copying file content: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("finalizing multipart body: %w", err)
	}

	return &buf, writer.FormDataContentType(), nil
}
