package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"
)

// Detection is one labeled region reported by the external object
// detector. The classifier treats Label as free text.
type Detection struct {
	Label      string     `json:"label"`
	Confidence float64    `json:"confidence"`
	Bbox       [4]float64 `json:"bbox"`
}

// DetectionProvider supplies object detections for a photo. The engine
// receives this capability explicitly so tests can substitute a fake
// detector.
type DetectionProvider interface {
	Detect(ctx context.Context, photo []byte, filename string) ([]Detection, error)
}

// HTTPDetectionClient calls an external inference service over HTTP.
type HTTPDetectionClient struct {
	inferenceURL string
	client       *http.Client
}

func NewHTTPDetectionClient(inferenceURL string) *HTTPDetectionClient {
	return &HTTPDetectionClient{
		inferenceURL: inferenceURL,
		client:       &http.Client{Timeout: 60 * time.Second},
	}
}

// Detect posts the photo as multipart form data and parses the detection
// list from the response.
func (c *HTTPDetectionClient) Detect(ctx context.Context, photo []byte, filename string) ([]Detection, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, bytes.NewReader(photo)); err != nil {
		return nil, fmt.Errorf("copy photo data: %w", err)
	}
	writer.Close()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.inferenceURL, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("inference failed with status: %d", resp.StatusCode)
	}

	var result struct {
		Detections []Detection `json:"detections"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	return result.Detections, nil
}

// CheckHealth verifies the inference service is reachable.
func (c *HTTPDetectionClient) CheckHealth() error {
	resp, err := c.client.Get(c.inferenceURL + "/health")
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("detection service unhealthy: %d", resp.StatusCode)
	}

	return nil
}
