package netx

import (
	"context"
	"fmt"
	"io"
	"net/http"
)

// maxDownloadBytes caps voice notes and other media fetched from the chat transport.
const maxDownloadBytes = 20 << 20

// Download fetches url with GET and returns the body. Non-200 responses
// are errors carrying the status and a short body excerpt.
func Download(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("download failed: %s; body: %s", resp.Status, string(b))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxDownloadBytes+1))
	if err != nil {
		return nil, err
	}
	if len(body) > maxDownloadBytes {
		return nil, fmt.Errorf("download failed: body exceeds %d bytes", maxDownloadBytes)
	}
	return body, nil
}
