//go:build gemini

package gemini

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// These tests hit the real Gemini API and require a valid GEMINI_API_KEY env
// var. Run with: go test -tags=gemini ./internal/adapter/gemini/ -v -count=1

func smokeClient(t *testing.T) *Client {
	t.Helper()
	key := os.Getenv("GEMINI_API_KEY")
	if key == "" {
		t.Fatal("GEMINI_API_KEY must be set to run smoke tests")
	}
	model := os.Getenv("GEMINI_MODEL")
	if model == "" {
		model = "gemini-1.5-pro"
	}
	return &Client{
		apiKey:     key,
		model:      model,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    "https://generativelanguage.googleapis.com/v1beta",
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func TestSmoke_Generate(t *testing.T) {
	c := smokeClient(t)

	text, err := c.Generate(context.Background(),
		"Generate a concise but detailed summary for the following data points:\n"+
			"Detected traffic situation in Silk Board: heavy jam reported\n\nSummary:")
	require.NoError(t, err)
	assert.NotEmpty(t, text)
}
