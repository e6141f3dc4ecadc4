package gemini

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// Client talks to the Google Generative Language REST API. It implements
// both domain.TextGenerator and domain.MediaVerifier.
type Client struct {
	apiKey     string
	model      string
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
}

// NewClient creates a Gemini client for the given model.
func NewClient(apiKey, model string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		apiKey: apiKey,
		model:  model,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: "https://generativelanguage.googleapis.com/v1beta",
		logger:  logger,
	}
}

// Generate sends a text prompt and returns the first candidate's text.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	reqBody := request{
		Contents: []content{
			{Parts: []part{{Text: prompt}}},
		},
	}
	return c.generateContent(ctx, reqBody)
}

// VerifyMedia asks the model whether the attached media plausibly depicts
// the report. The model is instructed to answer with a single word; anything
// other than a leading yes counts as a rejection.
func (c *Client) VerifyMedia(ctx context.Context, media []byte, mimeType, description string) (bool, error) {
	prompt := fmt.Sprintf(
		"Does the attached media plausibly depict the following city incident report? "+
			"Answer with a single word, YES or NO.\n\nReport: %s", description)

	reqBody := request{
		Contents: []content{
			{
				Parts: []part{
					{Text: prompt},
					{InlineData: &inlineData{
						MimeType: mimeType,
						Data:     base64.StdEncoding.EncodeToString(media),
					}},
				},
			},
		},
	}

	answer, err := c.generateContent(ctx, reqBody)
	if err != nil {
		return false, err
	}

	verdict := strings.HasPrefix(strings.ToUpper(strings.TrimSpace(answer)), "YES")
	c.logger.Debug("media verification", "verdict", verdict, "answer", strings.TrimSpace(answer))
	return verdict, nil
}

func (c *Client) generateContent(ctx context.Context, reqBody request) (string, error) {
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	u := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("gemini request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("gemini API error: status %d: %s", resp.StatusCode, body)
	}

	var genResp response
	if err := json.NewDecoder(resp.Body).Decode(&genResp); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}

	if len(genResp.Candidates) == 0 || len(genResp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("gemini returned no candidates")
	}
	return genResp.Candidates[0].Content.Parts[0].Text, nil
}

// Generative Language API request/response types.

type request struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inline_data,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type response struct {
	Candidates []candidate `json:"candidates"`
}

type candidate struct {
	Content content `json:"content"`
}
