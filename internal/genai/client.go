// Package genai calls the remote text-generation API and normalizes its
// failures into a small error taxonomy.
package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	defaultBaseURL = "https://generativelanguage.googleapis.com"
	defaultModel   = "gemini-2.0-flash"
	defaultTimeout = 30 * time.Second

	// summaryInstruction is prepended to the source text to form the prompt.
	summaryInstruction = "以下のテキストを日本語で簡潔に要約してください。\n\n"

	// keyProbePrompt is the trivial prompt used to validate a credential.
	keyProbePrompt = "こんにちは"
)

// Client performs single generateContent calls against a Gemini-style
// endpoint. It does not retry and enforces no timeout beyond the HTTP
// client's.
type Client struct {
	baseURL    string
	model      string
	httpClient *http.Client
	classify   Classifier
}

// New creates a Client for the given model. An empty model selects the
// default.
func New(model string) *Client {
	if model == "" {
		model = defaultModel
	}
	return &Client{
		baseURL:    defaultBaseURL,
		model:      model,
		httpClient: &http.Client{Timeout: defaultTimeout},
		classify:   Classify,
	}
}

// NewWithBaseURL creates a Client pointing at a custom base URL (for testing
// or proxied deployments).
func NewWithBaseURL(model, baseURL string) *Client {
	c := New(model)
	if baseURL != "" {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
	return c
}

// SetClassifier replaces the default error classifier.
func (c *Client) SetClassifier(fn Classifier) {
	if fn != nil {
		c.classify = fn
	}
}

// generateRequest is the JSON body for POST :generateContent.
type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

// generateResponse is the JSON returned by POST :generateContent.
type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []part `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// Summarize generates a summary for text using the given credential. The
// caller must have checked that credential is non-empty. The generated text
// is returned verbatim; a blank result is not an error here — the caller
// decides how to treat it. Any failure is returned as *APIError.
func (c *Client) Summarize(ctx context.Context, credential, text string) (string, error) {
	return c.generate(ctx, credential, summaryInstruction+text)
}

// TestKey issues one minimal generation call to check that the credential is
// accepted by the provider.
func (c *Client) TestKey(ctx context.Context, credential string) error {
	_, err := c.generate(ctx, credential, keyProbePrompt)
	return err
}

func (c *Client) generate(ctx context.Context, credential, prompt string) (string, error) {
	body, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	})
	if err != nil {
		return "", c.classify(fmt.Errorf("marshaling request: %w", err))
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.baseURL, c.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", c.classify(fmt.Errorf("creating request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", credential)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", c.classify(fmt.Errorf("generate request: %w", err))
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", c.classify(fmt.Errorf("reading response: %w", err))
	}

	var result generateResponse
	if resp.StatusCode != http.StatusOK {
		// Keep the raw body intact so the classifier's substring rules can
		// see markers like API_KEY_INVALID in the error details.
		msg := strings.TrimSpace(string(respBody))
		return "", c.classify(fmt.Errorf("generate failed with status %d: %s", resp.StatusCode, msg))
	}

	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", c.classify(fmt.Errorf("decoding response: %w", err))
	}
	if result.Error != nil {
		return "", c.classify(fmt.Errorf("generate error %s: %s", result.Error.Status, result.Error.Message))
	}
	if len(result.Candidates) == 0 {
		return "", c.classify(errors.New("no candidates in response"))
	}

	var full strings.Builder
	for _, p := range result.Candidates[0].Content.Parts {
		full.WriteString(p.Text)
	}
	return full.String(), nil
}
