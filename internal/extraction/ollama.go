package extraction

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Ollama implements the Extractor interface against Ollama's generate
// API. This is the single network dependency of the pipeline; the call
// is not retried, the caller re-triggers processing manually when it
// wants another attempt.
type Ollama struct {
	baseURL string
	client  *http.Client
}

// NewOllama creates a new Ollama Extractor instance. Text models that
// work well for invoice extraction include llama3, mistral, and
// qwen2.5; the model is chosen per request.
func NewOllama(baseURL string, timeout time.Duration) (*Ollama, error) {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	if timeout <= 0 {
		timeout = 120 * time.Second
	}

	return &Ollama{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

// ollamaGenerateRequest represents the request body for Ollama's
// generate API.
type ollamaGenerateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

// ollamaGenerateResponse represents the response from Ollama's generate
// API.
type ollamaGenerateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// ExtractFields sends the invoice text to the model and recovers the
// structured field set from its reply. Network errors, non-2xx statuses,
// and undecodable bodies all return Empty() with an
// ErrUnreachable-wrapped error; an unrecoverable reply returns Empty()
// with ErrMalformed from the recovery layer.
func (o *Ollama) ExtractFields(ctx context.Context, text, model string) (FieldSet, error) {
	reqBody := ollamaGenerateRequest{
		Model:  model,
		Prompt: BuildPrompt(text),
		Stream: false,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return Empty(), fmt.Errorf("%w: marshaling request: %v", ErrUnreachable, err)
	}

	url := fmt.Sprintf("%s/api/generate", o.baseURL)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return Empty(), fmt.Errorf("%w: creating request: %v", ErrUnreachable, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		return Empty(), fmt.Errorf("%w: calling ollama API: %v", ErrUnreachable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return Empty(), fmt.Errorf("%w: ollama API error (status %d): %s", ErrUnreachable, resp.StatusCode, string(body))
	}

	var genResp ollamaGenerateResponse
	if err := json.NewDecoder(resp.Body).Decode(&genResp); err != nil {
		return Empty(), fmt.Errorf("%w: decoding response: %v", ErrUnreachable, err)
	}

	return RecoverFieldSet(genResp.Response)
}

// Close closes the Ollama extractor (no-op for HTTP client)
func (o *Ollama) Close() error {
	return nil
}
