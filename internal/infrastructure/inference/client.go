// Package inference talks to an OpenAI-compatible chat completion endpoint
// and exposes the streamed deltas as plain text fragments.
package inference

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/sashabaranov/go-openai"
	"resty.dev/v3"

	"github.com/kangsive/ai-chat-bot/internal/config"
	"github.com/kangsive/ai-chat-bot/internal/domain/chat"
	"github.com/kangsive/ai-chat-bot/internal/utils/platformerrors"
)

const (
	dataPrefix           = "data: "
	doneMarker           = "[DONE]"
	scannerInitialBuffer = 12 * 1024        // 12KB
	scannerMaxBuffer     = 10 * 1024 * 1024 // 10MB
)

type completionRequest struct {
	Model    string             `json:"model"`
	Messages []chat.WireMessage `json:"messages"`
	Stream   bool               `json:"stream"`
}

// Client streams chat completions from a single configured upstream.
type Client struct {
	client  *resty.Client
	baseURL string
	apiKey  string
	log     zerolog.Logger
}

var _ chat.CompletionStreamer = (*Client)(nil)

func NewClient(cfg *config.Config, log zerolog.Logger) *Client {
	restyClient := resty.New().
		SetTimeout(cfg.InferenceTimeout).
		SetRetryCount(0)

	return &Client{
		client:  restyClient,
		baseURL: normalizeBaseURL(cfg.InferenceBaseURL),
		apiKey:  cfg.InferenceAPIKey,
		log:     log.With().Str("component", "inference-client").Logger(),
	}
}

func normalizeBaseURL(baseURL string) string {
	return strings.TrimRight(strings.TrimSpace(baseURL), "/")
}

// StreamCompletion posts the history to the upstream and invokes onFragment
// for every non-empty content delta, in arrival order. It returns only after
// the upstream signals completion or an error ends the stream early.
func (c *Client) StreamCompletion(ctx context.Context, model string, history []chat.WireMessage, onFragment func(string) error) error {
	body := completionRequest{
		Model:    model,
		Messages: history,
		Stream:   true,
	}

	req := c.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		SetDoNotParseResponse(true)
	if strings.TrimSpace(c.apiKey) != "" {
		req.SetHeader("Authorization", fmt.Sprintf("Bearer %s", c.apiKey))
	}
	if req.Header.Get("Accept-Encoding") == "" {
		req.SetHeader("Accept-Encoding", "identity")
	}

	start := time.Now()
	resp, err := req.Post(c.baseURL + "/chat/completions")
	if err != nil {
		return platformerrors.NewError(ctx, platformerrors.LayerInfrastructure, platformerrors.ErrorTypeExternal, "completion request failed", err, "e589f708-9223-4d30-8579-bb95f64b75db")
	}
	if resp.IsError() {
		return c.errorFromResponse(ctx, resp)
	}
	if resp.RawResponse == nil || resp.RawResponse.Body == nil {
		return platformerrors.NewError(ctx, platformerrors.LayerInfrastructure, platformerrors.ErrorTypeExternal, "completion request returned an empty body", nil, "781e8162-ea8c-42a8-ad56-1d2472575d8a")
	}

	defer func() {
		if closeErr := resp.RawResponse.Body.Close(); closeErr != nil {
			c.log.Error().Err(closeErr).Msg("unable to close response body")
		}
	}()

	scanner := bufio.NewScanner(resp.RawResponse.Body)
	scanner.Buffer(make([]byte, 0, scannerInitialBuffer), scannerMaxBuffer)

	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		data, found := strings.CutPrefix(scanner.Text(), dataPrefix)
		if !found {
			continue
		}
		if data == doneMarker {
			c.log.Debug().Str("model", model).Dur("duration", time.Since(start)).Msg("completion stream finished")
			return nil
		}

		fragment, ok := c.parseChunk(data)
		if !ok || fragment == "" {
			continue
		}
		if err := onFragment(fragment); err != nil {
			return err
		}
	}

	if err := scanner.Err(); err != nil {
		return platformerrors.NewError(ctx, platformerrors.LayerInfrastructure, platformerrors.ErrorTypeExternal, "completion stream interrupted", err, "3f168b00-7e85-4de9-88ca-0a11fe0564ef")
	}
	return nil
}

func (c *Client) parseChunk(data string) (string, bool) {
	var chunk openai.ChatCompletionStreamResponse
	if err := json.Unmarshal([]byte(data), &chunk); err != nil {
		c.log.Error().Err(err).Str("data", data).Msg("failed to parse stream chunk JSON")
		return "", false
	}
	if len(chunk.Choices) == 0 {
		return "", false
	}
	return chunk.Choices[0].Delta.Content, true
}

func (c *Client) errorFromResponse(ctx context.Context, resp *resty.Response) error {
	message := fmt.Sprintf("completion request failed with status %d", resp.StatusCode())
	if resp.RawResponse == nil || resp.RawResponse.Body == nil {
		return platformerrors.NewError(ctx, platformerrors.LayerInfrastructure, platformerrors.ErrorTypeExternal, message, nil, "7bf81bd8-8316-472d-9a23-39c093143a8a")
	}
	defer resp.RawResponse.Body.Close()
	body, err := io.ReadAll(resp.RawResponse.Body)
	if err != nil {
		return platformerrors.NewError(ctx, platformerrors.LayerInfrastructure, platformerrors.ErrorTypeExternal, message, nil, "713395c2-3608-413f-bc32-0d288c1cf7a1")
	}
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return platformerrors.NewError(ctx, platformerrors.LayerInfrastructure, platformerrors.ErrorTypeExternal, message, nil, "80e4dad5-403f-484d-8452-5550599e7d15")
	}
	return platformerrors.NewError(ctx, platformerrors.LayerInfrastructure, platformerrors.ErrorTypeExternal, fmt.Sprintf("%s: %s", message, trimmed), nil, "d9322a64-8591-4175-9593-2875ffbe4df3")
}
