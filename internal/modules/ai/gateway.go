package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	neturl "net/url"
	"strings"
	"time"

	anthropicclient "github.com/anthropics/anthropic-sdk-go"
	anthropicoption "github.com/anthropics/anthropic-sdk-go/option"
	appcfg "github.com/bookwright/core/internal/config"
	openaiclient "github.com/openai/openai-go/v2"
	openaioption "github.com/openai/openai-go/v2/option"
	jetai "go.jetify.com/ai"
	jetapi "go.jetify.com/ai/api"
	jetanthropic "go.jetify.com/ai/provider/anthropic"
	jetopenai "go.jetify.com/ai/provider/openai"
)

// defaultCallTimeout bounds a single provider call. Generation regularly
// takes tens of seconds for full chapters.
const defaultCallTimeout = 45 * time.Second

const maxOutputTokens = 4096

// FailureKind classifies a generation failure.
type FailureKind string

const (
	FailureProvider FailureKind = "provider"
	FailureTimeout  FailureKind = "timeout"
)

// Failure describes why a generation call did not produce text.
type Failure struct {
	Kind   FailureKind
	Reason string
}

// Result is the outcome of one generation call. Exactly one of Text or
// Failure is set. Provider errors never cross this boundary as panics or
// raw transport errors.
type Result struct {
	Text    string
	Failure *Failure
}

// OK reports whether the call produced text.
func (r Result) OK() bool { return r.Failure == nil }

// Request is a generation request with a deterministic prompt.
type Request interface {
	Prompt() string
}

// Gateway sends generation requests to a text-generation provider.
type Gateway interface {
	Generate(ctx context.Context, req Request) Result
}

// ProviderGateway is a Gateway backed by a configured provider. All
// provider parameters are explicit construction arguments so the gateway
// is substitutable with a deterministic fake in tests.
type ProviderGateway struct {
	provider appcfg.AIProvider
	timeout  time.Duration
}

// NewProviderGateway builds a gateway for the given provider config.
func NewProviderGateway(provider appcfg.AIProvider) *ProviderGateway {
	return &ProviderGateway{provider: provider, timeout: defaultCallTimeout}
}

// SelectProvider returns the first enabled provider, or nil when none is
// usable.
func SelectProvider(cfg appcfg.AIConfig) *appcfg.AIProvider {
	for _, provider := range cfg.Providers {
		if !provider.Enabled {
			continue
		}
		selected := provider
		return &selected
	}
	return nil
}

// Generate sends the request and normalizes every possible failure into a
// typed Result.
func (g *ProviderGateway) Generate(ctx context.Context, req Request) Result {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	text, err := g.call(ctx, req.Prompt())
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return Result{Failure: &Failure{Kind: FailureTimeout, Reason: "generation timed out"}}
		}
		return Result{Failure: &Failure{Kind: FailureProvider, Reason: err.Error()}}
	}
	if strings.TrimSpace(text) == "" {
		return Result{Failure: &Failure{Kind: FailureProvider, Reason: "empty response from provider"}}
	}
	return Result{Text: text}
}

func (g *ProviderGateway) call(ctx context.Context, prompt string) (string, error) {
	if isOpenAICompatibleProviderType(g.provider.Type) {
		return g.callOpenAICompatible(ctx, prompt)
	}

	model, err := buildLanguageModel(&g.provider)
	if err != nil {
		return "", err
	}
	resp, err := jetai.GenerateText(
		ctx,
		[]jetapi.Message{&jetapi.UserMessage{Content: jetapi.ContentFromText(prompt)}},
		jetai.WithModel(model),
		jetai.WithMaxOutputTokens(maxOutputTokens),
	)
	if err != nil {
		return "", err
	}
	return textFromSDKResponse(resp)
}

func (g *ProviderGateway) callOpenAICompatible(ctx context.Context, prompt string) (string, error) {
	if strings.TrimSpace(g.provider.APIKey) == "" {
		return "", errors.New("provider api key is empty")
	}

	endpoint := normalizeOpenAICompatibleEndpoint(g.provider.Endpoint)
	model := strings.TrimSpace(g.provider.DefaultModel)
	if model == "" {
		model = "gpt-4o-mini"
	}

	body, _ := json.Marshal(map[string]interface{}{
		"model": model,
		"messages": []map[string]string{
			{"role": "user", "content": prompt},
		},
		"max_tokens": maxOutputTokens,
	})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+strings.TrimSpace(g.provider.APIKey))
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return "", fmt.Errorf("provider error: %s", strings.TrimSpace(string(respBody)))
	}

	text := ExtractResponseText(respBody)
	if strings.TrimSpace(text) == "" {
		return "", errors.New("empty response from provider")
	}
	return text, nil
}

// ExtractResponseText normalizes a provider response body to plain text.
// Providers disagree on response shape; the supported forms are a plain
// JSON string, {"text": ...}, {"outputText": ...},
// {"output":[{"content":[{"text": ...}]}]}, and the chat-completions
// {"choices":[{"message":{"content": ...}}]} layout. Anything else falls
// back to the raw serialization so the caller can diagnose it rather than
// silently losing the response.
func ExtractResponseText(body []byte) string {
	var asString string
	if err := json.Unmarshal(body, &asString); err == nil {
		return asString
	}

	var envelope struct {
		Text       string `json:"text"`
		OutputText string `json:"outputText"`
		Output     []struct {
			Content []struct {
				Text string `json:"text"`
			} `json:"content"`
		} `json:"output"`
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil {
		if envelope.Text != "" {
			return envelope.Text
		}
		if envelope.OutputText != "" {
			return envelope.OutputText
		}
		for _, out := range envelope.Output {
			for _, block := range out.Content {
				if block.Text != "" {
					return block.Text
				}
			}
		}
		if len(envelope.Choices) > 0 && envelope.Choices[0].Message.Content != "" {
			return envelope.Choices[0].Message.Content
		}
	}

	return string(body)
}

func textFromSDKResponse(resp *jetapi.Response) (string, error) {
	if resp == nil {
		return "", errors.New("empty response from provider")
	}

	var full strings.Builder
	for _, block := range resp.Content {
		textBlock, ok := block.(*jetapi.TextBlock)
		if !ok || textBlock.Text == "" {
			continue
		}
		full.WriteString(textBlock.Text)
	}

	text := full.String()
	if strings.TrimSpace(text) == "" {
		return "", errors.New("empty response from provider")
	}
	return text, nil
}

func buildLanguageModel(provider *appcfg.AIProvider) (jetapi.LanguageModel, error) {
	apiKey := strings.TrimSpace(provider.APIKey)
	if apiKey == "" {
		return nil, errors.New("provider api key is empty")
	}

	modelID := strings.TrimSpace(provider.DefaultModel)
	providerType := strings.ToLower(strings.TrimSpace(provider.Type))
	endpoint := strings.TrimSpace(provider.Endpoint)

	if providerType == "anthropic" {
		if modelID == "" {
			modelID = "claude-haiku-4-5-20251001"
		}

		opts := []anthropicoption.RequestOption{
			anthropicoption.WithAPIKey(apiKey),
			anthropicoption.WithMaxRetries(0),
		}
		if endpoint != "" {
			opts = append(opts, anthropicoption.WithBaseURL(strings.TrimRight(endpoint, "/")))
		}

		client := anthropicclient.NewClient(opts...)
		return jetanthropic.NewLanguageModel(modelID, jetanthropic.WithClient(client)), nil
	}

	if modelID == "" {
		modelID = "gpt-4o-mini"
	}

	opts := []openaioption.RequestOption{
		openaioption.WithAPIKey(apiKey),
		openaioption.WithMaxRetries(0),
	}
	if normalized := normalizeOpenAIBaseURL(endpoint); normalized != "" {
		opts = append(opts, openaioption.WithBaseURL(normalized))
	}

	client := openaiclient.NewClient(opts...)
	return jetopenai.NewLanguageModel(modelID, jetopenai.WithClient(client)), nil
}

func isOpenAICompatibleProviderType(raw string) bool {
	t := strings.ToLower(strings.TrimSpace(raw))
	t = strings.ReplaceAll(t, "_", "-")
	t = strings.ReplaceAll(t, " ", "")
	return t == "openai-compatible" || t == "openaicompatible"
}

func normalizeOpenAIBaseURL(raw string) string {
	base := strings.TrimSpace(raw)
	if base == "" {
		return ""
	}
	parsed, err := neturl.Parse(base)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return strings.TrimRight(base, "/")
	}

	path := strings.TrimRight(parsed.Path, "/")
	if !strings.HasSuffix(path, "/v1") {
		if path == "" {
			path = "/v1"
		} else {
			path += "/v1"
		}
	}
	parsed.Path = path
	return strings.TrimRight(parsed.String(), "/")
}

func normalizeOpenAICompatibleEndpoint(raw string) string {
	base := strings.TrimSpace(raw)
	if base == "" {
		return "https://api.openai.com"
	}

	parsed, err := neturl.Parse(base)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		cleaned := strings.TrimRight(base, "/")
		return strings.TrimSuffix(cleaned, "/v1")
	}

	path := strings.TrimRight(parsed.Path, "/")
	path = strings.TrimSuffix(path, "/v1")
	parsed.Path = path
	return strings.TrimRight(parsed.String(), "/")
}
