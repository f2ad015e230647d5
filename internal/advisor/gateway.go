package advisor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"aquaform/internal/models"
)

// Gateway reaches a model through an LLM gateway that speaks JSON-RPC
// tools/call with a create_completion tool.
type Gateway struct {
	httpClient *http.Client
	proxyURL   string
	apiKey     string
	model      string
	logger     *zap.Logger
}

func NewGateway(cfg Config, logger *zap.Logger) *Gateway {
	return &Gateway{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		proxyURL:   strings.TrimRight(cfg.GatewayURL, "/"),
		apiKey:     cfg.GatewayKey,
		model:      cfg.Model,
		logger:     logger,
	}
}

func (g *Gateway) Available() bool { return true }

func (g *Gateway) Name() string { return "gateway:" + g.model }

func (g *Gateway) Optimize(ctx context.Context, req models.OptimizeRequest) (*models.Suggestion, error) {
	prompt, err := optimizePrompt(req)
	if err != nil {
		return nil, err
	}
	content, err := g.complete(ctx, optimizeSystemPrompt, prompt, 0.2)
	if err != nil {
		return nil, fmt.Errorf("failed to get AI completion: %w", err)
	}
	return decodeSuggestion(content)
}

func (g *Gateway) Insights(ctx context.Context, speciesName string) (string, error) {
	content, err := g.complete(ctx, "", insightsPrompt(speciesName), 0.4)
	if err != nil {
		return "", fmt.Errorf("failed to get species insights: %w", err)
	}
	if content = strings.TrimSpace(content); content == "" {
		return NoInsights, nil
	}
	return content, nil
}

func (g *Gateway) complete(ctx context.Context, system, user string, temperature float64) (string, error) {
	args := map[string]interface{}{
		"model": g.model,
		"messages": []map[string]interface{}{
			{"role": "user", "content": user},
		},
		"max_tokens":  2000,
		"temperature": temperature,
	}
	if system != "" {
		args["system_prompt"] = system
	}

	out, err := g.callGateway(ctx, "create_completion", args)
	if err != nil {
		return "", err
	}
	// The completion is itself a JSON document carrying the model text.
	if content := gjson.Get(out, "content"); content.Exists() {
		return content.String(), nil
	}
	return out, nil
}

func (g *Gateway) callGateway(ctx context.Context, toolName string, args interface{}) (string, error) {
	url := fmt.Sprintf("%s/openrouter-gateway", g.proxyURL)

	requestData := map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  "tools/call",
		"params": map[string]interface{}{
			"name":      toolName,
			"arguments": args,
		},
	}

	jsonData, err := json.Marshal(requestData)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create HTTP request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.apiKey)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("request failed with status %d: %s", resp.StatusCode, string(body))
	}

	if msg := gjson.GetBytes(body, "error.message"); msg.Exists() {
		return "", fmt.Errorf("gateway error: %s", msg.String())
	}
	text := gjson.GetBytes(body, "result.content.0.text")
	if !text.Exists() {
		return "", fmt.Errorf("unexpected response format")
	}
	g.logger.Debug("gateway call", zap.String("tool", toolName), zap.Int("bytes", len(body)))
	return text.String(), nil
}
