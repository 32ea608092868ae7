package ranking

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/codesymm/mechsynth/pkg/behavior"
	"github.com/codesymm/mechsynth/pkg/catalog"
	"github.com/codesymm/mechsynth/pkg/logging"
	"github.com/codesymm/mechsynth/pkg/metrics"
)

// GeminiConfig configures the remote ranker.
type GeminiConfig struct {
	// Endpoint is the API base URL; the model path is appended to it.
	Endpoint string
	// Model is the generative model name.
	Model string
	// APIKey authenticates the request. Empty means the ranker is
	// unavailable and Rank fails immediately.
	APIKey string
	// Timeout bounds one ranking request.
	Timeout time.Duration
}

const (
	defaultEndpoint = "https://generativelanguage.googleapis.com"
	defaultModel    = "gemini-2.5-flash-lite"
	defaultTimeout  = 30 * time.Second
)

// GeminiRanker scores building blocks with a generative model. The model
// is asked for a strict JSON array of {name, score, reasoning}; blocks it
// omits are kept with a low default score so the output always covers the
// full catalog.
type GeminiRanker struct {
	cfg     GeminiConfig
	client  *http.Client
	log     logging.Logger
	metrics *metrics.Registry
}

// NewGeminiRanker creates the remote ranker, filling config defaults.
func NewGeminiRanker(cfg GeminiConfig, log logging.Logger, reg *metrics.Registry) *GeminiRanker {
	if cfg.Endpoint == "" {
		cfg.Endpoint = defaultEndpoint
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if log == nil {
		log = logging.Nop()
	}
	if reg == nil {
		reg = metrics.Default()
	}
	return &GeminiRanker{
		cfg:     cfg,
		client:  &http.Client{Timeout: cfg.Timeout},
		log:     log,
		metrics: reg,
	}
}

// Name identifies the ranker in logs and metrics.
func (r *GeminiRanker) Name() string { return "gemini" }

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

// Rank queries the model and merges its scores over the full block list.
func (r *GeminiRanker) Rank(ctx context.Context, description string, efs []behavior.EF, blocks []catalog.Block) (ranked []RankedMechanism, err error) {
	defer func() { r.metrics.RecordRankingCall(r.Name(), err) }()

	if r.cfg.APIKey == "" {
		return nil, fmt.Errorf("ranking: gemini: no API key configured")
	}

	prompt, err := buildPrompt(description, efs, blocks)
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
	})
	if err != nil {
		return nil, fmt.Errorf("ranking: gemini: encode request: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", strings.TrimRight(r.cfg.Endpoint, "/"), r.cfg.Model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("ranking: gemini: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", r.cfg.APIKey)

	timer := logging.Timed(r.log, "gemini ranking call", logging.Component("ranking"))
	resp, err := r.client.Do(req)
	if err != nil {
		timer.EndError(err)
		return nil, fmt.Errorf("ranking: gemini: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		err = fmt.Errorf("ranking: gemini: status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
		timer.EndError(err)
		return nil, err
	}

	var parsed geminiResponse
	if err = json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		timer.EndError(err)
		return nil, fmt.Errorf("ranking: gemini: decode response: %w", err)
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		err = fmt.Errorf("ranking: gemini: empty response")
		timer.EndError(err)
		return nil, err
	}

	rankings, err := parseRankings(parsed.Candidates[0].Content.Parts[0].Text)
	if err != nil {
		timer.EndError(err)
		return nil, err
	}
	timer.End()

	return mergeRankings(rankings, blocks), nil
}

// buildPrompt asks for a strict JSON ranking of the catalog against the
// full task context.
func buildPrompt(description string, efs []behavior.EF, blocks []catalog.Block) (string, error) {
	type blockSummary struct {
		Name             string `json:"name"`
		Description      string `json:"description"`
		TextDescription  string `json:"text_description"`
		MotionConversion string `json:"motion_conversion"`
		NumElements      int    `json:"num_elements"`
	}
	summaries := make([]blockSummary, 0, len(blocks))
	for _, b := range blocks {
		summaries = append(summaries, blockSummary{
			Name:             b.Name,
			Description:      b.Description,
			TextDescription:  b.TextDescription,
			MotionConversion: b.MotionConversion,
			NumElements:      len(b.Elements),
		})
	}
	catalogJSON, err := json.MarshalIndent(summaries, "", "  ")
	if err != nil {
		return "", fmt.Errorf("ranking: gemini: encode catalog: %w", err)
	}

	var sb strings.Builder
	sb.WriteString("You are a mechanical design expert. Given a design task, rank the available building block mechanisms by how well they match the requirements.\n\n")
	sb.WriteString("TASK DESCRIPTION:\n")
	sb.WriteString(description)
	sb.WriteString("\n\nREQUIRED ELEMENTAL FUNCTIONS:\n")
	for _, ef := range efs {
		fmt.Fprintf(&sb, "- %s: %s - %s\n", ef.ID, ef.Type, ef.Description)
	}
	sb.WriteString("\nAVAILABLE MECHANISMS:\n")
	sb.Write(catalogJSON)
	sb.WriteString("\n\nConsider motion conversion type, complexity, and functional fit. ")
	sb.WriteString("Return ONLY a JSON array, no text before or after, in this exact format:\n")
	sb.WriteString(`[{"name": "mechanism_name", "score": 0.95, "reasoning": "brief explanation"}]`)
	return sb.String(), nil
}

// parseRankings unwraps an optional markdown code fence and decodes the
// JSON array the model was asked for.
func parseRankings(text string) ([]RankedMechanism, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	var out []RankedMechanism
	if err := json.Unmarshal([]byte(text), &out); err != nil {
		return nil, fmt.Errorf("ranking: gemini: response is not a JSON ranking: %w", err)
	}
	return out, nil
}

// mergeRankings maps model scores onto the full catalog, assigning the
// default score to anything the model skipped, and clamping scores into
// [0, 1].
func mergeRankings(rankings []RankedMechanism, blocks []catalog.Block) []RankedMechanism {
	byName := make(map[string]RankedMechanism, len(rankings))
	for _, r := range rankings {
		byName[r.Name] = r
	}
	out := make([]RankedMechanism, 0, len(blocks))
	for _, b := range blocks {
		r, ok := byName[b.Name]
		if !ok {
			r = RankedMechanism{Name: b.Name, Score: defaultScore}
		}
		if r.Score < 0 {
			r.Score = 0
		} else if r.Score > 1 {
			r.Score = 1
		}
		out = append(out, r)
	}
	sortRanked(out)
	return out
}
