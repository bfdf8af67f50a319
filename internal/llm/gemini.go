package llm

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"VNIndexAgent/internal/model"
)

const defaultSourceTitle = "Nguồn tin"

// GeminiClient calls the Gemini API with optional Google Search grounding.
type GeminiClient struct {
	client *genai.Client
	model  string
}

// NewGeminiClient creates a Gemini client.
func NewGeminiClient(ctx context.Context, cfg Config) (*GeminiClient, error) {
	clientConfig := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		clientConfig.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}
	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &GeminiClient{client: client, model: cfg.Model}, nil
}

func (g *GeminiClient) Generate(ctx context.Context, prompt, systemInstruction string, opts Options) (Result, error) {
	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(opts.Temperature),
	}
	if systemInstruction != "" {
		config.SystemInstruction = genai.NewContentFromText(systemInstruction, genai.RoleUser)
	}
	if opts.Search {
		config.Tools = []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}}
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), config)
	if err != nil {
		return Result{}, fmt.Errorf("gemini generate: %w", err)
	}
	if len(resp.Candidates) == 0 {
		return Result{}, ErrNoCandidates
	}
	return Result{Text: resp.Text(), Sources: groundingSources(resp.Candidates[0])}, nil
}

// groundingSources extracts web citations from a candidate's grounding metadata.
func groundingSources(c *genai.Candidate) []model.Source {
	if c == nil || c.GroundingMetadata == nil {
		return nil
	}
	var sources []model.Source
	for _, chunk := range c.GroundingMetadata.GroundingChunks {
		if chunk == nil || chunk.Web == nil {
			continue
		}
		title := chunk.Web.Title
		if title == "" {
			title = defaultSourceTitle
		}
		sources = append(sources, model.Source{Title: title, URI: chunk.Web.URI})
	}
	return sources
}
