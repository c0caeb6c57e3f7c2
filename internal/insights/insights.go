// Package insights produces a short written commentary on a built report
// using OpenAI. It is optional: without OPENAI_API_KEY the dashboard shows
// only its fixed conclusions.
package insights

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"go.uber.org/zap"

	"github.com/lox/bikeshare/internal/analysis"
)

const DefaultModel = "gpt-4o-mini"

const systemPrompt = "You are a data analyst writing for a public dashboard about a city bike-sharing scheme. " +
	"Write two or three plain sentences. Use only the figures provided. No headings, no lists, no markdown."

// Commenter turns a prompt into commentary text.
type Commenter interface {
	Comment(ctx context.Context, prompt string) (string, error)
	Model() string
}

// Generator calls the OpenAI chat completions API.
type Generator struct {
	client openai.Client
	model  string
}

// NewGenerator reads OPENAI_API_KEY from the environment.
func NewGenerator(model string) (*Generator, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return nil, errors.New("OPENAI_API_KEY environment variable not set")
	}
	if model == "" {
		model = DefaultModel
	}
	return &Generator{
		client: openai.NewClient(option.WithAPIKey(apiKey)),
		model:  model,
	}, nil
}

func (g *Generator) Model() string {
	return g.model
}

func (g *Generator) Comment(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(g.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(prompt),
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("no completion choices returned")
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", errors.New("empty completion returned")
	}
	return text, nil
}

// BuildPrompt summarises the report's figures for the model.
func BuildPrompt(r *analysis.Report) string {
	var b strings.Builder
	b.WriteString("Average daily rentals by temperature range:\n")
	for _, t := range r.Temperature {
		if t.Mean == nil {
			fmt.Fprintf(&b, "- %s: no days\n", t.Label)
			continue
		}
		fmt.Fprintf(&b, "- %s: %.0f (%d days)\n", t.Label, *t.Mean, t.Rows)
	}

	fmt.Fprintf(&b, "Total rentals by hour of day (busy means above %.0f):\n", r.Settings.BusyThreshold)
	for _, h := range r.Hourly {
		fmt.Fprintf(&b, "- %02d:00: %.0f (%s)\n", h.Hour, h.Count, h.Cluster)
	}

	b.WriteString("Hourly rental count distribution by cluster:\n")
	for _, d := range r.Distribution {
		fmt.Fprintf(&b, "- %s: median %.0f, interquartile range %.0f-%.0f, %d outliers of %d hours\n",
			d.Cluster, d.Median, d.Q1, d.Q3, len(d.Outliers), d.Count)
	}

	if i, ok := columnIndex(r.Correlation.Columns, "cnt"); ok {
		b.WriteString("Correlation of daily rentals (cnt) with:\n")
		for j, col := range r.Correlation.Columns {
			if j == i {
				continue
			}
			fmt.Fprintf(&b, "- %s: %.2f\n", col, r.Correlation.Values[i][j])
		}
	}
	return b.String()
}

func columnIndex(cols []string, name string) (int, bool) {
	for i, c := range cols {
		if c == name {
			return i, true
		}
	}
	return 0, false
}

// Cache stores commentary by report fingerprint and model.
type Cache interface {
	GetInsight(fingerprint, model string) (string, bool, error)
	SaveInsight(fingerprint, model, text string) error
}

// Service returns cached commentary where available and generates it
// otherwise. A nil cache disables caching.
type Service struct {
	commenter Commenter
	cache     Cache
	logger    *zap.Logger
}

func NewService(commenter Commenter, cache Cache, logger *zap.Logger) *Service {
	return &Service{commenter: commenter, cache: cache, logger: logger}
}

func (s *Service) Insight(ctx context.Context, r *analysis.Report) (string, error) {
	if s.cache != nil {
		text, ok, err := s.cache.GetInsight(r.Fingerprint, s.commenter.Model())
		if err != nil {
			s.logger.Warn("read cached insight", zap.Error(err))
		} else if ok {
			return text, nil
		}
	}

	text, err := s.commenter.Comment(ctx, BuildPrompt(r))
	if err != nil {
		return "", err
	}
	s.logger.Info("insight generated", zap.String("model", s.commenter.Model()), zap.Int("chars", len(text)))

	if s.cache != nil {
		if err := s.cache.SaveInsight(r.Fingerprint, s.commenter.Model(), text); err != nil {
			s.logger.Warn("cache insight", zap.Error(err))
		}
	}
	return text, nil
}
