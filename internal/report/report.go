// Package report turns prior exam scores into a prose performance report
// written by the completion service.
package report

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/abhisek/quizforge/internal/llm"
	"github.com/abhisek/quizforge/internal/logger"
	"github.com/abhisek/quizforge/internal/mcq"
)

const thinkEnd = "</think>"

// Config controls report generation.
type Config struct {
	MaxTokens   int
	Temperature float64
}

// DefaultConfig returns the standard report settings.
func DefaultConfig() Config {
	return Config{MaxTokens: 4096, Temperature: 0.7}
}

// Report is a generated performance report.
type Report struct {
	Scores []mcq.Score `json:"scores"`
	Text   string      `json:"report"`
	Model  string      `json:"model"`
}

// Service generates reports.
type Service struct {
	provider llm.Provider
	cfg      Config
	log      *logger.Logger
}

// NewService creates a report service. A nil log discards output.
func NewService(provider llm.Provider, cfg Config, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{provider: provider, cfg: cfg, log: log}
}

// Generate asks the completion service for a report on scores.
func (s *Service) Generate(ctx context.Context, scores []mcq.Score) (*Report, error) {
	if len(scores) == 0 {
		return nil, errors.New("no scores to report on")
	}
	if _, err := mcq.WeightsFromScores(scores); err != nil {
		return nil, err
	}

	ctx = llm.WithPurpose(ctx, llm.PurposeReport)
	text, err := llm.Complete(ctx, s.provider, BuildPrompt(scores), s.cfg.MaxTokens, s.cfg.Temperature)
	if err != nil {
		return nil, fmt.Errorf("generate report: %w", err)
	}

	body := StripThinking(text)
	if body == "" {
		return nil, &llm.ErrInvalidResponse{Err: errors.New("empty report")}
	}
	s.log.Debug("report generated", "subjects", len(scores), "chars", len(body))
	return &Report{Scores: scores, Text: body, Model: s.provider.ModelID()}, nil
}

// StripThinking drops a reasoning preamble that ends in </think>, keeping
// the trimmed text after the first marker. Text without the marker is only
// trimmed.
func StripThinking(text string) string {
	if _, after, ok := strings.Cut(text, thinkEnd); ok {
		text = after
	}
	return strings.TrimSpace(text)
}
