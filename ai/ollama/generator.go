// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package ollama

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/poiesic/ragserve/ai"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
)

// Generator implements ai.Generator using an Ollama chat model.
type Generator struct {
	llm    *ollama.LLM
	config *ai.Config
	logger *slog.Logger
}

var _ ai.Generator = (*Generator)(nil)

// newGenerator is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newGenerator(config *ai.Config) (*Generator, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	llm, err := ollama.New(
		ollama.WithServerURL(config.ServerURL),
		ollama.WithModel(config.Model),
	)
	if err != nil {
		return nil, err
	}

	return &Generator{
		llm:    llm,
		config: config,
		logger: slog.Default().With("component", "ollama-generator"),
	}, nil
}

// NewGenerator creates a new generator using the provided configuration.
//
// Returns ai.Generator interface to enforce abstraction.
func NewGenerator(config *ai.Config) (ai.Generator, error) {
	return newGenerator(config)
}

// Generate produces the complete answer for a question, optionally grounded
// in contextText.
func (g *Generator) Generate(ctx context.Context, question, contextText string, opts ai.GenerateOptions) (string, error) {
	prompt := buildPrompt(question, contextText)
	g.logger.Debug("generating response", "withContext", contextText != "")

	answer, err := llms.GenerateFromSinglePrompt(ctx, g.llm, prompt, g.callOptions(opts)...)
	if err != nil {
		g.logger.Error("generation failed", "err", err)
		return "", fmt.Errorf("generate response: %w", err)
	}

	return answer, nil
}

// GenerateStream produces the answer incrementally, pushing each fragment
// to sink in emission order. The concatenated fragments are returned on
// clean completion; any backend or sink error terminates the stream and is
// returned instead.
func (g *Generator) GenerateStream(ctx context.Context, question, contextText string, opts ai.GenerateOptions, sink ai.StreamSink) (string, error) {
	prompt := buildPrompt(question, contextText)
	g.logger.Debug("generating streaming response", "withContext", contextText != "")

	var full strings.Builder
	callOpts := append(g.callOptions(opts), llms.WithStreamingFunc(func(ctx context.Context, chunk []byte) error {
		if len(chunk) == 0 {
			return nil
		}
		full.Write(chunk)
		return sink(ctx, string(chunk))
	}))

	if _, err := llms.GenerateFromSinglePrompt(ctx, g.llm, prompt, callOpts...); err != nil {
		g.logger.Error("streaming generation failed", "err", err)
		return "", fmt.Errorf("generate streaming response: %w", err)
	}

	return full.String(), nil
}

// Available probes the model with a fixed benign prompt.
func (g *Generator) Available(ctx context.Context) bool {
	answer, err := g.Generate(ctx, availabilityProbe, "", ai.GenerateOptions{})
	if err != nil {
		g.logger.Warn("model unavailable", "model", g.config.Model, "err", err)
		return false
	}
	return strings.TrimSpace(answer) != ""
}

// ModelInfo describes the configured generation model.
func (g *Generator) ModelInfo() ai.ModelInfo {
	return ai.ModelInfo{
		Model:     g.config.Model,
		ServerURL: g.config.ServerURL,
	}
}

// callOptions translates per-call options into langchaingo call options.
// The zero temperature falls back to the configured service default. The
// shared LLM client is never mutated, so concurrent calls cannot observe
// each other's parameters.
func (g *Generator) callOptions(opts ai.GenerateOptions) []llms.CallOption {
	temperature := opts.Temperature
	if temperature == 0 {
		temperature = g.config.Temperature
	}

	callOpts := []llms.CallOption{llms.WithTemperature(temperature)}
	if opts.MaxTokens > 0 {
		callOpts = append(callOpts, llms.WithMaxTokens(opts.MaxTokens))
	}
	return callOpts
}
