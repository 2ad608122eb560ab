// Copyright 2026 Google LLC
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

// Package chatbot defines the system-under-test port: the customer
// support chatbot whose responses get evaluated. The evaluation harness
// treats the chatbot as an opaque collaborator; any implementation of
// Chatbot can be placed under evaluation.
package chatbot

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/genai"

	"github.com/evalgate/evalgate/telemetry"
)

// Chatbot produces a support response for one customer message.
type Chatbot interface {
	// Respond returns the chatbot's reply to input. history carries prior
	// conversation turns, oldest first, and may be empty.
	Respond(ctx context.Context, input string, history []string) (string, error)
}

// The Func adapter allows plain functions to serve as chatbots, mainly in
// tests.
type Func func(ctx context.Context, input string, history []string) (string, error)

// Respond implements Chatbot.
func (f Func) Respond(ctx context.Context, input string, history []string) (string, error) {
	return f(ctx, input, history)
}

// DefaultSystemPrompt is used when Config.SystemPrompt is empty.
const DefaultSystemPrompt = "You are a customer support assistant. Be accurate, empathetic, " +
	"and concise. Escalate to a human agent when you cannot resolve the issue."

// Config configures a GenAIChatbot.
type Config struct {
	// Client is the genai client used to reach the chatbot model.
	Client *genai.Client

	// Model is the chatbot model name.
	Model string

	// SystemPrompt overrides DefaultSystemPrompt when non-empty.
	SystemPrompt string

	// Timeout bounds a single chatbot call. Zero means 30s.
	Timeout time.Duration
}

// GenAIChatbot is a genai-backed support chatbot.
type GenAIChatbot struct {
	client  *genai.Client
	model   string
	timeout time.Duration
	config  *genai.GenerateContentConfig
}

var _ Chatbot = (*GenAIChatbot)(nil)

// New creates a chatbot backed by the given genai client.
func New(cfg Config) (*GenAIChatbot, error) {
	if cfg.Client == nil {
		return nil, fmt.Errorf("chatbot: nil genai client")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("chatbot: empty model name")
	}
	if cfg.SystemPrompt == "" {
		cfg.SystemPrompt = DefaultSystemPrompt
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &GenAIChatbot{
		client:  cfg.Client,
		model:   cfg.Model,
		timeout: cfg.Timeout,
		config: &genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(cfg.SystemPrompt, genai.RoleUser),
		},
	}, nil
}

// Respond implements Chatbot.
func (c *GenAIChatbot) Respond(ctx context.Context, input string, history []string) (text string, err error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	ctx, end := telemetry.StartChatbotSpan(ctx, c.model)
	defer func() { end(err) }()

	// Prior turns alternate user/model, oldest first.
	contents := make([]*genai.Content, 0, len(history)+1)
	role := genai.Role(genai.RoleUser)
	for _, turn := range history {
		contents = append(contents, genai.NewContentFromText(turn, role))
		if role == genai.RoleUser {
			role = genai.RoleModel
		} else {
			role = genai.RoleUser
		}
	}
	contents = append(contents, genai.NewContentFromText(input, genai.RoleUser))

	resp, err := c.client.Models.GenerateContent(ctx, c.model, contents, c.config)
	if err != nil {
		return "", fmt.Errorf("chatbot: generate failed: %w", err)
	}
	text = resp.Text()
	if text == "" {
		return "", fmt.Errorf("chatbot: empty response")
	}
	return text, nil
}
