package rag

import (
	"context"
	"fmt"

	"chatrag/internal/utils"

	"github.com/sashabaranov/go-openai"
)

// generationTemperature is fixed for both query modes.
const generationTemperature = 0.7

const userHistoryPrompt = `You are trying to personify a user from their chat history.
Use the following similar messages as context to answer the query.
Context:
%s`

const threadAttachmentPrompt = `You are analyzing a thread in a chat. The thread parent message contains a file.
Use the following context to answer the query about the thread parent and its file.
Context:
%s`

// CompletionClient is the narrow surface the generator needs from the OpenAI
// client.
type CompletionClient interface {
	CreateChatCompletion(ctx context.Context, messages []openai.ChatCompletionMessage, temperature float32) (*openai.ChatCompletionResponse, error)
}

// Generator turns an assembled context block and a user query into a
// generated answer. It holds no conversational state; persistence of turns
// is the caller's concern.
type Generator struct {
	client CompletionClient
}

// NewGenerator creates a new response generator
func NewGenerator(client CompletionClient) *Generator {
	return &Generator{client: client}
}

// Generate issues a single chat completion with the mode's system prompt and
// the context block interpolated. The query's detected language adds a
// reply-language instruction so non-English queries are answered in kind.
func (g *Generator) Generate(ctx context.Context, mode Mode, contextBlock, query string) (string, error) {
	template := userHistoryPrompt
	if mode == ModeThreadAttachment {
		template = threadAttachmentPrompt
	}

	systemPrompt := fmt.Sprintf(template, contextBlock)
	systemPrompt += "\n\n" + utils.GetLanguageInstruction(utils.DetectLanguage(query))

	messages := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
		{Role: openai.ChatMessageRoleUser, Content: query},
	}

	resp, err := g.client.CreateChatCompletion(ctx, messages, generationTemperature)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrGenerationUnavailable, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices returned", ErrGenerationUnavailable)
	}

	return resp.Choices[0].Message.Content, nil
}
