package genai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	openai "github.com/sashabaranov/go-openai"

	"learning-path-service/internal/models"
)

// OpenAIGenerator implements Generator against an OpenAI-compatible
// chat-completion API. BaseURL makes it work with self-hosted gateways too.
type OpenAIGenerator struct {
	client *openai.Client
	model  string
}

type OpenAIConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

func NewOpenAIGenerator(cfg OpenAIConfig) (*OpenAIGenerator, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai API key is required")
	}
	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	}
	model := cfg.Model
	if model == "" {
		model = openai.GPT4oMini
	}
	return &OpenAIGenerator{
		client: openai.NewClientWithConfig(config),
		model:  model,
	}, nil
}

type generatedQuestion struct {
	Text          string `json:"text"`
	Topic         string `json:"topic"`
	CorrectAnswer string `json:"correct_answer"`
}

type generatedPayload struct {
	Questions []generatedQuestion `json:"questions"`
}

func (g *OpenAIGenerator) GenerateQuestions(ctx context.Context, topics []string, difficulty models.Difficulty, count int) ([]models.Question, error) {
	prompt := fmt.Sprintf(
		"Write %d short-answer study questions at %s difficulty covering these topics: %s. "+
			"Each question must have a single unambiguous short answer. "+
			`Respond with JSON: {"questions":[{"text":"...","topic":"...","correct_answer":"..."}]}`,
		count, difficulty, strings.Join(topics, ", "),
	)

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: "You are a tutor generating practice questions. Respond with JSON only."},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%w: empty completion", ErrUnavailable)
	}

	var payload generatedPayload
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &payload); err != nil {
		return nil, fmt.Errorf("%w: decode questions: %v", ErrUnavailable, err)
	}

	questions := make([]models.Question, 0, len(payload.Questions))
	for _, gq := range payload.Questions {
		if gq.Text == "" || gq.CorrectAnswer == "" {
			continue
		}
		q := models.Question{
			ID:            uuid.NewString(),
			Text:          gq.Text,
			Topic:         gq.Topic,
			Difficulty:    difficulty,
			CorrectAnswer: gq.CorrectAnswer,
			CreatedAt:     time.Now().UTC(),
		}
		q.EnsurePointsValue()
		questions = append(questions, q)
	}
	if len(questions) == 0 {
		return nil, fmt.Errorf("%w: no usable questions in completion", ErrUnavailable)
	}
	return questions, nil
}

func (g *OpenAIGenerator) GradeAnswer(ctx context.Context, question models.Question, studentAnswer string) (Grade, error) {
	prompt := fmt.Sprintf(
		"Question: %s\nExpected answer: %s\nStudent answer: %s\n"+
			"Judge whether the student's answer is correct, allowing phrasing differences. "+
			`Respond with JSON: {"is_correct":true|false,"feedback":"one short sentence"}`,
		question.Text, question.CorrectAnswer, studentAnswer,
	)

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: "You grade short answers. Respond with JSON only."},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return Grade{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if len(resp.Choices) == 0 {
		return Grade{}, fmt.Errorf("%w: empty completion", ErrUnavailable)
	}

	var grade Grade
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &grade); err != nil {
		return Grade{}, fmt.Errorf("%w: decode grade: %v", ErrUnavailable, err)
	}
	return grade, nil
}
