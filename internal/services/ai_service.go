package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/studyowl/studyowl-backend/internal/clients/openai"
	"github.com/studyowl/studyowl-backend/internal/logger"
)

type FlashcardItem struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

type QuizItem struct {
	Question      string `json:"question"`
	OptionA       string `json:"option_a"`
	OptionB       string `json:"option_b"`
	OptionC       string `json:"option_c"`
	OptionD       string `json:"option_d"`
	CorrectOption string `json:"correct_option"`
}

// AIService is the single gateway to the language model provider. It owns
// prompt construction, source-text truncation and response validation, so
// callers only ever see clean domain values.
type AIService interface {
	GenerateSummary(ctx context.Context, text string) (string, error)
	GenerateNotes(ctx context.Context, text string) (string, error)
	GenerateFlashcards(ctx context.Context, text string, count int) ([]FlashcardItem, error)
	GenerateQuiz(ctx context.Context, text string, count int) ([]QuizItem, error)
	CreateEmbedding(ctx context.Context, text string) ([]float32, error)
	CreateEmbeddingsBatch(ctx context.Context, texts []string) ([][]float32, error)
	ChatWithContext(ctx context.Context, question, contextText string, history []openai.ChatMessage) (string, error)
}

type aiService struct {
	client    openai.Client
	log       *logger.Logger
	textLimit int
}

func NewAIService(client openai.Client, baseLog *logger.Logger, generationTextLimit int) AIService {
	if generationTextLimit <= 0 {
		generationTextLimit = 50000
	}
	return &aiService{
		client:    client,
		log:       baseLog.With("service", "AIService"),
		textLimit: generationTextLimit,
	}
}

// truncate caps the source text fed into a prompt.
func (s *aiService) truncate(text string) string {
	runes := []rune(text)
	if len(runes) <= s.textLimit {
		return text
	}
	return string(runes[:s.textLimit])
}

func (s *aiService) GenerateSummary(ctx context.Context, text string) (string, error) {
	summary, err := s.client.ChatCompletion(ctx, openai.ChatCompletionOptions{
		UseMiniModel: true,
		Temperature:  0.7,
		MaxTokens:    1500,
		Messages: []openai.ChatMessage{
			{
				Role: "system",
				Content: "You are an expert at creating concise summaries of educational materials. " +
					"Create a summary in the SAME LANGUAGE as the source text. " +
					"The summary should capture the main ideas and key points.",
			},
			{
				Role:    "user",
				Content: fmt.Sprintf("Create a concise summary (3-5 paragraphs) of the following text:\n\n%s", s.truncate(text)),
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("generate summary: %w", err)
	}
	s.log.Info("Generated summary", "chars", len(summary))
	return summary, nil
}

func (s *aiService) GenerateNotes(ctx context.Context, text string) (string, error) {
	notes, err := s.client.ChatCompletion(ctx, openai.ChatCompletionOptions{
		UseMiniModel: true,
		Temperature:  0.7,
		MaxTokens:    2000,
		Messages: []openai.ChatMessage{
			{
				Role: "system",
				Content: "You are an expert at creating structured study notes. " +
					"Create notes in the SAME LANGUAGE as the source text. " +
					"Use markdown format with headings, bullet points, and numbered lists. " +
					"Organize information hierarchically and highlight key concepts.",
			},
			{
				Role:    "user",
				Content: fmt.Sprintf("Create detailed study notes from the following text:\n\n%s", s.truncate(text)),
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("generate notes: %w", err)
	}
	s.log.Info("Generated notes", "chars", len(notes))
	return notes, nil
}

func (s *aiService) GenerateFlashcards(ctx context.Context, text string, count int) ([]FlashcardItem, error) {
	content, err := s.client.ChatCompletion(ctx, openai.ChatCompletionOptions{
		Temperature: 0.7,
		MaxTokens:   2000,
		JSONMode:    true,
		Messages: []openai.ChatMessage{
			{
				Role: "system",
				Content: "You are an expert at creating educational flashcards. " +
					"Generate flashcards in JSON format with 'flashcards' array. " +
					"Each flashcard must have 'question' and 'answer' fields. " +
					fmt.Sprintf("Create exactly %d flashcards. ", count) +
					"The questions and answers MUST be in the SAME LANGUAGE as the source text. " +
					"Return only valid JSON, no additional text.",
			},
			{
				Role:    "user",
				Content: fmt.Sprintf("Create %d flashcards based on this text:\n\n%s", count, s.truncate(text)),
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("generate flashcards: %w", err)
	}

	var payload struct {
		Flashcards []FlashcardItem `json:"flashcards"`
	}
	if err := json.Unmarshal([]byte(content), &payload); err != nil {
		return nil, fmt.Errorf("parse flashcards response: %w", err)
	}

	validated := ValidateFlashcards(payload.Flashcards)
	if len(validated) == 0 {
		return nil, fmt.Errorf("no valid flashcards in model response")
	}
	s.log.Info("Generated flashcards", "count", len(validated))
	return validated, nil
}

func (s *aiService) GenerateQuiz(ctx context.Context, text string, count int) ([]QuizItem, error) {
	content, err := s.client.ChatCompletion(ctx, openai.ChatCompletionOptions{
		Temperature: 0.7,
		MaxTokens:   3000,
		JSONMode:    true,
		Messages: []openai.ChatMessage{
			{
				Role: "system",
				Content: "You are an expert at creating educational quiz questions. " +
					"Generate questions in JSON format with 'questions' array. " +
					"Each question must have: question (text), option_a, option_b, option_c, option_d (all text), " +
					"and correct_option (the FULL TEXT of the correct answer, copied exactly from one of the options). " +
					fmt.Sprintf("Create exactly %d questions. ", count) +
					"The questions and answers MUST be in the SAME LANGUAGE as the source text. " +
					"Return only valid JSON, no additional text.",
			},
			{
				Role:    "user",
				Content: fmt.Sprintf("Create %d multiple-choice quiz questions based on this text:\n\n%s", count, s.truncate(text)),
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("generate quiz: %w", err)
	}

	var payload struct {
		Questions []QuizItem `json:"questions"`
	}
	if err := json.Unmarshal([]byte(content), &payload); err != nil {
		return nil, fmt.Errorf("parse quiz response: %w", err)
	}

	validated := ValidateQuizItems(payload.Questions)
	if len(validated) == 0 {
		return nil, fmt.Errorf("no valid quiz questions in model response")
	}
	s.log.Info("Generated quiz questions", "count", len(validated))
	return validated, nil
}

// ValidateFlashcards drops cards missing a question or an answer.
func ValidateFlashcards(cards []FlashcardItem) []FlashcardItem {
	validated := make([]FlashcardItem, 0, len(cards))
	for _, card := range cards {
		if card.Question == "" || card.Answer == "" {
			continue
		}
		validated = append(validated, card)
	}
	return validated
}

// ValidateQuizItems drops incomplete questions. A correct_option given as
// a bare letter is coerced to the matching option text; anything that
// still does not match one of the four options is dropped.
func ValidateQuizItems(items []QuizItem) []QuizItem {
	validated := make([]QuizItem, 0, len(items))
	for _, q := range items {
		if q.Question == "" || q.OptionA == "" || q.OptionB == "" ||
			q.OptionC == "" || q.OptionD == "" || q.CorrectOption == "" {
			continue
		}
		switch q.CorrectOption {
		case "a":
			q.CorrectOption = q.OptionA
		case "b":
			q.CorrectOption = q.OptionB
		case "c":
			q.CorrectOption = q.OptionC
		case "d":
			q.CorrectOption = q.OptionD
		}
		if q.CorrectOption != q.OptionA && q.CorrectOption != q.OptionB &&
			q.CorrectOption != q.OptionC && q.CorrectOption != q.OptionD {
			continue
		}
		validated = append(validated, q)
	}
	return validated
}

func (s *aiService) CreateEmbedding(ctx context.Context, text string) ([]float32, error) {
	vectors, err := s.client.Embed(ctx, []string{text})
	if err != nil {
		return nil, fmt.Errorf("create embedding: %w", err)
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("expected 1 embedding, got %d", len(vectors))
	}
	return vectors[0], nil
}

func (s *aiService) CreateEmbeddingsBatch(ctx context.Context, texts []string) ([][]float32, error) {
	vectors, err := s.client.Embed(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("create embeddings batch: %w", err)
	}
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("expected %d embeddings, got %d", len(texts), len(vectors))
	}
	s.log.Info("Created embeddings batch", "count", len(vectors))
	return vectors, nil
}

func (s *aiService) ChatWithContext(ctx context.Context, question, contextText string, history []openai.ChatMessage) (string, error) {
	messages := make([]openai.ChatMessage, 0, len(history)+2)
	messages = append(messages, openai.ChatMessage{
		Role: "system",
		Content: "You are an intelligent tutor helping students understand educational materials. " +
			"Answer questions based ONLY on the provided context from the document. " +
			"If the context doesn't contain the answer, say so. " +
			"Respond in the SAME LANGUAGE as the question. " +
			"Be concise but helpful.",
	})
	messages = append(messages, history...)
	messages = append(messages, openai.ChatMessage{
		Role:    "user",
		Content: fmt.Sprintf("Context from document:\n%s\n\nQuestion: %s", contextText, question),
	})

	answer, err := s.client.ChatCompletion(ctx, openai.ChatCompletionOptions{
		Temperature: 0.7,
		MaxTokens:   1000,
		Messages:    messages,
	})
	if err != nil {
		return "", fmt.Errorf("chat with context: %w", err)
	}
	s.log.Info("Generated tutor answer", "chars", len(answer))
	return answer, nil
}
