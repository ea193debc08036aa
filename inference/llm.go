package inference

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/smallnest/formgraph/form"
	"github.com/tmc/langchaingo/llms"
)

const extractionSystemPrompt = `You are an expert at extracting structured information from natural language.
Your job is to:
1. Parse user messages for relevant form data
2. Map extracted information to appropriate form fields
3. Handle context and implied information
4. Extract entities like names, numbers, categories, etc.

Be precise and only extract information you're confident about.
Reply with a single JSON object that maps data_id to the extracted value.
For fields with options, use one of the options verbatim. Omit fields you cannot fill.`

const questionSystemPrompt = `You are a helpful assistant that generates clear, specific questions
to gather missing information for form completion. Your questions should be
clear, specific to the missing information, polite and professional.
Reply with the question only.`

var jsonObjectPattern = regexp.MustCompile(`(?s)\{.*\}`)

// LLM implements Inferer and Questioner on a langchaingo model.
type LLM struct {
	model                 llms.Model
	extractionTemperature float64
	questionTemperature   float64
}

var (
	_ Inferer    = (*LLM)(nil)
	_ Questioner = (*LLM)(nil)
)

// LLMOption configures an LLM.
type LLMOption func(*LLM)

// WithExtractionTemperature sets the sampling temperature for extraction.
func WithExtractionTemperature(t float64) LLMOption {
	return func(l *LLM) { l.extractionTemperature = t }
}

// WithQuestionTemperature sets the sampling temperature for question wording.
func WithQuestionTemperature(t float64) LLMOption {
	return func(l *LLM) { l.questionTemperature = t }
}

// NewLLM creates an LLM backed inferer.
func NewLLM(model llms.Model, opts ...LLMOption) *LLM {
	l := &LLM{
		model:                 model,
		extractionTemperature: 0.2,
		questionTemperature:   0.3,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

type fieldPrompt struct {
	DataID   string   `json:"data_id"`
	Label    string   `json:"label"`
	Type     string   `json:"type"`
	Required bool     `json:"required,omitempty"`
	Options  []string `json:"options,omitempty"`
}

// Infer implements Inferer.
func (l *LLM) Infer(ctx context.Context, text string, fields []form.FormField) (map[string]string, error) {
	described := make([]fieldPrompt, 0, len(fields))
	for _, f := range fields {
		described = append(described, fieldPrompt{
			DataID:   f.DataID,
			Label:    f.DisplayLabel(),
			Type:     string(f.Type),
			Required: f.IsRequired(),
			Options:  f.Options,
		})
	}
	fieldsJSON, err := json.Marshal(described)
	if err != nil {
		return nil, fmt.Errorf("marshal fields: %w", err)
	}

	messages := []llms.MessageContent{
		{
			Role:  llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{llms.TextPart(extractionSystemPrompt)},
		},
		{
			Role: llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{llms.TextPart(fmt.Sprintf(
				"Extract form data from this message: %s\nFor these form fields: %s", text, fieldsJSON))},
		},
	}

	content, err := l.generate(ctx, messages, l.extractionTemperature)
	if err != nil {
		return nil, err
	}
	return ParseExtraction(content, fields)
}

// GenerateQuestion implements Questioner.
func (l *LLM) GenerateQuestion(ctx context.Context, field form.FormField, reason form.ValidationError) (string, error) {
	prompt := fmt.Sprintf("Generate one question for the field %q (type %s).", field.DisplayLabel(), field.Type)
	if reason.Type == form.ErrTypeRequired {
		prompt += " The field is required and has no value."
	} else {
		prompt += fmt.Sprintf(" The current value %q is invalid: %s.", field.Value, reason.Message)
	}
	if len(field.Options) > 0 {
		prompt += " Valid options: " + strings.Join(field.Options, ", ") + "."
	}

	messages := []llms.MessageContent{
		{
			Role:  llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{llms.TextPart(questionSystemPrompt)},
		},
		{
			Role:  llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{llms.TextPart(prompt)},
		},
	}

	content, err := l.generate(ctx, messages, l.questionTemperature)
	if err != nil {
		return "", err
	}
	q := strings.Trim(strings.TrimSpace(content), `"`)
	if q == "" {
		return "", ErrEmptyOutput
	}
	return q, nil
}

func (l *LLM) generate(ctx context.Context, messages []llms.MessageContent, temperature float64) (string, error) {
	resp, err := l.model.GenerateContent(ctx, messages, llms.WithTemperature(temperature))
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	if resp == nil || len(resp.Choices) == 0 {
		return "", ErrEmptyOutput
	}
	return resp.Choices[0].Content, nil
}

// ParseExtraction pulls the first JSON object out of a model reply and keeps
// the non-empty values whose keys are known data ids.
func ParseExtraction(content string, fields []form.FormField) (map[string]string, error) {
	raw := jsonObjectPattern.FindString(content)
	if raw == "" {
		return nil, fmt.Errorf("%w: no JSON object in reply", ErrMalformedOutput)
	}

	var decoded map[string]any
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedOutput, err)
	}

	known := form.Index(fields)
	out := make(map[string]string, len(decoded))
	for id, v := range decoded {
		if _, ok := known[id]; !ok {
			continue
		}
		if s := stringify(v); s != "" {
			out[id] = s
		}
	}
	return out, nil
}

func stringify(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		if x {
			return "Yes"
		}
		return "No"
	case []any:
		parts := make([]string, 0, len(x))
		for _, item := range x {
			if s := stringify(item); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ",")
	default:
		return ""
	}
}
