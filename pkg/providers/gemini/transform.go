package gemini

import (
	"fmt"
	"time"

	"oecs-hq/lusaka/pkg/providers"
)

// Gemini API request/response types

// generateContentRequest is the generateContent wire format.
type generateContentRequest struct {
	SystemInstruction *content         `json:"systemInstruction,omitempty"`
	Contents          []content        `json:"contents"`
	GenerationConfig  generationConfig `json:"generationConfig"`
	SafetySettings    []safetySetting  `json:"safetySettings,omitempty"`
}

// content is a turn in Gemini format. Roles are "user" and "model".
type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type safetySetting struct {
	Category  string `json:"category"`
	Threshold string `json:"threshold"`
}

// generateContentResponse is the generateContent response wire format.
type generateContentResponse struct {
	Candidates    []candidate    `json:"candidates"`
	UsageMetadata *usageMetadata `json:"usageMetadata,omitempty"`
	ModelVersion  string         `json:"modelVersion,omitempty"`
}

type candidate struct {
	Content      content `json:"content"`
	FinishReason string  `json:"finishReason"`
}

type usageMetadata struct {
	PromptTokenCount     int `json:"promptTokenCount"`
	CandidatesTokenCount int `json:"candidatesTokenCount"`
	TotalTokenCount      int `json:"totalTokenCount"`
}

// harmCategories are the categories covered when safety filtering is
// disabled. Each is sent with threshold BLOCK_NONE.
var harmCategories = []string{
	"HARM_CATEGORY_HARASSMENT",
	"HARM_CATEGORY_HATE_SPEECH",
	"HARM_CATEGORY_SEXUALLY_EXPLICIT",
	"HARM_CATEGORY_DANGEROUS_CONTENT",
}

// thresholdBlockNone disables vendor-side filtering for a category.
const thresholdBlockNone = "BLOCK_NONE"

// Transformation functions

// transformRequest transforms a provider-agnostic request to Gemini format.
func transformRequest(req *providers.GenerateRequest) *generateContentRequest {
	geminiReq := &generateContentRequest{
		Contents: make([]content, 0, len(req.Turns)),
		GenerationConfig: generationConfig{
			Temperature:     req.Temperature,
			MaxOutputTokens: req.MaxOutputTokens,
		},
	}

	if geminiReq.GenerationConfig.Temperature == 0 {
		geminiReq.GenerationConfig.Temperature = providers.DefaultTemperature
	}
	if geminiReq.GenerationConfig.MaxOutputTokens == 0 {
		geminiReq.GenerationConfig.MaxOutputTokens = providers.DefaultMaxOutputTokens
	}

	// Gemini takes the system instruction as a separate field
	if req.SystemPrompt != "" {
		geminiReq.SystemInstruction = &content{
			Parts: []part{{Text: req.SystemPrompt}},
		}
	}

	for _, turn := range req.Turns {
		role := "user"
		if turn.Role == providers.RoleAssistant {
			role = "model"
		}
		geminiReq.Contents = append(geminiReq.Contents, content{
			Role:  role,
			Parts: []part{{Text: turn.Content}},
		})
	}

	if req.DisableSafetyFilter {
		geminiReq.SafetySettings = make([]safetySetting, 0, len(harmCategories))
		for _, category := range harmCategories {
			geminiReq.SafetySettings = append(geminiReq.SafetySettings, safetySetting{
				Category:  category,
				Threshold: thresholdBlockNone,
			})
		}
	}

	return geminiReq
}

// transformResponse normalizes a Gemini response.
func transformResponse(model string, resp *generateContentResponse) (*providers.GenerateResponse, error) {
	if len(resp.Candidates) == 0 {
		return nil, fmt.Errorf("response contains no candidates")
	}

	cand := resp.Candidates[0]

	var text string
	for _, p := range cand.Content.Parts {
		text += p.Text
	}
	if text == "" {
		return nil, fmt.Errorf("candidate contains no text parts (finish reason %q)", cand.FinishReason)
	}

	out := &providers.GenerateResponse{
		Model:        model,
		Content:      text,
		FinishReason: mapFinishReason(cand.FinishReason),
		Created:      time.Now().Unix(),
	}
	if resp.ModelVersion != "" {
		out.Model = resp.ModelVersion
	}

	if resp.UsageMetadata != nil {
		out.Usage = providers.TokenUsage{
			PromptTokens:     resp.UsageMetadata.PromptTokenCount,
			CompletionTokens: resp.UsageMetadata.CandidatesTokenCount,
			TotalTokens:      resp.UsageMetadata.TotalTokenCount,
		}
	}

	return out, nil
}

// mapFinishReason maps Gemini finish reasons to normalized constants.
func mapFinishReason(reason string) string {
	switch reason {
	case "STOP":
		return providers.FinishReasonStop
	case "MAX_TOKENS":
		return providers.FinishReasonLength
	default:
		return providers.FinishReasonOther
	}
}
