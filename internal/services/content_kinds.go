package services

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hanbit-dev/pagecraft/internal/models"
)

// kindSpec is the per-kind strategy: how to prompt the generator and how to
// check the result before it is persisted.
type kindSpec struct {
	systemPrompt string
	userPrompt   func(req models.ContentRequest) string
	// validate checks the raw generator output and returns the payload to store.
	validate func(raw string) (string, error)
}

var contentKinds = map[models.ContentKind]kindSpec{
	models.KindReview: {
		systemPrompt: "You are a real customer who bought the product. Write 10 honest, specific user reviews for the product below. Each review has a star rating (1-5), an author name, the review body, key tags and a date.",
		userPrompt: func(req models.ContentRequest) string {
			return fmt.Sprintf(
				"Product name: %s\nProduct summary: %s\nProduct image: %s\n\nReturn ONLY a JSON array of objects with keys author, rating, content, tags, date. No markdown, no explanations.",
				req.Title, req.Description, imageHint(req.ImageURL))
		},
		validate: validateReviews,
	},
	models.KindQnA: {
		systemPrompt: "You write the QnA section of an e-commerce product detail page.",
		userPrompt: func(req models.ContentRequest) string {
			return fmt.Sprintf(
				"Write 10 questions customers are likely to ask about this product, each with a helpful answer, in markdown.\n\nProduct name: %s\nDescription: %s",
				req.Title, req.Description)
		},
		validate: validateText,
	},
	models.KindShippingPolicy: {
		systemPrompt: "You run the customer service desk of an online shop. Write the shipping, exchange and refund policy for the product below, including delivery time and fees, exchange conditions, refund rules and care instructions. Use markdown with subheadings.",
		userPrompt: func(req models.ContentRequest) string {
			return fmt.Sprintf(
				"Product name: %s\nSummary: %s\nProduct image: %s\n\nWrite the full policy in markdown.",
				req.Title, req.Description, imageHint(req.ImageURL))
		},
		validate: validateText,
	},
}

func imageHint(url string) string {
	if url == "" {
		return "none"
	}
	return "available for reference"
}

func validateText(raw string) (string, error) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return "", fmt.Errorf("empty generator output")
	}
	return text, nil
}

func validateReviews(raw string) (string, error) {
	jsonStr, err := extractJSONArray(raw)
	if err != nil {
		return "", err
	}

	var entries []models.ReviewEntry
	if err := json.Unmarshal([]byte(jsonStr), &entries); err != nil {
		return "", fmt.Errorf("parse review array: %w", err)
	}
	if len(entries) == 0 {
		return "", fmt.Errorf("review array is empty")
	}
	for i, e := range entries {
		if strings.TrimSpace(e.Author) == "" {
			return "", fmt.Errorf("review %d has no author", i)
		}
		if strings.TrimSpace(e.Content) == "" {
			return "", fmt.Errorf("review %d has no content", i)
		}
		if e.Rating < 1 || e.Rating > 5 {
			return "", fmt.Errorf("review %d rating %d out of range", i, e.Rating)
		}
	}

	// Store the re-marshalled form so the payload is always clean JSON.
	clean, err := json.Marshal(entries)
	if err != nil {
		return "", err
	}
	return string(clean), nil
}

// ParseReviews decodes a stored review payload for response shaping.
func ParseReviews(payload string) ([]models.ReviewEntry, error) {
	var entries []models.ReviewEntry
	if err := json.Unmarshal([]byte(payload), &entries); err != nil {
		return nil, fmt.Errorf("decode review payload: %w", err)
	}
	return entries, nil
}

// extractJSONArray finds the first complete JSON array in a string. Models keep
// wrapping their output in markdown fences no matter what the prompt says.
func extractJSONArray(s string) (string, error) {
	start := strings.Index(s, "[")
	end := strings.LastIndex(s, "]")
	if start == -1 || end == -1 || end <= start {
		return "", fmt.Errorf("no JSON array found in output")
	}
	return s[start : end+1], nil
}
