package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hanbit-dev/pagecraft/internal/core"
)

// maxVisionImages caps how many photos we attach to one vision call.
const maxVisionImages = 4

const maxImageBytes = 10 << 20

// StoryService produces the vision-grounded copy for a detail page: the product
// origin story and per-image selling-point captions. Neither is cached; both are
// regenerated on every call as in the builder UI.
type StoryService struct {
	llm        core.LLMProvider
	httpClient *http.Client
}

func NewStoryService(llm core.LLMProvider) *StoryService {
	return &StoryService{
		llm:        llm,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// GenerateStory writes a 300-500 character product origin story from the
// merchant's notes and up to four product photos.
func (s *StoryService) GenerateStory(ctx context.Context, prompt string, imageURLs []string) (string, error) {
	images, err := s.fetchImages(ctx, imageURLs)
	if err != nil {
		return "", contentErr(ErrGenerationUpstream, "fetch story images", err)
	}

	fullPrompt := fmt.Sprintf(`Write a product origin story for an e-commerce detail page.

Merchant notes:
%s

Number of product photos attached: %d
(If photos are attached, fold what they show - texture, finish, styling - into the story.)

Guidelines:
- 300 to 500 characters, warm and sincere in tone
- Start from the problem the maker set out to solve
- Let trial and error, customer feedback or craft decisions show through
- Output only the story body, with no heading or preamble`, prompt, len(images))

	story, err := s.llm.GenerateWithImages(ctx, fullPrompt, images)
	if err != nil {
		return "", contentErr(ErrGenerationUpstream, "story generation failed", err)
	}
	story = strings.TrimSpace(story)
	if story == "" {
		return "", contentErr(ErrGenerationMalformed, "no story generated", nil)
	}
	return story, nil
}

var descLineRe = regexp.MustCompile(`(?i)^description\s*\d+\s*:`)

// DescribeImages captions each detail-cut photo with a one-line selling point.
// The result always has the same length as the input, padded with empty strings
// where the model came up short.
func (s *StoryService) DescribeImages(ctx context.Context, imageURLs []string, modelImageURL string) ([]string, error) {
	if len(imageURLs) == 0 {
		return nil, contentErr(ErrMissingRequiredFields, "no image urls given", nil)
	}
	if len(imageURLs) > maxVisionImages {
		imageURLs = imageURLs[:maxVisionImages]
	}

	images, err := s.fetchImages(ctx, imageURLs)
	if err != nil {
		return nil, contentErr(ErrGenerationUpstream, "fetch detail images", err)
	}

	var b strings.Builder
	if modelImageURL != "" {
		fmt.Fprintf(&b, "Note: the product also ships with a worn model shot (%s); focus on the detail characteristics here.\n\n", modelImageURL)
	}
	b.WriteString(`These are detail-cut photos of a fashion product. For each image state:
1) the angle or focus of the cut (front/side/back/detail point)
2) the product trait it shows (fabric, stitching, silhouette, usability)
3) one persuasive selling point, at most a short sentence

Tone: concise, clear, trustworthy. Output strictly in this format, one line per image:

Description 1: ...
Description 2: ...
Description 3: ...
Description 4: ...`)

	out, err := s.llm.GenerateWithImages(ctx, b.String(), images)
	if err != nil {
		return nil, contentErr(ErrGenerationUpstream, "image description generation failed", err)
	}

	var descs []string
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if !descLineRe.MatchString(line) {
			continue
		}
		if idx := strings.Index(line, ":"); idx >= 0 {
			descs = append(descs, strings.TrimSpace(line[idx+1:]))
		}
	}

	// Pad or trim to match the number of input images.
	normalized := make([]string, len(imageURLs))
	for i := range normalized {
		if i < len(descs) {
			normalized[i] = descs[i]
		}
	}
	return normalized, nil
}

// fetchImages downloads up to maxVisionImages URLs in parallel and returns them
// as inline vision inputs, preserving input order.
func (s *StoryService) fetchImages(ctx context.Context, urls []string) ([]core.ImageInput, error) {
	if len(urls) > maxVisionImages {
		urls = urls[:maxVisionImages]
	}

	images := make([]core.ImageInput, len(urls))
	g, gctx := errgroup.WithContext(ctx)
	for i, url := range urls {
		g.Go(func() error {
			img, err := s.fetchImage(gctx, url)
			if err != nil {
				return fmt.Errorf("fetch %s: %w", url, err)
			}
			images[i] = img
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return images, nil
}

func (s *StoryService) fetchImage(ctx context.Context, url string) (core.ImageInput, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return core.ImageInput{}, err
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return core.ImageInput{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return core.ImageInput{}, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
	if err != nil {
		return core.ImageInput{}, err
	}

	mimeType := resp.Header.Get("Content-Type")
	if mimeType == "" || !strings.HasPrefix(mimeType, "image/") {
		mimeType = "image/jpeg"
	}
	return core.ImageInput{MIMEType: mimeType, Data: data}, nil
}
