package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/hanbit-dev/pagecraft/internal/services"
)

// StoryHandler exposes the vision-grounded copy endpoints.
type StoryHandler struct {
	story *services.StoryService
}

func NewStoryHandler(story *services.StoryService) *StoryHandler {
	return &StoryHandler{story: story}
}

type storyRequest struct {
	Prompt    string   `json:"prompt"`
	ImageURLs []string `json:"imageUrls"`
}

func (h *StoryHandler) ProductStory(w http.ResponseWriter, r *http.Request) {
	var req storyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	story, err := h.story.GenerateStory(r.Context(), req.Prompt, req.ImageURLs)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"story": story})
}

// The builder screens send their image lists under different keys; accept all
// of them and take the first non-empty one.
type imageDescriptionsRequest struct {
	DetailImages      []string `json:"detailImages"`
	MultiFittedImages []string `json:"multiFittedImages"`
	Images            []string `json:"images"`
	ModelImageURL     string   `json:"modelImageUrl"`
}

func (r *imageDescriptionsRequest) urls() []string {
	for _, list := range [][]string{r.DetailImages, r.MultiFittedImages, r.Images} {
		urls := make([]string, 0, len(list))
		for _, u := range list {
			if u != "" {
				urls = append(urls, u)
			}
		}
		if len(urls) > 0 {
			return urls
		}
	}
	return nil
}

func (h *StoryHandler) ImageDescriptions(w http.ResponseWriter, r *http.Request) {
	var req imageDescriptionsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	descs, err := h.story.DescribeImages(r.Context(), req.urls(), req.ModelImageURL)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string][]string{"imgDescs": descs})
}
