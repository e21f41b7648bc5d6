package api

import (
	"context"

	"retailrag/search"
	"retailrag/types"

	"github.com/gofiber/fiber/v2"
)

type Retriever interface {
	Retrieve(ctx context.Context, query string, opts search.Options) ([]types.MatchedProduct, error)
}

type Synthesizer interface {
	Synthesize(ctx context.Context, matches []types.MatchedProduct, userQuery string) (string, error)
}

// RequestHandler serves both query endpoints: /search returns the ranked
// matches as-is, /chatbot pushes them through the answer synthesizer.
type RequestHandler struct {
	retriever   Retriever
	synthesizer Synthesizer
	defaults    search.Options
}

func NewRequestHandler(retriever Retriever, synthesizer Synthesizer, defaults search.Options) *RequestHandler {
	return &RequestHandler{
		retriever:   retriever,
		synthesizer: synthesizer,
		defaults:    defaults,
	}
}

func (h *RequestHandler) HandleSearch(c *fiber.Ctx) error {
	matches, _, err := h.retrieve(c)
	if err != nil {
		return err
	}
	return c.JSON(matches)
}

func (h *RequestHandler) HandleChatbot(c *fiber.Ctx) error {
	matches, query, err := h.retrieve(c)
	if err != nil {
		return err
	}
	answer, err := h.synthesizer.Synthesize(c.Context(), matches, query)
	if err != nil {
		return err
	}
	return c.JSON(types.ChatbotResponse{Answer: answer})
}

// retrieve returns the matches together with the validated query text so
// the chatbot path reuses exactly what the retriever saw.
func (h *RequestHandler) retrieve(c *fiber.Ctx) ([]types.MatchedProduct, string, error) {
	var params types.QueryParams
	if c.QueryParser(&params) != nil {
		return nil, "", ErrBadRequest()
	}
	if errors := types.Validate(&params); len(errors) > 0 {
		return nil, "", types.NewValidationError(errors)
	}

	opts := h.defaults
	if params.MinPrice != nil {
		opts.MinPrice = *params.MinPrice
	}
	if params.MaxPrice != nil {
		opts.MaxPrice = *params.MaxPrice
	}
	matches, err := h.retriever.Retrieve(c.Context(), params.Q, opts)
	return matches, params.Q, err
}
