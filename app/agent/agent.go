// Package agent synthesizes a chatbot answer from retrieved products with
// a two-stage map-reduce over the LLM: one summary call per product, then
// a single combine call over all summaries and the user's question.
package agent

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"retailrag/model"
	"retailrag/types"

	"github.com/pkoukk/tiktoken-go"
	"golang.org/x/sync/errgroup"
)

const mapPromptTemplate = `
You will be given a detailed description of a toy product.
This description is enclosed in triple backticks (` + "```" + `).
Using this description only, extract the name of the toy,
the price of the toy and its features.

` + "```%s```" + `
SUMMARY:
`

const combinePromptTemplate = `
You will be given a detailed description different toy products
enclosed in triple backticks (` + "```" + `) and a question enclosed in
double backticks(` + "``" + `).

Select one toy that is most relevant to answer the question.
Using that selected toy description, answer the following
question in as much detail as possible.

You should only use the information in the description.
Your answer should include the name of the toy, the price of the toy
and its features. Your answer should be less than 200 words.
Your answer should be in Markdown in a numbered list format.

Description:
` + "```%s```" + `


Question:
` + "``%s``" + `


Answer:
`

type Synthesizer struct {
	llm model.TextGenerator
}

func NewSynthesizer(llm model.TextGenerator) *Synthesizer {
	return &Synthesizer{llm: llm}
}

// Synthesize runs the map stage concurrently over the matches, then one
// reduce call over all intermediate summaries. Zero matches fail fast;
// any LLM failure is fatal to the request and cancels the calls still in
// flight.
func (s *Synthesizer) Synthesize(ctx context.Context, matches []types.MatchedProduct, userQuery string) (string, error) {
	if len(matches) == 0 {
		return "", errors.New("no matched products to synthesize an answer from")
	}

	// The errgroup context is cancelled once Wait returns, even on
	// success, so it is scoped to the map calls only; the reduce call
	// below runs on the caller's context.
	g, mapCtx := errgroup.WithContext(ctx)
	summaries := make([]string, len(matches))
	for i, m := range matches {
		i, m := i, m
		g.Go(func() error {
			prompt := fmt.Sprintf(mapPromptTemplate, renderMatch(m))
			out, err := s.llm.Generate(mapCtx, prompt)
			if err != nil {
				return fmt.Errorf("summarize product %s: %w", m.ProductID, err)
			}
			summaries[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return "", err
	}

	prompt := fmt.Sprintf(combinePromptTemplate, strings.Join(summaries, "\n"), userQuery)
	if count, err := CountTokens(prompt); err == nil {
		log.Printf("[AGENT] combine prompt is %d tokens over %d summaries", count, len(summaries))
	}

	answer, err := s.llm.Generate(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("combine summaries: %w", err)
	}
	return answer, nil
}

func renderMatch(m types.MatchedProduct) string {
	return fmt.Sprintf(`
        The name of the toy is %s.
        The price of the toy is $%.2f.
        Its description is below:
        %s.
        `, m.ProductName, m.ListPrice, m.Description)
}

func CountTokens(text string) (int, error) {
	enc, err := tiktoken.EncodingForModel("gpt-3.5-turbo")
	if err != nil {
		return 0, err
	}
	return len(enc.Encode(text, nil, nil)), nil
}
