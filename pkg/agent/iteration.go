package agent

import (
	"context"
	"time"

	"github.com/entrhq/webpilot/pkg/types"
)

// reason runs one reasoning call over the conversation plus, when page
// grounding is on, a transient description of the current page.
func (s *Session) reason(ctx context.Context) (*types.Decision, error) {
	prompt := s.buildPrompt(ctx)
	model := s.modelName()

	contextTokens := s.cfg.Tokenizer.CountMessagesTokens(prompt)
	s.cfg.Logger.Debugf("Reasoning round %d: %d messages, ~%d tokens", s.run.Iterations, len(prompt), contextTokens)
	s.emit(types.NewReasoningStartedEvent(model, s.run.Iterations, contextTokens))

	start := time.Now()
	decision, err := s.cfg.Provider.Decide(ctx, prompt, s.cfg.Catalog.Definitions(), s.run.Model)
	s.cfg.Metrics.ReasoningObserved(time.Since(start), err)
	s.emit(types.NewReasoningEndedEvent())

	if err != nil {
		return nil, &TransportError{Model: model, Err: err}
	}
	if decision == nil {
		decision = &types.Decision{}
	}
	if u := decision.Usage; u != nil {
		s.emit(types.NewTokenUsageEvent(u.PromptTokens, u.CompletionTokens, u.TotalTokens))
	}
	return decision, nil
}

// buildPrompt returns the message list for the next reasoning call. The page
// description is never written to memory.
func (s *Session) buildPrompt(ctx context.Context) []*types.Message {
	history := s.memory.GetAll()
	if !s.cfg.PageGrounding {
		return history
	}

	page, err := s.cfg.Surface.DescribePage(ctx)
	if err != nil {
		s.cfg.Logger.Debugf("Page description unavailable: %v", err)
		return history
	}
	return append(history, types.NewSystemMessage(pageStateHeader+page.String()))
}
