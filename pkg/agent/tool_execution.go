package agent

import (
	"context"

	"github.com/google/uuid"

	"github.com/entrhq/webpilot/pkg/agent/tools"
	"github.com/entrhq/webpilot/pkg/types"
)

const (
	skippedAfterCompletion = "Skipped: the task was completed by an earlier call in the same turn."
	skippedQuestion        = "Skipped: the task was completed before the question was asked."
)

// dispatch records the tool request and handles its invocations one at a
// time, in request order. It returns done=true when the run ended or
// suspended on an operator question.
func (s *Session) dispatch(ctx context.Context, decision *types.Decision) (Outcome, bool) {
	invocations := normalizeInvocations(decision.Invocations)
	s.memory.Add(types.NewToolRequestMessage(decision.Text, invocations))
	if decision.Text != "" {
		s.emit(types.NewAssistantMessageEvent(decision.Text))
	}

	batch := &pendingBatch{
		invocations: invocations,
		outcomes:    make([]types.ToolOutcome, len(invocations)),
	}

	for i, inv := range invocations {
		s.emit(types.NewToolCallEvent(inv.ID, inv.Name, inv.ArgumentsMap()))

		step, err := s.cfg.Catalog.Resolve(inv)
		if err != nil {
			s.cfg.Logger.Warnf("Invocation %s rejected: %v", inv.ID, err)
			batch.outcomes[i] = s.record(inv, err.Error(), true)
			continue
		}

		switch step.Kind {
		case tools.KindAskOperator:
			// answered after the rest of the batch has run
			batch.questions = append(batch.questions, pendingQuestion{index: i, text: step.Text})

		case tools.KindTerminal:
			batch.outcomes[i] = s.record(inv, step.Text, false)
			for j := i + 1; j < len(invocations); j++ {
				batch.outcomes[j] = skipped(invocations[j], skippedAfterCompletion)
			}
			for _, q := range batch.questions {
				batch.outcomes[q.index] = skipped(invocations[q.index], skippedQuestion)
			}
			s.appendBatch(batch)
			s.emit(types.NewSuccessEvent(step.Text))
			return s.finish(StatusCompleted, step.Text, nil), true

		default:
			text := step.Execute(ctx, s.cfg.Surface)
			failure := classifyDispatch(inv.Name, text)
			if failure != nil {
				s.cfg.Logger.Debugf("Dispatch failure: %v", failure)
			}
			batch.outcomes[i] = s.record(inv, text, failure != nil)
		}
	}

	if len(batch.questions) > 0 {
		s.run.pending = batch
		// a round that yields to the operator is not counted
		s.run.Iterations--
		return s.askNext(), true
	}

	s.appendBatch(batch)
	return Outcome{}, false
}

// resume takes the operator's literal answer to the oldest pending question.
// Once every question of the batch is answered the outcomes are appended and
// the loop continues.
func (s *Session) resume(ctx context.Context, answer string) Outcome {
	batch := s.run.pending
	q := batch.questions[0]
	batch.questions = batch.questions[1:]

	inv := batch.invocations[q.index]
	s.emit(types.NewOperatorMessageEvent(answer))
	batch.outcomes[q.index] = s.record(inv, answer, false)

	if len(batch.questions) > 0 {
		return s.askNext()
	}

	s.run.pending = nil
	s.appendBatch(batch)
	s.setState(types.RunStateRunning)
	return s.loop(ctx)
}

func (s *Session) askNext() Outcome {
	batch := s.run.pending
	q := batch.questions[0]
	inv := batch.invocations[q.index]

	s.cfg.Metrics.QuestionAsked()
	s.setState(types.RunStateAwaitingOperator)
	s.emit(types.NewQuestionEvent(inv.ID, q.text))
	return Outcome{
		Status:     StatusAwaitingOperator,
		Message:    q.text,
		Iterations: s.run.Iterations,
	}
}

func (s *Session) record(inv types.ToolInvocation, text string, isError bool) types.ToolOutcome {
	out := types.ToolOutcome{
		InvocationID: inv.ID,
		ToolName:     inv.Name,
		Text:         text,
		IsError:      isError,
	}
	s.cfg.Metrics.ToolDispatched(inv.Name, isError)
	s.emit(types.NewToolResultEvent(out))
	return out
}

func (s *Session) appendBatch(batch *pendingBatch) {
	if err := s.memory.AppendOutcomes(batch.outcomes); err != nil {
		s.cfg.Logger.Errorf("Failed to record tool outcomes: %v", err)
	}
}

func skipped(inv types.ToolInvocation, text string) types.ToolOutcome {
	return types.ToolOutcome{InvocationID: inv.ID, ToolName: inv.Name, Text: text}
}

// normalizeInvocations gives every invocation a unique, non-empty id so that
// outcomes can be correlated.
func normalizeInvocations(in []types.ToolInvocation) []types.ToolInvocation {
	out := make([]types.ToolInvocation, len(in))
	seen := make(map[string]bool, len(in))
	for i, inv := range in {
		if inv.ID == "" || seen[inv.ID] {
			inv.ID = "call_" + uuid.NewString()
		}
		seen[inv.ID] = true
		out[i] = inv
	}
	return out
}
