package tools

// AskUserTool suspends the run and asks the operator a question. The
// operator's next input becomes the tool outcome.
type AskUserTool struct{}

func (AskUserTool) Name() string { return "ask_user" }

func (AskUserTool) Description() string {
	return "Ask the user for permission or for missing information. " +
		"Use it before risky actions such as payments, deletions or sending messages."
}

func (AskUserTool) Schema() map[string]interface{} {
	return BaseToolSchema(
		map[string]interface{}{"question": stringProperty("Question for the user")},
		[]string{"question"},
	)
}

func (AskUserTool) Kind() Kind { return KindAskOperator }

func (t AskUserTool) Prepare(args Arguments) (*Step, error) {
	q, err := args.String("question", false)
	if err != nil {
		return nil, err
	}
	return &Step{Tool: t.Name(), Kind: KindAskOperator, Text: q}, nil
}

// TaskCompleteTool ends the run successfully.
type TaskCompleteTool struct{}

func (TaskCompleteTool) Name() string { return "task_complete" }

func (TaskCompleteTool) Description() string {
	return "Call when the task is fully done. The summary is shown to the user as the final report."
}

func (TaskCompleteTool) Schema() map[string]interface{} {
	return BaseToolSchema(
		map[string]interface{}{"summary": stringProperty("Report of the result")},
		[]string{"summary"},
	)
}

func (TaskCompleteTool) Kind() Kind { return KindTerminal }

func (t TaskCompleteTool) Prepare(args Arguments) (*Step, error) {
	summary, err := args.String("summary", false)
	if err != nil {
		return nil, err
	}
	return &Step{Tool: t.Name(), Kind: KindTerminal, Text: summary}, nil
}
