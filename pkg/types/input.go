package types

// InputType defines the type of input being sent to the orchestrator.
type InputType string

const (
	InputTypeCancel    InputType = "cancel"     // InputTypeCancel indicates a request to stop the orchestrator.
	InputTypeUserInput InputType = "user_input" // InputTypeUserInput indicates operator text: a task, an answer or a reset keyword.
)

// Input represents operator input sent to the orchestrator.
type Input struct {
	// Metadata holds optional additional information about the input.
	Metadata map[string]interface{}

	// Content is the operator text.
	// Only populated when Type is InputTypeUserInput.
	Content string

	// Model optionally overrides the configured model for the run this input starts.
	Model string

	// Type indicates the kind of input.
	Type InputType
}

// NewCancelInput creates a new cancellation input.
func NewCancelInput() *Input {
	return &Input{
		Type:     InputTypeCancel,
		Metadata: make(map[string]interface{}),
	}
}

// NewUserInput creates a new operator text input.
func NewUserInput(content string) *Input {
	return &Input{
		Type:     InputTypeUserInput,
		Content:  content,
		Metadata: make(map[string]interface{}),
	}
}

// WithModel sets the model selector for this input and returns the input for chaining.
func (i *Input) WithModel(model string) *Input {
	i.Model = model
	return i
}

// WithMetadata adds metadata to the input and returns the input for chaining.
func (i *Input) WithMetadata(key string, value interface{}) *Input {
	if i.Metadata == nil {
		i.Metadata = make(map[string]interface{})
	}
	i.Metadata[key] = value
	return i
}

// IsCancel returns true if this is a cancellation input.
func (i *Input) IsCancel() bool {
	return i.Type == InputTypeCancel
}

// IsUserInput returns true if this is an operator text input.
func (i *Input) IsUserInput() bool {
	return i.Type == InputTypeUserInput
}
