package memory

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrhq/webpilot/pkg/types"
)

func request(ids ...string) *types.Message {
	calls := make([]types.ToolInvocation, len(ids))
	for i, id := range ids {
		calls[i] = types.ToolInvocation{ID: id, Name: "wait"}
	}
	return types.NewToolRequestMessage("", calls)
}

func outcome(id, text string) types.ToolOutcome {
	return types.ToolOutcome{InvocationID: id, ToolName: "wait", Text: text}
}

func TestSeededMemory(t *testing.T) {
	m := NewSeededMemory("you are a browser agent")
	require.Equal(t, 1, m.Len())
	assert.Equal(t, types.RoleSystem, m.GetAll()[0].Role)
	assert.Equal(t, "you are a browser agent", m.Last().Content)
}

func TestGetAllReturnsCopy(t *testing.T) {
	m := NewConversationMemory()
	m.Add(types.NewUserMessage("a"))
	all := m.GetAll()
	all[0] = types.NewUserMessage("mutated")
	assert.Equal(t, "a", m.GetAll()[0].Content)

	m.Add(nil)
	assert.Equal(t, 1, m.Len())
}

func TestAppendOutcomesOrdersByInvocation(t *testing.T) {
	m := NewConversationMemory()
	m.Add(types.NewUserMessage("task"))
	m.Add(request("a", "b", "c"))

	err := m.AppendOutcomes([]types.ToolOutcome{outcome("c", "3"), outcome("a", "1"), outcome("b", "2")})
	require.NoError(t, err)

	var got []string
	for _, msg := range m.GetAll()[2:] {
		got = append(got, msg.ToolCallID+"="+msg.Content)
	}
	if diff := cmp.Diff([]string{"a=1", "b=2", "c=3"}, got); diff != "" {
		t.Errorf("outcome order mismatch (-want +got):\n%s", diff)
	}
	assert.NoError(t, m.Validate(false))
}

func TestAppendOutcomesRejectsMismatch(t *testing.T) {
	tests := []struct {
		name     string
		outcomes []types.ToolOutcome
	}{
		{name: "too few", outcomes: []types.ToolOutcome{outcome("a", "1")}},
		{name: "duplicate", outcomes: []types.ToolOutcome{outcome("a", "1"), outcome("a", "2")}},
		{name: "unknown id", outcomes: []types.ToolOutcome{outcome("a", "1"), outcome("z", "2")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewConversationMemory()
			m.Add(request("a", "b"))
			assert.Error(t, m.AppendOutcomes(tt.outcomes))
			assert.Equal(t, 1, m.Len(), "a rejected batch must not be partially stored")
		})
	}
}

func TestAppendOutcomesWithoutRequest(t *testing.T) {
	m := NewConversationMemory()
	assert.Error(t, m.AppendOutcomes(nil))

	m.Add(types.NewAssistantMessage("hello"))
	assert.Error(t, m.AppendOutcomes([]types.ToolOutcome{outcome("a", "1")}))
}

func TestValidateLog(t *testing.T) {
	result := func(id string) *types.Message { return types.NewToolResultMessage(outcome(id, "ok")) }

	tests := []struct {
		name         string
		log          []*types.Message
		allowPending bool
		wantErr      bool
	}{
		{
			name: "paired",
			log:  []*types.Message{types.NewUserMessage("t"), request("a", "b"), result("a"), result("b"), types.NewAssistantMessage("done")},
		},
		{
			name:    "orphan result",
			log:     []*types.Message{types.NewUserMessage("t"), result("a")},
			wantErr: true,
		},
		{
			name:    "missing result before next assistant message",
			log:     []*types.Message{request("a", "b"), result("a"), types.NewAssistantMessage("x")},
			wantErr: true,
		},
		{
			name:    "duplicate result",
			log:     []*types.Message{request("a"), result("a"), result("a")},
			wantErr: true,
		},
		{
			name:    "pending request not allowed",
			log:     []*types.Message{types.NewUserMessage("t"), request("a")},
			wantErr: true,
		},
		{
			name:         "pending request allowed",
			log:          []*types.Message{types.NewUserMessage("t"), request("a")},
			allowPending: true,
		},
		{
			name:         "partially answered request is never pending",
			log:          []*types.Message{request("a", "b"), result("a")},
			allowPending: true,
			wantErr:      true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateLog(tt.log, tt.allowPending)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestPendingToolRequest(t *testing.T) {
	m := NewConversationMemory()
	assert.False(t, m.PendingToolRequest())
	m.Add(request("a"))
	assert.True(t, m.PendingToolRequest())
	require.NoError(t, m.AppendOutcomes([]types.ToolOutcome{outcome("a", "done")}))
	assert.False(t, m.PendingToolRequest())
}
