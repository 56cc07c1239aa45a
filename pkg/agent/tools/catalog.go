package tools

import (
	"github.com/entrhq/webpilot/pkg/types"
)

// Catalog is the lookup table from tool name to handler, built once at startup.
type Catalog struct {
	order  []Tool
	byName map[string]Tool
}

// NewCatalog returns the catalog of the eight built-in tools.
func NewCatalog() *Catalog {
	return newCatalog(
		NavigateTool{},
		ClickElementTool{},
		TypeTextTool{},
		PressKeyTool{},
		ReadVisibleTextTool{},
		WaitTool{},
		AskUserTool{},
		TaskCompleteTool{},
	)
}

func newCatalog(tools ...Tool) *Catalog {
	c := &Catalog{byName: make(map[string]Tool, len(tools))}
	for _, t := range tools {
		c.order = append(c.order, t)
		c.byName[t.Name()] = t
	}
	return c
}

// Lookup returns the tool with the given name.
func (c *Catalog) Lookup(name string) (Tool, bool) {
	t, ok := c.byName[name]
	return t, ok
}

// Names returns the tool names in catalog order.
func (c *Catalog) Names() []string {
	names := make([]string, len(c.order))
	for i, t := range c.order {
		names[i] = t.Name()
	}
	return names
}

// Definitions returns the catalog as seen by the Reasoning Client.
func (c *Catalog) Definitions() []types.ToolDefinition {
	defs := make([]types.ToolDefinition, len(c.order))
	for i, t := range c.order {
		defs[i] = types.ToolDefinition{
			Name:        t.Name(),
			Description: t.Description(),
			Parameters:  t.Schema(),
		}
	}
	return defs
}

// Resolve validates an invocation against the catalog and binds it.
// Unknown names yield *UnknownToolError; bad arguments yield *ArgumentError.
func (c *Catalog) Resolve(inv types.ToolInvocation) (*Step, error) {
	t, ok := c.Lookup(inv.Name)
	if !ok {
		return nil, &UnknownToolError{Name: inv.Name, Available: c.Names()}
	}
	args, err := ParseArguments(inv.Name, inv.Arguments)
	if err != nil {
		return nil, err
	}
	return t.Prepare(args)
}
