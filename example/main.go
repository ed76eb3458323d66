// Command example runs a scripted sequence of renders against the demo
// components, printing each change map to stdout. There is no HTTP
// server here - applying a change map to a document and dispatching
// browser events back into a render are both out of scope for this
// module, so the script drives Engine.Render directly instead.
package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/pthm/livediff"
	"github.com/pthm/livediff/example/components"
)

// storeAdapter satisfies components.TodoStore against this package's own
// Store, keeping components' TodoView decoupled from main's Todo type.
type storeAdapter struct{ store *Store }

func (a storeAdapter) List() []components.TodoView {
	todos := a.store.List()
	views := make([]components.TodoView, len(todos))
	for i, t := range todos {
		views[i] = components.TodoView{ID: t.ID, Text: t.Text, Done: t.Done}
	}
	return views
}

func main() {
	store := NewStore()
	registry := livediff.NewRegistry()
	components.Register(registry, storeAdapter{store: store})

	engine := livediff.Engine{Modules: registry}
	ctx := context.Background()
	session := livediff.NewSessionState()

	steps := []struct {
		name string
		root func() livediff.Node
	}{
		{"mount counter + todo list", func() livediff.Node { return rootNode("counter", map[string]any{"step": "1"}) }},
		{"re-render with unchanged assigns: neither component re-renders", func() livediff.Node { return rootNode("counter", map[string]any{"step": "1"}) }},
		{"toggle a todo, re-render", func() livediff.Node {
			store.Toggle("todo-1")
			return rootNode("counter", map[string]any{"step": "2"})
		}},
		{"replace counter with counter-reset (discards memoized count)", func() livediff.Node { return rootNode("counter-reset", map[string]any{"step": "1"}) }},
	}

	for _, step := range steps {
		result, err := engine.Render(ctx, session, step.root())
		if err != nil {
			fmt.Printf("%s: error: %v\n", step.name, err)
			return
		}
		session = result.State

		encoded, _ := json.Marshal(result.Changes)
		fmt.Printf("%s:\n  changes=%s\n  stats=%+v\n", step.name, encoded, result.Stats)
	}
}

func rootNode(counterModule string, counterAssigns map[string]any) livediff.Node {
	static := []string{"<div>", "", "</div>"}
	return livediff.TemplateNode(static, []livediff.Node{
		livediff.ComponentNode("counter-slot", counterModule, counterAssigns),
		livediff.ComponentNode("todo-slot", "todolist", nil),
	}, livediff.FingerprintOf(static))
}
