package components

import (
	"context"

	"github.com/pthm/livediff"
)

// TodoStore is the read access TodoList needs; example's Store satisfies
// it without this package importing the main package.
type TodoStore interface {
	List() []TodoView
}

// TodoView is the read-only shape TodoList renders; example's main package
// adapts its own Todo type to this.
type TodoView struct {
	ID   string
	Text string
	Done bool
}

// TodoList renders every todo in the store as a comprehension, one row per
// todo, each row itself a nested template - the nested-per-row shape the
// diff engine's comprehension rule is built to exercise.
type TodoList struct {
	store TodoStore
}

// NewTodoList returns the ComponentFactory registered under the
// "todolist" module tag.
func NewTodoList(store TodoStore) livediff.ComponentFactory {
	return func() livediff.Component { return TodoList{store: store} }
}

func (TodoList) Mount(ctx context.Context, s *livediff.Socket) error { return nil }

func (TodoList) Update(ctx context.Context, assigns map[string]any, s *livediff.Socket) error {
	s.MergeAssigns(assigns)
	return nil
}

func (c TodoList) Render(ctx context.Context, s *livediff.Socket) (livediff.Node, error) {
	todos := c.store.List()
	rows := make([]livediff.Row, 0, len(todos))
	for _, todo := range todos {
		status := "pending"
		if todo.Done {
			status = "done"
		}
		rows = append(rows, livediff.Row{
			livediff.LeafNode(todo.Text),
			livediff.LeafNode(status),
		})
	}

	static := []string{"<ul>", "</ul>"}
	return livediff.TemplateNode(static, []livediff.Node{
		livediff.ComprehensionNode([]string{"<li>", " - ", "</li>"}, rows),
	}, livediff.FingerprintOf(static)), nil
}
