// Package components holds the demo livediff.Component implementations
// exercised by example's scripted render sequence.
package components

import (
	"context"
	"fmt"
	"strconv"

	"github.com/pthm/livediff"
)

// Counter is a stateful component demonstrating the mount/update/render
// lifecycle: its running total lives in the Socket across renders, and the
// per-render increment comes from the "step" assign a caller controls.
type Counter struct{}

// NewCounter is the ComponentFactory registered under the "counter"
// module tag.
func NewCounter() livediff.Component { return Counter{} }

func (Counter) Mount(ctx context.Context, s *livediff.Socket) error {
	s.Put("total", 0)
	return nil
}

func (Counter) Update(ctx context.Context, assigns map[string]any, s *livediff.Socket) error {
	s.MergeAssigns(assigns)
	return nil
}

func (Counter) Render(ctx context.Context, s *livediff.Socket) (livediff.Node, error) {
	step := 1
	if raw, ok := s.Assigns["step"]; ok {
		if parsed, err := strconv.Atoi(fmt.Sprint(raw)); err == nil {
			step = parsed
		}
	}

	total, _ := s.Get("total")
	totalInt, _ := total.(int)
	totalInt += step
	s.Put("total", totalInt)

	static := []string{"<span class=\"count\">", "</span>"}
	return livediff.TemplateNode(static, []livediff.Node{
		livediff.LeafNode(strconv.Itoa(totalInt)),
	}, livediff.FingerprintOf(static)), nil
}
