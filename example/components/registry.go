package components

import "github.com/pthm/livediff"

// Register wires every demo component into reg under its module tag. A
// second, identically-behaved tag for Counter ("counter-reset") exists so
// a caller can demonstrate the registry's replace path: tracking the same
// external id under a different module tag discards memoization and runs
// Mount again (see example/main.go).
func Register(reg *livediff.Registry, store TodoStore) {
	reg.Register("counter", NewCounter)
	reg.Register("counter-reset", NewCounter)
	reg.Register("todolist", NewTodoList(store))
}
