// Command livediff is a fixture-driven harness for the diff engine: it
// reads a JSON description of a rendered tree (and optionally a prior
// session), runs one Engine.Render, and prints the resulting change map.
// It exists for local inspection and scripting, not as a server - the
// session state it prints is opaque and only meaningful fed back into a
// later invocation.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/pthm/livediff"
)

const version = "0.1.0"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "livediff",
		Short: "Fixture-driven harness for the server-render diff engine",
	}
	root.AddCommand(newRenderCmd())
	root.AddCommand(newVersionCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the livediff CLI version",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "livediff version %s\n", version)
			return nil
		},
	}
}

func newRenderCmd() *cobra.Command {
	var fixturePath string

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render one fixture through Engine.Render and print the change map",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd, fixturePath)
		},
	}
	cmd.Flags().StringVarP(&fixturePath, "file", "f", "", "fixture JSON file (default: stdin)")
	return cmd
}

func runRender(cmd *cobra.Command, fixturePath string) error {
	raw, err := readFixture(cmd, fixturePath)
	if err != nil {
		return err
	}

	var fx fixture
	if err := json.Unmarshal(raw, &fx); err != nil {
		return fmt.Errorf("decoding fixture: %w", err)
	}

	rendered, err := fx.Rendered.toNode()
	if err != nil {
		return fmt.Errorf("decoding rendered tree: %w", err)
	}
	if err := rendered.Validate(); err != nil {
		return fmt.Errorf("invalid fixture: %w", err)
	}

	session, err := fx.Session.toState()
	if err != nil {
		return fmt.Errorf("decoding session: %w", err)
	}

	engine := livediff.Engine{Modules: livediff.NewRegistry()}
	result, err := engine.Render(cmd.Context(), session, rendered)
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}

	snapshot, err := result.State.Snapshot()
	if err != nil {
		return fmt.Errorf("encoding session: %w", err)
	}

	out, err := json.MarshalIndent(renderOutput{
		Session: sessionFixture{Snapshot: snapshot},
		Changes: result.Changes,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding output: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	fmt.Fprintf(cmd.ErrOrStderr(), "stats: full=%d incremental=%d mounted=%d updated=%d rendered=%d\n",
		result.Stats.FullRenders, result.Stats.IncrementalRenders,
		result.Stats.ComponentsMounted, result.Stats.ComponentsUpdated, result.Stats.ComponentsRendered)
	return nil
}

// renderOutput is what a `render` invocation writes to stdout: the change
// map to apply on top of whatever the client already holds, and the
// updated session - opaque except for being valid input to a later
// invocation's "session" fixture field - to continue the same session on
// the next call.
type renderOutput struct {
	Session sessionFixture     `json:"session"`
	Changes livediff.ChangeMap `json:"changes"`
}

func readFixture(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(path)
}
