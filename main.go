// main.go
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"stylescope/internal/explore"
	"stylescope/internal/stream"
)

var (
	flagServer  string
	flagSession string
	flagCount   int
)

// consoleBroadcaster prints pushed events as they arrive, giving the CLI a
// progressive view of an in-flight exploration.
type consoleBroadcaster struct{}

func (consoleBroadcaster) BroadcastEvent(eventType string, payload interface{}) {
	switch eventType {
	case "exploration:update":
		state, ok := payload.(stream.LiveState)
		if !ok {
			return
		}
		if state.Stage != "" {
			fmt.Printf("  [%3.0f%%] %s: %s\n", state.Percent, state.Stage, state.StatusMessage)
		}
		if state.CurrentTestingID != "" {
			fmt.Printf("  testing hypothesis %s\n", state.CurrentTestingID)
		}
	case "reference:changed":
		fmt.Println("  reference image changed on disk; results may be stale")
	default:
		log.Printf("[Event] %s", eventType)
	}
}

// newApp builds and starts the App for one command invocation.
func newApp(ctx context.Context) (*App, error) {
	app := NewApp()
	if err := app.Startup(ctx); err != nil {
		return nil, err
	}
	if flagServer != "" {
		app.SetServerURL(flagServer)
	}
	app.SetBroadcaster(consoleBroadcaster{})
	return app, nil
}

func main() {
	rootCmd := &cobra.Command{
		Use:           "stylescope",
		Short:         "Client for an interactive style-exploration server",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&flagServer, "server", "", "server base URL (overrides config)")
	rootCmd.PersistentFlags().StringVarP(&flagSession, "session", "s", "", "session id")

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show the session's server-side status",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Shutdown()

			session, err := app.apiClient.GetSession(cmd.Context(), requireSession())
			if err != nil {
				return err
			}
			fmt.Printf("session %s  status=%s  created=%s\n",
				session.ID, session.Status, session.CreatedAt.Format("2006-01-02 15:04:05"))
			if session.Status == explore.StatusExploring {
				fmt.Println("an exploration is in flight")
			}
			return nil
		},
	}

	treeCmd := &cobra.Command{
		Use:   "tree",
		Short: "Fetch and lay out the session's exploration tree",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Shutdown()

			if err := app.OpenSession(requireSession()); err != nil {
				return err
			}
			fmt.Print(app.RenderTree())
			return nil
		},
	}

	exploreCmd := &cobra.Command{
		Use:   "explore",
		Short: "Run an exploration and follow its progress",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Shutdown()

			if err := app.OpenSession(requireSession()); err != nil {
				return err
			}
			if err := app.StartExploration(flagCount); err != nil {
				return err
			}

			state := app.LiveState()
			fmt.Printf("exploration complete: %d hypotheses\n", len(state.Hypotheses))
			for _, h := range state.Hypotheses {
				results := state.TestResults[h.ID]
				fmt.Printf("  %s (%.0f%% confidence, %d test results): %s\n",
					h.ID, h.Confidence*100, len(results), h.Description)
			}
			fmt.Print(app.RenderTree())
			return nil
		},
	}
	exploreCmd.Flags().IntVarP(&flagCount, "count", "n", 4, "number of variants to generate")

	stopCmd := &cobra.Command{
		Use:   "stop",
		Short: "Request cancellation of the in-flight exploration",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Shutdown()

			if err := app.OpenSession(requireSession()); err != nil {
				return err
			}
			return app.StopExploration()
		},
	}

	favoriteCmd := &cobra.Command{
		Use:   "favorite <snapshot-id>",
		Short: "Toggle a snapshot's favorite flag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Shutdown()

			if err := app.OpenSession(requireSession()); err != nil {
				return err
			}
			return app.ToggleFavorite(args[0])
		},
	}

	selectCmd := &cobra.Command{
		Use:   "select <snapshot-id>",
		Short: "Make a snapshot the session's current one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Shutdown()

			if err := app.OpenSession(requireSession()); err != nil {
				return err
			}
			return app.SelectSnapshot(args[0])
		},
	}

	rootCmd.AddCommand(statusCmd, treeCmd, exploreCmd, stopCmd, favoriteCmd, selectCmd)

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

// requireSession exits with usage help if --session was not given.
func requireSession() string {
	if flagSession == "" {
		fmt.Fprintln(os.Stderr, "a session id is required (--session)")
		os.Exit(2)
	}
	return flagSession
}
