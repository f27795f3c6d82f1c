package main

import (
	"fmt"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/opspanel/opspanel-cli/internal/infrastructure/streaming"
	"github.com/opspanel/opspanel-cli/internal/interfaces/tui"
)

func newLogsCommand(a *app) *cobra.Command {
	var logType string
	cmd := &cobra.Command{
		Use:   "logs <topic>...",
		Short: "Stream live logs for one or more topics (e.g. job ids)",
		Long: `Logs subscribes to the backend's log stream WebSocket and renders the
output live. While scrolled to the bottom the view follows new output;
scrolling up freezes the view and shows a jump-to-bottom hint. With
several topics, tab cycles the viewer between them.

Example:
  ops logs 42
  ops logs 42 43
  ops logs default --type consumer`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			topic := args[0]

			dispatcher, err := streaming.Dial(ctx, a.cfg.WSURL, a.logger)
			if err != nil {
				return err
			}
			defer dispatcher.Close()

			stream := streaming.NewLogStream(dispatcher)
			if err := stream.View(ctx, topic, logType); err != nil {
				return fmt.Errorf("subscribe to %s logs: %w", logType, err)
			}

			model := tui.NewModel(topic, stream.Events())
			if len(args) > 1 {
				model = tui.NewMultiTopicModel(args, stream.Events(), func(next string) error {
					return stream.View(ctx, next, logType)
				})
			}
			program := tea.NewProgram(model, tea.WithAltScreen())
			go func() {
				err := <-dispatcher.Err()
				program.Send(tui.StreamClosedMsg{Err: err})
			}()

			_, err = program.Run()
			return err
		},
	}
	cmd.Flags().StringVar(&logType, "type", "job", "log type: job or consumer")
	return cmd
}
