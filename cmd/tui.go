package cmd

import (
	"github.com/BrunoViet/swapdesk/internal/client"
	"github.com/BrunoViet/swapdesk/internal/tui"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive swap form",
	RunE: func(cmd *cobra.Command, args []string) error {
		apiAddr, stop, err := apiAddress(cmd.Context(), remoteServer(cmd))
		if err != nil {
			return err
		}
		defer stop()

		app := tui.NewApp(client.New(apiAddr))
		defer app.Close()

		p := tea.NewProgram(app, tea.WithAltScreen())
		_, err = p.Run()
		return err
	},
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}
