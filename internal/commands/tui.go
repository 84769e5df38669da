package commands

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/klabast/wb-services/trace/internal/tui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Browse the journal in the terminal",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		// the UI owns the terminal
		rt, err := boot(true)
		if err != nil {
			return err
		}
		defer rt.Close()

		p := tea.NewProgram(tui.New(rt.store, rt.cal, rt.cfg.MondayStart()))
		_, err = p.Run()
		return err
	},
}
