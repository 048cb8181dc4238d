package main

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/tickbot/tickbot/internal/config"
	"github.com/tickbot/tickbot/internal/store"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Print the checklist store contents",
	Long: `Reads the checklist store file directly and prints every owner's
checklists with task counts. Useful for debugging without a running bot.`,
	RunE: runInspect,
}

var (
	inspectStorePath string
	inspectConfigDir string
)

func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.Flags().StringVar(&inspectStorePath, "store", "", "Path to the checklist store file")
	inspectCmd.Flags().StringVar(&inspectConfigDir, "config-dir", "", "Directory holding config.yaml (default .tickbot)")
}

var (
	inspectColorDone = lipgloss.AdaptiveColor{
		Light: "#86b300",
		Dark:  "#c2d94c",
	}
	inspectColorPending = lipgloss.AdaptiveColor{
		Light: "#f2ae49",
		Dark:  "#ffb454",
	}
	inspectColorHeader = lipgloss.AdaptiveColor{
		Light: "#399ee6",
		Dark:  "#59c2ff",
	}

	inspectHeaderStyle  = lipgloss.NewStyle().Bold(true).Foreground(inspectColorHeader)
	inspectDoneStyle    = lipgloss.NewStyle().Foreground(inspectColorDone)
	inspectPendingStyle = lipgloss.NewStyle().Foreground(inspectColorPending)
)

func runInspect(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(inspectConfigDir)
	if err != nil {
		return err
	}
	path := firstNonEmpty(inspectStorePath, cfg.StorePath)

	st, err := store.Open(path)
	if err != nil {
		return fmt.Errorf("open checklist store: %w", err)
	}

	owners := st.Owners()
	if len(owners) == 0 {
		fmt.Printf("No checklists in %s\n", st.Path())
		return nil
	}

	fmt.Println(inspectHeaderStyle.Render(fmt.Sprintf("Checklist store: %s", st.Path())))
	for _, owner := range owners {
		fmt.Printf("\n%s\n", inspectHeaderStyle.Render(owner))
		for _, name := range st.Names(owner) {
			tasks, err := st.Tasks(owner, name)
			if err != nil {
				continue
			}
			done := 0
			for _, t := range tasks {
				if t.Completed {
					done++
				}
			}
			fmt.Printf("  %s (%d tasks, %d done)\n", name, len(tasks), done)
			for _, t := range tasks {
				if t.Completed {
					fmt.Printf("    %s %s\n", inspectDoneStyle.Render("✓"), t.Description)
				} else {
					fmt.Printf("    %s %s\n", inspectPendingStyle.Render("•"), t.Description)
				}
			}
		}
	}
	return nil
}
