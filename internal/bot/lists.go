package bot

import (
	"fmt"
	"strings"
)

// runLists shows every checklist the user owns. No interaction; just a
// summary card that lingers long enough to read.
func (b *Bot) runLists(s *session) error {
	names := b.store.Names(s.userID)
	if len(names) == 0 {
		s.finish(noChecklistsCard(), outcomeGrace)
		return nil
	}

	var sb strings.Builder
	for _, name := range names {
		fmt.Fprintf(&sb, "📋 *%s*\n", name)
	}
	sb.WriteString("\nUse `@TickBot view` to see the tasks in a checklist.")

	s.finish(Card{
		Title: "Your Checklists",
		Text:  sb.String(),
		Color: colorInfo,
	}, viewGrace)
	return nil
}
