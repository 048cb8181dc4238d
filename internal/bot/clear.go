package bot

import "fmt"

// runClear empties a checklist after an explicit reaction confirmation.
// The checklist itself survives with zero tasks.
func (b *Bot) runClear(s *session) error {
	name, ok, err := s.selectChecklist(
		"Select a Checklist to Clear ✨",
		"You took too long to select a checklist. Clear canceled.",
	)
	if !ok || err != nil {
		return err
	}

	confirmed, ok, err := s.confirmAction(Card{
		Title:  fmt.Sprintf("Clear All Tasks in *%s*", name),
		Text:   "This will remove every task from the checklist. React with ✅ to confirm or ❌ to cancel.",
		Color:  colorWarn,
		Footer: footerTimeout,
	}, "You took too long to respond. Clear canceled.")
	if !ok || err != nil {
		return err
	}
	if !confirmed {
		s.finish(Card{
			Title: "Action Canceled",
			Text:  fmt.Sprintf("Tasks in *%s* were left untouched.", name),
			Color: colorInfo,
		}, noticeGrace)
		return nil
	}

	if err := b.store.ClearChecklist(s.userID, name); err != nil {
		return err
	}
	if err := b.persist(); err != nil {
		s.finish(storageErrorCard(), noticeGrace)
		return nil
	}

	s.finish(Card{
		Title: "Tasks Cleared 🗑️",
		Text:  fmt.Sprintf("All tasks in *%s* have been removed.", name),
		Color: colorSuccess,
	}, outcomeGrace)
	return nil
}
