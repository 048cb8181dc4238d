package bot

import "fmt"

// runView shows a read-only listing of one checklist's tasks.
func (b *Bot) runView(s *session) error {
	name, ok, err := s.selectChecklist(
		"Select a Checklist to View ✨",
		"You took too long to select a checklist. View canceled.",
	)
	if !ok || err != nil {
		return err
	}

	tasks, err := b.store.Tasks(s.userID, name)
	if err != nil {
		return err
	}
	if len(tasks) == 0 {
		s.finish(Card{
			Title: fmt.Sprintf("No Tasks in *%s* 📋", name),
			Text:  "This checklist is empty. Use `add` to put tasks in it.",
			Color: colorWarn,
		}, outcomeGrace)
		return nil
	}

	s.finish(Card{
		Title: fmt.Sprintf("Tasks in *%s* 📋", name),
		Text:  renderTaskLines(tasks, 0),
		Color: colorInfo,
	}, viewGrace)
	return nil
}
