package bot

import (
	"fmt"
	"strings"
)

// runAdd drives the interactive task-addition flow: select a checklist by
// reaction, then collect a comma-separated task list via prompt-retry.
// Fragments are trimmed and empty ones dropped; duplicates are preserved.
func (b *Bot) runAdd(s *session) error {
	name, ok, err := s.selectChecklist(
		"Select a Checklist ✏️",
		"You took too long to select a checklist. Task addition canceled.",
	)
	if !ok || err != nil {
		return err
	}

	if _, err := s.postTransient(Card{
		Title: fmt.Sprintf("✅ You selected the checklist: *%s*", name),
		Color: colorInfo,
	}); err != nil {
		return err
	}

	spec := promptSpec{
		prompt: Card{
			Title:  fmt.Sprintf("Add Tasks to: *%s* ✏️", name),
			Text:   "Please provide the tasks you want to add, separated by commas. Type `cancel` to exit.",
			Color:  colorInfo,
			Footer: footerTimeout,
		},
		cancelNotice: Card{
			Title: "Task Addition Canceled ⚠️",
			Text:  "You canceled the task addition process.",
			Color: colorWarn,
		},
		timeoutNotice: timeoutCard("You took too long to respond. Task addition canceled."),
		invalid: func(text string) *Card {
			if text == "" {
				return &Card{
					Title: "Invalid Input ⚠️",
					Text:  "You didn't provide any tasks. Please try again.",
					Color: colorError,
				}
			}
			if len(splitTasks(text)) == 0 {
				return &Card{
					Title: "No Valid Tasks ⚠️",
					Text:  "No valid tasks were provided. Please try again.",
					Color: colorError,
				}
			}
			return nil
		},
	}

	input, ok, err := s.promptText(spec)
	if !ok || err != nil {
		return err
	}

	tasks := splitTasks(input)
	if err := b.store.AppendTasks(s.userID, name, tasks); err != nil {
		return err
	}
	if err := b.persist(); err != nil {
		s.finish(storageErrorCard(), noticeGrace)
		return nil
	}

	lines := make([]string, len(tasks))
	for i, task := range tasks {
		lines[i] = "- " + task
	}
	s.finish(Card{
		Title: "Tasks Added ✅",
		Text:  fmt.Sprintf("Successfully added the following tasks to *%s*:\n%s", name, strings.Join(lines, "\n")),
		Color: colorSuccess,
	}, outcomeGrace)
	return nil
}
