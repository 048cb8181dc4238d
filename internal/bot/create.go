package bot

import (
	"errors"
	"fmt"

	"github.com/tickbot/tickbot/internal/store"
)

// runCreate drives the interactive checklist-creation flow: a prompt-retry
// loop collecting a name that is non-empty, not the cancel word, and not
// already taken for this owner.
func (b *Bot) runCreate(s *session) error {
	spec := promptSpec{
		prompt: Card{
			Title:  "Create a New Checklist ✏️",
			Text:   "Please provide the `name` of your new checklist. Type `cancel` to exit.",
			Color:  colorInfo,
			Footer: footerTimeout,
		},
		cancelNotice: Card{
			Title: "Checklist Creation Canceled ⚠️",
			Text:  "You canceled the checklist creation process.",
			Color: colorWarn,
		},
		timeoutNotice: timeoutCard("You took too long to respond. Checklist creation canceled."),
		invalid: func(text string) *Card {
			if text == "" {
				return &Card{
					Title: "Invalid Input ⚠️",
					Text:  "You didn't provide a name for the checklist. Please try again.",
					Color: colorWarn,
				}
			}
			if _, err := b.store.Tasks(s.userID, text); err == nil {
				return &Card{
					Title: "Checklist Already Exists \U0001f6d1",
					Text:  fmt.Sprintf("The checklist *%s* already exists! Please try a different name.", text),
					Color: colorError,
				}
			}
			return nil
		},
	}

	name, ok, err := s.promptText(spec)
	if !ok || err != nil {
		return err
	}

	if err := b.store.CreateChecklist(s.userID, name); err != nil {
		// Lost a race with a concurrent flow for the same owner.
		if errors.Is(err, store.ErrAlreadyExists) {
			s.finish(Card{
				Title: "Checklist Already Exists \U0001f6d1",
				Text:  fmt.Sprintf("The checklist *%s* already exists! Please try a different name.", name),
				Color: colorError,
			}, noticeGrace)
			return nil
		}
		return err
	}

	if err := b.persist(); err != nil {
		s.finish(storageErrorCard(), noticeGrace)
		return nil
	}

	s.finish(Card{
		Title: "Checklist Created ✅",
		Text:  fmt.Sprintf("Successfully created a new checklist: *%s*", name),
		Color: colorSuccess,
	}, outcomeGrace)
	return nil
}
