package bot

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tickbot/tickbot/internal/store"
)

// runShare copies a checklist to one or more mentioned users. Each target
// gets an independent copy; recipients who already own a checklist with
// the same name are skipped and reported, without aborting the rest.
func (b *Bot) runShare(s *session) error {
	name, ok, err := s.selectChecklist(
		"Select a Checklist to Share ✨",
		"You took too long to select a checklist. Share canceled.",
	)
	if !ok || err != nil {
		return err
	}

	input, ok, err := s.promptText(promptSpec{
		prompt: Card{
			Title:  "Share Checklist 🤝",
			Text:   fmt.Sprintf("Mention the users you want to share *%s* with, or reply `cancel` to stop.", name),
			Color:  colorInfo,
			Footer: footerTimeout,
		},
		cancelNotice: Card{
			Title: "Share Canceled",
			Text:  "No checklists were shared.",
			Color: colorInfo,
		},
		timeoutNotice: timeoutCard("You took too long to respond. Share canceled."),
		invalid: func(text string) *Card {
			if len(parseMentions(text)) == 0 {
				return &Card{
					Title: "No Users Mentioned ⚠️",
					Text:  "Mention at least one user (for example `@teammate`), or reply `cancel`.",
					Color: colorError,
				}
			}
			return nil
		},
	})
	if !ok || err != nil {
		return err
	}

	var shared, conflicted []string
	for _, target := range parseMentions(input) {
		switch err := b.store.ShareChecklist(s.userID, name, target); {
		case err == nil:
			shared = append(shared, target)
		case errors.Is(err, store.ErrConflict):
			conflicted = append(conflicted, target)
		default:
			return err
		}
	}

	if len(shared) > 0 {
		if err := b.persist(); err != nil {
			s.finish(storageErrorCard(), noticeGrace)
			return nil
		}
	}

	if len(shared) > 0 {
		ref, err := s.post(Card{
			Title: "Checklist Shared ✅",
			Text:  fmt.Sprintf("*%s* is now available to %s.", name, mentionList(shared)),
			Color: colorSuccess,
		})
		if err == nil {
			b.deleteAfter(ref, outcomeGrace)
		}
	}
	if len(conflicted) > 0 {
		ref, err := s.post(Card{
			Title: "Checklist Not Shared ⚠️",
			Text:  fmt.Sprintf("%s already have a checklist named *%s*. Their copies were left untouched.", mentionList(conflicted), name),
			Color: colorWarn,
		})
		if err == nil {
			b.deleteAfter(ref, outcomeGrace)
		}
	}

	s.cleanup()
	return nil
}

func mentionList(ids []string) string {
	mentions := make([]string, len(ids))
	for i, id := range ids {
		mentions[i] = formatMention(id)
	}
	return strings.Join(mentions, " ")
}
