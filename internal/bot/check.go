package bot

import (
	"errors"
	"fmt"

	"github.com/tickbot/tickbot/internal/store"
)

// runCheck drives the task-toggling flow: select a checklist, then page
// through its tasks ten at a time, toggling by numbered reaction. Toggles
// take effect in memory immediately; the explicit confirm reaction
// persists them and ends the flow. Selecting an empty checklist shows a
// transient error and loops back to selection.
func (b *Bot) runCheck(s *session) error {
	for {
		name, ok, err := s.selectChecklist(
			"Select a Checklist to Mark Tasks as Complete ✨",
			"You took too long to select a checklist. Task completion canceled.",
		)
		if !ok || err != nil {
			return err
		}

		tasks, err := b.store.Tasks(s.userID, name)
		if err != nil {
			return err
		}
		if len(tasks) == 0 {
			s.flashError(Card{
				Title: "Task List Empty ⚠️",
				Text:  "No tasks in checklist. Please try again.",
				Color: colorError,
			})
			s.discardTransients()
			continue
		}

		return b.runTaskPager(s, name)
	}
}

// runTaskPager renders one page of tasks with toggle glyphs plus
// navigation and confirm controls, editing the same message in place as
// the user pages and toggles.
func (b *Bot) runTaskPager(s *session, name string) error {
	pageIndex := 0

	ref, err := s.postTransient(b.taskPageCard(s.userID, name, pageIndex))
	if err != nil {
		return err
	}

	seeded := b.seedPageReactions(s, ref, name, pageIndex, nil)

	for {
		tasks, err := b.store.Tasks(s.userID, name)
		if err != nil {
			return err
		}
		pages := pageCount(len(tasks))

		allowed := make([]string, 0, tasksPerPage+3)
		for i := 0; i < pageLen(len(tasks), pageIndex); i++ {
			allowed = append(allowed, selectGlyphs[i].name)
		}
		if pageIndex > 0 {
			allowed = append(allowed, reactionPrev)
		}
		if pageIndex < pages-1 {
			allowed = append(allowed, reactionNext)
		}
		allowed = append(allowed, reactionConfirm)

		choice, err := s.bot.AwaitReaction(s.ctx, ref.channelID, ref.timestamp, s.userID, allowed, responseTimeout)
		if errors.Is(err, ErrTimeout) {
			s.finish(timeoutCard("You took too long to respond. Task completion canceled."), outcomeGrace)
			return nil
		}
		if err != nil {
			return err
		}

		switch choice {
		case reactionNext:
			pageIndex++
			s.update(ref, b.taskPageCard(s.userID, name, pageIndex))
			seeded = b.seedPageReactions(s, ref, name, pageIndex, seeded)

		case reactionPrev:
			pageIndex--
			s.update(ref, b.taskPageCard(s.userID, name, pageIndex))
			seeded = b.seedPageReactions(s, ref, name, pageIndex, seeded)

		case reactionConfirm:
			if err := b.persist(); err != nil {
				s.finish(storageErrorCard(), noticeGrace)
				return nil
			}
			// tasks is current: nothing mutates between the fetch at the
			// top of this iteration and the confirm reaction.
			s.finish(Card{
				Title: "Tasks Updated",
				Text:  "The following tasks have been updated:\n" + renderTaskLines(tasks, 0),
				Color: colorSuccess,
			}, outcomeGrace)
			return nil

		default:
			index := glyphIndex(choice) + pageIndex*tasksPerPage
			if _, err := b.store.ToggleTask(s.userID, name, index); err != nil {
				if errors.Is(err, store.ErrOutOfRange) {
					// Stale glyph for a row past the end; nothing to toggle.
					continue
				}
				return err
			}
			s.update(ref, b.taskPageCard(s.userID, name, pageIndex))
			// Clear the triggering reaction so the glyph can be reused.
			// Slack only lets the bot remove its own reactions, so this
			// is best effort and merely logged when it fails.
			b.removeReaction(choice, ref)
		}
	}
}

// taskPageCard renders the current page of the named checklist.
func (b *Bot) taskPageCard(owner, name string, pageIndex int) Card {
	tasks, err := b.store.Tasks(owner, name)
	if err != nil {
		tasks = nil
	}
	start := pageIndex * tasksPerPage
	end := start + tasksPerPage
	if end > len(tasks) {
		end = len(tasks)
	}
	if start > end {
		start = end
	}
	return Card{
		Title:  fmt.Sprintf("Tasks in *%s*", name),
		Text:   renderTaskLines(tasks[start:end], start),
		Color:  colorInfo,
		Footer: "Use reactions to navigate and toggle tasks. ✅ to confirm.",
	}
}

// seedPageReactions swaps the bot's reactions on the pager message to the
// set valid for the given page, removing the previously seeded ones
// first. Returns the new seeded set.
func (b *Bot) seedPageReactions(s *session, ref msgRef, name string, pageIndex int, previous []string) []string {
	for _, reaction := range previous {
		b.removeReaction(reaction, ref)
	}

	tasks, err := b.store.Tasks(s.userID, name)
	if err != nil {
		return nil
	}
	pages := pageCount(len(tasks))

	var seeded []string
	for i := 0; i < pageLen(len(tasks), pageIndex); i++ {
		b.addReaction(selectGlyphs[i].name, ref)
		seeded = append(seeded, selectGlyphs[i].name)
	}
	if pageIndex > 0 {
		b.addReaction(reactionPrev, ref)
		seeded = append(seeded, reactionPrev)
	}
	if pageIndex < pages-1 {
		b.addReaction(reactionNext, ref)
		seeded = append(seeded, reactionNext)
	}
	b.addReaction(reactionConfirm, ref)
	seeded = append(seeded, reactionConfirm)
	return seeded
}

func pageCount(total int) int {
	if total == 0 {
		return 1
	}
	return (total + tasksPerPage - 1) / tasksPerPage
}

func pageLen(total, pageIndex int) int {
	start := pageIndex * tasksPerPage
	if start >= total {
		return 0
	}
	if total-start < tasksPerPage {
		return total - start
	}
	return tasksPerPage
}
