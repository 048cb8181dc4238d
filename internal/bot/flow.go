package bot

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"
)

// Grace delays before a final outcome notice is removed. Transient
// messages (prompts, menus, confirmations) are deleted as soon as a flow
// reaches a terminal state; outcome notices linger so the user can read
// them.
const (
	noticeGrace  = 15 * time.Second
	outcomeGrace = 30 * time.Second
	viewGrace    = 60 * time.Second
)

// cancelWord is the sentinel a user types to abort a free-text prompt.
const cancelWord = "cancel"

// msgRef identifies a posted Slack message for later update or deletion.
type msgRef struct {
	channelID string
	timestamp string
}

// session tracks one in-flight interactive command for one user in one
// channel: the context governing its waits, every transient message to
// clean up at a terminal state, and the last transient error notice.
type session struct {
	bot       *Bot
	ctx       context.Context
	channelID string
	userID    string
	transient []msgRef
	errNotice *msgRef
}

func (b *Bot) newSession(ctx context.Context, channelID, userID, commandTS string) *session {
	s := &session{
		bot:       b,
		ctx:       ctx,
		channelID: channelID,
		userID:    userID,
	}
	// The invoking command message is itself transient.
	if commandTS != "" {
		s.transient = append(s.transient, msgRef{channelID, commandTS})
	}
	return s
}

// post sends a card to the session channel.
func (s *session) post(card Card) (msgRef, error) {
	_, ts, err := s.bot.client.PostMessage(s.channelID, card.msgOption())
	if err != nil {
		return msgRef{}, err
	}
	return msgRef{s.channelID, ts}, nil
}

// postTransient sends a card and registers it for cleanup at the flow's
// terminal state.
func (s *session) postTransient(card Card) (msgRef, error) {
	ref, err := s.post(card)
	if err != nil {
		return msgRef{}, err
	}
	s.transient = append(s.transient, ref)
	return ref, nil
}

// update rewrites an already-posted card in place.
func (s *session) update(ref msgRef, card Card) {
	if _, _, _, err := s.bot.client.UpdateMessage(ref.channelID, ref.timestamp, card.msgOption()); err != nil {
		log.Printf("tickbot: update message %s: %v", ref.timestamp, err)
	}
}

// flashError replaces the previous transient error notice, if any, with a
// new one. The notice lives until the next flashError, clearError, or
// cleanup.
func (s *session) flashError(card Card) {
	s.clearError()
	ref, err := s.post(card)
	if err != nil {
		log.Printf("tickbot: post error notice: %v", err)
		return
	}
	s.errNotice = &ref
}

func (s *session) clearError() {
	if s.errNotice != nil {
		s.bot.deleteMessage(*s.errNotice)
		s.errNotice = nil
	}
}

// cleanup deletes every transient message and any lingering error notice.
// Called exactly once per flow, at its terminal state.
func (s *session) cleanup() {
	for _, ref := range s.transient {
		s.bot.deleteMessage(ref)
	}
	s.transient = nil
	s.clearError()
}

// discardTransients deletes the transient messages accumulated so far
// without ending the flow. Used when a flow loops back to an earlier step
// and re-renders from scratch.
func (s *session) discardTransients() {
	for _, ref := range s.transient {
		s.bot.deleteMessage(ref)
	}
	s.transient = nil
}

// finish posts the final outcome notice, cleans up every transient
// message, and schedules the outcome itself for deletion after the grace
// delay.
func (s *session) finish(outcome Card, grace time.Duration) {
	ref, err := s.post(outcome)
	s.cleanup()
	if err != nil {
		log.Printf("tickbot: post outcome notice: %v", err)
		return
	}
	s.bot.deleteAfter(ref, grace)
}

// deleteAfter removes a message once the grace delay has passed.
func (b *Bot) deleteAfter(ref msgRef, grace time.Duration) {
	time.AfterFunc(grace, func() {
		b.deleteMessage(ref)
	})
}

// ---------- Selection flow ----------

// selectChecklist renders the owner's checklists as a reaction menu and
// waits for a single choice. At most ten checklists are offered; any
// beyond that are simply not listed. Returns the chosen name, or ok=false
// when the flow already terminated (no checklists, timeout, send failure).
func (s *session) selectChecklist(title, timeoutText string) (string, bool, error) {
	names := s.bot.store.Names(s.userID)
	if len(names) == 0 {
		s.finish(noChecklistsCard(), outcomeGrace)
		return "", false, nil
	}
	if len(names) > maxSelectOptions {
		names = names[:maxSelectOptions]
	}

	menu := Card{
		Title:  title,
		Text:   "Please select a checklist by reacting with the corresponding emoji.\n\n" + renderMenu(names),
		Color:  colorInfo,
		Footer: footerTimeout,
	}
	ref, err := s.postTransient(menu)
	if err != nil {
		return "", false, err
	}

	allowed := make([]string, len(names))
	for i := range names {
		allowed[i] = selectGlyphs[i].name
		s.bot.addReaction(selectGlyphs[i].name, ref)
	}

	choice, err := s.bot.AwaitReaction(s.ctx, ref.channelID, ref.timestamp, s.userID, allowed, responseTimeout)
	if errors.Is(err, ErrTimeout) {
		s.finish(timeoutCard(timeoutText), outcomeGrace)
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}

	return names[glyphIndex(choice)], true, nil
}

// ---------- Prompt-retry flow ----------

// promptSpec describes one free-text prompt: the prompt card, the notices
// for cancellation and timeout, and a validator that returns an error
// card for input that should trigger a re-prompt.
type promptSpec struct {
	prompt        Card
	cancelNotice  Card
	timeoutNotice Card
	invalid       func(text string) *Card
}

// promptText runs the prompt-retry loop: prompt, await a reply, classify
// it as cancel, invalid, or valid. Invalid input posts a transient error
// notice (replacing any previous one) and re-prompts; there is no retry
// limit beyond the per-iteration timeout. The prompt and the user's reply
// are deleted at the end of every iteration so the channel stays clean.
func (s *session) promptText(spec promptSpec) (string, bool, error) {
	for {
		promptRef, err := s.post(spec.prompt)
		if err != nil {
			return "", false, err
		}

		reply, err := s.bot.AwaitReply(s.ctx, s.channelID, s.userID, responseTimeout)
		if errors.Is(err, ErrTimeout) {
			s.bot.deleteMessage(promptRef)
			s.finish(spec.timeoutNotice, outcomeGrace)
			return "", false, nil
		}
		if err != nil {
			s.bot.deleteMessage(promptRef)
			return "", false, err
		}

		text := strings.TrimSpace(reply.Text)
		s.bot.deleteMessage(promptRef)
		s.bot.deleteMessage(msgRef{s.channelID, reply.TimeStamp})

		if strings.EqualFold(text, cancelWord) {
			s.clearError()
			s.finish(spec.cancelNotice, noticeGrace)
			return "", false, nil
		}

		if errCard := spec.invalid(text); errCard != nil {
			s.flashError(*errCard)
			continue
		}

		s.clearError()
		return text, true, nil
	}
}

// ---------- Yes/no confirm flow ----------

// confirmAction posts a confirm card with check/cross reactions and waits
// for one. Returns confirmed=true only on an explicit check reaction.
func (s *session) confirmAction(card Card, timeoutText string) (confirmed, ok bool, err error) {
	ref, err := s.postTransient(card)
	if err != nil {
		return false, false, err
	}
	s.bot.addReaction(reactionConfirm, ref)
	s.bot.addReaction(reactionCancel, ref)

	choice, err := s.bot.AwaitReaction(s.ctx, ref.channelID, ref.timestamp, s.userID,
		[]string{reactionConfirm, reactionCancel}, responseTimeout)
	if errors.Is(err, ErrTimeout) {
		s.finish(timeoutCard(timeoutText), outcomeGrace)
		return false, false, nil
	}
	if err != nil {
		return false, false, err
	}

	return choice == reactionConfirm, true, nil
}

// ---------- Shared notice cards ----------

func noChecklistsCard() Card {
	return Card{
		Title: "No Checklists Saved \U0001f6d1",
		Text:  "You don't have any checklists. Please create one first using `@TickBot create`.",
		Color: colorError,
	}
}

func timeoutCard(text string) Card {
	return Card{
		Title: "Timeout ⚠️",
		Text:  text,
		Color: colorWarn,
	}
}

func storageErrorCard() Card {
	return Card{
		Title: "Error ⚠️",
		Text:  "Your change could not be saved. Please try again.",
		Color: colorError,
	}
}
