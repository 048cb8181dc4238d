package bot

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/slack-go/slack/slackevents"
)

// ErrTimeout is reported when the user does not respond within the wait
// window. Flows treat it as a clean terminal state, never a failure.
var ErrTimeout = errors.New("timed out waiting for a response")

// responseTimeout is the window for every interactive wait.
const responseTimeout = 60 * time.Second

type messagePredicate func(*slackevents.MessageEvent) bool

type reactionPredicate func(*slackevents.ReactionAddedEvent) bool

type messageWaiter struct {
	match messagePredicate
	ch    chan *slackevents.MessageEvent
}

type reactionWaiter struct {
	match reactionPredicate
	ch    chan *slackevents.ReactionAddedEvent
}

// waiters routes inbound events to flows suspended at an await point.
// Each waiter is a predicate plus a result channel; the first waiter
// whose predicate matches consumes the event and is unregistered.
type waiters struct {
	mu        sync.Mutex
	nextID    int
	messages  map[int]*messageWaiter
	reactions map[int]*reactionWaiter
}

func newWaiters() *waiters {
	return &waiters{
		messages:  make(map[int]*messageWaiter),
		reactions: make(map[int]*reactionWaiter),
	}
}

func (w *waiters) addMessage(match messagePredicate) (int, <-chan *slackevents.MessageEvent) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.nextID++
	id := w.nextID
	wt := &messageWaiter{match: match, ch: make(chan *slackevents.MessageEvent, 1)}
	w.messages[id] = wt
	return id, wt.ch
}

func (w *waiters) removeMessage(id int) {
	w.mu.Lock()
	delete(w.messages, id)
	w.mu.Unlock()
}

func (w *waiters) addReaction(match reactionPredicate) (int, <-chan *slackevents.ReactionAddedEvent) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.nextID++
	id := w.nextID
	wt := &reactionWaiter{match: match, ch: make(chan *slackevents.ReactionAddedEvent, 1)}
	w.reactions[id] = wt
	return id, wt.ch
}

func (w *waiters) removeReaction(id int) {
	w.mu.Lock()
	delete(w.reactions, id)
	w.mu.Unlock()
}

// offerMessage hands an inbound message to the first matching waiter.
// Returns true when a waiter consumed the event.
func (w *waiters) offerMessage(ev *slackevents.MessageEvent) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	for id, wt := range w.messages {
		if wt.match(ev) {
			delete(w.messages, id)
			wt.ch <- ev
			return true
		}
	}
	return false
}

// offerReaction hands an inbound reaction to the first matching waiter.
func (w *waiters) offerReaction(ev *slackevents.ReactionAddedEvent) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	for id, wt := range w.reactions {
		if wt.match(ev) {
			delete(w.reactions, id)
			wt.ch <- ev
			return true
		}
	}
	return false
}

// AwaitReply suspends until the given user sends a message in the given
// channel, or the timeout elapses. The predicate constrains author and
// channel so concurrent flows from other users or channels never
// cross-talk.
func (b *Bot) AwaitReply(ctx context.Context, channelID, userID string, timeout time.Duration) (*slackevents.MessageEvent, error) {
	id, ch := b.waiters.addMessage(func(ev *slackevents.MessageEvent) bool {
		return ev.User == userID && ev.Channel == channelID && ev.SubType == "" && ev.BotID == ""
	})
	defer b.waiters.removeMessage(id)

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case ev := <-ch:
		return ev, nil
	case <-timer.C:
		return nil, ErrTimeout
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// AwaitReaction suspends until the given user reacts to the given message
// with one of the allowed reaction names, or the timeout elapses. Returns
// the reaction name.
func (b *Bot) AwaitReaction(ctx context.Context, channelID, messageTS, userID string, allowed []string, timeout time.Duration) (string, error) {
	allowedSet := make(map[string]bool, len(allowed))
	for _, name := range allowed {
		allowedSet[name] = true
	}

	id, ch := b.waiters.addReaction(func(ev *slackevents.ReactionAddedEvent) bool {
		return ev.User == userID &&
			ev.Item.Channel == channelID &&
			ev.Item.Timestamp == messageTS &&
			allowedSet[ev.Reaction]
	})
	defer b.waiters.removeReaction(id)

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case ev := <-ch:
		return ev.Reaction, nil
	case <-timer.C:
		return "", ErrTimeout
	case <-ctx.Done():
		return "", ctx.Err()
	}
}
