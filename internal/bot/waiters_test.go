package bot

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/slack-go/slack/slackevents"
)

func TestAwaitReplyTimeout(t *testing.T) {
	b := newBotForTest(newFakeAPI(), newTestStore(t))

	_, err := b.AwaitReply(context.Background(), "C1", "U1", 10*time.Millisecond)
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("AwaitReply() error = %v, want ErrTimeout", err)
	}
}

func TestAwaitReplyContextCanceled(t *testing.T) {
	b := newBotForTest(newFakeAPI(), newTestStore(t))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := b.AwaitReply(ctx, "C1", "U1", time.Second)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("AwaitReply() error = %v, want context.Canceled", err)
	}
}

func TestAwaitReplyFilters(t *testing.T) {
	b := newBotForTest(newFakeAPI(), newTestStore(t))

	done := make(chan *slackevents.MessageEvent, 1)
	go func() {
		ev, err := b.AwaitReply(context.Background(), "C1", "U1", 2*time.Second)
		if err != nil {
			done <- nil
			return
		}
		done <- ev
	}()

	// Non-matching events must never be consumed, whether or not the
	// waiter has registered yet.
	if b.waiters.offerMessage(&slackevents.MessageEvent{User: "U2", Channel: "C1", Text: "wrong author"}) {
		t.Error("offerMessage consumed an event from the wrong author")
	}
	if b.waiters.offerMessage(&slackevents.MessageEvent{User: "U1", Channel: "C2", Text: "wrong channel"}) {
		t.Error("offerMessage consumed an event from the wrong channel")
	}
	if b.waiters.offerMessage(&slackevents.MessageEvent{User: "U1", Channel: "C1", SubType: "message_changed"}) {
		t.Error("offerMessage consumed an event with a subtype")
	}
	if b.waiters.offerMessage(&slackevents.MessageEvent{User: "U1", Channel: "C1", BotID: "B1"}) {
		t.Error("offerMessage consumed a bot message")
	}

	// The matching event is consumed once the waiter registers.
	waitForCondition(t, func() bool {
		return b.waiters.offerMessage(&slackevents.MessageEvent{User: "U1", Channel: "C1", Text: "hello"})
	})

	ev := <-done
	if ev == nil || ev.Text != "hello" {
		t.Fatalf("AwaitReply() returned %+v, want the matching event", ev)
	}
}

func TestAwaitReactionFilters(t *testing.T) {
	b := newBotForTest(newFakeAPI(), newTestStore(t))

	done := make(chan string, 1)
	go func() {
		choice, err := b.AwaitReaction(context.Background(), "C1", "111.222", "U1", []string{"one", "two"}, 2*time.Second)
		if err != nil {
			done <- ""
			return
		}
		done <- choice
	}()

	if b.waiters.offerReaction(reactionEvent("U2", "one", "C1", "111.222")) {
		t.Error("offerReaction consumed a reaction from the wrong user")
	}
	if b.waiters.offerReaction(reactionEvent("U1", "thumbsup", "C1", "111.222")) {
		t.Error("offerReaction consumed a reaction outside the allowed set")
	}
	if b.waiters.offerReaction(reactionEvent("U1", "one", "C1", "999.999")) {
		t.Error("offerReaction consumed a reaction on the wrong message")
	}

	waitForCondition(t, func() bool {
		return b.waiters.offerReaction(reactionEvent("U1", "two", "C1", "111.222"))
	})

	if choice := <-done; choice != "two" {
		t.Fatalf("AwaitReaction() = %q, want %q", choice, "two")
	}
}

func TestOfferWithNoWaiters(t *testing.T) {
	w := newWaiters()

	if w.offerMessage(&slackevents.MessageEvent{User: "U1", Channel: "C1"}) {
		t.Error("offerMessage with no registered waiters reported consumption")
	}
	if w.offerReaction(reactionEvent("U1", "one", "C1", "111.222")) {
		t.Error("offerReaction with no registered waiters reported consumption")
	}
}

func reactionEvent(user, reaction, channel, ts string) *slackevents.ReactionAddedEvent {
	ev := &slackevents.ReactionAddedEvent{
		User:     user,
		Reaction: reaction,
	}
	ev.Item.Channel = channel
	ev.Item.Timestamp = ts
	return ev
}

// waitForCondition polls until cond holds, failing the test after two
// seconds. Used to wait for a flow goroutine to reach its await point.
func waitForCondition(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not reached within deadline")
}
