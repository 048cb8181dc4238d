// Package bot implements a Slack checklist bot. It uses the
// slack-go/slack library with Socket Mode for WebSocket-based
// communication and drives every command as an interactive flow: send a
// prompt, await a constrained reply or reaction with a timeout, validate,
// retry or advance, and clean up transient messages on exit.
package bot

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/slack-go/slack"
	"github.com/slack-go/slack/slackevents"
	"github.com/slack-go/slack/socketmode"

	"github.com/tickbot/tickbot/internal/store"
)

// Config holds configuration for the bot.
type Config struct {
	BotToken string // xoxb-... Slack bot token
	AppToken string // xapp-... Slack app-level token (for Socket Mode)
	Debug    bool
}

// Bot serves checklist commands over Slack. Each command handler runs in
// its own goroutine so multiple users can have flows in flight; the store
// carries its own lock, and each flow is scoped to one owner's data.
type Bot struct {
	client     ChatAPI
	socketMode *socketmode.Client
	store      *store.Store
	waiters    *waiters
	debug      bool

	// Bot identity for filtering out own messages and reactions.
	botUserID string

	// Socket Mode connection state, read by the health server.
	connected int32

	// Run may be re-entered by a reconnect loop; the events consumer is
	// started once per Bot.
	eventsOnce sync.Once
}

// New creates a new checklist bot.
func New(cfg Config, st *store.Store) (*Bot, error) {
	if cfg.BotToken == "" {
		return nil, fmt.Errorf("bot token is required")
	}
	if cfg.AppToken == "" {
		return nil, fmt.Errorf("app token is required for Socket Mode")
	}
	if !strings.HasPrefix(cfg.AppToken, "xapp-") {
		return nil, fmt.Errorf("app token must start with xapp-")
	}

	client := slack.New(
		cfg.BotToken,
		slack.OptionDebug(cfg.Debug),
		slack.OptionAppLevelToken(cfg.AppToken),
	)

	socketClient := socketmode.New(
		client,
		socketmode.OptionDebug(cfg.Debug),
	)

	return &Bot{
		client:     client,
		socketMode: socketClient,
		store:      st,
		waiters:    newWaiters(),
		debug:      cfg.Debug,
	}, nil
}

// newBotForTest creates a Bot with an injectable mock ChatAPI. No Slack
// connection or token validation is performed.
func newBotForTest(api ChatAPI, st *store.Store) *Bot {
	return &Bot{
		client:    api,
		store:     st,
		waiters:   newWaiters(),
		botUserID: "UBOT",
	}
}

// Run starts the bot event loop. Blocks until the context is canceled.
func (b *Bot) Run(ctx context.Context) error {
	authResp, err := b.client.AuthTest()
	if err != nil {
		log.Printf("tickbot: warning: failed to get bot user ID: %v", err)
	} else {
		b.botUserID = authResp.UserID
		log.Printf("tickbot: bot user ID: %s", b.botUserID)
	}

	b.eventsOnce.Do(func() {
		go b.consumeEvents(ctx, b.socketMode.Events)
	})

	return b.socketMode.RunContext(ctx)
}

// consumeEvents drains the Socket Mode event channel until the channel
// closes or the context is canceled.
func (b *Bot) consumeEvents(ctx context.Context, events chan socketmode.Event) {
	for {
		select {
		case evt, ok := <-events:
			if !ok {
				return
			}
			b.handleEvent(ctx, evt)
		case <-ctx.Done():
			return
		}
	}
}

func (b *Bot) setConnected(connected bool) {
	if connected {
		atomic.StoreInt32(&b.connected, 1)
	} else {
		atomic.StoreInt32(&b.connected, 0)
	}
}

// IsConnected reports whether this bot's Socket Mode connection is up.
func (b *Bot) IsConnected() bool {
	return atomic.LoadInt32(&b.connected) == 1
}

// ---------- Event dispatch ----------

func (b *Bot) handleEvent(ctx context.Context, evt socketmode.Event) {
	switch evt.Type {
	case socketmode.EventTypeConnecting:
		log.Println("tickbot: connecting to Socket Mode...")

	case socketmode.EventTypeConnected:
		log.Println("tickbot: connected to Socket Mode")
		b.setConnected(true)

	case socketmode.EventTypeConnectionError:
		log.Printf("tickbot: connection error: %v", evt.Data)
		b.setConnected(false)

	case socketmode.EventTypeEventsAPI:
		eventsAPIEvent, ok := evt.Data.(slackevents.EventsAPIEvent)
		if !ok {
			return
		}
		b.socketMode.Ack(*evt.Request)
		b.handleEventsAPI(ctx, eventsAPIEvent)
	}
}

func (b *Bot) handleEventsAPI(ctx context.Context, event slackevents.EventsAPIEvent) {
	if event.Type != slackevents.CallbackEvent {
		return
	}

	switch ev := event.InnerEvent.Data.(type) {
	case *slackevents.AppMentionEvent:
		if ev.User == b.botUserID {
			return
		}
		b.handleMention(ctx, ev)

	case *slackevents.MessageEvent:
		if ev.SubType != "" || ev.BotID != "" || ev.User == b.botUserID {
			return
		}
		// Replies are only meaningful to a flow suspended at an await
		// point; everything else is channel chatter.
		b.waiters.offerMessage(ev)

	case *slackevents.ReactionAddedEvent:
		if ev.User == b.botUserID {
			return
		}
		b.waiters.offerReaction(ev)
	}
}

// handleMention parses the command verb from a mention and launches its
// flow in a dedicated goroutine so waits never block the event loop.
func (b *Bot) handleMention(ctx context.Context, ev *slackevents.AppMentionEvent) {
	verb, arg := parseCommand(ev.Text)
	if verb == "" {
		return
	}
	go b.dispatch(ctx, verb, arg, ev.Channel, ev.User, ev.TimeStamp)
}

// dispatch runs one command flow to completion. All flow-level errors are
// caught here and converted to a user notice plus a log entry; none are
// allowed to terminate the process.
func (b *Bot) dispatch(ctx context.Context, verb, arg, channelID, userID, commandTS string) {
	s := b.newSession(ctx, channelID, userID, commandTS)

	var err error
	switch verb {
	case "create":
		err = b.runCreate(s)
	case "add":
		err = b.runAdd(s)
	case "check":
		err = b.runCheck(s)
	case "view":
		err = b.runView(s)
	case "clear":
		err = b.runClear(s)
	case "share":
		err = b.runShare(s)
	case "lists":
		err = b.runLists(s)
	case "help":
		err = b.runHelp(s, arg)
	default:
		s.finish(Card{
			Title: "Unknown Command ⚠️",
			Text:  fmt.Sprintf("`%s` is not a command I know. Type `@TickBot help` to see what I can do.", truncate(verb, 40)),
			Color: colorWarn,
		}, noticeGrace)
		return
	}

	if err != nil {
		log.Printf("tickbot: %s command failed for user %s: %v", verb, userID, err)
		s.finish(Card{
			Title: "Error ⚠️",
			Text:  "Something went wrong. Please try again.",
			Color: colorError,
		}, noticeGrace)
	}
}

// persist writes the store to disk. A failure is logged and surfaced as a
// generic error; the in-memory mutation has already happened and is not
// rolled back.
func (b *Bot) persist() error {
	if err := b.store.Save(); err != nil {
		log.Printf("tickbot: save checklists: %v", err)
		return err
	}
	return nil
}

// ---------- Transport helpers ----------
//
// Deletion and reaction failures (message already gone, missing
// permission) are logged and never escalated; they must not block a
// flow's primary outcome.

func (b *Bot) deleteMessage(ref msgRef) {
	if ref.timestamp == "" {
		return
	}
	if _, _, err := b.client.DeleteMessage(ref.channelID, ref.timestamp); err != nil {
		log.Printf("tickbot: delete message %s: %v", ref.timestamp, err)
	}
}

func (b *Bot) addReaction(name string, ref msgRef) {
	item := slack.NewRefToMessage(ref.channelID, ref.timestamp)
	if err := b.client.AddReaction(name, item); err != nil {
		log.Printf("tickbot: add reaction %s: %v", name, err)
	}
}

func (b *Bot) removeReaction(name string, ref msgRef) {
	item := slack.NewRefToMessage(ref.channelID, ref.timestamp)
	if err := b.client.RemoveReaction(name, item); err != nil {
		log.Printf("tickbot: remove reaction %s: %v", name, err)
	}
}
