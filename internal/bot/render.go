package bot

import (
	"fmt"
	"strings"

	"github.com/slack-go/slack"

	"github.com/tickbot/tickbot/internal/store"
)

// Attachment colors, matching the notice palette of the checklist cards:
// info/prompt, success, recoverable warning, hard error.
const (
	colorInfo    = "#3498db"
	colorSuccess = "#2ecc71"
	colorWarn    = "#e67e22"
	colorError   = "#e74c3c"
)

const footerTimeout = "You have 60 seconds to respond."

// Card is the one structured-message shape the bot ever sends: a title, a
// body, a color, and an optional footer.
type Card struct {
	Title  string
	Text   string
	Color  string
	Footer string
}

func (c Card) msgOption() slack.MsgOption {
	return slack.MsgOptionAttachments(slack.Attachment{
		Title:  c.Title,
		Text:   c.Text,
		Color:  c.Color,
		Footer: c.Footer,
	})
}

// glyph is one reaction marker: the reaction name used on the wire and
// the emoji rendered in menu text.
type glyph struct {
	name  string
	emoji string
}

// selectGlyphs are the ten numbered markers used by every selection menu
// and by task pages. Menus never offer more than ten choices.
var selectGlyphs = []glyph{
	{name: "one", emoji: "1️⃣"},
	{name: "two", emoji: "2️⃣"},
	{name: "three", emoji: "3️⃣"},
	{name: "four", emoji: "4️⃣"},
	{name: "five", emoji: "5️⃣"},
	{name: "six", emoji: "6️⃣"},
	{name: "seven", emoji: "7️⃣"},
	{name: "eight", emoji: "8️⃣"},
	{name: "nine", emoji: "9️⃣"},
	{name: "keycap_ten", emoji: "\U0001f51f"},
}

// Navigation and confirmation markers.
const (
	reactionPrev    = "arrow_left"
	reactionNext    = "arrow_right"
	reactionConfirm = "white_check_mark"
	reactionCancel  = "x"
)

const (
	maxSelectOptions = 10
	tasksPerPage     = 10
)

// glyphIndex returns the zero-based position of a numbered marker, or -1
// if the reaction is not one of the ten selection glyphs.
func glyphIndex(name string) int {
	for i, g := range selectGlyphs {
		if g.name == name {
			return i
		}
	}
	return -1
}

// renderMenu renders one "glyph - name" line per option.
func renderMenu(names []string) string {
	lines := make([]string, len(names))
	for i, name := range names {
		lines[i] = fmt.Sprintf("%s - %s", selectGlyphs[i].emoji, name)
	}
	return strings.Join(lines, "\n")
}

// renderTaskLines renders tasks numbered from start+1, each with its
// completion marker.
func renderTaskLines(tasks []store.Task, start int) string {
	lines := make([]string, len(tasks))
	for i, task := range tasks {
		mark := "❌"
		if task.Completed {
			mark = "✅"
		}
		lines[i] = fmt.Sprintf("%d. %s %s", start+i+1, mark, task.Description)
	}
	return strings.Join(lines, "\n")
}

// truncate shortens s to at most maxLen runes, replacing the tail with an
// ellipsis. Counting runes keeps multi-byte input from being split
// mid-character.
func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return "..."
	}
	return string(runes[:maxLen-3]) + "..."
}

// splitTasks splits comma-separated task input, trimming whitespace and
// dropping empty fragments. Duplicates are preserved.
func splitTasks(input string) []string {
	var tasks []string
	for _, part := range strings.Split(input, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			tasks = append(tasks, part)
		}
	}
	return tasks
}

// parseMentions extracts user IDs from mention tokens in free text. Input
// is split on whitespace; only tokens of the form <@...> count. The
// decoration (angle brackets, @, legacy ! marker, |display suffix) is
// stripped to obtain the bare user ID.
func parseMentions(input string) []string {
	var ids []string
	for _, token := range strings.Fields(input) {
		if !strings.HasPrefix(token, "<@") || !strings.HasSuffix(token, ">") {
			continue
		}
		id := strings.TrimSuffix(strings.TrimPrefix(token, "<@"), ">")
		id = strings.TrimPrefix(id, "!")
		if cut := strings.Index(id, "|"); cut >= 0 {
			id = id[:cut]
		}
		if id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

// formatMention renders a user ID back into Slack mention syntax.
func formatMention(id string) string {
	return "<@" + id + ">"
}

// parseCommand extracts the command verb and trailing argument from a
// mention-prefixed message like "<@UBOT> create". Leading mention tokens
// are skipped; the first remaining word is the verb, lowercased.
func parseCommand(text string) (verb, arg string) {
	fields := strings.Fields(text)
	i := 0
	for i < len(fields) && strings.HasPrefix(fields[i], "<@") {
		i++
	}
	if i == len(fields) {
		return "", ""
	}
	verb = strings.ToLower(fields[i])
	arg = strings.Join(fields[i+1:], " ")
	return verb, arg
}
