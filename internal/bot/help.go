package bot

import (
	"fmt"
	"sort"
	"strings"
)

// helpTopics maps each command verb to its one-line usage summary.
var helpTopics = map[string]string{
	"create": "Create a new checklist. You will be prompted for its name.",
	"add":    "Add tasks to a checklist. Separate multiple tasks with commas.",
	"check":  "Mark tasks as complete (or incomplete) using numbered reactions.",
	"view":   "Show the tasks in one of your checklists.",
	"clear":  "Remove every task from a checklist, after confirmation.",
	"share":  "Copy a checklist to other users by mentioning them.",
	"lists":  "Show the names of all your checklists.",
	"help":   "Show this overview, or `help <command>` for details on one command.",
}

// runHelp shows the command overview, or detail on a single command when
// an argument is given.
func (b *Bot) runHelp(s *session, arg string) error {
	arg = strings.ToLower(strings.TrimSpace(arg))

	if arg != "" {
		text, ok := helpTopics[arg]
		if !ok {
			s.finish(Card{
				Title: "Unknown Command ⚠️",
				Text:  fmt.Sprintf("Command `%s` not found. Use `help` to see all commands.", truncate(arg, 40)),
				Color: colorError,
			}, outcomeGrace)
			return nil
		}
		s.finish(Card{
			Title: fmt.Sprintf("Help: `%s`", arg),
			Text:  text,
			Color: colorInfo,
		}, viewGrace)
		return nil
	}

	verbs := make([]string, 0, len(helpTopics))
	for verb := range helpTopics {
		verbs = append(verbs, verb)
	}
	sort.Strings(verbs)

	var sb strings.Builder
	for _, verb := range verbs {
		fmt.Fprintf(&sb, "`%s`: %s\n", verb, helpTopics[verb])
	}

	s.finish(Card{
		Title:  "TickBot Commands 📖",
		Text:   sb.String(),
		Color:  colorInfo,
		Footer: "Mention the bot followed by a command, e.g. `@TickBot create`.",
	}, viewGrace)
	return nil
}
