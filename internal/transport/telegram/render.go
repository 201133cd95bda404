package telegram

import (
	"fmt"
	"html"
	"strings"

	"github.com/requestarr/requestarr/internal/catalog"
	"github.com/requestarr/requestarr/internal/orchestrator"
	"github.com/requestarr/requestarr/internal/status"
)

const overviewLimit = 200

// renderResult builds the reply text and, when an action is offered,
// the confirmation keyboard.
func renderResult(result *orchestrator.CommandResult) (string, *inlineKeyboardMarkup) {
	var sb strings.Builder

	sb.WriteString(statusLine(result))

	if result.Item.Overview != "" {
		overview := result.Item.Overview
		if len(overview) > overviewLimit {
			overview = overview[:overviewLimit-3] + "..."
		}
		sb.WriteString("\n\n")
		sb.WriteString(html.EscapeString(overview))
	}

	if len(result.UnknownSeasons) > 0 {
		sb.WriteString(fmt.Sprintf("\n\n⚠️ No such season(s): %s.", joinInts(result.UnknownSeasons)))
	}

	if result.Item.PosterURL != "" {
		sb.WriteString("\n")
		sb.WriteString(result.Item.PosterURL)
	}

	if result.Action == nil {
		return sb.String(), nil
	}

	if result.Action.MediaType == catalog.MediaTypeTV && len(result.Action.Seasons) > 0 {
		sb.WriteString(fmt.Sprintf("\n\nRequest season(s) %s?", joinInts(result.Action.Seasons)))
	} else {
		sb.WriteString(fmt.Sprintf("\n\nRequest this %s?", result.Action.MediaType))
	}

	return sb.String(), confirmKeyboard(result.Action)
}

func statusLine(result *orchestrator.CommandResult) string {
	title := titleWithYear(result.Item.Title, result.Item.Year)

	switch result.Status {
	case status.Available:
		return fmt.Sprintf("✅ %s is already available.", title)
	case status.PartiallyAvailable:
		return fmt.Sprintf("🟡 %s is partially available.", title)
	case status.Pending:
		return fmt.Sprintf("⏳ %s has already been requested.", title)
	case status.NotRequested:
		return fmt.Sprintf("🔍 Found %s. It has not been requested yet.", title)
	default:
		return fmt.Sprintf("❓ Found %s, but its status could not be determined.", title)
	}
}

func confirmKeyboard(action *orchestrator.OfferedAction) *inlineKeyboardMarkup {
	confirmText := fmt.Sprintf("Yes, request this %s", action.MediaType)
	if action.MediaType == catalog.MediaTypeTV && len(action.Seasons) > 0 {
		confirmText = fmt.Sprintf("Yes, request season(s) %s", joinInts(action.Seasons))
	}

	return &inlineKeyboardMarkup{
		InlineKeyboard: [][]inlineKeyboardButton{
			{{Text: confirmText, CallbackData: callbackConfirm + action.ID}},
			{{Text: "No, cancel", CallbackData: callbackCancel + action.ID}},
		},
	}
}

// renderSubmitted builds the confirmation outcome message.
func renderSubmitted(result *orchestrator.ConfirmResult) string {
	title := titleWithYear(result.Action.Title, result.Action.Year)
	if result.Action.MediaType == catalog.MediaTypeTV && len(result.Action.Seasons) > 0 {
		return fmt.Sprintf("✅ Requested %s, season(s) %s.", title, joinInts(result.Action.Seasons))
	}
	return fmt.Sprintf("✅ Requested %s.", title)
}

// renderFailure maps every failure kind to a distinct message category.
func renderFailure(err error) string {
	switch orchestrator.Classify(err) {
	case orchestrator.FailureEmptyQuery:
		return "Tell me what to look for, e.g. \"The Matrix\" or \"Game of Thrones s03\"."
	case orchestrator.FailureExtraction:
		return "I couldn't make sense of that request. Try rephrasing it with the title first."
	case orchestrator.FailureNoMatch:
		return "Nothing in the catalog matches that. Check the spelling or add the release year."
	case orchestrator.FailureAmbiguous:
		return "That matches several titles. Add the release year to narrow it down."
	case orchestrator.FailureNoValidSeasons:
		return "That show has none of the seasons you asked for."
	case orchestrator.FailureStaleAction:
		return "This request is no longer valid. Send the request again."
	case orchestrator.FailureSubmit:
		return "The request could not be submitted to the backend. Try again later."
	default:
		return "Sorry, an unexpected error occurred while processing your request."
	}
}

func titleWithYear(title string, year int) string {
	escaped := "<b>" + html.EscapeString(title) + "</b>"
	if year > 0 {
		return fmt.Sprintf("%s (%d)", escaped, year)
	}
	return escaped
}

func joinInts(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprintf("%d", v)
	}
	return strings.Join(parts, ", ")
}
