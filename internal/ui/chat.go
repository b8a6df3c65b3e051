package ui

import (
	"fmt"
	"strings"

	"sapcca/client/internal/chat"
	"sapcca/client/internal/models"
)

// renderChat redraws the chat pane from the latest controller snapshot.
// Called on the UI goroutine only.
func (a *App) renderChat() {
	if a.chatView == nil {
		return
	}

	s := a.snapshot
	if s.Err != nil {
		// Toast once per distinct failure, not on every redraw.
		if s.Err.Error() != a.lastChatErr {
			a.lastChatErr = s.Err.Error()
			a.toast(a.loc.T("chat.history_failed")+": "+s.Err.Error(), true)
		}
	} else {
		a.lastChatErr = ""
	}

	switch s.State {
	case chat.StateIdle:
		a.chatView.SetTitle("")
		a.chatView.SetText("\n\n   " + a.loc.T("chat.welcome"))
		return
	case chat.StateOpening:
		a.chatView.SetTitle(" " + s.Peer.DisplayNameOrID() + " ")
		a.chatView.SetText("\n\n   " + a.loc.T("chat.loading"))
		return
	}

	a.chatView.SetTitle(" " + s.Peer.DisplayNameOrID() + " ")

	if len(s.Messages) == 0 {
		a.chatView.SetText("\n\n   " + a.loc.T("chat.empty"))
		return
	}

	selfID := a.selfID()
	var sb strings.Builder
	for _, msg := range s.Messages {
		sb.WriteString(formatMessage(msg, selfID))
	}
	a.chatView.SetText(sb.String())
	a.chatView.ScrollToEnd()
}

// formatMessage renders one chat line: outgoing white, incoming yellow,
// matching the contact-pane conventions.
func formatMessage(msg models.Message, selfID int) string {
	if msg.From == selfID {
		return fmt.Sprintf("[gray]%s[-] [white]→ %s[-]\n", clockPart(msg.Time), msg.Text)
	}
	return fmt.Sprintf("[gray]%s[-] [yellow]← %s[-]\n", clockPart(msg.Time), msg.Text)
}

// clockPart extracts HH:MM:SS from an ISO-8601 timestamp, falling back to
// the raw value for anything shorter.
func clockPart(iso string) string {
	if len(iso) >= 19 {
		return iso[11:19]
	}
	return iso
}

// submitMessage forwards the input to the controller. The controller treats
// whitespace-only text as a no-op, so the input is only cleared for text
// that was actually submitted.
func (a *App) submitMessage() {
	if a.ctrl == nil || a.messageInput == nil {
		return
	}
	text := a.messageInput.GetText()
	if strings.TrimSpace(text) == "" {
		return
	}
	a.ctrl.Send(text)
	a.messageInput.SetText("")
}
