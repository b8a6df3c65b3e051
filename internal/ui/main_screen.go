package ui

import (
	"fmt"

	"sapcca/client/internal/models"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

// showMainPage builds the main surface: contact list on the left, the chat
// pane on the right, a status bar underneath.
func (a *App) showMainPage() {
	a.contactsList = tview.NewList()
	a.contactsList.ShowSecondaryText(true)
	a.contactsList.SetBorder(true)
	a.contactsList.SetTitle(" " + a.loc.T("contacts.title") + " ")
	a.contactsList.SetTitleColor(ColorTitle)
	a.contactsList.SetBorderColor(ColorBorder)
	a.contactsList.SetBackgroundColor(ColorBg)
	a.contactsList.SetMainTextColor(ColorFg)
	a.contactsList.SetSecondaryTextColor(tcell.ColorGray)
	a.contactsList.SetSelectedBackgroundColor(ColorHighlight)

	a.chatView = tview.NewTextView()
	a.chatView.SetBorder(true)
	a.chatView.SetBorderColor(ColorBorder)
	a.chatView.SetBackgroundColor(ColorBg)
	a.chatView.SetTextColor(ColorFg)
	a.chatView.SetDynamicColors(true)
	a.chatView.SetScrollable(true)
	a.chatView.ScrollToEnd()

	a.messageInput = tview.NewInputField()
	a.messageInput.SetLabel("> ")
	a.messageInput.SetFieldWidth(0)
	a.messageInput.SetBackgroundColor(ColorBg)
	a.messageInput.SetFieldBackgroundColor(tcell.NewRGBColor(0, 0, 64))
	a.messageInput.SetFieldTextColor(ColorFg)
	a.messageInput.SetLabelColor(ColorHighlight)
	a.messageInput.SetBorder(true)
	a.messageInput.SetTitle(" " + a.loc.T("chat.input_label") + " ")
	a.messageInput.SetTitleColor(ColorTitle)
	a.messageInput.SetBorderColor(ColorBorder)
	a.messageInput.SetDoneFunc(func(key tcell.Key) {
		if key == tcell.KeyEnter {
			a.submitMessage()
		}
	})

	a.statusBar = tview.NewTextView()
	a.statusBar.SetTextColor(ColorTitle)
	a.statusBar.SetTextAlign(tview.AlignCenter)
	a.setStatusHint(a.loc.T("chat.keys"))

	chatPane := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(a.chatView, 0, 1, false).
		AddItem(a.messageInput, 3, 0, false)

	columns := tview.NewFlex().
		AddItem(a.contactsList, 32, 0, true).
		AddItem(chatPane, 0, 1, false)

	root := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(columns, 0, 1, true).
		AddItem(a.statusBar, 1, 0, false)
	root.SetBackgroundColor(ColorBg)

	root.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if event.Key() == tcell.KeyEsc {
			a.closeChat()
			return nil
		}
		return a.globalKeys(event)
	})

	a.pages.AddPage(pageMain, root, true, true)
	a.pages.SwitchToPage(pageMain)
	a.app.SetFocus(a.contactsList)
	a.renderChat()
}

// refreshContacts reloads the friend list, showing a skeleton row while the
// fetch is in flight.
func (a *App) refreshContacts() {
	if a.contactsList == nil {
		return
	}
	a.contactsList.Clear()
	a.contactsList.AddItem(a.loc.T("contacts.loading"), "", 0, nil)

	go func() {
		contacts, err := a.friends.RefreshContacts(a.ctx)
		if err != nil {
			a.toastAsync(err.Error(), true)
			return
		}
		a.app.QueueUpdateDraw(func() {
			a.contacts = contacts
			a.renderContacts()
		})
	}()
}

func (a *App) renderContacts() {
	if a.contactsList == nil {
		return
	}
	a.contactsList.Clear()

	if len(a.contacts) == 0 {
		a.contactsList.AddItem(a.loc.T("contacts.empty_title"), a.loc.T("contacts.empty_hint"), 0, nil)
		a.contactsList.AddItem(a.loc.T("contacts.add_friend"), "", 'a', a.showAddFriendModal)
		return
	}

	for _, contact := range a.contacts {
		c := contact
		a.contactsList.AddItem(
			c.DisplayNameOrID(),
			fmt.Sprintf("ID: %d", c.ID),
			0,
			func() { a.openChat(c) },
		)
	}
	a.contactsList.AddItem(a.loc.T("contacts.add_friend"), "", 'a', a.showAddFriendModal)
}

// openChat hands the selected contact to the controller and moves focus to
// the input. Rendering follows from the controller's snapshots.
func (a *App) openChat(contact models.Contact) {
	if a.ctrl == nil {
		return
	}
	a.ctrl.Open(contact)
	a.app.SetFocus(a.messageInput)
}

// closeChat navigates away from the active conversation.
func (a *App) closeChat() {
	if a.ctrl != nil {
		a.ctrl.Close()
	}
	a.app.SetFocus(a.contactsList)
}

// showAddFriendModal prompts for an email or ID and sends the request.
func (a *App) showAddFriendModal() {
	form := tview.NewForm()
	form.SetBorder(true)
	form.SetTitle(" " + a.loc.T("contacts.add_friend") + " ")
	form.SetTitleColor(ColorTitle)
	form.SetBorderColor(ColorBorder)
	form.SetBackgroundColor(ColorBg)
	form.SetFieldBackgroundColor(tcell.NewRGBColor(0, 0, 64))
	form.SetLabelColor(ColorHighlight)

	form.AddInputField(a.loc.T("contacts.add_friend_prompt"), "", 40, nil, nil)
	form.AddButton(a.loc.T("contacts.add_friend"), func() {
		identifier := form.GetFormItem(0).(*tview.InputField).GetText()
		a.pages.RemovePage("add-friend")
		go func() {
			if err := a.friends.Request(a.ctx, identifier); err != nil {
				a.toastAsync(err.Error(), true)
				return
			}
			a.toastAsync(a.loc.T("friends.request_sent"), false)
		}()
	})
	form.AddButton(a.loc.T("auth.back"), func() {
		a.pages.RemovePage("add-friend")
	})

	a.pages.AddPage("add-friend", center(form, 64, 9), true, true)
	a.app.SetFocus(form)
}
