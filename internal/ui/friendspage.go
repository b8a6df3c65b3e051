package ui

import (
	"fmt"

	"sapcca/client/internal/models"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

// friendTab selects which request collection the friends page shows.
type friendTab int

const (
	tabPending friendTab = iota
	tabOutgoing
	tabIgnored
)

var tabTitles = map[friendTab]string{
	tabPending:  "friends.tab_pending",
	tabOutgoing: "friends.tab_outgoing",
	tabIgnored:  "friends.tab_ignored",
}

// showFriendsPage renders the friend-request surface: one list, three tabs
// cycled with Tab, mirroring the web client's pending/outgoing/ignored
// views.
func (a *App) showFriendsPage() {
	list := tview.NewList()
	list.ShowSecondaryText(true)
	list.SetBorder(true)
	list.SetTitleColor(ColorTitle)
	list.SetBorderColor(ColorBorder)
	list.SetBackgroundColor(ColorBg)
	list.SetMainTextColor(ColorFg)
	list.SetSecondaryTextColor(tcell.ColorGray)
	list.SetSelectedBackgroundColor(ColorHighlight)

	hint := tview.NewTextView()
	hint.SetTextColor(ColorTitle)
	hint.SetBackgroundColor(ColorStatusBar)
	hint.SetTextAlign(tview.AlignCenter)
	hint.SetText(a.loc.T("friends.keys"))

	tab := tabPending

	root := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(list, 0, 1, true).
		AddItem(hint, 1, 0, false)

	reload := func() {}
	reload = func() {
		list.SetTitle(fmt.Sprintf(" %s ─ %s ", a.loc.T("friends.title"), a.loc.T(tabTitles[tab])))
		list.Clear()
		list.AddItem(a.loc.T("contacts.loading"), "", 0, nil)

		switch tab {
		case tabPending:
			go func() {
				requests, err := a.friends.RefreshPending(a.ctx)
				a.app.QueueUpdateDraw(func() {
					a.renderPending(list, requests, err, reload)
				})
			}()
		case tabOutgoing:
			go func() {
				requests, err := a.friends.RefreshOutgoing(a.ctx)
				a.app.QueueUpdateDraw(func() {
					a.renderOutgoing(list, requests, err, reload)
				})
			}()
		case tabIgnored:
			go func() {
				requests, err := a.friends.RefreshIgnored(a.ctx)
				a.app.QueueUpdateDraw(func() {
					a.renderIgnored(list, requests, err, reload)
				})
			}()
		}
	}

	root.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyTab:
			tab = (tab + 1) % 3
			reload()
			return nil
		case tcell.KeyEsc:
			a.pages.RemovePage(pageFriends)
			a.pages.SwitchToPage(pageMain)
			a.app.SetFocus(a.contactsList)
			return nil
		}
		return a.globalKeys(event)
	})

	a.pages.AddPage(pageFriends, root, true, true)
	a.app.SetFocus(list)
	reload()
}

func (a *App) renderPending(list *tview.List, requests []models.PendingRequest, err error, reload func()) {
	list.Clear()
	if err != nil {
		a.toast(err.Error(), true)
		return
	}
	if len(requests) == 0 {
		list.AddItem(a.loc.T("friends.empty_pending"), "", 0, nil)
		return
	}
	for _, req := range requests {
		r := req
		list.AddItem(
			r.SenderName,
			fmt.Sprintf("ID: %d ─ %s", r.SenderID, r.Timestamp),
			0,
			func() { a.pendingActionModal(r, reload) },
		)
	}
}

// pendingActionModal offers accept/ignore for one incoming request.
func (a *App) pendingActionModal(req models.PendingRequest, reload func()) {
	modal := tview.NewModal().
		SetText(req.SenderName).
		AddButtons([]string{
			a.loc.T("friends.accept"),
			a.loc.T("friends.ignore"),
			a.loc.T("auth.back"),
		}).
		SetDoneFunc(func(buttonIndex int, buttonLabel string) {
			a.pages.RemovePage("friend-action")
			switch buttonIndex {
			case 0:
				go func() {
					if err := a.friends.Accept(a.ctx, req.RequestID); err != nil {
						a.toastAsync(err.Error(), true)
						return
					}
					a.toastAsync(a.loc.T("friends.accepted"), false)
					a.app.QueueUpdateDraw(reload)
				}()
			case 1:
				go func() {
					if err := a.friends.Reject(a.ctx, req.RequestID); err != nil {
						a.toastAsync(err.Error(), true)
						return
					}
					a.toastAsync(a.loc.T("friends.rejected"), false)
					a.app.QueueUpdateDraw(reload)
				}()
			}
		})
	a.pages.AddPage("friend-action", modal, true, true)
}

func (a *App) renderOutgoing(list *tview.List, requests []models.OutgoingRequest, err error, reload func()) {
	list.Clear()
	if err != nil {
		a.toast(err.Error(), true)
		return
	}
	if len(requests) == 0 {
		list.AddItem(a.loc.T("friends.empty_outgoing"), "", 0, nil)
		return
	}
	for _, req := range requests {
		r := req
		list.AddItem(
			r.ReceiverName,
			fmt.Sprintf("ID: %d ─ %s", r.ReceiverID, r.Timestamp),
			0,
			func() {
				go func() {
					if err := a.friends.Cancel(a.ctx, r.RequestID); err != nil {
						a.toastAsync(err.Error(), true)
						return
					}
					a.toastAsync(a.loc.T("friends.cancelled"), false)
					a.app.QueueUpdateDraw(reload)
				}()
			},
		)
	}
}

func (a *App) renderIgnored(list *tview.List, requests []models.PendingRequest, err error, reload func()) {
	list.Clear()
	if err != nil {
		a.toast(err.Error(), true)
		return
	}
	if len(requests) == 0 {
		list.AddItem(a.loc.T("friends.empty_ignored"), "", 0, nil)
		return
	}
	for _, req := range requests {
		r := req
		list.AddItem(
			r.SenderName,
			fmt.Sprintf("ID: %d ─ %s", r.SenderID, r.Timestamp),
			0,
			func() {
				go func() {
					if err := a.friends.Delete(a.ctx, r.RequestID); err != nil {
						a.toastAsync(err.Error(), true)
						return
					}
					a.toastAsync(a.loc.T("friends.deleted"), false)
					a.app.QueueUpdateDraw(reload)
				}()
			},
		)
	}
}
