// Package ui is the terminal front end: auth forms, contact list, chat pane,
// friend-request management and settings, rendered with tview.
package ui

import (
	"context"
	"log"

	"sapcca/client/internal/api"
	"sapcca/client/internal/chat"
	"sapcca/client/internal/config"
	"sapcca/client/internal/friends"
	"sapcca/client/internal/localization"
	"sapcca/client/internal/models"
	"sapcca/client/internal/realtime"
	"sapcca/client/internal/session"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

// Page names for the tview page stack.
const (
	pageAuth     = "auth"
	pageMain     = "main"
	pageFriends  = "friends"
	pageSettings = "settings"
)

// App wires the session store, gateway, relay and chat controller into a
// tview application. It owns the full client lifecycle from login to
// logout.
type App struct {
	app   *tview.Application
	pages *tview.Pages

	cfg     config.Config
	store   *session.Store
	gateway *api.Client
	relay   *realtime.Channel
	friends *friends.Service
	loc     *localization.Localizer

	ctx    context.Context
	cancel context.CancelFunc

	ctrl       *chat.Controller
	ctrlCancel context.CancelFunc

	// UI state, touched only on the UI goroutine.
	contacts     []models.Contact
	contactsList *tview.List
	chatView     *tview.TextView
	messageInput *tview.InputField
	statusBar    *tview.TextView
	statusHint   string
	toastSeq     int
	snapshot     chat.Snapshot
	lastChatErr  string
}

// NewApp assembles the client. The gateway's 401 hook is installed here: it
// invalidates the session and drops the user back onto the auth page.
func NewApp(cfg config.Config, store *session.Store, loc *localization.Localizer) *App {
	a := &App{
		cfg:   cfg,
		store: store,
		loc:   loc,
		relay: realtime.NewChannel(cfg.RelayURL),
	}
	a.gateway = api.New(cfg.APIBaseURL, store, a.onUnauthorized)
	a.friends = friends.NewService(a.gateway)
	return a
}

// Run starts the UI event loop and blocks until quit.
func (a *App) Run() error {
	a.ctx, a.cancel = context.WithCancel(context.Background())
	defer a.cancel()

	a.app = tview.NewApplication()
	a.pages = tview.NewPages()

	background := tview.NewBox().SetBackgroundColor(ColorBg)
	a.pages.AddPage("background", background, true, true)

	if a.store.Authenticated() && !a.store.Expired() {
		a.enterMain()
	} else {
		a.store.Invalidate()
		a.showAuthPage("")
	}

	return a.app.SetRoot(a.pages, true).EnableMouse(false).Run()
}

// onUnauthorized is the global 401 handler: credential gone, back to the
// unauthenticated entry surface. May fire on any goroutine.
func (a *App) onUnauthorized() {
	a.store.Invalidate()
	a.app.QueueUpdateDraw(func() {
		a.teardownChat()
		a.showAuthPage(a.loc.T("auth.session_expired"))
	})
}

// enterMain transitions from authenticated state into the main surface:
// profile load, relay connect, controller start, contact list fetch.
func (a *App) enterMain() {
	a.showMainPage()

	if err := a.relay.Connect(); err != nil {
		log.Printf("relay unavailable, running REST-only: %v", err)
		a.toast(a.loc.T("relay.offline"), true)
	}

	go func() {
		profile, err := a.gateway.Profile(a.ctx)
		if err != nil {
			// A 401 already routed to auth via the hook; anything else
			// is a transient failure worth a toast.
			if err != api.ErrUnauthorized {
				a.toastAsync(err.Error(), true)
			}
			return
		}
		a.store.SetIdentity(profile.Identity())

		a.app.QueueUpdateDraw(func() {
			a.startController(profile.ID)
			a.refreshContacts()
		})
	}()
}

// startController (re)creates the chat controller for the authenticated
// user and points the relay dispatch at it.
func (a *App) startController(selfID int) {
	if a.ctrlCancel != nil {
		a.ctrlCancel()
	}
	ctrlCtx, cancel := context.WithCancel(a.ctx)
	a.ctrlCancel = cancel

	a.ctrl = chat.NewController(selfID, a.gateway, a.relay, func(s chat.Snapshot) {
		a.app.QueueUpdateDraw(func() {
			a.snapshot = s
			a.renderChat()
		})
	})
	a.relay.OnMessage(a.ctrl.HandlePush)
	go a.ctrl.Run(ctrlCtx)
}

// teardownChat stops the controller and clears conversation state, used on
// logout and session expiry. The handler detach and the room leave happen
// here, directly against the relay: the reducer may already be gone and
// cannot be relied on for its own cleanup.
func (a *App) teardownChat() {
	if a.ctrlCancel != nil {
		a.ctrlCancel()
		a.ctrlCancel = nil
	}
	a.relay.OnMessage(nil)
	if room := a.relay.CurrentRoom(); room != "" {
		a.relay.LeaveRoom(room)
	}
	a.ctrl = nil
	a.snapshot = chat.Snapshot{}
	a.contacts = nil
}

// logout clears the whole session and returns to the auth page.
func (a *App) logout() {
	a.teardownChat()
	a.store.Clear()
	a.showAuthPage("")
}

func (a *App) confirmLogout() {
	modal := tview.NewModal().
		SetText(a.loc.T("modal.logout_confirm")).
		AddButtons([]string{a.loc.T("modal.yes"), a.loc.T("modal.no")}).
		SetDoneFunc(func(buttonIndex int, buttonLabel string) {
			a.pages.RemovePage("logout-modal")
			if buttonIndex == 0 {
				a.logout()
			}
		})
	a.pages.AddPage("logout-modal", modal, true, true)
}

func (a *App) quit() {
	if a.relay != nil {
		a.relay.Close()
	}
	a.cancel()
	a.app.Stop()
}

// globalKeys handles the keys shared by every authenticated page.
func (a *App) globalKeys(event *tcell.EventKey) *tcell.EventKey {
	switch event.Key() {
	case tcell.KeyF2:
		a.showFriendsPage()
		return nil
	case tcell.KeyF3:
		a.showSettingsPage()
		return nil
	case tcell.KeyF10:
		a.confirmLogout()
		return nil
	}
	return event
}

func (a *App) selfID() int {
	if id, ok := a.store.Identity(); ok {
		return id.ID
	}
	return 0
}
