package ui

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

// showSettingsPage renders the profile form. Email, registration number and
// user ID are read-only; only the display name can change.
func (a *App) showSettingsPage() {
	form := tview.NewForm()
	form.SetBorder(true)
	form.SetTitle(" " + a.loc.T("settings.title") + " ")
	form.SetTitleColor(ColorTitle)
	form.SetBorderColor(ColorBorder)
	form.SetBackgroundColor(ColorBg)
	form.SetFieldBackgroundColor(tcell.NewRGBColor(0, 0, 64))
	form.SetLabelColor(ColorHighlight)

	form.AddInputField(a.loc.T("settings.display_name"), "", 40, nil, nil)
	form.AddTextView(a.loc.T("settings.email"), a.loc.T("contacts.loading"), 40, 1, true, false)
	form.AddTextView(a.loc.T("settings.registration_number"), "", 40, 1, true, false)
	form.AddTextView(a.loc.T("settings.user_id"), "", 40, 1, true, false)

	form.AddButton(a.loc.T("settings.save"), func() {
		name := strings.TrimSpace(form.GetFormItem(0).(*tview.InputField).GetText())
		if name == "" {
			return
		}
		go func() {
			if err := a.gateway.UpdateProfile(a.ctx, name); err != nil {
				a.toastAsync(errorText(a, "settings.save_failed", err), true)
				return
			}
			// Reload so the cached identity reflects the new name.
			profile, err := a.gateway.Profile(a.ctx)
			if err == nil {
				a.store.SetIdentity(profile.Identity())
			}
			a.toastAsync(a.loc.T("settings.saved"), false)
		}()
	})
	form.AddButton(a.loc.T("auth.back"), func() {
		a.pages.RemovePage(pageSettings)
		a.pages.SwitchToPage(pageMain)
		a.app.SetFocus(a.contactsList)
	})

	form.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if event.Key() == tcell.KeyEsc {
			a.pages.RemovePage(pageSettings)
			a.pages.SwitchToPage(pageMain)
			a.app.SetFocus(a.contactsList)
			return nil
		}
		return event
	})

	a.pages.AddPage(pageSettings, center(form, 64, 15), true, true)
	a.app.SetFocus(form)

	go func() {
		profile, err := a.gateway.Profile(a.ctx)
		if err != nil {
			a.toastAsync(err.Error(), true)
			return
		}
		a.app.QueueUpdateDraw(func() {
			form.GetFormItem(0).(*tview.InputField).SetText(profile.Name)
			form.GetFormItem(1).(*tview.TextView).SetText(profile.Email)
			reg := profile.RegistrationNumber
			if reg == "" {
				reg = "N/A"
			}
			form.GetFormItem(2).(*tview.TextView).SetText(reg)
			form.GetFormItem(3).(*tview.TextView).SetText(fmt.Sprintf("ID: %d", profile.ID))
		})
	}()
}
