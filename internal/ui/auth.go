package ui

import (
	"errors"
	"strings"

	"sapcca/client/internal/api"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

// showAuthPage displays the unauthenticated entry surface: the login form,
// optionally with a notice (e.g. "session expired") above it.
func (a *App) showAuthPage(notice string) {
	a.pages.RemovePage(pageMain)
	a.pages.RemovePage(pageFriends)
	a.pages.RemovePage(pageSettings)

	form := tview.NewForm()
	form.SetBorder(true)
	form.SetTitle(" " + a.loc.T("auth.title") + " ─ " + a.loc.T("auth.subtitle") + " ")
	form.SetTitleColor(ColorTitle)
	form.SetBorderColor(ColorBorder)
	form.SetBackgroundColor(ColorBg)
	form.SetFieldBackgroundColor(tcell.NewRGBColor(0, 0, 64))
	form.SetLabelColor(ColorHighlight)

	email := a.store.RememberedEmail()
	remember := email != ""

	form.AddInputField(a.loc.T("auth.email"), email, 40, nil, nil)
	form.AddPasswordField(a.loc.T("auth.password"), "", 40, '*', nil)
	form.AddCheckbox(a.loc.T("auth.remember_email"), remember, nil)

	if notice != "" {
		form.AddTextView("", "[red]"+notice+"[-]", 40, 1, true, false)
	}

	form.AddButton(a.loc.T("auth.login"), func() {
		emailValue := strings.TrimSpace(form.GetFormItem(0).(*tview.InputField).GetText())
		password := form.GetFormItem(1).(*tview.InputField).GetText()
		rememberValue := form.GetFormItem(2).(*tview.Checkbox).IsChecked()
		a.doLogin(emailValue, password, rememberValue)
	})
	form.AddButton(a.loc.T("auth.signup"), func() { a.showSignupPage() })
	form.AddButton(a.loc.T("auth.quit"), func() { a.quit() })

	a.pages.AddPage(pageAuth, center(form, 60, 15+boolToInt(notice != "")), true, true)
	a.app.SetFocus(form)
}

func (a *App) doLogin(email, password string, remember bool) {
	go func() {
		result, err := a.gateway.Login(a.ctx, email, password)
		if err != nil {
			a.app.QueueUpdateDraw(func() {
				a.showAuthPage(errorText(a, "auth.login_failed", err))
			})
			return
		}

		if err := a.store.SetCredentials(result.Token, result.User); err != nil {
			a.app.QueueUpdateDraw(func() {
				a.showAuthPage(err.Error())
			})
			return
		}
		if remember {
			a.store.SetRememberedEmail(email)
		} else {
			a.store.SetRememberedEmail("")
		}

		a.app.QueueUpdateDraw(func() {
			a.pages.RemovePage(pageAuth)
			a.enterMain()
		})
	}()
}

// showSignupPage renders the registration form with live password-strength
// feedback.
func (a *App) showSignupPage() {
	form := tview.NewForm()
	form.SetBorder(true)
	form.SetTitle(" " + a.loc.T("auth.signup") + " ")
	form.SetTitleColor(ColorTitle)
	form.SetBorderColor(ColorBorder)
	form.SetBackgroundColor(ColorBg)
	form.SetFieldBackgroundColor(tcell.NewRGBColor(0, 0, 64))
	form.SetLabelColor(ColorHighlight)

	form.AddInputField(a.loc.T("auth.name"), "", 40, nil, nil)
	form.AddInputField(a.loc.T("auth.email"), "", 40, nil, nil)
	form.AddPasswordField(a.loc.T("auth.password"), "", 40, '*', nil)
	form.AddTextView("", a.loc.Tf("auth.password_strength", a.loc.T(strengthLabel(0))), 40, 1, true, false)
	form.AddInputField(a.loc.T("auth.registration_number"), "", 40, nil, nil)

	const strengthItem = 3
	password := form.GetFormItem(2).(*tview.InputField)
	password.SetChangedFunc(func(text string) {
		label := a.loc.T(strengthLabel(PasswordStrength(text)))
		form.GetFormItem(strengthItem).(*tview.TextView).
			SetText(a.loc.Tf("auth.password_strength", label))
	})

	form.AddButton(a.loc.T("auth.signup"), func() {
		input := api.RegisterInput{
			Name:               strings.TrimSpace(form.GetFormItem(0).(*tview.InputField).GetText()),
			Email:              strings.TrimSpace(form.GetFormItem(1).(*tview.InputField).GetText()),
			Password:           form.GetFormItem(2).(*tview.InputField).GetText(),
			RegistrationNumber: strings.TrimSpace(form.GetFormItem(4).(*tview.InputField).GetText()),
		}
		a.doSignup(input)
	})
	form.AddButton(a.loc.T("auth.back"), func() {
		a.pages.RemovePage("signup")
		a.showAuthPage("")
	})

	a.pages.AddPage("signup", center(form, 64, 17), true, true)
	a.app.SetFocus(form)
}

func (a *App) doSignup(input api.RegisterInput) {
	go func() {
		if err := a.gateway.Register(a.ctx, input); err != nil {
			a.toastAsync(errorText(a, "auth.signup_failed", err), true)
			return
		}
		a.app.QueueUpdateDraw(func() {
			a.pages.RemovePage("signup")
			a.showOTPPage(input.Email)
		})
	}()
}

// showOTPPage asks for the one-time code that completes registration.
func (a *App) showOTPPage(email string) {
	form := tview.NewForm()
	form.SetBorder(true)
	form.SetTitle(" " + a.loc.Tf("auth.otp_prompt", email) + " ")
	form.SetTitleColor(ColorTitle)
	form.SetBorderColor(ColorBorder)
	form.SetBackgroundColor(ColorBg)
	form.SetFieldBackgroundColor(tcell.NewRGBColor(0, 0, 64))
	form.SetLabelColor(ColorHighlight)

	form.AddInputField(a.loc.T("auth.otp"), "", 10, tview.InputFieldInteger, nil)
	form.AddButton(a.loc.T("auth.verify"), func() {
		otp := strings.TrimSpace(form.GetFormItem(0).(*tview.InputField).GetText())
		go func() {
			result, err := a.gateway.VerifyOTP(a.ctx, email, otp)
			if err != nil {
				a.toastAsync(errorText(a, "auth.signup_failed", err), true)
				return
			}
			if err := a.store.SetCredentials(result.Token, result.User); err != nil {
				a.toastAsync(err.Error(), true)
				return
			}
			a.app.QueueUpdateDraw(func() {
				a.pages.RemovePage("otp")
				a.enterMain()
			})
		}()
	})
	form.AddButton(a.loc.T("auth.back"), func() {
		a.pages.RemovePage("otp")
		a.showAuthPage("")
	})

	a.pages.AddPage("otp", center(form, 70, 9), true, true)
	a.app.SetFocus(form)
}

// center wraps a primitive in a fixed-size centered flex.
func center(p tview.Primitive, width, height int) tview.Primitive {
	return tview.NewFlex().
		AddItem(nil, 0, 1, false).
		AddItem(tview.NewFlex().SetDirection(tview.FlexRow).
			AddItem(nil, 0, 1, false).
			AddItem(p, height, 0, true).
			AddItem(nil, 0, 1, false), width, 0, true).
		AddItem(nil, 0, 1, false)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// errorText renders an API failure under a localized headline, preferring
// the backend's message when it sent one.
func errorText(a *App, key string, err error) string {
	var apiErr *api.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return a.loc.T(key) + ": " + apiErr.Message
	}
	return a.loc.T(key)
}
