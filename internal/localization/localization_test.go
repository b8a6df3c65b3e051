package localization_test

import (
	"os"
	"path/filepath"
	"testing"

	"sapcca/client/internal/localization"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalizer_EmbeddedEnglish(t *testing.T) {
	l, err := localization.NewLocalizer("en")
	require.NoError(t, err)

	assert.Equal(t, "Login", l.T("auth.login"))
	assert.Equal(t, "No Contacts Yet", l.T("contacts.empty_title"))
}

func TestLocalizer_UnknownKeyFallsBackToKey(t *testing.T) {
	l, err := localization.NewLocalizer("en")
	require.NoError(t, err)

	assert.Equal(t, "no.such.key", l.T("no.such.key"))
}

func TestLocalizer_UnknownLanguageFallsBackToEnglish(t *testing.T) {
	l, err := localization.NewLocalizer("uk")
	require.NoError(t, err)

	assert.Equal(t, "Login", l.T("auth.login"))
}

func TestLocalizer_LoadDirOverrides(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(
		filepath.Join(dir, "uk.json"),
		[]byte(`{"auth.login": "Увійти"}`),
		0o600,
	))

	l, err := localization.NewLocalizer("uk")
	require.NoError(t, err)
	require.NoError(t, l.LoadDir(dir))

	assert.Equal(t, "Увійти", l.T("auth.login"))
	// Keys absent from the override still fall back to English.
	assert.Equal(t, "Sign Up", l.T("auth.signup"))
}

func TestLocalizer_Tf(t *testing.T) {
	l, err := localization.NewLocalizer("en")
	require.NoError(t, err)

	assert.Equal(t, "Enter the OTP sent to ada@example.com", l.Tf("auth.otp_prompt", "ada@example.com"))
}
