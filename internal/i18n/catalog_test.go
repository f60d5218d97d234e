package i18n

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func TestEmbedded_DefaultLocale(t *testing.T) {
	c, err := Embedded()
	require.NoError(t, err)
	assert.Equal(t, language.English, c.Locale())
	assert.Equal(t, "New Window", c.GetMessage("NEW_WINDOW"))
}

func TestEmbedded_MatchesPreferred(t *testing.T) {
	tests := []struct {
		preferred []string
		expected  string
	}{
		{[]string{"de-DE"}, "Neues Fenster"},
		{[]string{"fr"}, "Nouvelle fenêtre"},
		{[]string{"ja-JP,en;q=0.5"}, "新しいウィンドウ"},
		{[]string{"zh-CN"}, "新建窗口"},
		{[]string{"pt-BR"}, "New Window"},
	}

	for _, tt := range tests {
		t.Run(tt.preferred[0], func(t *testing.T) {
			c, err := Embedded(tt.preferred...)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, c.GetMessage("NEW_WINDOW"))
		})
	}
}

func TestGetMessage_FallsBackToDefault(t *testing.T) {
	fsys := fstest.MapFS{
		"locales/en/messages.json": {Data: []byte(`{"NEW_WINDOW":{"message":"New Window"},"ONLY_EN":{"message":"English only"}}`)},
		"locales/de/messages.json": {Data: []byte(`{"NEW_WINDOW":{"message":"Neues Fenster"}}`)},
	}

	c, err := Load(fsys, "en", "de")
	require.NoError(t, err)
	assert.Equal(t, "Neues Fenster", c.GetMessage("NEW_WINDOW"))
	assert.Equal(t, "English only", c.GetMessage("ONLY_EN"))
	assert.Equal(t, "", c.GetMessage("MISSING"))
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(fstest.MapFS{}, "en")
	assert.Error(t, err)

	_, err = Load(fstest.MapFS{
		"locales/de/messages.json": {Data: []byte(`{}`)},
	}, "en")
	assert.Error(t, err, "default locale must exist")

	_, err = Load(fstest.MapFS{
		"locales/en/messages.json": {Data: []byte(`not json`)},
	}, "en")
	assert.Error(t, err)
}
