package templates

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender_Welcome(t *testing.T) {
	out, err := Render(Welcome, map[string]any{"Username": "alice", "CompanyName": "Pics"})
	require.NoError(t, err)

	assert.Equal(t, "Welcome to Pics", out.Subject)
	assert.Contains(t, out.Text, "Hi alice")
	assert.Contains(t, out.HTML, "<h2>Hi alice,</h2>")
}

func TestRender_EscapesHTML(t *testing.T) {
	out, err := Render(AccountRemoved, map[string]any{"Username": "<b>x</b>", "CompanyName": "Pics"})
	require.NoError(t, err)

	assert.NotContains(t, out.HTML, "<b>x</b>")
	assert.Contains(t, out.Text, "<b>x</b>")
}

func TestRender_Unknown(t *testing.T) {
	_, err := Render("nope", nil)
	assert.Error(t, err)
}
