package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"cash4edu/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionCommand(t *testing.T) {
	cmd := rootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"version"})
	require.NoError(t, cmd.Execute())
	assert.Equal(t, "cash4edu version "+Version+"\n", out.String())
}

func TestLogoutCommandClearsStore(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "client.db")
	t.Setenv("CASH4EDU_SQLITE_PATH", dbPath)
	t.Setenv("CASH4EDU_STORAGE_BACKEND", "sqlite")
	ctx := context.Background()

	a, err := newApp(ctx, "", "error", nil)
	require.NoError(t, err)
	a.store.SetUserData(ctx, models.UserRecord{"id": "u1"})
	a.store.SetToken(ctx, "jwt")
	a.close()

	cmd := rootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"logout", "--log-level", "error"})
	require.NoError(t, cmd.Execute())
	assert.Equal(t, "Signed out\n", out.String())

	a, err = newApp(ctx, "", "error", nil)
	require.NoError(t, err)
	defer a.close()
	assert.Empty(t, a.store.GetToken(ctx))
	assert.Nil(t, a.store.GetUserData(ctx))
}

func TestStderrToasts(t *testing.T) {
	var buf bytes.Buffer
	n := stderrToasts{w: &buf}
	n.Notify(models.Toast{Type: models.ToastError, Text1: "Error", Text2: "Unable to load your profile. Please try again."})
	n.Notify(models.Toast{Type: models.ToastSuccess, Text1: "Signed out"})
	assert.Equal(t, "[error] Error: Unable to load your profile. Please try again.\n[success] Signed out\n", buf.String())
}
