package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const planReply = `{"plan_title":"Seaside walk","greeting_message":"Let's go!","spots":[{"name":"Cafe A","address":"1-1 Minato","description":"Terrace","pet_condition":"Dogs OK","parking_info":"P1 500 yen"}]}`

// fakeAssistant answers plan requests with a plan and echoes everything else.
func fakeAssistant(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Message string `json:"message"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if strings.Contains(req.Message, "プラン") {
			_, _ = w.Write([]byte(planReply))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"response": "echo: " + req.Message})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func setup(t *testing.T) string {
	t.Helper()
	srv := fakeAssistant(t)
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	body := fmt.Sprintf("log:\n  level: error\ndatabase:\n  path: %s\nassistant:\n  base_url: %s\n",
		filepath.Join(dir, "test.db"), srv.URL)
	require.NoError(t, os.WriteFile(cfgPath, []byte(body), 0o600))
	return cfgPath
}

func execute(t *testing.T, cfgPath string, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := rootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(""))
	cmd.SetArgs(append([]string{"--config", cfgPath}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestCLI_ProfileChatPlanFavorites(t *testing.T) {
	cfg := setup(t)

	_, err := execute(t, cfg, "profile", "set", "-f", "dog_name=Pochi", "-f", "breed=other", "-f", "other_breed=Akita mix", "-f", "owner_residence=Yokohama")
	require.NoError(t, err)

	out, err := execute(t, cfg, "profile", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "Name: Pochi")
	assert.Contains(t, out, "Breed: Akita mix")

	out, err = execute(t, cfg, "chat", "send", "hello", "there")
	require.NoError(t, err)
	assert.Contains(t, out, "echo: hello there")

	out, err = execute(t, cfg, "chat", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "user: hello there")
	assert.Contains(t, out, "assistant: echo: hello there")

	out, err = execute(t, cfg, "plan", "create", "--mood", "beach")
	require.NoError(t, err)
	assert.Contains(t, out, "== Seaside walk")
	assert.Contains(t, out, "Parking: P1 500 yen")

	out, err = execute(t, cfg, "fav", "toggle", "Cafe A", "--memo", "great coffee")
	require.NoError(t, err)
	assert.Contains(t, out, `Added "Cafe A"`)

	out, err = execute(t, cfg, "plan", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "* 1. Cafe A - 1-1 Minato")

	out, err = execute(t, cfg, "fav", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Cafe A - 1-1 Minato")
	assert.Contains(t, out, "memo: great coffee")

	out, err = execute(t, cfg, "export")
	require.NoError(t, err)
	assert.Contains(t, out, "dog_name: Pochi")
	assert.Contains(t, out, "plan_title: Seaside walk")

	_, err = execute(t, cfg, "reset")
	require.Error(t, err)

	_, err = execute(t, cfg, "reset", "--yes")
	require.NoError(t, err)

	out, err = execute(t, cfg, "fav", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No favorites yet.")
}

func TestCLI_ChatPlanMarksFavorites(t *testing.T) {
	cfg := setup(t)

	_, err := execute(t, cfg, "fav", "toggle", "Cafe A")
	require.NoError(t, err)

	out, err := execute(t, cfg, "chat", "send", "any プラン ideas?")
	require.NoError(t, err)
	assert.Contains(t, out, "* 1. Cafe A - 1-1 Minato")
}

func TestCLI_PlanCreateNeedsLocation(t *testing.T) {
	cfg := setup(t)

	_, err := execute(t, cfg, "plan", "create")
	require.Error(t, err)
	assert.Contains(t, userMessage(err), "area")
}

func TestCLI_ProfileSetRejectsUnknownField(t *testing.T) {
	cfg := setup(t)

	_, err := execute(t, cfg, "profile", "set", "-f", "wings=2")
	assert.Error(t, err)
}

func TestCLI_MaintainNow(t *testing.T) {
	cfg := setup(t)

	_, err := execute(t, cfg, "maintain", "--now")
	assert.NoError(t, err)
}

func TestCLI_Shell(t *testing.T) {
	cfg := setup(t)

	var out bytes.Buffer
	cmd := rootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetIn(strings.NewReader("hi\n/plan Kamakura\n/fav Cafe A\n/quit\n"))
	cmd.SetArgs([]string{"--config", cfg, "shell"})
	require.NoError(t, cmd.ExecuteContext(context.Background()))

	assert.Contains(t, out.String(), "echo: hi")
	assert.Contains(t, out.String(), "== Seaside walk")

	listOut, err := execute(t, cfg, "fav", "list")
	require.NoError(t, err)
	assert.Contains(t, listOut, "Cafe A")
}

func TestCLI_ShellFavNeedsName(t *testing.T) {
	cfg := setup(t)

	var out, errOut bytes.Buffer
	cmd := rootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader("/fav\n/fav   \n/quit\n"))
	cmd.SetArgs([]string{"--config", cfg, "shell"})
	require.NoError(t, cmd.ExecuteContext(context.Background()))
	assert.Contains(t, errOut.String(), "Usage: /fav <spot name>")

	listOut, err := execute(t, cfg, "fav", "list")
	require.NoError(t, err)
	assert.Contains(t, listOut, "No favorites yet.")
}
