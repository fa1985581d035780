package commands

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/neochat/relay/internal/directory"
	"github.com/neochat/relay/internal/handlers"
	"github.com/neochat/relay/internal/kv"
	"github.com/neochat/relay/internal/mailbox"
	"github.com/neochat/relay/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startRelay(t *testing.T) string {
	t.Helper()
	store := kv.NewMemoryStore()
	router := handlers.NewRouter(directory.NewService(store), mailbox.NewService(store, mailbox.Config{}), handlers.Options{})
	server := httptest.NewServer(router.Handler())
	t.Cleanup(server.Close)
	return server.URL
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	out := new(bytes.Buffer)
	root.SetOut(out)
	root.SetErr(new(bytes.Buffer))
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestSendPollAckCommands(t *testing.T) {
	url := startRelay(t)

	out, err := run(t, "--relay", url, "send", "bob-hash", "Q0lQSEVS", "--id", "m1", "--from", "alice")
	require.NoError(t, err)
	assert.Equal(t, "m1", strings.TrimSpace(out))

	out, err = run(t, "--relay", url, "poll", "bob-hash", "--ack")
	require.NoError(t, err)
	var messages []models.Envelope
	require.NoError(t, json.Unmarshal([]byte(out), &messages))
	require.Len(t, messages, 1)
	assert.Equal(t, "alice", messages[0].From)

	out, err = run(t, "--relay", url, "poll", "bob-hash")
	require.NoError(t, err)
	assert.Equal(t, "[]", strings.TrimSpace(out))
}

func TestProfileCommands(t *testing.T) {
	url := startRelay(t)

	_, err := run(t, "--relay", url, "profile", "set", "pk1", "alice", "--status", "online")
	require.NoError(t, err)

	out, err := run(t, "--relay", url, "profile", "get", "pk1")
	require.NoError(t, err)
	var profile models.Profile
	require.NoError(t, json.Unmarshal([]byte(out), &profile))
	assert.Equal(t, "alice", profile.Username)
	assert.Equal(t, models.StatusOnline, profile.Status)

	_, err = run(t, "--relay", url, "profile", "get", "ghost")
	assert.Error(t, err)
}

func TestRelayFlagRequired(t *testing.T) {
	t.Setenv("NEOCHAT_RELAY_URL", "")
	relayURL = ""
	_, err := run(t, "--relay", "", "status")
	assert.Error(t, err)
}
