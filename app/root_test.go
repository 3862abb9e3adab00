package app

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoPowerDNS-Admin/plugin-settings/internal/db/controller/setting"
	"github.com/GoPowerDNS-Admin/plugin-settings/internal/settings/registry"
)

const testConfig = `
[DB]
GormEngine = "sqlite"
Name = %q
MaxOpenConns = 1

[Log]
LogLevel = "error"
AppName = "plugin-settings"
ServiceName = "plugin-settings"

[Cache]
Enabled = true

[Plugins.slack]
Name = "Slack"
Active = true

[Plugins.slack.Settings.webhook_url]
Required = true
Validate = "url"

[Plugins.slack.Settings.channel]
Default = "#general"

[Plugins.slack.Settings.token]
Hidden = true

[Plugins.slack.UserSettings.notify]
Default = "mentions"
Choices = ["all", "mentions", "none"]

[Plugins.barcode]
Name = "Barcode"

[Plugins.barcode.Settings.format]
Default = "qr"
`

// writeConfig writes main.toml with a database in the same temp directory.
func writeConfig(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	content := fmt.Sprintf(testConfig, filepath.Join(dir, "settings.db"))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.toml"), []byte(content), 0o600))

	return dir + "/"
}

func run(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer

	c := newCLI()
	c.root.SetOut(&out)
	c.root.SetErr(&out)
	c.root.SetArgs(append([]string{"--config", dir}, args...))

	err := c.Execute()

	return out.String(), err
}

func TestGetSet(t *testing.T) {
	dir := writeConfig(t)

	out, err := run(t, dir, "get", "slack", "channel")
	require.NoError(t, err)
	assert.Equal(t, "#general\n", out)

	_, err = run(t, dir, "set", "slack", "channel", "#ops")
	require.NoError(t, err)

	out, err = run(t, dir, "get", "slack", "channel", "--cache")
	require.NoError(t, err)
	assert.Equal(t, "#ops\n", out)

	out, err = run(t, dir, "get", "slack", "webhook_url", "--backup", "none")
	require.NoError(t, err)
	assert.Equal(t, "none\n", out)

	out, err = run(t, dir, "get", "slack", "notify", "--user", "7")
	require.NoError(t, err)
	assert.Equal(t, "mentions\n", out)
}

func TestUserSettings(t *testing.T) {
	dir := writeConfig(t)

	out, err := run(t, dir, "user", "add", "alice")
	require.NoError(t, err)
	id := strings.TrimSpace(out)

	_, err = run(t, dir, "set", "slack", "notify", "all", "--user", id)
	require.NoError(t, err)

	out, err = run(t, dir, "get", "slack", "notify", "--user", id)
	require.NoError(t, err)
	assert.Equal(t, "all\n", out)

	_, err = run(t, dir, "set", "slack", "notify", "sometimes", "--user", id)
	require.Error(t, err)

	_, err = run(t, dir, "user", "delete", id)
	require.NoError(t, err)

	out, err = run(t, dir, "get", "slack", "notify", "--user", id)
	require.NoError(t, err)
	assert.Equal(t, "mentions\n", out, "settings of a deleted user are gone")

	_, err = run(t, dir, "user", "delete", "abc")
	require.Error(t, err)
}

func TestErrors(t *testing.T) {
	dir := writeConfig(t)

	testCases := []struct {
		name string
		args []string
	}{
		{name: "unknown plugin", args: []string{"get", "jira", "url"}},
		{name: "unknown key", args: []string{"get", "slack", "nope"}},
		{name: "invalid value", args: []string{"set", "slack", "webhook_url", "not a url"}},
		{name: "missing args", args: []string{"set", "slack", "channel"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := run(t, dir, tc.args...)
			require.Error(t, err)
		})
	}

	_, err := run(t, t.TempDir()+"/", "catalog")
	require.Error(t, err, "missing main.toml")
}

func TestFailedCommandClosesDaemon(t *testing.T) {
	dir := writeConfig(t)

	c := newCLI()
	c.root.SetOut(&bytes.Buffer{})
	c.root.SetErr(&bytes.Buffer{})
	c.root.SetArgs([]string{"--config", dir, "get", "slack", "nope"})

	require.Error(t, c.Execute())
	require.NotNil(t, c.d)

	assert.Equal(t, registry.Inactive, c.d.Registry().State())

	_, err := c.d.Store().PluginConfig(context.Background(), "slack")
	require.ErrorIs(t, err, setting.ErrStorageUnavailable, "database is closed")
}

func TestCheck(t *testing.T) {
	dir := writeConfig(t)

	_, err := run(t, dir, "check", "slack")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "webhook_url")

	_, err = run(t, dir, "set", "slack", "webhook_url", "https://hooks.example.com/x")
	require.NoError(t, err)

	out, err := run(t, dir, "check", "slack")
	require.NoError(t, err)
	assert.Equal(t, "ok\n", out)
}

func TestDump(t *testing.T) {
	dir := writeConfig(t)

	_, err := run(t, dir, "set", "slack", "channel", "#ops")
	require.NoError(t, err)

	out, err := run(t, dir, "dump", "slack")
	require.NoError(t, err)
	assert.Equal(t, "channel=#ops\ntoken=\nwebhook_url=\n", out)
}

func TestCatalog(t *testing.T) {
	dir := writeConfig(t)

	out, err := run(t, dir, "catalog")
	require.NoError(t, err)
	assert.Contains(t, out, "slack\tglobal\tchannel\trequired=false\tdefault=\"#general\"\n")
	assert.Contains(t, out, "slack\tuser\tnotify\t")
	assert.NotContains(t, out, "barcode", "inactive plugins are not catalogued")
	assert.NotContains(t, out, "token")

	out, err = run(t, dir, "catalog", "--hidden")
	require.NoError(t, err)
	assert.Contains(t, out, "slack\tglobal\ttoken\t")
}
