package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestRunStressPlain(t *testing.T) {
	defer goleak.VerifyNone(t)

	var out, logs bytes.Buffer
	err := runStress(context.Background(), &out, &logs, settings{
		Threads:   2,
		Tasks:     500,
		Producers: 3,
		Timeout:   10000,
		LogLevel:  "info",
	})
	require.NoError(t, err)

	assert.Contains(t, out.String(), "500/500 plain tasks ready on 2 workers")
	assert.Contains(t, out.String(), `amgo_tasks_submitted_total{kind="plain"} 500`)
	assert.Contains(t, out.String(), "amgo_booted 1")
	assert.Contains(t, logs.String(), "amgo: booted")
	assert.Contains(t, logs.String(), "amgo: shut down")
}

func TestRunStressAwaitable(t *testing.T) {
	defer goleak.VerifyNone(t)

	var out bytes.Buffer
	err := runStress(context.Background(), &out, &bytes.Buffer{}, settings{
		Threads:   4,
		Tasks:     200,
		Producers: 2,
		Awaitable: true,
		Timeout:   10000,
		LogLevel:  "quiet",
	})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "200/200 awaitable tasks ready")
	assert.Contains(t, out.String(), `amgo_tasks_submitted_total{kind="awaitable"} 200`)
	assert.Contains(t, out.String(), `amgo_tasks_registered{kind="awaitable"} 0`)
}

func TestRunStressInvalidSettings(t *testing.T) {
	base := settings{Tasks: 1, Producers: 1, Timeout: 1000, LogLevel: "quiet"}

	bad := base
	bad.Producers = 0
	assert.Error(t, runStress(context.Background(), &bytes.Buffer{}, &bytes.Buffer{}, bad))

	bad = base
	bad.Tasks = -1
	assert.Error(t, runStress(context.Background(), &bytes.Buffer{}, &bytes.Buffer{}, bad))

	bad = base
	bad.Timeout = 0
	assert.Error(t, runStress(context.Background(), &bytes.Buffer{}, &bytes.Buffer{}, bad))

	bad = base
	bad.LogLevel = "loud"
	assert.Error(t, runStress(context.Background(), &bytes.Buffer{}, &bytes.Buffer{}, bad))
}

func TestStressCommandConfigFile(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	cfg := filepath.Join(dir, "amgo.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("threads: 1\ntasks: 30\nproducers: 2\nlog-level: quiet\n"), 0o600))

	var out bytes.Buffer
	cmd := rootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	// The flag wins over the config file.
	cmd.SetArgs([]string{"stress", "--config", cfg, "--tasks", "40"})
	require.NoError(t, cmd.Execute())

	assert.True(t, strings.HasPrefix(out.String(), "40/40 plain tasks ready on 1 workers"), out.String())
}

func TestLoadDefaults(t *testing.T) {
	v := viper.New()
	v.Set("tasks", 7)
	v.Set("awaitable", true)
	s := load(v)
	assert.Equal(t, 7, s.Tasks)
	assert.True(t, s.Awaitable)
	assert.Zero(t, s.Producers)
}

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	cmd := rootCommand()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"version"})
	require.NoError(t, cmd.Execute())
	assert.True(t, strings.HasPrefix(out.String(), "amgo "))
}
