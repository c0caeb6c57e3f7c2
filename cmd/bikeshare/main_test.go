package main

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestAppClose_LogsCloseError(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	a := &app{
		logger: zap.New(core),
		close:  func() error { return errors.New("database is locked") },
	}

	a.Close()

	entries := logs.FilterMessage("close store").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "database is locked", entries[0].ContextMap()["error"])
}

func TestAppClose_NoStore(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	a := &app{logger: zap.New(core)}

	a.Close()

	assert.Zero(t, logs.Len())
}

func TestBuild_MissingDataset(t *testing.T) {
	dir := t.TempDir()
	g := &Globals{
		Daily:    filepath.Join(dir, "day.csv"),
		Hourly:   filepath.Join(dir, "hour.csv"),
		LogLevel: "error",
	}

	a, err := g.build(context.Background())
	assert.Error(t, err)
	assert.Nil(t, a)
}

func TestNewLogger_InvalidLevel(t *testing.T) {
	_, err := newLogger("loud")
	assert.Error(t, err)
}
