package main_test

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	main "github.com/fwojciec/mangaingest/cmd/mangaingest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMain(t *testing.T) *main.Main {
	t.Helper()
	m := main.NewMain()
	m.DBPath = filepath.Join(t.TempDir(), "test.db")
	m.Config = main.DefaultConfig()
	m.Config.Browser.Enabled = false
	return m
}

func TestMain_Run_Help(t *testing.T) {
	t.Parallel()

	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	err := newTestMain(t).Run(context.Background(), []string{"--help"}, stdout, stderr)
	require.NoError(t, err)

	helpOutput := stdout.String()
	for _, cmd := range []string{"serve", "series", "chapters", "enqueue", "similar", "refresh-similarity", "platforms"} {
		assert.Contains(t, helpOutput, cmd, "Help should mention %s command", cmd)
	}
	assert.Contains(t, helpOutput, "Usage:")
	assert.Contains(t, helpOutput, "Flags:")
}

func TestMain_Run_NoArgs(t *testing.T) {
	t.Parallel()

	err := newTestMain(t).Run(context.Background(), nil, &bytes.Buffer{}, &bytes.Buffer{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no command specified")
}

func TestMain_Run_Platforms(t *testing.T) {
	t.Parallel()

	stdout := &bytes.Buffer{}
	m := newTestMain(t)

	err := m.Run(context.Background(), []string{"platforms"}, stdout, &bytes.Buffer{})

	require.NoError(t, err)
	assert.Equal(t, "ARES\nASHEQ\nAZORA\nHIJALA\nLEKMANGA\nROCKS\n", stdout.String())
	assert.Nil(t, m.DB, "platforms does not open the database")
}

func TestMain_Run_SimilarOnEmptyDatabase(t *testing.T) {
	t.Parallel()

	stdout := &bytes.Buffer{}

	err := newTestMain(t).Run(context.Background(), []string{"similar", "series-1"}, stdout, &bytes.Buffer{})

	require.NoError(t, err)
	assert.Equal(t, "No similar series found.\n", stdout.String())
}

func TestMain_Run_RefreshSimilarityOnEmptyDatabase(t *testing.T) {
	t.Parallel()

	stdout := &bytes.Buffer{}

	err := newTestMain(t).Run(context.Background(), []string{"refresh-similarity"}, stdout, &bytes.Buffer{})

	require.NoError(t, err)
	assert.Equal(t, "Refreshed 0 similarity edges\n", stdout.String())
}

func TestMain_Run_MissingInfrastructure(t *testing.T) {
	t.Parallel()

	t.Run("series needs a bucket", func(t *testing.T) {
		t.Parallel()

		stderr := &bytes.Buffer{}

		err := newTestMain(t).Run(context.Background(), []string{"series", "One Piece"}, &bytes.Buffer{}, stderr)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "no S3 bucket configured")
		assert.Contains(t, stderr.String(), "s3.bucket")
	})

	t.Run("enqueue needs brokers", func(t *testing.T) {
		t.Parallel()

		stderr := &bytes.Buffer{}

		err := newTestMain(t).Run(context.Background(), []string{"enqueue", "series", "One Piece"}, &bytes.Buffer{}, stderr)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "no Kafka brokers configured")
		assert.Contains(t, stderr.String(), "kafka.brokers")
	})
}

func TestMain_Run_UnknownCommand(t *testing.T) {
	t.Parallel()

	err := newTestMain(t).Run(context.Background(), []string{"bogus"}, &bytes.Buffer{}, &bytes.Buffer{})

	require.Error(t, err)
}
