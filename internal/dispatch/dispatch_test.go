package dispatch

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestShellSpawnRunsCommand(t *testing.T) {
	marker := filepath.Join(t.TempDir(), "marker")

	require.NoError(t, Shell{}.Spawn("touch "+marker))

	require.Eventually(t, func() bool {
		_, err := os.Stat(marker)
		return err == nil
	}, 5*time.Second, 10*time.Millisecond)
}

func TestShellSpawnDoesNotWaitForCompletion(t *testing.T) {
	start := time.Now()
	require.NoError(t, Shell{}.Spawn("sleep 10"))
	require.Less(t, time.Since(start), 2*time.Second)
}

func TestShellSpawnFailedCommandStillSpawns(t *testing.T) {
	// sh starts fine even when the command inside it will fail; failure of
	// the child is invisible to fire-and-forget dispatch.
	require.NoError(t, Shell{}.Spawn("definitely-not-a-real-binary-xyz"))
}

func TestSpawnErrorFormatting(t *testing.T) {
	underlying := errors.New("fork failed")
	err := &SpawnError{Command: "lights-on", Err: underlying}
	require.Contains(t, err.Error(), `"lights-on"`)
	require.ErrorIs(t, err, underlying)
}
