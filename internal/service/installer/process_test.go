package installer

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"syscall"
	"testing"

	"github.com/mitchellh/go-ps"
	"github.com/stretchr/testify/require"
)

// fakeProcess is a process table entry.
type fakeProcess struct {
	pid        int
	executable string
}

func (p fakeProcess) Pid() int           { return p.pid }
func (p fakeProcess) PPid() int          { return 1 }
func (p fakeProcess) Executable() string { return p.executable }

// stubProcesses replaces the process table for the test and counts lookups.
func stubProcesses(t *testing.T, processes ...ps.Process) *int {
	t.Helper()

	previous := listProcesses
	calls := new(int)

	listProcesses = func() ([]ps.Process, error) {
		*calls++
		return processes, nil
	}

	t.Cleanup(func() {
		listProcesses = previous
	})

	return calls
}

// startSleeper runs a long-lived child process standing in for a running binary.
func startSleeper(t *testing.T) *exec.Cmd {
	t.Helper()
	skipWithoutShell(t)

	cmd := exec.Command("sleep", "30")
	require.NoError(t, cmd.Start())

	t.Cleanup(func() {
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
	})

	return cmd
}

// TestFilterInstances keeps other processes with the binary name and skips this one.
func TestFilterInstances(t *testing.T) {
	t.Parallel()

	processList := []ps.Process{
		fakeProcess{pid: 10, executable: "agf"},
		fakeProcess{pid: 11, executable: "agf-installer"},
		fakeProcess{pid: 12, executable: "bash"},
		fakeProcess{pid: 13, executable: "agf"},
	}

	got := filterInstances(processList, "agf", 13)
	require.Len(t, got, 1)
	require.Equal(t, 10, got[0].Pid())

	require.Empty(t, filterInstances(processList, "zsh", 13))
}

// TestRunningInstances_ExcludesSelf never reports the installer's own process.
func TestRunningInstances_ExcludesSelf(t *testing.T) {
	stubProcesses(t,
		fakeProcess{pid: os.Getpid(), executable: "agf"},
		fakeProcess{pid: os.Getpid() + 1, executable: "agf"},
	)

	got, err := runningInstances("agf")
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, os.Getpid()+1, got[0].Pid())
}

// TestHandleRunningInstances_WarnsOnly leaves running copies alone by default.
func TestHandleRunningInstances_WarnsOnly(t *testing.T) {
	sleeper := startSleeper(t)
	stubProcesses(t, fakeProcess{pid: sleeper.Process.Pid, executable: "agf"})

	require.NoError(t, New(nil, nil).handleRunningInstances(context.Background()))
	require.NoError(t, sleeper.Process.Signal(syscall.Signal(0)))
}

// TestHandleRunningInstances_Kills terminates running copies when asked to.
func TestHandleRunningInstances_Kills(t *testing.T) {
	sleeper := startSleeper(t)
	stubProcesses(t, fakeProcess{pid: sleeper.Process.Pid, executable: "agf"})

	require.NoError(t, New(nil, nil, WithStopRunning(true)).handleRunningInstances(context.Background()))

	var exitErr *exec.ExitError
	require.True(t, errors.As(sleeper.Wait(), &exitErr))
	require.False(t, exitErr.Success())
}

// TestHandleRunningInstances_ListFailure logs and carries on.
func TestHandleRunningInstances_ListFailure(t *testing.T) {
	previous := listProcesses
	listProcesses = func() ([]ps.Process, error) {
		return nil, errors.New("process table unavailable")
	}

	t.Cleanup(func() {
		listProcesses = previous
	})

	require.NoError(t, New(nil, nil, WithStopRunning(true)).handleRunningInstances(context.Background()))
}
