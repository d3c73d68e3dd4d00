package installer

import (
	"context"
	"os"

	"github.com/mitchellh/go-ps"

	"github.com/oshokin/agf-installer/internal/logger"
)

// listProcesses snapshots the process table.
//
//nolint:gochecknoglobals // Swapped in tests to simulate running instances.
var listProcesses = ps.Processes

// runningInstances lists processes whose executable is name, excluding this process.
func runningInstances(name string) ([]ps.Process, error) {
	processList, err := listProcesses()
	if err != nil {
		return nil, err
	}

	return filterInstances(processList, name, os.Getpid()), nil
}

// filterInstances keeps processes running name, skipping the process with PID self.
func filterInstances(processList []ps.Process, name string, self int) []ps.Process {
	result := make([]ps.Process, 0)

	for _, process := range processList {
		if process.Pid() == self {
			continue
		}

		if process.Executable() != name {
			continue
		}

		result = append(result, process)
	}

	return result
}

// handleRunningInstances warns about running copies of the binary, or kills them when asked to.
// Detection failures are logged and never block the install.
func (i *Installer) handleRunningInstances(ctx context.Context) error {
	processes, err := runningInstances(i.binaryName)
	if err != nil {
		logger.WarnKV(ctx, "Could not list running processes", "error", err)
		return nil
	}

	for _, process := range processes {
		if !i.stopRunning {
			logger.WarnKV(ctx, "Binary is running and keeps the old version until restarted",
				"pid", process.Pid(), "executable", process.Executable())

			continue
		}

		logger.InfoKV(ctx, "Terminating running instance", "pid", process.Pid())

		var runningProcess *os.Process

		runningProcess, err = os.FindProcess(process.Pid())
		if err != nil {
			return err
		}

		if err = runningProcess.Kill(); err != nil {
			return err
		}
	}

	return nil
}
