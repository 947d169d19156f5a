package utils

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

// Runner executes external commands for provisioning steps. All standard
// output and standard error is appended to the run log writer instead of being
// shown live, so a fatal failure can surface the complete buffered context.
type Runner struct {
	log io.Writer
}

// NewRunner creates a Runner that captures command output into log.
func NewRunner(log io.Writer) *Runner {
	return &Runner{log: log}
}

// Run executes a system command for privileged operations. The provisioner
// runs as root, so no sudo wrapping is needed.
func (r *Runner) Run(ctx context.Context, name string, args ...string) error {
	fmt.Fprintf(r.log, "+ %s %s\n", name, strings.Join(args, " "))

	cmd := exec.CommandContext(ctx, name, args...) // #nosec G204 -- step commands are built from pinned constants
	cmd.Stdout = r.log
	cmd.Stderr = r.log
	return cmd.Run()
}

// Output executes a command and returns its combined output. The output is
// also appended to the run log.
func (r *Runner) Output(ctx context.Context, name string, args ...string) (string, error) {
	fmt.Fprintf(r.log, "+ %s %s\n", name, strings.Join(args, " "))

	cmd := exec.CommandContext(ctx, name, args...) // #nosec G204 -- same pattern as Run
	output, err := cmd.CombinedOutput()
	_, _ = r.log.Write(output)
	return string(output), err
}

// Silent executes a command and reports only whether it succeeded.
func (r *Runner) Silent(ctx context.Context, name string, args ...string) bool {
	cmd := exec.CommandContext(ctx, name, args...) // #nosec G204 -- same pattern as Run
	return cmd.Run() == nil
}

// RunShell executes a shell pipeline. Only used for steps that genuinely need
// redirection, such as piping a downloaded signing key into gpg.
func (r *Runner) RunShell(ctx context.Context, script string) error {
	fmt.Fprintf(r.log, "+ sh -c %q\n", script)

	cmd := exec.CommandContext(ctx, "sh", "-c", script) // #nosec G204 -- scripts are built from pinned constants
	cmd.Stdout = r.log
	cmd.Stderr = r.log
	return cmd.Run()
}

// FileExists checks if a file exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}

// DirectoryExists checks if a directory exists
func DirectoryExists(path string) bool {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return false
	}
	return info != nil && info.IsDir()
}

// BinaryExists checks if a binary exists in PATH
func BinaryExists(binaryName string) bool {
	_, err := exec.LookPath(binaryName)
	return err == nil
}
