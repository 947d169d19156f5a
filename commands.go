package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/kubeprep/kubeprep/pkg/bootstrapper"
	"github.com/kubeprep/kubeprep/pkg/config"
	"github.com/kubeprep/kubeprep/pkg/logger"
	"github.com/kubeprep/kubeprep/pkg/status"
	"github.com/kubeprep/kubeprep/pkg/systemd"
	"github.com/kubeprep/kubeprep/pkg/utils"
)

// Version information variables (set at build time)
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

var (
	flagControlPlane bool
	flagSingleNode   bool
	flagVerbose      bool
)

// NewRootCommand creates the kubeprep root command
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "kubeprep",
		Short: "Provision this host as a Kubernetes node",
		Long: "Provision a single Ubuntu host as a Kubernetes node: install the container runtime\n" +
			"and Kubernetes tooling, then initialize a control plane, prepare a single-node\n" +
			"cluster, or leave the host ready to join as a worker.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProvision(cmd.Context())
		},
		FParseErrWhitelist: cobra.FParseErrWhitelist{UnknownFlags: true},
		SilenceUsage:       true,
	}

	cmd.Flags().BoolVarP(&flagControlPlane, "control-plane", "c", false,
		"initialize this host as a control-plane node")
	cmd.Flags().BoolVarP(&flagSingleNode, "single-node", "s", false,
		"initialize a single-node cluster (control plane with workloads allowed)")
	cmd.Flags().BoolVarP(&flagVerbose, "verbose", "v", false,
		"dump the captured provisioning log on success")

	cmd.AddCommand(NewVersionCommand())
	cmd.AddCommand(NewStatusCommand())

	return cmd
}

// NewStatusCommand creates a status command reporting the last provisioning run
func NewStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the outcome of the last provisioning run",
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, err := status.LoadRecord()
			if err != nil {
				if errors.Is(err, os.ErrNotExist) {
					return fmt.Errorf("no provisioning record found, run kubeprep first")
				}
				return err
			}
			printRunRecord(cmd.OutOrStdout(), rec)
			return nil
		},
		SilenceUsage: true,
	}
}

func printRunRecord(w io.Writer, rec *status.RunRecord) {
	outcome := "succeeded"
	if !rec.Success {
		outcome = "failed"
	}
	fmt.Fprintf(w, "Role: %s\n", rec.Role)
	fmt.Fprintf(w, "Outcome: %s at %s\n", outcome, rec.CompletedAt.Format(time.RFC3339))
	fmt.Fprintf(w, "Kubernetes: %s, containerd: %s\n", rec.KubernetesVersion, rec.ContainerdVersion)
	if rec.Error != "" {
		fmt.Fprintf(w, "Error: %s\n", rec.Error)
	}
	for _, warning := range rec.Warnings {
		fmt.Fprintf(w, "Warning: %s\n", warning)
	}
	for _, step := range rec.Steps {
		fmt.Fprintf(w, "  %-32s %s (%s)\n", step.Name, step.Status, step.Duration)
	}
}

// NewVersionCommand creates a new version command
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("kubeprep\n")
			fmt.Printf("Version: %s\n", Version)
			fmt.Printf("Git Commit: %s\n", GitCommit)
			fmt.Printf("Build Time: %s\n", BuildTime)
		},
	}
}

// runProvision executes the provisioning workflow for the selected role.
func runProvision(ctx context.Context) error {
	cfg := config.New(config.ResolveRole(flagControlPlane, flagSingleNode), flagVerbose)
	if err := cfg.Validate(); err != nil {
		return err
	}

	runLog, err := logger.NewRunLog()
	if err != nil {
		return err
	}
	// The temp log resource is released on every exit path.
	defer runLog.Close()

	fmt.Printf("Provisioning host as %s node (log: %s)\n", cfg.Role, runLog.Path())

	runner := utils.NewRunner(runLog.Writer())
	b := bootstrapper.New(cfg, runLog.Logger(), runner, systemd.New())

	// Drop any record from a previous run before starting a new one.
	status.RemoveRecordBestEffort(runLog.Logger(), status.DefaultRecordPath)

	result, err := b.Bootstrap(ctx)
	writeRunRecord(runLog.Logger(), cfg, result, err)
	if err != nil {
		return failWithLog(os.Stderr, runLog, err)
	}

	for _, soft := range result.SoftFailures {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", soft)
	}

	if err := printSuccess(ctx, cfg, b); err != nil {
		return failWithLog(os.Stderr, runLog, err)
	}

	if cfg.Verbose {
		fmt.Println("\nCaptured provisioning log:")
		if err := runLog.Dump(os.Stdout); err != nil {
			return err
		}
	}

	return nil
}

// failWithLog surfaces the captured run log before the process exits with an
// error. Nothing is streamed during the run and the log file is removed on
// exit, so this dump is the only place the buffered step output becomes
// visible.
func failWithLog(w io.Writer, runLog *logger.RunLog, err error) error {
	fmt.Fprintln(w, "Provisioning failed, captured log follows:")
	if dumpErr := runLog.Dump(w); dumpErr != nil {
		fmt.Fprintf(w, "failed to dump run log: %v\n", dumpErr)
	}
	return err
}

// writeRunRecord persists the outcome snapshot. Record failures never change
// the provisioning outcome.
func writeRunRecord(log *logrus.Logger, cfg *config.Config, result *bootstrapper.ExecutionResult, execErr error) {
	rec := status.NewRunRecord(cfg, result, execErr, Version, time.Now().UTC())
	if err := status.WriteRecordToFile(status.DefaultRecordPath, rec); err != nil {
		log.Debugf("Failed to write run record: %v", err)
	}
}

func printSuccess(ctx context.Context, cfg *config.Config, b *bootstrapper.Bootstrapper) error {
	if !cfg.IsControlPlane() {
		fmt.Println("Worker host is ready.")
		fmt.Println("Run the join command printed by 'kubeprep -c' (or -s) on the control-plane node,")
		fmt.Println("or generate a fresh one there with: kubeadm token create --print-join-command")
		return nil
	}

	joinCmd, err := b.JoinCommand(ctx)
	if err != nil {
		return fmt.Errorf("cluster is up but creating the join command failed: %w", err)
	}

	fmt.Printf("Cluster is ready. To join worker nodes, run on each worker:\n\n  %s\n", joinCmd)
	return nil
}
