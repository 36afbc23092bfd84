package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/janhq/genai-proxy/internal/domain/job"
)

var runCmd = &cobra.Command{
	Use:   "run <job_type>",
	Short: "Submit a job and wait for its terminal status",
	Long: `Submit a job and poll the provider until it succeeds, fails or is canceled.

The final prediction is printed as JSON. A failed or canceled prediction
exits with a non-zero status.`,
	Args: cobra.ExactArgs(1),
	RunE: runRun,
}

var submitCmd = &cobra.Command{
	Use:   "submit <job_type>",
	Short: "Submit a job and print its prediction id",
	Args:  cobra.ExactArgs(1),
	RunE:  runSubmit,
}

var pollCmd = &cobra.Command{
	Use:   "poll <prediction_id>",
	Short: "Print the current status of a prediction",
	Args:  cobra.ExactArgs(1),
	RunE:  runPoll,
}

func init() {
	addRequestFlags(runCmd)
	addRequestFlags(submitCmd)
	runCmd.Flags().Duration("interval", job.DefaultPollInterval, "Delay between status polls")
	runCmd.Flags().Duration("timeout", 10*time.Minute, "Give up waiting after this long (0 waits forever)")
}

func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	base := cmd.Context()
	if base == nil {
		base = context.Background()
	}
	return signal.NotifyContext(base, os.Interrupt, syscall.SIGTERM)
}

func prepare(ctx context.Context, cmd *cobra.Command, key string) (*session, job.Request, error) {
	s, err := newSession(ctx, cmd)
	if err != nil {
		return nil, nil, err
	}
	rt, err := s.components.Registry.Resolve(ctx, key)
	if err != nil {
		return nil, nil, err
	}
	fields, err := requestFields(cmd)
	if err != nil {
		return nil, nil, err
	}
	req, err := buildRequest(rt, fields)
	if err != nil {
		return nil, nil, err
	}
	return s, req, nil
}

func runRun(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext(cmd)
	defer stop()

	s, req, err := prepare(ctx, cmd, args[0])
	if err != nil {
		return err
	}

	interval, _ := cmd.Flags().GetDuration("interval")
	if timeout, _ := cmd.Flags().GetDuration("timeout"); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	var invoker job.BlockingInvoker = job.NewRunner(s.components.Service, interval, s.log)
	j, err := invoker.Run(ctx, args[0], req)
	if err != nil {
		return err
	}

	if err := printJSON(cmd, result{PredictionID: j.ID, Status: j.Status, Output: j.Output, Error: j.Error}); err != nil {
		return err
	}
	if j.Status != job.StatusSucceeded {
		return fmt.Errorf("prediction %s finished as %s", j.ID, j.Status)
	}
	return nil
}

func runSubmit(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext(cmd)
	defer stop()

	s, req, err := prepare(ctx, cmd, args[0])
	if err != nil {
		return err
	}
	var invoker job.AsyncInvoker = s.components.Service
	id, err := invoker.Submit(ctx, args[0], req)
	if err != nil {
		return err
	}
	return printJSON(cmd, result{PredictionID: id})
}

func runPoll(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext(cmd)
	defer stop()

	s, err := newSession(ctx, cmd)
	if err != nil {
		return err
	}
	j, err := s.components.Service.Poll(ctx, args[0])
	if err != nil {
		return err
	}
	return printJSON(cmd, result{PredictionID: args[0], Status: j.Status, Output: j.Output, Error: j.Error})
}
