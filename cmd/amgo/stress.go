package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync/atomic"
	"time"
	"unsafe"

	"github.com/obinnaokechukwu/amgo"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"
)

func stressCommand(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stress",
		Short: "Submit many tasks from concurrent producers and wait for all of them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStress(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), load(v))
		},
	}

	cmd.Flags().IntP("threads", "t", 0, "pool workers (0 for one per CPU)")
	cmd.Flags().IntP("tasks", "n", 10000, "number of tasks to run")
	cmd.Flags().IntP("producers", "p", 4, "number of goroutines creating and submitting tasks")
	cmd.Flags().Bool("awaitable", false, "use awaitable tasks and block on them instead of polling")
	cmd.Flags().Int64("timeout", 10000, "milliseconds to wait for every task to become ready")

	return cmd
}

func runStress(ctx context.Context, out, logOut io.Writer, s settings) error {
	if s.Tasks < 0 {
		return fmt.Errorf("tasks must not be negative, got %d", s.Tasks)
	}
	if s.Producers < 1 {
		return fmt.Errorf("producers must be at least 1, got %d", s.Producers)
	}
	if s.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %d", s.Timeout)
	}
	level, err := amgo.ParseLogLevel(s.LogLevel)
	if err != nil {
		return err
	}

	c := amgo.New(amgo.WithLogger(amgo.NewLogger(logOut, level)))
	c.Boot()
	defer c.Shutdown()

	reg := prometheus.NewRegistry()
	reg.MustRegister(amgo.NewCollector(c))

	pool := c.CreatePool(s.Threads)
	if pool == amgo.InvalidHandle {
		return errors.New("could not create pool")
	}

	ctx, cancel := context.WithTimeout(ctx, time.Duration(s.Timeout)*time.Millisecond)
	defer cancel()

	var completed atomic.Int64
	start := time.Now()

	g, gctx := errgroup.WithContext(ctx)
	for p := 0; p < s.Producers; p++ {
		n := s.Tasks / s.Producers
		if p < s.Tasks%s.Producers {
			n++
		}
		g.Go(func() error {
			if s.Awaitable {
				return produceAwaitable(gctx, c, pool, n, &completed)
			}
			return producePlain(gctx, c, pool, n, &completed)
		})
	}
	runErr := g.Wait()
	elapsed := time.Since(start)

	kind := "plain"
	if s.Awaitable {
		kind = "awaitable"
	}
	fmt.Fprintf(out, "%d/%d %s tasks ready on %d workers in %v",
		completed.Load(), s.Tasks, kind, c.PoolThreadCount(pool), elapsed.Round(time.Microsecond))
	if secs := elapsed.Seconds(); secs > 0 {
		fmt.Fprintf(out, " (%.0f tasks/sec)", float64(completed.Load())/secs)
	}
	fmt.Fprintln(out)

	if err := writeMetrics(out, reg); err != nil && runErr == nil {
		runErr = err
	}
	c.DestroyPool(pool)
	return runErr
}

// producePlain creates and submits n plain tasks, then polls until each has
// marked itself ready.
func producePlain(ctx context.Context, c *amgo.Context, pool amgo.Handle, n int, completed *atomic.Int64) error {
	hs := make([]amgo.Handle, 0, n)
	defer func() {
		for _, h := range hs {
			c.DestroyTask(h)
		}
	}()

	fn := func(h amgo.Handle, _ unsafe.Pointer) {
		completed.Add(1)
		c.SetTaskReady(h)
	}
	for i := 0; i < n; i++ {
		h := c.CreateTask(fn, nil)
		hs = append(hs, h)
		if !c.SubmitTask(pool, h) {
			return errors.New("pool rejected task")
		}
	}

	for i := 0; i < len(hs); {
		if c.TaskReady(hs[i]) {
			i++
			continue
		}
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%d tasks not ready: %w", len(hs)-i, err)
		}
		amgo.Sleep(1)
	}
	return nil
}

// produceAwaitable creates and submits n awaitable tasks, then blocks on each
// until the context deadline.
func produceAwaitable(ctx context.Context, c *amgo.Context, pool amgo.Handle, n int, completed *atomic.Int64) error {
	hs := make([]amgo.Handle, 0, n)
	defer func() {
		for _, h := range hs {
			c.DestroyAwaitableTask(h)
		}
	}()

	fn := func(h amgo.Handle, _ unsafe.Pointer) {
		completed.Add(1)
		c.SetAwaitableTaskReady(h)
	}
	for i := 0; i < n; i++ {
		h := c.CreateAwaitableTask(fn, nil)
		hs = append(hs, h)
		if !c.SubmitAwaitableTask(pool, h) {
			return errors.New("pool rejected task")
		}
	}

	deadline, _ := ctx.Deadline()
	for i, h := range hs {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%d tasks not ready: %w", len(hs)-i, err)
		}
		ms := time.Until(deadline).Milliseconds()
		if ms < 1 {
			ms = 1
		}
		if !c.AwaitTaskFor(h, uint64(ms)) {
			return fmt.Errorf("%d tasks not ready: %w", len(hs)-i, context.DeadlineExceeded)
		}
	}
	return nil
}

func writeMetrics(w io.Writer, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return fmt.Errorf("gathering metrics: %w", err)
	}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			var value float64
			switch mf.GetType() {
			case dto.MetricType_COUNTER:
				value = m.GetCounter().GetValue()
			case dto.MetricType_GAUGE:
				value = m.GetGauge().GetValue()
			default:
				continue
			}
			fmt.Fprintf(w, "%s%s %g\n", mf.GetName(), formatLabels(m.GetLabel()), value)
		}
	}
	return nil
}

func formatLabels(labels []*dto.LabelPair) string {
	if len(labels) == 0 {
		return ""
	}
	parts := make([]string, 0, len(labels))
	for _, l := range labels {
		parts = append(parts, fmt.Sprintf("%s=%q", l.GetName(), l.GetValue()))
	}
	sort.Strings(parts)
	return "{" + strings.Join(parts, ",") + "}"
}
