package main

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/pkg/browser"
	"github.com/spf13/cobra"

	"github.com/schedlab/dispatchsim/dispatch"
	"github.com/schedlab/dispatchsim/simulation"
	"github.com/schedlab/dispatchsim/testbench"
)

var runFlags struct {
	scenarioPath string
	cycles       uint64
	output       string
	monitor      bool
	monitorPort  int
	openBrowser  bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one simulation scenario",
	RunE: func(_ *cobra.Command, _ []string) error {
		return runScenario()
	},
}

func init() {
	runCmd.Flags().StringVarP(&runFlags.scenarioPath, "scenario", "s", "",
		"path to a YAML scenario file (defaults to a built-in scenario)")
	runCmd.Flags().Uint64Var(&runFlags.cycles, "cycles", 0,
		"override the number of cycles the controller stays enabled")
	runCmd.Flags().StringVarP(&runFlags.output, "output", "o", "",
		"name of the output database file")
	runCmd.Flags().BoolVar(&runFlags.monitor, "monitor", false,
		"serve the monitoring API while the simulation runs")
	runCmd.Flags().IntVar(&runFlags.monitorPort, "monitor-port", 0,
		"port for the monitoring server, 0 picks a free port")
	runCmd.Flags().BoolVar(&runFlags.openBrowser, "open", false,
		"open the monitoring server in a browser, implies --monitor")

	rootCmd.AddCommand(runCmd)
}

func runScenario() error {
	scenario := DefaultScenario()
	if runFlags.scenarioPath != "" {
		var err error
		scenario, err = LoadScenario(runFlags.scenarioPath)
		if err != nil {
			return err
		}
	}

	if runFlags.cycles > 0 {
		scenario.Cycles = runFlags.cycles
	}

	s := buildSimulation()
	defer s.Terminate()

	bench := buildBench(s, scenario)

	if runFlags.openBrowser && s.GetMonitor() != nil {
		if err := browser.OpenURL(s.GetMonitor().Address()); err != nil {
			log.Printf("cannot open browser: %v", err)
		}
	}

	if err := bench.Run(); err != nil {
		return fmt.Errorf("running scenario %s: %w", scenario.Name, err)
	}

	printSummary(scenario, bench.Controller)

	return nil
}

func buildSimulation() *simulation.Simulation {
	builder := simulation.MakeBuilder()

	monitorOn := runFlags.monitor || runFlags.openBrowser
	if !monitorOn {
		builder = builder.WithoutMonitoring()
	}

	port := runFlags.monitorPort
	if port == 0 {
		if v := os.Getenv("DISPATCHSIM_MONITOR_PORT"); v != "" {
			p, err := strconv.Atoi(v)
			if err != nil {
				log.Printf("ignoring DISPATCHSIM_MONITOR_PORT=%q: %v", v, err)
			} else {
				port = p
			}
		}
	}
	if monitorOn && port > 0 {
		builder = builder.WithMonitorPort(port)
	}

	if runFlags.output != "" {
		builder = builder.WithOutputFileName(runFlags.output)
	}

	return builder.Build()
}

func buildBench(s *simulation.Simulation, scenario Scenario) *testbench.Bench {
	controllerBuilder := dispatch.MakeBuilder().
		WithEnabled(scenario.Controller.Enabled).
		WithDecisionAInterval(scenario.Controller.DecisionAInterval).
		WithDecisionBInterval(scenario.Controller.DecisionBInterval).
		WithQueuePollInterval(scenario.Controller.QueuePollInterval).
		WithMaxPending(scenario.Controller.MaxPending).
		WithOverflowThreshold(scenario.Controller.OverflowThreshold).
		WithMaxDraftLength(scenario.Controller.MaxDraftLength)

	benchBuilder := testbench.MakeBenchBuilder().
		WithEngine(s.GetEngine()).
		WithRunCycles(scenario.Cycles).
		WithControllerBuilder(controllerBuilder).
		WithQueueCapacity(scenario.Controller.QueueCapacity).
		WithResourceLatency(
			int(scenario.Resources.FixedLatency),
			int(scenario.Resources.LatencyPerUnit),
		)

	if scenario.Decisions.ContinuePeriod > 0 {
		benchBuilder = benchBuilder.WithContinueSource(
			testbench.NewPeriodicContinueSource(
				int(scenario.Decisions.ContinuePeriod),
				int(scenario.Decisions.ContinueSuppress),
			))
	}

	if scenario.Decisions.PreVerifyEnabled {
		benchBuilder = benchBuilder.WithPreVerifySource(
			testbench.NewScriptedPreVerifySource(testbench.PreVerifyStep{
				Eligible: true,
				Length:   scenario.Decisions.PreVerifyLength,
			}))
	}

	bench := benchBuilder.Build(scenario.Name)

	s.RegisterController(bench.Controller)
	s.RegisterComponent(bench.ResourceA)
	s.RegisterComponent(bench.ResourceB)
	s.RegisterComponent(bench.Driver)

	return bench
}

func printSummary(scenario Scenario, c *dispatch.Comp) {
	stats := c.Stats()
	hw := c.HighWaterMarks()

	fmt.Printf("scenario %s finished after %d enabled cycles\n",
		scenario.Name, scenario.Cycles)
	fmt.Printf("  drafts dispatched:     %d\n", stats.TotalDrafts)
	fmt.Printf("  verifies dispatched:   %d\n", stats.TotalVerifies)
	fmt.Printf("  pre-verifies:          %d\n", stats.TotalPreVerifies)
	fmt.Printf("  suppressed drafts:     %d\n", stats.SuppressedDrafts)
	fmt.Printf("  idle cycles (a/b):     %d/%d\n",
		stats.IdleCyclesA, stats.IdleCyclesB)
	fmt.Printf("  prevented idle cycles: %d\n", stats.PreventedIdleCycles)
	fmt.Printf("  decision changes (a/b): %d/%d\n",
		stats.DecisionAChanges, stats.DecisionBChanges)
	fmt.Printf("  dropped completions:   %d\n", stats.DroppedCompletions)
	fmt.Printf("  dropped feedback:      %d\n", stats.DroppedFeedback)
	fmt.Printf("  queue high water:      pending=%d feedback=%d preverify=%d\n",
		hw[0], hw[1], hw[2])
	fmt.Printf("  overflow events:       %d\n",
		c.ReadRegister(dispatch.RegOverflowCount))
}
