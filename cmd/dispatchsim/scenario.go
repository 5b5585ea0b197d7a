package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ControllerConfig holds the controller parameters of a scenario.
type ControllerConfig struct {
	Enabled           bool   `yaml:"enabled"`
	DecisionAInterval uint32 `yaml:"decision_a_interval"`
	DecisionBInterval uint32 `yaml:"decision_b_interval"`
	QueuePollInterval uint32 `yaml:"queue_poll_interval"`
	MaxPending        int    `yaml:"max_pending"`
	OverflowThreshold int    `yaml:"overflow_threshold"`
	MaxDraftLength    uint16 `yaml:"max_draft_length"`
	QueueCapacity     int    `yaml:"queue_capacity"`
}

// ResourceConfig holds the execution latency model of the two resources.
type ResourceConfig struct {
	FixedLatency   uint64 `yaml:"fixed_latency"`
	LatencyPerUnit uint64 `yaml:"latency_per_unit"`
}

// DecisionConfig describes the advisory sources driving the controller.
// ContinuePeriod/ContinueSuppress configure a periodic continue signal that
// reads false for the first ContinueSuppress cycles of every ContinuePeriod
// cycles. A zero period means always continue.
type DecisionConfig struct {
	ContinuePeriod   uint64 `yaml:"continue_period"`
	ContinueSuppress uint64 `yaml:"continue_suppress"`
	PreVerifyEnabled bool   `yaml:"pre_verify_enabled"`
	PreVerifyLength  uint8  `yaml:"pre_verify_length"`
}

// Scenario is the top-level YAML document accepted by the run command.
type Scenario struct {
	Name       string           `yaml:"name"`
	Cycles     uint64           `yaml:"cycles"`
	Controller ControllerConfig `yaml:"controller"`
	Resources  ResourceConfig   `yaml:"resources"`
	Decisions  DecisionConfig   `yaml:"decisions"`
}

// DefaultScenario returns the scenario used when no file is given.
func DefaultScenario() Scenario {
	return Scenario{
		Name:   "default",
		Cycles: 1000,
		Controller: ControllerConfig{
			Enabled:           true,
			MaxPending:        4,
			OverflowThreshold: 8,
			MaxDraftLength:    8,
			QueueCapacity:     16,
		},
		Resources: ResourceConfig{
			FixedLatency:   1,
			LatencyPerUnit: 1,
		},
		Decisions: DecisionConfig{
			PreVerifyEnabled: false,
			PreVerifyLength:  0,
		},
	}
}

// LoadScenario reads a scenario file, starting from the defaults so that
// omitted fields keep sensible values.
func LoadScenario(path string) (Scenario, error) {
	s := DefaultScenario()

	data, err := os.ReadFile(path)
	if err != nil {
		return Scenario{}, fmt.Errorf("reading scenario: %w", err)
	}

	if err := yaml.Unmarshal(data, &s); err != nil {
		return Scenario{}, fmt.Errorf("parsing scenario %s: %w", path, err)
	}

	if err := s.validate(); err != nil {
		return Scenario{}, fmt.Errorf("scenario %s: %w", path, err)
	}

	return s, nil
}

func (s Scenario) validate() error {
	if s.Cycles == 0 {
		return fmt.Errorf("cycles must be positive")
	}

	if s.Controller.MaxPending <= 0 {
		return fmt.Errorf("controller.max_pending must be positive")
	}

	if s.Controller.OverflowThreshold <= 0 {
		return fmt.Errorf("controller.overflow_threshold must be positive")
	}

	if s.Controller.QueueCapacity <= 0 {
		return fmt.Errorf("controller.queue_capacity must be positive")
	}

	if s.Controller.MaxDraftLength == 0 {
		return fmt.Errorf("controller.max_draft_length must be positive")
	}

	if s.Decisions.ContinueSuppress > 0 &&
		s.Decisions.ContinueSuppress >= s.Decisions.ContinuePeriod {
		return fmt.Errorf(
			"decisions.continue_suppress must be less than continue_period")
	}

	return nil
}
