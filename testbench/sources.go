// Package testbench provides the components that surround a dispatch
// controller in a closed-loop simulation: scripted advisory decision
// sources, latency-modeled execution resources, and a driver that programs
// the controller over its register bus.
package testbench

// A ScriptedContinueSource replays a fixed pattern of continue decisions.
// Each sample consumes one pattern entry; once the pattern is exhausted the
// last entry stays in force.
type ScriptedContinueSource struct {
	pattern []bool
	idx     int
}

// NewScriptedContinueSource creates a source that replays the given pattern.
func NewScriptedContinueSource(pattern ...bool) *ScriptedContinueSource {
	if len(pattern) == 0 {
		pattern = []bool{true}
	}

	return &ScriptedContinueSource{pattern: pattern}
}

// Continue returns the next scripted decision.
func (s *ScriptedContinueSource) Continue() bool {
	v := s.pattern[s.idx]
	if s.idx < len(s.pattern)-1 {
		s.idx++
	}

	return v
}

// A PreVerifyStep is one scripted pre-verification decision.
type PreVerifyStep struct {
	Eligible bool
	Length   uint8
}

// A ScriptedPreVerifySource replays a fixed pattern of pre-verification
// decisions, holding the last step once the script runs out.
type ScriptedPreVerifySource struct {
	steps []PreVerifyStep
	idx   int
}

// NewScriptedPreVerifySource creates a source that replays the given steps.
func NewScriptedPreVerifySource(steps ...PreVerifyStep) *ScriptedPreVerifySource {
	if len(steps) == 0 {
		steps = []PreVerifyStep{{}}
	}

	return &ScriptedPreVerifySource{steps: steps}
}

// Advice returns the next scripted decision.
func (s *ScriptedPreVerifySource) Advice() (bool, uint8) {
	step := s.steps[s.idx]
	if s.idx < len(s.steps)-1 {
		s.idx++
	}

	return step.Eligible, step.Length
}

// A PeriodicContinueSource suppresses drafting for suppressFor samples out
// of every period samples. A period of 0 never suppresses.
type PeriodicContinueSource struct {
	period      int
	suppressFor int
	count       int
}

// NewPeriodicContinueSource creates a periodically suppressing source.
func NewPeriodicContinueSource(period, suppressFor int) *PeriodicContinueSource {
	return &PeriodicContinueSource{period: period, suppressFor: suppressFor}
}

// Continue returns false during the suppression window of each period.
func (s *PeriodicContinueSource) Continue() bool {
	if s.period == 0 {
		return true
	}

	phase := s.count % s.period
	s.count++

	return phase >= s.suppressFor
}
