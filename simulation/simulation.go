// Package simulation bundles the services a simulation needs: the event
// engine, the data recorder, the monitoring server, and name-based lookup of
// components and ports.
package simulation

import (
	"github.com/schedlab/dispatchsim/datarecording"
	"github.com/schedlab/dispatchsim/dispatch"
	"github.com/schedlab/dispatchsim/monitoring"
	"github.com/schedlab/dispatchsim/sim"
)

// A Simulation provides the services required to define a simulation.
type Simulation struct {
	id string

	engine       sim.Engine
	dataRecorder datarecording.DataRecorder
	monitor      *monitoring.Monitor
	taskTracer   *datarecording.TaskTracer

	components    []sim.Component
	compNameIndex map[string]int
	controllers   []*dispatch.Comp
	ports         []sim.Port
	portNameIndex map[string]int
}

// ID returns the unique ID of the simulation.
func (s *Simulation) ID() string {
	return s.id
}

// GetEngine returns the engine used in the simulation.
func (s *Simulation) GetEngine() sim.Engine {
	return s.engine
}

// GetDataRecorder returns the data recorder used in the simulation.
func (s *Simulation) GetDataRecorder() datarecording.DataRecorder {
	return s.dataRecorder
}

// GetMonitor returns the monitor used in the simulation. It is nil when
// monitoring is disabled.
func (s *Simulation) GetMonitor() *monitoring.Monitor {
	return s.monitor
}

// RegisterComponent registers a component with the simulation.
func (s *Simulation) RegisterComponent(c sim.Component) {
	compName := c.Name()
	if _, exists := s.compNameIndex[compName]; exists {
		panic("component " + compName + " already registered")
	}

	s.components = append(s.components, c)
	s.compNameIndex[compName] = len(s.components) - 1

	if s.monitor != nil {
		s.monitor.RegisterComponent(c)
	}

	for _, p := range c.Ports() {
		s.registerPort(p)
	}
}

// RegisterController registers a dispatch controller. On top of the regular
// component registration, its task trace is recorded and its register file
// is exposed on the monitoring server.
func (s *Simulation) RegisterController(c *dispatch.Comp) {
	s.RegisterComponent(c)
	s.controllers = append(s.controllers, c)

	if s.monitor != nil {
		s.monitor.RegisterController(c)
	}

	c.AcceptHook(s.taskTracer)
}

func (s *Simulation) registerPort(p sim.Port) {
	portName := p.Name()
	if _, exists := s.portNameIndex[portName]; exists {
		panic("port " + portName + " already registered")
	}

	s.ports = append(s.ports, p)
	s.portNameIndex[portName] = len(s.ports) - 1
}

// Components returns all registered components.
func (s *Simulation) Components() []sim.Component {
	return s.components
}

// Controllers returns all registered dispatch controllers.
func (s *Simulation) Controllers() []*dispatch.Comp {
	return s.controllers
}

// GetComponentByName returns the component with the given name.
func (s *Simulation) GetComponentByName(name string) sim.Component {
	return s.components[s.compNameIndex[name]]
}

// GetPortByName returns the port with the given name.
func (s *Simulation) GetPortByName(name string) sim.Port {
	return s.ports[s.portNameIndex[name]]
}

// Terminate records the final counters of every registered controller and
// closes the recorder.
func (s *Simulation) Terminate() {
	for _, c := range s.controllers {
		datarecording.RecordStats(s.dataRecorder, c)
	}

	if err := s.dataRecorder.Close(); err != nil {
		panic(err)
	}
}
