package plugin

// Type represents the functional category of a plugin.
type Type string

const (
	// TypeActions plugins expose named actions to the agent runtime.
	TypeActions Type = "actions"
	// TypeProcessor plugins transform or enrich action results.
	TypeProcessor Type = "processor"
)

// Capability expresses optional features a plugin may request access to.
type Capability string

const (
	CapabilityNetwork    Capability = "network"
	CapabilitySettings   Capability = "settings"
	CapabilityFilesystem Capability = "filesystem"
)

// Info contains descriptive metadata for a plugin implementation.
type Info struct {
	ID           string
	Name         string
	Description  string
	Author       string
	Version      string
	Category     Type
	Capabilities []Capability
}

// State represents the lifecycle position of a plugin instance.
type State string

const (
	StateRegistered  State = "registered"
	StateInitialised State = "initialised"
	StateStarted     State = "started"
	StateStopped     State = "stopped"
)
