// Package review defines the core decision types shared by all workflows.
package review

import "strings"

// Mode is the global gate controlling whether decisions are executed.
type Mode string

const (
	// ModeOff disables all decisioning side effects.
	ModeOff Mode = "OFF"
	// ModeDryRun computes and logs decisions without calling review endpoints.
	ModeDryRun Mode = "DRY_RUN"
	// ModeAuto computes decisions and executes them against the owning services.
	ModeAuto Mode = "AUTO"
)

// ParseMode converts a string to a Mode. Unknown values clamp to ModeOff;
// a misconfigured agent must never act.
func ParseMode(s string) Mode {
	switch Mode(strings.ToUpper(strings.TrimSpace(s))) {
	case ModeDryRun:
		return ModeDryRun
	case ModeAuto:
		return ModeAuto
	default:
		return ModeOff
	}
}

func (m Mode) String() string { return string(m) }
