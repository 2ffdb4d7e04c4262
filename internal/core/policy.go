package core

import "time"

// ScanPolicy is a per-kind override of the security gate and notification
// cooldown, loadable from a JSON file or MySQL. A zero Cooldown keeps the
// configured default; Enabled=false disables the kind entirely.
type ScanPolicy struct {
	ID       int64
	Kind     Kind
	MinScore float64
	Cooldown time.Duration
	Enabled  bool
}
