package emu

// Core identification reported to front-ends.
const (
	Name    = "ecoleco"
	Version = "0.1.0"
)
