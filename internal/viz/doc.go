// Package viz is the interactive terminal shell around a [sim.Simulator].
//
// It turns key presses into force-delta events, advances the simulator a
// whole number of fixed ticks per frame and renders each snapshot on a
// Braille [Canvas] using Bubble Tea.
//
// # Key Bindings
//
//	Arrows/WASD - Push the body (held for a short window, then released)
//	X           - Release all pushes
//	Space       - Pause/Resume simulation
//	R           - Reset to initial state
//	Tab         - Cycle force-model parameters
//	+/-         - Tune the selected parameter
//	?           - Show full help
//	Q           - Quit
//
// Terminals report key presses but not releases, so every push is paired
// with a scheduled release after [DefaultHoldTicks] ticks.
package viz
