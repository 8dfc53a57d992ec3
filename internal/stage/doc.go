// Package stage models what is on screen.
//
// State is the derived presentation state (background, BGM, characters per
// position with their orientation, voice flag, inheritance memory, active
// effects). The engine owns the single live State; replay builds a private
// one and materializes it once.
//
// Presenter is the boundary to the rendering/audio layer. The core never
// draws or plays anything itself; it calls a Presenter. Recorder is an
// in-memory Presenter that records every call, used by tests, the scenario
// harness and the headless CLI.
package stage
