// Package engine plays a script line by line.
//
// The Engine owns the line pointer, the derived stage.State, the flag set
// and the dialogue history. Everything happens on one goroutine: hosts
// either call the methods directly from their frame loop (Tick, Advance,
// Choose) or hand input to Run through Enqueue.
//
// Playing a line (PlayCurrentLine):
//
//  1. per-line overrides of the previous line are reverted
//  2. empty fields inherit (see resolve)
//  3. the state is updated and the difference pushed to the Presenter
//  4. the dialogue is shown and text reveal starts
//  5. the Command cell, if any, starts as a command.Chain
//
// A jump inside the chain only moves the pointer; the target line is played
// once the chain finishes. Jumps that land without any input or elapsed
// time in between are counted by a JumpGuard.
//
// FastForward reconstructs the state for a line without live side effects
// by simulating every earlier line, stopping early at the first line that
// offers a choice. Save and Load build on it.
package engine
