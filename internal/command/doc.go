// Package command implements the instruction protocol of the script engine.
//
// Every command is a small independent type behind one closed capability
// interface:
//
//	Execute       synchronous, immediate effect, never blocks
//	ExecuteAsync  returns a Task stepped by the host tick; may span ticks
//	Interrupt     forces the in-flight task to its terminal state
//	Simulate      data-only variant used by replay; no presenter access
//
// Commands are registered by name in a Registry. The registry parses
// instruction text ("name(a, b)" chained with "&"), dispatches it, and
// tracks which commands are currently running so that they can all be
// interrupted together.
//
// SCHEDULING:
//
// There are no goroutines here. A Chain runs one instruction string in
// left-to-right order; each sub-command's Task must finish (normally or by
// interruption) before the next one starts. The engine calls Chain.Step
// once per tick with the elapsed time. Synchronous commands complete inside
// the same Step call.
package command
