// Package script holds the parsed form of a dialogue script.
//
// A script is an ordered list of story lines read once from a tabular
// source (one header row, then one row per line). Lines are addressed by
// index for playback and by their optional unique ID for jumps and saves.
//
// Parsing is forgiving by design of the data format: a malformed row is
// skipped and reported as a ParseError, and loading continues. Only a
// missing or unreadable source is fatal to a load.
package script
