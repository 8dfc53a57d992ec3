package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/roach88/scriptplay/internal/command"
	"github.com/roach88/scriptplay/internal/command/builtin"
	"github.com/roach88/scriptplay/internal/config"
	"github.com/roach88/scriptplay/internal/engine"
	"github.com/roach88/scriptplay/internal/script"
	"github.com/roach88/scriptplay/internal/stage"
	"github.com/roach88/scriptplay/internal/store"
)

// LoadResult is a script file read from disk.
type LoadResult struct {
	Path   string
	Name   string // base name the engine loads the script by
	Dir    string
	Store  *script.Store
	Errors []*script.ParseError // rows skipped while parsing
}

// LoadError represents a script that could not be loaded at all.
type LoadError struct {
	Code    string
	Message string
	Err     error
}

func (e *LoadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *LoadError) Unwrap() error { return e.Err }

// LoadScript reads and parses the script at path. Skipped rows are not an
// error; they are returned in LoadResult.Errors.
func LoadScript(path string) (*LoadResult, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, &LoadError{Code: CodeScriptUnavailable, Message: fmt.Sprintf("script not found: %s", path), Err: err}
	}
	if info.IsDir() {
		return nil, &LoadError{Code: CodeScriptUnavailable, Message: fmt.Sprintf("not a file: %s", path)}
	}

	dir, name := filepath.Split(path)
	if dir == "" {
		dir = "."
	}
	res, err := script.Load(script.DirSource{Dir: dir}, name)
	if err != nil {
		return nil, &LoadError{Code: CodeScriptUnavailable, Message: fmt.Sprintf("failed to read %s", path), Err: err}
	}
	return &LoadResult{
		Path:   path,
		Name:   name,
		Dir:    dir,
		Store:  res.Store,
		Errors: res.Errors,
	}, nil
}

// loadExitError maps a LoadScript failure to a command error.
func loadExitError(err error) error {
	var le *LoadError
	if errors.As(err, &le) {
		return WrapExitError(ExitCommandError, le.Message, le.Err)
	}
	return WrapExitError(ExitCommandError, "failed to load script", err)
}

// sessionConfig selects what a session is built with.
type sessionConfig struct {
	settings config.Settings
	logger   *slog.Logger
	source   script.Source
	database string // empty: no persistence
}

// session is a headless engine: a Recorder stands in for the presenter.
type session struct {
	engine   *engine.Engine
	recorder *stage.Recorder
	store    *store.Store
}

func newSession(cfg sessionConfig) (*session, error) {
	s := &session{recorder: stage.NewRecorder()}
	opts := []engine.Option{
		engine.WithSettings(cfg.settings),
		engine.WithLogger(cfg.logger),
		engine.WithPresenter(s.recorder),
		engine.WithSource(cfg.source),
	}
	if cfg.database != "" {
		st, err := store.Open(cfg.database)
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "failed to open database", err)
		}
		s.store = st
		opts = append(opts, engine.WithPersistence(st))
	}
	s.engine = engine.New(opts...)
	return s, nil
}

// Close releases the database, if one was opened.
func (s *session) Close() error {
	if s.store == nil {
		return nil
	}
	return s.store.Close()
}

// scriptSession builds a session for a loaded script file and starts
// it at startID (empty for line 0).
func scriptSession(opts *RootOptions, ld *LoadResult, database, startID string) (*session, error) {
	if startID != "" {
		if _, ok := ld.Store.Index(startID); !ok {
			return nil, NewExitError(ExitCommandError, fmt.Sprintf("unknown line id %q", startID))
		}
	}
	s, err := newSession(sessionConfig{
		settings: opts.settings(),
		logger:   opts.logger(),
		source:   script.DirSource{Dir: ld.Dir},
		database: database,
	})
	if err != nil {
		return nil, err
	}
	if err := s.engine.Start(ld.Name, startID); err != nil {
		_ = s.Close()
		return nil, WrapExitError(ExitCommandError, "failed to start script", err)
	}
	return s, nil
}

// position moves a started session to a line given by id or index. An
// empty id and negative line leave it where it is.
func (s *session) position(id string, line int) error {
	e := s.engine
	switch {
	case id != "":
		if !e.JumpTo(id) {
			return NewExitError(ExitCommandError, fmt.Sprintf("unknown line id %q", id))
		}
	case line >= 0:
		if err := e.JumpToLine(line); err != nil {
			return WrapExitError(ExitCommandError, fmt.Sprintf("cannot move to line %d", line), err)
		}
	}
	return nil
}

// settle hurries running commands and text reveal until the current line
// waits for input. It never moves to another line.
func (s *session) settle() {
	e := s.engine
	for range maxSettleAdvances {
		switch e.Mode() {
		case engine.ModeCommandsRunning, engine.ModeTextRevealing:
			if e.Advance() {
				return
			}
		default:
			return
		}
	}
}

const maxSettleAdvances = 100

// newRegistry returns a registry holding the built-in catalog, for
// checking command names without an engine.
func newRegistry(logger *slog.Logger) *command.Registry {
	reg := command.NewRegistry(logger)
	builtin.Register(reg)
	return reg
}

// Issue is one problem found in a script.
type Issue struct {
	Row     int    `json:"row,omitempty"`
	LineID  string `json:"line_id,omitempty"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (i Issue) String() string {
	var b strings.Builder
	if i.Row > 0 {
		fmt.Fprintf(&b, "row %d: ", i.Row)
	}
	if i.LineID != "" {
		fmt.Fprintf(&b, "[%s] ", i.LineID)
	}
	fmt.Fprintf(&b, "%s: %s", i.Code, i.Message)
	return b.String()
}

// Issue codes.
const (
	IssueMalformedRow   = "MALFORMED_ROW"
	IssueDuplicateID    = "DUPLICATE_ID"
	IssueCommandSyntax  = "COMMAND_SYNTAX"
	IssueUnknownCommand = "UNKNOWN_COMMAND"
	IssueUnresolvedJump = "UNRESOLVED_JUMP"
	IssueEmptyChoice    = "EMPTY_CHOICE"
)

// CheckScript reports every problem in a loaded script: skipped rows,
// duplicate IDs, command chains that do not parse, unknown command names
// and jump targets that do not resolve. Choice resume chains are checked
// like line chains.
func CheckScript(ld *LoadResult, reg *command.Registry) []Issue {
	var issues []Issue
	for _, pe := range ld.Errors {
		issues = append(issues, Issue{Row: pe.Row, Code: IssueMalformedRow, Message: pe.Reason})
	}

	seen := make(map[string]int)
	for _, ln := range ld.Store.Lines() {
		if ln.ID != "" {
			if first, dup := seen[ln.ID]; dup {
				issues = append(issues, Issue{
					Row: ln.Row, LineID: ln.ID, Code: IssueDuplicateID,
					Message: fmt.Sprintf("id already used on row %d; jumps resolve to the first", first),
				})
			} else {
				seen[ln.ID] = ln.Row
			}
		}
		if ln.HasCommand() {
			issues = append(issues, checkChain(ln, ln.Command, ld.Store, reg)...)
		}
	}
	return issues
}

func checkChain(ln script.Line, raw string, st *script.Store, reg *command.Registry) []Issue {
	issue := func(code, msg string) Issue {
		return Issue{Row: ln.Row, LineID: ln.ID, Code: code, Message: msg}
	}

	instrs, errs := command.ParseChain(raw)
	var issues []Issue
	for _, err := range errs {
		issues = append(issues, issue(IssueCommandSyntax, err.Error()))
	}
	for _, in := range instrs {
		if _, ok := reg.Lookup(in.Name); !ok {
			issues = append(issues, issue(IssueUnknownCommand, fmt.Sprintf("unknown command %q", in.Name)))
			continue
		}
		switch strings.ToLower(in.Name) {
		case "jump":
			target := in.Args.At(0)
			if _, ok := st.Index(target); !ok {
				issues = append(issues, issue(IssueUnresolvedJump, fmt.Sprintf("jump target %q not found; play falls back to line 0", target)))
			}
		case "choice":
			opts := builtin.ParseOptions(in.Args)
			if len(opts) == 0 {
				issues = append(issues, issue(IssueEmptyChoice, "choice has no options"))
			}
			for _, o := range opts {
				if o.Resume != "" {
					issues = append(issues, checkChain(ln, o.Resume, st, reg)...)
				}
			}
		}
	}
	return issues
}
