package command

import "time"

// Outcome records how one instruction of a chain ended.
type Outcome struct {
	Instruction Instruction
	OK          bool
	Unknown     bool
	Err         error
}

// Chain runs the instructions of one command cell strictly in order.
// Each sub-command's task must reach a terminal state before the next
// starts. Unknown names are logged and skipped.
type Chain struct {
	reg    *Registry
	env    Env
	instrs []Instruction
	next   int

	cur    Task
	curCmd Command
	curIn  Instruction

	hurry    bool
	aborted  bool
	outcomes []Outcome
}

func newChain(reg *Registry, env Env, instrs []Instruction) *Chain {
	return &Chain{reg: reg, env: env, instrs: instrs}
}

// Step advances the current task by dt and starts following instructions
// as earlier ones finish. A freshly started task is stepped with zero so
// that zero-length work completes within the same call. Step reports
// whether the whole chain has finished.
func (c *Chain) Step(dt time.Duration) bool {
	if c.cur != nil {
		if !c.cur.Done() && !c.cur.Step(dt) {
			return false
		}
		c.settle()
	}
	for !c.aborted && c.next < len(c.instrs) {
		in := c.instrs[c.next]
		c.next++
		cmd, ok := c.reg.Lookup(in.Name)
		if !ok {
			c.reg.logUnknown(in)
			c.outcomes = append(c.outcomes, Outcome{Instruction: in, Unknown: true})
			continue
		}
		task := cmd.ExecuteAsync(c.env, in.Args)
		c.cur, c.curCmd, c.curIn = task, cmd, in
		if !task.Done() {
			c.reg.track(cmd)
			if c.hurry {
				task.Interrupt()
			} else if !task.Step(0) {
				return false
			}
		}
		c.settle()
	}
	return true
}

func (c *Chain) settle() {
	c.reg.untrack(c.curCmd)
	if err := c.cur.Err(); err != nil {
		c.reg.logger.Debug("command ended with error",
			"command", c.curIn.Name,
			"error", err,
		)
	}
	c.outcomes = append(c.outcomes, Outcome{
		Instruction: c.curIn,
		OK:          c.cur.OK(),
		Err:         c.cur.Err(),
	})
	c.cur, c.curCmd = nil, nil
}

// Hurry finishes the running task and makes every task started later
// finish immediately, so the rest of the chain lands in its final state
// within the next Step.
func (c *Chain) Hurry() {
	c.hurry = true
	if c.cur != nil && !c.cur.Done() {
		c.cur.Interrupt()
	}
}

// Abort interrupts the running task and discards the instructions that
// have not started.
func (c *Chain) Abort() {
	if c.aborted {
		return
	}
	c.aborted = true
	if c.cur != nil {
		if !c.cur.Done() {
			c.cur.Interrupt()
		}
		c.settle()
	}
}

// Done reports whether every instruction has run or the chain was aborted.
func (c *Chain) Done() bool {
	return c.cur == nil && (c.aborted || c.next >= len(c.instrs))
}

// Current returns the instruction whose task is in flight.
func (c *Chain) Current() (Instruction, bool) {
	if c.cur == nil {
		return Instruction{}, false
	}
	return c.curIn, true
}

// Outcomes returns the outcomes recorded so far, in execution order.
func (c *Chain) Outcomes() []Outcome {
	return c.outcomes
}
