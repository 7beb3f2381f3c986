// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package automaton

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/AleutianAI/AleutianFMA/pkg/validation"
)

// ParseError reports a malformed automaton description.
type ParseError struct {
	// Line is the 1-indexed line number, or 0 when the problem is not tied
	// to a single line.
	Line int

	// Msg describes the problem.
	Msg string
}

func (e *ParseError) Error() string {
	if e.Line == 0 {
		return "parse: " + e.Msg
	}
	return fmt.Sprintf("parse: line %d: %s", e.Line, e.Msg)
}

func parseErrorf(line int, format string, args ...any) *ParseError {
	return &ParseError{Line: line, Msg: fmt.Sprintf(format, args...)}
}

const (
	sectionSeparator = "-"
	noRhoToken       = "_"
	finalToken       = "F"
	emptyToken       = "#"
	commentPrefix    = "%"
)

type parsedState struct {
	line  int
	name  string
	rho   int
	final bool
}

type parsedTransition struct {
	line     int
	from, to string
	reg      int
}

// ParseFile reads and parses the automaton description at path.
func ParseFile(path string) (*Automaton, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open automaton: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// ParseString parses an in-memory automaton description.
func ParseString(s string) (*Automaton, error) {
	return Parse(strings.NewReader(s))
}

// Parse reads an automaton description.
//
// Description:
//
//	Grammar, one item per line (blank lines and lines starting with '%'
//	are ignored):
//
//	  <name> [<rho>|_] [F]       zero or more state lines
//	  -
//	  <initial state name>
//	  <sym>|# ...                initial registers, one token per register
//	  -
//	  <source> <register> <target>   zero or more transitions
//
//	Register numbers on disk are 1-indexed, both for rho and for transition
//	labels; in memory they are 0-indexed.
//
// Outputs:
//   - *Automaton: The validated automaton.
//   - error: *ParseError naming the offending line, or a read error.
func Parse(r io.Reader) (*Automaton, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	const (
		phaseStates = iota
		phaseInitial
		phaseRegisters
		phaseHeaderEnd
		phaseTransitions
	)

	var (
		phase       = phaseStates
		lineNo      int
		states      []parsedState
		transitions []parsedTransition
		initial     string
		initialLine int
		regs        Registers
		regsLine    int
	)

	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, commentPrefix) {
			continue
		}
		fields := strings.Fields(line)

		switch phase {
		case phaseStates:
			if line == sectionSeparator {
				phase = phaseInitial
				continue
			}
			st, err := parseStateLine(lineNo, fields)
			if err != nil {
				return nil, err
			}
			states = append(states, st)

		case phaseInitial:
			if len(fields) != 1 {
				return nil, parseErrorf(lineNo, "expected initial state name, got %d tokens", len(fields))
			}
			initial, initialLine = fields[0], lineNo
			phase = phaseRegisters

		case phaseRegisters:
			regs = make(Registers, 0, len(fields))
			for _, tok := range fields {
				if tok == emptyToken {
					regs = append(regs, Empty)
					continue
				}
				v, err := strconv.Atoi(tok)
				if err != nil || v < 0 {
					return nil, parseErrorf(lineNo, "register value %q is neither a non-negative integer nor %q", tok, emptyToken)
				}
				regs = append(regs, Symbol(v))
			}
			regsLine = lineNo
			phase = phaseHeaderEnd

		case phaseHeaderEnd:
			if line != sectionSeparator {
				return nil, parseErrorf(lineNo, "expected %q after the register line, got %q", sectionSeparator, line)
			}
			phase = phaseTransitions

		case phaseTransitions:
			if len(fields) != 3 {
				return nil, parseErrorf(lineNo, "transition needs 3 tokens, got %d", len(fields))
			}
			reg, err := strconv.Atoi(fields[1])
			if err != nil {
				return nil, parseErrorf(lineNo, "register label %q is not an integer", fields[1])
			}
			transitions = append(transitions, parsedTransition{
				line: lineNo, from: fields[0], reg: reg - 1, to: fields[2],
			})
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read automaton: %w", err)
	}
	if phase != phaseTransitions {
		return nil, parseErrorf(lineNo, "unexpected end of input")
	}

	return assemble(states, transitions, initial, initialLine, regs, regsLine)
}

func parseStateLine(lineNo int, fields []string) (parsedState, error) {
	st := parsedState{line: lineNo, name: fields[0], rho: noAssignment}
	rest := fields[1:]
	if len(rest) > 2 {
		return st, parseErrorf(lineNo, "state line has %d tokens, want at most 3", len(fields))
	}
	if n := len(rest); n > 0 && rest[n-1] == finalToken {
		st.final = true
		rest = rest[:n-1]
	}
	if len(rest) == 1 {
		if rest[0] != noRhoToken {
			v, err := strconv.Atoi(rest[0])
			if err != nil || v < 1 {
				return st, parseErrorf(lineNo, "rho %q is neither a 1-indexed register nor %q", rest[0], noRhoToken)
			}
			st.rho = v - 1
		}
	} else if len(rest) > 1 {
		return st, parseErrorf(lineNo, "unexpected token %q", rest[1])
	}
	return st, nil
}

// assemble resolves names and ranges with line numbers, then builds.
func assemble(states []parsedState, transitions []parsedTransition, initial string,
	initialLine int, regs Registers, regsLine int) (*Automaton, error) {

	r := len(regs)
	if r == 0 {
		return nil, parseErrorf(regsLine, "register line must list at least one register")
	}
	seenSym := make(map[Symbol]bool, r)
	for _, s := range regs {
		if s == Empty {
			continue
		}
		if seenSym[s] {
			return nil, parseErrorf(regsLine, "symbol %d stored in two registers", int(s))
		}
		seenSym[s] = true
	}

	b := NewBuilder()
	declared := make(map[string]bool, len(states))
	for _, st := range states {
		if declared[st.name] {
			return nil, parseErrorf(st.line, "duplicate state %q", st.name)
		}
		declared[st.name] = true
		if st.rho != noAssignment && st.rho >= r {
			return nil, parseErrorf(st.line, "rho register %d exceeds register count %d", st.rho+1, r)
		}
		var opts []StateOption
		if st.final {
			opts = append(opts, Final())
		}
		if st.rho != noAssignment {
			opts = append(opts, Assign(st.rho))
		}
		b.State(st.name, opts...)
	}
	if !declared[initial] {
		return nil, parseErrorf(initialLine, "initial state %q is not declared", initial)
	}
	b.Initial(initial).Registers(regs...)

	for _, t := range transitions {
		switch {
		case !declared[t.from]:
			return nil, parseErrorf(t.line, "unknown source state %q", t.from)
		case !declared[t.to]:
			return nil, parseErrorf(t.line, "unknown target state %q", t.to)
		case t.reg < 0 || t.reg >= r:
			return nil, parseErrorf(t.line, "register label %d outside [1,%d]", t.reg+1, r)
		}
		b.Transition(t.from, t.reg, t.to)
	}

	a, err := b.Build()
	if err != nil {
		return nil, &ParseError{Msg: err.Error()}
	}
	return a, nil
}

// -----------------------------------------------------------------------------
// Emitter
// -----------------------------------------------------------------------------

// ErrNotFormattable is returned when an automaton cannot be written in the
// text format.
var ErrNotFormattable = errors.New("automaton cannot be formatted")

// Format writes a in the format accepted by Parse.
//
// Outputs:
//   - error: ErrNotFormattable for zero registers or state names the grammar
//     cannot carry; write errors otherwise.
func Format(w io.Writer, a *Automaton) error {
	if a.NumRegisters() == 0 {
		return fmt.Errorf("%w: zero registers", ErrNotFormattable)
	}
	for _, s := range a.states {
		if err := validation.ValidateStateName(s.Name); err != nil {
			return fmt.Errorf("%w: %w", ErrNotFormattable, err)
		}
	}

	bw := bufio.NewWriter(w)
	for q, s := range a.states {
		rho := noRhoToken
		if r, ok := a.Assignment(q); ok {
			rho = strconv.Itoa(r + 1)
		}
		if s.Final {
			fmt.Fprintf(bw, "%s %s %s\n", s.Name, rho, finalToken)
		} else {
			fmt.Fprintf(bw, "%s %s\n", s.Name, rho)
		}
	}
	fmt.Fprintln(bw, sectionSeparator)
	fmt.Fprintln(bw, a.states[a.initial].Name)
	tokens := make([]string, len(a.registers))
	for i, s := range a.registers {
		tokens[i] = s.String()
	}
	fmt.Fprintln(bw, strings.Join(tokens, " "))
	fmt.Fprintln(bw, sectionSeparator)
	for q := range a.mu {
		for reg, targets := range a.mu[q] {
			for _, t := range targets {
				fmt.Fprintf(bw, "%s %d %s\n", a.states[q].Name, reg+1, a.states[t].Name)
			}
		}
	}
	return bw.Flush()
}

// FormatString renders a in the text format.
func FormatString(a *Automaton) (string, error) {
	var sb strings.Builder
	if err := Format(&sb, a); err != nil {
		return "", err
	}
	return sb.String(), nil
}
