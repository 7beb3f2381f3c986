// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.


package strips

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ErrMalformedDIMACS is returned by ReadDIMACS and ReadModel.
var ErrMalformedDIMACS = errors.New("malformed DIMACS")

// WriteDIMACS writes the formula as "p cnf <vars> <clauses>" followed by
// one zero-terminated clause per line.
func (c *CNF) WriteDIMACS(w io.Writer) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "p cnf %d %d\n", c.NumVars, len(c.Clauses))
	buf := make([]byte, 0, 64)
	for _, clause := range c.Clauses {
		buf = buf[:0]
		for _, l := range clause {
			buf = strconv.AppendInt(buf, int64(l), 10)
			buf = append(buf, ' ')
		}
		buf = append(buf, '0', '\n')
		if _, err := bw.Write(buf); err != nil {
			return fmt.Errorf("write clause: %w", err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("flush dimacs: %w", err)
	}
	return nil
}

// WriteLiteralMap writes one "<index>-><name>" line per variable.
func (c *CNF) WriteLiteralMap(w io.Writer) error {
	bw := bufio.NewWriter(w)
	for i, name := range c.Names {
		fmt.Fprintf(bw, "%d->%s\n", i+1, name)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("flush literal map: %w", err)
	}
	return nil
}

// ReadDIMACS parses a DIMACS CNF. Comment lines ("c ...") and blank lines
// are skipped, a "%" line ends the input. The clause count must match the
// header exactly.
func ReadDIMACS(r io.Reader) (*CNF, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var (
		cnf        *CNF
		numClauses int
		pending    []int
		lineNo     int
	)

	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "c") {
			continue
		}
		if strings.HasPrefix(line, "%") {
			break
		}

		if cnf == nil {
			fields := strings.Fields(line)
			if len(fields) != 4 || fields[0] != "p" || fields[1] != "cnf" {
				return nil, fmt.Errorf("%w: line %d: expected 'p cnf <vars> <clauses>', got %q",
					ErrMalformedDIMACS, lineNo, line)
			}
			vars, err := strconv.Atoi(fields[2])
			if err != nil || vars < 0 {
				return nil, fmt.Errorf("%w: line %d: invalid num_vars %q", ErrMalformedDIMACS, lineNo, fields[2])
			}
			numClauses, err = strconv.Atoi(fields[3])
			if err != nil || numClauses < 0 {
				return nil, fmt.Errorf("%w: line %d: invalid num_clauses %q", ErrMalformedDIMACS, lineNo, fields[3])
			}
			cnf = &CNF{NumVars: vars, Clauses: make([][]int, 0, numClauses)}
			continue
		}

		// Clauses may span lines; a 0 closes one.
		for _, tok := range strings.Fields(line) {
			v, err := strconv.Atoi(tok)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: non-integer token %q", ErrMalformedDIMACS, lineNo, tok)
			}
			if v == 0 {
				cnf.Clauses = append(cnf.Clauses, pending)
				pending = nil
				continue
			}
			if abs(v) > cnf.NumVars {
				return nil, fmt.Errorf("%w: line %d: literal %d out of range 1..%d",
					ErrMalformedDIMACS, lineNo, v, cnf.NumVars)
			}
			pending = append(pending, v)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("scan dimacs: %w", err)
	}
	if cnf == nil {
		return nil, fmt.Errorf("%w: missing 'p cnf' header", ErrMalformedDIMACS)
	}
	if len(pending) > 0 {
		return nil, fmt.Errorf("%w: last clause missing terminating 0", ErrMalformedDIMACS)
	}
	if len(cnf.Clauses) != numClauses {
		return nil, fmt.Errorf("%w: header says %d clauses, saw %d", ErrMalformedDIMACS, numClauses, len(cnf.Clauses))
	}
	return cnf, nil
}

// ReadModel parses a solver model: the signed integers of every "v" line
// (competition format) or of bare integer lines (minisat format). A "SAT"
// or "s SATISFIABLE" line is accepted; an UNSAT answer returns a nil
// model. A terminating 0 is dropped.
func ReadModel(r io.Reader) ([]int, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var model []int
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		switch {
		case line == "" || strings.HasPrefix(line, "c"):
			continue
		case line == "SAT" || line == "s SATISFIABLE":
			continue
		case line == "UNSAT" || line == "s UNSATISFIABLE":
			return nil, nil
		}
		line = strings.TrimPrefix(line, "v ")
		for _, tok := range strings.Fields(line) {
			v, err := strconv.Atoi(tok)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: non-integer token %q", ErrMalformedDIMACS, lineNo, tok)
			}
			if v != 0 {
				model = append(model, v)
			}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("scan model: %w", err)
	}
	return model, nil
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
