// Package process keeps a single interactive kintai instance per user.
package process

import (
	"strings"

	"github.com/google/gops/goprocess"
)

// Process is one running Go process.
type Process struct {
	PID  int
	Exec string
	Path string
}

// Table is a snapshot of the Go processes running on the machine.
type Table struct {
	procs []Process
}

// Snapshot lists the running Go processes.
func Snapshot() *Table {
	t := &Table{}

	for _, proc := range goprocess.FindAll() {
		t.procs = append(t.procs, Process{
			PID:  proc.PID,
			Exec: proc.Exec,
			Path: proc.Path,
		})
	}

	return t
}

// Len returns how many processes the snapshot holds.
func (t *Table) Len() int { return len(t.procs) }

// Running reports whether pid is alive and its executable name or path
// contains name.
func (t *Table) Running(pid int, name string) bool {
	name = strings.ToLower(name)

	for _, proc := range t.procs {
		if proc.PID == pid {
			return strings.Contains(strings.ToLower(proc.Exec), name) || strings.Contains(strings.ToLower(proc.Path), name)
		}
	}

	return false
}
