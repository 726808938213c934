package power

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Pmset reads the power source from "pmset -g batt" on macOS
type Pmset struct {
	runner Runner
}

// NewPmset creates a pmset reader
func NewPmset(runner Runner) (*Pmset, error) {
	if runner == nil {
		return nil, errors.New("pmset: runner is required")
	}
	return &Pmset{runner: runner}, nil
}

// ReadStatus parses the "Now drawing from" line
func (p *Pmset) ReadStatus(ctx context.Context) (Status, error) {
	out, err := p.runner.Run(ctx, "pmset", "-g", "batt")
	if err != nil {
		return StatusUnknown, fmt.Errorf("pmset: %w", err)
	}
	return parsePmset(string(out)), nil
}

func parsePmset(out string) Status {
	for _, line := range strings.Split(out, "\n") {
		if !strings.Contains(line, "Now drawing from") {
			continue
		}
		switch {
		case strings.Contains(line, "'AC Power'"), strings.Contains(line, "'UPS Power'"):
			return StatusOnline
		case strings.Contains(line, "'Battery Power'"):
			return StatusOffline
		}
	}
	return StatusUnknown
}
