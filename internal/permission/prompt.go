package permission

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"sync"
)

// Prompt asks the user for consent on an interactive terminal. Check reports
// the last answer; Request asks at most once and remembers the outcome, the
// way a platform permission dialog would.
type Prompt struct {
	out io.Writer

	mu       sync.Mutex
	scanner  *bufio.Scanner
	asked    bool
	decision Decision
}

// NewPrompt creates a provider reading answers from in and writing the
// question to out.
func NewPrompt(in io.Reader, out io.Writer) *Prompt {
	return &Prompt{
		out:     out,
		scanner: bufio.NewScanner(in),
	}
}

func (p *Prompt) Check() Decision {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.asked {
		return Denied
	}
	return p.decision
}

func (p *Prompt) Request() Decision {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.asked {
		return p.decision
	}

	fmt.Fprint(p.out, "Allow this application to record device location? [y/N]: ")

	p.asked = true
	p.decision = Denied
	if p.scanner.Scan() {
		answer := strings.ToLower(strings.TrimSpace(p.scanner.Text()))
		if answer == "y" || answer == "yes" {
			p.decision = Granted
		}
	}
	return p.decision
}
