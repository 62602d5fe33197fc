package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/compozy/subsync/internal/domain"
)

// promptConfirmer asks on the terminal before changes are discarded.
type promptConfirmer struct {
	in  *bufio.Reader
	out io.Writer
}

func newPromptConfirmer(in io.Reader, out io.Writer) *promptConfirmer {
	return &promptConfirmer{in: bufio.NewReader(in), out: out}
}

// Confirm lists the affected submodules and reads a yes/no answer. Anything but
// "y" or "yes" declines, including end of input.
func (p *promptConfirmer) Confirm(_ context.Context, conflicted []domain.SubmoduleEntry) (bool, error) {
	fmt.Fprintln(p.out, "The following submodules have merge conflicts:")
	for _, e := range conflicted {
		fmt.Fprintf(p.out, "  %s\n", e.Path)
	}
	fmt.Fprint(p.out, "Discard changes? Local changes in these submodules will be lost. [y/N] ")
	line, err := p.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

func alwaysConfirm(context.Context, []domain.SubmoduleEntry) (bool, error) {
	return true, nil
}
