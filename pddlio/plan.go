package pddlio

import (
	"bufio"
	"fmt"
	"io"

	"github.com/dsic-upv/nextflap-go/planarchive"
)

// WritePlan writes rec in the conventional temporal PDDL plan format (§6):
// one line per step, "<start-time>: <action-name> [<duration>]". Steps are
// assumed already in start-time order, as FromNode produces them by walking
// the plan chain root to tip.
func WritePlan(w io.Writer, rec planarchive.Record) error {
	bw := bufio.NewWriter(w)
	for _, s := range rec.Steps {
		fmt.Fprintf(bw, "%.3f: %s [%.3f]\n", s.Start, s.ActionName, s.Duration)
	}
	return bw.Flush()
}
