package pddlio

import (
	"bufio"
	"fmt"
	"io"
	"sort"

	"github.com/dsic-upv/nextflap-go/sas/mutexgraph"
	"github.com/dsic-upv/nextflap-go/task"
)

// WriteMutex writes one proven-mutex fact pair per line to mutex.txt
// (CLI flag -mutex), sorted for a deterministic diff-friendly file.
func WriteMutex(w io.Writer, domain *task.Domain, mutex *mutexgraph.Graph) error {
	bw := bufio.NewWriter(w)

	pairs := mutex.Pairs()
	lines := make([]string, len(pairs))
	for i, p := range pairs {
		lines[i] = fmt.Sprintf("%s %s", renderFact(domain, p.A), renderFact(domain, p.B))
	}
	sort.Strings(lines)

	for _, l := range lines {
		fmt.Fprintln(bw, l)
	}
	return bw.Flush()
}
