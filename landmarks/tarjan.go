package landmarks

import "github.com/dsic-upv/nextflap-go/sas"

// collapseCycles finds strongly-connected components of size > 1 in the
// ordering graph and rewrites them into a single disjunctive landmark,
// per Design Note §9: landmark orderings can admit cycles on ill-formed
// input, and the transitive reduction alone does not remove them.
func collapseCycles(g *Graph) {
	adj := map[sas.Atom][]sas.Atom{}
	nodes := map[sas.Atom]bool{}
	for _, o := range g.Orders {
		adj[o.From] = append(adj[o.From], o.To)
		nodes[o.From] = true
		nodes[o.To] = true
	}

	tj := &tarjan{adj: adj, index: map[sas.Atom]int{}, low: map[sas.Atom]int{}, onStack: map[sas.Atom]bool{}}
	for n := range nodes {
		if _, visited := tj.index[n]; !visited {
			tj.strongConnect(n)
		}
	}

	for _, scc := range tj.sccs {
		if len(scc) <= 1 {
			continue
		}
		g.Disjunctive = append(g.Disjunctive, DisjunctiveLandmark{Atoms: scc})
		inSCC := map[sas.Atom]bool{}
		for _, a := range scc {
			inSCC[a] = true
		}
		var kept []Order
		for _, o := range g.Orders {
			if inSCC[o.From] && inSCC[o.To] {
				continue
			}
			kept = append(kept, o)
		}
		g.Orders = kept

		var keptLandmarks []Landmark
		for _, l := range g.Landmarks {
			if !inSCC[l.Atom] {
				keptLandmarks = append(keptLandmarks, l)
			}
		}
		g.Landmarks = keptLandmarks
	}
}

// tarjan runs Tarjan's strongly-connected-components algorithm
// iteratively-in-spirit (recursive here; landmark graphs are small).
type tarjan struct {
	adj     map[sas.Atom][]sas.Atom
	index   map[sas.Atom]int
	low     map[sas.Atom]int
	onStack map[sas.Atom]bool
	stack   []sas.Atom
	counter int
	sccs    [][]sas.Atom
}

func (tj *tarjan) strongConnect(v sas.Atom) {
	tj.index[v] = tj.counter
	tj.low[v] = tj.counter
	tj.counter++
	tj.stack = append(tj.stack, v)
	tj.onStack[v] = true

	for _, w := range tj.adj[v] {
		if _, visited := tj.index[w]; !visited {
			tj.strongConnect(w)
			if tj.low[w] < tj.low[v] {
				tj.low[v] = tj.low[w]
			}
		} else if tj.onStack[w] {
			if tj.index[w] < tj.low[v] {
				tj.low[v] = tj.index[w]
			}
		}
	}

	if tj.low[v] == tj.index[v] {
		var component []sas.Atom
		for {
			n := len(tj.stack) - 1
			w := tj.stack[n]
			tj.stack = tj.stack[:n]
			tj.onStack[w] = false
			component = append(component, w)
			if w == v {
				break
			}
		}
		tj.sccs = append(tj.sccs, component)
	}
}
