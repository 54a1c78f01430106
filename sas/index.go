package sas

// buildIndexes computes Producers and Requirers: per (variable, value),
// which actions can set or read it. Index -1 denotes the initial-state
// assignment, the artificial producer the successor generator falls back
// to when no real action has produced a value yet (§4.6 step 2).
func (t *Task) buildIndexes() {
	for v, val := range t.InitValue {
		t.addProducer(v, val, -1)
	}
	for i, a := range t.Actions {
		for _, e := range a.AtStartEff {
			t.addProducer(e.Var, e.Value, i)
		}
		for _, e := range a.AtEndEff {
			t.addProducer(e.Var, e.Value, i)
		}
		for _, ce := range a.ConditionalEffects {
			for _, e := range ce.AtStartEff {
				t.addProducer(e.Var, e.Value, i)
			}
			for _, e := range ce.AtEndEff {
				t.addProducer(e.Var, e.Value, i)
			}
		}
		for _, c := range a.AtStartCond {
			t.addRequirer(c.Var, c.Value, i)
		}
		for _, c := range a.OverAllCond {
			t.addRequirer(c.Var, c.Value, i)
		}
		for _, c := range a.AtEndCond {
			t.addRequirer(c.Var, c.Value, i)
		}
	}
}

func (t *Task) addProducer(v int, value Value, action int) {
	if t.Producers[v] == nil {
		t.Producers[v] = map[Value][]int{}
	}
	t.Producers[v][value] = append(t.Producers[v][value], action)
}

func (t *Task) addRequirer(v int, value Value, action int) {
	if t.Requirers[v] == nil {
		t.Requirers[v] = map[Value][]int{}
	}
	t.Requirers[v][value] = append(t.Requirers[v][value], action)
}

// PermanentMutex reports whether atoms a and b can never both hold,
// derived from the underlying ground mutex graph restricted to one
// representative fact per atom.
func (t *Task) PermanentMutex(a, b Atom) bool {
	if a.Var == b.Var {
		return a.Value != b.Value
	}
	va, vb := t.Variables[a.Var], t.Variables[b.Var]
	if int(a.Value) >= len(va.Facts) || int(b.Value) >= len(vb.Facts) {
		// one side is "none-of-those": never provably mutex with another
		// variable's value on its own.
		return false
	}
	return t.Mutex.Mutex(va.Facts[a.Value], vb.Facts[b.Value])
}
