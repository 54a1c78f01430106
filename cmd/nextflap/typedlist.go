package main

import "github.com/dsic-upv/nextflap-go/task"

// typedGroup is one run of names sharing a declared type in PDDL's typed-list
// syntax: "a b - animal c - vehicle d" groups as [{a,b}-animal] [{c}-vehicle]
// [{d}-object].
type typedGroup struct {
	Names []string
	Type  task.Type
}

func stripVar(name string) string {
	if len(name) > 0 && name[0] == '?' {
		return name[1:]
	}
	return name
}

// typedAtomGroups parses a flat atom list in PDDL typed-list syntax.
func typedAtomGroups(atoms []string) []typedGroup {
	var out []typedGroup
	var cur []string
	i := 0
	for i < len(atoms) {
		a := atoms[i]
		if a == "-" {
			typ := task.UniversalType
			if i+1 < len(atoms) {
				typ = task.Type(atoms[i+1])
			}
			out = append(out, typedGroup{Names: cur, Type: typ})
			cur = nil
			i += 2
			continue
		}
		cur = append(cur, a)
		i++
	}
	if len(cur) > 0 {
		out = append(out, typedGroup{Names: cur, Type: task.UniversalType})
	}
	return out
}

func atomsOf(items []sexpr) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Atom
	}
	return out
}

// parseTypedParameters parses a (?x ?y - type ...) parameter list into
// TypedParameters, variable names stripped of their leading '?'.
func parseTypedParameters(items []sexpr) []task.TypedParameter {
	var out []task.TypedParameter
	for _, g := range typedAtomGroups(atomsOf(items)) {
		for _, n := range g.Names {
			out = append(out, task.TypedParameter{Name: stripVar(n), Type: g.Type})
		}
	}
	return out
}

// parseTypedObjects parses a (a b - type c ...) object/constant list into
// task.Objects. Object.Types holds only the one declared type; subtype
// closure is left to the type graph.
func parseTypedObjects(items []sexpr) []task.Object {
	var out []task.Object
	for _, grp := range typedAtomGroups(atomsOf(items)) {
		for _, n := range grp.Names {
			out = append(out, task.Object{Name: n, Types: []task.Type{grp.Type}})
		}
	}
	return out
}
