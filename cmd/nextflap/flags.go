package main

import "flag"

// cliFlags holds the CLI surface: nextflap [-ground] [-static] [-nsas]
// [-mutex] [-config file] <domain-file> <problem-file>.
type cliFlags struct {
	writeGround bool
	keepStatic  bool
	skipSAS     bool
	writeMutex  bool
	configPath  string
}

// parse reads flags out of args and returns the remaining positional
// arguments (the domain and problem file paths).
func (f *cliFlags) parse(args []string) ([]string, error) {
	fs := flag.NewFlagSet("nextflap", flag.ContinueOnError)
	fs.BoolVar(&f.writeGround, "ground", false, "write the grounded domain and problem back out as PDDL")
	fs.BoolVar(&f.keepStatic, "static", false, "preserve static predicates in the grounded task")
	fs.BoolVar(&f.skipSAS, "nsas", false, "skip the SAS+ merge step, actions remain over booleans")
	fs.BoolVar(&f.writeMutex, "mutex", false, "write the computed mutex pairs to mutex.txt")
	fs.StringVar(&f.configPath, "config", "", "path to a YAML configuration file")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return fs.Args(), nil
}
