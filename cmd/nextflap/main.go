// Command nextflap runs the temporal-numeric automated planner end to
// end: it reads a PDDL domain and problem file, grounds and translates
// them to SAS+, searches for a plan, and writes the result to standard
// output in the conventional temporal plan format.
//
// Usage:
//
//	nextflap [-ground] [-static] [-nsas] [-mutex] [-config file] <domain-file> <problem-file>
//
// -ground writes the grounded domain and problem back out as PDDL to
// ground.pddl; -static preserves static predicates in the grounded task
// instead of constant-folding them away; -nsas skips the SAS+ merge step
// so actions remain over plain booleans; -mutex writes the computed mutex
// pairs to mutex.txt. Exit code 0 means a plan was found, 1 means the
// search exhausted its space with no plan, 2 means the inputs were
// malformed.
package main

import (
	"context"
	"fmt"
	stdlog "log"
	"os"

	mongodriver "go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"goa.design/clue/log"

	"github.com/dsic-upv/nextflap-go/config"
	"github.com/dsic-upv/nextflap-go/ground"
	"github.com/dsic-upv/nextflap-go/heuristic"
	"github.com/dsic-upv/nextflap-go/pddlio"
	"github.com/dsic-upv/nextflap-go/plan"
	"github.com/dsic-upv/nextflap-go/planarchive"
	"github.com/dsic-upv/nextflap-go/plannererrors"
	"github.com/dsic-upv/nextflap-go/sas"
	"github.com/dsic-upv/nextflap-go/sas/mutexgraph"
	"github.com/dsic-upv/nextflap-go/search"
	"github.com/dsic-upv/nextflap-go/statecache"
	"github.com/dsic-upv/nextflap-go/successor"
	"github.com/dsic-upv/nextflap-go/task"
	"github.com/dsic-upv/nextflap-go/telemetry"
	"github.com/dsic-upv/nextflap-go/validator"
)

func main() {
	os.Exit(run())
}

func run() int {
	var flags cliFlags
	args, err := flags.parse(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	if len(args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: nextflap [-ground] [-static] [-nsas] [-mutex] [-config file] <domain-file> <problem-file>")
		return 2
	}
	domainPath, problemPath := args[0], args[1]

	cfg := config.Default()
	if flags.configPath != "" {
		cfg, err = config.Load(flags.configPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 2
		}
	}
	cfg.KeepStaticData = flags.keepStatic
	cfg.SkipSASTranslation = flags.skipSAS
	cfg.WriteMutexFile = cfg.WriteMutexFile || flags.writeMutex

	format := log.FormatJSON
	if log.IsTerminal() {
		format = log.FormatTerminal
	}
	ctx := log.Context(context.Background(), log.WithFormat(format))

	logger := telemetry.NewClueLogger()
	diag := telemetry.NewDiagnosticWriter(os.Stdout, logger)

	domain, problem, err := parseInputs(domainPath, problemPath)
	if err != nil {
		diag.Printf(ctx, "parse error: %v", err)
		return 2
	}

	gt, err := ground.Ground(domain, problem, cfg.KeepStaticData)
	if err != nil {
		diag.Printf(ctx, "grounding error: %v", err)
		return 2
	}
	diag.Printf(ctx, "grounded %d actions", len(gt.Actions))

	if flags.writeGround {
		if err := writeGrounded(domain, problem, gt); err != nil {
			diag.Printf(ctx, "ground output error: %v", err)
			return 2
		}
	}

	st, err := sas.Translate(gt, cfg.SkipSASTranslation)
	if err != nil {
		diag.Printf(ctx, "translation error: %v", err)
		return 2
	}
	diag.Printf(ctx, "translated %d SAS+ variables", len(st.Variables))

	if cfg.WriteMutexFile {
		if err := writeMutexFile(domain, st.Mutex); err != nil {
			diag.Printf(ctx, "mutex output error: %v", err)
			return 2
		}
	}

	cache, err := newStateCache(cfg)
	if err != nil {
		diag.Printf(ctx, "state cache error: %v", err)
		return 2
	}

	archive, closeArchive, err := newArchive(ctx, cfg)
	if err != nil {
		diag.Printf(ctx, "plan archive error: %v", err)
		return 2
	}
	defer closeArchive()

	arena := plan.NewArena()
	gen := successor.New(st, arena, cfg.Epsilon.Seconds(), cache)
	eval := heuristic.New(st, cfg.NumericReachabilityCutoff)
	val := validator.NewInterval()
	engine := search.New(st, gen, eval, val, cfg, diag, logger)

	result := engine.Run(ctx, arena.Root())
	if result.Found == nil {
		perr := plannererrors.New(plannererrors.KindUnsolvable, "search exhausted with no plan found")
		diag.Printf(ctx, "%s", perr.Error())
		return 1
	}

	rec := planarchive.FromNode(problem.Name, result.Found)
	if err := archive.SavePlan(ctx, rec); err != nil {
		diag.Printf(ctx, "archive write failed: %v", err)
	}
	if err := pddlio.WritePlan(os.Stdout, rec); err != nil {
		diag.Printf(ctx, "plan output error: %v", err)
		return 2
	}
	return 0
}

// parseInputs reads and parses the domain and problem files.
func parseInputs(domainPath, problemPath string) (*task.Domain, *task.Problem, error) {
	domainSrc, err := os.ReadFile(domainPath)
	if err != nil {
		return nil, nil, err
	}
	domain, err := parseDomain(string(domainSrc))
	if err != nil {
		return nil, nil, err
	}
	problemSrc, err := os.ReadFile(problemPath)
	if err != nil {
		return nil, nil, err
	}
	problem, err := parseProblem(string(problemSrc), domain)
	if err != nil {
		return nil, nil, err
	}
	return domain, problem, nil
}

func writeGrounded(domain *task.Domain, problem *task.Problem, gt *ground.Task) error {
	f, err := os.Create("ground.pddl")
	if err != nil {
		return err
	}
	defer f.Close()
	if err := pddlio.WriteDomain(f, domain, gt); err != nil {
		return err
	}
	return pddlio.WriteProblem(f, domain, problem)
}

func writeMutexFile(domain *task.Domain, mutex *mutexgraph.Graph) error {
	f, err := os.Create("mutex.txt")
	if err != nil {
		return err
	}
	defer f.Close()
	return pddlio.WriteMutex(f, domain, mutex)
}

func newStateCache(cfg config.Config) (statecache.Cache, error) {
	switch cfg.StateCacheBackend {
	case config.StateCacheRedis:
		return statecache.NewRedis(cfg.RedisAddr, "nextflap"), nil
	case config.StateCacheMemory, "":
		return statecache.NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown state cache backend %q", cfg.StateCacheBackend)
	}
}

func newArchive(ctx context.Context, cfg config.Config) (planarchive.Archive, func(), error) {
	switch cfg.PlanArchiveBackend {
	case config.PlanArchiveMongo:
		client, err := mongodriver.Connect(options.Client().ApplyURI(cfg.MongoURI))
		if err != nil {
			return nil, func() {}, fmt.Errorf("connect mongo: %w", err)
		}
		closeFn := func() {
			if err := client.Disconnect(ctx); err != nil {
				stdlog.Printf("disconnect mongo: %v", err)
			}
		}
		archive, err := planarchive.NewMongo(planarchive.MongoOptions{Client: client, Database: cfg.MongoDatabase})
		if err != nil {
			closeFn()
			return nil, func() {}, err
		}
		return archive, closeFn, nil
	case config.PlanArchiveNone, "":
		return planarchive.Noop{}, func() {}, nil
	default:
		return nil, func() {}, fmt.Errorf("unknown plan archive backend %q", cfg.PlanArchiveBackend)
	}
}
