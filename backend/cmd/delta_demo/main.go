package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"strconv"

	"github.com/docopt/docopt-go"
	"github.com/golang/glog"

	"collabDelta/backend/config"
	"collabDelta/backend/internal/collab"
	"collabDelta/backend/internal/ot/delta"
)

const DeltaDemoVersion = "0.0.1"

var Out *log.Logger
var Err *log.Logger

func init() {
	Out = log.New(os.Stdout, "", 0)
	Err = log.New(os.Stderr, "", log.Ldate|log.Ltime|log.Lshortfile)
}

func main() {
	usage := `Delta demo.

Change-sets are given as JSON records, either [...] or {"ops":[...]}.

Usage:
    delta_demo demo [--config=<file>]
    delta_demo compose [--config=<file>] <a> <b>
    delta_demo transform [--config=<file>] [--priority] <a> <b>
    delta_demo position [--config=<file>] [--priority] <delta> <index>
    delta_demo apply [--config=<file>] <text> <change>
    delta_demo check [--config=<file>]
        [--rounds=<rounds>]
        [--workers=<workers>]
        [--seed=<seed>]

Options:
    -h --help            Show this screen.
    --version            Show version.
    --config=<file>      Config file, defaults to deltaConfig.yaml in the search path.
    --priority           The transformed side loses ties (its edit happened first).
    --rounds=<rounds>    Number of random rounds.
    --workers=<workers>  Rounds checked in parallel.
    --seed=<seed>        Random seed.`

	opts, err := docopt.ParseArgs(usage, os.Args[1:], DeltaDemoVersion)
	if err != nil {
		panic(err)
	}

	configFile, _ := opts.String("--config")
	cfg, err := config.Load(configFile)
	if err != nil {
		Err.Fatalf("load config failed: %v", err)
	}
	initLogging(cfg)
	defer glog.Flush()

	if demo_, _ := opts.Bool("demo"); demo_ {
		demo()
	} else if compose_, _ := opts.Bool("compose"); compose_ {
		compose(opts)
	} else if transform_, _ := opts.Bool("transform"); transform_ {
		transform(opts)
	} else if position_, _ := opts.Bool("position"); position_ {
		position(opts)
	} else if apply_, _ := opts.Bool("apply"); apply_ {
		apply(opts)
	} else if check_, _ := opts.Bool("check"); check_ {
		check(opts, cfg)
	}
}

// glog 的 flag 由配置驱动，不走命令行
func initLogging(cfg *config.Config) {
	flag.Set("logtostderr", "true")
	flag.Set("v", strconv.Itoa(cfg.Log.Verbosity))
}

func demo() {
	a1 := delta.New().Retain(1, delta.AttributeMap{"color": "blue"})
	b1 := delta.New().Retain(1, delta.AttributeMap{"bold": true, "color": "red"})

	Out.Printf("a1 = %s", a1)
	Out.Printf("b1 = %s", b1)
	// b1 优先：a1 的 color 与 b1 冲突被丢弃，结果为空
	printDelta("b1.transform(a1, true)", b1.Transform(a1, true))
	printDelta("a1.transform(b1, false)", a1.Transform(b1, false))
	printDelta("a1.compose(b1)", a1.Compose(b1))
}

func compose(opts docopt.Opts) {
	a := parseArg(opts, "<a>")
	b := parseArg(opts, "<b>")
	printDelta("compose", a.Compose(b))
}

func transform(opts docopt.Opts) {
	a := parseArg(opts, "<a>")
	b := parseArg(opts, "<b>")
	priority, _ := opts.Bool("--priority")
	printDelta("transform", a.Transform(b, priority))
}

func position(opts docopt.Opts) {
	d := parseArg(opts, "<delta>")
	index, err := opts.Int("<index>")
	if err != nil {
		Err.Fatalf("invalid index: %v", err)
	}
	priority, _ := opts.Bool("--priority")
	Out.Printf("%d", d.TransformPosition(index, priority))
}

func apply(opts docopt.Opts) {
	text, _ := opts.String("<text>")
	change := parseArg(opts, "<change>")

	pt := collab.NewPieceTable(text)
	if err := pt.Apply(change); err != nil {
		Err.Fatalf("apply %s failed: %v", change, err)
	}
	Out.Printf("%s", pt.String())
}

func check(opts docopt.Opts, cfg *config.Config) {
	checkOpts := collab.CheckOptions{
		Rounds:       cfg.Check.Rounds,
		Workers:      cfg.Check.Workers,
		Seed:         cfg.Check.Seed,
		MaxDocLength: cfg.Check.MaxDocLength,
		MaxOps:       cfg.Check.MaxOps,
		EmbedRatio:   cfg.Check.EmbedRatio,
	}
	if rounds, err := opts.Int("--rounds"); err == nil {
		checkOpts.Rounds = rounds
	}
	if workers, err := opts.Int("--workers"); err == nil {
		checkOpts.Workers = workers
	}
	if seedStr, err := opts.String("--seed"); err == nil {
		seed, err := strconv.ParseUint(seedStr, 10, 64)
		if err != nil {
			Err.Fatalf("invalid seed: %v", err)
		}
		checkOpts.Seed = seed
	}

	report, err := collab.CheckConvergence(context.Background(), checkOpts)
	if err != nil {
		Err.Fatalf("check failed: %v", err)
	}
	for _, f := range report.Failures {
		Out.Printf("FAIL round=%d property=%s\n  doc=%s\n  a=%s\n  b=%s\n  %s", f.Round, f.Property, f.Doc, f.A, f.B, f.Detail)
	}
	Out.Printf("rounds=%d failures=%d", report.Rounds, len(report.Failures))
	if !report.OK() {
		glog.Flush()
		os.Exit(1)
	}
}

func parseArg(opts docopt.Opts, name string) *delta.Delta {
	raw, _ := opts.String(name)
	d, err := delta.Parse([]byte(raw))
	if err != nil {
		Err.Fatalf("invalid %s: %v", name, err)
	}
	return d
}

func printDelta(label string, d *delta.Delta) {
	b, err := json.Marshal(d)
	if err != nil {
		Err.Fatalf("encode %s failed: %v", label, err)
	}
	Out.Printf("%s = %s", label, b)
}
