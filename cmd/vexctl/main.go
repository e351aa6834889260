// Command vexctl is the engine's only externally observable surface:
// it creates a context, feeds it a program text, runs the parser, and
// reports either the resulting block's tagged value word or the parse
// error, followed by the arena stats. The block's op list is not
// printed. There is no evaluator here (block execution is out of scope
// for this core) — vexctl only exercises parse + stat reporting; it
// makes no other primitive calls.
//
// Grounded on the teacher's cmd/sentra/main.go: a flag-free,
// args[0]-dispatched command set with a VERSION const and a showUsage
// helper, trimmed down to the one thing this core actually does.
package main

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"

	"vex/internal/arena"
	"vex/internal/config"
	"vex/internal/engine"
	"vex/internal/textcodec"
	"vex/internal/value"
	"vex/internal/vparser"
)

const version = "0.1.0"

func main() {
	args := os.Args[1:]
	if len(args) == 0 {
		showUsage()
		os.Exit(1)
	}

	switch args[0] {
	case "parse":
		if len(args) < 2 {
			fmt.Fprintln(os.Stderr, "vexctl parse: expected a file path or -e <text>")
			os.Exit(1)
		}
		runParse(args[1:])
	case "version":
		fmt.Println("vexctl " + version)
	default:
		showUsage()
		os.Exit(1)
	}
}

func showUsage() {
	fmt.Println(`vexctl — vex value-engine CLI

Usage:
  vexctl parse <file>       parse a program text file into a block
  vexctl parse -e <text>    parse an inline program text string
  vexctl version            print the CLI version`)
}

func runParse(args []string) {
	var src string
	if args[0] == "-e" {
		if len(args) < 2 {
			fmt.Fprintln(os.Stderr, "vexctl parse -e: missing text argument")
			os.Exit(1)
		}
		src = args[1]
	} else {
		data, err := os.ReadFile(args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "vexctl: %v\n", err)
			os.Exit(1)
		}
		normalized, err := textcodec.Normalize(data)
		if err != nil {
			fmt.Fprintf(os.Stderr, "vexctl: %v\n", err)
			os.Exit(1)
		}
		src = string(normalized)
	}

	opts := config.FromEnv()
	c := engine.New(int(opts.ArenaCells), arena.Options{
		MemFactor: opts.MemFactor,
		PageBytes: opts.PageMB * 1024 * 1024,
	})

	block, err := vparser.Parse(c, src)
	color := isatty.IsTerminal(os.Stdout.Fd())
	if err != nil {
		printError(color, err)
		printStats(c)
		os.Exit(1)
	}

	printOps(color, c, block)
	printStats(c)
}

func printError(color bool, err error) {
	if color {
		fmt.Fprintf(os.Stderr, "\x1b[31mparse error:\x1b[0m %v\n", err)
		return
	}
	fmt.Fprintf(os.Stderr, "parse error: %v\n", err)
}

func printOps(color bool, c *engine.Context, block value.Value) {
	label := "block"
	if color {
		fmt.Printf("\x1b[32mparsed %s\x1b[0m -> %#x\n", label, uint64(block))
		return
	}
	fmt.Printf("parsed %s -> %#x\n", label, uint64(block))
}

func printStats(c *engine.Context) {
	s := c.Arena.Stats()
	fmt.Printf("compactions=%d compacted_bytes=%d collected_bytes=%d largest=%d\n",
		s.CompactionCount, s.BytesCompacted, s.BytesCollected, s.LargestSize)
}
