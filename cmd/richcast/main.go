// Package main is the richcast command line tool: it loads a set of
// conversion rules, runs markup through the upcast pipeline into the
// document model and renders it back out through the downcast pipeline.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/dshills/richcast/internal/datacontroller"
	"github.com/dshills/richcast/internal/model"
	"github.com/dshills/richcast/internal/rules"
	"github.com/dshills/richcast/internal/scripting"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	os.Exit(run())
}

type options struct {
	rulesPath  string
	scriptPath string
	dumpModel  bool
	watch      bool
	outPath    string
	files      []string
}

func run() int {
	opts := parseFlags()

	file, err := loadRules(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	markup, err := readInput(opts.files)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	if opts.watch && opts.rulesPath != "" {
		return runWatch(opts, markup)
	}

	out, err := render(file, markup, opts.dumpModel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	if err := writeOutput(opts.outPath, out); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// render runs one full pipeline pass: fresh controller, rules applied,
// markup set and rendered back (or dumped as a model tree).
func render(file *rules.File, markup string, dump bool) (string, error) {
	ctrl, err := datacontroller.New(file.RuleSet())
	if err != nil {
		return "", err
	}
	if _, err := file.Apply(ctrl); err != nil {
		return "", err
	}
	if err := ctrl.Init("main", markup); err != nil {
		return "", err
	}
	if dump {
		return dumpTree(ctrl.Document().Root("main")), nil
	}
	return ctrl.Get("main")
}

// runWatch re-renders on every rule file change until interrupted.
func runWatch(opts options, markup string) int {
	onLoad := func(f *rules.File) {
		out, err := render(f, markup, opts.dumpModel)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return
		}
		if err := writeOutput(opts.outPath, out); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
	}
	initial, watcher, err := rules.Watch(opts.rulesPath, onLoad,
		rules.WithErrorHandler(func(err error) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer watcher.Close()

	onLoad(initial)

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	<-signals
	return 0
}

func loadRules(opts options) (*rules.File, error) {
	switch {
	case opts.rulesPath != "" && opts.scriptPath != "":
		return nil, fmt.Errorf("use either -rules or -script, not both")
	case opts.scriptPath != "":
		return scripting.LoadFile(opts.scriptPath)
	case opts.rulesPath != "":
		return rules.Load(opts.rulesPath)
	default:
		return nil, fmt.Errorf("a rule file is required (-rules or -script)")
	}
}

func readInput(files []string) (string, error) {
	if len(files) == 0 {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(files[0])
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func writeOutput(path, out string) error {
	if !strings.HasSuffix(out, "\n") {
		out += "\n"
	}
	if path == "" {
		_, err := io.WriteString(os.Stdout, out)
		return err
	}
	return os.WriteFile(path, []byte(out), 0o644)
}

// dumpTree renders the model tree with one node per line, indented by
// depth. Text runs show their attributes inline.
func dumpTree(root model.Container) string {
	var b strings.Builder
	var walk func(c model.Container, depth int)
	walk = func(c model.Container, depth int) {
		for _, n := range c.Children() {
			b.WriteString(strings.Repeat("  ", depth))
			switch t := n.(type) {
			case *model.Element:
				fmt.Fprintf(&b, "<%s>", t.Name())
				b.WriteByte('\n')
				walk(t, depth+1)
			case *model.Text:
				fmt.Fprintf(&b, "%q", t.Data())
				if keys := t.AttributeKeys(); len(keys) > 0 {
					pairs := make([]string, 0, len(keys))
					for _, k := range keys {
						v, _ := t.Attribute(k)
						pairs = append(pairs, fmt.Sprintf("%s=%v", k, v))
					}
					fmt.Fprintf(&b, " {%s}", strings.Join(pairs, " "))
				}
				b.WriteByte('\n')
			}
		}
	}
	walk(root, 0)
	return strings.TrimSuffix(b.String(), "\n")
}

func parseFlags() options {
	var opts options
	var showVersion bool

	flag.StringVar(&opts.rulesPath, "rules", "", "Path to a TOML rule file")
	flag.StringVar(&opts.scriptPath, "script", "", "Path to a Lua rule script")
	flag.BoolVar(&opts.dumpModel, "dump", false, "Print the model tree instead of markup")
	flag.BoolVar(&opts.watch, "watch", false, "Re-render when the rule file changes")
	flag.StringVar(&opts.outPath, "o", "", "Write output to a file instead of stdout")
	flag.BoolVar(&showVersion, "version", false, "Show version information")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "richcast - rich-text conversion pipeline\n\n")
		fmt.Fprintf(os.Stderr, "Usage: richcast [options] [input.html]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  richcast -rules rules.toml doc.html      Round-trip a document\n")
		fmt.Fprintf(os.Stderr, "  richcast -rules rules.toml -dump doc.html  Show the model tree\n")
		fmt.Fprintf(os.Stderr, "  richcast -script rules.lua < doc.html    Rules from a Lua script\n")
	}

	flag.Parse()

	if showVersion {
		fmt.Printf("richcast %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		os.Exit(0)
	}

	opts.files = flag.Args()
	return opts
}
