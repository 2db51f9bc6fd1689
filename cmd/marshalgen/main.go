package main

import (
	"context"
	"flag"
	"fmt"
	"math"
	"os"

	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/wippyai/marshalgen/cgen"
	"github.com/wippyai/marshalgen/config"
	"github.com/wippyai/marshalgen/generator"
	"github.com/wippyai/marshalgen/runtime"
	"github.com/wippyai/marshalgen/typedesc"
)

var (
	headStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4"))
	nameStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#98FB98"))
	dimStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#666666"))
	okStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#90EE90"))
	failStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		registryFile = flag.String("registry", "", "Path to a YAML type registry")
		witFile      = flag.String("wit", "", "Path to a WIT JSON document")
		configFile   = flag.String("config", "", "Path to a YAML or JSON configuration file")
		headerOut    = flag.String("header", "", "Write the header to this file")
		implOut      = flag.String("impl", "", "Write the implementation to this file")
		opcodeBase   = flag.Uint64("opcode-base", 0, "First opcode (overrides configuration)")
		list         = flag.Bool("list", false, "List types, procedures and opcodes and exit")
		check        = flag.Bool("check", false, "Round-trip a zero value of every type from guest to host memory")
		verbose      = flag.Bool("v", false, "Debug logging")
		interactive  = flag.Bool("i", false, "Browse generated procedures interactively")
	)
	flag.Parse()

	if (*registryFile == "") == (*witFile == "") {
		fmt.Fprintln(os.Stderr, "Usage: marshalgen -registry <types.yaml> [-header out.h] [-impl out.c]")
		fmt.Fprintln(os.Stderr, "       marshalgen -wit <types.json> [-list | -check | -i]")
		return 1
	}

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	if *headerOut != "" {
		cfg.Output.Header = *headerOut
	}
	if *implOut != "" {
		cfg.Output.Impl = *implOut
	}
	if *opcodeBase != 0 {
		base, err := parseOpcodeBase(*opcodeBase)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		cfg.Opcode.Base = base
	}
	if *verbose {
		cfg.Log.Level = "debug"
	}

	log, err := cfg.Logger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer func() { _ = log.Sync() }()
	generator.SetLogger(log)
	runtime.SetLogger(log)

	mod, err := load(*registryFile, *witFile, cfg)
	if err != nil {
		log.Error("generation failed", zap.Error(err))
		return 1
	}

	switch {
	case *interactive:
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			fmt.Fprintln(os.Stderr, "Error: -i requires a terminal")
			return 1
		}
		err = runInteractive(mod, cfg.Stream.Type)
	case *list:
		printList(mod)
	case *check:
		err = runCheck(mod)
	default:
		err = emit(mod, cfg)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// parseOpcodeBase narrows the -opcode-base flag to the 32-bit opcode space.
func parseOpcodeBase(v uint64) (uint32, error) {
	if v > math.MaxUint32 {
		return 0, fmt.Errorf("opcode base %d exceeds %d", v, uint64(math.MaxUint32))
	}
	return uint32(v), nil
}

func load(registryFile, witFile string, cfg *config.Config) (*generator.Module, error) {
	var (
		reg *typedesc.Registry
		err error
	)
	if registryFile != "" {
		reg, err = typedesc.LoadFile(registryFile)
	} else {
		var f *os.File
		if f, err = os.Open(witFile); err != nil {
			return nil, fmt.Errorf("open wit: %w", err)
		}
		defer f.Close()
		reg, err = typedesc.LoadWITJSON(f)
	}
	if err != nil {
		return nil, fmt.Errorf("load registry: %w", err)
	}
	mod, err := generator.New(cfg.GeneratorOptions()).Run(reg)
	if err != nil {
		return nil, fmt.Errorf("generate: %w", err)
	}
	return mod, nil
}

func emit(mod *generator.Module, cfg *config.Config) error {
	out, err := cgen.Render(mod, cfg.RenderOptions())
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}
	if err := writeOutput(cfg.Output.Header, out.Header); err != nil {
		return err
	}
	if err := writeOutput(cfg.Output.Impl, out.Impl); err != nil {
		return err
	}
	if cfg.Output.Header != "" || cfg.Output.Impl != "" {
		fmt.Fprintf(os.Stderr, "%s %d procedures, %d opcodes\n",
			okStyle.Render("generated"), len(mod.Procs()), mod.Opcodes().Len())
	}
	return nil
}

func writeOutput(path, content string) error {
	if path == "" {
		_, err := os.Stdout.WriteString(content)
		return err
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func printList(mod *generator.Module) {
	fmt.Println(headStyle.Render("Types"))
	for _, c := range mod.Registry().Compounds() {
		if c.IsAlias() {
			fmt.Printf("  %s %s\n", nameStyle.Render(c.Name), dimStyle.Render("= "+mod.Canonical(c.Name)))
			continue
		}
		def, ok := mod.Definition(c.Name)
		if !ok {
			continue
		}
		line := fmt.Sprintf("  %s %s", nameStyle.Render(c.Name), dimStyle.Render(fmt.Sprintf("(%s, %d members)", c.Category, len(c.Members))))
		if len(def.Unsupported) > 0 {
			line += failStyle.Render(fmt.Sprintf(" %d untransmitted", len(def.Unsupported)))
		}
		fmt.Println(line)
	}

	fmt.Println()
	fmt.Println(headStyle.Render("Procedures"))
	for _, p := range mod.Procs() {
		fmt.Printf("  %s %s\n", nameStyle.Render(p.Name), dimStyle.Render(p.Direction.String()))
	}

	if mod.Opcodes().Len() == 0 {
		return
	}
	fmt.Println()
	fmt.Println(headStyle.Render("Opcodes"))
	for _, e := range mod.Opcodes().Entries() {
		fmt.Printf("  %-40s %d\n", nameStyle.Render(e.Name), e.Value)
	}
}

func runCheck(mod *generator.Module) error {
	ctx := context.Background()
	results, err := checkRoundTrips(ctx, mod)
	if err != nil {
		return err
	}
	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
			fmt.Printf("  %s %s: %v\n", failStyle.Render("FAIL"), r.Type, r.Err)
			continue
		}
		fmt.Printf("  %s %s %s\n", okStyle.Render("ok  "), r.Type, dimStyle.Render(fmt.Sprintf("%d bytes", r.Bytes)))
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d round trips failed", failed, len(results))
	}
	return nil
}
