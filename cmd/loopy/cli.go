package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/alecthomas/kong"

	"loopy/emu/log"
)

type mode byte

const (
	runMode mode = iota
	romInfoMode
	versionMode
)

type (
	CLI struct {
		Run     Run     `cmd:"" help:"Run a game ROM." default:"withargs"`
		RomInfo RomInfo `cmd:"" help:"Show cartridge ROM header info." name:"rom-info"`
		Version Version `cmd:"" help:"Show loopy version."`

		Log logModMask `help:"${log_help}" placeholder:"mod0,mod1,..."`

		mode mode
	}

	// Run mirrors spec.md §6's CLI surface: two mandatory positional ROMs,
	// one optional.
	Run struct {
		GameRomPath  string `arg:"" name:"game-rom" help:"Game cartridge ROM." required:"true" type:"existingfile"`
		BiosRomPath  string `arg:"" name:"bios-rom" help:"BIOS ROM." required:"true" type:"existingfile"`
		SoundRomPath string `arg:"" name:"sound-rom" help:"Optional sound ROM." type:"existingfile" optional:""`

		Config string `name:"config" help:"${config_help}" type:"existingfile"`
		Dump   string `name:"dump" help:"${dump_help}" placeholder:"FILE"`
	}

	RomInfo struct {
		RomPath string `arg:"" name:"game-rom" required:"true" type:"existingfile"`
	}

	Version struct{}
)

var vars = kong.Vars{
	"config_help": "Path to an optional TOML settings file.",
	"dump_help":   "Write a serial debug dump to FILE after every frame.",
	"log_help":    "Enable logging for specified modules.",
}

func parseArgs(args []string) CLI {
	var cfg CLI
	parser, err := kong.New(&cfg,
		kong.Name("loopy"),
		kong.Description("Casio Loopy emulator."),
		kong.UsageOnError(),
		kong.Help(printHelp),
		vars)
	if err != nil {
		panic(err)
	}

	ctx, err := parser.Parse(args)
	checkf(err, "failed to parse command line")
	checkf(ctx.Error, "failed to parse command line")

	switch {
	case strings.HasPrefix(ctx.Command(), "rom-info"):
		cfg.mode = romInfoMode
	case ctx.Command() == "version":
		cfg.mode = versionMode
	default:
		cfg.mode = runMode
	}
	return cfg
}

func printHelp(options kong.HelpOptions, ctx *kong.Context) error {
	if err := kong.DefaultHelpPrinter(options, ctx); err != nil {
		return err
	}
	if strings.HasPrefix(ctx.Command(), "run") {
		loggingHelp := `
Log modules:
  The --log flag accepts a comma-separated list of modules.

  Valid log modules are:
%s

  As a special case, the following values are accepted:
    - no                     Disable all logging.
    - all                    Enable all logs.
`
		var strs []string
		for _, m := range log.ModuleNames() {
			strs = append(strs, "    - "+m)
		}

		fmt.Fprintf(os.Stderr, loggingHelp, strings.Join(strs, "\n"))
	}

	return nil
}

type logModMask log.ModuleMask

// Decode decodes a comma-separated list of module names into a module mask.
//
// Implements kong.MapperValue interface.
func (lm logModMask) Decode(ctx *kong.DecodeContext) error {
	nolog := false
	allLogs := false

	tok := ctx.Scan.Pop()
	for _, v := range strings.Split(tok.Value.(string), ",") {
		switch v {
		case "all":
			allLogs = true
		case "no":
			nolog = true
		default:
			mod, ok := log.ModuleByName(v)
			if !ok {
				return fmt.Errorf("unknown log module %s", v)
			}
			lm |= logModMask(mod.Mask())
		}
	}

	if nolog {
		if allLogs {
			return fmt.Errorf("cannot use 'all' and 'no' together")
		}
		if lm != 0 {
			return fmt.Errorf("cannot combine 'no' with other log modules")
		}
		log.Disable()
		return nil
	}

	if allLogs {
		lm = logModMask(log.ModuleMaskAll)
	}

	log.EnableDebugModules(log.ModuleMask(lm))
	return nil
}

func checkf(err error, format string, args ...any) {
	if err == nil {
		return
	}
	fatalf(format+".\n"+err.Error(), args...)
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "fatal error:")
	fmt.Fprintf(os.Stderr, "\n\t%s\n", fmt.Sprintf(format, args...))
	os.Exit(1)
}
