// Command loopy runs the Casio Loopy emulator (spec.md §6, "External
// interfaces": CLI surface).
//
// Grounded on arl-nestor's cmd-level main.go/cli.go split: a kong-based CLI
// (cli.go) that decodes flags/subcommands, and a thin main.go that hands
// the parsed CLI off to a run function per mode.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-faster/jx"

	"loopy/cart"
	"loopy/emu/config"
	"loopy/emu/log"
	"loopy/input"
	"loopy/system"
)

// version is the emulator's reported version string.
const version = "0.1.0"

func main() {
	cli := parseArgs(os.Args[1:])

	switch cli.mode {
	case romInfoMode:
		runRomInfo(cli.RomInfo)
	case versionMode:
		fmt.Println("loopy " + version)
	default:
		runGame(cli.Run)
	}
}

func runRomInfo(cmd RomInfo) {
	rom, err := cart.Open(cmd.RomPath)
	checkf(err, "opening ROM %s", cmd.RomPath)

	var w jx.Writer
	rom.WriteInfoJSON(&w)
	os.Stdout.Write(w.Buf)
	fmt.Println()
}

func runGame(cmd Run) {
	cfg, err := config.Load(cmd.Config)
	checkf(err, "loading config %s", cmd.Config)
	if cmd.Dump != "" {
		cfg.Debug.DumpOnVSync = true
		cfg.Debug.DumpPath = cmd.Dump
	}

	m, err := system.New(system.Options{
		Config:         cfg,
		GameROMPath:    cmd.GameRomPath,
		BIOSROMPath:    cmd.BiosRomPath,
		SoundROMPath:   cmd.SoundRomPath,
		Keys:           noKeys{},
		Display:        nullDisplay{},
		AudioOutRate:   48000,
		AudioBufferLen: 2048,
	})
	checkf(err, "bringing up machine")

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, os.Interrupt, syscall.SIGTERM)

	log.ModSys.InfoZ("running").String("game", cmd.GameRomPath).End()
	for {
		select {
		case <-sigc:
			m.Stop()
			return
		default:
		}
		m.RunFrame()
		if m.Halted() {
			log.ModSys.ErrorZ("cpu halted, stopping").End()
			m.Stop()
			os.Exit(1)
		}
	}
}

// noKeys reports every button as unpressed: cmd/loopy has no keyboard
// binding of its own (SPEC_FULL.md §11, dropped go-sdl2/gotk3/go-gl); a
// host embedding system.Machine directly supplies its own input.Keys.
type noKeys struct{}

func (noKeys) IsPressed(input.Button) bool { return false }

// nullDisplay discards presented frames, for the same reason noKeys
// discards button state: cmd/loopy is a headless driver, not a windowing
// host.
type nullDisplay struct{}

func (nullDisplay) Present(pixels []uint16) {}
