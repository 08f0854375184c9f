// Command lutctl inspects and edits the LutSwitch config.xml from a shell.
//
//	lutctl [-config FILE] list
//	lutctl [-config FILE] set-lut -monitor PATH -mode sdr|hdr -file LUT
//	lutctl [-config FILE] forget-lut -monitor PATH -mode sdr|hdr -file LUT
//	lutctl [-config FILE] set-key NAME
//	lutctl keys
//
// Edits go through the same model as the tray app, so unchanged values are
// not rewritten and LUT history is kept. Run "Reload config" in the tray
// afterwards to pick the changes up.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/alex-vit/lutswitch/internal/config"
	"github.com/alex-vit/lutswitch/internal/display"
	"github.com/alex-vit/lutswitch/internal/injector"
	"github.com/alex-vit/lutswitch/internal/keys"
	"github.com/alex-vit/lutswitch/internal/lutstate"
)

var errUsage = errors.New("usage")

func main() {
	log.SetFlags(0)
	log.SetOutput(io.Discard)
	if os.Getenv("LUTCTL_DEBUG") != "" {
		log.SetOutput(os.Stderr)
	}

	err := run(os.Args[1:], os.Stdout, os.Stderr, display.ActivePaths)
	if errors.Is(err, errUsage) {
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "lutctl:", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer, paths lutstate.PathSource) error {
	fs := flag.NewFlagSet("lutctl", flag.ContinueOnError)
	fs.SetOutput(stderr)
	defPath, err := config.DefaultPath()
	if err != nil {
		defPath = config.FileName
	}
	cfgPath := fs.String("config", defPath, "path to config.xml")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "usage: lutctl [-config FILE] list|set-lut|forget-lut|set-key|keys")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return errUsage
	}

	cmd, rest := fs.Arg(0), fs.Args()[1:]
	if cmd == "keys" {
		for _, name := range keys.Names() {
			fmt.Fprintf(stdout, "%-16s 0x%02X\n", name, keys.VirtualKey(keys.Key(name)))
		}
		return nil
	}

	model := lutstate.New(*cfgPath, paths, injector.Unavailable{})
	switch cmd {
	case "list":
		return list(model, stdout)
	case "set-lut":
		return editLut(model, rest, stderr, false)
	case "forget-lut":
		return editLut(model, rest, stderr, true)
	case "set-key":
		return setKey(model, rest, stderr)
	}
	fmt.Fprintf(stderr, "lutctl: unknown command %q\n", cmd)
	fs.Usage()
	return errUsage
}

func list(m *lutstate.Model, w io.Writer) error {
	fmt.Fprintf(w, "toggle key: %s\n", m.ToggleKey())
	for _, mon := range m.Monitors() {
		fmt.Fprintf(w, "%s\n  path: %s\n", mon.String(), mon.DevicePath)
		for _, mode := range []lutstate.Mode{lutstate.SDR, lutstate.HDR} {
			lut := mon.LutPath(mode)
			if lut == "" {
				lut = "(none)"
			}
			fmt.Fprintf(w, "  %s: %s\n", mode, lut)
			for _, h := range mon.History(mode) {
				fmt.Fprintf(w, "    - %s\n", h)
			}
		}
	}
	return nil
}

func editLut(m *lutstate.Model, args []string, stderr io.Writer, forget bool) error {
	name := "set-lut"
	if forget {
		name = "forget-lut"
	}
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	monitor := fs.String("monitor", "", "device path of an active monitor (see list)")
	modeName := fs.String("mode", "sdr", "sdr or hdr")
	file := fs.String("file", "", "LUT file; empty clears the LUT")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	mode, err := lutstate.ParseMode(*modeName)
	if err != nil {
		return err
	}
	if *monitor == "" {
		fmt.Fprintf(stderr, "lutctl %s: -monitor is required\n", name)
		return errUsage
	}
	if !m.SelectMonitor(*monitor) {
		return fmt.Errorf("monitor %q is not connected", *monitor)
	}
	if forget {
		return m.ForgetLut(mode, *file)
	}
	return m.SetLutPath(mode, *file)
}

func setKey(m *lutstate.Model, args []string, stderr io.Writer) error {
	if len(args) != 1 {
		fmt.Fprintln(stderr, "usage: lutctl set-key NAME (see lutctl keys)")
		return errUsage
	}
	k, err := keys.Parse(args[0])
	if err != nil {
		return err
	}
	return m.SetToggleKey(k)
}
