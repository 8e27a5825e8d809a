package main

import (
	"log/slog"
	"os"

	"github.com/urfave/cli"
)

func main() {
	err := newApp().Run(os.Args)
	if err != nil {
		slog.Error("Error running emulator", "error", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "Jeebie"
	app.Description = "A simple gameboy emulator"
	app.Usage = "jeebie [options] <ROM file>"
	app.Version = "1.0.0"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "rom",
			Usage: "Path to the ROM file, plain or inside a zip, 7z, rar, gz or tar.gz archive",
		},
		cli.BoolFlag{
			Name:  "headless",
			Usage: "Run the emulator without a graphical interface",
		},
		cli.IntFlag{
			Name:  "frames",
			Usage: "Number of frames to run in headless mode (required for headless)",
		},
		cli.IntFlag{
			Name:  "snapshot-interval",
			Usage: "Save frame snapshots every N frames in headless mode (0 = disabled)",
		},
		cli.StringFlag{
			Name:  "snapshot-dir",
			Usage: "Directory to save frame snapshots (default: temp directory in headless mode)",
		},
		cli.StringFlag{
			Name:  "data-dir",
			Usage: "Directory for battery RAM and clock files",
		},
		cli.StringFlag{
			Name:  "state-dir",
			Usage: "Directory for save states",
		},
		cli.IntFlag{
			Name:  "frame-skip",
			Usage: "Show one frame out of every N",
		},
		cli.IntFlag{
			Name:  "volume",
			Usage: "Sample volume multiplier",
		},
		cli.StringFlag{
			Name:  "record-audio",
			Usage: "Write the audio output to a WAV file",
		},
		cli.BoolFlag{
			Name:  "no-audio",
			Usage: "Do not open an audio device (headless runs only open one with --record-audio)",
		},
		cli.StringFlag{
			Name:  "controller",
			Usage: "Controller source: none, joystick or sdl2",
		},
		cli.StringFlag{
			Name:  "log-level",
			Usage: "Minimum log level: debug, info, warn or error",
			Value: "info",
		},
		cli.StringFlag{
			Name:  "config",
			Usage: "Path to a JSON config file (default: in the XDG config home)",
		},
		cli.BoolFlag{
			Name:  "write-config",
			Usage: "Write the effective configuration to the config file and exit",
		},
	}
	app.Action = runEmulator
	return app
}
