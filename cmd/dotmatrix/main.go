package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli"

	"github.com/mellified/dotmatrix/internal/gameboy"
	"github.com/mellified/dotmatrix/pkg/audio"
	"github.com/mellified/dotmatrix/pkg/config"
	"github.com/mellified/dotmatrix/pkg/display"
	sdldisplay "github.com/mellified/dotmatrix/pkg/display/sdl"
	"github.com/mellified/dotmatrix/pkg/display/terminal"
	"github.com/mellified/dotmatrix/pkg/emulator"
	"github.com/mellified/dotmatrix/pkg/log"
	"github.com/mellified/dotmatrix/pkg/romfile"
	"github.com/mellified/dotmatrix/pkg/storage"
)

func main() {
	app := cli.NewApp()
	app.Name = "dotmatrix"
	app.Usage = "handheld console emulator"
	app.ArgsUsage = "ROM"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "config, c",
			Usage: "path to the configuration file",
		},
		cli.StringFlag{
			Name:  "display, d",
			Usage: "renderer backend: sdl or terminal",
		},
		cli.IntFlag{
			Name:  "scale, s",
			Usage: "integer window scale",
		},
		cli.BoolFlag{
			Name:  "unthrottled",
			Usage: "run as fast as the host allows",
		},
		cli.StringFlag{
			Name:  "record",
			Usage: "record joypad input to `FILE`",
		},
		cli.StringFlag{
			Name:  "replay",
			Usage: "replay joypad input from `FILE`",
		},
		cli.BoolFlag{
			Name:  "serial",
			Usage: "dump serial output to stdout",
		},
		cli.BoolFlag{
			Name:  "debug",
			Usage: "verbose logging",
		},
	}
	app.Action = run

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		return cli.NewExitError("usage: dotmatrix [options] ROM", 1)
	}
	romPath := ctx.Args().First()

	logger := log.New()
	if ctx.Bool("debug") {
		logger = log.NewDebug()
	}

	cfg, err := config.Load(ctx.String("config"))
	if err != nil {
		return err
	}
	if v := ctx.String("display"); v != "" {
		cfg.Display = v
	}
	if v := ctx.Int("scale"); v != 0 {
		cfg.Scale = v
	}
	if ctx.Bool("unthrottled") {
		cfg.Unthrottled = true
	}

	rom, err := romfile.Load(romPath)
	if err != nil {
		return err
	}

	opts := []gameboy.Opt{
		gameboy.WithLogger(logger),
		gameboy.WithSaveFile(romfile.SavePath(romPath)),
	}
	if ctx.Bool("serial") {
		opts = append(opts, gameboy.WithSerialSink(os.Stdout))
	}
	if ctx.String("record") != "" {
		opts = append(opts, gameboy.WithReplayRecording())
	}
	if path := ctx.String("replay"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		opts = append(opts, gameboy.WithReplayPlayback(data))
	}

	gb, err := gameboy.NewGameBoy(rom, opts...)
	if err != nil {
		return err
	}
	logger.Infof("loaded %s", gb.Cart.Header())

	var driver display.Driver
	switch cfg.Display {
	case "terminal":
		driver = terminal.New()
	default:
		driver = sdldisplay.New()
	}

	if player, err := audio.NewPlayer(); err != nil {
		logger.Errorf("audio disabled: %v", err)
	} else {
		gb.APU.AttachSink(player)
		defer player.Close()
	}

	store := storage.Dir(emulator.DefaultStateDir(romPath))
	runErr := emulator.New(gb, driver, cfg, logger, store).Run()

	if path := ctx.String("record"); path != "" {
		if data := gb.ReplayBytes(); data != nil {
			if err := os.WriteFile(path, data, 0644); err != nil {
				logger.Errorf("writing replay: %v", err)
			}
		}
	}
	return runErr
}
