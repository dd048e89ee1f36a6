// Command headless runs a cartridge without a window for a fixed number
// of frames. It can dump the last frame as a PNG and load or store an
// lz4-compressed save state, which makes it useful for regression runs.
package main

import (
	"flag"
	"fmt"
	"image"
	"image/png"
	"io"
	"log"
	"os"
	"strings"

	"github.com/pierrec/lz4/v4"
	"github.com/pkg/errors"
	emucore "github.com/user-none/eblitui/api"
	"golang.org/x/image/draw"

	"github.com/user-none/ecoleco/adapter"
	"github.com/user-none/ecoleco/emu"
	"github.com/user-none/ecoleco/romloader"
)

// config holds the command line settings for one run.
type config struct {
	romPath    string
	biosPath   string
	region     string
	frames     int
	pngPath    string
	scale      int
	statePath  string
	fullRender bool
	keypadIRQ  bool
	trace      bool
}

func main() {
	var cfg config
	flag.StringVar(&cfg.romPath, "rom", "", "path to ROM file")
	flag.StringVar(&cfg.biosPath, "bios", "", "path to the ColecoVision BIOS (default $"+adapter.BIOSEnv+")")
	flag.StringVar(&cfg.region, "region", "ntsc", "region: ntsc or pal")
	flag.IntVar(&cfg.frames, "frames", 600, "number of frames to run")
	flag.StringVar(&cfg.pngPath, "png", "", "write the final frame to this PNG file")
	flag.IntVar(&cfg.scale, "scale", 1, "integer scale factor for -png")
	flag.StringVar(&cfg.statePath, "state", "", "save state file: loaded before the run if it exists, written after")
	flag.BoolVar(&cfg.fullRender, "full-render", false, "draw every frame instead of three of every four")
	flag.BoolVar(&cfg.keypadIRQ, "keypad-interrupt", false, "raise INT when controller state changes")
	flag.BoolVar(&cfg.trace, "trace", false, "print the last executed instructions when the run ends")
	flag.Parse()

	if cfg.romPath == "" {
		flag.Usage()
		os.Exit(2)
	}

	if err := run(cfg); err != nil {
		log.Fatal(err)
	}
}

func run(cfg config) error {
	rom, name, err := romloader.LoadROM(cfg.romPath)
	if err != nil {
		return err
	}

	region := emucore.RegionNTSC
	if strings.EqualFold(cfg.region, "pal") {
		region = emucore.RegionPAL
	}

	factory := &adapter.Factory{BIOSPath: cfg.biosPath}
	core, err := factory.CreateEmulator(rom, region)
	if err != nil {
		return err
	}
	e := core.(*emu.Emulator)
	if cfg.fullRender {
		e.SetOption(emu.OptionFullRender, "true")
	}
	if cfg.keypadIRQ {
		e.SetOption(emu.OptionKeypadInterrupt, "true")
	}

	if cfg.statePath != "" {
		if err := loadState(e, cfg.statePath); err != nil && !os.IsNotExist(errors.Cause(err)) {
			return err
		}
	}

	log.Printf("running %s for %d frames", name, cfg.frames)
	for i := 0; i < cfg.frames; i++ {
		e.RunFrame()
		if f := e.CPU().Fault(); f != nil {
			fmt.Fprintf(os.Stderr, "%v\n%s\n", f, f.TraceString())
			break
		}
	}
	log.Printf("stopped at PC=%04X after %d video frames", e.CPU().PC, e.VDP().FrameCount())
	if cfg.trace && e.CPU().Fault() == nil {
		for _, entry := range e.CPU().Trace() {
			fmt.Fprintln(os.Stderr, entry)
		}
	}

	if cfg.statePath != "" {
		if err := saveState(e, cfg.statePath); err != nil {
			return err
		}
	}
	if cfg.pngPath != "" {
		return writePNG(e, cfg.pngPath, cfg.scale)
	}
	return nil
}

func loadState(e *emu.Emulator, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrap(err, "opening state")
	}
	defer f.Close()

	data, err := io.ReadAll(lz4.NewReader(f))
	if err != nil {
		return errors.Wrap(err, "reading state")
	}
	return errors.Wrap(e.Deserialize(data), "loading state")
}

func saveState(e *emu.Emulator, path string) error {
	data, err := e.Serialize()
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "creating state")
	}
	zw := lz4.NewWriter(f)
	if _, err := zw.Write(data); err != nil {
		f.Close()
		return errors.Wrap(err, "writing state")
	}
	if err := zw.Close(); err != nil {
		f.Close()
		return errors.Wrap(err, "writing state")
	}
	return f.Close()
}

func writePNG(e *emu.Emulator, path string, scale int) error {
	src := e.VDP().Framebuffer()
	var img image.Image = src
	if scale > 1 {
		b := src.Bounds()
		dst := image.NewRGBA(image.Rect(0, 0, b.Dx()*scale, b.Dy()*scale))
		draw.NearestNeighbor.Scale(dst, dst.Bounds(), src, b, draw.Src, nil)
		img = dst
	}

	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "creating png")
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return errors.Wrap(err, "encoding png")
	}
	return f.Close()
}
