//go:build !libretro && !ios

package main

import (
	"flag"
	"log"

	"github.com/user-none/eblitui/standalone"
	"github.com/user-none/ecoleco/adapter"
)

func main() {
	romPath := flag.String("rom", "", "path to ROM file (opens UI if not provided)")
	biosPath := flag.String("bios", "", "path to the ColecoVision BIOS (default $"+adapter.BIOSEnv+")")
	regionFlag := flag.String("region", "auto", "region: auto, ntsc, or pal")
	fullRender := flag.Bool("full-render", false, "draw every frame instead of three of every four")
	keypadIRQ := flag.Bool("keypad-interrupt", false, "raise INT when controller state changes")
	flag.Parse()

	factory := &adapter.Factory{BIOSPath: *biosPath}

	if *romPath != "" {
		options := map[string]string{}
		if *fullRender {
			options["full_render"] = "true"
		}
		if *keypadIRQ {
			options["keypad_interrupt"] = "true"
		}
		if err := standalone.RunDirect(factory, *romPath, *regionFlag, options); err != nil {
			log.Fatal(err)
		}
		return
	}

	if err := standalone.Run(factory); err != nil {
		log.Fatal(err)
	}
}
