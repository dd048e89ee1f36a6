package main

import (
	libretro "github.com/user-none/eblitui/libretro"
	"github.com/user-none/ecoleco/adapter"
	"github.com/user-none/ecoleco/emu"
)

func init() {
	libretro.RegisterFactory(&adapter.Factory{}, []libretro.RetropadMapping{
		{RetroID: libretro.JoypadA, BitID: emu.ButtonFireLeft},
		{RetroID: libretro.JoypadB, BitID: emu.ButtonFireRight},
		{RetroID: libretro.JoypadStart, BitID: emu.ButtonKeypad0 + 1}, // most games start on 1
	})
}

func main() {}
