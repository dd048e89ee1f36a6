package adapter

import (
	"os"
	"sync"

	"github.com/pkg/errors"
	emucore "github.com/user-none/eblitui/api"

	"github.com/user-none/ecoleco/emu"
	"github.com/user-none/ecoleco/romloader"
)

// Compile-time interface check.
var _ emucore.CoreFactory = (*Factory)(nil)

// BIOSEnv names the environment variable consulted for the BIOS image
// when the factory was not given one.
const BIOSEnv = "ECOLECO_BIOS"

// ErrNoBIOS is returned when no BIOS image is available.
var ErrNoBIOS = errors.New("no BIOS image: set " + BIOSEnv + " or pass -bios")

// Factory implements emucore.CoreFactory for the ColecoVision emulator.
// The console cannot boot without its BIOS; it is taken from BIOS, then
// loaded from BIOSPath, then from the path in $ECOLECO_BIOS.
type Factory struct {
	BIOS     []byte
	BIOSPath string

	once    sync.Once
	bios    []byte
	biosErr error
}

// Button IDs. Directions use the emucore positions 0-3.
var buttons = []emucore.Button{
	{Name: "Left Fire", ID: emu.ButtonFireLeft, DefaultKey: "J", DefaultPad: "A"},
	{Name: "Right Fire", ID: emu.ButtonFireRight, DefaultKey: "K", DefaultPad: "B"},
	{Name: "1", ID: emu.ButtonKeypad0 + 1, DefaultKey: "1", DefaultPad: "Start"},
	{Name: "2", ID: emu.ButtonKeypad0 + 2, DefaultKey: "2"},
	{Name: "3", ID: emu.ButtonKeypad0 + 3, DefaultKey: "3"},
	{Name: "4", ID: emu.ButtonKeypad0 + 4, DefaultKey: "4"},
	{Name: "5", ID: emu.ButtonKeypad0 + 5, DefaultKey: "5"},
	{Name: "6", ID: emu.ButtonKeypad0 + 6, DefaultKey: "6"},
	{Name: "7", ID: emu.ButtonKeypad0 + 7, DefaultKey: "7"},
	{Name: "8", ID: emu.ButtonKeypad0 + 8, DefaultKey: "8"},
	{Name: "9", ID: emu.ButtonKeypad0 + 9, DefaultKey: "9"},
	{Name: "0", ID: emu.ButtonKeypad0, DefaultKey: "0"},
	{Name: "*", ID: emu.ButtonKeypadStar, DefaultKey: "Minus"},
	{Name: "#", ID: emu.ButtonKeypadPound, DefaultKey: "Equal"},
}

// SystemInfo returns system metadata for UI configuration.
func (f *Factory) SystemInfo() emucore.SystemInfo {
	return emucore.SystemInfo{
		Name:            "ecoleco",
		ConsoleName:     "ColecoVision",
		Extensions:      []string{".col", ".rom", ".bin"},
		ScreenWidth:     emu.ScreenWidth,
		MaxScreenHeight: emu.ScreenHeight,
		AspectRatio:     4.0 / 3.0,
		SampleRate:      48000,
		Buttons:         buttons,
		Players:         2,
		CoreOptions: []emucore.CoreOption{
			{
				Key:         emu.OptionFullRender,
				Label:       "Render Every Frame",
				Description: "Draw every frame instead of three of every four",
				Type:        emucore.CoreOptionBool,
				Default:     "false",
				Category:    emucore.CoreOptionCategoryVideo,
			},
			{
				Key:         emu.OptionKeypadInterrupt,
				Label:       "Controller Interrupt",
				Description: "Raise the maskable interrupt when controller state changes",
				Type:        emucore.CoreOptionBool,
				Default:     "false",
				Category:    emucore.CoreOptionCategoryVideo,
			},
		},
		RDBName:       "Coleco - ColecoVision",
		ThumbnailRepo: "Coleco_-_ColecoVision",
		DataDirName:   "ecoleco",
		ConsoleID:     44,
		CoreName:      emu.Name,
		CoreVersion:   emu.Version,
		SerializeSize: emu.SerializeSize(),
	}
}

// loadBIOS resolves the BIOS image once.
func (f *Factory) loadBIOS() ([]byte, error) {
	f.once.Do(func() {
		if len(f.BIOS) > 0 {
			f.bios = f.BIOS
			return
		}
		path := f.BIOSPath
		if path == "" {
			path = os.Getenv(BIOSEnv)
		}
		if path == "" {
			f.biosErr = ErrNoBIOS
			return
		}
		data, _, err := romloader.LoadROM(path)
		if err != nil {
			f.biosErr = errors.Wrap(err, "loading BIOS")
			return
		}
		f.bios = data
	})
	return f.bios, f.biosErr
}

// CreateEmulator creates a new emulator instance with the given ROM and region.
func (f *Factory) CreateEmulator(rom []byte, region emucore.Region) (emucore.Emulator, error) {
	bios, err := f.loadBIOS()
	if err != nil {
		return nil, err
	}
	e, err := emu.NewEmulator(bios, rom, region)
	if err != nil {
		return nil, errors.Wrap(err, "creating emulator")
	}
	return e, nil
}

// DetectRegion auto-detects the region from ROM data.
// The bool return indicates whether the region was found in the database.
func (f *Factory) DetectRegion(rom []byte) (emucore.Region, bool) {
	return emu.DetectRegionFromROM(rom)
}
