package ui

import (
	"fmt"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/FabianRolfMatthiasNoll/transferpak/internal/cart"
	"github.com/FabianRolfMatthiasNoll/transferpak/internal/host"
	"github.com/FabianRolfMatthiasNoll/transferpak/internal/inspect"
	"github.com/FabianRolfMatthiasNoll/transferpak/internal/tpak"
)

const (
	screenW = 480
	screenH = 320
	lineH   = 14
)

// App is an ebiten window that drives one port's Transfer Pak by hand and
// shows what the controller side would see.
type App struct {
	cfg  Config
	port *host.Port
	tp   *tpak.TransferPak

	base uint16 // first address of the hex dump

	// cached per cartridge
	shownROM string
	header   *cart.Header
	logo     *ebiten.Image

	// overlay/menu
	showMenu    bool
	menuMode    string
	menuIdx     int
	currentSlot int
	romList     []string
	romSel      int
	romOff      int
	keysOff     int

	toastMsg   string
	toastUntil time.Time
}

func NewApp(cfg Config, port *host.Port) *App {
	cfg.Defaults()
	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowSize(screenW*cfg.Scale, screenH*cfg.Scale)
	return &App{cfg: cfg, port: port, tp: port.TransferPak(), base: tpak.RegionWindow, menuMode: "main"}
}

func (a *App) Run() error { return ebiten.RunGame(a) }

func (a *App) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) && (!a.showMenu || a.menuMode == "main") {
		a.showMenu = !a.showMenu
		a.menuMode = "main"
		a.menuIdx = 0
		return nil
	}
	if a.showMenu {
		switch a.menuMode {
		case "slot":
			a.updateSlotMenu()
		case "rom":
			a.updateRomMenu()
		case "keys":
			a.updateKeysMenu()
		default:
			a.updateMainMenu()
		}
		return nil
	}

	// Pak registers
	if inpututil.IsKeyJustPressed(ebiten.KeyP) {
		if a.tp.Powered() {
			a.tp.Write(tpak.RegionPower, tpak.PowerOff)
		} else {
			a.tp.Write(tpak.RegionPower, tpak.PowerOn)
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyA) {
		var v byte
		if !a.tp.AccessEnabled() {
			v = 0x01
		}
		a.tp.Write(tpak.RegionAccess, v)
	}
	for i, k := range []ebiten.Key{ebiten.KeyDigit0, ebiten.KeyDigit1, ebiten.KeyDigit2, ebiten.KeyDigit3} {
		if inpututil.IsKeyJustPressed(k) {
			a.tp.Write(tpak.RegionBank, byte(i))
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		a.tp.Reset()
		a.toast("Pak reset")
	}
	if a.tp.AccessChanged() {
		a.toast(fmt.Sprintf("Cartridge access %s", onOff(a.tp.AccessEnabled())))
	}

	// Hex dump navigation
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowUp) {
		a.base -= 0x10
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowDown) {
		a.base += 0x10
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyPageUp) {
		a.base -= 0x100
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyPageDown) {
		a.base += 0x100
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyHome) {
		a.base = tpak.RegionWindow
	}

	// Cartridge and state
	if inpututil.IsKeyJustPressed(ebiten.KeyE) {
		if err := a.port.Eject(); err != nil {
			a.toast("Eject: " + err.Error())
		} else {
			a.toast("Cartridge ejected")
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF5) {
		a.saveSlotToast()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF9) {
		a.loadSlotToast()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF12) {
		if name, err := a.saveLogo(); err != nil {
			a.toast("Logo export failed: " + err.Error())
		} else {
			a.toast("Saved " + name)
		}
	}
	return nil
}

func (a *App) Draw(screen *ebiten.Image) {
	screen.Fill(color.RGBA{0x20, 0x20, 0x28, 0xFF})
	a.refreshCartridge()

	y := 6
	line := func(s string) {
		ebitenutil.DebugPrintAt(screen, s, 8, y)
		y += lineH
	}
	line("Status: " + inspect.Status(a.tp.Status()))
	line(fmt.Sprintf("Power: %s  Access: %s  Bank: %d", onOff(a.tp.Powered()), onOff(a.tp.AccessEnabled()), a.tp.Bank()))

	c := a.port.Cartridge()
	if c == nil {
		line("No cartridge. Esc: menu")
	} else {
		for _, s := range inspect.HeaderLines(a.header) {
			line(s)
		}
		line(fmt.Sprintf("Banks: ROM %d  RAM %d  RAM enabled: %t", c.ROMBank(), c.RAMBank(), c.EnableRAM))
		if rtc := c.RTC(); rtc != nil {
			line("RTC live:    " + rtc.Live().String())
			line("RTC latched: " + rtc.Latched().String())
		}
		if c.Info.Rumble {
			line("Rumble: " + onOff(c.Rumble()))
		}
		if a.logo != nil {
			op := &ebiten.DrawImageOptions{}
			op.GeoM.Scale(3, 3)
			op.GeoM.Translate(float64(screenW-8-inspect.LogoWidth*3), 6)
			screen.DrawImage(a.logo, op)
		}
	}

	y += lineH / 2
	line(fmt.Sprintf("Window %04X -> cartridge %04X", a.base, a.tp.CartAddress(a.base)))
	for _, s := range inspect.HexDump(peek{a.tp}, a.base, a.cfg.HexRows) {
		line(s)
	}

	if time.Now().Before(a.toastUntil) {
		ebitenutil.DebugPrintAt(screen, a.toastMsg, 8, screenH-lineH-4)
	}

	if a.showMenu {
		overlay := ebiten.NewImage(screenW, screenH)
		overlay.Fill(color.RGBA{0, 0, 0, 200})
		screen.DrawImage(overlay, nil)
		switch a.menuMode {
		case "slot":
			a.drawSlotMenu(screen)
		case "rom":
			a.drawRomMenu(screen)
		case "keys":
			a.drawKeysMenu(screen)
		default:
			a.drawMainMenu(screen)
		}
	}
}

func (a *App) Layout(outW, outH int) (int, int) { return screenW, screenH }

// refreshCartridge reparses the header when the inserted cartridge changes.
func (a *App) refreshCartridge() {
	c := a.port.Cartridge()
	path := ""
	if c != nil {
		path = c.Filename
	}
	if path == a.shownROM {
		return
	}
	a.shownROM, a.header, a.logo = path, nil, nil
	title := a.cfg.Title
	if c != nil {
		if h, err := cart.ParseHeader(c.ROM()); err == nil {
			a.header = h
			a.logo = ebiten.NewImageFromImage(inspect.LogoImage(c.ROM()[cart.OffsetLogo : cart.OffsetLogo+48]))
		} else {
			a.header = &cart.Header{Title: c.TitleString(), CartType: c.Type}
		}
		title = a.cfg.Title + " - [" + c.TitleString() + "]"
	}
	ebiten.SetWindowTitle(title)
}

// saveLogo writes the inserted cartridge's header logo as a PNG.
func (a *App) saveLogo() (string, error) {
	c := a.port.Cartridge()
	if c == nil || len(c.ROM()) < cart.OffsetLogo+48 {
		return "", host.ErrNoCartridge
	}
	img := inspect.LogoImage(c.ROM()[cart.OffsetLogo : cart.OffsetLogo+48])
	ts := time.Now().Format("20060102_150405")
	name := fmt.Sprintf("logo_%s.png", ts)
	f, err := os.Create(name)
	if err != nil {
		return "", err
	}
	defer f.Close()
	return name, png.Encode(f, img)
}

func (a *App) statePath(slot int) string { return a.port.StatePath(slot) }

func (a *App) saveSlotToast() {
	if err := a.port.SaveStateToFile(a.statePath(a.currentSlot)); err != nil {
		a.toast("Save failed: " + err.Error())
		return
	}
	a.toast(fmt.Sprintf("Saved slot %d", a.currentSlot+1))
}

func (a *App) loadSlotToast() {
	path := a.statePath(a.currentSlot)
	if _, err := os.Stat(path); err != nil {
		a.toast("Slot is empty")
		return
	}
	if err := a.port.LoadStateFromFile(path); err != nil {
		a.toast("Load failed: " + err.Error())
		return
	}
	a.toast(fmt.Sprintf("Loaded slot %d", a.currentSlot+1))
}

func (a *App) loadROM(path string) {
	if err := a.port.LoadROMFromFile(path); err != nil {
		a.toast("ROM load failed: " + err.Error())
		return
	}
	a.toast("Loaded ROM: " + filepath.Base(path))
}

func (a *App) toast(msg string) {
	a.toastMsg = msg
	a.toastUntil = time.Now().Add(2 * time.Second)
}

// peek reads the pak without consuming the reset flag.
type peek struct{ tp *tpak.TransferPak }

func (p peek) Read(addr uint16) byte {
	if addr >= tpak.RegionAccess && addr < tpak.RegionWindow {
		return p.tp.Status()
	}
	return p.tp.Read(addr)
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
