package ui

// Config contains window and browser settings for the viewer.
type Config struct {
	Title   string // window title
	Scale   int    // integer upscaling factor
	ROMsDir string // directory to browse for ROMs
	HexRows int    // rows in the window hex dump
	Slots   int    // number of save-state slots
}

// Defaults fills missing fields with reasonable defaults.
func (c *Config) Defaults() {
	if c.Title == "" {
		c.Title = "tpakview"
	}
	if c.Scale <= 0 {
		c.Scale = 2
	}
	if c.ROMsDir == "" {
		c.ROMsDir = "roms"
	}
	if c.HexRows <= 0 {
		c.HexRows = 8
	}
	if c.Slots <= 0 {
		c.Slots = 4
	}
}
