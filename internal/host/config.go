package host

import "time"

// Config contains settings for one controller port.
type Config struct {
	SaveDir       string        // where .sav files go; next to the ROM when empty
	SaveRAM       bool          // map battery RAM to a save file instead of memory
	TickInterval  time.Duration // how often the cartridge clock is synced to wall time
	FlushInterval time.Duration // how often the save mapping is flushed to disk
	StatesDir     string        // directory for save-state slots
}

// Defaults fills missing fields with reasonable defaults.
func (c *Config) Defaults() {
	if c.TickInterval <= 0 {
		c.TickInterval = time.Second
	}
	if c.FlushInterval <= 0 {
		c.FlushInterval = 5 * time.Second
	}
	if c.StatesDir == "" {
		c.StatesDir = "states"
	}
}
