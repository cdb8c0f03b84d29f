// Package card holds the selection state for a single catalog entry the way
// the UI presents it: a card that flips from browsing to configuring, with
// cascading format/size/quantization choices derived from the catalog.
package card

import (
	"launchpad/internal/catalog"
	"launchpad/pkg/types"
)

// Mode is the card's presentation state.
type Mode string

const (
	ModeBrowsing    Mode = "browsing"
	ModeConfiguring Mode = "configuring"
)

// Card owns one entry's Selection and the option lists derived from it.
// It is not safe for concurrent use; a card belongs to a single UI session.
type Card struct {
	entry types.CatalogEntry
	mode  Mode
	sel   types.Selection

	formats []string
	sizes   []float64
	quants  []string
}

// New builds a card in browsing mode with format options precomputed.
func New(entry types.CatalogEntry) *Card {
	return &Card{
		entry:   entry,
		mode:    ModeBrowsing,
		formats: catalog.FormatOptions(entry),
	}
}

// Select flips the card from browsing to configuring. A click while already
// configuring is a no-op.
func (c *Card) Select() {
	if c.mode == ModeBrowsing {
		c.mode = ModeConfiguring
	}
}

// Back returns to browsing. The selection is retained, not reset.
func (c *Card) Back() {
	if c.mode == ModeConfiguring {
		c.mode = ModeBrowsing
	}
}

func (c *Card) Mode() Mode                 { return c.mode }
func (c *Card) Entry() types.CatalogEntry  { return c.entry }
func (c *Card) Selection() types.Selection { return c.sel }

// FormatOptions lists the valid formats for this entry.
func (c *Card) FormatOptions() []string { return c.formats }

// SizeOptions lists the valid sizes for the chosen format. Empty until a
// format is chosen.
func (c *Card) SizeOptions() []float64 { return c.sizes }

// QuantizationOptions lists the valid quantizations for the chosen
// format+size. Empty until both are chosen.
func (c *Card) QuantizationOptions() []string { return c.quants }

// ChooseFormat sets the format and recomputes size options. Downstream
// choices are cleared since they may no longer be valid.
func (c *Card) ChooseFormat(format string) {
	c.sel.Format = format
	c.sel.Size = ""
	c.sel.Quantization = ""
	c.sizes = catalog.SizeOptions(c.entry, format)
	c.quants = nil
}

// ChooseSize sets the size and recomputes quantization options. Without a
// chosen format the quantization list is left as-is.
func (c *Card) ChooseSize(size string) {
	c.sel.Size = size
	c.sel.Quantization = ""
	if c.sel.Format == "" {
		return
	}
	c.quants = catalog.QuantizationOptions(c.entry, c.sel.Format, size)
}

// ChooseQuantization sets the quantization.
func (c *Card) ChooseQuantization(q string) {
	c.sel.Quantization = q
}

// CanLaunch mirrors the launch control's enablement: the selection must be
// complete and no launch or model update may be in flight.
func (c *Card) CanLaunch(inFlight, updating bool) bool {
	if inFlight || updating {
		return false
	}
	return catalog.SelectionComplete(c.entry, c.sel)
}
