package catalog

import (
	"strconv"

	"launchpad/pkg/types"
)

// Option derivation over a catalog entry. Each function recomputes its list
// from scratch for the given selection prefix; nothing is patched
// incrementally, so downstream lists can never go stale.

// FormatOptions returns the distinct variant formats of an entry, each once,
// in first-seen order.
func FormatOptions(e types.CatalogEntry) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, v := range e.Variants {
		if _, ok := seen[v.Format]; ok {
			continue
		}
		seen[v.Format] = struct{}{}
		out = append(out, v.Format)
	}
	return out
}

// SizeOptions returns the distinct sizes among variants with the given
// format, in first-seen order. An empty format yields no options.
func SizeOptions(e types.CatalogEntry, format string) []float64 {
	if format == "" {
		return nil
	}
	var out []float64
	seen := make(map[float64]struct{})
	for _, v := range e.Variants {
		if v.Format != format {
			continue
		}
		if _, ok := seen[v.Size]; ok {
			continue
		}
		seen[v.Size] = struct{}{}
		out = append(out, v.Size)
	}
	return out
}

// QuantizationOptions flattens the quantization lists of all variants
// matching the given format and numerically-equal size, deduplicated in
// first-seen order. Size arrives as a string from selection state and is
// parsed for comparison; an unparseable or empty size yields no options.
func QuantizationOptions(e types.CatalogEntry, format, size string) []string {
	if format == "" || size == "" {
		return nil
	}
	var out []string
	seen := make(map[string]struct{})
	for _, v := range e.Variants {
		if v.Format != format || !sizeEqual(size, v.Size) {
			continue
		}
		for _, q := range v.Quantizations {
			if _, ok := seen[q]; ok {
				continue
			}
			seen[q] = struct{}{}
			out = append(out, q)
		}
	}
	return out
}

// SelectionComplete reports whether a selection is sufficient to launch the
// entry: format and size must be chosen, and quantization too unless the
// variant is a user-registered non-pytorch one, which carries its
// quantization in the weight file itself.
func SelectionComplete(e types.CatalogEntry, sel types.Selection) bool {
	if sel.Format == "" || sel.Size == "" {
		return false
	}
	if sel.Quantization != "" {
		return true
	}
	return !e.IsBuiltin && sel.Format != "pytorch"
}

// sizeEqual compares a string-typed selected size against a numeric catalog
// size, tolerating representations like "7" vs 7.0 and "7.0" vs 7.
func sizeEqual(sel string, size float64) bool {
	n, err := strconv.ParseFloat(sel, 64)
	if err != nil {
		return false
	}
	return n == size
}
