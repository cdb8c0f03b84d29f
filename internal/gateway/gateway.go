// Package gateway is the orchestration layer behind the HTTP surface: it
// serves the loaded catalog, derives option lists for a selection prefix,
// hands complete selections to the launch sequencer and proxies instance
// queries to the serving backend.
package gateway

import (
	"context"
	"encoding/json"
	"time"

	"launchpad/internal/backend"
	"launchpad/internal/catalog"
	"launchpad/internal/launcher"
	"launchpad/pkg/types"
)

type Gateway struct {
	entries []types.CatalogEntry
	byName  map[string]types.CatalogEntry
	seq     *launcher.Sequencer
	be      *backend.Client
	start   time.Time
}

func New(entries []types.CatalogEntry, seq *launcher.Sequencer, be *backend.Client) *Gateway {
	byName := make(map[string]types.CatalogEntry, len(entries))
	for _, e := range entries {
		byName[e.Name] = e
	}
	return &Gateway{
		entries: entries,
		byName:  byName,
		seq:     seq,
		be:      be,
		start:   time.Now(),
	}
}

// Catalog returns the loaded entries; a shallow copy to avoid external mutation.
func (g *Gateway) Catalog() []types.CatalogEntry {
	out := make([]types.CatalogEntry, len(g.entries))
	copy(out, g.entries)
	return out
}

// Entry looks up one catalog entry by model name.
func (g *Gateway) Entry(name string) (types.CatalogEntry, error) {
	e, ok := g.byName[name]
	if !ok {
		return types.CatalogEntry{}, ErrModelNotFound(name)
	}
	return e, nil
}

// Options derives the option lists for a selection prefix. Formats are always
// present; sizes appear once a format is chosen, quantizations once format
// and size are.
func (g *Gateway) Options(name, format, size string) (types.OptionsResponse, error) {
	e, err := g.Entry(name)
	if err != nil {
		return types.OptionsResponse{}, err
	}
	resp := types.OptionsResponse{Formats: catalog.FormatOptions(e)}
	if format == "" {
		return resp, nil
	}
	resp.Sizes = catalog.SizeOptions(e, format)
	if size == "" {
		return resp, nil
	}
	resp.Quantizations = catalog.QuantizationOptions(e, format, size)
	return resp, nil
}

// Launch resolves the entry and runs the two-phase sequencer.
func (g *Gateway) Launch(ctx context.Context, req types.LaunchRequest) (types.LaunchResponse, error) {
	e, err := g.Entry(req.ModelName)
	if err != nil {
		return types.LaunchResponse{}, err
	}
	sel := types.Selection{
		Format:       req.ModelFormat,
		Size:         req.ModelSizeInBillions,
		Quantization: req.Quantization,
	}
	return g.seq.Launch(ctx, e, sel)
}

// Running proxies the backend's running-instance listing.
func (g *Gateway) Running(ctx context.Context) (map[string]json.RawMessage, error) {
	return g.be.ListModels(ctx)
}

// Terminate proxies an instance termination to the backend.
func (g *Gateway) Terminate(ctx context.Context, uid string) error {
	return g.be.TerminateModel(ctx, uid)
}

func (g *Gateway) Status() types.StatusResponse {
	return types.StatusResponse{
		BackendURL:     g.be.BaseURL(),
		CatalogEntries: len(g.entries),
		LaunchInFlight: g.seq.Gate().APIInProgress(),
		LaunchesTotal:  g.seq.Attempts(),
		UptimeSeconds:  int64(time.Since(g.start).Seconds()),
		ServerTimeUnix: time.Now().Unix(),
	}
}

func (g *Gateway) Ready() bool { return len(g.entries) > 0 }
