package launcher

import (
	"context"
	"sync"

	"launchpad/pkg/types"
)

// fakeBackend records calls in order and fails on demand.
type fakeBackend struct {
	mu           sync.Mutex
	calls        []string
	createErr    error
	provisionErr error
	terminateErr error
	lastPayload  types.LaunchPayload
}

func (f *fakeBackend) record(call string) {
	f.mu.Lock()
	f.calls = append(f.calls, call)
	f.mu.Unlock()
}

func (f *fakeBackend) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.calls))
	copy(out, f.calls)
	return out
}

func (f *fakeBackend) CreateModel(ctx context.Context, p types.LaunchPayload) error {
	f.mu.Lock()
	f.lastPayload = p
	f.mu.Unlock()
	f.record("create")
	return f.createErr
}

func (f *fakeBackend) ProvisionUI(ctx context.Context, uid string, p types.LaunchPayload) error {
	f.record("provision:" + uid)
	return f.provisionErr
}

func (f *fakeBackend) TerminateModel(ctx context.Context, uid string) error {
	f.record("terminate:" + uid)
	return f.terminateErr
}

func (f *fakeBackend) EndpointURL(uid string) string { return "http://backend/" + uid }

// fakeOpener records opened URLs.
type fakeOpener struct {
	mu   sync.Mutex
	urls []string
	err  error
}

func (f *fakeOpener) Open(url string) error {
	f.mu.Lock()
	f.urls = append(f.urls, url)
	f.mu.Unlock()
	return f.err
}

func (f *fakeOpener) URLs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.urls))
	copy(out, f.urls)
	return out
}

func builtinEntry() types.CatalogEntry {
	return types.CatalogEntry{
		Name:      "llama-2-chat",
		IsBuiltin: true,
		Variants: []types.VariantSpec{
			{Format: "pytorch", Size: 7, Quantizations: []string{"int4", "int8"}},
		},
	}
}

func completeSelection() types.Selection {
	return types.Selection{Format: "pytorch", Size: "7", Quantization: "int4"}
}
