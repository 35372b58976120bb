package providers

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	name    string
	display string
	probe   AuthProbe
}

func (f *fakeProvider) Name() string        { return f.name }
func (f *fakeProvider) DisplayName() string { return f.display }

func (f *fakeProvider) ProbeAuth(context.Context) AuthProbe { return f.probe }

func (f *fakeProvider) FetchOrders(context.Context, FetchOptions) ([]Order, error) {
	return nil, nil
}

func (f *fakeProvider) FetchOrderTransactions(_ context.Context, o Order) (Order, error) {
	return o, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRegistryRegisterAndGet(t *testing.T) {
	r := NewRegistry(testLogger())

	require.NoError(t, r.Register(&fakeProvider{name: "amazon", display: "Amazon"}))

	p, err := r.Get("amazon")
	require.NoError(t, err)
	assert.Equal(t, "Amazon", p.DisplayName())

	_, err = r.Get("target")
	assert.Error(t, err)
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	r := NewRegistry(testLogger())

	require.NoError(t, r.Register(&fakeProvider{name: "costco", display: "Costco"}))
	err := r.Register(&fakeProvider{name: "costco", display: "Costco Again"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already registered")
}

func TestRegistryListSorted(t *testing.T) {
	r := NewRegistry(testLogger())

	require.NoError(t, r.Register(&fakeProvider{name: "walmart", display: "Walmart"}))
	require.NoError(t, r.Register(&fakeProvider{name: "amazon", display: "Amazon"}))
	require.NoError(t, r.Register(&fakeProvider{name: "costco", display: "Costco"}))

	assert.Equal(t, []string{"amazon", "costco", "walmart"}, r.List())
	assert.Len(t, r.GetAll(), 3)
}

func TestRegistryProbeAll(t *testing.T) {
	r := NewRegistry(testLogger())

	require.NoError(t, r.Register(&fakeProvider{
		name: "amazon", display: "Amazon",
		probe: AuthProbe{Status: AuthSuccess, StartingYear: 2015},
	}))
	require.NoError(t, r.Register(&fakeProvider{
		name: "walmart", display: "Walmart",
		probe: AuthProbe{Status: AuthNotLoggedIn},
	}))

	results := r.ProbeAll(context.Background())
	require.Len(t, results, 2)
	assert.Equal(t, AuthSuccess, results["amazon"].Status)
	assert.Equal(t, 2015, results["amazon"].StartingYear)
	assert.Equal(t, AuthNotLoggedIn, results["walmart"].Status)
}
