package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/MrSnakeDoc/yangfinder/internal/index"
	"github.com/MrSnakeDoc/yangfinder/internal/logger"
	"github.com/MrSnakeDoc/yangfinder/internal/sources/manifest"
)

type stubSource struct {
	doc manifest.Document
	err error
}

func (s stubSource) Load(context.Context) (manifest.Document, error) { return s.doc, s.err }
func (s stubSource) Source() string                                  { return "stub" }

func TestCatalogLoaderLoad(t *testing.T) {
	src := stubSource{doc: manifest.Document{
		Version: "1.0",
		Modules: []manifest.ModuleProps{
			{Name: "ietf-interfaces", Type: "ietf"},
			{Name: "IF-MIB", Type: "mib"},
		},
	}}

	catalog, err := NewCatalogLoader(src, logger.NewNop(), nil).Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if catalog.Len() != 2 {
		t.Errorf("catalog has %d modules, want 2", catalog.Len())
	}
}

func TestCatalogLoaderDegradesToEmpty(t *testing.T) {
	src := stubSource{err: &manifest.LoadError{Source: "stub", Err: errors.New("boom")}}

	catalog, err := NewCatalogLoader(src, logger.NewNop(), nil).Load(context.Background())
	if err == nil {
		t.Error("Load() should report the failure")
	}
	if catalog == nil || !catalog.Empty() {
		t.Error("failed load should give an empty, usable catalog")
	}
}

func TestCatalogLoaderStart(t *testing.T) {
	defer goleak.VerifyNone(t)

	src := stubSource{doc: manifest.Document{Modules: []manifest.ModuleProps{{Name: "x"}}}}
	got := make(chan *index.Catalog, 1)

	NewCatalogLoader(src, logger.NewNop(), nil).Start(context.Background(), func(c *index.Catalog) {
		got <- c
	})

	select {
	case c := <-got:
		if c.Len() != 1 {
			t.Errorf("catalog has %d modules, want 1", c.Len())
		}
	case <-time.After(time.Second):
		t.Fatal("ready was never called")
	}
}
