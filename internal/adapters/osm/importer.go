// Package osm imports highways from OpenStreetMap PBF extracts as roads.
package osm

import (
	"context"
	"errors"
	"io"
	"os"
	"runtime"

	"github.com/qedus/osmpbf"
	"github.com/rotisserie/eris"
	"golang.org/x/sync/errgroup"

	"github.com/samirrijal/roadpulse/internal/core/domain"
	"github.com/samirrijal/roadpulse/internal/core/ports"
)

// DefaultHighways are the highway tag values imported when none are given.
var DefaultHighways = []string{
	"motorway", "trunk", "primary", "secondary", "tertiary",
	"unclassified", "residential", "service",
}

// Way is a highway ready to be stored as a road.
type Way struct {
	ID          int64
	Highway     string
	Name        string
	Coordinates []domain.GeoPoint
}

// Importer reads highway ways from a PBF file.
type Importer struct {
	filename string
	highways map[string]bool
	procs    int
}

// NewImporter creates an Importer for filename keeping the given highway
// classes, or DefaultHighways when classes is empty.
func NewImporter(filename string, classes []string) *Importer {
	if len(classes) == 0 {
		classes = DefaultHighways
	}
	hw := make(map[string]bool, len(classes))
	for _, c := range classes {
		hw[c] = true
	}
	return &Importer{filename: filename, highways: hw, procs: runtime.GOMAXPROCS(-1)}
}

// Ways decodes the file and returns every kept highway with at least two
// resolved nodes.
func (im *Importer) Ways(ctx context.Context) ([]Way, error) {
	file, err := os.Open(im.filename)
	if err != nil {
		return nil, eris.Wrap(err, "osm: open")
	}
	defer file.Close()

	decoder := osmpbf.NewDecoder(file)
	decoder.SetBufferSize(osmpbf.MaxBlobSize)
	if err := decoder.Start(im.procs); err != nil {
		return nil, eris.Wrap(err, "osm: start decoder")
	}

	nodes := make(map[int64]domain.GeoPoint)
	var pending []*osmpbf.Way
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		v, err := decoder.Decode()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, eris.Wrap(err, "osm: decode")
		}
		switch v := v.(type) {
		case *osmpbf.Node:
			nodes[v.ID] = domain.GeoPoint{Lat: v.Lat, Lon: v.Lon}
		case *osmpbf.Way:
			if im.highways[v.Tags["highway"]] {
				pending = append(pending, v)
			}
		}
	}

	ways := make([]Way, 0, len(pending))
	for _, w := range pending {
		if way, ok := assembleWay(w, nodes); ok {
			ways = append(ways, way)
		}
	}
	return ways, nil
}

// assembleWay resolves a way's node references. Ways with fewer than two
// resolved nodes cannot form a segment and are dropped.
func assembleWay(w *osmpbf.Way, nodes map[int64]domain.GeoPoint) (Way, bool) {
	way := Way{
		ID:          w.ID,
		Highway:     w.Tags["highway"],
		Name:        w.Tags["name"],
		Coordinates: make([]domain.GeoPoint, 0, len(w.NodeIDs)),
	}
	for _, id := range w.NodeIDs {
		if p, ok := nodes[id]; ok {
			way.Coordinates = append(way.Coordinates, p)
		}
	}
	return way, len(way.Coordinates) >= 2
}

// LoadOptions controls how ways are written to the road store.
type LoadOptions struct {
	BatchSize   int
	Parallelism int
}

// Load stores ways as roads of cityID and returns how many ways were
// processed. Ways already imported into the city are skipped by the store, so
// running Load twice on the same extract stores each way once. Batches are
// written concurrently; the first failure cancels the rest.
func Load(ctx context.Context, roads ports.RoadRepository, cityID string, ways []Way, opts LoadOptions) (int, error) {
	if opts.BatchSize <= 0 {
		opts.BatchSize = 500
	}
	if opts.Parallelism <= 0 {
		opts.Parallelism = 4
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Parallelism)

	for start := 0; start < len(ways); start += opts.BatchSize {
		end := min(start+opts.BatchSize, len(ways))
		batch := make([]domain.Road, 0, end-start)
		for _, w := range ways[start:end] {
			batch = append(batch, domain.Road{CityID: cityID, Coordinates: w.Coordinates, OSMWayID: &w.ID})
		}
		g.Go(func() error {
			return roads.CreateBatch(gctx, batch)
		})
	}

	if err := g.Wait(); err != nil {
		return 0, eris.Wrap(err, "osm: load roads")
	}
	return len(ways), nil
}
