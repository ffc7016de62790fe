package osm

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/qedus/osmpbf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samirrijal/roadpulse/internal/core/domain"
)

type fakeRoads struct {
	mu      sync.Mutex
	batches [][]domain.Road
	err     error
}

func (f *fakeRoads) FindCandidates(ctx context.Context, q domain.RegionQuery) ([]domain.Road, error) {
	return nil, nil
}
func (f *fakeRoads) ApplyCondition(ctx context.Context, ids []string, c float64) error { return nil }
func (f *fakeRoads) Create(ctx context.Context, r *domain.Road) error               { return nil }
func (f *fakeRoads) GetByID(ctx context.Context, id string) (*domain.Road, error)   { return nil, nil }

func (f *fakeRoads) CreateBatch(ctx context.Context, roads []domain.Road) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.batches = append(f.batches, roads)
	return f.err
}

func TestAssembleWay(t *testing.T) {
	nodes := map[int64]domain.GeoPoint{
		1: {Lat: 38.0, Lon: -120.0},
		2: {Lat: 38.1, Lon: -120.1},
	}

	way, ok := assembleWay(&osmpbf.Way{
		ID:      10,
		Tags:    map[string]string{"highway": "primary", "name": "Main St"},
		NodeIDs: []int64{1, 99, 2},
	}, nodes)
	require.True(t, ok)
	assert.Equal(t, "Main St", way.Name)
	assert.Equal(t, []domain.GeoPoint{nodes[1], nodes[2]}, way.Coordinates)
}

func TestAssembleWay_TooFewNodes(t *testing.T) {
	nodes := map[int64]domain.GeoPoint{1: {Lat: 38.0, Lon: -120.0}}

	_, ok := assembleWay(&osmpbf.Way{ID: 11, NodeIDs: []int64{1, 2}}, nodes)
	assert.False(t, ok)
}

func TestNewImporter_DefaultHighways(t *testing.T) {
	im := NewImporter("unused.pbf", nil)
	assert.True(t, im.highways["residential"])
	assert.False(t, im.highways["footway"])
}

func TestLoad_Batches(t *testing.T) {
	pts := []domain.GeoPoint{{Lat: 0, Lon: 0}, {Lat: 0.001, Lon: 0}}
	ways := make([]Way, 5)
	for i := range ways {
		ways[i] = Way{ID: int64(i), Coordinates: pts}
	}

	repo := &fakeRoads{}
	n, err := Load(context.Background(), repo, "city-1", ways, LoadOptions{BatchSize: 2, Parallelism: 2})
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Len(t, repo.batches, 3)

	total := 0
	for _, b := range repo.batches {
		total += len(b)
		for _, r := range b {
			assert.Equal(t, "city-1", r.CityID)
		}
	}
	assert.Equal(t, 5, total)
}

func TestLoad_Error(t *testing.T) {
	repo := &fakeRoads{err: errors.New("disk full")}
	ways := []Way{{ID: 1, Coordinates: []domain.GeoPoint{{}, {Lat: 1}}}}

	_, err := Load(context.Background(), repo, "city-1", ways, LoadOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}

func TestLoad_CarriesWayIDs(t *testing.T) {
	pts := []domain.GeoPoint{{Lat: 0, Lon: 0}, {Lat: 0.001, Lon: 0}}
	ways := []Way{{ID: 7, Coordinates: pts}, {ID: 8, Coordinates: pts}}

	repo := &fakeRoads{}
	_, err := Load(context.Background(), repo, "city-1", ways, LoadOptions{BatchSize: 10})
	require.NoError(t, err)
	require.Len(t, repo.batches, 1)

	var got []int64
	for _, r := range repo.batches[0] {
		require.NotNil(t, r.OSMWayID)
		got = append(got, *r.OSMWayID)
	}
	assert.Equal(t, []int64{7, 8}, got)
}
