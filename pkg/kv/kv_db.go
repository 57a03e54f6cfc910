package kv

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/danarpra/matchengine/pkg/datastructure"

	"github.com/dgraph-io/badger/v4"
	"github.com/uber/h3-go/v4"
)

var (
	ErrEdgesNotFound = errors.New("edges not found")
)

const (
	h3Resolution = 9
	batchSize    = 1000
)

// KVEdge is the compact road segment record stored in the h3 index.
type KVEdge struct {
	CenterLoc  [2]float64
	EdgeID     int32
	FromNodeID int32
	ToNodeID   int32
}

// KVDB indexes road segments by the h3 cell of their first geometry
// point, so candidate segments around a gps sample are one cell ring
// lookup away.
type KVDB struct {
	db *badger.DB
}

func NewKVDB(db *badger.DB) *KVDB {
	return &KVDB{db}
}

func (k *KVDB) Close() error {
	return k.db.Close()
}

func (k *KVDB) BuildH3IndexedEdges(ctx context.Context, graph *datastructure.RoadGraph) error {
	log.Printf("creating & saving h3 indexed street to key-value db...")

	kv := make(map[string][]KVEdge)
	for i := 0; i < graph.NumOutEdges(); i++ {
		select {
		case <-ctx.Done():
			return fmt.Errorf("context cancelled")
		default:
		}

		roadSegment := graph.GetOutEdge(int32(i))
		pointsInBetween := roadSegment.PointsInBetween

		edgeLat := pointsInBetween[0].Lat
		edgeLon := pointsInBetween[0].Lon

		h3LatLon := h3.NewLatLng(edgeLat, edgeLon)
		cell := h3.LatLngToCell(h3LatLon, h3Resolution)
		kv[cell.String()] = append(kv[cell.String()], KVEdge{
			CenterLoc:  [2]float64{edgeLat, edgeLon},
			EdgeID:     roadSegment.EdgeID,
			FromNodeID: roadSegment.FromNodeID,
			ToNodeID:   roadSegment.ToNodeID,
		})
	}

	batches := make([]batchData, 0, batchSize)
	for key, value := range kv {
		batches = append(batches, batchData{key: key, value: value})
		if len(batches) == batchSize {
			if err := k.saveBatchEdges(ctx, batches); err != nil {
				return err
			}
			batches = make([]batchData, 0, batchSize)
		}
	}

	if len(batches) > 0 {
		if err := k.saveBatchEdges(ctx, batches); err != nil {
			return err
		}
	}

	log.Printf("creating & saving h3 indexed street to key-value db done...")
	return nil
}

type batchData struct {
	key   string
	value []KVEdge
}

func (k *KVDB) saveBatchEdges(ctx context.Context, batches []batchData) error {
	batch := k.db.NewWriteBatch()
	defer batch.Cancel()

	for _, data := range batches {
		select {
		case <-ctx.Done():
			return fmt.Errorf("context cancelled")
		default:
		}

		val, err := encodeEdges(data.value)
		if err != nil {
			return err
		}

		if err := batch.Set([]byte(data.key), val); err != nil {
			return err
		}
	}

	if err := batch.Flush(); err != nil {
		log.Printf("error saving edges: %v", err)
		return err
	}
	return nil
}

func (k *KVDB) get(key []byte) ([]byte, error) {
	var val []byte
	err := k.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}

		val, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrEdgesNotFound
	}
	return val, err
}

// GetNearestRoadSegmentsFromPointCoord returns the segments indexed in
// the cell of the coordinate and its neighbor ring.
func (k *KVDB) GetNearestRoadSegmentsFromPointCoord(lat, lon float64) ([]KVEdge, error) {
	cell := h3.LatLngToCell(h3.NewLatLng(lat, lon), h3Resolution)

	edges := make([]KVEdge, 0)
	for _, neighbor := range h3.GridDisk(cell, 1) {
		val, err := k.get([]byte(neighbor.String()))
		if errors.Is(err, ErrEdgesNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}

		cellEdges, err := loadEdges(val)
		if err != nil {
			return nil, err
		}
		edges = append(edges, cellEdges...)
	}

	if len(edges) == 0 {
		return nil, ErrEdgesNotFound
	}
	return edges, nil
}
