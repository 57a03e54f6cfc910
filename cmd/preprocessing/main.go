package main

import (
	"context"
	"flag"
	"log"

	"github.com/danarpra/matchengine/pkg/kv"
	"github.com/danarpra/matchengine/pkg/osmparser"

	"github.com/dgraph-io/badger/v4"
)

var (
	mapFile   = flag.String("f", "./sample.osm.pbf", "openstreetmap pbf file")
	graphFile = flag.String("graph", "./matchengine_graph.bin", "output road graph file")
	badgerDir = flag.String("badgerdir", "./matchengine_badger", "output badger directory of the h3 edge index")
)

func main() {
	flag.Parse()
	ctx := context.Background()

	graph, err := osmparser.ParsePBF(ctx, *mapFile)
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("road graph built: %d nodes, %d edges", graph.NumNodes(), graph.NumOutEdges())

	if err := graph.SaveToFile(*graphFile); err != nil {
		log.Fatal(err)
	}
	log.Printf("road graph saved to %s", *graphFile)

	db, err := badger.Open(badger.DefaultOptions(*badgerDir))
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	kvDB := kv.NewKVDB(db)
	if err := kvDB.BuildH3IndexedEdges(ctx, graph); err != nil {
		log.Fatal(err)
	}
}
