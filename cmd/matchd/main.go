package main

import (
	"flag"
	"log"
	"net/http"

	"github.com/danarpra/matchengine/pkg/datastructure"
	"github.com/danarpra/matchengine/pkg/engine/matching"
	"github.com/danarpra/matchengine/pkg/engine/routing"
	"github.com/danarpra/matchengine/pkg/kv"
	mmrest "github.com/danarpra/matchengine/pkg/server/mm_rest"
	"github.com/danarpra/matchengine/pkg/server/mm_rest/service"
	"github.com/danarpra/matchengine/pkg/snap"

	"github.com/dgraph-io/badger/v4"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	listenAddr = flag.String("listenaddr", ":5050", "server listen address")
	graphFile  = flag.String("graph", "./matchengine_graph.bin", "road graph file built by the preprocessing command")
	badgerDir  = flag.String("badgerdir", "./matchengine_badger", "badger directory of the h3 edge index")
)

func main() {
	flag.Parse()

	graph, err := datastructure.LoadRoadGraph(*graphFile)
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("loaded road graph: %d nodes, %d edges", graph.NumNodes(), graph.NumOutEdges())

	db, err := badger.Open(badger.DefaultOptions(*badgerDir))
	if err != nil {
		log.Fatal(err)
	}
	kvDB := kv.NewKVDB(db)
	defer kvDB.Close()

	roadSnapper := snap.NewRoadSnapper()
	if err := roadSnapper.BuildIndex(graph); err != nil {
		log.Fatal(err)
	}

	routeAlgo := routing.NewRouteAlgorithm(graph)
	mapMatching := matching.NewHMMMapMatching(graph, routeAlgo)

	mmSvc := service.NewMapMatchingService(mapMatching, roadSnapper, kvDB, graph)

	// server

	httpRequests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "matchengine_http_requests_total",
		Help: "Count of handled http requests per path.",
	}, []string{"path"})
	prometheus.MustRegister(httpRequests)

	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			httpRequests.WithLabelValues(req.URL.Path).Inc()
			next.ServeHTTP(w, req)
		})
	})

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Mount("/debug", middleware.Profiler())
	r.Handle("/metrics", promhttp.Handler())

	mmrest.MapMatchingRouter(r, mmSvc)
	log.Printf("map matching ready!!!")
	log.Printf("server started at %s\n", *listenAddr)
	log.Fatal(http.ListenAndServe(*listenAddr, r))
}
