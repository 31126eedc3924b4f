package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"net/http/pprof"
	"os"
	"sync/atomic"
	"time"

	"github.com/matst80/slask-refine/pkg/cache"
	"github.com/matst80/slask-refine/pkg/common"
	"github.com/matst80/slask-refine/pkg/facet"
	"github.com/matst80/slask-refine/pkg/helper"
	"github.com/matst80/slask-refine/pkg/server"
	"github.com/matst80/slask-refine/pkg/storage"
	ffSync "github.com/matst80/slask-refine/pkg/sync"
	"github.com/matst80/slask-refine/pkg/tracking"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	amqp "github.com/rabbitmq/amqp091-go"
)

var enableProfiling = flag.Bool("profiling", false, "enable profiling endpoints")
var facetsFlag = flag.String("facets", "", "refinement lists as name:operator pairs, overrides facets.json")
var cacheTTL = flag.Duration("cache-ttl", 30*time.Second, "ttl of cached search results")
var sessionTTL = flag.Duration("session-ttl", 30*time.Minute, "idle time before a session is dropped")

var listenAddress = envOr("LISTEN_ADDRESS", ":8080")
var debugAddress = envOr("DEBUG_ADDRESS", ":8081")
var dataDir = envOr("DATA_DIR", "data")
var country = envOr("COUNTRY", "se")
var rabbitUrl = os.Getenv("RABBIT_URL")
var redisUrl = os.Getenv("REDIS_URL")
var redisPassword = os.Getenv("REDIS_PASSWORD")

func envOr(name, fallback string) string {
	if v, ok := os.LookupEnv(name); ok && v != "" {
		return v
	}
	return fallback
}

type app struct {
	storage  *storage.DiskStorage
	index    *facet.Index
	conn     *amqp.Connection
	cache    *cache.Cache
	tracker  tracking.Tracking
	changed  atomic.Bool
	facets   []storage.FacetSetting
	sessions *server.SessionStore
}

func (a *app) loadFacets() {
	if *facetsFlag != "" {
		facets, err := parseFacets(*facetsFlag)
		if err != nil {
			log.Fatalf("invalid -facets: %v", err)
		}
		a.facets = facets
		return
	}
	if err := a.storage.LoadFacets(&a.facets); err != nil {
		log.Printf("could not load facets from storage: %v", err)
	}
	if len(a.facets) == 0 {
		a.facets = []storage.FacetSetting{{Name: "brand", Title: "Brand"}, {Name: "type", Title: "Type", Operator: "and"}}
	}
}

func (a *app) loadItems() {
	n, err := a.storage.LoadItems(a.index)
	if err != nil {
		log.Printf("could not load items: %v", err)
		return
	}
	log.Printf("loaded %d items", n)
}

func (a *app) connectAmqp() {
	conn, err := amqp.DialConfig(rabbitUrl, amqp.Config{
		Properties: amqp.NewConnectionProperties(),
	})
	if err != nil {
		log.Printf("failed to connect to rabbitmq: %v", err)
		return
	}
	a.conn = conn
	err = ffSync.ListenForItemChanges(conn, country, a.index, func(*ffSync.ItemChange) {
		a.changed.Store(true)
	})
	if err != nil {
		log.Printf("failed to listen for item changes: %v", err)
	}

	trk, err := tracking.NewRabbitTracking(rabbitUrl, country)
	if err != nil {
		log.Printf("failed to connect to rabbitmq for tracking: %v", err)
		return
	}
	a.tracker = tracking.NewQueuedTracking(trk, 100, 5*time.Second)
}

func (a *app) backend() helper.Backend {
	if redisUrl == "" {
		return a.index
	}
	a.cache = cache.NewCache(redisUrl, redisPassword, 0)
	log.Printf("result cache enabled, url: %s", redisUrl)
	return cache.Backend(a.index, a.cache, *cacheTTL)
}

func (a *app) saveIfChanged(ctx context.Context) error {
	if !a.changed.Load() {
		return nil
	}
	log.Println("saving items")
	return a.storage.SaveItems(a.index.Items())
}

func (a *app) closeTracking(ctx context.Context) error {
	return a.tracker.Close()
}

func (a *app) closeConnections(ctx context.Context) error {
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			log.Printf("failed to close cache: %v", err)
		}
	}
	if a.conn != nil {
		return a.conn.Close()
	}
	return nil
}

func debugHandler() *http.ServeMux {
	debugMux := http.NewServeMux()
	debugMux.Handle("/metrics", promhttp.Handler())
	if *enableProfiling {
		log.Println("profiling enabled")
		debugMux.HandleFunc("/debug/pprof/", pprof.Index)
		debugMux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
		debugMux.HandleFunc("/debug/pprof/profile", pprof.Profile)
		debugMux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
		debugMux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	}
	return debugMux
}

func main() {
	flag.Parse()

	a := &app{
		storage: storage.NewDiskStorage(country, dataDir),
		index:   facet.NewIndex(),
		tracker: tracking.NoTracking{},
	}
	a.loadFacets()
	a.loadItems()
	if rabbitUrl != "" {
		a.connectAmqp()
	}

	ws := server.NewWebServer(a.backend(), refinementPage(a.facets), a.tracker, server.Options{
		SessionTTL: *sessionTTL,
		Suggester:  a.index,
	})
	a.sessions = ws.Sessions

	ctx, cancel := context.WithCancel(context.Background())
	go a.sessions.RunEviction(ctx, time.Minute)

	timeouts := common.LoadTimeoutConfig(common.DefaultTimeouts)
	srv := common.NewServer(listenAddress, ws.Handler(), timeouts)
	debug := common.NewServer(debugAddress, debugHandler(), timeouts)

	common.RunServerWithShutdown(srv, "refine", timeouts.Shutdown, timeouts.Hook, []*http.Server{debug},
		func(context.Context) error {
			cancel()
			return nil
		},
		a.saveIfChanged,
		a.closeTracking,
		a.closeConnections,
	)
}
