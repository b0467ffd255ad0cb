package main

import (
	"context"
	"log"
	"net/http"
	"os"

	"insightbeam/api"
	"insightbeam/archive"
	"insightbeam/config"
	"insightbeam/core"
	"insightbeam/deduplication"
	"insightbeam/events"
	"insightbeam/interpreter"
	"insightbeam/rssfeeds"
	"insightbeam/search"
	"insightbeam/store"
)

func main() {
	log.SetOutput(os.Stderr)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("configuration error: %v", err)
	}

	db, err := store.Open(cfg.DBPath)
	if err != nil {
		log.Fatalf("failed to open store: %v", err)
	}
	defer db.Close()

	engine, err := search.Open(cfg.SearchIndexDir, cfg.RebuildIndex)
	if err != nil {
		log.Fatalf("failed to open search index: %v", err)
	}
	defer engine.Close()

	reader := rssfeeds.NewReader(
		rssfeeds.NewGofeedParser(),
		rssfeeds.NewReadabilityExtractor(cfg.DepCallTimeout, cfg.BrowserAgent),
	)

	model := interpreter.NewCohereChatModel(cfg.CohereAPIKey, cfg.CohereModel, cfg.DepCallTimeout)
	interp := interpreter.New(model)

	var opts []core.Option
	if len(cfg.KafkaBrokers) > 0 {
		publisher, err := events.NewPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		if err != nil {
			log.Fatalf("failed to connect to kafka: %v", err)
		}
		defer publisher.Close()
		opts = append(opts, core.WithPublisher(publisher))
		log.Printf("Ingest events enabled (topic %s)", cfg.KafkaTopic)
	}
	if cfg.S3Bucket != "" {
		archiver, err := archive.NewArchiver(context.Background(), cfg.S3Bucket, cfg.S3Region, cfg.S3Prefix)
		if err != nil {
			log.Fatalf("failed to init s3 archiver: %v", err)
		}
		opts = append(opts, core.WithArchiver(archiver))
		log.Printf("Article archiving enabled (bucket %s)", cfg.S3Bucket)
	}
	if cfg.RedisAddr != "" {
		filter, err := deduplication.NewSeenURLFilter(cfg.RedisAddr, "")
		if err != nil {
			log.Fatalf("failed to connect to redis: %v", err)
		}
		defer filter.Close()
		opts = append(opts, core.WithURLFilter(filter))
		log.Printf("Seen-URL filter enabled (%s)", cfg.RedisAddr)
	}

	c := core.New(db, reader, engine, interp, opts...)

	addr := ":" + cfg.Port
	r := api.NewRouter(c)
	log.Printf("Starting API server on %s", addr)
	log.Println("API endpoints available:")
	log.Println("  GET  /api/health")
	log.Println("  GET  /sources")
	log.Println("  POST /sources")
	log.Println("  POST /sources/:id/pull")
	log.Println("  GET  /sources/:id/items")
	log.Println("  GET  /items/:id")
	log.Println("  GET  /items/:id/analysis")
	log.Println("  GET  /items/:id/counter-analysis")

	if err := http.ListenAndServe(addr, r); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
