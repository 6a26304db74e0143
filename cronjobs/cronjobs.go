package cronjobs

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/bluesky-social/indigo/xrpc"
	"github.com/robfig/cron/v3"

	"go-sitrep/db"
	"go-sitrep/pipeline"
	"go-sitrep/synthesis"
	"go-sitrep/types"
)

const (
	feedMethod  = "app.bsky.feed.getFeed"
	publicHost  = "https://public.api.bsky.app"
	feedTimeout = 2 * time.Minute
)

type FeedCallParameters struct {
	name  string
	uri   string
	limit int
}

// Deps are the processing collaborators the feed jobs run scraped reports
// through.
type Deps struct {
	Pipeline    *pipeline.Pipeline
	Synthesizer *synthesis.Synthesizer
	Store       db.Store
}

func callFeed(p FeedCallParameters, deps Deps) {
	// Initialize the xrpc client to use the public API endpoint.
	client := &xrpc.Client{
		Client:    &http.Client{Timeout: 10 * time.Second},
		Host:      publicHost, // public endpoint for unauthenticated requests.
		UserAgent: nil,
	}

	limit := 10
	if p.limit != 0 {
		limit = p.limit
	}

	// The limit can be adjusted (min 1, max 100, default 50).
	params := map[string]interface{}{
		"feed":  p.uri,
		"limit": limit,
	}

	log.Printf("Fetching %s feed with params: %+v", p.name, params)

	ctx, cancel := context.WithTimeout(context.Background(), feedTimeout)
	defer cancel()

	var out types.FeedResponse
	if err := client.Do(ctx, xrpc.Query, "json", feedMethod, params, nil, &out); err != nil {
		log.Printf("Error fetching %s feed via xrpc: %v", p.name, err)
		return
	}

	reports := feedToReports(out, p.name)
	if len(reports) == 0 {
		log.Printf("No usable posts in %s feed", p.name)
		return
	}

	clusters, err := deps.Pipeline.Process(ctx, reports)
	if err != nil {
		log.Printf("No incidents formed from %s feed: %v", p.name, err)
		return
	}

	for _, cluster := range clusters {
		sitrep := deps.Synthesizer.Synthesize(ctx, cluster)
		if err := deps.Store.Save(ctx, sitrep); err != nil {
			log.Printf("Error saving sitrep %s from %s feed: %v", sitrep.IncidentID, p.name, err)
		}
	}
	log.Printf("%s feed processed: %d post(s), %d incident(s)", p.name, len(reports), len(clusters))
}

// feedToReports maps feed posts to pipeline reports. Scraped posts always
// enter as low-credibility social media reports.
func feedToReports(out types.FeedResponse, feedName string) []types.Report {
	reports := make([]types.Report, 0, len(out.Feed))
	for _, entry := range out.Feed {
		post := entry.Post
		if post.Record.Text == "" {
			continue
		}

		timestamp := time.Now().UTC()
		if parsed, err := time.Parse(time.RFC3339, post.Record.CreatedAt); err == nil {
			timestamp = parsed
		}

		lang := "auto"
		if len(post.Record.Langs) > 0 {
			lang = post.Record.Langs[0]
		}

		reports = append(reports, types.Report{
			ID:               post.CID,
			RawText:          post.Record.Text,
			OriginalLanguage: lang,
			SourceType:       "social_media_scrape",
			Timestamp:        timestamp,
			ReporterMeta: types.ReporterMeta{
				Source:      "bluesky_" + feedName,
				Credibility: types.CredibilityLow,
			},
		})
	}
	return reports
}

func InitCronJobs(deps Deps) {
	log.Println("\nStarting Cron Jobs -------------------------------------------------------")
	c := cron.New()

	// Fire Feed: Run every 10 minutes at 0 minutes
	_, err := c.AddFunc("*/10 * * * *", func() {
		log.Println("\nCronJob: Fire Feed Running")
		fireURI := "at://did:plc:qiknc4t5rq7yngvz7g4aezq7/app.bsky.feed.generator/aaaejsyozb6iq"
		callFeed(FeedCallParameters{name: "fire", uri: fireURI, limit: 10}, deps)
	})
	if err != nil {
		log.Println("Error scheduling Fire Feed", err)
	}

	// Earthquake Feed: Run every 10 minutes at 2 minute mark
	_, err = c.AddFunc("2-59/10 * * * *", func() {
		log.Println("\nCronJob: EarthQuake Feed Running")
		earthQuakeURI := "at://did:plc:qiknc4t5rq7yngvz7g4aezq7/app.bsky.feed.generator/aaaejxlobe474"
		callFeed(FeedCallParameters{name: "earthquake", uri: earthQuakeURI, limit: 10}, deps)
	})
	if err != nil {
		log.Println("Error scheduling EarthQuake Feed:", err)
	}

	c.Start()
}
