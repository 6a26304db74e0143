package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"go-sitrep/db"
	"go-sitrep/detection"
	"go-sitrep/geocode"
	"go-sitrep/pipeline"
	"go-sitrep/synthesis"
	"go-sitrep/types"
)

const defaultTestLocation = "Karol Bagh, Delhi"

// IncomingReport is the wire shape of one report in a process-reports batch.
type IncomingReport struct {
	RawText          string             `json:"raw_text" binding:"required"`
	Location         string             `json:"location" binding:"required"`
	OriginalLanguage string             `json:"original_language"`
	SourceType       string             `json:"source_type"`
	Timestamp        string             `json:"timestamp"`
	ReporterMeta     types.ReporterMeta `json:"reporter_meta"`
}

type processReportsRequest struct {
	Reports []IncomingReport `json:"reports" binding:"required,min=1,max=10,dive"`
}

// ProcessReports runs a batch of eyewitness reports through the full
// pipeline and returns the synthesized SITREP for the primary incident.
func ProcessReports(c *gin.Context, pl *pipeline.Pipeline, synth *synthesis.Synthesizer, geocoder geocode.Resolver, store db.Store) {
	var request processReportsRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":   "Validation failed",
			"details": err.Error(),
		})
		return
	}

	processBatch(c, request.Reports, pl, synth, geocoder, store)
}

// TestWithExampleData runs the pipeline on a canned trilingual batch
// describing the same explosion, so the full path can be exercised without
// composing a request body.
func TestWithExampleData(c *gin.Context, pl *pipeline.Pipeline, synth *synthesis.Synthesizer, geocoder geocode.Resolver, store db.Store) {
	exampleReports := []IncomingReport{
		{
			RawText:          "दिल्ली के करोल बाग में एक जोरदार धमाका हुआ, बहुत तेज आवाज़, कई लोगों ने सुना, अभी तक चोट की खबर नहीं मिली",
			Location:         defaultTestLocation,
			OriginalLanguage: "hi",
			SourceType:       "voice-transcript",
			Timestamp:        "2025-11-15T07:12:00+05:30",
			ReporterMeta:     types.ReporterMeta{Source: "field_call", Credibility: types.CredibilityUnknown},
		},
		{
			RawText:          "করোল বাগ এলাকায় বিস্ফোরণ শোনা গেছে, লোকেরা বাইরে হয়েছে, কেউ আহত হয়েছে জানি না",
			Location:         defaultTestLocation,
			OriginalLanguage: "bn",
			SourceType:       "voice-transcript",
			Timestamp:        "2025-11-15T07:13:27+05:30",
			ReporterMeta:     types.ReporterMeta{Source: "citizen_sms", Credibility: types.CredibilityUnknown},
		},
		{
			RawText:          "Loud explosion reported near Karol Bagh, Delhi. Many people heard the blast. No confirmed casualties yet.",
			Location:         defaultTestLocation,
			OriginalLanguage: "en",
			SourceType:       "text",
			Timestamp:        "2025-11-15T07:11:50+05:30",
			ReporterMeta:     types.ReporterMeta{Source: "social_media_scrape", Credibility: types.CredibilityLow},
		},
	}

	processBatch(c, exampleReports, pl, synth, geocoder, store)
}

func processBatch(c *gin.Context, incoming []IncomingReport, pl *pipeline.Pipeline, synth *synthesis.Synthesizer, geocoder geocode.Resolver, store db.Store) {
	ctx := c.Request.Context()

	reports := make([]types.Report, 0, len(incoming))
	for i, in := range incoming {
		report := types.Report{
			ID:               fmt.Sprintf("r%s_%d", strings.ReplaceAll(uuid.NewString(), "-", "")[:13], i),
			RawText:          in.RawText,
			Location:         in.Location,
			OriginalLanguage: in.OriginalLanguage,
			SourceType:       in.SourceType,
			ReporterMeta:     in.ReporterMeta,
		}
		if in.Timestamp != "" {
			if parsed, err := time.Parse(time.RFC3339, in.Timestamp); err == nil {
				report.Timestamp = parsed
			} else {
				log.Printf("Unparseable timestamp %q for report %s, using current time", in.Timestamp, report.ID)
			}
		}

		// Resolve the caller-supplied location up front for the audit trail.
		preGeotag := geocoder.Resolve(ctx, in.Location)
		if preGeotag.HasCoords() {
			log.Printf("Geocoded location %q for report %s (source=%s, confidence=%.2f)",
				in.Location, report.ID, preGeotag.Source, preGeotag.Confidence)
		} else {
			log.Printf("Failed to geocode location %q for report %s", in.Location, report.ID)
			preGeotag = types.Geotag{DisplayName: in.Location, Query: in.Location}
		}
		report.PreGeotag = &preGeotag

		reports = append(reports, report)
	}

	log.Printf("Processing %d incident report(s)", len(reports))

	clusters, err := pl.Process(ctx, reports)
	if errors.Is(err, pipeline.ErrNoIncidents) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":   pipeline.ErrNoIncidents.Error(),
			"message": "Reports may be too dissimilar or lack sufficient confidence scores",
		})
		return
	}
	if err != nil {
		log.Printf("Error processing reports: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Internal processing error",
			"message": "Failed to process incident reports",
		})
		return
	}

	primary, _ := detection.SelectPrimary(clusters)
	sitrep := synth.Synthesize(ctx, primary)
	sitrep = applyQualityChecks(sitrep)

	if err := store.Save(ctx, sitrep); err != nil {
		log.Printf("Error saving sitrep %s: %v", sitrep.IncidentID, err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to persist SITREP",
		})
		return
	}

	log.Printf("SITREP generated: id=%s status=%s reports=%d",
		sitrep.IncidentID, sitrep.Status, sitrep.Sources.ReportCount)

	c.JSON(http.StatusOK, sitrep)
}

// GetSitrep returns one stored SITREP by incident id.
func GetSitrep(c *gin.Context, store db.Store) {
	incidentID := c.Param("incidentId")

	sitrep, err := store.Get(c.Request.Context(), incidentID)
	if errors.Is(err, db.ErrSitrepNotFound) {
		c.JSON(http.StatusNotFound, gin.H{
			"error":       "SITREP not found",
			"incident_id": incidentID,
		})
		return
	}
	if err != nil {
		log.Printf("Error retrieving sitrep %s: %v", incidentID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve SITREP"})
		return
	}

	c.JSON(http.StatusOK, sitrep)
}

// ListSitreps returns the newest-first index of stored SITREPs.
func ListSitreps(c *gin.Context, store db.Store) {
	summaries, err := store.List(c.Request.Context())
	if err != nil {
		log.Printf("Error listing sitreps: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list SITREPs"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"sitreps": summaries,
		"count":   len(summaries),
	})
}
