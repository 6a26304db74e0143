package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"go-sitrep/analyzer"
	"go-sitrep/db"
	"go-sitrep/geocode"
	"go-sitrep/synthesis"
	"go-sitrep/types"
)

type analyzeEvidenceRequest struct {
	IncidentTitle    string   `json:"incident_title"`
	IncidentDatetime string   `json:"incident_datetime"`
	IncidentLocation string   `json:"incident_location"`
	TextEvidence     []string `json:"text_evidence" binding:"required,min=1"`
	ImageNotes       []string `json:"image_notes"`
	VideoNotes       []string `json:"video_notes"`
}

// AnalyzeEvidence runs the evidence-analysis path: structured analysis of
// the submitted evidence, then single-report SITREP synthesis. Clustering
// and verification are bypassed; status comes from declared credibility.
func AnalyzeEvidence(c *gin.Context, svc *analyzer.Service, synth *synthesis.Synthesizer, geocoder geocode.Resolver, store db.Store) {
	var request analyzeEvidenceRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":   "Validation failed",
			"details": err.Error(),
		})
		return
	}

	ctx := c.Request.Context()

	report := svc.Analyze(ctx, types.Evidence{
		IncidentTitle:    request.IncidentTitle,
		IncidentDatetime: request.IncidentDatetime,
		IncidentLocation: request.IncidentLocation,
		TextEvidence:     request.TextEvidence,
		ImageNotes:       request.ImageNotes,
		VideoNotes:       request.VideoNotes,
	})

	if report.Location != "" {
		geotag := geocoder.Resolve(ctx, report.Location)
		report.GeocodedLocation = &geotag
	}

	sitrep := synth.FromEvidence(ctx, report)

	if err := store.Save(ctx, sitrep); err != nil {
		log.Printf("Error saving sitrep %s: %v", sitrep.IncidentID, err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to persist SITREP",
		})
		return
	}

	log.Printf("Evidence SITREP generated: id=%s status=%s fallback=%v",
		sitrep.IncidentID, sitrep.Status, sitrep.Audit.EvidenceIsFallback)

	c.JSON(http.StatusOK, sitrep)
}
