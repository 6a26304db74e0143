package routes

import (
	"github.com/gin-gonic/gin"

	"go-sitrep/analyzer"
	"go-sitrep/db"
	"go-sitrep/geocode"
	"go-sitrep/handlers"
	"go-sitrep/pipeline"
	"go-sitrep/synthesis"
)

func SetupRouter(pl *pipeline.Pipeline, synth *synthesis.Synthesizer, svc *analyzer.Service, geocoder geocode.Resolver, store db.Store) *gin.Engine {
	r := gin.Default()

	r.GET("/", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "Incident room SITREP service",
		})
	})

	// api routes
	api := r.Group("/api/incident-room")
	{
		api.POST("/process-reports", func(c *gin.Context) {
			handlers.ProcessReports(c, pl, synth, geocoder, store)
		})
		api.GET("/test-example", func(c *gin.Context) {
			handlers.TestWithExampleData(c, pl, synth, geocoder, store)
		})
		api.GET("/sitreps", func(c *gin.Context) {
			handlers.ListSitreps(c, store)
		})
		api.GET("/sitreps/:incidentId", func(c *gin.Context) {
			handlers.GetSitrep(c, store)
		})
		api.POST("/analyze-evidence", func(c *gin.Context) {
			handlers.AnalyzeEvidence(c, svc, synth, geocoder, store)
		})
	}

	return r
}
