package routes

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/train-tools/bestprice-api/internal"
	"github.com/train-tools/bestprice-api/internal/models"
	"github.com/train-tools/bestprice-api/internal/stats"
)

func Search(aggregator internal.Aggregator, client internal.TrainPricesClient) func(c *gin.Context) {
	return func(c *gin.Context) {
		var req models.SearchRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "start and ziel are required"})
			return
		}

		options, err := req.Options()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		result, err := aggregator.Aggregate(c.Request.Context(), req.Start, req.Ziel, options)
		if err != nil {
			var resErr *internal.ResolutionError
			if errors.As(err, &resErr) {
				c.JSON(http.StatusNotFound, gin.H{"error": resErr.Error()})
				return
			}
			log.Printf("error while aggregating train prices: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "An internal server error occurred"})
			return
		}

		attachBookingLinks(result)

		c.JSON(http.StatusOK, models.SearchResponse{
			Results:     result.ByDate,
			Meta:        result.Meta,
			Statistics:  stats.Derive(result.ByDate, 10),
			Attribution: internal.ATTRIBUTION,
			LastUpdated: client.LastUpdated(),
		})
	}
}

// attachBookingLinks decorates every returned connection with a deep link
// into the booking flow, built from the run's resolved station ids.
func attachBookingLinks(result *models.AggregationResult) {
	meta := result.Meta
	for _, day := range result.ByDate {
		for i := range day.Connections {
			day.Connections[i].BookingLink = internal.BuildBookingLink(
				day.Connections[i].Departure,
				meta.Start.ID,
				meta.Destination.ID,
				meta.Options.TravelClass,
				meta.Options.MaxTransfers,
			)
		}
	}
}
