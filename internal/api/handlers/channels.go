package handlers

import (
	"net/http"

	"runway-forecast/internal/analysis"
	"runway-forecast/internal/api/models"

	"github.com/gin-gonic/gin"
)

// ForecastChannels handles POST /api/v1/revenue/channels
func ForecastChannels(c *gin.Context) {
	var req models.ChannelForecastRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		writeError(c, http.StatusBadRequest, CodeInvalidRequest, err.Error(), nil)
		return
	}

	mix := analysis.DefaultChannelMix(req.StartingMRR)
	if req.Mix != nil {
		mix = *req.Mix
	}
	if err := mix.Validate(); err != nil {
		writeError(c, http.StatusBadRequest, CodeInvalidRequest, err.Error(), nil)
		return
	}

	rows := analysis.ForecastChannels(mix)
	var endARR float64
	if len(rows) > 0 {
		endARR = rows[len(rows)-1].ARR
	}
	c.JSON(http.StatusOK, models.ChannelForecastResponse{
		Mix:    mix,
		Rows:   rows,
		EndARR: endARR,
	})
}
