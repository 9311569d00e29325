package http

import (
	"math"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/berthplan/internal/quay"
)

// ConversionResponse describes one quay position in both coordinate systems.
type ConversionResponse struct {
	Meters      float64 `json:"meters"`
	Notation    string  `json:"notation"`
	BitPosition float64 `json:"bit_position"`
}

// BerthResponse is the berth holding a vessel at the given bow and stern.
type BerthResponse struct {
	BowM   float64 `json:"bow_m"`
	SternM float64 `json:"stern_m"`
	Berth  int     `json:"berth"`
}

type QuayController struct{}

func NewQuayController() *QuayController {
	return &QuayController{}
}

// Convert handles GET /api/quay/convert?meters=N or ?notation=36+04.
func (qc *QuayController) Convert(c *gin.Context) {
	if notation := c.Query("notation"); notation != "" {
		meters, ok := quay.BitNotationToMeters(notation)
		if !ok {
			respondBadRequest(c, "invalid bit notation: "+notation)
			return
		}
		c.JSON(http.StatusOK, conversion(meters))
		return
	}

	meters, present, ok := parseFloatQuery(c, "meters")
	if !ok {
		return
	}
	if !present || math.IsNaN(meters) || math.IsInf(meters, 0) {
		respondBadRequest(c, "meters or notation is required")
		return
	}
	c.JSON(http.StatusOK, conversion(meters))
}

// Berth handles GET /api/quay/berth?bow=N&stern=M.
func (qc *QuayController) Berth(c *gin.Context) {
	bow, bowSet, ok := parseFloatQuery(c, "bow")
	if !ok {
		return
	}
	stern, sternSet, ok := parseFloatQuery(c, "stern")
	if !ok {
		return
	}
	if !bowSet || !sternSet {
		respondBadRequest(c, "bow and stern are required")
		return
	}

	c.JSON(http.StatusOK, BerthResponse{
		BowM:   bow,
		SternM: stern,
		Berth:  quay.ClassifyBerth(bow, stern),
	})
}

func conversion(meters float64) ConversionResponse {
	return ConversionResponse{
		Meters:      meters,
		Notation:    quay.MetersToBitNotation(meters),
		BitPosition: math.Round(quay.MetersToBitPosition(meters)*1000) / 1000,
	}
}
