package admin

import (
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/FACorreiaa/go-fieldops/internal/app/models"
	"github.com/FACorreiaa/go-fieldops/internal/app/pages"
)

const msgVerifyFailed = "Failed to update report status."

var csvHeader = []string{"Date", "ID", "Consultant", "Farmer", "Village", "Status", "Crop Type", "Crop Stage", "Remarks"}

func (h *AdminHandlers) ShowVerification(c *gin.Context) {
	h.renderVerification(c, filterFromQuery(c), nil)
}

func (h *AdminHandlers) renderVerification(c *gin.Context, f VisitFilter, banner *pages.BannerProps) {
	visits, err := h.api.AdminVisits(c.Request.Context())
	if err != nil {
		h.Logger.Warn("Failed to load visits for verification", zap.Error(err))
		h.RenderPage(c, "Verify Reports - FieldOps", "Admin Portal", pages.ErrorPanel("Failed to load visit reports."))
		return
	}
	h.RenderPage(c, "Verify Reports - FieldOps", "Admin Portal", Verification(f, f.Apply(visits), banner))
}

// UpdateVisitStatus verifies or rejects a visit and re-renders the list with
// the filter the admin was looking at.
func (h *AdminHandlers) UpdateVisitStatus(c *gin.Context) {
	l := h.Logger.With(zap.String("method", "UpdateVisitStatus"))
	id := c.Param("id")
	status := models.VisitStatus(c.PostForm("status"))
	f := VisitFilter{Status: models.VisitStatus(c.PostForm("filter")), Search: strings.TrimSpace(c.PostForm("q"))}
	if !f.Status.Valid() {
		f.Status = ""
	}

	if err := h.api.VerifyVisit(c.Request.Context(), id, status); err != nil {
		l.Warn("Failed to update visit status", zap.String("visit_id", id), zap.String("status", string(status)), zap.Error(err))
		h.renderVerification(c, f, &pages.BannerProps{Type: pages.BannerError, Message: msgVerifyFailed, ID: "verify-banner"})
		return
	}

	l.Info("Visit status updated", zap.String("visit_id", id), zap.String("status", string(status)))
	banner := &pages.BannerProps{Type: pages.BannerSuccess, Message: "Report verified successfully!", ID: "verify-banner"}
	if status == models.VisitRejected {
		banner = &pages.BannerProps{Type: pages.BannerError, Message: "Report rejected successfully!", ID: "verify-banner"}
	}
	h.renderVerification(c, f, banner)
}

// ExportCSV downloads the currently filtered visits.
func (h *AdminHandlers) ExportCSV(c *gin.Context) {
	visits, err := h.api.AdminVisits(c.Request.Context())
	if err != nil {
		h.Logger.Warn("Failed to load visits for export", zap.String("method", "ExportCSV"), zap.Error(err))
		c.String(http.StatusBadGateway, "Failed to load visit reports.")
		return
	}

	filename := fmt.Sprintf("Visit_Reports_%s.csv", time.Now().Format("2006-01-02"))
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Status(http.StatusOK)

	if err := WriteCSV(c.Writer, filterFromQuery(c).Apply(visits)); err != nil {
		h.Logger.Error("Failed to write CSV export", zap.Error(err))
	}
}

// WriteCSV writes visits in export column order. Newlines in remarks are
// flattened to spaces so each visit stays on one line.
func WriteCSV(w io.Writer, visits []models.Visit) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, v := range visits {
		date := "N/A"
		if v.VisitDate != nil {
			date = v.VisitDate.UTC().Format("2006-01-02")
		}
		remarks := strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ").Replace(v.Remarks)
		record := []string{
			date,
			v.ID,
			v.ConsultantName(),
			v.FarmerName(),
			v.FarmerVillage(),
			string(v.Status),
			orNA(v.CropType),
			orNA(v.CropStage),
			remarks,
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
