package pages

import (
	"github.com/Oudwins/tailwind-merge-go/pkg/twmerge"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/FACorreiaa/go-fieldops/internal/app/models"
)

const baseButton = "inline-flex items-center justify-center gap-2 rounded-lg px-4 py-2 text-sm font-semibold bg-emerald-600 text-white hover:bg-emerald-700 disabled:opacity-50"

// ButtonClass merges overrides into the base button classes; later classes win.
func ButtonClass(overrides ...string) string {
	return twmerge.Merge(append([]string{baseButton}, overrides...)...)
}

var title = cases.Title(language.English)

// Label turns an API enum value into display text ("verified" → "Verified").
func Label(s string) string {
	return title.String(s)
}

type BannerType string

const (
	BannerError   BannerType = "error"
	BannerSuccess BannerType = "success"
	BannerInfo    BannerType = "info"
)

type BannerProps struct {
	Type    BannerType
	Message string
	ID      string
}

func bannerClass(t BannerType) string {
	const base = "rounded-lg border px-4 py-3 text-sm mb-4"
	switch t {
	case BannerError:
		return twmerge.Merge(base, "border-red-200 bg-red-50 text-red-700")
	case BannerSuccess:
		return twmerge.Merge(base, "border-emerald-200 bg-emerald-50 text-emerald-700")
	default:
		return twmerge.Merge(base, "border-sky-200 bg-sky-50 text-sky-700")
	}
}

func badgeClass(status models.VisitStatus) string {
	color := "bg-amber-100 text-amber-800"
	switch status {
	case models.VisitVerified:
		color = "bg-emerald-100 text-emerald-800"
	case models.VisitRejected:
		color = "bg-red-100 text-red-800"
	case models.VisitPending:
	}
	return twmerge.Merge("rounded-full px-2 py-0.5 text-xs font-medium", color)
}
