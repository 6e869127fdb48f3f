package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFarmerMatchesQuery(t *testing.T) {
	f := Farmer{Name: "Suresh Patil", Village: "Wadgaon"}
	assert.True(t, f.MatchesQuery(""))
	assert.True(t, f.MatchesQuery("patil"))
	assert.True(t, f.MatchesQuery("  WADGAON "))
	assert.False(t, f.MatchesQuery("pune"))
}

func TestVisitMatchesSearch(t *testing.T) {
	v := Visit{
		Consultant: &PersonRef{Name: "Meera"},
		Farmer:     &PersonRef{Name: "Suresh", Village: "Wadgaon"},
	}
	assert.True(t, v.MatchesSearch("meera"))
	assert.True(t, v.MatchesSearch("SURESH"))
	assert.True(t, v.MatchesSearch("wad"))
	assert.False(t, v.MatchesSearch("pune"))

	bare := Visit{}
	assert.True(t, bare.MatchesSearch(""))
	assert.False(t, bare.MatchesSearch("unknown"))
	assert.Equal(t, "Unknown", bare.FarmerName())
	assert.Equal(t, "Unknown", bare.FarmerVillage())
	assert.Equal(t, "Unknown", bare.ConsultantName())
}

func TestVisitStatusValid(t *testing.T) {
	for _, s := range []VisitStatus{VisitPending, VisitVerified, VisitRejected} {
		assert.True(t, s.Valid(), s)
	}
	assert.False(t, VisitStatus("approved").Valid())
}

func TestVisitsPerConsultant(t *testing.T) {
	assert.Equal(t, 2.5, AdminMetrics{Totals: MetricTotals{Staff: 2, Visits: 5}}.VisitsPerConsultant())
	assert.Equal(t, 5.0, AdminMetrics{Totals: MetricTotals{Visits: 5}}.VisitsPerConsultant())
}

func TestRecommendationHasAdvice(t *testing.T) {
	assert.False(t, Recommendation{Notes: "water more"}.HasAdvice())
	assert.True(t, Recommendation{Pesticide: "neem oil"}.HasAdvice())
}

func TestNotificationLink(t *testing.T) {
	tests := map[string]string{
		"farmer": "/farmers",
		"visit":  "/visits",
		"report": "/admin/reports",
		"info":   "/admin",
		"":       "/admin",
	}
	for kind, want := range tests {
		assert.Equal(t, want, NotificationLink(kind), kind)
	}
}

func TestUnread(t *testing.T) {
	assert.Zero(t, Unread(nil))
	assert.Equal(t, 2, Unread([]Notification{{ID: "1"}, {ID: "2", IsRead: true}, {ID: "3"}}))
}
