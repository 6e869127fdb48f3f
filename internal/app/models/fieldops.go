package models

import (
	"strings"
	"time"
)

type VisitStatus string

const (
	VisitPending  VisitStatus = "pending"
	VisitVerified VisitStatus = "verified"
	VisitRejected VisitStatus = "rejected"
)

func (s VisitStatus) Valid() bool {
	switch s {
	case VisitPending, VisitVerified, VisitRejected:
		return true
	default:
		return false
	}
}

type Farmer struct {
	ID          string `json:"_id"`
	Name        string `json:"name"`
	Contact     string `json:"contact"`
	Village     string `json:"village"`
	Taluka      string `json:"taluka"`
	TotalVisits int    `json:"totalVisits"`
}

// MatchesQuery reports whether the farmer's name or village contains q,
// ignoring case. An empty query matches everything.
func (f Farmer) MatchesQuery(q string) bool {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(f.Name), q) ||
		strings.Contains(strings.ToLower(f.Village), q)
}

// PersonRef is the populated reference the API embeds for farmers and consultants
// inside visits and reports.
type PersonRef struct {
	ID      string `json:"_id"`
	Name    string `json:"name"`
	Village string `json:"village,omitempty"`
}

type Visit struct {
	ID              string         `json:"_id"`
	Farmer          *PersonRef     `json:"farmer,omitempty"`
	Consultant      *PersonRef     `json:"consultant,omitempty"`
	VisitDate       *time.Time     `json:"visitDate,omitempty"`
	CropType        string         `json:"cropType"`
	CropStage       string         `json:"cropStage"`
	Recommendation  Recommendation `json:"recommendation"`
	Remarks         string         `json:"remarks"`
	LocationAddress string         `json:"locationAddress"`
	Status          VisitStatus    `json:"status"`
	Images          []string       `json:"images,omitempty"`
	CreatedAt       *time.Time     `json:"createdAt,omitempty"`
}

// MatchesSearch reports whether q occurs in the consultant, farmer or village
// name, ignoring case. Missing references never match a non-empty query.
func (v Visit) MatchesSearch(q string) bool {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return true
	}
	var names []string
	if v.Consultant != nil {
		names = append(names, v.Consultant.Name)
	}
	if v.Farmer != nil {
		names = append(names, v.Farmer.Name, v.Farmer.Village)
	}
	for _, n := range names {
		if strings.Contains(strings.ToLower(n), q) {
			return true
		}
	}
	return false
}

type Recommendation struct {
	Fertilizer string `json:"fertilizer,omitempty"`
	Pesticide  string `json:"pesticide,omitempty"`
	Notes      string `json:"notes,omitempty"`
}

// HasAdvice reports whether the visit prescribed a fertilizer or pesticide.
func (r Recommendation) HasAdvice() bool {
	return r.Fertilizer != "" || r.Pesticide != ""
}

func (v Visit) FarmerName() string {
	if v.Farmer == nil || v.Farmer.Name == "" {
		return "Unknown"
	}
	return v.Farmer.Name
}

func (v Visit) FarmerVillage() string {
	if v.Farmer == nil || v.Farmer.Village == "" {
		return "Unknown"
	}
	return v.Farmer.Village
}

func (v Visit) ConsultantName() string {
	if v.Consultant == nil || v.Consultant.Name == "" {
		return "Unknown"
	}
	return v.Consultant.Name
}

type DailyReport struct {
	ID         string     `json:"_id,omitempty"`
	Consultant *PersonRef `json:"consultant,omitempty"`
	Date       *time.Time `json:"date,omitempty"`
	TotalKm    float64    `json:"totalKm"`
	Summary    string     `json:"summary"`
	VisitCount int        `json:"visitCount"`
	Status     string     `json:"status,omitempty"`
}

type DailyStats struct {
	VisitCount  int          `json:"visitCount"`
	IsSubmitted bool         `json:"isSubmitted"`
	Report      *DailyReport `json:"report"`
}

// DailyReportInput is the body of POST /reports.
type DailyReportInput struct {
	TotalKm    float64 `json:"totalKm"`
	Summary    string  `json:"summary"`
	VisitCount int     `json:"visitCount"`
}

type MetricTotals struct {
	Staff   int `json:"staff"`
	Farmers int `json:"farmers"`
	Visits  int `json:"visits"`
	Pending int `json:"pending"`
}

type ConsultantStat struct {
	ID            string     `json:"_id"`
	Name          string     `json:"name"`
	Email         string     `json:"email"`
	VisitCount    int        `json:"visitCount"`
	UniqueFarmers int        `json:"uniqueFarmers"`
	AverageRecs   float64    `json:"averageRecs"`
	LastVisitDate *time.Time `json:"lastVisitDate,omitempty"`
}

type ConsultantActivity struct {
	Name       string `json:"name"`
	VisitCount int    `json:"visitCount"`
}

type RegionCoverage struct {
	Region string `json:"region"`
	Count  int    `json:"count"`
}

// Bucket is a grouped count; the API names the group key _id.
type Bucket struct {
	Key   string `json:"_id"`
	Count int    `json:"count"`
}

type RecommendationTrends struct {
	Fertilizers []Bucket `json:"fertilizers"`
	Pesticides  []Bucket `json:"pesticides"`
}

type AdminMetrics struct {
	Totals               MetricTotals         `json:"totals"`
	ConsultantStats      []ConsultantStat     `json:"consultantStats"`
	ConsultantActivity   []ConsultantActivity `json:"consultantActivity"`
	RegionalCoverage     []RegionCoverage     `json:"regionalCoverage"`
	VisitTrends          []Bucket             `json:"visitTrends"`
	RecommendationTrends RecommendationTrends `json:"recommendationTrends"`
}

// VisitsPerConsultant averages visits over staff, treating zero staff as one.
func (m AdminMetrics) VisitsPerConsultant() float64 {
	staff := m.Totals.Staff
	if staff == 0 {
		staff = 1
	}
	return float64(m.Totals.Visits) / float64(staff)
}

type Notification struct {
	ID        string     `json:"_id"`
	Title     string     `json:"title"`
	Message   string     `json:"message"`
	Type      string     `json:"type"`
	IsRead    bool       `json:"isRead"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
}

// NotificationLink is the page a notification of kind opens. Kinds without a
// page of their own land on the admin portal.
func NotificationLink(kind string) string {
	switch kind {
	case "farmer":
		return "/farmers"
	case "visit":
		return "/visits"
	case "report":
		return "/admin/reports"
	default:
		return "/admin"
	}
}

// Unread counts the notifications not yet marked as read.
func Unread(list []Notification) int {
	n := 0
	for _, item := range list {
		if !item.IsRead {
			n++
		}
	}
	return n
}
