package devapi

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/FACorreiaa/go-fieldops/internal/app/models"
)

type account struct {
	user         models.User
	passwordHash string
}

// Store is the in-memory data set behind the development API.
type Store struct {
	mu            sync.RWMutex
	now           func() time.Time
	accounts      map[string]*account // by lower-cased email
	farmers       []models.Farmer
	visits        []models.Visit
	reports       []models.DailyReport
	notifications map[string][]models.Notification // by user id
}

func NewStore() *Store {
	return &Store{
		now:           time.Now,
		accounts:      make(map[string]*account),
		notifications: make(map[string][]models.Notification),
	}
}

func newID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:24]
}

func dayOf(t time.Time) string {
	return t.Format("2006-01-02")
}

// CreateUser registers a new account. Emails are unique ignoring case.
func (s *Store) CreateUser(name, email, password string, role models.Role) (models.User, error) {
	name, email = strings.TrimSpace(name), strings.TrimSpace(email)
	if name == "" || email == "" || password == "" {
		return models.User{}, fmt.Errorf("create user: %w", models.ErrValidation)
	}
	hash, err := HashPassword(password)
	if err != nil {
		return models.User{}, fmt.Errorf("hash password: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	key := strings.ToLower(email)
	if _, exists := s.accounts[key]; exists {
		return models.User{}, fmt.Errorf("create user %s: %w", email, models.ErrConflict)
	}
	u := models.User{ID: newID(), Name: name, Email: email, Role: role}
	s.accounts[key] = &account{user: u, passwordHash: hash}
	return u, nil
}

func (s *Store) Authenticate(email, password string) (models.User, error) {
	s.mu.RLock()
	acc, ok := s.accounts[strings.ToLower(strings.TrimSpace(email))]
	s.mu.RUnlock()
	if !ok || !CheckPassword(acc.passwordHash, password) {
		return models.User{}, models.ErrUnauthenticated
	}
	return acc.user, nil
}

func (s *Store) UserByID(id string) (models.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, acc := range s.accounts {
		if acc.user.ID == id {
			return acc.user, true
		}
	}
	return models.User{}, false
}

func (s *Store) AddFarmer(f models.Farmer) models.Farmer {
	s.mu.Lock()
	defer s.mu.Unlock()
	if f.ID == "" {
		f.ID = newID()
	}
	s.farmers = append(s.farmers, f)
	return f
}

// AddVisit records a pending visit by consultant to the farmer with farmerID.
func (s *Store) AddVisit(consultant models.User, farmerID string, v models.Visit) (models.Visit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var farmer *models.Farmer
	for i := range s.farmers {
		if s.farmers[i].ID == farmerID {
			farmer = &s.farmers[i]
		}
	}
	if farmer == nil {
		return models.Visit{}, fmt.Errorf("farmer %s: %w", farmerID, models.ErrNotFound)
	}
	now := s.now()
	if v.ID == "" {
		v.ID = newID()
	}
	if v.VisitDate == nil {
		v.VisitDate = &now
	}
	if v.Status == "" {
		v.Status = models.VisitPending
	}
	v.CreatedAt = &now
	v.Farmer = &models.PersonRef{ID: farmer.ID, Name: farmer.Name, Village: farmer.Village}
	v.Consultant = &models.PersonRef{ID: consultant.ID, Name: consultant.Name}
	farmer.TotalVisits++
	s.visits = append(s.visits, v)
	return v, nil
}

func (s *Store) Farmer(id string) (models.Farmer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, f := range s.farmers {
		if f.ID == id {
			return f, nil
		}
	}
	return models.Farmer{}, fmt.Errorf("farmer %s: %w", id, models.ErrNotFound)
}

func (s *Store) Farmers() []models.Farmer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Farmer(nil), s.farmers...)
}

// Visits lists visits in creation order. A non-empty consultantID keeps only
// that consultant's visits.
func (s *Store) Visits(consultantID string) []models.Visit {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Visit, 0, len(s.visits))
	for _, v := range s.visits {
		if consultantID == "" || (v.Consultant != nil && v.Consultant.ID == consultantID) {
			out = append(out, v)
		}
	}
	return out
}

func (s *Store) SetVisitStatus(id string, status models.VisitStatus) (models.Visit, error) {
	if status != models.VisitVerified && status != models.VisitRejected {
		return models.Visit{}, fmt.Errorf("status %q: %w", status, models.ErrValidation)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.visits {
		if s.visits[i].ID == id {
			s.visits[i].Status = status
			return s.visits[i], nil
		}
	}
	return models.Visit{}, fmt.Errorf("visit %s: %w", id, models.ErrNotFound)
}

func (s *Store) DailyStats(user models.User) models.DailyStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	today := dayOf(s.now())
	stats := models.DailyStats{}
	for _, v := range s.visits {
		if v.Consultant != nil && v.Consultant.ID == user.ID && v.VisitDate != nil && dayOf(*v.VisitDate) == today {
			stats.VisitCount++
		}
	}
	if r := s.reportFor(user.ID, today); r != nil {
		report := *r
		stats.IsSubmitted = true
		stats.Report = &report
	}
	return stats
}

func (s *Store) reportFor(userID, day string) *models.DailyReport {
	for i := range s.reports {
		r := &s.reports[i]
		if r.Consultant != nil && r.Consultant.ID == userID && r.Date != nil && dayOf(*r.Date) == day {
			return r
		}
	}
	return nil
}

// SubmitReport files today's report for user, replacing an earlier one from
// the same day.
func (s *Store) SubmitReport(user models.User, in models.DailyReportInput) (models.DailyReport, error) {
	if in.TotalKm < 0 {
		return models.DailyReport{}, fmt.Errorf("total km %v: %w", in.TotalKm, models.ErrValidation)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	if r := s.reportFor(user.ID, dayOf(now)); r != nil {
		r.TotalKm, r.Summary, r.VisitCount = in.TotalKm, in.Summary, in.VisitCount
		return *r, nil
	}
	r := models.DailyReport{
		ID:         newID(),
		Consultant: &models.PersonRef{ID: user.ID, Name: user.Name},
		Date:       &now,
		TotalKm:    in.TotalKm,
		Summary:    in.Summary,
		VisitCount: in.VisitCount,
		Status:     "submitted",
	}
	s.reports = append(s.reports, r)
	return r, nil
}

// Reports lists every daily report, newest first.
func (s *Store) Reports() []models.DailyReport {
	s.mu.RLock()
	out := append([]models.DailyReport(nil), s.reports...)
	s.mu.RUnlock()
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.After(*out[j].Date) })
	return out
}

func (s *Store) Notify(userID, title, message, kind string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	s.notifications[userID] = append(s.notifications[userID], models.Notification{
		ID: newID(), Title: title, Message: message, Type: kind, CreatedAt: &now,
	})
}

// NotifyAdmins sends the same notification to every admin account.
func (s *Store) NotifyAdmins(title, message, kind string) {
	s.mu.RLock()
	var admins []string
	for _, acc := range s.accounts {
		if acc.user.IsAdmin() {
			admins = append(admins, acc.user.ID)
		}
	}
	s.mu.RUnlock()
	for _, id := range admins {
		s.Notify(id, title, message, kind)
	}
}

// Notifications lists userID's notifications, newest first.
func (s *Store) Notifications(userID string) []models.Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()
	list := s.notifications[userID]
	out := make([]models.Notification, 0, len(list))
	for i := len(list) - 1; i >= 0; i-- {
		out = append(out, list[i])
	}
	return out
}

func (s *Store) MarkNotificationRead(userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.notifications[userID]
	for i := range list {
		if list[i].ID == id {
			list[i].IsRead = true
			return nil
		}
	}
	return fmt.Errorf("notification %s: %w", id, models.ErrNotFound)
}

// MarkAllNotificationsRead returns how many notifications changed.
func (s *Store) MarkAllNotificationsRead(userID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	list := s.notifications[userID]
	for i := range list {
		if !list[i].IsRead {
			list[i].IsRead = true
			n++
		}
	}
	return n
}

// DeleteUser removes a staff account and its notifications. Visits it logged
// stay in place.
func (s *Store) DeleteUser(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, acc := range s.accounts {
		if acc.user.ID != id {
			continue
		}
		if acc.user.IsAdmin() {
			return fmt.Errorf("delete admin %s: %w", id, models.ErrForbidden)
		}
		delete(s.accounts, key)
		delete(s.notifications, id)
		return nil
	}
	return fmt.Errorf("user %s: %w", id, models.ErrNotFound)
}

// Metrics aggregates the admin dashboard figures.
func (s *Store) Metrics() models.AdminMetrics {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m := models.AdminMetrics{
		ConsultantStats:    []models.ConsultantStat{},
		ConsultantActivity: []models.ConsultantActivity{},
		RegionalCoverage:   []models.RegionCoverage{},
		VisitTrends:        []models.Bucket{},
		RecommendationTrends: models.RecommendationTrends{
			Fertilizers: []models.Bucket{},
			Pesticides:  []models.Bucket{},
		},
	}
	m.Totals.Farmers = len(s.farmers)
	m.Totals.Visits = len(s.visits)

	staff := make([]models.User, 0, len(s.accounts))
	for _, acc := range s.accounts {
		if acc.user.Role == models.RoleStaff {
			staff = append(staff, acc.user)
		}
	}
	sort.Slice(staff, func(i, j int) bool { return staff[i].Name < staff[j].Name })
	m.Totals.Staff = len(staff)

	for _, u := range staff {
		stat := models.ConsultantStat{ID: u.ID, Name: u.Name, Email: u.Email}
		farmers := map[string]struct{}{}
		recs := 0
		for _, v := range s.visits {
			if v.Consultant == nil || v.Consultant.ID != u.ID {
				continue
			}
			stat.VisitCount++
			if v.Farmer != nil {
				farmers[v.Farmer.ID] = struct{}{}
			}
			if v.Recommendation.HasAdvice() {
				recs++
			}
			if v.VisitDate != nil && (stat.LastVisitDate == nil || v.VisitDate.After(*stat.LastVisitDate)) {
				d := *v.VisitDate
				stat.LastVisitDate = &d
			}
		}
		stat.UniqueFarmers = len(farmers)
		if stat.VisitCount > 0 {
			stat.AverageRecs = float64(recs) / float64(stat.VisitCount)
		}
		m.ConsultantStats = append(m.ConsultantStats, stat)
		m.ConsultantActivity = append(m.ConsultantActivity, models.ConsultantActivity{Name: u.Name, VisitCount: stat.VisitCount})
	}

	regions := map[string]int{}
	for _, f := range s.farmers {
		regions[f.Taluka]++
	}
	for region, n := range regions {
		m.RegionalCoverage = append(m.RegionalCoverage, models.RegionCoverage{Region: region, Count: n})
	}
	sort.Slice(m.RegionalCoverage, func(i, j int) bool {
		a, b := m.RegionalCoverage[i], m.RegionalCoverage[j]
		return a.Count > b.Count || (a.Count == b.Count && a.Region < b.Region)
	})

	days := map[string]int{}
	fertilizers := map[string]int{}
	pesticides := map[string]int{}
	for _, v := range s.visits {
		if v.Status == models.VisitPending {
			m.Totals.Pending++
		}
		if v.VisitDate != nil {
			days[dayOf(*v.VisitDate)]++
		}
		if v.Recommendation.Fertilizer != "" {
			fertilizers[v.Recommendation.Fertilizer]++
		}
		if v.Recommendation.Pesticide != "" {
			pesticides[v.Recommendation.Pesticide]++
		}
	}
	m.VisitTrends = buckets(days, func(a, b models.Bucket) bool { return a.Key < b.Key })
	byCount := func(a, b models.Bucket) bool { return a.Count > b.Count || (a.Count == b.Count && a.Key < b.Key) }
	m.RecommendationTrends.Fertilizers = top(buckets(fertilizers, byCount), 5)
	m.RecommendationTrends.Pesticides = top(buckets(pesticides, byCount), 5)
	return m
}

func buckets(counts map[string]int, less func(a, b models.Bucket) bool) []models.Bucket {
	out := make([]models.Bucket, 0, len(counts))
	for k, n := range counts {
		out = append(out, models.Bucket{Key: k, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

func top(b []models.Bucket, n int) []models.Bucket {
	if len(b) > n {
		return b[:n]
	}
	return b
}
