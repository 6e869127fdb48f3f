package devapi

import (
	"fmt"

	"github.com/FACorreiaa/go-fieldops/internal/app/models"
	"github.com/FACorreiaa/go-fieldops/internal/pkg/config"
)

// Seed fills an empty store with the configured admin and staff accounts, a
// small farmer and visit history for the staff account, and a few unread
// notifications for each.
func Seed(s *Store, cfg config.DevAPIConfig) error {
	if _, err := s.CreateUser("Administrator", cfg.AdminEmail, cfg.AdminPassword, models.RoleAdmin); err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	staff, err := s.CreateUser("Field Consultant", cfg.StaffEmail, cfg.StaffPassword, models.RoleStaff)
	if err != nil {
		return fmt.Errorf("seed staff: %w", err)
	}

	farmers := []models.Farmer{
		{Name: "Ramesh Patil", Contact: "9876500001", Village: "Wadgaon", Taluka: "Haveli"},
		{Name: "Sunita Jadhav", Contact: "9876500002", Village: "Khed", Taluka: "Khed"},
		{Name: "Anil Shinde", Contact: "9876500003", Village: "Loni", Taluka: "Haveli"},
	}
	for i := range farmers {
		farmers[i] = s.AddFarmer(farmers[i])
	}

	today := s.now()
	visits := []struct {
		farmer  int
		daysAgo int
		visit   models.Visit
	}{
		{0, 2, models.Visit{CropType: "Sugarcane", CropStage: "Vegetative", Remarks: "Irrigation schedule reviewed",
			Recommendation: models.Recommendation{Fertilizer: "Urea"}}},
		{1, 1, models.Visit{CropType: "Soybean", CropStage: "Flowering", Remarks: "Leaf spots observed",
			Recommendation: models.Recommendation{Pesticide: "Mancozeb"}}},
		{2, 0, models.Visit{CropType: "Onion", CropStage: "Bulbing", Remarks: "Healthy stand"}},
	}
	for _, v := range visits {
		at := today.AddDate(0, 0, -v.daysAgo)
		v.visit.VisitDate = &at
		if _, err := s.AddVisit(staff, farmers[v.farmer].ID, v.visit); err != nil {
			return fmt.Errorf("seed visit: %w", err)
		}
	}

	s.Notify(staff.ID, "Welcome", "Remember to submit your daily summary before 19:00.", "info")
	s.NotifyAdmins("New farmer registered", farmers[2].Name+" from "+farmers[2].Village+" was added.", "farmer")
	s.NotifyAdmins("New visit logged", staff.Name+" visited "+farmers[2].Name+".", "visit")
	return nil
}
