package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func navNames(n Navigation) []string {
	names := make([]string, 0, len(n.Items))
	for _, item := range n.Items {
		names = append(names, item.Name)
	}
	return names
}

func TestNavFor(t *testing.T) {
	assert.Equal(t, []string{"Home", "About", "Sign In"}, navNames(NavFor(nil)))
	assert.Equal(t,
		[]string{"Dashboard", "Farmers", "Visits", "Daily Summary", "Settings"},
		navNames(NavFor(&User{Role: RoleStaff})))
	assert.Equal(t,
		[]string{"Dashboard", "Farmers", "Visits", "Admin Portal", "Daily Reports", "Settings"},
		navNames(NavFor(&User{Role: RoleAdmin})))
}
