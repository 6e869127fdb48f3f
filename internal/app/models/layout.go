package models

import "github.com/a-h/templ"

type NavItem struct {
	Name string
	URL  string
	Icon string
}

type Navigation struct {
	Items []NavItem
}

type LayoutTempl struct {
	Title               string
	User                *User
	Nav                 Navigation
	ActiveNav           string
	Content             templ.Component
	Notifications       []Notification
	UnreadNotifications int
}

var OfflineNav = Navigation{
	Items: []NavItem{
		{Name: "Home", URL: "/"},
		{Name: "About", URL: "/about"},
		{Name: "Sign In", URL: "/login"},
	},
}

// NavFor builds the sidebar for a signed-in user. Staff get the daily summary,
// admins get the admin portal and daily reports.
func NavFor(user *User) Navigation {
	if user == nil {
		return OfflineNav
	}

	items := []NavItem{
		{Name: "Dashboard", URL: "/dashboard", Icon: "home"},
		{Name: "Farmers", URL: "/farmers", Icon: "users"},
		{Name: "Visits", URL: "/visits", Icon: "calendar"},
	}

	switch user.Role {
	case RoleStaff:
		items = append(items, NavItem{Name: "Daily Summary", URL: "/daily-summary", Icon: "clipboard-check"})
	case RoleAdmin:
		items = append(items,
			NavItem{Name: "Admin Portal", URL: "/admin", Icon: "bar-chart"},
			NavItem{Name: "Daily Reports", URL: "/admin/reports", Icon: "clipboard-list"},
		)
	}

	items = append(items, NavItem{Name: "Settings", URL: "/settings", Icon: "settings"})
	return Navigation{Items: items}
}
