package pages

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-fieldops/internal/app/models"
)

func render(t *testing.T, c templ.Component) *goquery.Document {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, c.Render(context.Background(), &buf))
	doc, err := goquery.NewDocumentFromReader(&buf)
	require.NoError(t, err)
	return doc
}

func TestBannerEscapesMessage(t *testing.T) {
	doc := render(t, Banner(BannerProps{Type: BannerError, Message: `<script>alert("x")</script>`, ID: "login-error"}))

	banner := doc.Find("#login-error")
	require.Equal(t, 1, banner.Length())
	assert.Equal(t, "error", banner.AttrOr("data-banner", ""))
	assert.Equal(t, "alert", banner.AttrOr("role", ""))
	assert.Equal(t, `<script>alert("x")</script>`, banner.Text())
	assert.Equal(t, 0, doc.Find("script").Length())
	assert.Contains(t, banner.AttrOr("class", ""), "bg-red-50")
}

func TestWaitingIndicator(t *testing.T) {
	doc := render(t, WaitingIndicator())

	assert.Equal(t, 1, doc.Find("#session-pending").Length())
	refresh := doc.Find(`meta[http-equiv="refresh"]`)
	require.Equal(t, 1, refresh.Length())
	assert.Equal(t, "1", refresh.AttrOr("content", ""))
}

func TestLayoutPage(t *testing.T) {
	content := templ.Raw(`<p id="inner">hello</p>`)

	t.Run("signed out", func(t *testing.T) {
		doc := render(t, LayoutPage(models.LayoutTempl{
			Title:   "Home - FieldOps",
			Nav:     models.OfflineNav,
			Content: content,
		}))
		assert.Equal(t, "Home - FieldOps", doc.Find("title").Text())
		assert.Equal(t, 3, doc.Find("nav a[data-nav]").Length())
		assert.Equal(t, "hello", doc.Find("main#content #inner").Text())
		assert.Equal(t, 0, doc.Find(`form[action="/logout"]`).Length())
	})

	t.Run("signed in admin", func(t *testing.T) {
		user := &models.User{ID: "1", Name: "Ravi <b>", Role: models.RoleAdmin}
		doc := render(t, LayoutPage(models.LayoutTempl{
			Title:     "Admin",
			User:      user,
			Nav:       models.NavFor(user),
			ActiveNav: "Admin Portal",
			Content:   content,
			Notifications: []models.Notification{
				{ID: "n 1", Title: "New visit logged", Type: "visit"},
				{ID: "n2", Title: "Welcome", IsRead: true},
				{ID: "n3", Title: "Report <submitted>", Type: "report"},
			},
			UnreadNotifications: 2,
		}))
		assert.Equal(t, "Ravi <b>", doc.Find(".user-name").Text())
		assert.Equal(t, "Admin", doc.Find(".user-role").Text())
		assert.Equal(t, "2", doc.Find(".notification-count").Text())
		assert.Equal(t, 1, doc.Find(`form[action="/logout"]`).Length())
		assert.Contains(t, doc.Find(`a[data-nav="Admin Portal"]`).AttrOr("class", ""), "font-semibold")
		assert.Equal(t, 0, doc.Find(`a[data-nav="Daily Summary"]`).Length())

		items := doc.Find("#notification-bell .notification-item")
		require.Equal(t, 3, items.Length())
		first := items.First()
		assert.Equal(t, "/admin/notifications/n%201/read", first.Find("form").AttrOr("action", ""))
		assert.Equal(t, "visit", first.Find("input[name='type']").AttrOr("value", ""))
		assert.Contains(t, first.AttrOr("class", ""), "bg-emerald-50")
		assert.NotContains(t, items.Eq(1).AttrOr("class", ""), "bg-emerald-50")
		assert.Equal(t, "Report <submitted>", items.Last().Find(".font-medium").Text())
		assert.Equal(t, 1, doc.Find(`form[action="/admin/notifications/read-all"]`).Length())
	})

	t.Run("admin with nothing unread", func(t *testing.T) {
		user := &models.User{ID: "1", Name: "Ravi", Role: models.RoleAdmin}
		doc := render(t, LayoutPage(models.LayoutTempl{User: user, Nav: models.NavFor(user), Content: content}))
		assert.Equal(t, 1, doc.Find("#notification-bell").Length())
		assert.Equal(t, 0, doc.Find(".notification-count").Length())
		assert.Equal(t, 0, doc.Find(`form[action="/admin/notifications/read-all"]`).Length())
		assert.Contains(t, doc.Find("#notification-bell").Text(), "No notifications yet")
	})

	t.Run("staff have no bell", func(t *testing.T) {
		user := &models.User{ID: "2", Name: "Meera", Role: models.RoleStaff}
		doc := render(t, LayoutPage(models.LayoutTempl{
			User:                user,
			Nav:                 models.NavFor(user),
			Content:             content,
			UnreadNotifications: 4,
		}))
		assert.Equal(t, 0, doc.Find("#notification-bell").Length())
		assert.Equal(t, 0, doc.Find(".notification-count").Length())
	})

	t.Run("nil content", func(t *testing.T) {
		doc := render(t, LayoutPage(models.LayoutTempl{Nav: models.OfflineNav}))
		assert.Equal(t, 1, doc.Find("main#content").Length())
	})
}

func TestStatusBadge(t *testing.T) {
	for status, color := range map[models.VisitStatus]string{
		models.VisitPending:  "bg-amber-100",
		models.VisitVerified: "bg-emerald-100",
		models.VisitRejected: "bg-red-100",
	} {
		doc := render(t, StatusBadge(status))
		badge := doc.Find("span[data-status]")
		assert.Equal(t, string(status), badge.AttrOr("data-status", ""))
		assert.Contains(t, badge.AttrOr("class", ""), color)
		assert.Equal(t, Label(string(status)), badge.Text())
	}
}

func TestButtonClassOverrides(t *testing.T) {
	classes := strings.Fields(ButtonClass("bg-red-600"))
	assert.Contains(t, classes, "bg-red-600")
	assert.NotContains(t, classes, "bg-emerald-600")
}

func TestRenderStopsAfterWriteError(t *testing.T) {
	err := ErrorPanel("x").Render(context.Background(), failingWriter{})
	assert.ErrorIs(t, err, assert.AnError)
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, assert.AnError }
