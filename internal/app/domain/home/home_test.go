package home

import (
	"net/http"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/FACorreiaa/go-fieldops/internal/app/domain"
	"github.com/FACorreiaa/go-fieldops/internal/app/domain/domaintest"
	"github.com/FACorreiaa/go-fieldops/internal/app/models"
)

func newBrowser(t *testing.T, user models.User) *domaintest.Browser {
	r := domaintest.NewSignedInRouter(user)
	h := NewHomeHandlers(domain.NewBaseHandler(zap.NewNop(), nil))
	r.GET("/", h.ShowHomePage)
	r.GET("/about", h.ShowAboutPage)
	r.GET("/contact", h.ShowContactPage)
	return domaintest.NewBrowser(t, r)
}

func TestPublicPages(t *testing.T) {
	b := newBrowser(t, models.User{ID: "1", Name: "Asha", Role: models.RoleStaff})

	for path, id := range map[string]string{"/": "#landing", "/about": "#about", "/contact": "#contact"} {
		w := b.Get(path)
		if w.Code != http.StatusOK {
			t.Fatalf("GET %s: status %d", path, w.Code)
		}
		doc, err := goquery.NewDocumentFromReader(w.Body)
		if err != nil {
			t.Fatalf("parse %s: %v", path, err)
		}
		if doc.Find(id).Length() != 1 {
			t.Errorf("GET %s: expected %s section", path, id)
		}
	}
}

func TestLandingCallToAction(t *testing.T) {
	tests := []struct {
		name     string
		user     models.User
		signIn   bool
		wantHref string
	}{
		{name: "visitor", wantHref: "/login"},
		{name: "staff", user: models.User{ID: "1", Name: "Asha", Role: models.RoleStaff}, signIn: true, wantHref: "/dashboard"},
		{name: "admin", user: models.User{ID: "2", Name: "Ravi", Role: models.RoleAdmin}, signIn: true, wantHref: "/admin"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newBrowser(t, tt.user)
			if tt.signIn {
				b.SignIn()
			}
			doc, err := goquery.NewDocumentFromReader(b.Get("/").Body)
			if err != nil {
				t.Fatal(err)
			}
			href, _ := doc.Find("#landing a").First().Attr("href")
			if href != tt.wantHref {
				t.Errorf("first call to action = %q, want %q", href, tt.wantHref)
			}
			if tt.signIn && !strings.Contains(doc.Find("#landing").Text(), tt.user.Name) {
				t.Errorf("landing should greet %s", tt.user.Name)
			}
		})
	}
}
