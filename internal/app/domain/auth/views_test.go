package auth

import (
	"context"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/a-h/templ"

	"github.com/FACorreiaa/go-fieldops/internal/app/pages"
)

func renderDoc(t *testing.T, c templ.Component) *goquery.Document {
	t.Helper()
	var sb strings.Builder
	if err := c.Render(context.Background(), &sb); err != nil {
		t.Fatalf("failed to render: %v", err)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(sb.String()))
	if err != nil {
		t.Fatalf("failed to read rendered HTML: %v", err)
	}
	return doc
}

func TestSignInPage(t *testing.T) {
	t.Run("it renders the sign-in form", func(t *testing.T) {
		form := renderDoc(t, SignIn(FormState{})).Find("form")
		if form.Length() == 0 {
			t.Fatal("expected a form element to be rendered, but it wasn't")
		}
		if hxPost, _ := form.Attr("hx-post"); hxPost != "/login" {
			t.Errorf(`expected hx-post attribute to be "/login", but got "%s"`, hxPost)
		}
		if form.Find("input[name='email']").Length() == 0 {
			t.Error("expected an email input element to be rendered, but it wasn't")
		}
		if form.Find("input[name='password']").Length() == 0 {
			t.Error("expected a password input element to be rendered, but it wasn't")
		}
		if form.Find("input[name='name']").Length() != 0 {
			t.Error("sign-in form should not ask for a name")
		}
		if form.Find("button[type='submit']").Length() == 0 {
			t.Error("expected a submit button to be rendered, but it wasn't")
		}
	})

	t.Run("it links to registration and admin sign-in", func(t *testing.T) {
		doc := renderDoc(t, SignIn(FormState{}))
		if doc.Find("a[href='/register']").Length() == 0 {
			t.Error("expected a link to the register page, but it wasn't found")
		}
		if doc.Find("a[href='/admin/login']").Length() == 0 {
			t.Error("expected a link to the admin sign-in page, but it wasn't found")
		}
	})

	t.Run("it escapes echoed input", func(t *testing.T) {
		doc := renderDoc(t, SignIn(FormState{
			Email:  `"><script>alert(1)</script>`,
			Banner: &pages.BannerProps{Type: pages.BannerError, Message: "<b>nope</b>"},
		}))
		if doc.Find("script").Length() != 0 {
			t.Error("echoed email must not inject markup")
		}
		if got := doc.Find("[role='alert']").Text(); got != "<b>nope</b>" {
			t.Errorf("expected banner text to be escaped verbatim, got %q", got)
		}
	})
}

func TestSignUpPage(t *testing.T) {
	form := renderDoc(t, SignUp(FormState{Name: "Ravi"})).Find("form")
	if action, _ := form.Attr("action"); action != "/register" {
		t.Errorf(`expected action "/register", got "%s"`, action)
	}
	if v, _ := form.Find("input[name='name']").Attr("value"); v != "Ravi" {
		t.Errorf(`expected name to be kept, got "%s"`, v)
	}
}

func TestAdminSignInPage(t *testing.T) {
	form := renderDoc(t, AdminSignIn(FormState{})).Find("form")
	if hxPost, _ := form.Attr("hx-post"); hxPost != "/admin/login" {
		t.Errorf(`expected hx-post attribute to be "/admin/login", but got "%s"`, hxPost)
	}
	if form.Find("#admin-login-response").Length() != 1 {
		t.Error("expected the banner slot inside the form")
	}
}
