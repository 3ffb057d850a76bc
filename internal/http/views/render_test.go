package views

import (
	"strings"
	"testing"

	"github.com/tbourn/go-board-backend/internal/domain"
)

func TestPostsPage_EscapesContent(t *testing.T) {
	r := NewHTMLRenderer()

	out, err := r.PostsPage(PostsPage{
		User:         "alice",
		OneTimeToken: "tok",
		Posts: []domain.Post{
			{ID: 1, Content: "<script>alert(1)</script>", PostedBy: "alice"},
		},
	})
	if err != nil {
		t.Fatalf("PostsPage: %v", err)
	}
	if strings.Contains(out, "<script>alert(1)</script>") {
		t.Errorf("content rendered unescaped")
	}
	if !strings.Contains(out, "&lt;script&gt;") {
		t.Errorf("escaped content missing from output")
	}
}

func TestPostsPage_TokenEmbeddedInForms(t *testing.T) {
	r := NewHTMLRenderer()

	out, err := r.PostsPage(PostsPage{
		User:         "bob",
		OneTimeToken: "tok-xyz",
		Posts:        []domain.Post{{ID: 3, Content: "hi", PostedBy: "bob"}},
	})
	if err != nil {
		t.Fatalf("PostsPage: %v", err)
	}
	// Once in the create form, once in the delete form for bob's own post.
	if got := strings.Count(out, `value="tok-xyz"`); got != 2 {
		t.Errorf("token occurrences = %d, want 2", got)
	}
}

func TestLogoutPage(t *testing.T) {
	r := NewHTMLRenderer()

	out, err := r.LogoutPage()
	if err != nil {
		t.Fatalf("LogoutPage: %v", err)
	}
	if !strings.Contains(out, "ログアウトしました") {
		t.Errorf("logout page missing confirmation text")
	}
	if !strings.Contains(out, `href="/posts"`) {
		t.Errorf("logout page missing login link")
	}
}
