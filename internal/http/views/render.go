// Package views renders the board's HTML pages. Rendering is deliberately a
// narrow seam: handlers hand over plain view data and receive a complete
// document, so the template details never leak into transport code.
package views

import (
	"html/template"
	"strings"

	"github.com/tbourn/go-board-backend/internal/domain"
)

// PostsPage is the view data for the board listing.
type PostsPage struct {
	User         string
	OneTimeToken string
	Posts        []domain.Post
}

// Renderer produces the HTML documents served by the board.
type Renderer interface {
	PostsPage(data PostsPage) (string, error)
	LogoutPage() (string, error)
}

const postsTemplate = `<!DOCTYPE html>
<html lang="ja">
<head><meta charset="utf-8"><title>秘密の掲示板</title></head>
<body>
<h1>秘密の掲示板</h1>
<p>{{.User}} さんようこそ <a href="/logout">ログアウト</a></p>
<form method="post" action="/posts">
  <textarea name="content" rows="4" cols="40"></textarea>
  <input type="hidden" name="oneTimeToken" value="{{.OneTimeToken}}">
  <button type="submit">投稿</button>
</form>
{{range .Posts}}
<hr>
<p>{{.Content}}</p>
<p>投稿日時: {{.FormattedCreatedAt}}</p>
<p>投稿者: {{.PostedBy}}</p>
{{if or (eq $.User .PostedBy) (eq $.User "admin")}}
<form method="post" action="/posts/delete">
  <input type="hidden" name="id" value="{{.ID}}">
  <input type="hidden" name="oneTimeToken" value="{{$.OneTimeToken}}">
  <button type="submit">削除</button>
</form>
{{end}}
{{end}}
</body>
</html>
`

const logoutTemplate = `<!DOCTYPE html>
<html lang="ja">
<body>
<h1>ログアウトしました</h1>
<a href="/posts">ログイン</a>
</body>
</html>
`

// HTMLRenderer is the default Renderer backed by html/template.
type HTMLRenderer struct {
	posts  *template.Template
	logout *template.Template
}

// NewHTMLRenderer parses the built-in templates. Template syntax errors are
// programmer errors, so parsing panics via template.Must.
func NewHTMLRenderer() *HTMLRenderer {
	return &HTMLRenderer{
		posts:  template.Must(template.New("posts").Parse(postsTemplate)),
		logout: template.Must(template.New("logout").Parse(logoutTemplate)),
	}
}

// PostsPage renders the board listing with the submission form and, for
// posts the viewer may delete, a delete form carrying the one-time token.
func (r *HTMLRenderer) PostsPage(data PostsPage) (string, error) {
	var b strings.Builder
	if err := r.posts.Execute(&b, data); err != nil {
		return "", err
	}
	return b.String(), nil
}

// LogoutPage renders the logged-out view.
func (r *HTMLRenderer) LogoutPage() (string, error) {
	var b strings.Builder
	if err := r.logout.Execute(&b, nil); err != nil {
		return "", err
	}
	return b.String(), nil
}
