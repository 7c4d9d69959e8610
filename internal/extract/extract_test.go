package extract

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestHTMLText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain text passes through", "hello world", "hello world"},
		{"tags stripped", "<p>first</p><p>second</p>", "first second"},
		{"nested markup", "<div><b>bold</b> and <i>italic</i></div>", "bold and italic"},
		{"script dropped", "<p>kept</p><script>var x = 1;</script><p>also</p>", "kept also"},
		{"style dropped", "<style>p { color: red }</style><p>visible</p>", "visible"},
		{"noscript dropped", "<noscript>enable js</noscript>text", "text"},
		{"whitespace collapsed", "<p>\n  spaced\n</p>\n<p>out</p>", "spaced out"},
		{"empty", "", ""},
		{"japanese", "<h1>見出し</h1><p>本文です。</p>", "見出し 本文です。"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HTMLText(tt.in); got != tt.want {
				t.Errorf("HTMLText() = %q, want %q", got, tt.want)
			}
		})
	}
}

const articlePage = `<!DOCTYPE html>
<html>
<head><title>テスト記事</title></head>
<body>
<article>
<h1>テスト記事</h1>
<p>これは記事の最初の段落です。要約の対象になる十分な長さの本文が必要なので、文章を続けます。</p>
<p>これは二番目の段落です。読みやすさの抽出器は短すぎるページを本文なしと判断することがあるため、ある程度の量のテキストを置いています。</p>
<p>三番目の段落でも同じように、意味のある本文らしきテキストを続けておきます。これで抽出には十分なはずです。</p>
</article>
</body>
</html>`

func TestArticle(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(articlePage))
	}))
	defer srv.Close()

	title, text, err := Article(context.Background(), srv.Client(), srv.URL)
	if err != nil {
		t.Fatalf("Article failed: %v", err)
	}
	if title != "テスト記事" {
		t.Errorf("title = %q, want %q", title, "テスト記事")
	}
	if !strings.Contains(text, "最初の段落") {
		t.Errorf("text missing article body: %q", text)
	}
	if strings.Contains(text, "<p>") {
		t.Errorf("text contains markup: %q", text)
	}
}

func TestArticle_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	if _, _, err := Article(context.Background(), srv.Client(), srv.URL); err == nil {
		t.Error("Article succeeded on 404, want error")
	}
}

func TestArticle_BadURL(t *testing.T) {
	if _, _, err := Article(context.Background(), http.DefaultClient, "://not-a-url"); err == nil {
		t.Error("Article succeeded on malformed URL, want error")
	}
}

func TestPDFText_InvalidData(t *testing.T) {
	if _, err := PDFText([]byte("this is not a pdf")); err == nil {
		t.Error("PDFText succeeded on garbage input, want error")
	}
}

func TestPDFText_Empty(t *testing.T) {
	if _, err := PDFText(nil); err == nil {
		t.Error("PDFText succeeded on empty input, want error")
	}
}
