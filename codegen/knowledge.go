package codegen

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"github.com/sweetpotato0/chatbot-factory/pkg/logging"
)

// Truncator shortens text to a token budget
type Truncator interface {
	Truncate(text string, maxTokens int) string
}

// KnowledgeFetcher turns http(s) knowledge sources into markdown documents.
type KnowledgeFetcher struct {
	client    *http.Client
	truncator Truncator
	maxTokens int
	maxBytes  int64
	logger    *slog.Logger
}

// FetcherOption configures a KnowledgeFetcher
type FetcherOption func(*KnowledgeFetcher)

// WithHTTPClient sets the HTTP client
func WithHTTPClient(c *http.Client) FetcherOption {
	return func(f *KnowledgeFetcher) {
		if c != nil {
			f.client = c
		}
	}
}

// WithTruncation caps every document at maxTokens using t
func WithTruncation(t Truncator, maxTokens int) FetcherOption {
	return func(f *KnowledgeFetcher) {
		f.truncator = t
		f.maxTokens = maxTokens
	}
}

// WithFetcherLogger sets the logger
func WithFetcherLogger(l *slog.Logger) FetcherOption {
	return func(f *KnowledgeFetcher) {
		if l != nil {
			f.logger = l
		}
	}
}

// NewKnowledgeFetcher creates a fetcher with a 15s timeout and a 2 MiB body limit
func NewKnowledgeFetcher(opts ...FetcherOption) *KnowledgeFetcher {
	f := &KnowledgeFetcher{
		client:   &http.Client{Timeout: 15 * time.Second},
		maxBytes: 2 << 20,
		logger:   logging.WithComponent("knowledge"),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Document is one fetched knowledge source
type Document struct {
	Source  string
	Title   string
	Content string
}

// Markdown renders the document with a source header
func (d Document) Markdown() string {
	title := d.Title
	if title == "" {
		title = d.Source
	}
	return fmt.Sprintf("# %s\n\nSource: %s\n\n%s\n", title, d.Source, d.Content)
}

// IsRemote reports whether source is an http(s) URL
func IsRemote(source string) bool {
	u, err := url.Parse(strings.TrimSpace(source))
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// Fetch downloads source and extracts its readable text
func (f *KnowledgeFetcher) Fetch(ctx context.Context, source string) (*Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "text/html,text/plain;q=0.9")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", source, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("fetch %s: status %d", source, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", source, err)
	}

	doc := &Document{Source: source}
	if strings.HasPrefix(resp.Header.Get("Content-Type"), "text/plain") {
		doc.Content = cleanText(string(body))
	} else {
		doc.Title, doc.Content, err = htmlToMarkdown(string(body))
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", source, err)
		}
	}

	if f.truncator != nil && f.maxTokens > 0 {
		doc.Content = f.truncator.Truncate(doc.Content, f.maxTokens)
	}
	return doc, nil
}

// FetchAll fetches every remote source. Failures are logged and skipped.
func (f *KnowledgeFetcher) FetchAll(ctx context.Context, sources []string) []*Document {
	var docs []*Document
	for _, source := range sources {
		if !IsRemote(source) {
			continue
		}
		if ctx.Err() != nil {
			break
		}
		doc, err := f.Fetch(ctx, source)
		if err != nil {
			f.logger.Warn("knowledge source skipped", "source", source, "error", err)
			continue
		}
		if doc.Content == "" {
			continue
		}
		docs = append(docs, doc)
	}
	return docs
}

// htmlToMarkdown keeps headings, paragraphs, list items and code blocks
func htmlToMarkdown(html string) (string, string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", "", err
	}
	title := strings.TrimSpace(doc.Find("title").First().Text())

	var out []string
	doc.Find("h1,h2,h3,p,li,pre").Each(func(i int, s *goquery.Selection) {
		text := strings.TrimSpace(s.Text())
		if text == "" {
			return
		}
		switch goquery.NodeName(s) {
		case "h1":
			out = append(out, "## "+text)
		case "h2":
			out = append(out, "### "+text)
		case "h3":
			out = append(out, "#### "+text)
		case "li":
			out = append(out, "- "+text)
		case "pre":
			out = append(out, "```\n"+text+"\n```")
		default:
			out = append(out, text)
		}
	})
	return title, cleanText(dedupeParagraphs(out)), nil
}

var (
	reSpaces   = regexp.MustCompile(`[ \t]+`)
	reNewlines = regexp.MustCompile(`\n{3,}`)
)

// cleanText drops control characters and collapses whitespace
func cleanText(text string) string {
	b := strings.Map(func(r rune) rune {
		if r == '\n' {
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, text)
	b = reSpaces.ReplaceAllString(b, " ")
	b = reNewlines.ReplaceAllString(b, "\n\n")
	return strings.TrimSpace(b)
}

func dedupeParagraphs(parts []string) string {
	seen := map[string]struct{}{}
	var out []string
	for _, p := range parts {
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return strings.Join(out, "\n\n")
}
