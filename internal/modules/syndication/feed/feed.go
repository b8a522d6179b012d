package feed

import (
	"context"
	"encoding/xml"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mx-space/blockpress/internal/export"
	"github.com/mx-space/blockpress/internal/models"
	"github.com/mx-space/blockpress/internal/pkg/response"
	"github.com/mx-space/blockpress/internal/strapi"
	"github.com/mx-space/blockpress/internal/view"
)

const (
	itemLimit     = 20
	excerptLength = 200
)

// Source lists the newest articles. *strapi.Client implements it.
type Source interface {
	GetArticles(ctx context.Context, q strapi.ArticleQuery) (*models.ArticlesResponse, error)
}

// Channel describes the site the feed belongs to.
type Channel struct {
	Title       string
	Description string
	URL         string
}

type Handler struct {
	src     Source
	content *view.Content
	channel Channel
	now     func() time.Time
}

func NewHandler(src Source, content *view.Content, channel Channel) *Handler {
	channel.URL = strings.TrimRight(channel.URL, "/")
	return &Handler{src: src, content: content, channel: channel, now: time.Now}
}

// RegisterRoutes mounts RSS and Atom feed endpoints.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/feed", func(c *gin.Context) {
		h.render(c, c.DefaultQuery("type", "rss")) // rss | atom
	})
	rg.GET("/feed.xml", func(c *gin.Context) {
		h.render(c, "rss")
	})
	rg.GET("/atom.xml", func(c *gin.Context) {
		h.render(c, "atom")
	})
}

type feedItem struct {
	Title      string
	Link       string
	GUID       string
	PubDate    time.Time
	Updated    time.Time
	Summary    string
	Content    string
	Author     string
	Categories []string
}

func (h *Handler) render(c *gin.Context, feedType string) {
	if feedType != "rss" && feedType != "atom" {
		response.BadRequest(c, "type must be rss or atom")
		return
	}
	res, err := h.src.GetArticles(c.Request.Context(), strapi.ArticleQuery{PageSize: itemLimit})
	if err != nil {
		c.String(response.UpstreamStatus(err), "feed unavailable")
		return
	}

	items := make([]feedItem, 0, len(res.Data))
	for _, a := range res.Data {
		items = append(items, h.item(a))
	}

	var (
		doc         any
		contentType string
	)
	if feedType == "atom" {
		doc, contentType = buildAtom(h.channel, items, h.now()), "application/atom+xml; charset=utf-8"
	} else {
		doc, contentType = buildRSS(h.channel, items, h.now()), "application/rss+xml; charset=utf-8"
	}
	out, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		c.String(http.StatusInternalServerError, "feed error")
		return
	}
	c.Data(http.StatusOK, contentType, append([]byte(xml.Header), out...))
}

func (h *Handler) item(a models.Article) feedItem {
	body := string(h.content.HTML(a.Path(), a.Attributes.Blocks))
	summary := strings.TrimSpace(a.Attributes.Description)
	if summary == "" {
		summary = export.Excerpt(body, excerptLength)
	}
	categories := make([]string, 0, len(a.TagList()))
	for _, t := range a.TagList() {
		categories = append(categories, t.Attributes.Name)
	}
	link := h.channel.URL + a.Path()
	return feedItem{
		Title:      a.Attributes.Title,
		Link:       link,
		GUID:       link,
		PubDate:    a.Published(),
		Updated:    a.Attributes.UpdatedAt,
		Summary:    summary,
		Content:    body,
		Author:     a.AuthorName(),
		Categories: categories,
	}
}

type rssDoc struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title         string    `xml:"title"`
	Link          string    `xml:"link"`
	Description   string    `xml:"description"`
	LastBuildDate string    `xml:"lastBuildDate"`
	Items         []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string   `xml:"title"`
	Link        string   `xml:"link"`
	GUID        string   `xml:"guid"`
	PubDate     string   `xml:"pubDate"`
	Author      string   `xml:"author,omitempty"`
	Categories  []string `xml:"category"`
	Description string   `xml:"description"`
}

func buildRSS(ch Channel, items []feedItem, now time.Time) rssDoc {
	doc := rssDoc{
		Version: "2.0",
		Channel: rssChannel{
			Title:         ch.Title,
			Link:          ch.URL,
			Description:   ch.Description,
			LastBuildDate: now.Format(time.RFC1123Z),
		},
	}
	for _, item := range items {
		doc.Channel.Items = append(doc.Channel.Items, rssItem{
			Title:       item.Title,
			Link:        item.Link,
			GUID:        item.GUID,
			PubDate:     item.PubDate.Format(time.RFC1123Z),
			Author:      item.Author,
			Categories:  item.Categories,
			Description: item.Summary,
		})
	}
	return doc
}

type atomDoc struct {
	XMLName  xml.Name    `xml:"http://www.w3.org/2005/Atom feed"`
	Title    string      `xml:"title"`
	Subtitle string      `xml:"subtitle,omitempty"`
	Link     atomLink    `xml:"link"`
	Updated  string      `xml:"updated"`
	ID       string      `xml:"id"`
	Entries  []atomEntry `xml:"entry"`
}

type atomLink struct {
	Href string `xml:"href,attr"`
}

type atomAuthor struct {
	Name string `xml:"name"`
}

type atomText struct {
	Type string `xml:"type,attr"`
	Body string `xml:",chardata"`
}

type atomEntry struct {
	Title     string      `xml:"title"`
	Link      atomLink    `xml:"link"`
	ID        string      `xml:"id"`
	Published string      `xml:"published"`
	Updated   string      `xml:"updated"`
	Author    *atomAuthor `xml:"author,omitempty"`
	Summary   string      `xml:"summary"`
	Content   atomText    `xml:"content"`
}

func buildAtom(ch Channel, items []feedItem, now time.Time) atomDoc {
	doc := atomDoc{
		Title:    ch.Title,
		Subtitle: ch.Description,
		Link:     atomLink{Href: ch.URL},
		Updated:  now.Format(time.RFC3339),
		ID:       ch.URL + "/",
	}
	for _, item := range items {
		updated := item.Updated
		if updated.IsZero() {
			updated = item.PubDate
		}
		entry := atomEntry{
			Title:     item.Title,
			Link:      atomLink{Href: item.Link},
			ID:        item.GUID,
			Published: item.PubDate.Format(time.RFC3339),
			Updated:   updated.Format(time.RFC3339),
			Summary:   item.Summary,
			Content:   atomText{Type: "html", Body: item.Content},
		}
		if item.Author != "" {
			entry.Author = &atomAuthor{Name: item.Author}
		}
		doc.Entries = append(doc.Entries, entry)
	}
	return doc
}
