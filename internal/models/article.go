package models

import (
	"time"

	"github.com/mx-space/blockpress/internal/blocks"
)

type Article struct {
	ID         int               `json:"id"`
	Attributes ArticleAttributes `json:"attributes"`
}

type ArticleAttributes struct {
	Title       string             `json:"title"`
	Description string             `json:"description"`
	Slug        string             `json:"slug"`
	Cover       *blocks.Image      `json:"cover"`
	Author      Relation[Author]   `json:"author"`
	Category    Relation[Category] `json:"category"`
	Tags        RelationList[Tag]  `json:"tags"`
	Blocks      blocks.List        `json:"blocks"`
	SEO         *SEO               `json:"seo"`
	Featured    bool               `json:"featured"`
	CreatedAt   time.Time          `json:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt"`
	PublishedAt *time.Time         `json:"publishedAt"`
}

// CoverImage returns the cover, or nil when the relation is empty.
func (a Article) CoverImage() *blocks.Image {
	return present(a.Attributes.Cover)
}

func (a Article) AuthorName() string {
	if a.Attributes.Author.Data == nil {
		return ""
	}
	return a.Attributes.Author.Data.Attributes.Name
}

func (a Article) CategoryRef() *Category {
	return a.Attributes.Category.Data
}

func (a Article) TagList() []Tag {
	return a.Attributes.Tags.Data
}

// Published returns publishedAt, falling back to createdAt for drafts.
func (a Article) Published() time.Time {
	if a.Attributes.PublishedAt != nil && !a.Attributes.PublishedAt.IsZero() {
		return *a.Attributes.PublishedAt
	}
	return a.Attributes.CreatedAt
}

// Path is the site path of the article page.
func (a Article) Path() string {
	return "/articles/" + a.Attributes.Slug
}

type Author struct {
	ID         int              `json:"id"`
	Attributes AuthorAttributes `json:"attributes"`
}

type AuthorAttributes struct {
	Name      string        `json:"name"`
	Email     string        `json:"email"`
	Avatar    *blocks.Image `json:"avatar"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

func (a Author) AvatarImage() *blocks.Image {
	return present(a.Attributes.Avatar)
}

type Category struct {
	ID         int                `json:"id"`
	Attributes CategoryAttributes `json:"attributes"`
}

type CategoryAttributes struct {
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Tag struct {
	ID         int           `json:"id"`
	Attributes TagAttributes `json:"attributes"`
}

type TagAttributes struct {
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func present(img *blocks.Image) *blocks.Image {
	if img == nil || img.IsZero() {
		return nil
	}
	return img
}
