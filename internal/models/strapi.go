// Package models holds the Strapi v4 content API shapes.
package models

// Pagination is the meta.pagination object of collection responses.
type Pagination struct {
	Page      int `json:"page"`
	PageSize  int `json:"pageSize"`
	PageCount int `json:"pageCount"`
	Total     int `json:"total"`
}

type Meta struct {
	Pagination *Pagination `json:"pagination,omitempty"`
}

// Response is the {data, meta} envelope of every content API call.
type Response[T any] struct {
	Data T    `json:"data"`
	Meta Meta `json:"meta"`
}

// Relation wraps a populated to-one relation. Data is nil when the relation is empty.
type Relation[T any] struct {
	Data *T `json:"data"`
}

// RelationList wraps a populated to-many relation.
type RelationList[T any] struct {
	Data []T `json:"data"`
}

type (
	ArticlesResponse   = Response[[]Article]
	ArticleResponse    = Response[Article]
	CategoriesResponse = Response[[]Category]
	TagsResponse       = Response[[]Tag]
	AuthorsResponse    = Response[[]Author]
	GlobalResponse     = Response[Global]
)
