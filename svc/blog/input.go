package blog

import (
	"strings"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/dmitrymomot/blogify/handler"
	"github.com/dmitrymomot/blogify/pkg/pagination"
	"github.com/dmitrymomot/blogify/pkg/sanitizer"
)

type ImageInput struct {
	URL     string `json:"url" validate:"required,url"`
	Alt     string `json:"alt" validate:"max=200"`
	Caption string `json:"caption" validate:"max=300"`
}

func (in *ImageInput) sanitize() {
	in.URL = strings.TrimSpace(in.URL)
	in.Alt = sanitizer.SingleLine(in.Alt)
	in.Caption = sanitizer.SingleLine(in.Caption)
}

func (in *ImageInput) image() *Image {
	if in == nil {
		return nil
	}
	return &Image{URL: in.URL, Alt: in.Alt, Caption: in.Caption}
}

// CreateInput is the body of a new blog. Status may only be draft or published.
type CreateInput struct {
	Title      string      `json:"title" validate:"required,min=5,max=200"`
	Content    string      `json:"content" validate:"required,min=50"`
	Excerpt    string      `json:"excerpt" validate:"max=300"`
	Category   string      `json:"category"`
	Tags       []string    `json:"tags" validate:"max=20"`
	CoverImage *ImageInput `json:"coverImage"`
	Status     string      `json:"status" validate:"omitempty,oneof=draft published"`
}

func (in *CreateInput) Sanitize() {
	in.Title = sanitizer.SingleLine(in.Title)
	in.Content = strings.TrimSpace(in.Content)
	in.Excerpt = sanitizer.SingleLine(sanitizer.StripHTML(in.Excerpt))
	in.Tags = sanitizer.Tags(in.Tags, maxTagLength)
	in.Status = strings.ToLower(strings.TrimSpace(in.Status))
	if in.CoverImage != nil {
		in.CoverImage.sanitize()
	}
}

// UpdateInput is a partial update. Nil fields are left untouched.
type UpdateInput struct {
	Title      *string     `json:"title" validate:"omitempty,min=5,max=200"`
	Content    *string     `json:"content" validate:"omitempty,min=50"`
	Excerpt    *string     `json:"excerpt" validate:"omitempty,max=300"`
	Category   *string     `json:"category"`
	Tags       []string    `json:"tags" validate:"omitempty,max=20"`
	CoverImage *ImageInput `json:"coverImage"`
}

func (in *UpdateInput) Sanitize() {
	if in.Title != nil {
		*in.Title = sanitizer.SingleLine(*in.Title)
	}
	if in.Content != nil {
		*in.Content = strings.TrimSpace(*in.Content)
	}
	if in.Excerpt != nil {
		*in.Excerpt = sanitizer.SingleLine(sanitizer.StripHTML(*in.Excerpt))
	}
	if in.Tags != nil {
		in.Tags = sanitizer.Tags(in.Tags, maxTagLength)
	}
	if in.CoverImage != nil {
		in.CoverImage.sanitize()
	}
}

// ListQuery is bound from the query string of public listings.
type ListQuery struct {
	Page     int    `query:"page"`
	Limit    int    `query:"limit"`
	Category string `query:"category"`
	Tag      string `query:"tag"`
	Author   string `query:"author"`
	Q        string `query:"q"`
	Sort     string `query:"sort"`
	Featured bool   `query:"featured"`
}

func (q ListQuery) Params() pagination.Params {
	return pagination.Params{Page: q.Page, Limit: q.Limit}.Normalize()
}

// Filter converts the query into a store filter over published blogs.
func (q ListQuery) Filter() (Filter, error) {
	f := Filter{
		Status:   StatusPublished,
		Tag:      strings.ToLower(strings.TrimSpace(q.Tag)),
		Query:    strings.TrimSpace(q.Q),
		Featured: q.Featured,
	}
	if strings.TrimSpace(q.Category) != "" {
		c, ok := ParseCategory(q.Category)
		if !ok {
			return Filter{}, ErrInvalidCategory
		}
		f.Category = c
	}
	if a := strings.TrimSpace(q.Author); a != "" {
		id, err := bson.ObjectIDFromHex(a)
		if err != nil {
			return Filter{}, handler.ErrBadRequest.WithMessage("Invalid author id")
		}
		f.Author = id
	}
	switch s := Sort(strings.ToLower(strings.TrimSpace(q.Sort))); s {
	case "":
		f.Sort = SortNewest
	case SortNewest, SortOldest, SortPopular:
		f.Sort = s
	default:
		return Filter{}, ErrInvalidSort
	}
	return f, nil
}
