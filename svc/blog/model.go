// Package blog manages posts: authoring and publishing, discovery (listing,
// trending, related, search), engagement counters and per-viewer view
// de-duplication.
package blog

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type Category string

const (
	CategoryTechnology    Category = "Technology"
	CategoryLifestyle     Category = "Lifestyle"
	CategoryBusiness      Category = "Business"
	CategoryHealth        Category = "Health"
	CategoryEducation     Category = "Education"
	CategoryEntertainment Category = "Entertainment"
	CategorySports        Category = "Sports"
	CategoryTravel        Category = "Travel"
	CategoryFood          Category = "Food"
	CategoryFashion       Category = "Fashion"
	CategoryGeneral       Category = "General"
	CategoryOther         Category = "Other"
)

// Categories is the fixed category list in display order.
var Categories = []Category{
	CategoryTechnology, CategoryLifestyle, CategoryBusiness, CategoryHealth,
	CategoryEducation, CategoryEntertainment, CategorySports, CategoryTravel,
	CategoryFood, CategoryFashion, CategoryGeneral, CategoryOther,
}

// ParseCategory matches case-insensitively. Empty input yields General.
func ParseCategory(s string) (Category, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return CategoryGeneral, true
	}
	for _, c := range Categories {
		if strings.EqualFold(string(c), s) {
			return c, true
		}
	}
	return "", false
}

type Status string

const (
	StatusDraft       Status = "draft"
	StatusPublished   Status = "published"
	StatusArchived    Status = "archived"
	StatusUnderReview Status = "under_review"
)

type Image struct {
	URL     string `bson:"url" json:"url"`
	Key     string `bson:"key,omitempty" json:"-"`
	Alt     string `bson:"alt,omitempty" json:"alt,omitempty"`
	Caption string `bson:"caption,omitempty" json:"caption,omitempty"`
}

type Views struct {
	Total  int64 `bson:"total" json:"total"`
	Unique int64 `bson:"unique" json:"unique"`
}

// Edit records the previous title and content of an edited post.
type Edit struct {
	Title    string        `bson:"title" json:"title"`
	Content  string        `bson:"content" json:"content"`
	EditedBy bson.ObjectID `bson:"editedBy" json:"editedBy"`
	EditedAt time.Time     `bson:"editedAt" json:"editedAt"`
}

type Blog struct {
	ID            bson.ObjectID   `bson:"_id" json:"id"`
	Title         string          `bson:"title" json:"title"`
	Slug          string          `bson:"slug" json:"slug"`
	Content       string          `bson:"content" json:"content"`
	Excerpt       string          `bson:"excerpt" json:"excerpt"`
	Author        bson.ObjectID   `bson:"author" json:"author"`
	Category      Category        `bson:"category" json:"category"`
	Tags          []string        `bson:"tags" json:"tags"`
	CoverImage    *Image          `bson:"coverImage,omitempty" json:"coverImage,omitempty"`
	Status        Status          `bson:"status" json:"status"`
	PublishedAt   *time.Time      `bson:"publishedAt,omitempty" json:"publishedAt,omitempty"`
	ReadTime      int             `bson:"readTime" json:"readTime"`
	WordCount     int             `bson:"wordCount" json:"wordCount"`
	Likes         []bson.ObjectID `bson:"likes" json:"-"`
	LikeCount     int             `bson:"likeCount" json:"likeCount"`
	BookmarkCount int             `bson:"bookmarkCount" json:"bookmarkCount"`
	CommentCount  int             `bson:"commentCount" json:"commentCount"`
	Views         Views           `bson:"views" json:"views"`
	Shares        int             `bson:"shares" json:"shares"`
	IsFeatured    bool            `bson:"isFeatured" json:"isFeatured"`
	EditHistory   []Edit          `bson:"editHistory" json:"editHistory,omitempty"`
	CreatedAt     time.Time       `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time       `bson:"updatedAt" json:"updatedAt"`
}

// LikedBy reports whether id liked the post.
func (b *Blog) LikedBy(id bson.ObjectID) bool {
	for _, l := range b.Likes {
		if l == id {
			return true
		}
	}
	return false
}

// Card is the listing projection: everything but the body and history.
type Card struct {
	ID            bson.ObjectID `json:"id"`
	Title         string        `json:"title"`
	Slug          string        `json:"slug"`
	Excerpt       string        `json:"excerpt"`
	Author        bson.ObjectID `json:"author"`
	Category      Category      `json:"category"`
	Tags          []string      `json:"tags"`
	CoverImage    *Image        `json:"coverImage,omitempty"`
	Status        Status        `json:"status"`
	PublishedAt   *time.Time    `json:"publishedAt,omitempty"`
	ReadTime      int           `json:"readTime"`
	LikeCount     int           `json:"likeCount"`
	CommentCount  int           `json:"commentCount"`
	BookmarkCount int           `json:"bookmarkCount"`
	Views         Views         `json:"views"`
	IsFeatured    bool          `json:"isFeatured"`
}

func (b Blog) Card() Card {
	return Card{
		ID:            b.ID,
		Title:         b.Title,
		Slug:          b.Slug,
		Excerpt:       b.Excerpt,
		Author:        b.Author,
		Category:      b.Category,
		Tags:          b.Tags,
		CoverImage:    b.CoverImage,
		Status:        b.Status,
		PublishedAt:   b.PublishedAt,
		ReadTime:      b.ReadTime,
		LikeCount:     b.LikeCount,
		CommentCount:  b.CommentCount,
		BookmarkCount: b.BookmarkCount,
		Views:         b.Views,
		IsFeatured:    b.IsFeatured,
	}
}

// Sort orders listings.
type Sort string

const (
	SortNewest  Sort = "newest"
	SortOldest  Sort = "oldest"
	SortPopular Sort = "popular" // likes, then comments, then views
)

// Filter narrows listings. Zero values match everything.
type Filter struct {
	Status   Status
	Category Category
	Tag      string
	Author   bson.ObjectID
	Query    string // case-insensitive title substring
	IDs      []bson.ObjectID
	Since    time.Time // publishedAt lower bound
	Featured bool
	Sort     Sort
}
