package document

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Content type discriminators used across collections.
const (
	TypeMovie   = "movie"
	TypeShow    = "show"
	TypeEpisode = "episode"
)

// VideoLink is one playable source attached to a movie or episode.
type VideoLink struct {
	Label string `bson:"label,omitempty" json:"label,omitempty"`
	URL   string `bson:"url" json:"url"`
}

// Movie is a catalog movie document.
type Movie struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Image       string             `bson:"image,omitempty" json:"image,omitempty"`
	CoverImage  string             `bson:"coverImage,omitempty" json:"coverImage,omitempty"`
	ReleaseYear int                `bson:"releaseYear,omitempty" json:"releaseYear,omitempty"`
	Tags        []string           `bson:"tags,omitempty" json:"tags,omitempty"`
	Featured    bool               `bson:"featured,omitempty" json:"featured,omitempty"`
	Rating      float64            `bson:"rating,omitempty" json:"rating,omitempty"`
	Duration    string             `bson:"duration,omitempty" json:"duration,omitempty"`
	Links       []VideoLink        `bson:"links,omitempty" json:"links,omitempty"`
	ViewCount   int64              `bson:"viewCount,omitempty" json:"viewCount,omitempty"`
	CreatedAt   time.Time          `bson:"createdAt,omitempty" json:"createdAt,omitempty"`
	UpdatedAt   time.Time          `bson:"updatedAt,omitempty" json:"updatedAt,omitempty"`
}

// Show is a catalog show document. Seasons live in their own collection.
type Show struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Image       string             `bson:"image,omitempty" json:"image,omitempty"`
	CoverImage  string             `bson:"coverImage,omitempty" json:"coverImage,omitempty"`
	StartYear   int                `bson:"startYear,omitempty" json:"startYear,omitempty"`
	EndYear     int                `bson:"endYear,omitempty" json:"endYear,omitempty"`
	Tags        []string           `bson:"tags,omitempty" json:"tags,omitempty"`
	Featured    bool               `bson:"featured,omitempty" json:"featured,omitempty"`
	Rating      float64            `bson:"rating,omitempty" json:"rating,omitempty"`
	ViewCount   int64              `bson:"viewCount,omitempty" json:"viewCount,omitempty"`
	CreatedAt   time.Time          `bson:"createdAt,omitempty" json:"createdAt,omitempty"`
	UpdatedAt   time.Time          `bson:"updatedAt,omitempty" json:"updatedAt,omitempty"`
}

// Season groups a show's episodes.
type Season struct {
	ID           primitive.ObjectID   `bson:"_id,omitempty" json:"_id"`
	ShowID       primitive.ObjectID   `bson:"showId" json:"showId"`
	SeasonNumber int                  `bson:"seasonNumber" json:"seasonNumber"`
	Episodes     []primitive.ObjectID `bson:"episodes,omitempty" json:"episodes,omitempty"`
	CreatedAt    time.Time            `bson:"createdAt,omitempty" json:"createdAt,omitempty"`
}

// Episode is one episode of a season.
type Episode struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	SeasonID      primitive.ObjectID `bson:"seasonId" json:"seasonId"`
	EpisodeNumber int                `bson:"episodeNumber" json:"episodeNumber"`
	Title         string             `bson:"title" json:"title"`
	Description   string             `bson:"description,omitempty" json:"description,omitempty"`
	Image         string             `bson:"image,omitempty" json:"image,omitempty"`
	Duration      string             `bson:"duration,omitempty" json:"duration,omitempty"`
	Links         []VideoLink        `bson:"links,omitempty" json:"links,omitempty"`
	CreatedAt     time.Time          `bson:"createdAt,omitempty" json:"createdAt,omitempty"`
}

// Comment is a user comment on a movie or show. Replies holds the direct
// children; nesting is capped at 5 levels by business rule.
type Comment struct {
	ID           primitive.ObjectID   `bson:"_id,omitempty" json:"_id"`
	Content      string               `bson:"content" json:"content"`
	UserID       primitive.ObjectID   `bson:"user_id" json:"user_id"`
	Username     string               `bson:"username" json:"username"`
	Avatar       *string              `bson:"avatar,omitempty" json:"avatar"`
	ContentID    primitive.ObjectID   `bson:"content_id" json:"content_id"`
	ContentType  string               `bson:"content_type" json:"content_type"`
	ParentID     *primitive.ObjectID  `bson:"parent_id,omitempty" json:"parent_id,omitempty"`
	Replies      []primitive.ObjectID `bson:"replies" json:"replies"`
	NestingLevel int                  `bson:"nesting_level" json:"nesting_level"`
	CreatedAt    time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time            `bson:"updatedAt" json:"updatedAt"`
}

// WatchRecord tracks a user's progress on a movie or episode.
type WatchRecord struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	UserID      string             `bson:"userId" json:"userId"`
	ContentType string             `bson:"contentType" json:"contentType"`
	ContentID   primitive.ObjectID `bson:"contentId" json:"contentId"`
	Progress    float64            `bson:"progress" json:"progress"`
	Completed   bool               `bson:"completed" json:"completed"`
	WatchedAt   time.Time          `bson:"watchedAt" json:"watchedAt"`
}

// WatchlistItem is one saved movie or show on a user's watchlist.
type WatchlistItem struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	UserID      string             `bson:"userId" json:"userId"`
	ContentType string             `bson:"contentType" json:"contentType"`
	ContentID   primitive.ObjectID `bson:"contentId" json:"contentId"`
	AddedAt     time.Time          `bson:"addedAt" json:"addedAt"`
}

// User is an account document. The password hash never leaves this layer.
type User struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Username       string             `bson:"username" json:"username"`
	Email          string             `bson:"email" json:"email"`
	Avatar         *string            `bson:"avatar,omitempty" json:"avatar"`
	Role           string             `bson:"role,omitempty" json:"role,omitempty"`
	HashedPassword string             `bson:"hashed_password,omitempty" json:"-"`
	CreatedAt      time.Time          `bson:"createdAt,omitempty" json:"createdAt,omitempty"`
}

// Report is a user-filed problem report against a content item.
type Report struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	UserID      string             `bson:"userId,omitempty" json:"userId,omitempty"`
	ContentID   primitive.ObjectID `bson:"contentId" json:"contentId"`
	ContentType string             `bson:"contentType" json:"contentType"`
	Reason      string             `bson:"reason" json:"reason"`
	Details     string             `bson:"details,omitempty" json:"details,omitempty"`
	Status      string             `bson:"status" json:"status"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// ContentView is one recorded view event, the raw input for popularity
// rankings.
type ContentView struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	ContentID   primitive.ObjectID `bson:"contentId" json:"contentId"`
	ContentType string             `bson:"contentType" json:"contentType"`
	UserID      string             `bson:"userId,omitempty" json:"userId,omitempty"`
	Timestamp   time.Time          `bson:"timestamp" json:"timestamp"`
}

// ViewCount is one row of the popularity aggregation: a content id and how
// many views it accrued in the window.
type ViewCount struct {
	ContentID primitive.ObjectID `bson:"_id" json:"contentId"`
	Views     int64              `bson:"viewCount" json:"views"`
}
