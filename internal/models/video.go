package models

import "time"

// Video is an entry in the educational video library.
type Video struct {
	ID           uint      `gorm:"primarykey" json:"id" bson:"_id"`
	Title        string    `gorm:"not null" json:"title" bson:"title"`
	Description  string    `json:"description" bson:"description"`
	VideoURL     string    `gorm:"not null" json:"video_url" bson:"video_url"`
	ThumbnailURL string    `json:"thumbnail_url" bson:"thumbnail_url"`
	Category     string    `gorm:"index" json:"category" bson:"category"` // e.g. "Tutorial", "Analysis", "Strategy"
	Duration     string    `json:"duration" bson:"duration"`              // e.g. "15:30"
	IsFeatured   bool      `gorm:"default:false" json:"is_featured" bson:"is_featured"`
	ViewCount    int       `gorm:"default:0" json:"view_count" bson:"view_count"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at"`
}
