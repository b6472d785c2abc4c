package model

import (
	"time"
)

/*
Entity is a deduplicated named entity extracted from post content.

(EntityType, EntityText) is unique: EntityText is the normalized form
(lower-cased, whitespace trimmed) while DisplayText keeps the surface form
of the first extraction. Rows are created lazily on first extraction and
never updated afterwards.
*/
type Entity struct {
	Id          int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	EntityType  string `gorm:"size:100;not null;uniqueIndex:uq_entity_type_text" json:"entity_type"`
	EntityText  string `gorm:"size:500;not null;uniqueIndex:uq_entity_type_text" json:"entity_text"`
	DisplayText string `gorm:"size:500;not null" json:"display_text"`

	CreatedAt time.Time `json:"created_at"`

	PostEntities []*PostEntity `gorm:"foreignKey:EntityId;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
}

// PostEntity links a post to an extracted entity at one character offset.
// The same entity may be linked to one post several times at different
// offsets, so uniqueness is on (post, entity, start_pos). Re-running
// extraction over unchanged content re-derives the same keys and the
// inserts become no-ops.
type PostEntity struct {
	Id       int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	PostId   int64 `gorm:"not null;uniqueIndex:uq_post_entity_pos" json:"post_id"`
	EntityId int64 `gorm:"not null;uniqueIndex:uq_post_entity_pos" json:"entity_id"`

	StartPos   int32   `gorm:"uniqueIndex:uq_post_entity_pos" json:"start_pos"`
	EndPos     int32   `json:"end_pos"`
	Confidence float64 `json:"confidence"`

	CreatedAt time.Time `json:"created_at"`

	Post   *Post   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	Entity *Entity `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
}
