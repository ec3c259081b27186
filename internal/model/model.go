package model

import (
	"time"

	"gorm.io/datatypes"
)

////////////////////////
// DATABASE STRUCTURES //
////////////////////////

// DatabaseModels is a list of all the structs exported here which represent tables in the database schema
var DatabaseModels = []interface{}{
	&SavedPlay{},
}

// SavedPlay is one named board snapshot. Pieces holds the JSON array of
// {id, top, left} with the offsets as saved; Drawing is the PNG data URL.
type SavedPlay struct {
	Name       string         `json:"name" gorm:"primaryKey;size:255"`
	Pieces     datatypes.JSON `json:"pieces"`
	PieceCount int            `json:"pieceCount"`
	Drawing    string         `json:"drawing" gorm:"type:text"`
	CreatedAt  time.Time      `json:"createdAt"`
	UpdatedAt  time.Time      `json:"updatedAt" gorm:"index"`
}

func (*SavedPlay) TableName() string {
	return "saved_plays"
}
