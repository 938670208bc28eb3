package roster

import (
	"time"

	"gorm.io/datatypes"
)

// Roster is a named, saved party.
type Roster struct {
	ID        string    `json:"id" gorm:"primaryKey;size:36"`
	Name      string    `json:"name" gorm:"uniqueIndex;not null"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	Members   []Member  `json:"members" gorm:"constraint:OnDelete:CASCADE"`
}

// Member is one unit of a roster, stored as a JSON unit snapshot.
type Member struct {
	ID       uint           `json:"id" gorm:"primarykey;autoIncrement"`
	RosterID string         `json:"rosterId" gorm:"index;size:36;not null"`
	Position int            `json:"position"` // order within the roster
	Name     string         `json:"name"`
	Kind     string         `json:"kind"`
	Snapshot datatypes.JSON `json:"snapshot"`
}

// TableName sets the table name.
func (*Roster) TableName() string { return "rosters" }

// TableName sets the table name.
func (*Member) TableName() string { return "roster_members" }

// models lists every table the store migrates.
var models = []any{&Roster{}, &Member{}}
