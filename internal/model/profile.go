package model

import "time"

// Profile is a named, colored persona within a family. Accounts pick one
// after signing in to scope their view of the app.
type Profile struct {
	ID        int64     `json:"id"`
	FamilyID  int64     `json:"family_id"`
	Name      string    `json:"name"`
	Color     string    `json:"color"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AvatarColors is the fixed palette profiles may use. The order matters
// only for pickers; validation is membership.
var AvatarColors = []string{
	"#EF4444", // red
	"#F97316", // orange
	"#EAB308", // yellow
	"#22C55E", // green
	"#14B8A6", // teal
	"#3B82F6", // blue
	"#8B5CF6", // violet
	"#EC4899", // pink
}

// ValidAvatarColor reports whether c is one of the palette entries.
func ValidAvatarColor(c string) bool {
	for _, color := range AvatarColors {
		if c == color {
			return true
		}
	}
	return false
}

// MaxProfileNameLen caps profile display names.
const MaxProfileNameLen = 50
