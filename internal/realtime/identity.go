package realtime

import (
	"math/rand/v2"

	"github.com/google/uuid"
)

var CursorColors = []string{
	"#2563EB", "#DC2626", "#16A34A", "#CA8A04",
	"#9333EA", "#EC4899", "#F97316", "#0891B2",
}

var guestNames = []string{"Otter", "Heron", "Lynx", "Badger", "Falcon", "Marten", "Puffin", "Ibex"}

const (
	anonymousName  = "Anonymous"
	anonymousColor = "#94A3B8"
)

// Identity is how this session appears to collaborators.
type Identity struct {
	ID    string
	Name  string
	Color string
}

// NewIdentity creates a session identity. An empty name or colour is picked at random.
func NewIdentity(name, color string) Identity {
	if name == "" {
		name = guestNames[rand.IntN(len(guestNames))]
	}
	if color == "" {
		color = CursorColors[rand.IntN(len(CursorColors))]
	}
	return Identity{ID: uuid.NewString(), Name: name, Color: color}
}

func (id Identity) meta() Meta {
	return Meta{Key: id.ID, Name: id.Name, Color: id.Color}
}
