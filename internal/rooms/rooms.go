// Package rooms is the static catalog of bookable study rooms and their
// occupancy bounds. The host validates occupancy again on submission;
// this catalog exists to reject impossible requests before any host call.
package rooms

// Room describes one bookable study room.
type Room struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	MinPeople int    `json:"minPeople"`
	MaxPeople int    `json:"maxPeople"`
}

var catalog = []Room{
	{ID: "11", Name: "Study Room 01", MinPeople: 6, MaxPeople: 13},
	{ID: "10", Name: "Study Room 02", MinPeople: 3, MaxPeople: 6},
	{ID: "12", Name: "Study Room 03", MinPeople: 3, MaxPeople: 6},
	{ID: "13", Name: "Study Room 04", MinPeople: 3, MaxPeople: 6},
	{ID: "14", Name: "Study Room 05", MinPeople: 3, MaxPeople: 6},
	{ID: "15", Name: "Study Room 06", MinPeople: 3, MaxPeople: 6},
	{ID: "1", Name: "Study Room 07", MinPeople: 3, MaxPeople: 6},
	{ID: "2", Name: "Study Room 08", MinPeople: 3, MaxPeople: 6},
	{ID: "3", Name: "Study Room 09", MinPeople: 3, MaxPeople: 6},
	{ID: "9", Name: "Study Room 10", MinPeople: 3, MaxPeople: 6},
	{ID: "4", Name: "Study Room 11", MinPeople: 3, MaxPeople: 6},
	{ID: "5", Name: "Study Room 12", MinPeople: 3, MaxPeople: 6},
	{ID: "16", Name: "Study Room 13", MinPeople: 3, MaxPeople: 6},
}

// ByID looks up a room by its host identifier.
func ByID(id string) (Room, bool) {
	for _, r := range catalog {
		if r.ID == id {
			return r, true
		}
	}
	return Room{}, false
}

// All returns the full catalog in display order.
func All() []Room {
	out := make([]Room, len(catalog))
	copy(out, catalog)
	return out
}
