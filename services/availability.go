package services

import (
	"sort"

	"govstay-server/models"
	"govstay-server/utils"

	"golang.org/x/exp/slices"
)

type AvailabilityState string

const (
	StateOK           AvailabilityState = "ok"
	StateInvalidRange AvailabilityState = "invalid_range"
	StateUnknown      AvailabilityState = "unknown"
)

const (
	msgInvalidRange = "select a valid date range"
	msgUnknown      = "availability could not be determined, please retry"
)

// Occupancy is the part of a booking the engine needs. Both private bookings
// and their public mirrors reduce to it.
type Occupancy struct {
	CheckIn   string
	CheckOut  string
	Rooms     []string
	Cancelled bool
}

func OccupancyOf(b models.Booking) Occupancy {
	return Occupancy{CheckIn: b.CheckIn, CheckOut: b.CheckOut, Rooms: b.SelectedRooms, Cancelled: b.Cancelled}
}

func OccupancyOfMirror(p models.PublicBooking) Occupancy {
	return Occupancy{CheckIn: p.CheckIn, CheckOut: p.CheckOut, Rooms: p.SelectedRooms}
}

type Counts struct {
	Total     int `json:"total"`
	Available int `json:"available"`
	Occupied  int `json:"occupied"`
}

// add counts a room; without a valid range it is neither free nor taken.
func (c *Counts) add(available, valid bool) {
	c.Total++
	switch {
	case !valid:
	case available:
		c.Available++
	default:
		c.Occupied++
	}
}

type FloorSummary struct {
	Floor  int               `json:"floor"`
	Counts                   // totals across types
	ByType map[string]Counts `json:"byType"`
}

type RoomStatus struct {
	models.Room
	Available bool `json:"available"`
}

// Availability is the engine's answer for one hotel and one candidate range.
type Availability struct {
	State     AvailabilityState `json:"state"`
	Message   string            `json:"message,omitempty"`
	CheckIn   string            `json:"checkIn"`
	CheckOut  string            `json:"checkOut"`
	Occupied  []string          `json:"occupied"`
	Rooms     []RoomStatus      `json:"rooms"`
	Floors    []FloorSummary    `json:"floors"`
	ByType    map[string]Counts `json:"byType"`
	Available int               `json:"available"`
}

// IsAvailable is false for every room unless the state is ok.
func (a Availability) IsAvailable(roomID string) bool {
	if a.State != StateOK {
		return false
	}
	for _, r := range a.Rooms {
		if r.ID == roomID {
			return r.Available
		}
	}
	return false
}

// OccupiedRooms returns the sorted ids of rooms held by a non-cancelled stay
// overlapping r.
func OccupiedRooms(stays []Occupancy, r utils.DateRange) []string {
	set := map[string]struct{}{}
	for _, s := range stays {
		if s.Cancelled {
			continue
		}
		if !utils.NewDateRange(s.CheckIn, s.CheckOut).Overlaps(r) {
			continue
		}
		for _, id := range s.Rooms {
			set[id] = struct{}{}
		}
	}
	occupied := make([]string, 0, len(set))
	for id := range set {
		occupied = append(occupied, id)
	}
	sort.Strings(occupied)
	return occupied
}

// ComputeAvailability is a pure function of its inputs. An invalid range
// reports zero available rooms and the invalid_range state.
func ComputeAvailability(rooms []models.Room, stays []Occupancy, r utils.DateRange) Availability {
	a := Availability{
		CheckIn:  r.CheckIn.String(),
		CheckOut: r.CheckOut.String(),
		Occupied: []string{},
		ByType:   map[string]Counts{},
	}
	if !r.Valid() {
		a.State = StateInvalidRange
		a.Message = msgInvalidRange
		a.Rooms = roomStatuses(rooms, nil, false)
		a.Floors = summarize(a.Rooms, a.ByType, false)
		return a
	}

	a.State = StateOK
	a.Occupied = OccupiedRooms(stays, r)
	a.Rooms = roomStatuses(rooms, a.Occupied, true)
	a.Floors = summarize(a.Rooms, a.ByType, true)
	for _, rs := range a.Rooms {
		if rs.Available {
			a.Available++
		}
	}
	return a
}

// UnknownAvailability is returned when bookings could not be read. No room is
// reported available.
func UnknownAvailability(rooms []models.Room, r utils.DateRange) Availability {
	a := ComputeAvailability(rooms, nil, utils.DateRange{})
	a.State = StateUnknown
	a.Message = msgUnknown
	a.CheckIn = r.CheckIn.String()
	a.CheckOut = r.CheckOut.String()
	return a
}

func roomStatuses(rooms []models.Room, occupied []string, valid bool) []RoomStatus {
	out := make([]RoomStatus, 0, len(rooms))
	for _, room := range rooms {
		out = append(out, RoomStatus{
			Room:      room,
			Available: valid && !slices.Contains(occupied, room.ID),
		})
	}
	return out
}

func summarize(rooms []RoomStatus, byType map[string]Counts, valid bool) []FloorSummary {
	floors := map[int]*FloorSummary{}
	for _, rs := range rooms {
		f, ok := floors[rs.Floor]
		if !ok {
			f = &FloorSummary{Floor: rs.Floor, ByType: map[string]Counts{}}
			floors[rs.Floor] = f
		}
		f.Counts.add(rs.Available, valid)

		c := f.ByType[rs.Type]
		c.add(rs.Available, valid)
		f.ByType[rs.Type] = c

		t := byType[rs.Type]
		t.add(rs.Available, valid)
		byType[rs.Type] = t
	}

	out := make([]FloorSummary, 0, len(floors))
	for _, f := range floors {
		out = append(out, *f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Floor < out[j].Floor })
	return out
}

// FilterFloor keeps only the rooms, occupied ids and summary of one floor.
func (a Availability) FilterFloor(floor int) Availability {
	rooms := make([]RoomStatus, 0)
	occupied := make([]string, 0)
	for _, rs := range a.Rooms {
		if rs.Floor != floor {
			continue
		}
		rooms = append(rooms, rs)
		if slices.Contains(a.Occupied, rs.ID) {
			occupied = append(occupied, rs.ID)
		}
	}
	sort.Strings(occupied)
	a.Rooms = rooms
	a.Occupied = occupied
	a.ByType = map[string]Counts{}
	a.Floors = summarize(rooms, a.ByType, a.State == StateOK)
	a.Available = 0
	for _, rs := range rooms {
		if rs.Available {
			a.Available++
		}
	}
	return a
}
