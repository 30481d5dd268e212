package rack

import (
	"errors"
	"strings"

	rackDatamodel "github.com/frahmantamala/warehouse-management/internal/core/datamodel/rack"
)

var ErrShelfNotFound = errors.New("shelf not found")

type Shelf struct {
	ShelfNumber int    `json:"shelfNumber"`
	Description string `json:"description" validate:"max=256"`
}

type Rack struct {
	ID      string  `json:"id"`
	RowID   string  `json:"rowId" validate:"required,max=16"`
	RackID  string  `json:"rackId" validate:"required,max=16"`
	StoreID string  `json:"storeId" validate:"required,store_id"`
	Shelves []Shelf `json:"shelves" validate:"dive"`
}

// ComposeID derives the rack key from its row and rack labels, e.g. "a"+"3" -> "A-3".
func ComposeID(rowID, rackID string) string {
	return strings.ToUpper(strings.TrimSpace(rowID) + "-" + strings.TrimSpace(rackID))
}

func (r *Rack) Normalize() {
	r.RowID = strings.TrimSpace(r.RowID)
	r.RackID = strings.TrimSpace(r.RackID)
	r.ID = ComposeID(r.RowID, r.RackID)
	r.Renumber()
}

// Renumber rewrites shelf numbers to 1..n keeping the current order.
func (r *Rack) Renumber() {
	for i := range r.Shelves {
		r.Shelves[i].ShelfNumber = i + 1
	}
}

func (r *Rack) AddShelf(description string) Shelf {
	s := Shelf{ShelfNumber: len(r.Shelves) + 1, Description: description}
	r.Shelves = append(r.Shelves, s)
	return s
}

func (r *Rack) RemoveShelf(number int) error {
	for i, s := range r.Shelves {
		if s.ShelfNumber == number {
			r.Shelves = append(r.Shelves[:i:i], r.Shelves[i+1:]...)
			r.Renumber()
			return nil
		}
	}
	return ErrShelfNotFound
}

// FirstShelf is the lowest shelf number, or false for a rack without shelves.
func (r *Rack) FirstShelf() (int, bool) {
	if len(r.Shelves) == 0 {
		return 0, false
	}
	return r.Shelves[0].ShelfNumber, true
}

func (r Rack) Clone() Rack {
	r.Shelves = append([]Shelf(nil), r.Shelves...)
	return r
}

func ToDataModel(r *Rack) *rackDatamodel.ShelfRack {
	shelves := make([]rackDatamodel.Shelf, len(r.Shelves))
	for i, s := range r.Shelves {
		shelves[i] = rackDatamodel.Shelf{ShelfNumber: s.ShelfNumber, Description: s.Description}
	}
	return &rackDatamodel.ShelfRack{
		ID:      r.ID,
		StoreID: r.StoreID,
		RowID:   r.RowID,
		RackID:  r.RackID,
		Shelves: shelves,
	}
}

func FromDataModel(r *rackDatamodel.ShelfRack) *Rack {
	shelves := make([]Shelf, len(r.Shelves))
	for i, s := range r.Shelves {
		shelves[i] = Shelf{ShelfNumber: s.ShelfNumber, Description: s.Description}
	}
	return &Rack{
		ID:      r.ID,
		RowID:   r.RowID,
		RackID:  r.RackID,
		StoreID: r.StoreID,
		Shelves: shelves,
	}
}
