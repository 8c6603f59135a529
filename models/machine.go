package models

import "time"

// Machine categories. The set is closed; pricing semantics differ per category.
const (
	CategoryServices = "SERVICES"
	CategorySeeds    = "SEEDS"
	CategoryCane     = "CANE"
)

// ValidCategory reports whether c is one of the known machine categories.
func ValidCategory(c string) bool {
	switch c {
	case CategoryServices, CategorySeeds, CategoryCane:
		return true
	}
	return false
}

// Machine is an equipment listing owned by a provider. The availability
// calendar is embedded; Rating and ReviewsCount are denormalized aggregates
// recomputed on every review mutation.
type Machine struct {
	ID              string       `bson:"id" json:"id"`
	ProviderID      string       `bson:"providerId" json:"providerId"`
	Title           string       `bson:"title" json:"title"`
	Description     string       `bson:"description" json:"description"`
	Category        string       `bson:"category" json:"category"`
	CategoryData    CategoryData `bson:"categoryData" json:"categoryData"`
	Photos          []string     `bson:"photos" json:"photos"`
	Location        GeoLocation  `bson:"location" json:"location"`
	Calendar        Calendar     `bson:"calendar" json:"calendar"`
	CalendarVersion int64        `bson:"calendarVersion" json:"-"`
	Rating          float64      `bson:"rating" json:"rating"`
	ReviewsCount    int          `bson:"reviewsCount" json:"reviewsCount"`
	IsActive        bool         `bson:"isActive" json:"isActive"`
	CreatedAt       time.Time    `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time    `bson:"updatedAt" json:"updatedAt"`
}

// CategoryData carries the category-specific rate fields. BaseRate is always
// set; the capacity fields are only meaningful for their category (hectares
// for seeds, tons/kilometers for cane).
type CategoryData struct {
	Hectares     *float64 `bson:"hectares,omitempty" json:"hectares,omitempty"`
	Tons         *float64 `bson:"tons,omitempty" json:"tons,omitempty"`
	Kilometers   *float64 `bson:"kilometers,omitempty" json:"kilometers,omitempty"`
	BaseRate     Money    `bson:"baseRate" json:"baseRate"`
	OperatorRate *Money   `bson:"operatorRate,omitempty" json:"operatorRate,omitempty"`
	WithOperator bool     `bson:"withOperator" json:"withOperator"`
}

// GeoLocation is a GeoJSON point: coordinates are [longitude, latitude].
type GeoLocation struct {
	Type        string     `bson:"type" json:"type"`
	Coordinates [2]float64 `bson:"coordinates" json:"coordinates"`
}

func NewGeoLocation(lat, lng float64) GeoLocation {
	return GeoLocation{Type: "Point", Coordinates: [2]float64{lng, lat}}
}

func (g GeoLocation) Longitude() float64 { return g.Coordinates[0] }
func (g GeoLocation) Latitude() float64  { return g.Coordinates[1] }
