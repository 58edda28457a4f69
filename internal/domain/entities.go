package domain

import "time"

// ContentLine is a single food-content entry of a package.
type ContentLine struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

// Package is a sellable unit of surplus food with a pickup window.
// Content is nil for surprise packages. Available is true iff the package is
// not claimed by any non-cancelled booking; it is flipped only by
// CreateBooking (to false) and DeleteBooking (to true).
type Package struct {
	ID             int64
	RestaurantID   int64
	RestaurantName string
	Surprise       bool
	Content        []ContentLine
	Price          float64
	Size           string
	StartTime      time.Time
	EndTime        time.Time
	Available      bool
}

// Restaurant is catalog browse data.
type Restaurant struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Address      string `json:"address"`
	PhoneNumber  string `json:"phone_number"`
	CuisineType  string `json:"cuisine_type"`
	FoodCategory string `json:"food_category"`
}

// BookedPackage is a package as seen from inside a booking: catalog fields
// plus the content snapshot chosen by the user at booking time, which may be
// a reduced subset of the package's original content.
type BookedPackage struct {
	PackageID      int64
	RestaurantName string
	Surprise       bool
	Snapshot       []ContentLine
	Price          float64
	Size           string
	StartTime      time.Time
	EndTime        time.Time
}

// Booking is a user's durable claim over one or more packages. Packages keep
// the order they were submitted with at creation.
type Booking struct {
	ID       int64
	UserID   int64
	Packages []BookedPackage
}

// PackageIDs returns the booked package ids in stored order.
func (b Booking) PackageIDs() []int64 {
	ids := make([]int64, len(b.Packages))
	for i, p := range b.Packages {
		ids[i] = p.PackageID
	}
	return ids
}
