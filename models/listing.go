package models

import (
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Kind distinguishes the three listing collections.
type Kind string

const (
	KindLand      Kind = "land"
	KindHouse     Kind = "house"
	KindApartment Kind = "apartment"
)

var Kinds = []Kind{KindLand, KindHouse, KindApartment}

// ParseKind accepts the kind value or its display name, case-insensitively.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "land", "lands":
		return KindLand, nil
	case "house", "houses":
		return KindHouse, nil
	case "apartment", "apartments":
		return KindApartment, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidKind, s)
}

// DisplayName is the discriminator stored on favorites and payments.
func (k Kind) DisplayName() string {
	switch k {
	case KindLand:
		return "Land"
	case KindHouse:
		return "House"
	case KindApartment:
		return "Apartment"
	}
	return string(k)
}

// Plural is the URL segment the kind is mounted under.
func (k Kind) Plural() string { return string(k) + "s" }

// PurchasedField is the User array holding purchased listings of this kind.
func (k Kind) PurchasedField() string {
	switch k {
	case KindLand:
		return "purchasedLands"
	case KindHouse:
		return "purchasedHouses"
	default:
		return "purchasedApartments"
	}
}

type Status string

const (
	StatusAvailable Status = "Available"
	StatusReserved  Status = "Reserved"
	StatusSold      Status = "Sold"
	StatusForRent   Status = "For Rent"
	StatusRented    Status = "Rented"
)

// IsRental reports whether rent-specific fields are required in this status.
func (s Status) IsRental() bool {
	return s == StatusForRent || s == StatusRented
}

var kindStatuses = map[Kind][]Status{
	KindLand:      {StatusAvailable, StatusReserved, StatusSold},
	KindHouse:     {StatusAvailable, StatusReserved, StatusSold, StatusForRent, StatusRented},
	KindApartment: {StatusAvailable, StatusReserved, StatusSold, StatusForRent, StatusRented},
}

var transitions = map[Status][]Status{
	StatusAvailable: {StatusReserved, StatusSold, StatusForRent},
	StatusReserved:  {StatusAvailable, StatusSold},
	StatusForRent:   {StatusRented, StatusAvailable},
	StatusRented:    {StatusForRent, StatusAvailable},
	StatusSold:      nil,
}

// Statuses lists the statuses a listing of kind k may hold.
func (k Kind) Statuses() []Status { return kindStatuses[k] }

// Allows reports whether s is a valid status for kind k.
func (k Kind) Allows(s Status) bool {
	for _, allowed := range kindStatuses[k] {
		if allowed == s {
			return true
		}
	}
	return false
}

// CheckTransition validates moving a listing of kind k from one status to another.
// Staying in the same status is always allowed.
func (k Kind) CheckTransition(from, to Status) error {
	if !k.Allows(to) {
		return fmt.Errorf("%w: %q is not a %s status", ErrInvalidTransition, to, k)
	}
	if from == to {
		return nil
	}
	for _, next := range transitions[from] {
		if next == to {
			return nil
		}
	}
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
}

// Attributes is the kind-specific part of a listing.
type Attributes struct {
	Bedrooms    int     `bson:"bedrooms,omitempty" json:"bedrooms,omitempty"`
	Bathrooms   int     `bson:"bathrooms,omitempty" json:"bathrooms,omitempty"`
	Floor       *int    `bson:"floor,omitempty" json:"floor,omitempty"`
	TotalFloors int     `bson:"totalFloors,omitempty" json:"totalFloors,omitempty"`
	Furnished   bool    `bson:"furnished,omitempty" json:"furnished,omitempty"`
	Parking     bool    `bson:"parking,omitempty" json:"parking,omitempty"`
	LandType    string  `bson:"landType,omitempty" json:"landType,omitempty"`
	Zoning      string  `bson:"zoning,omitempty" json:"zoning,omitempty"`
	RentPrice   float64 `bson:"rentPrice,omitempty" json:"rentPrice,omitempty"`
	RentPeriod  string  `bson:"rentPeriod,omitempty" json:"rentPeriod,omitempty"`
}

type Listing struct {
	ID          primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Kind        Kind                `bson:"kind" json:"kind"`
	Title       string              `bson:"title" json:"title"`
	Location    string              `bson:"location" json:"location"`
	Price       float64             `bson:"price" json:"price"`
	Size        string              `bson:"size" json:"size"`
	Status      Status              `bson:"status" json:"status"`
	Images      []string            `bson:"images" json:"images"`
	Video       string              `bson:"video,omitempty" json:"video,omitempty"`
	BrochureURL string              `bson:"brochureUrl,omitempty" json:"brochureUrl,omitempty"`
	Description string              `bson:"description,omitempty" json:"description,omitempty"`
	Features    []string            `bson:"features" json:"features"`
	Landmarks   []string            `bson:"landmarks" json:"landmarks"`
	Documents   []string            `bson:"documents" json:"documents"`
	Owner       *primitive.ObjectID `bson:"owner,omitempty" json:"owner,omitempty"`
	CreatedAt   time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time           `bson:"updatedAt" json:"updatedAt"`

	Attributes `bson:",inline"`
}

// Normalize replaces nil slices so they are stored and rendered as empty arrays.
func (l *Listing) Normalize() {
	for _, field := range []*[]string{&l.Images, &l.Features, &l.Landmarks, &l.Documents} {
		if *field == nil {
			*field = []string{}
		}
	}
}

// FieldError names a missing or malformed listing field.
type FieldError struct {
	Field   string
	Message string
}

func (e FieldError) Error() string { return e.Field + " " + e.Message }

// ValidationErrors collects every field problem found on a listing.
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	parts := make([]string, len(v))
	for i, e := range v {
		parts[i] = e.Error()
	}
	return strings.Join(parts, "; ")
}

// Validate checks the fields every kind requires plus the kind's own variant.
func (l *Listing) Validate() error {
	var errs ValidationErrors
	if strings.TrimSpace(l.Title) == "" {
		errs = append(errs, FieldError{"title", "is required"})
	}
	if strings.TrimSpace(l.Location) == "" {
		errs = append(errs, FieldError{"location", "is required"})
	}
	if l.Price <= 0 {
		errs = append(errs, FieldError{"price", "is required and must be positive"})
	}
	if strings.TrimSpace(l.Size) == "" {
		errs = append(errs, FieldError{"size", "is required"})
	}
	if !l.Kind.Allows(l.Status) {
		errs = append(errs, FieldError{"status", fmt.Sprintf("must be one of %v", l.Kind.Statuses())})
	}

	switch l.Kind {
	case KindHouse, KindApartment:
		if l.Bedrooms < 1 {
			errs = append(errs, FieldError{"bedrooms", "must be at least 1"})
		}
		if l.Bathrooms < 1 {
			errs = append(errs, FieldError{"bathrooms", "must be at least 1"})
		}
		if l.Kind == KindApartment && l.Floor == nil {
			errs = append(errs, FieldError{"floor", "is required"})
		}
	case KindLand:
	default:
		errs = append(errs, FieldError{"kind", "is invalid"})
	}

	if l.Status.IsRental() {
		if l.RentPrice <= 0 {
			errs = append(errs, FieldError{"rentPrice", "is required while " + string(l.Status)})
		}
		if strings.TrimSpace(l.RentPeriod) == "" {
			errs = append(errs, FieldError{"rentPeriod", "is required while " + string(l.Status)})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ListingPatch is a partial update; nil fields are left untouched.
type ListingPatch struct {
	Title       *string   `json:"title"`
	Location    *string   `json:"location"`
	Price       *float64  `json:"price"`
	Size        *string   `json:"size"`
	Status      *Status   `json:"status"`
	Images      *[]string `json:"images"`
	Video       *string   `json:"video"`
	BrochureURL *string   `json:"brochureUrl"`
	Description *string   `json:"description"`
	Features    *[]string `json:"features"`
	Landmarks   *[]string `json:"landmarks"`
	Documents   *[]string `json:"documents"`
	Owner       *string   `json:"owner"`
	Bedrooms    *int      `json:"bedrooms"`
	Bathrooms   *int      `json:"bathrooms"`
	Floor       *int      `json:"floor"`
	TotalFloors *int      `json:"totalFloors"`
	Furnished   *bool     `json:"furnished"`
	Parking     *bool     `json:"parking"`
	LandType    *string   `json:"landType"`
	Zoning      *string   `json:"zoning"`
	RentPrice   *float64  `json:"rentPrice"`
	RentPeriod  *string   `json:"rentPeriod"`
}

// Apply copies the set fields onto l. The owner id must already be valid hex.
func (p ListingPatch) Apply(l *Listing) error {
	setString(&l.Title, p.Title)
	setString(&l.Location, p.Location)
	setString(&l.Size, p.Size)
	setString(&l.Video, p.Video)
	setString(&l.BrochureURL, p.BrochureURL)
	setString(&l.Description, p.Description)
	setString(&l.LandType, p.LandType)
	setString(&l.Zoning, p.Zoning)
	setString(&l.RentPeriod, p.RentPeriod)
	if p.Price != nil {
		l.Price = *p.Price
	}
	if p.Status != nil {
		l.Status = *p.Status
	}
	if p.Images != nil {
		l.Images = *p.Images
	}
	if p.Features != nil {
		l.Features = *p.Features
	}
	if p.Landmarks != nil {
		l.Landmarks = *p.Landmarks
	}
	if p.Documents != nil {
		l.Documents = *p.Documents
	}
	if p.Bedrooms != nil {
		l.Bedrooms = *p.Bedrooms
	}
	if p.Bathrooms != nil {
		l.Bathrooms = *p.Bathrooms
	}
	if p.Floor != nil {
		floor := *p.Floor
		l.Floor = &floor
	}
	if p.TotalFloors != nil {
		l.TotalFloors = *p.TotalFloors
	}
	if p.Furnished != nil {
		l.Furnished = *p.Furnished
	}
	if p.Parking != nil {
		l.Parking = *p.Parking
	}
	if p.RentPrice != nil {
		l.RentPrice = *p.RentPrice
	}
	if p.Owner != nil {
		if *p.Owner == "" {
			l.Owner = nil
		} else {
			id, err := primitive.ObjectIDFromHex(*p.Owner)
			if err != nil {
				return FieldError{"owner", "is not a valid id"}
			}
			l.Owner = &id
		}
	}
	return nil
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}
