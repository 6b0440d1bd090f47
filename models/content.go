package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ContentPtr is satisfied by pointers to the admin dashboard section documents
// (announcements, team members, inspections).
type ContentPtr[T any] interface {
	*T
	Stamp(id primitive.ObjectID, created, updated time.Time)
	Created() time.Time
	ApplyDefaults()
}

type Announcement struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title     string             `bson:"title" json:"title" validate:"required"`
	Body      string             `bson:"body" json:"body" validate:"required"`
	Audience  string             `bson:"audience" json:"audience" validate:"omitempty,oneof=all users admins"`
	Published bool               `bson:"published" json:"published"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

type TeamMember struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name      string             `bson:"name" json:"name" validate:"required"`
	Position  string             `bson:"position" json:"position" validate:"required"`
	Email     string             `bson:"email" json:"email" validate:"omitempty,email"`
	Phone     string             `bson:"phone" json:"phone"`
	PhotoURL  string             `bson:"photoUrl" json:"photoUrl"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

const (
	InspectionScheduled = "Scheduled"
	InspectionCompleted = "Completed"
	InspectionCancelled = "Cancelled"
)

type Inspection struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	PropertyType string             `bson:"propertyType" json:"propertyType" validate:"required,oneof=Land House Apartment"`
	PropertyID   primitive.ObjectID `bson:"propertyId" json:"propertyId" validate:"required"`
	ClientName   string             `bson:"clientName" json:"clientName" validate:"required"`
	ClientPhone  string             `bson:"clientPhone" json:"clientPhone"`
	ScheduledAt  time.Time          `bson:"scheduledAt" json:"scheduledAt" validate:"required"`
	Status       string             `bson:"status" json:"status" validate:"omitempty,oneof=Scheduled Completed Cancelled"`
	Notes        string             `bson:"notes" json:"notes"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}

func (d *Announcement) Stamp(id primitive.ObjectID, created, updated time.Time) {
	d.ID, d.CreatedAt, d.UpdatedAt = id, created, updated
}

func (d *TeamMember) Stamp(id primitive.ObjectID, created, updated time.Time) {
	d.ID, d.CreatedAt, d.UpdatedAt = id, created, updated
}

func (d *Inspection) Stamp(id primitive.ObjectID, created, updated time.Time) {
	d.ID, d.CreatedAt, d.UpdatedAt = id, created, updated
}

func (d *Announcement) Created() time.Time { return d.CreatedAt }
func (d *TeamMember) Created() time.Time   { return d.CreatedAt }
func (d *Inspection) Created() time.Time   { return d.CreatedAt }

func (d *Announcement) ApplyDefaults() {
	if d.Audience == "" {
		d.Audience = "all"
	}
}

func (d *TeamMember) ApplyDefaults() {}

func (d *Inspection) ApplyDefaults() {
	if d.Status == "" {
		d.Status = InspectionScheduled
	}
}
