package models

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"
)

// Driver account status constants
const (
	DriverStatusActive   = "Active"
	DriverStatusInactive = "Inactive"
)

type Driver struct {
	ID            string    `db:"id" json:"id"`
	FirstName     string    `db:"first_name" json:"first_name"`
	LastName      string    `db:"last_name" json:"last_name"`
	Email         string    `db:"email" json:"email"`
	Phone         string    `db:"phone" json:"phone"`
	VehicleType   string    `db:"vehicle_type" json:"vehicle_type"`
	PlateNumber   string    `db:"plate_number" json:"plate_number"`
	Manufacturer  string    `db:"manufacturer" json:"manufacturer"`
	Color         string    `db:"color" json:"color"`
	Rating        float64   `db:"rating" json:"rating"`
	Availability  bool      `db:"availability" json:"availability"`
	Status        string    `db:"status" json:"status"`
	IsDeleted     bool      `db:"is_deleted" json:"-"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

type DriverResponse struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Phone       string  `json:"phone"`
	Rating      float64 `json:"rating"`
	VehicleInfo string  `json:"vehicle_info"`
}

func (d *Driver) FullName() string {
	name := strings.TrimSpace(d.FirstName + " " + d.LastName)
	if name == "" {
		return d.Email
	}
	return name
}

func (d *Driver) ToResponse() *DriverResponse {
	vehicle := d.VehicleType
	if d.PlateNumber != "" {
		vehicle += " - " + d.PlateNumber
	}
	return &DriverResponse{
		ID:          d.ID,
		Name:        d.FullName(),
		Phone:       d.Phone,
		Rating:      d.Rating,
		VehicleInfo: vehicle,
	}
}

// Eligible reports whether the driver can be offered a ride right now.
func (d *Driver) Eligible() bool {
	return d.Availability && d.Status == DriverStatusActive && !d.IsDeleted
}

// FlexibleBool accepts a JSON boolean or a boolean-like string
// ("true", "1", "on") from form-style clients.
type FlexibleBool bool

func (f *FlexibleBool) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		*f = FlexibleBool(b)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "on", "yes":
		*f = true
	default:
		*f = false
	}
	return nil
}

type UpdateAvailabilityRequest struct {
	Availability FlexibleBool `json:"availability"`
}
