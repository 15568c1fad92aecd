package models

import (
	"strings"
	"time"
)

type Passenger struct {
	ID        string    `db:"id" json:"id"`
	FirstName string    `db:"first_name" json:"first_name"`
	LastName  string    `db:"last_name" json:"last_name"`
	Email     string    `db:"email" json:"email"`
	Phone     string    `db:"phone" json:"phone"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type PassengerResponse struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Phone  string  `json:"phone"`
	Rating float64 `json:"rating,omitempty"`
}

func (p *Passenger) FullName() string {
	name := strings.TrimSpace(p.FirstName + " " + p.LastName)
	if name == "" && p.Email != "" {
		return strings.SplitN(p.Email, "@", 2)[0]
	}
	return name
}

func (p *Passenger) ToResponse() *PassengerResponse {
	return &PassengerResponse{
		ID:    p.ID,
		Name:  p.FullName(),
		Phone: p.Phone,
	}
}
