package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Consultation is a request to see a doctor about a set of symptoms. Date and
// Time are the slot the patient asked for, kept as entered.
type Consultation struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Age         int       `json:"age"`
	Gender      string    `json:"gender"`
	Symptoms    string    `json:"symptoms"`
	Date        string    `json:"date"`
	Time        string    `json:"time"`
	SubmittedAt time.Time `json:"submittedAt"`
}

// LabBooking is a booked laboratory test.
type LabBooking struct {
	ID         string              `json:"id"`
	UserID     string              `json:"userId"`
	TestID     string              `json:"testId"`
	Name       string              `json:"name"`
	Price      decimal.NullDecimal `json:"price"`
	Fasting    string              `json:"fasting,omitempty"`
	ReportTime string              `json:"reportTime,omitempty"`
	Includes   []string            `json:"includes"`
	Quantity   int                 `json:"quantity"`
	CreatedAt  time.Time           `json:"createdAt"`
}
