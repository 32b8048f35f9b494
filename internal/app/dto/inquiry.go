package dto

import (
	"time"
)

// InquiryReceipt is returned for an accepted submission. Remaining counts submissions
// left in the current window for the same client.
type InquiryReceipt struct {
	ID          string    `json:"id"`
	Kind        string    `json:"kind"`
	Remaining   int       `json:"remaining"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// InquiryAllowance tells the site how many submissions the client still has.
type InquiryAllowance struct {
	Remaining int `json:"remaining"`
}
