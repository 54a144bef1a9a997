// Package bankapi defines the admin API contracts of the owning backend
// services, as consumed by the review workflows. The orchestrator only reads
// pending items and transitions them via review calls; it never owns their
// storage.
package bankapi

import "errors"

// ErrNotFound is returned when an item no longer exists on the owning service.
var ErrNotFound = errors.New("bankapi: not found")

// Pending item statuses as used on the wire.
const (
	StatusSubmitted = "SUBMITTED"
	StatusPending   = "PENDING"
)

// AccountTypePayroll marks salary/corporate accounts; several policies key on
// its presence.
const AccountTypePayroll = "SALARY_CORPORATE"

// ReviewerID identifies this orchestrator on all review calls.
const ReviewerID = "agent"

// KYCApplication is a pending identity verification application.
type KYCApplication struct {
	ApplicationID string   `json:"applicationId"`
	UserID        string   `json:"userId"`
	NationalID    string   `json:"nationalId"`
	TaxID         string   `json:"taxId"`
	AddressLine1  string   `json:"addressLine1"`
	City          string   `json:"city"`
	State         string   `json:"state"`
	PostalCode    string   `json:"postalCode"`
	Status        string   `json:"reviewStatus"`
	DocumentPaths []string `json:"documentPaths"`
}

// Loan is a loan application as returned by the loan service.
type Loan struct {
	LoanID string  `json:"loanId"`
	UserID string  `json:"userId"`
	Amount float64 `json:"amount"`
	Status string  `json:"status"`
}

// CardApplication is a pending card issuance request.
type CardApplication struct {
	ApplicationID string `json:"applicationId"`
	UserID        string `json:"userId"`
	Type          string `json:"type"` // "DEBIT" | "CREDIT"
	Status        string `json:"status"`
}

// CardReview is the body of a card review call.
type CardReview struct {
	Decision      string   `json:"decision"` // "APPROVED" | "REJECTED"
	ApprovedLimit *float64 `json:"approvedLimit,omitempty"`
	AdminComment  string   `json:"adminComment,omitempty"`
	ReviewerID    string   `json:"reviewerId"`
}

// SalaryApplication is a pending payroll-account application.
type SalaryApplication struct {
	ApplicationID  string   `json:"applicationId"`
	UserID         string   `json:"userId"`
	CorporateEmail string   `json:"corporateEmail"`
	Status         string   `json:"status"`
	Documents      []string `json:"documents"`
}

// ChangeRequest is a pending self-service profile change request.
type ChangeRequest struct {
	RequestID   string   `json:"requestId"`
	UserID      string   `json:"userId"`
	Type        string   `json:"type"` // NAME_CHANGE | DOB_CHANGE | ADDRESS_CHANGE
	Status      string   `json:"status"`
	PayloadJSON string   `json:"payloadJson"`
	Documents   []string `json:"documents"`
}

// Account is one bank account of a user, as far as policy needs it.
type Account struct {
	AccountType string  `json:"accountType"`
	Balance     float64 `json:"balance"`
}

// Profile is the current customer profile held by the identity service.
type Profile struct {
	UserID      string `json:"userId"`
	FirstName   string `json:"firstName"`
	MiddleName  string `json:"middleName"`
	LastName    string `json:"lastName"`
	DateOfBirth string `json:"dateOfBirth"` // "2006-01-02"
	Address     string `json:"address"`
}
