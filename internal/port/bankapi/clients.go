package bankapi

import "context"

// KYCAdmin exposes the identity service's pending-review queue.
type KYCAdmin interface {
	ListPending(ctx context.Context) ([]KYCApplication, error)
	Get(ctx context.Context, applicationID string) (KYCApplication, error)
	Approve(ctx context.Context, applicationID, comment string) error
	Reject(ctx context.Context, applicationID, comment string) error
	Download(ctx context.Context, applicationID, path string) ([]byte, error)
}

// LoanAdmin exposes the loan service's application queue. List returns
// applications in every status; callers filter for pending themselves.
type LoanAdmin interface {
	List(ctx context.Context) ([]Loan, error)
	Get(ctx context.Context, loanID string) (Loan, error)
	Approve(ctx context.Context, loanID string) error
	Reject(ctx context.Context, loanID, reason string) error
}

// CardAdmin exposes the card service's application queue.
type CardAdmin interface {
	ListPending(ctx context.Context) ([]CardApplication, error)
	Get(ctx context.Context, applicationID string) (CardApplication, error)
	Review(ctx context.Context, applicationID string, review CardReview) error
}

// SalaryAdmin exposes the payroll-account application queue.
type SalaryAdmin interface {
	ListPending(ctx context.Context) ([]SalaryApplication, error)
	Get(ctx context.Context, applicationID string) (SalaryApplication, error)
	Review(ctx context.Context, applicationID, decision, comment, reviewerID string) error
	Download(ctx context.Context, applicationID, path string) ([]byte, error)
}

// SelfServiceAdmin exposes the profile change-request queue.
type SelfServiceAdmin interface {
	ListPending(ctx context.Context) ([]ChangeRequest, error)
	Get(ctx context.Context, requestID string) (ChangeRequest, error)
	Approve(ctx context.Context, requestID, comment string) error
	Reject(ctx context.Context, requestID, comment string) error
	Download(ctx context.Context, requestID, path string) ([]byte, error)
}

// AccountReader fetches a user's accounts for balance and account-type policy.
type AccountReader interface {
	AccountsForUser(ctx context.Context, userID string) ([]Account, error)
}

// ProfileReader fetches the current customer profile.
type ProfileReader interface {
	ProfileForUser(ctx context.Context, userID string) (Profile, error)
}
