package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/omnibank/reviewd/internal/domain/review"
	"github.com/omnibank/reviewd/internal/port/bankapi"
)

func loanAccounts(userID string, accounts ...bankapi.Account) *fakeAccounts {
	return &fakeAccounts{accounts: map[string][]bankapi.Account{userID: accounts}}
}

func TestLoanEligibilityPolicy(t *testing.T) {
	tests := []struct {
		name        string
		amount      float64
		accounts    []bankapi.Account
		wantApprove bool
		wantReason  string
	}{
		{
			name:   "payroll profile high balance within corporate cap",
			amount: 5_000_000,
			accounts: []bankapi.Account{
				{AccountType: bankapi.AccountTypePayroll, Balance: 150_000},
				{AccountType: "SAVINGS", Balance: 100_000},
			},
			wantApprove: true,
		},
		{
			name:   "payroll profile over corporate cap",
			amount: 9_000_000,
			accounts: []bankapi.Account{
				{AccountType: bankapi.AccountTypePayroll, Balance: 250_000},
			},
			wantApprove: false,
			wantReason:  "exceeds eligible cap",
		},
		{
			name:   "standard profile mid balance within cap",
			amount: 1_500_000,
			accounts: []bankapi.Account{
				{AccountType: "SAVINGS", Balance: 60_000},
			},
			wantApprove: true,
		},
		{
			name:   "standard profile low balance over base cap",
			amount: 500_000,
			accounts: []bankapi.Account{
				{AccountType: "SAVINGS", Balance: 40_000},
			},
			wantApprove: false,
			wantReason:  "exceeds eligible cap",
		},
		{
			name:   "standard profile low balance small loan",
			amount: 250_000,
			accounts: []bankapi.Account{
				{AccountType: "SAVINGS", Balance: 40_000},
			},
			wantApprove: true,
		},
		{
			name:   "payroll profile but low balance",
			amount: 100_000,
			accounts: []bankapi.Account{
				{AccountType: bankapi.AccountTypePayroll, Balance: 80_000},
			},
			wantApprove: false,
			wantReason:  "does not meet approval criteria",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loan := bankapi.Loan{LoanID: "loan-1", UserID: "u1", Amount: tt.amount, Status: bankapi.StatusPending}
			d, _, _, _ := testDeps("AUTO")
			admin := newFakeLoanAdmin(loan)
			wf := NewLoanWorkflow(d, admin, loanAccounts("u1", tt.accounts...), testLogger())

			if err := wf.Process(context.Background()); err != nil {
				t.Fatalf("Process failed: %v", err)
			}

			if tt.wantApprove {
				if len(admin.approved) != 1 {
					t.Fatalf("expected approval, got rejections %v", admin.rejected)
				}
				return
			}
			reason, ok := admin.rejected["loan-1"]
			if !ok {
				t.Fatalf("expected rejection, got approvals %v", admin.approved)
			}
			if !strings.Contains(reason, tt.wantReason) {
				t.Fatalf("reason %q missing %q", reason, tt.wantReason)
			}
		})
	}
}

func TestLoanBalancesRoundedPerAccount(t *testing.T) {
	// 49_999.6 rounds to 50_000, lifting the applicant into the mid tier.
	loan := bankapi.Loan{LoanID: "loan-2", UserID: "u2", Amount: 1_000_000, Status: bankapi.StatusPending}
	d, _, _, _ := testDeps("AUTO")
	admin := newFakeLoanAdmin(loan)
	wf := NewLoanWorkflow(d, admin, loanAccounts("u2",
		bankapi.Account{AccountType: "SAVINGS", Balance: 49_999.6}), testLogger())

	_ = wf.Process(context.Background())
	if len(admin.approved) != 1 {
		t.Fatalf("expected approval after rounding, got %v", admin.rejected)
	}
}

func TestLoanIgnoresNonPendingApplications(t *testing.T) {
	d, _, ledger, _ := testDeps("AUTO")
	admin := newFakeLoanAdmin(
		bankapi.Loan{LoanID: "loan-a", UserID: "u1", Amount: 1000, Status: "APPROVED"},
		bankapi.Loan{LoanID: "loan-b", UserID: "u1", Amount: 1000, Status: "REJECTED"},
	)
	wf := NewLoanWorkflow(d, admin, loanAccounts("u1"), testLogger())

	_ = wf.Process(context.Background())
	if len(admin.approved) != 0 || len(admin.rejected) != 0 || ledger.Size() != 0 {
		t.Fatal("non-pending loans must not be touched")
	}
}

func TestLoanAccountLookupFailureRejectsConservatively(t *testing.T) {
	loan := bankapi.Loan{LoanID: "loan-3", UserID: "u3", Amount: 1000, Status: bankapi.StatusPending}
	d, _, _, _ := testDeps("AUTO")
	admin := newFakeLoanAdmin(loan)
	wf := NewLoanWorkflow(d, admin, &fakeAccounts{err: errors.New("account service down")}, testLogger())

	_ = wf.Process(context.Background())
	reason, ok := admin.rejected["loan-3"]
	if !ok {
		t.Fatal("expected conservative rejection on account lookup failure")
	}
	if !strings.Contains(reason, "conservatively") {
		t.Fatalf("unexpected reason: %q", reason)
	}
}

func TestLoanAutoActsAfterDryRunPreview(t *testing.T) {
	loan := bankapi.Loan{LoanID: "loan-5", UserID: "u1", Amount: 1_000_000, Status: bankapi.StatusPending}
	d, state, ledger, _ := testDeps("DRY_RUN")
	admin := newFakeLoanAdmin(loan)
	wf := NewLoanWorkflow(d, admin, loanAccounts("u1",
		bankapi.Account{AccountType: "SAVINGS", Balance: 80_000}), testLogger())

	_ = wf.Process(context.Background())
	if len(admin.approved) != 0 {
		t.Fatal("DRY_RUN must not call review endpoints")
	}
	if ledger.Size() != 1 {
		t.Fatalf("expected the preview to be recorded, got %d entries", ledger.Size())
	}

	state.SetMode("AUTO")
	_ = wf.Process(context.Background())
	if len(admin.approved) != 1 || admin.approved[0] != "loan-5" {
		t.Fatalf("AUTO pass must act on a previewed item, approved %v", admin.approved)
	}
	entry := ledger.Entries()[0]
	if entry.Mode != review.ModeAuto {
		t.Fatalf("executed decision should supersede the preview, mode %v", entry.Mode)
	}
}

func TestLoanDryRunRecordsOnly(t *testing.T) {
	loan := bankapi.Loan{LoanID: "loan-4", UserID: "u1", Amount: 250_000, Status: bankapi.StatusPending}
	d, _, ledger, _ := testDeps("DRY_RUN")
	admin := newFakeLoanAdmin(loan)
	wf := NewLoanWorkflow(d, admin, loanAccounts("u1",
		bankapi.Account{AccountType: "SAVINGS", Balance: 40_000}), testLogger())

	_ = wf.Process(context.Background())
	if len(admin.approved) != 0 || len(admin.rejected) != 0 {
		t.Fatal("DRY_RUN must not call review endpoints")
	}
	if ledger.Size() != 1 {
		t.Fatalf("expected 1 ledger entry, got %d", ledger.Size())
	}
}
