package service

import (
	"context"
	"strings"
	"testing"

	"github.com/omnibank/reviewd/internal/domain/review"
	"github.com/omnibank/reviewd/internal/port/bankapi"
	"github.com/omnibank/reviewd/internal/port/reasoner"
)

func salaryApp(email string, docs ...string) bankapi.SalaryApplication {
	return bankapi.SalaryApplication{
		ApplicationID:  "sal-1",
		UserID:         "u1",
		CorporateEmail: email,
		Status:         bankapi.StatusSubmitted,
		Documents:      docs,
	}
}

func TestSalaryRejectsMalformedEmail(t *testing.T) {
	for _, email := range []string{"", "not-an-email", "trailing@"} {
		t.Run(email, func(t *testing.T) {
			d, _, _, _ := testDeps("AUTO")
			admin := newFakeSalaryAdmin(salaryApp(email, "letter.txt"))
			wf := NewSalaryWorkflow(d, admin, passthroughEvidence(), inconclusiveReasoner(), testLogger())

			_ = wf.Process(context.Background())
			if admin.decisions["sal-1"] != "REJECTED" {
				t.Fatalf("expected rejection, got %q", admin.decisions["sal-1"])
			}
		})
	}
}

func TestSalaryRejectsWithoutDocuments(t *testing.T) {
	d, _, _, _ := testDeps("AUTO")
	admin := newFakeSalaryAdmin(salaryApp("jo@acme.com"))
	wf := NewSalaryWorkflow(d, admin, passthroughEvidence(), inconclusiveReasoner(), testLogger())

	_ = wf.Process(context.Background())
	if admin.decisions["sal-1"] != "REJECTED" {
		t.Fatalf("expected rejection, got %q", admin.decisions["sal-1"])
	}
}

func TestSalaryCorroboration(t *testing.T) {
	tests := []struct {
		name    string
		docText string
	}{
		{"literal domain", "This letter confirms employment. Contact hr@acme.com."},
		{"punctuation-normalized domain", "Issued by A.C.M.E C.O.M payroll desk"},
		{"organization token whole word", "ACME Industries Ltd confirms employment"},
		{"fuzzy ocr noise", "AGME Industries confirms the above"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, _, _, _ := testDeps("AUTO")
			admin := newFakeSalaryAdmin(salaryApp("jo@acme.com", "letter.txt"))
			admin.docs["letter.txt"] = []byte(tt.docText)
			rsn := inconclusiveReasoner()
			wf := NewSalaryWorkflow(d, admin, passthroughEvidence(), rsn, testLogger())

			_ = wf.Process(context.Background())
			if admin.decisions["sal-1"] != "APPROVED" {
				t.Fatalf("expected approval for %q, got %q (comment %q)",
					tt.docText, admin.decisions["sal-1"], admin.comments["sal-1"])
			}
			if admin.reviewers["sal-1"] != "agent" {
				t.Fatalf("unexpected reviewer: %q", admin.reviewers["sal-1"])
			}
			if len(rsn.calledTasks()) != 0 {
				t.Fatal("reasoner must not run when documents corroborate")
			}
		})
	}
}

func TestSalaryUnrelatedDomainNotCorroborated(t *testing.T) {
	d, _, _, _ := testDeps("AUTO")
	admin := newFakeSalaryAdmin(salaryApp("jo@acme.com", "letter.txt"))
	admin.docs["letter.txt"] = []byte("Globex Corporation confirms employment of the bearer")
	wf := NewSalaryWorkflow(d, admin, passthroughEvidence(), inconclusiveReasoner(), testLogger())

	_ = wf.Process(context.Background())
	if admin.decisions["sal-1"] != "REJECTED" {
		t.Fatalf("expected rejection, got %q", admin.decisions["sal-1"])
	}
	if !strings.Contains(admin.comments["sal-1"], "employment letter or payslip") {
		t.Fatalf("rejection should prompt for evidence upload: %q", admin.comments["sal-1"])
	}
}

func TestSalaryReasonerDecides(t *testing.T) {
	d, _, _, _ := testDeps("AUTO")
	admin := newFakeSalaryAdmin(salaryApp("jo@acme.com", "letter.txt"))
	admin.docs["letter.txt"] = []byte("Globex Corporation letterhead")
	rsn := &stubReasoner{result: reasoner.Result{
		Verdict: reasoner.VerdictApprove,
		Reason:  "Globex is the parent company of acme.com",
	}}
	wf := NewSalaryWorkflow(d, admin, passthroughEvidence(), rsn, testLogger())

	_ = wf.Process(context.Background())
	if admin.decisions["sal-1"] != "APPROVED" {
		t.Fatalf("expected reasoner-backed approval, got %q", admin.decisions["sal-1"])
	}
	if tasks := rsn.calledTasks(); len(tasks) != 1 || tasks[0] != "SALARY_EMPLOYMENT_CHECK" {
		t.Fatalf("unexpected reasoner tasks: %v", tasks)
	}
}

func TestSalaryDefersWhenAllDownloadsFail(t *testing.T) {
	d, _, ledger, _ := testDeps("AUTO")
	admin := newFakeSalaryAdmin(salaryApp("jo@acme.com", "letter.txt"))
	// No doc bytes registered: every download errors.
	wf := NewSalaryWorkflow(d, admin, passthroughEvidence(), inconclusiveReasoner(), testLogger())

	_ = wf.Process(context.Background())
	if len(admin.decisions) != 0 {
		t.Fatalf("deferred item must not be reviewed, got %v", admin.decisions)
	}
	if ledger.Size() != 0 {
		t.Fatal("deferred item must not be recorded")
	}
}

func TestSalarySkipsItemDecidedMidPass(t *testing.T) {
	app := salaryApp("jo@acme.com", "letter.txt")
	d, _, _, _ := testDeps("AUTO")
	admin := newFakeSalaryAdmin(app)
	admin.docs["letter.txt"] = []byte("acme.com confirms employment")
	admin.apps[0].Status = "APPROVED"

	wf := NewSalaryWorkflow(d, admin, passthroughEvidence(), inconclusiveReasoner(), testLogger())
	wf.processOne(context.Background(), app, review.ModeAuto)

	if len(admin.decisions) != 0 {
		t.Fatal("item decided mid-pass must not be reviewed again")
	}
}
