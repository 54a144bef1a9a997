package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/omnibank/reviewd/internal/config"
	"github.com/omnibank/reviewd/internal/port/bankapi"
	"github.com/omnibank/reviewd/internal/port/reasoner"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// testDeps builds an enabled agent in the given mode with all queues on.
func testDeps(mode string) (Deps, *AgentState, *AuditLedger, *QueueMetrics) {
	state := NewAgentState(config.Agent{
		Enabled: true,
		Mode:    mode,
		Workflows: config.Workflows{
			KYC: true, Loans: true, Cards: true, Salary: true, SelfService: true,
		},
		Polling: config.Polling{Enabled: true, Interval: 30 * time.Second},
	})
	ledger := NewAuditLedger(testLogger(), nil)
	metrics := NewQueueMetrics(nil)
	return NewDeps(state, ledger, metrics), state, ledger, metrics
}

// passthroughEvidence builds an Evidence with no cache, whose extractor
// returns the document bytes as-is.
func passthroughEvidence() *Evidence {
	return NewEvidence(rawTextExtractor{}, nil, time.Minute, testLogger())
}

type rawTextExtractor struct{}

func (rawTextExtractor) ExtractTextFromBytes(_ context.Context, docs map[string][]byte) map[string]string {
	out := make(map[string]string, len(docs))
	for name, data := range docs {
		out[name] = string(data)
	}
	return out
}

func (rawTextExtractor) QualityScores(_ context.Context, docs map[string][]byte) map[string]float64 {
	out := make(map[string]float64, len(docs))
	for name := range docs {
		out[name] = 1.0
	}
	return out
}

// stubReasoner returns a fixed result and records the tasks it was asked.
type stubReasoner struct {
	mu     sync.Mutex
	result reasoner.Result
	tasks  []string
}

func (s *stubReasoner) Evaluate(_ context.Context, task string, _ map[string]any) reasoner.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks = append(s.tasks, task)
	return s.result
}

func (s *stubReasoner) calledTasks() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.tasks...)
}

func inconclusiveReasoner() *stubReasoner {
	return &stubReasoner{result: reasoner.Result{Verdict: reasoner.VerdictInconclusive}}
}

// fakeKYCAdmin implements bankapi.KYCAdmin in memory.
type fakeKYCAdmin struct {
	apps      []bankapi.KYCApplication
	docs      map[string][]byte
	approved  []string
	rejected  []string
	reasons   map[string]string
	downloads int
	getErr    error
}

func newFakeKYCAdmin(apps ...bankapi.KYCApplication) *fakeKYCAdmin {
	return &fakeKYCAdmin{
		apps:    apps,
		docs:    make(map[string][]byte),
		reasons: make(map[string]string),
	}
}

func (f *fakeKYCAdmin) ListPending(context.Context) ([]bankapi.KYCApplication, error) {
	var out []bankapi.KYCApplication
	for _, a := range f.apps {
		if a.Status == bankapi.StatusSubmitted {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeKYCAdmin) Get(_ context.Context, id string) (bankapi.KYCApplication, error) {
	if f.getErr != nil {
		return bankapi.KYCApplication{}, f.getErr
	}
	for _, a := range f.apps {
		if a.ApplicationID == id {
			return a, nil
		}
	}
	return bankapi.KYCApplication{}, bankapi.ErrNotFound
}

func (f *fakeKYCAdmin) Approve(_ context.Context, id, comment string) error {
	f.approved = append(f.approved, id)
	f.reasons[id] = comment
	return nil
}

func (f *fakeKYCAdmin) Reject(_ context.Context, id, comment string) error {
	f.rejected = append(f.rejected, id)
	f.reasons[id] = comment
	return nil
}

func (f *fakeKYCAdmin) Download(_ context.Context, _, path string) ([]byte, error) {
	f.downloads++
	data, ok := f.docs[path]
	if !ok {
		return nil, errors.New("document missing")
	}
	return data, nil
}

// fakeAccounts implements bankapi.AccountReader.
type fakeAccounts struct {
	accounts map[string][]bankapi.Account
	err      error
}

func (f *fakeAccounts) AccountsForUser(_ context.Context, userID string) ([]bankapi.Account, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.accounts[userID], nil
}

// fakeLoanAdmin implements bankapi.LoanAdmin.
type fakeLoanAdmin struct {
	loans    []bankapi.Loan
	approved []string
	rejected map[string]string
}

func newFakeLoanAdmin(loans ...bankapi.Loan) *fakeLoanAdmin {
	return &fakeLoanAdmin{loans: loans, rejected: make(map[string]string)}
}

func (f *fakeLoanAdmin) List(context.Context) ([]bankapi.Loan, error) {
	return f.loans, nil
}

func (f *fakeLoanAdmin) Get(_ context.Context, id string) (bankapi.Loan, error) {
	for _, l := range f.loans {
		if l.LoanID == id {
			return l, nil
		}
	}
	return bankapi.Loan{}, bankapi.ErrNotFound
}

func (f *fakeLoanAdmin) Approve(_ context.Context, id string) error {
	f.approved = append(f.approved, id)
	return nil
}

func (f *fakeLoanAdmin) Reject(_ context.Context, id, reason string) error {
	f.rejected[id] = reason
	return nil
}

// fakeCardAdmin implements bankapi.CardAdmin.
type fakeCardAdmin struct {
	apps    []bankapi.CardApplication
	reviews map[string]bankapi.CardReview
}

func newFakeCardAdmin(apps ...bankapi.CardApplication) *fakeCardAdmin {
	return &fakeCardAdmin{apps: apps, reviews: make(map[string]bankapi.CardReview)}
}

func (f *fakeCardAdmin) ListPending(context.Context) ([]bankapi.CardApplication, error) {
	var out []bankapi.CardApplication
	for _, a := range f.apps {
		if a.Status == bankapi.StatusSubmitted {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeCardAdmin) Get(_ context.Context, id string) (bankapi.CardApplication, error) {
	for _, a := range f.apps {
		if a.ApplicationID == id {
			return a, nil
		}
	}
	return bankapi.CardApplication{}, bankapi.ErrNotFound
}

func (f *fakeCardAdmin) Review(_ context.Context, id string, review bankapi.CardReview) error {
	f.reviews[id] = review
	return nil
}

// fakeSalaryAdmin implements bankapi.SalaryAdmin.
type fakeSalaryAdmin struct {
	apps      []bankapi.SalaryApplication
	docs      map[string][]byte
	decisions map[string]string
	comments  map[string]string
	reviewers map[string]string
}

func newFakeSalaryAdmin(apps ...bankapi.SalaryApplication) *fakeSalaryAdmin {
	return &fakeSalaryAdmin{
		apps:      apps,
		docs:      make(map[string][]byte),
		decisions: make(map[string]string),
		comments:  make(map[string]string),
		reviewers: make(map[string]string),
	}
}

func (f *fakeSalaryAdmin) ListPending(context.Context) ([]bankapi.SalaryApplication, error) {
	var out []bankapi.SalaryApplication
	for _, a := range f.apps {
		if a.Status == bankapi.StatusSubmitted {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeSalaryAdmin) Get(_ context.Context, id string) (bankapi.SalaryApplication, error) {
	for _, a := range f.apps {
		if a.ApplicationID == id {
			return a, nil
		}
	}
	return bankapi.SalaryApplication{}, bankapi.ErrNotFound
}

func (f *fakeSalaryAdmin) Review(_ context.Context, id, decision, comment, reviewerID string) error {
	f.decisions[id] = decision
	f.comments[id] = comment
	f.reviewers[id] = reviewerID
	return nil
}

func (f *fakeSalaryAdmin) Download(_ context.Context, _, path string) ([]byte, error) {
	data, ok := f.docs[path]
	if !ok {
		return nil, errors.New("document missing")
	}
	return data, nil
}

// fakeSelfServiceAdmin implements bankapi.SelfServiceAdmin.
type fakeSelfServiceAdmin struct {
	reqs     []bankapi.ChangeRequest
	docs     map[string][]byte
	approved map[string]string
	rejected map[string]string
}

func newFakeSelfServiceAdmin(reqs ...bankapi.ChangeRequest) *fakeSelfServiceAdmin {
	return &fakeSelfServiceAdmin{
		reqs:     reqs,
		docs:     make(map[string][]byte),
		approved: make(map[string]string),
		rejected: make(map[string]string),
	}
}

func (f *fakeSelfServiceAdmin) ListPending(context.Context) ([]bankapi.ChangeRequest, error) {
	var out []bankapi.ChangeRequest
	for _, r := range f.reqs {
		if r.Status == bankapi.StatusSubmitted {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeSelfServiceAdmin) Get(_ context.Context, id string) (bankapi.ChangeRequest, error) {
	for _, r := range f.reqs {
		if r.RequestID == id {
			return r, nil
		}
	}
	return bankapi.ChangeRequest{}, bankapi.ErrNotFound
}

func (f *fakeSelfServiceAdmin) Approve(_ context.Context, id, comment string) error {
	f.approved[id] = comment
	return nil
}

func (f *fakeSelfServiceAdmin) Reject(_ context.Context, id, comment string) error {
	f.rejected[id] = comment
	return nil
}

func (f *fakeSelfServiceAdmin) Download(_ context.Context, _, path string) ([]byte, error) {
	data, ok := f.docs[path]
	if !ok {
		return nil, errors.New("document missing")
	}
	return data, nil
}

// fakeProfiles implements bankapi.ProfileReader.
type fakeProfiles struct {
	profiles map[string]bankapi.Profile
	err      error
}

func (f *fakeProfiles) ProfileForUser(_ context.Context, userID string) (bankapi.Profile, error) {
	if f.err != nil {
		return bankapi.Profile{}, f.err
	}
	p, ok := f.profiles[userID]
	if !ok {
		return bankapi.Profile{}, bankapi.ErrNotFound
	}
	return p, nil
}

// capturePublisher records published events.
type capturePublisher struct {
	mu       sync.Mutex
	subjects []string
	payloads [][]byte
}

func (p *capturePublisher) Publish(_ context.Context, subject string, data []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.subjects = append(p.subjects, subject)
	p.payloads = append(p.payloads, data)
	return nil
}

func (p *capturePublisher) Close() error { return nil }
