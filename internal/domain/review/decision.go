package review

// Workflow names. These double as queue metric keys and event subjects, so
// they must stay stable across releases.
const (
	WorkflowKYC         = "kyc"
	WorkflowLoans       = "loans"
	WorkflowCards       = "cards"
	WorkflowSalary      = "salary"
	WorkflowSelfService = "selfService"
)

// Workflows lists all known workflow names in dispatch order.
func Workflows() []string {
	return []string{WorkflowKYC, WorkflowLoans, WorkflowCards, WorkflowSalary, WorkflowSelfService}
}

// Action is the outcome class of evaluating one pending item.
type Action string

const (
	// ActionApprove executes or would execute the approve endpoint.
	ActionApprove Action = "APPROVE"
	// ActionReject executes or would execute the reject endpoint.
	ActionReject Action = "REJECT"
	// ActionSkip defers the item without any remote call; the next pass
	// re-evaluates it. Used when a transient dependency failure prevents a
	// confident verdict.
	ActionSkip Action = "SKIP"
)

// Decision is the result of evaluating one pending item in one pass.
type Decision struct {
	Action Action
	// Limit carries an approved numeric parameter (e.g. credit limit) when
	// the domain has one. Nil means the approval carries no numeric parameter.
	Limit  *float64
	Reason string
}

// Approve returns an APPROVE decision without a numeric parameter.
func Approve(reason string) Decision {
	return Decision{Action: ActionApprove, Reason: reason}
}

// ApproveWithLimit returns an APPROVE decision carrying a numeric limit.
func ApproveWithLimit(limit float64, reason string) Decision {
	return Decision{Action: ActionApprove, Limit: &limit, Reason: reason}
}

// Reject returns a REJECT decision.
func Reject(reason string) Decision {
	return Decision{Action: ActionReject, Reason: reason}
}

// Skip returns a SKIP decision.
func Skip(reason string) Decision {
	return Decision{Action: ActionSkip, Reason: reason}
}
