package models

import (
	"fmt"
	"slices"
	"time"

	"gorm.io/datatypes"
)

// RACI is one cell of the responsibility matrix.
type RACI string

const (
	Accountable            RACI = "A"
	Responsible            RACI = "R"
	Consulted              RACI = "C"
	Informed               RACI = "I"
	NotInvolved            RACI = "-"
	AccountableResponsible RACI = "A/R"
)

var RACILetters = []RACI{Accountable, Responsible, Consulted, Informed, NotInvolved, AccountableResponsible}

func (r RACI) Valid() bool {
	for _, l := range RACILetters {
		if r == l {
			return true
		}
	}
	return false
}

func (r RACI) accountable() bool { return r == Accountable || r == AccountableResponsible }

type Role string

const (
	RoleRequestingArea Role = "requesting_area"
	RoleAdministrative Role = "administrative"
	RoleLegal          Role = "legal"
	RoleFinancial      Role = "financial"
	RoleIntegrity      Role = "integrity"
	RoleBoard          Role = "board"
)

var Roles = []Role{RoleRequestingArea, RoleAdministrative, RoleLegal, RoleFinancial, RoleIntegrity, RoleBoard}

type Activity string

const (
	ActivityContractRequest             Activity = "contract_request"
	ActivityDocumentAnalysis            Activity = "document_analysis"
	ActivityRiskConsultation            Activity = "risk_consultation"
	ActivityRiskAssessment              Activity = "risk_assessment"
	ActivitySystemRegistration          Activity = "system_registration"
	ActivityFormHandling                Activity = "form_handling"
	ActivityContractDraft               Activity = "contract_draft"
	ActivityComplianceValidation        Activity = "compliance_validation"
	ActivityFinalApproval               Activity = "final_approval"
	ActivityContractSigning             Activity = "contract_signing"
	ActivityDocumentManagement          Activity = "document_management"
	ActivityPaymentRelease              Activity = "payment_release"
	ActivityContractExecutionMonitoring Activity = "contract_execution_monitoring"
)

// Activities is the fixed catalog in process order. The last entry is the terminal activity.
var Activities = []Activity{
	ActivityContractRequest,
	ActivityDocumentAnalysis,
	ActivityRiskConsultation,
	ActivityRiskAssessment,
	ActivitySystemRegistration,
	ActivityFormHandling,
	ActivityContractDraft,
	ActivityComplianceValidation,
	ActivityFinalApproval,
	ActivityContractSigning,
	ActivityDocumentManagement,
	ActivityPaymentRelease,
	ActivityContractExecutionMonitoring,
}

func (a Activity) Valid() bool {
	for _, known := range Activities {
		if a == known {
			return true
		}
	}
	return false
}

// Assignments maps activity -> role -> letter.
type Assignments map[Activity]map[Role]RACI

// CompletenessRule selects when a stored matrix counts as complete for registration purposes.
type CompletenessRule string

const (
	// RuleTerminalActivity: every role of contract_execution_monitoring holds an explicit letter
	// ("-" included) and at least one of them is involved.
	RuleTerminalActivity CompletenessRule = "terminal_activity"
	// RuleAllActivities: every activity involves at least one role.
	RuleAllActivities CompletenessRule = "all_activities"
	// RuleAnyActivity: at least one activity involves a role.
	RuleAnyActivity CompletenessRule = "any_activity"
)

func (r CompletenessRule) Valid() bool {
	switch r {
	case RuleTerminalActivity, RuleAllActivities, RuleAnyActivity:
		return true
	}
	return false
}

// MatrixError names the activity (and role, for bad letters) that broke a RACI rule.
type MatrixError struct {
	Activity Activity
	Role     Role
	Message  string
}

func (e *MatrixError) Error() string { return e.Message }

// DefaultAssignments is the organization's standard process, used to seed new matrices.
func DefaultAssignments() Assignments {
	row := func(req, adm, leg, fin, integ, board RACI) map[Role]RACI {
		return map[Role]RACI{
			RoleRequestingArea: req,
			RoleAdministrative: adm,
			RoleLegal:          leg,
			RoleFinancial:      fin,
			RoleIntegrity:      integ,
			RoleBoard:          board,
		}
	}
	return Assignments{
		ActivityContractRequest:             row(AccountableResponsible, Informed, NotInvolved, Informed, NotInvolved, Consulted),
		ActivityDocumentAnalysis:            row(Informed, AccountableResponsible, Consulted, NotInvolved, Consulted, NotInvolved),
		ActivityRiskConsultation:            row(Informed, Responsible, NotInvolved, NotInvolved, AccountableResponsible, NotInvolved),
		ActivityRiskAssessment:              row(Informed, Consulted, Consulted, NotInvolved, AccountableResponsible, Informed),
		ActivitySystemRegistration:          row(Informed, AccountableResponsible, NotInvolved, Informed, NotInvolved, NotInvolved),
		ActivityFormHandling:                row(Consulted, AccountableResponsible, NotInvolved, NotInvolved, Informed, NotInvolved),
		ActivityContractDraft:               row(Consulted, Informed, AccountableResponsible, Consulted, NotInvolved, NotInvolved),
		ActivityComplianceValidation:        row(NotInvolved, Informed, Responsible, NotInvolved, Accountable, NotInvolved),
		ActivityFinalApproval:               row(Informed, Informed, Consulted, Consulted, Consulted, AccountableResponsible),
		ActivityContractSigning:             row(Informed, Responsible, Accountable, NotInvolved, NotInvolved, Informed),
		ActivityDocumentManagement:          row(Informed, AccountableResponsible, Consulted, NotInvolved, NotInvolved, NotInvolved),
		ActivityPaymentRelease:              row(Responsible, Informed, NotInvolved, AccountableResponsible, NotInvolved, NotInvolved),
		ActivityContractExecutionMonitoring: row(AccountableResponsible, Informed, NotInvolved, Consulted, NotInvolved, NotInvolved),
	}
}

// Merge returns a copy of a with every cell in patch written over it.
func (a Assignments) Merge(patch Assignments) Assignments {
	out := make(Assignments, len(a))
	for act, roles := range a {
		out[act] = make(map[Role]RACI, len(roles))
		for role, v := range roles {
			out[act][role] = v
		}
	}
	for act, roles := range patch {
		if out[act] == nil {
			out[act] = map[Role]RACI{}
		}
		for role, v := range roles {
			out[act][role] = v
		}
	}
	return out
}

// Letter returns the cell value; a missing cell reads as not involved.
func (a Assignments) Letter(act Activity, role Role) RACI {
	if v, ok := a[act][role]; ok {
		return v
	}
	return NotInvolved
}

func (a Assignments) involved(act Activity) bool {
	for _, role := range Roles {
		if a.Letter(act, role) != NotInvolved {
			return true
		}
	}
	return false
}

// Validate enforces the RACI rules per activity: known activities, roles and letters,
// at most one A or A/R, and at least one role involved.
func (a Assignments) Validate() error {
	for _, act := range sortedKeys(a) {
		if !act.Valid() {
			return &MatrixError{Activity: act, Message: fmt.Sprintf("unknown activity %q", act)}
		}
		roles := a[act]
		for _, role := range sortedKeys(roles) {
			if !role.valid() {
				return &MatrixError{Activity: act, Role: role, Message: fmt.Sprintf("activity %q: unknown role %q", act, role)}
			}
			if v := roles[role]; !v.Valid() {
				return &MatrixError{Activity: act, Role: role, Message: fmt.Sprintf("activity %q: invalid value %q for %s", act, v, role)}
			}
		}
	}
	for _, act := range Activities {
		if _, present := a[act]; !present {
			continue
		}
		accountable := 0
		for _, role := range Roles {
			if a.Letter(act, role).accountable() {
				accountable++
			}
		}
		if accountable > 1 {
			return &MatrixError{Activity: act, Message: fmt.Sprintf("activity %q: only one accountable (A or A/R) is allowed", act)}
		}
		if !a.involved(act) {
			return &MatrixError{Activity: act, Message: fmt.Sprintf("activity %q: at least one area must be involved", act)}
		}
	}
	return nil
}

// IsComplete applies rule to the assignments.
func (a Assignments) IsComplete(rule CompletenessRule) bool {
	switch rule {
	case RuleAllActivities:
		for _, act := range Activities {
			if !a.involved(act) {
				return false
			}
		}
		return true
	case RuleAnyActivity:
		for _, act := range Activities {
			if a.involved(act) {
				return true
			}
		}
		return false
	default:
		terminal := Activities[len(Activities)-1]
		for _, role := range Roles {
			if v, ok := a[terminal][role]; !ok || !v.Valid() {
				return false
			}
		}
		return a.involved(terminal)
	}
}

func sortedKeys[K ~string, V any](m map[K]V) []K {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func (r Role) valid() bool {
	for _, known := range Roles {
		if r == known {
			return true
		}
	}
	return false
}

// ResponsibilityMatrix is one-to-one with Supplier.
type ResponsibilityMatrix struct {
	ID          uint                            `json:"id" gorm:"primaryKey"`
	SupplierID  uint                            `json:"supplier_id" gorm:"not null;uniqueIndex"`
	Assignments datatypes.JSONType[Assignments] `json:"assignments"`
	CreatedAt   time.Time                       `json:"created_at"`
	UpdatedAt   time.Time                       `json:"updated_at"`
}

func (ResponsibilityMatrix) TableName() string { return "responsibility_matrices" }

func (m *ResponsibilityMatrix) IsComplete(rule CompletenessRule) bool {
	return m.Assignments.Data().IsComplete(rule)
}
