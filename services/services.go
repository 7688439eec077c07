package services

import "supplier-compliance-backend/models"

// Services bundles the domain services around one event bus. The situation deriver is the
// bus's subscriber, so every supplier, matrix, attachment or evaluation write re-derives the situation.
type Services struct {
	Bus         *Bus
	Checker     *Checker
	Situations  *SituationDeriver
	Suppliers   *Suppliers
	Matrices    *Matrices
	Attachments *Attachments
	Evaluations *Evaluations
	Lookups     Lookups
	Steps       Steps
	Workflow    *Workflow
}

func New(rule models.CompletenessRule, notifier Notifier) *Services {
	bus := NewBus()
	checker := NewChecker(rule)
	deriver := NewSituationDeriver(checker)
	bus.Subscribe(deriver)

	return &Services{
		Bus:         bus,
		Checker:     checker,
		Situations:  deriver,
		Suppliers:   NewSuppliers(bus),
		Matrices:    NewMatrices(bus),
		Attachments: NewAttachments(bus, checker),
		Evaluations: NewEvaluations(bus),
		Workflow:    NewWorkflow(notifier),
	}
}
