package serviceiface

// Service is the unit the app manager starts and stops in sequence.
type Service interface {
	Name() string
	Start() error
	Stop() error
}
