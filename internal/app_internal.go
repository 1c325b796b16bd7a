package internal

import (
	"github.com/rios0rios0/adoscope/internal/domain/entities"
)

// AppInternal aggregates the application's controllers for the CLI wiring.
type AppInternal struct {
	controllers *[]entities.Controller
}

// NewAppInternal creates the application context with all controllers.
func NewAppInternal(controllers *[]entities.Controller) *AppInternal {
	return &AppInternal{controllers: controllers}
}

// GetControllers returns all registered controllers.
func (it *AppInternal) GetControllers() []entities.Controller {
	return *it.controllers
}
