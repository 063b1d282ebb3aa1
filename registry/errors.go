package registry

import "errors"

// ErrInvalidInput is returned when a submission fails validation.
var ErrInvalidInput = errors.New("registry: invalid input")

// ErrNotFound is returned when the requested record does not exist.
var ErrNotFound = errors.New("registry: not found")

// ErrEmailExists is returned when a registration reuses an existing email.
var ErrEmailExists = errors.New("registry: email already registered")

// ErrRegistrationCodeExists is returned when a registration reuses an
// existing state OCMMS ID.
var ErrRegistrationCodeExists = errors.New("registry: registration code already in use")

// ErrBadCredentials is returned when authentication fails. Callers must not
// distinguish unknown email from wrong password.
var ErrBadCredentials = errors.New("registry: invalid email or password")

// ErrStackQuotaReached is returned when an industry submits more stacks than
// it declared.
var ErrStackQuotaReached = errors.New("registry: all declared stacks already submitted")

// ErrParameterTaken is returned when a stack already has an instrument for
// the submitted parameter.
var ErrParameterTaken = errors.New("registry: parameter already instrumented for this stack")
