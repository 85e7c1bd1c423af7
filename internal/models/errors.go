package models

import "errors"

var ErrNotFound = errors.New("requested resource not found")
var ErrForbidden = errors.New("user does not have permission to access this resource")
var ErrConflict = errors.New("resource conflict, item already exists")
var ErrInvalidToken = errors.New("token not found or expired")
var ErrInvalidCredentials = errors.New("invalid credentials") // email or password provided does not match database record

// ErrNoRoute indicates that no route is configured between the departure and
// arrival countries of a simulation.
var ErrNoRoute = errors.New("no route configured between these countries")

// ErrAlreadyClaimed is returned when a pending simulation is owned by another user.
var ErrAlreadyClaimed = errors.New("simulation already attached to another user")

var ErrSimulationNotDraft = errors.New("simulation is not in DRAFT status")
var ErrPaymentFailed = errors.New("payment could not be processed")
