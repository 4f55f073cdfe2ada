// Package model defines the client-held computation representation shared by
// the façade, the local evaluator and the external collaborator contracts.
package model
