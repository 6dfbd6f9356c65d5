// Package e2e drives the register/login flow through every client layer.
//
// By default the tests start an in-process fake service. Set
// AUTH_E2E_BASE_URL to run the flows against a deployed auth service
// instead; scenarios that depend on fixed user names or forced responses
// always use the fake.
package e2e
