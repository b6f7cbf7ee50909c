// Package services holds the business logic. Each service is an interface with an
// unexported implementation; constructors receive their repositories and logger explicitly.
package services
