// Package services contains the application services of the fieldkeeper
// client: record submission, report generation and the login session.
package services
