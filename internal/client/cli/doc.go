// Package cli provides the interactive fieldkeeper command-line client.
//
// It wires configuration, the record store, the encryption codec and the
// services into a small REPL. A field worker logs in, records attendance
// and shop visits, and generates the consolidated spreadsheet report:
//
//	fk> login employee
//	fk (Test Employee)> attendance
//	fk (Test Employee)> visit
//	fk (Test Employee)> report
//
// Run blocks until the user types exit or input ends.
package cli
