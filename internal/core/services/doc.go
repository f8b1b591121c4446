// Package services contains the core business logic of Noteward.
//
// Services implement the driving ports and depend only on driven port
// interfaces, never on concrete adapters. Construction and wiring
// happen in cmd/noteward.
package services
