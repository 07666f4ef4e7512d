// Package services implements the driving ports: ingestion, retrieval,
// answering, thread management and settings. Services hold the business
// logic and talk to the outside world only through driven ports.
package services
