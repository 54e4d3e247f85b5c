// Package logging provides leveled logging for the ingestion pipeline and
// the delivery gateway.
//
// The level is read once from the environment: DEBUG=true forces debug
// output, otherwise LOG_LEVEL selects one of debug, info, warn or error
// (info is the default).
package logging
