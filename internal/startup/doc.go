// Package startup handles environment-driven configuration and startup
// logging for both securestream binaries.
//
// Configuration comes exclusively from environment variables, with
// defaults suited to container deployment. Secrets are logged only as
// set/unset. The package also owns the console banner, system information
// dump and the structured shutdown log helpers shared by ingestd and the
// gateway.
package startup
