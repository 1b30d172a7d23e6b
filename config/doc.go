// Package config loads accountkit settings from the environment and wires
// the store, sealer, observer, cache and health checks they describe.
//
// Every setting has an ACCOUNTKIT_ variable:
//
//	ACCOUNTKIT_STORE              memory|file|sqlite (default file)
//	ACCOUNTKIT_DATA_DIR           root for file and sqlite stores
//	ACCOUNTKIT_SQLITE_PATH        database path (default <data dir>/entries.db)
//	ACCOUNTKIT_SEAL_KEY           literal, ${VAR} or secretref:<provider>:<ref>
//	ACCOUNTKIT_SECRET_DIR         directory for the file secret provider
//	ACCOUNTKIT_CODEC              cbor|json (default cbor)
//	ACCOUNTKIT_LOG_LEVEL          debug|info|warn|error
//	ACCOUNTKIT_TRACING_EXPORTER   otlp|jaeger|stdout|none
//	ACCOUNTKIT_METRICS_EXPORTER   otlp|prometheus|stdout|none
//	ACCOUNTKIT_WRITE_*            persistence retry, breaker and bulkhead tuning
//	ACCOUNTKIT_HEAP_LIMIT         heap budget in bytes for the heap check
package config
