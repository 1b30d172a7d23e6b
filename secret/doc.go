// Package secret resolves secret values for accountkit configuration, such
// as the key that seals persisted account entries.
//
// Values are expanded strictly against the environment (see ExpandEnvStrict)
// and may carry references with the prefix "secretref:":
//   - Full value:  secretref:env:ACCOUNTKIT_SEAL_SECRET
//   - Inline use:  passphrase=secretref:file:seal.key
//
// Two providers are built in: "env" reads an environment variable and
// "file" reads a file below a base directory, the way container runtimes
// mount secrets. Others can be added through a Registry.
package secret
