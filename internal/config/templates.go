package config

// DefaultConfigTemplate is written by `converge config init`.
const DefaultConfigTemplate = `# converge configuration
#
# Precedence for every setting: flag > CONVERGE_* environment > this file > default.

# Environment file deployed when --environment is not given.
# environment: ./envs/production.yaml

# Definitions file or directory loaded when none is given.
definitions: .

# Deploy hosts concurrently.
parallel: false

log:
  # Show timestamps in log output.
  timestamps: true
`
