// Package capsules holds module-level metadata.
package capsules

const Version = "0.1.0"
