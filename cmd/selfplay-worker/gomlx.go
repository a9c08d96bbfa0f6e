//go:build !nogomlx

package main

// Include GoMLX backend support, so --evaluator can name a neural weights
// file (internal/config.buildEvaluator's default branch).

import (
	_ "github.com/gomlx/gomlx/backends/xla"
)
