// Command analyzer is the SmartEnergy cyber-resilience analyzer: a light
// SIEM that detects threats in normalized event streams, correlates them
// into incidents and compares resilience metrics across security policies.
package main

import "os"

func main() {
	if err := Execute(); err != nil {
		os.Exit(1)
	}
}
