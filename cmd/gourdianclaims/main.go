// Package main is the gourdianclaims command line tool for issuing and
// inspecting claim tokens with the secret configured in the environment.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
