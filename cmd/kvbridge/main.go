// Command kvbridge runs bridge operations against Redis from the shell or
// serves them over HTTP.
//
//	kvbridge insert user:1 '{"name":"ada"}' --ttl 60
//	kvbridge query user:1
//	kvbridge ping --timeout 250
//	kvbridge log-insert audit --level warn --event login --message 'bad password'
//	kvbridge serve
package main

import (
	"context"
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitCode(err))
	}
}
