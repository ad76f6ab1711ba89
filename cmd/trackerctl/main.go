// Command trackerctl queries the disease and forecast backends from the
// terminal using the same merge pipeline as the API server.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
