// listinglens resolves marketplace listings against a product catalog.
package main

import (
	"os"

	"github.com/listinglens/backend/cmd/listinglens/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
