// cmd/mongolens/main.go
package main

import (
	"github.com/hvmai/mongolens/internal/cli"
)

func main() {
	cli.Execute()
}
