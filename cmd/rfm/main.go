package main

import (
	"github.com/mchmarny/rfm/pkg/cli"
)

func main() {
	cli.Execute()
}
