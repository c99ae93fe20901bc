package main

import (
	"github.com/NVIDIA/capmon/pkg/cli"
)

func main() {
	cli.Execute()
}
