package main

import (
	"github.com/MeKo-Tech/scantext/cmd/scantext/cmd"
)

func main() {
	cmd.Execute()
}
