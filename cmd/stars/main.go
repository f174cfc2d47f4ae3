package main

import (
	"github.com/starsync/stars/pkg/cmd"
)

func main() {
	cmd.Execute()
}
