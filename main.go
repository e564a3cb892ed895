package main

import (
	"github/chapool/go-accounts/cmd"
)

func main() {
	cmd.Execute()
}
