package main

import (
	"github.com/MeKo-Tech/yomi/cmd/yomi/cmd"
)

func main() {
	cmd.Execute()
}
