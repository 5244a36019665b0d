package main

import (
	"github.com/hhkbp2/txbench"
	"github.com/hhkbp2/txbench/binding"
)

func main() {
	binding.AddBindings()
	txbench.Main()
}
