package main

import (
	"log"

	"github.com/franckalain/allergenscan/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		log.Fatal(err)
	}
}
