package main

import (
	"log"

	"github.com/cpbyrne/ostaa/internal/server"
)

func main() {
	if err := server.Start(); err != nil {
		log.Fatal(err)
	}
}
