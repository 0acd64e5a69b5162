package main

import "ponto/internal/app/server"

func main() {
	server.Run()
}
