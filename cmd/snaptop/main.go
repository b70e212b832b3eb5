package main

import "github.com/pageza/snaptop/client/internal/cmd"

func main() {
	cmd.Execute()
}
