package main

import "github.com/vegasq/tablify/cmd"

func main() {
	cmd.Execute()
}
