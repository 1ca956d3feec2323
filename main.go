/*
	Copyright 2023 Markus Papenbrock
*/

package main

import "github.com/mpapenbr/wrc-timing-go/cmd"

func main() {
	cmd.Execute()
}
